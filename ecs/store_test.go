package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/lumen"
)

type model struct{ name string }

func (m *model) Name() string { return m.name }

type light struct{ name string }

func (l *light) Name() string { return l.name }

func TestStoreImplementsScene(t *testing.T) {
	var _ lumen.Scene = NewStore(donburi.NewWorld())
}

func TestStoreAddAndDelete(t *testing.T) {
	store := NewStore(donburi.NewWorld())

	m := &model{"teapot"}
	id := store.AddRenderable(m, 0x0F)
	require.NotZero(t, id)
	assert.Equal(t, 1, store.Len())

	d, ok := store.Desc(id)
	require.True(t, ok)
	assert.True(t, d.Valid())
	assert.Equal(t, lumen.Renderable(m), d.Renderable)
	assert.Nil(t, d.Light)
	assert.Equal(t, uint32(0x0F), d.Mask)
	assert.True(t, d.Visible)
	assert.Equal(t, lumen.IdentityMatrix3x4, d.Transform)

	store.DeleteEntity(id)
	assert.Equal(t, 0, store.Len())
	_, ok = store.Desc(id)
	assert.False(t, ok)

	// deleting twice is harmless
	store.DeleteEntity(id)
	assert.Equal(t, 0, store.Len())
}

func TestStoreNilComponentsFail(t *testing.T) {
	store := NewStore(donburi.NewWorld())
	assert.Zero(t, store.AddRenderable(nil, lumen.DefaultInstanceMask))
	assert.Zero(t, store.AddLight(nil))
	assert.Equal(t, 0, store.Len())
}

func TestStoreMaxEntities(t *testing.T) {
	store := NewStore(donburi.NewWorld())
	store.MaxEntities = 1

	require.NotZero(t, store.AddLight(&light{"sun"}))
	assert.Zero(t, store.AddLight(&light{"moon"}))
	assert.Equal(t, 1, store.Len())
}

func TestStoreTransformAndVisibility(t *testing.T) {
	store := NewStore(donburi.NewWorld())
	id := store.AddLight(&light{"lamp"})

	m := lumen.Translate(1, 2, 3).Matrix3x4()
	store.SetTransform(id, m)
	store.SetVisible(id, false)

	d, ok := store.Desc(id)
	require.True(t, ok)
	assert.Equal(t, m, d.Transform)
	assert.False(t, d.Visible)
	assert.Empty(t, store.VisibleLights())

	store.SetVisible(id, true)
	assert.Equal(t, []lumen.EntityID{id}, store.VisibleLights())
	assert.Empty(t, store.VisibleRenderables())
}

func TestStoreEventsDeliveredOnCommit(t *testing.T) {
	world := donburi.NewWorld()
	store := NewStore(world)

	var received []EntityEvent
	EntityEventType.Subscribe(world, func(w donburi.World, e EntityEvent) {
		received = append(received, e)
	})

	a := store.AddRenderable(&model{"a"}, lumen.DefaultInstanceMask)
	store.SetVisible(a, false)
	store.SetVisible(a, false) // unchanged, no event
	store.DeleteEntity(a)
	assert.Empty(t, received, "events are queued until commit")

	store.Commit(nil)
	assert.Equal(t, uint64(1), store.Frame())
	assert.Equal(t, []EntityEvent{
		{Kind: EntityAdded, Entity: a},
		{Kind: EntityHidden, Entity: a},
		{Kind: EntityDeleted, Entity: a},
	}, received)
}

func TestStoreDrivenByGraph(t *testing.T) {
	store := NewStore(donburi.NewWorld())
	g := lumen.NewGraph(store)

	parent := g.CreateNode(nil)
	parent.SetTransform(lumen.Translate(1, 0, 0))
	child := g.CreateNode(parent)
	child.SetTransform(lumen.Translate(0, 2, 0))

	m := &model{"wheel"}
	id := child.AttachRenderable(m, lumen.DefaultInstanceMask)
	l := parent.AttachLight(&light{"headlight"})
	require.NotZero(t, id)
	require.NotZero(t, l)

	g.RefreshSceneGPUData(nil)

	d, ok := store.Desc(id)
	require.True(t, ok)
	assert.Equal(t, lumen.Translate(1, 2, 0).Matrix3x4(), d.Transform)
	assert.Equal(t, uint64(1), store.Frame())

	g.DeleteNodeAndSubtree(parent)
	assert.Equal(t, 0, store.Len())
	require.NoError(t, g.Validate())
}
