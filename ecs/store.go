package ecs

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/lumen"
)

// EventKind says what happened to an entity.
type EventKind uint8

const (
	EntityAdded EventKind = iota
	EntityDeleted
	EntityShown
	EntityHidden
)

// EntityEvent is published on [EntityEventType] for every change to the set
// of registered entities or their visibility.
type EntityEvent struct {
	Kind   EventKind
	Entity lumen.EntityID
}

// EntityEventType is the Donburi event type for store changes. Subscribe to it
// in your ECS systems; events are processed on each Commit.
var EntityEventType = events.NewEventType[EntityEvent]()

// RenderableData is the component of a renderable entity.
type RenderableData struct {
	Renderable lumen.Renderable
	Mask       uint32
}

// LightData is the component of a light entity.
type LightData struct {
	Light lumen.Light
}

// TransformData holds the last world transform pushed for an entity.
type TransformData struct {
	World mgl32.Mat3x4
}

// VisibilityData holds an entity's visibility.
type VisibilityData struct {
	Visible bool
}

// HandleData maps a Donburi entity back to its lumen entity ID.
type HandleData struct {
	ID lumen.EntityID
}

var (
	Renderable = donburi.NewComponentType[RenderableData]()
	Light      = donburi.NewComponentType[LightData]()
	Transform  = donburi.NewComponentType[TransformData]()
	Visibility = donburi.NewComponentType[VisibilityData]()
	Handle     = donburi.NewComponentType[HandleData]()
)

var (
	renderableQuery = donburi.NewQuery(filter.Contains(Renderable, Visibility))
	lightQuery      = donburi.NewQuery(filter.Contains(Light, Visibility))
)

// Store implements [lumen.Scene] on top of a Donburi world. It is not safe
// for concurrent use.
type Store struct {
	world    donburi.World
	entities map[lumen.EntityID]donburi.Entity
	nextID   lumen.EntityID
	frame    uint64

	// MaxEntities caps the number of live entities. Registrations beyond it
	// fail with entity 0. Zero means no limit.
	MaxEntities int
}

var _ lumen.Scene = (*Store)(nil)

// NewStore creates a Store that registers entities in world.
func NewStore(world donburi.World) *Store {
	return &Store{
		world:    world,
		entities: make(map[lumen.EntityID]donburi.Entity),
	}
}

// World returns the backing Donburi world.
func (s *Store) World() donburi.World { return s.world }

// AddRenderable implements [lumen.Scene].
func (s *Store) AddRenderable(r lumen.Renderable, mask uint32) lumen.EntityID {
	if r == nil || s.full() {
		return 0
	}
	id, entry := s.create(Renderable)
	Renderable.SetValue(entry, RenderableData{Renderable: r, Mask: mask})
	return id
}

// AddLight implements [lumen.Scene].
func (s *Store) AddLight(l lumen.Light) lumen.EntityID {
	if l == nil || s.full() {
		return 0
	}
	id, entry := s.create(Light)
	Light.SetValue(entry, LightData{Light: l})
	return id
}

func (s *Store) create(kind donburi.IComponentType) (lumen.EntityID, *donburi.Entry) {
	s.nextID++
	id := s.nextID
	e := s.world.Create(kind, Transform, Visibility, Handle)
	entry := s.world.Entry(e)
	Transform.SetValue(entry, TransformData{World: lumen.IdentityMatrix3x4})
	Visibility.SetValue(entry, VisibilityData{Visible: true})
	Handle.SetValue(entry, HandleData{ID: id})
	s.entities[id] = e
	EntityEventType.Publish(s.world, EntityEvent{Kind: EntityAdded, Entity: id})
	return id, entry
}

func (s *Store) full() bool {
	return s.MaxEntities > 0 && len(s.entities) >= s.MaxEntities
}

// DeleteEntity implements [lumen.Scene]. Unknown IDs are ignored.
func (s *Store) DeleteEntity(id lumen.EntityID) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	delete(s.entities, id)
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
	EntityEventType.Publish(s.world, EntityEvent{Kind: EntityDeleted, Entity: id})
}

// SetVisible implements [lumen.Scene].
func (s *Store) SetVisible(id lumen.EntityID, visible bool) {
	entry := s.entry(id)
	if entry == nil {
		return
	}
	v := Visibility.Get(entry)
	if v.Visible == visible {
		return
	}
	v.Visible = visible
	kind := EntityHidden
	if visible {
		kind = EntityShown
	}
	EntityEventType.Publish(s.world, EntityEvent{Kind: kind, Entity: id})
}

// SetTransform implements [lumen.Scene].
func (s *Store) SetTransform(id lumen.EntityID, world mgl32.Mat3x4) {
	entry := s.entry(id)
	if entry == nil {
		return
	}
	Transform.Get(entry).World = world
}

// Commit implements [lumen.Scene]. It delivers queued entity events to
// subscribers and advances the frame counter. The command buffer is unused.
func (s *Store) Commit(lumen.CommandBuffer) {
	EntityEventType.ProcessEvents(s.world)
	s.frame++
}

// Frame returns the number of commits so far.
func (s *Store) Frame() uint64 { return s.frame }

// Len returns the number of live entities.
func (s *Store) Len() int { return len(s.entities) }

// Desc returns the description of a live entity.
func (s *Store) Desc(id lumen.EntityID) (lumen.EntityDesc, bool) {
	entry := s.entry(id)
	if entry == nil {
		return lumen.EntityDesc{}, false
	}
	d := lumen.EntityDesc{
		Transform: Transform.Get(entry).World,
		Visible:   Visibility.Get(entry).Visible,
	}
	if entry.HasComponent(Renderable) {
		r := Renderable.Get(entry)
		d.Renderable, d.Mask = r.Renderable, r.Mask
	}
	if entry.HasComponent(Light) {
		d.Light = Light.Get(entry).Light
	}
	return d, true
}

// VisibleRenderables returns the IDs of visible renderable entities in
// ascending order.
func (s *Store) VisibleRenderables() []lumen.EntityID {
	return s.visible(renderableQuery)
}

// VisibleLights returns the IDs of visible light entities in ascending order.
func (s *Store) VisibleLights() []lumen.EntityID {
	return s.visible(lightQuery)
}

func (s *Store) visible(q *donburi.Query) []lumen.EntityID {
	var ids []lumen.EntityID
	q.Each(s.world, func(entry *donburi.Entry) {
		if Visibility.Get(entry).Visible {
			ids = append(ids, Handle.Get(entry).ID)
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) entry(id lumen.EntityID) *donburi.Entry {
	e, ok := s.entities[id]
	if !ok || !s.world.Valid(e) {
		return nil
	}
	return s.world.Entry(e)
}
