package lumen

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// --- Test components ---

type testModel struct{ name string }

func (m *testModel) Name() string { return m.name }

type testLight struct{ name string }

func (l *testLight) Name() string { return l.name }

// --- Recording scene ---

type recordedEntity struct {
	renderable Renderable
	light      Light
	mask       uint32
	transform  mgl32.Mat3x4
	visible    bool
}

// recordingScene is an in-memory Scene that records every call.
type recordingScene struct {
	entities map[EntityID]*recordedEntity
	nextID   EntityID

	adds, deletes, transforms, commits int
	lastCommit                         CommandBuffer

	// refuse makes every registration fail.
	refuse bool
	// deleted records every DeleteEntity call in order.
	deleted []EntityID
}

func newRecordingScene() *recordingScene {
	return &recordingScene{entities: make(map[EntityID]*recordedEntity)}
}

func (s *recordingScene) add(e *recordedEntity) EntityID {
	if s.refuse {
		return 0
	}
	s.nextID++
	e.visible = true
	e.transform = IdentityMatrix3x4
	s.entities[s.nextID] = e
	s.adds++
	return s.nextID
}

func (s *recordingScene) AddRenderable(r Renderable, mask uint32) EntityID {
	return s.add(&recordedEntity{renderable: r, mask: mask})
}

func (s *recordingScene) AddLight(l Light) EntityID {
	return s.add(&recordedEntity{light: l})
}

func (s *recordingScene) DeleteEntity(id EntityID) {
	s.deletes++
	s.deleted = append(s.deleted, id)
	delete(s.entities, id)
}

func (s *recordingScene) SetVisible(id EntityID, visible bool) {
	if e, ok := s.entities[id]; ok {
		e.visible = visible
	}
}

func (s *recordingScene) SetTransform(id EntityID, world mgl32.Mat3x4) {
	s.transforms++
	if e, ok := s.entities[id]; ok {
		e.transform = world
	}
}

func (s *recordingScene) Commit(cb CommandBuffer) {
	s.commits++
	s.lastCommit = cb
}

// --- Helpers ---

func newTestGraph(t *testing.T) (*Graph, *recordingScene) {
	t.Helper()
	s := newRecordingScene()
	return NewGraph(s), s
}

func assertValid(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func assertTranslation(t *testing.T, name string, got Transform, x, y, z float32) {
	t.Helper()
	want := mgl32.Vec3{x, y, z}
	if tr := got.Translation(); tr != want {
		t.Errorf("%s translation = %v, want %v", name, tr, want)
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
