package preview

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/lumen"
)

const (
	defaultPixelsPerUnit = 20
	defaultMarkerSize    = 0.5
)

// Item is one entity in a committed frame.
type Item struct {
	ID        lumen.EntityID
	Name      string
	Light     bool
	Mask      uint32
	Transform mgl32.Mat3x4
}

// Position returns the item's world-space translation.
func (it Item) Position() mgl32.Vec3 {
	return mgl32.Vec3{it.Transform.At(0, 3), it.Transform.At(1, 3), it.Transform.At(2, 3)}
}

type entity struct {
	renderable lumen.Renderable
	light      lumen.Light
	mask       uint32
	transform  mgl32.Mat3x4
	visible    bool
}

// Scene implements [lumen.Scene] by drawing a top-down (X/Z plane) view of
// every visible entity with ebiten. Entity changes are buffered and only show
// up in Draw after Commit.
type Scene struct {
	entities map[lumen.EntityID]*entity
	nextID   lumen.EntityID

	frame   []Item
	commits uint64

	white *ebiten.Image
	op    ebiten.DrawImageOptions

	// PixelsPerUnit is the zoom of the view. Defaults to 20.
	PixelsPerUnit float64
	// MarkerSize is the edge length, in world units, of the square drawn for
	// each entity. Defaults to 0.5.
	MarkerSize float64
	// Mask filters which renderables are drawn: a renderable is drawn when
	// its instance mask shares a bit with Mask. Lights are always drawn.
	Mask uint32

	ClearColor      color.RGBA
	RenderableColor color.RGBA
	LightColor      color.RGBA
}

var _ lumen.Scene = (*Scene)(nil)

// NewScene creates an empty preview scene.
func NewScene() *Scene {
	return &Scene{
		entities:        make(map[lumen.EntityID]*entity),
		PixelsPerUnit:   defaultPixelsPerUnit,
		MarkerSize:      defaultMarkerSize,
		Mask:            lumen.DefaultInstanceMask,
		ClearColor:      color.RGBA{R: 30, G: 30, B: 40, A: 255},
		RenderableColor: color.RGBA{R: 80, G: 180, B: 255, A: 255},
		LightColor:      color.RGBA{R: 255, G: 220, B: 80, A: 255},
	}
}

// AddRenderable implements [lumen.Scene].
func (s *Scene) AddRenderable(r lumen.Renderable, mask uint32) lumen.EntityID {
	if r == nil {
		return 0
	}
	return s.add(&entity{renderable: r, mask: mask})
}

// AddLight implements [lumen.Scene].
func (s *Scene) AddLight(l lumen.Light) lumen.EntityID {
	if l == nil {
		return 0
	}
	return s.add(&entity{light: l})
}

func (s *Scene) add(e *entity) lumen.EntityID {
	s.nextID++
	e.visible = true
	e.transform = lumen.IdentityMatrix3x4
	s.entities[s.nextID] = e
	return s.nextID
}

// DeleteEntity implements [lumen.Scene].
func (s *Scene) DeleteEntity(id lumen.EntityID) {
	delete(s.entities, id)
}

// SetVisible implements [lumen.Scene].
func (s *Scene) SetVisible(id lumen.EntityID, visible bool) {
	if e, ok := s.entities[id]; ok {
		e.visible = visible
	}
}

// SetTransform implements [lumen.Scene].
func (s *Scene) SetTransform(id lumen.EntityID, world mgl32.Mat3x4) {
	if e, ok := s.entities[id]; ok {
		e.transform = world
	}
}

// Commit implements [lumen.Scene]. It snapshots the visible entities, ordered
// by ID, as the frame Draw renders. The command buffer is unused.
func (s *Scene) Commit(lumen.CommandBuffer) {
	s.frame = s.frame[:0]
	for id, e := range s.entities {
		if !e.visible {
			continue
		}
		it := Item{ID: id, Mask: e.mask, Transform: e.transform}
		if e.light != nil {
			it.Light = true
			it.Name = e.light.Name()
		} else {
			it.Name = e.renderable.Name()
		}
		s.frame = append(s.frame, it)
	}
	sort.Slice(s.frame, func(i, j int) bool { return s.frame[i].ID < s.frame[j].ID })
	s.commits++
}

// Frame returns the last committed snapshot. The slice is reused by the next
// Commit.
func (s *Scene) Frame() []Item { return s.frame }

// Commits returns the number of commits so far.
func (s *Scene) Commits() uint64 { return s.commits }

// Len returns the number of registered entities, visible or not.
func (s *Scene) Len() int { return len(s.entities) }

// Desc returns the description of a registered entity.
func (s *Scene) Desc(id lumen.EntityID) (lumen.EntityDesc, bool) {
	e, ok := s.entities[id]
	if !ok {
		return lumen.EntityDesc{}, false
	}
	return lumen.EntityDesc{
		Renderable: e.renderable,
		Light:      e.light,
		Mask:       e.mask,
		Transform:  e.transform,
		Visible:    e.visible,
	}, true
}

// Draw renders the committed frame onto screen, with the world origin at the
// center of the image and +Z pointing down.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.white == nil {
		s.white = ebiten.NewImage(1, 1)
		s.white.Fill(color.White)
	}
	screen.Fill(s.ClearColor)

	b := screen.Bounds()
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2

	for i := range s.frame {
		it := &s.frame[i]
		if !it.Light && it.Mask&s.Mask == 0 {
			continue
		}
		s.op.GeoM = s.itemGeoM(it, cx, cy)
		s.op.ColorScale.Reset()
		c := s.RenderableColor
		if it.Light {
			c = s.LightColor
		}
		s.op.ColorScale.ScaleWithColor(c)
		screen.DrawImage(s.white, &s.op)
	}
}

// itemGeoM maps the unit marker image through the X/Z block of the item's
// world transform into screen space.
func (s *Scene) itemGeoM(it *Item, cx, cy float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-0.5, -0.5)
	m.Scale(s.MarkerSize, s.MarkerSize)

	t := it.Transform
	var w ebiten.GeoM
	w.SetElement(0, 0, float64(t.At(0, 0)))
	w.SetElement(0, 1, float64(t.At(0, 2)))
	w.SetElement(1, 0, float64(t.At(2, 0)))
	w.SetElement(1, 1, float64(t.At(2, 2)))
	w.SetElement(0, 2, float64(t.At(0, 3)))
	w.SetElement(1, 2, float64(t.At(2, 3)))
	m.Concat(w)

	m.Scale(s.PixelsPerUnit, s.PixelsPerUnit)
	m.Translate(cx, cy)
	return m
}
