package lumen

import "github.com/go-gl/mathgl/mgl32"

// EntityID identifies an entity registered with a [Scene]. Zero is never a
// valid entity and is returned by the Scene to signal a failed registration.
type EntityID int64

// DefaultInstanceMask is the instance mask used when a renderable is attached
// without one. All ray types see the entity.
const DefaultInstanceMask uint32 = 0xFF

// Renderable is a model-like component that a [Node] can attach to the scene.
// The node does not own the component. Implementations must be comparable
// (typically a pointer type); attachment identity is interface equality.
type Renderable interface {
	Name() string
}

// Light is a light-like component that a [Node] can attach to the scene.
// Same ownership and identity rules as [Renderable].
type Light interface {
	Name() string
}

// CommandBuffer is the recording context handed to [Scene.Commit]. The graph
// never inspects it.
type CommandBuffer any

// Scene is the rendering collaborator that owns GPU-visible entity state. The
// graph registers one entity per attached component and pushes world
// transforms and visibility into it.
type Scene interface {
	// AddRenderable registers a renderable and returns its entity, or 0.
	AddRenderable(r Renderable, mask uint32) EntityID

	// AddLight registers a light and returns its entity, or 0.
	AddLight(l Light) EntityID

	// DeleteEntity removes an entity previously returned by AddRenderable or
	// AddLight.
	DeleteEntity(id EntityID)

	// SetVisible hides or shows an entity without removing it.
	SetVisible(id EntityID, visible bool)

	// SetTransform sets the world transform of an entity.
	SetTransform(id EntityID, world mgl32.Mat3x4)

	// Commit brings the scene's internal GPU data up to date. Called once per
	// Graph.RefreshSceneGPUData, after every node has been flushed.
	Commit(cb CommandBuffer)
}

// EntityDesc describes a registered entity. Exactly one of Renderable and
// Light is set for a valid entity.
type EntityDesc struct {
	Renderable Renderable
	Light      Light
	Mask       uint32
	Transform  mgl32.Mat3x4
	Visible    bool
}

// Valid reports whether the description refers to a registered entity.
func (d EntityDesc) Valid() bool {
	return d.Renderable != nil || d.Light != nil
}

// IdentityMatrix3x4 is the 3x4 form of the identity transform, the initial
// transform of a freshly registered entity.
var IdentityMatrix3x4 = mgl32.Mat3x4{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
	0, 0, 0,
}
