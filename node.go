package lumen

import (
	"log/slog"
)

// NodeID identifies a node within its [Graph]. IDs start at 1 (the root) and
// are never reused by the same graph.
type NodeID uint32

type renderableAttachment struct {
	renderable Renderable
	entity     EntityID
	mask       uint32
}

type lightAttachment struct {
	light  Light
	entity EntityID
}

// Node is a vertex of the scene hierarchy. It carries a local transform, a
// lazily computed world transform, and the entities registered for the
// renderables and lights attached to it.
//
// Nodes are created and destroyed only through their [Graph]. Parent and
// children are non-owning references; the graph owns every node.
type Node struct {
	// Name is for debugging and logging only.
	Name string

	id    NodeID
	graph *Graph

	// Hierarchy
	parent   *Node
	children []*Node

	// Attachments
	renderables []renderableAttachment
	lights      []lightAttachment

	// Transform. world is valid only while dirty is false; it is written only
	// by this node's own recalculation.
	local Transform
	world Transform
	dirty bool

	// index in graph.nodes
	slot int
}

// newNode links a node under parent (the graph root when parent is nil).
// Panics if parent belongs to a different graph.
func newNode(g *Graph, parent *Node) *Node {
	n := &Node{
		graph: g,
		local: Identity(),
		world: Identity(),
		dirty: true,
	}
	if parent != nil {
		if parent.graph != g {
			panic("lumen: parent node belongs to another graph")
		}
		n.parent = parent
	} else if g.root != nil {
		n.parent = g.root
	}
	if n.parent != nil {
		if n.parent.indexOfChild(n) >= 0 {
			panic("lumen: node already linked under parent")
		}
		n.parent.children = append(n.parent.children, n)
	}
	return n
}

// --- Accessors ---

// ID returns the node's graph-unique identifier.
func (n *Node) ID() NodeID { return n.id }

// Graph returns the owning graph, or nil once the node has been deleted.
func (n *Node) Graph() *Graph { return n.graph }

// IsDeleted reports whether the node has been removed from its graph.
func (n *Node) IsDeleted() bool { return n.graph == nil }

// Parent returns the parent node. Only the root (and deleted nodes) have none.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list in insertion order. The returned slice MUST
// NOT be mutated by the caller.
func (n *Node) Children() []*Node { return n.children }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Depth returns the number of ancestors (0 for the root).
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// --- Hierarchy ---

// SetParent moves n under parent. A nil parent means the graph root.
//
// The request is rejected with a logged error and no state change when n is
// deleted or its graph is closed, n is the root, parent is n itself, parent belongs to another graph (or was
// deleted), or parent is a descendant of n. Setting the current parent again
// is a no-op.
func (n *Node) SetParent(parent *Node) {
	if !n.live("set parent") {
		return
	}
	g := n.graph
	if n == g.root {
		if parent != nil {
			n.logger().Error("can't set parent of root node")
		}
		return
	}
	if parent == nil {
		parent = g.root
	}
	if parent == n.parent {
		return
	}
	if parent == n {
		n.logger().Error("can't set a node as its own parent")
		return
	}
	if parent.graph != g {
		n.logger().Error("new parent belongs to a different graph", "parent", parent.Name)
		return
	}
	found := !n.TraverseBFS(func(c *Node) TraverseAction {
		if c == parent {
			return TraverseStop
		}
		return TraverseContinue
	})
	if found {
		n.logger().Error("can't set a descendant node as parent", "parent", parent.Name, "parentID", parent.id)
		return
	}

	n.parent.removeChildByPtr(n)
	n.parent = parent
	if parent.indexOfChild(n) >= 0 {
		panic("lumen: node already linked under new parent")
	}
	parent.children = append(parent.children, n)
	n.setWorldTransformDirty()
	if g.cfg.Debug {
		g.debugCheckTreeDepth(n)
		g.debugCheckChildCount(parent)
	}
}

// indexOfChild returns the position of child in n.children, or -1.
func (n *Node) indexOfChild(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	i := n.indexOfChild(child)
	if i < 0 {
		panic("lumen: child is not linked under its parent")
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

// --- Renderable attachments ---

// AttachRenderable registers r with the scene under the given instance mask and
// records the resulting entity on this node. Returns the entity, or 0 if r is
// nil, already attached to this node, or the scene refused it.
func (n *Node) AttachRenderable(r Renderable, mask uint32) EntityID {
	if r == nil || !n.live("attach renderable") {
		return 0
	}
	if n.findRenderable(r) >= 0 {
		n.logger().Warn("ignore redundant renderable", "renderable", r.Name())
		return 0
	}
	entity := n.graph.scene.AddRenderable(r, mask)
	if entity != 0 {
		n.renderables = append(n.renderables, renderableAttachment{renderable: r, entity: entity, mask: mask})
	}
	return entity
}

// DetachRenderable deletes the entity registered for r on this node.
func (n *Node) DetachRenderable(r Renderable) {
	if r == nil || !n.live("detach renderable") {
		return
	}
	i := n.findRenderable(r)
	if i < 0 {
		n.logger().Warn("ignore renderable that is not attached to node", "renderable", r.Name())
		return
	}
	n.graph.scene.DeleteEntity(n.renderables[i].entity)
	n.renderables = append(n.renderables[:i], n.renderables[i+1:]...)
}

// DetachAllRenderables deletes every renderable entity registered on this node.
func (n *Node) DetachAllRenderables() {
	if n.graph == nil {
		return
	}
	for _, a := range n.renderables {
		n.graph.scene.DeleteEntity(a.entity)
	}
	n.renderables = nil
}

// Renderable returns the first attached renderable, or nil.
func (n *Node) Renderable() Renderable {
	if len(n.renderables) == 0 {
		return nil
	}
	return n.renderables[0].renderable
}

// NumRenderables returns the number of attached renderables.
func (n *Node) NumRenderables() int { return len(n.renderables) }

// ForEachRenderable calls fn for every attached renderable and its entity.
func (n *Node) ForEachRenderable(fn func(r Renderable, entity EntityID)) {
	for _, a := range n.renderables {
		fn(a.renderable, a.entity)
	}
}

func (n *Node) findRenderable(r Renderable) int {
	for i, a := range n.renderables {
		if a.renderable == r {
			return i
		}
	}
	return -1
}

// --- Light attachments ---

// AttachLight registers l with the scene and records the resulting entity on
// this node. Returns the entity, or 0 if l is nil, already attached to this
// node, or the scene refused it.
func (n *Node) AttachLight(l Light) EntityID {
	if l == nil || !n.live("attach light") {
		return 0
	}
	if n.findLight(l) >= 0 {
		n.logger().Warn("ignore redundant light", "light", l.Name())
		return 0
	}
	entity := n.graph.scene.AddLight(l)
	if entity == 0 {
		return 0
	}
	n.lights = append(n.lights, lightAttachment{light: l, entity: entity})
	return entity
}

// DetachLight deletes the entity registered for l on this node.
func (n *Node) DetachLight(l Light) {
	if l == nil || !n.live("detach light") {
		return
	}
	i := n.findLight(l)
	if i < 0 {
		n.logger().Warn("can't detach light that is not attached to node", "light", l.Name())
		return
	}
	n.graph.scene.DeleteEntity(n.lights[i].entity)
	n.lights = append(n.lights[:i], n.lights[i+1:]...)
}

// DetachAllLights deletes every light entity registered on this node.
func (n *Node) DetachAllLights() {
	if n.graph == nil {
		return
	}
	for _, a := range n.lights {
		n.graph.scene.DeleteEntity(a.entity)
	}
	n.lights = nil
}

// Light returns the first attached light, or nil.
func (n *Node) Light() Light {
	if len(n.lights) == 0 {
		return nil
	}
	return n.lights[0].light
}

// LightEntity returns the entity of the first attached light, or 0.
func (n *Node) LightEntity() EntityID {
	if len(n.lights) == 0 {
		return 0
	}
	return n.lights[0].entity
}

// NumLights returns the number of attached lights.
func (n *Node) NumLights() int { return len(n.lights) }

// ForEachLight calls fn for every attached light and its entity.
func (n *Node) ForEachLight(fn func(l Light, entity EntityID)) {
	for _, a := range n.lights {
		fn(a.light, a.entity)
	}
}

func (n *Node) findLight(l Light) int {
	for i, a := range n.lights {
		if a.light == l {
			return i
		}
	}
	return -1
}

// DetachAllComponents detaches every renderable and light.
func (n *Node) DetachAllComponents() {
	n.DetachAllRenderables()
	n.DetachAllLights()
}

// --- Scene forwarding ---

// SetVisible shows or hides every entity attached to this node. The tree is
// not affected; children keep their own visibility.
func (n *Node) SetVisible(visible bool) {
	if !n.live("set visible") {
		return
	}
	s := n.graph.scene
	for _, a := range n.renderables {
		s.SetVisible(a.entity, visible)
	}
	for _, a := range n.lights {
		s.SetVisible(a.entity, visible)
	}
}

// FlushWorldTransform pushes the node's world transform, recalculating it if
// needed, to every attached entity.
func (n *Node) FlushWorldTransform() {
	if !n.live("flush world transform") {
		return
	}
	if len(n.renderables) == 0 && len(n.lights) == 0 {
		// Still bring the cache up to date so the next frame starts clean.
		n.updateWorldTransform()
		return
	}
	s := n.graph.scene
	m := n.WorldTransform().Matrix3x4()
	for _, a := range n.renderables {
		s.SetTransform(a.entity, m)
	}
	for _, a := range n.lights {
		s.SetTransform(a.entity, m)
	}
}

// --- Destruction ---

// destroy unlinks n from its parent, releases its entities and drops it from
// the graph. Children must already be gone.
func (n *Node) destroy() {
	if len(n.children) != 0 {
		panic("lumen: destroying a node that still has children")
	}
	if n.parent != nil {
		n.parent.removeChildByPtr(n)
		n.parent = nil
	}
	n.DetachAllComponents()
	n.graph = nil
}

// --- Helpers ---

// live reports whether n still belongs to an open graph, logging op otherwise.
func (n *Node) live(op string) bool {
	if n.graph == nil {
		slog.Default().Error("lumen: operation on deleted node", "op", op, "node", n.Name)
		return false
	}
	if n.graph.closed {
		n.logger().Error("operation on node of a closed graph", "op", op)
		return false
	}
	return true
}

func (n *Node) logger() *slog.Logger {
	if n.graph == nil {
		return slog.Default()
	}
	return n.graph.log.With("node", n.Name, "id", n.id)
}
