package lumen

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Graph owns every node of one scene hierarchy, including the root, and the
// [Scene] those nodes register their entities with.
//
// A Graph is not safe for concurrent use. Independent graphs share no state.
type Graph struct {
	id    uuid.UUID
	scene Scene
	cfg   Config
	log   *slog.Logger

	root   *Node
	nodes  []*Node // arena, root first
	byID   map[NodeID]*Node
	nextID NodeID
	closed bool

	// Scratch buffers reused across calls.
	chainBuf  []*Node
	deleteBuf []*Node
}

// NewGraph creates a graph bound to scene with [DefaultConfig].
func NewGraph(scene Scene) *Graph {
	return NewGraphWithConfig(scene, DefaultConfig())
}

// NewGraphWithConfig creates a graph bound to scene. Panics if scene is nil
// or cfg fails [Config.Validate].
func NewGraphWithConfig(scene Scene, cfg Config) *Graph {
	if scene == nil {
		panic("lumen: graph requires a scene")
	}
	if err := cfg.Validate(); err != nil {
		panic("lumen: invalid config: " + err.Error())
	}
	cfg = cfg.withDefaults()
	g := &Graph{
		id:    uuid.New(),
		scene: scene,
		cfg:   cfg,
		byID:  make(map[NodeID]*Node),
	}
	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	g.log = base.With("graph", g.id.String())

	g.root = newNode(g, nil)
	g.root.Name = "root"
	g.register(g.root)
	return g
}

// ID returns the graph's unique identifier.
func (g *Graph) ID() uuid.UUID { return g.id }

// Scene returns the rendering collaborator.
func (g *Graph) Scene() Scene { return g.scene }

// Root returns the root node. It has no parent and is never deleted.
func (g *Graph) Root() *Node { return g.root }

// Config returns the configuration the graph was created with.
func (g *Graph) Config() Config { return g.cfg }

// Logger returns the graph's logger.
func (g *Graph) Logger() *slog.Logger { return g.log }

// Nodes returns every live node, root first. The returned slice MUST NOT be
// mutated and is invalidated by CreateNode and DeleteNodeAndSubtree.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NumNodes returns the number of live nodes, including the root.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeByID returns the live node with the given ID, or nil.
func (g *Graph) NodeByID(id NodeID) *Node { return g.byID[id] }

// CreateNode creates a node under parent, or under the root when parent is nil.
// The node starts with an identity local transform. Returns nil if parent
// belongs to another graph or the graph is closed.
func (g *Graph) CreateNode(parent *Node) *Node {
	if g.closed {
		g.log.Error("can't create node in a closed graph")
		return nil
	}
	if parent != nil && parent.graph != g {
		g.log.Error("can't create node with parent that belongs to different graph", "parent", parent.Name)
		return nil
	}
	n := newNode(g, parent)
	g.register(n)
	if g.cfg.Debug {
		g.debugCheckTreeDepth(n)
		g.debugCheckChildCount(n.parent)
	}
	return n
}

// DeleteNodeAndSubtree deletes node and all of its descendants, children
// before parents, releasing every entity they registered. The root is never
// deleted, though its descendants are when it is passed in.
//
// Returns the reference the caller should keep: nil, or the root if node was
// the root. A node from another graph is rejected and returned unchanged:
//
//	n = g.DeleteNodeAndSubtree(n)
func (g *Graph) DeleteNodeAndSubtree(node *Node) *Node {
	if node == nil {
		return nil
	}
	if node.graph != g {
		g.log.Error("can't delete node that belongs to different graph", "node", node.Name)
		return node
	}

	doomed := collectSubtree(node, g.deleteBuf[:0])
	for i := len(doomed) - 1; i >= 0; i-- {
		c := doomed[i]
		doomed[i] = nil
		if c == g.root {
			continue
		}
		g.unregister(c)
		c.destroy()
	}
	g.deleteBuf = doomed[:0]

	if node == g.root {
		return g.root
	}
	return nil
}

// RefreshSceneGPUData pushes the world transform of every node to its
// entities, then commits the scene with cb. Cost is linear in the number of
// nodes.
func (g *Graph) RefreshSceneGPUData(cb CommandBuffer) {
	if g.closed {
		g.log.Error("can't refresh a closed graph")
		return
	}
	var stats refreshStats
	var t0 time.Time
	if g.cfg.Debug {
		t0 = time.Now()
	}

	for _, n := range g.nodes {
		n.FlushWorldTransform()
		stats.entityCount += len(n.renderables) + len(n.lights)
	}

	if g.cfg.Debug {
		stats.flushTime = time.Since(t0)
		t0 = time.Now()
	}

	g.scene.Commit(cb)

	if g.cfg.Debug {
		stats.commitTime = time.Since(t0)
		stats.nodeCount = len(g.nodes)
		g.debugLog(stats)
	}
}

// Close tears the graph down: every descendant of the root is deleted and
// the root's own components are detached. Afterwards the graph rejects new
// nodes, refreshes, and every edit or attachment on the root.
func (g *Graph) Close() {
	if g.closed {
		return
	}
	g.DeleteNodeAndSubtree(g.root)
	g.root.DetachAllComponents()
	g.closed = true
}

// IsClosed reports whether Close has been called.
func (g *Graph) IsClosed() bool { return g.closed }

// register assigns the next ID and adds n to the arena.
func (g *Graph) register(n *Node) {
	g.nextID++
	n.id = g.nextID
	n.slot = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.byID[n.id] = n
}

// unregister removes n from the arena by moving the last node into its slot.
func (g *Graph) unregister(n *Node) {
	if g.nodes[n.slot] != n {
		panic("lumen: node arena slot mismatch")
	}
	last := len(g.nodes) - 1
	moved := g.nodes[last]
	g.nodes[n.slot] = moved
	moved.slot = n.slot
	g.nodes[last] = nil
	g.nodes = g.nodes[:last]
	delete(g.byID, n.id)
	n.slot = -1
}
