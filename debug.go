package lumen

import (
	"time"

	"github.com/pkg/errors"
)

// refreshStats holds per-refresh timing and size metrics.
// Only populated when Config.Debug is true.
type refreshStats struct {
	flushTime   time.Duration
	commitTime  time.Duration
	nodeCount   int
	entityCount int
}

// debugLog reports refresh timing through the graph logger.
func (g *Graph) debugLog(stats refreshStats) {
	if !g.cfg.Debug {
		return
	}
	g.log.Debug("refresh scene gpu data",
		"flush", stats.flushTime,
		"commit", stats.commitTime,
		"total", stats.flushTime+stats.commitTime,
		"nodes", stats.nodeCount,
		"entities", stats.entityCount)
}

// debugCheckTreeDepth warns if n sits deeper than the configured threshold.
func (g *Graph) debugCheckTreeDepth(n *Node) {
	if depth := n.Depth(); depth > g.cfg.MaxTreeDepth {
		g.log.Warn("tree depth exceeds threshold",
			"node", n.Name, "id", n.id, "depth", depth, "threshold", g.cfg.MaxTreeDepth)
	}
}

// debugCheckChildCount warns if n has more children than the configured threshold.
func (g *Graph) debugCheckChildCount(n *Node) {
	if len(n.children) > g.cfg.MaxChildCount {
		g.log.Warn("child count exceeds threshold",
			"node", n.Name, "id", n.id, "children", len(n.children), "threshold", g.cfg.MaxChildCount)
	}
}

// Validate checks the structural invariants of the graph and returns an error
// describing the first violation found:
//
//   - the root has no parent and every other node has a live parent in this graph;
//   - parent and child links agree in both directions, with no duplicates;
//   - following parent links from any node reaches the root without a cycle;
//   - the node arena holds exactly the nodes reachable from the root;
//   - no clean node has a dirty parent;
//   - no component is attached twice to the same node and no entity is 0.
func (g *Graph) Validate() error {
	if g.root.parent != nil {
		return errors.New("root has a parent")
	}
	if len(g.nodes) != len(g.byID) {
		return errors.Errorf("arena size %d does not match id index size %d", len(g.nodes), len(g.byID))
	}

	for i, n := range g.nodes {
		if n.graph != g {
			return errors.Errorf("node %d (%q) in arena does not belong to this graph", n.id, n.Name)
		}
		if n.slot != i {
			return errors.Errorf("node %d (%q) has slot %d, found at %d", n.id, n.Name, n.slot, i)
		}
		if g.byID[n.id] != n {
			return errors.Errorf("node %d (%q) missing from id index", n.id, n.Name)
		}
		if err := g.validateNode(n); err != nil {
			return errors.Wrapf(err, "node %d (%q)", n.id, n.Name)
		}
	}

	reachable := 0
	g.root.TraverseBFS(func(n *Node) TraverseAction {
		reachable++
		return TraverseContinue
	})
	if reachable != len(g.nodes) {
		return errors.Errorf("%d nodes reachable from root, arena holds %d", reachable, len(g.nodes))
	}
	return nil
}

func (g *Graph) validateNode(n *Node) error {
	if n != g.root {
		if n.parent == nil {
			return errors.New("non-root node has no parent")
		}
		if n.parent.graph != g {
			return errors.New("parent does not belong to this graph")
		}
		count := 0
		for _, c := range n.parent.children {
			if c == n {
				count++
			}
		}
		if count != 1 {
			return errors.Errorf("listed %d times under its parent", count)
		}
		if !n.dirty && n.parent.dirty {
			return errors.New("clean node under a dirty parent")
		}
	}
	for _, c := range n.children {
		if c.parent != n {
			return errors.Errorf("child %d does not point back to this node", c.id)
		}
	}
	steps := 0
	for p := n.parent; p != nil; p = p.parent {
		if p == n || steps > len(g.nodes) {
			return errors.New("parent chain contains a cycle")
		}
		steps++
	}
	for i, a := range n.renderables {
		if a.entity == 0 {
			return errors.Errorf("renderable %q has no entity", a.renderable.Name())
		}
		for _, b := range n.renderables[i+1:] {
			if a.renderable == b.renderable {
				return errors.Errorf("renderable %q attached twice", a.renderable.Name())
			}
		}
	}
	for i, a := range n.lights {
		if a.entity == 0 {
			return errors.Errorf("light %q has no entity", a.light.Name())
		}
		for _, b := range n.lights[i+1:] {
			if a.light == b.light {
				return errors.Errorf("light %q attached twice", a.light.Name())
			}
		}
	}
	return nil
}
