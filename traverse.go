package lumen

// TraverseAction tells [Node.TraverseBFS] what to do after visiting a node.
type TraverseAction uint8

const (
	// TraverseStop aborts the whole traversal.
	TraverseStop TraverseAction = iota
	// TraverseContinue queues the visited node's children.
	TraverseContinue
	// TraverseSkipSubtree moves on without queueing the visited node's children.
	TraverseSkipSubtree
)

// TraverseBFS visits n and its descendants in breadth-first order, children in
// insertion order. It returns false if visit returned [TraverseStop], true if
// the traversal ran to completion.
//
// visit must not add or remove children of nodes that are still queued.
func (n *Node) TraverseBFS(visit func(*Node) TraverseAction) bool {
	queue := []*Node{n}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		queue[head] = nil
		switch visit(cur) {
		case TraverseStop:
			return false
		case TraverseContinue:
			queue = append(queue, cur.children...)
		}
	}
	return true
}

// collectSubtree appends n and all of its descendants to buf in BFS order.
func collectSubtree(n *Node, buf []*Node) []*Node {
	n.TraverseBFS(func(c *Node) TraverseAction {
		buf = append(buf, c)
		return TraverseContinue
	})
	return buf
}
