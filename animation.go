package lumen

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransformTween animates a node's local transform from its value at creation
// time to a target. Translation and scale are interpolated linearly and
// rotation spherically, with progress shaped by an easing function. Call
// Update(dt) each frame; every step goes through [Node.SetTransform], so the
// node's subtree is dirtied like any other edit.
//
// There is no global animation manager; callers drive Update themselves.
// If the target node is deleted, the tween stops immediately.
type TransformTween struct {
	target *Node
	tween  *gween.Tween

	fromT, toT mgl32.Vec3
	fromR, toR mgl32.Quat
	fromS, toS mgl32.Vec3
	to         Transform

	Done bool
}

// TweenTransform creates a tween that moves node's local transform to `to`
// over duration seconds.
func TweenTransform(node *Node, to Transform, duration float32, fn ease.TweenFunc) *TransformTween {
	if fn == nil {
		fn = ease.Linear
	}
	tw := &TransformTween{
		target: node,
		tween:  gween.New(0, 1, duration, fn),
		to:     to,
	}
	tw.fromT, tw.fromR, tw.fromS = node.Transform().Decompose()
	tw.toT, tw.toR, tw.toS = to.Decompose()
	if tw.fromR.Dot(tw.toR) < 0 {
		// take the short way around
		tw.toR = tw.toR.Scale(-1)
	}
	return tw
}

// TweenTranslation tweens only the translation of node's local transform.
func TweenTranslation(node *Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TransformTween {
	return TweenTransform(node, node.Transform().WithTranslation(to), duration, fn)
}

// TweenRotation tweens only the rotation of node's local transform.
func TweenRotation(node *Node, to mgl32.Quat, duration float32, fn ease.TweenFunc) *TransformTween {
	return TweenTransform(node, node.Transform().WithRotation(to), duration, fn)
}

// TweenScaling tweens only the scale of node's local transform.
func TweenScaling(node *Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TransformTween {
	return TweenTransform(node, node.Transform().WithScaling(to), duration, fn)
}

// Target returns the animated node.
func (tw *TransformTween) Target() *Node { return tw.target }

// Update advances the tween by dt seconds and writes the interpolated local
// transform. The final step writes the target transform exactly.
func (tw *TransformTween) Update(dt float32) {
	if tw.Done {
		return
	}
	if tw.target == nil || tw.target.IsDeleted() {
		tw.Done = true
		return
	}

	t, finished := tw.tween.Update(dt)
	if finished {
		tw.target.SetTransform(tw.to)
		tw.Done = true
		return
	}
	tr := tw.fromT.Add(tw.toT.Sub(tw.fromT).Mul(t))
	sc := tw.fromS.Add(tw.toS.Sub(tw.fromS).Mul(t))
	rot := mgl32.QuatSlerp(tw.fromR, tw.toR, t)
	tw.target.SetTransform(FromTRS(tr, rot, sc))
}

// Reset rewinds the tween to its start. The node is not modified until the
// next Update.
func (tw *TransformTween) Reset() {
	tw.tween.Reset()
	tw.Done = false
}
