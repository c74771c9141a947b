package lumen

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is an affine 3D transform (rotation, non-uniform scale and
// translation, no perspective). It is stored as a 4x4 column-major matrix
// whose last row is always (0, 0, 0, 1).
//
// The zero value is NOT the identity; use [Identity].
//
// Two transforms are equal only if every element matches exactly. Comparing
// with == is equivalent to [Transform.Equal].
type Transform struct {
	m mgl32.Mat4
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mgl32.Ident4()}
}

// Translate returns a pure translation.
func Translate(x, y, z float32) Transform {
	return Transform{m: mgl32.Translate3D(x, y, z)}
}

// FromTRS composes translation, rotation and scale, applied to points in the
// order scale, then rotate, then translate.
func FromTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) Transform {
	m := mgl32.Translate3D(t[0], t[1], t[2])
	m = m.Mul4(r.Normalize().Mat4())
	m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	return Transform{m: m}
}

// FromMatrix4 builds a transform from a homogeneous matrix. The bottom row is
// forced to (0, 0, 0, 1).
func FromMatrix4(m mgl32.Mat4) Transform {
	m[3], m[7], m[11], m[15] = 0, 0, 0, 1
	return Transform{m: m}
}

// FromMatrix3x4 builds a transform from the 3x4 form used by [Scene.SetTransform].
func FromMatrix3x4(f mgl32.Mat3x4) Transform {
	var m mgl32.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 3; r++ {
			m[c*4+r] = f[c*3+r]
		}
	}
	m[15] = 1
	return Transform{m: m}
}

// Matrix4 returns the transform as a homogeneous 4x4 matrix.
func (t Transform) Matrix4() mgl32.Mat4 {
	return t.m
}

// Matrix3x4 returns the top three rows of the transform.
func (t Transform) Matrix3x4() mgl32.Mat3x4 {
	var f mgl32.Mat3x4
	for c := 0; c < 4; c++ {
		for r := 0; r < 3; r++ {
			f[c*3+r] = t.m[c*4+r]
		}
	}
	return f
}

// At returns the element at the given row and column.
func (t Transform) At(row, col int) float32 {
	return t.m[col*4+row]
}

// Equal reports whether every element of t and o is identical.
func (t Transform) Equal(o Transform) bool {
	return t.m == o.m
}

// Mul returns t * o: o is applied first, then t. A child's world transform is
// parent.World.Mul(child.Local).
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: t.m.Mul4(o.m)}
}

// Inverse returns the inverse transform.
// Returns the identity if the linear part is singular.
func (t Transform) Inverse() Transform {
	lin := t.m.Mat3()
	if lin.Det() == 0 {
		return Identity()
	}
	inv := lin.Inv()
	tr := inv.Mul3x1(t.Translation()).Mul(-1)
	m := inv.Mat4()
	m[12], m[13], m[14] = tr[0], tr[1], tr[2]
	return Transform{m: m}
}

// TransformPoint applies the transform to a point.
func (t Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, t.m)
}

// --- Decomposition ---

// Translation returns the translation part.
func (t Transform) Translation() mgl32.Vec3 {
	return mgl32.Vec3{t.m[12], t.m[13], t.m[14]}
}

// Scaling returns the per-axis scale. A mirrored transform (negative
// determinant) reports a negative X scale.
func (t Transform) Scaling() mgl32.Vec3 {
	s := mgl32.Vec3{
		t.m.Col(0).Vec3().Len(),
		t.m.Col(1).Vec3().Len(),
		t.m.Col(2).Vec3().Len(),
	}
	if t.m.Mat3().Det() < 0 {
		s[0] = -s[0]
	}
	return s
}

// Rotation returns the rotation part with scale removed.
func (t Transform) Rotation() mgl32.Quat {
	s := t.Scaling()
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return mgl32.QuatIdent()
	}
	var r mgl32.Mat4
	for c := 0; c < 3; c++ {
		for row := 0; row < 3; row++ {
			r[c*4+row] = t.m[c*4+row] / s[c]
		}
	}
	r[15] = 1
	return mgl32.Mat4ToQuat(r).Normalize()
}

// Decompose splits the transform into translation, rotation and scale.
func (t Transform) Decompose() (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	return t.Translation(), t.Rotation(), t.Scaling()
}

// WithTranslation returns a copy of t with its translation replaced.
func (t Transform) WithTranslation(v mgl32.Vec3) Transform {
	m := t.m
	m[12], m[13], m[14] = v[0], v[1], v[2]
	return Transform{m: m}
}

// WithRotation returns a copy of t with its rotation replaced, keeping
// translation and scale.
func (t Transform) WithRotation(r mgl32.Quat) Transform {
	return FromTRS(t.Translation(), r, t.Scaling())
}

// WithScaling returns a copy of t with its scale replaced, keeping
// translation and rotation.
func (t Transform) WithScaling(s mgl32.Vec3) Transform {
	return FromTRS(t.Translation(), t.Rotation(), s)
}

// String prints the three meaningful rows.
func (t Transform) String() string {
	return fmt.Sprintf("[%g %g %g %g; %g %g %g %g; %g %g %g %g]",
		t.m[0], t.m[4], t.m[8], t.m[12],
		t.m[1], t.m[5], t.m[9], t.m[13],
		t.m[2], t.m[6], t.m[10], t.m[14])
}

// --- Node transform state ---

// Transform returns the node's local transform, relative to its parent.
func (n *Node) Transform() Transform {
	return n.local
}

// SetTransform sets the node's local transform. If t equals the current value
// exactly nothing happens; otherwise the node and its whole subtree are marked
// dirty. Deleted nodes and nodes of a closed graph are left untouched.
func (n *Node) SetTransform(t Transform) {
	if !n.live("set transform") || n.local == t {
		return
	}
	n.local = t
	n.setWorldTransformDirty()
}

// SetWorldTransform sets the local transform so that the node's world
// transform becomes t, given its parent's current world transform.
func (n *Node) SetWorldTransform(t Transform) {
	if !n.live("set world transform") {
		return
	}
	if n.parent == nil {
		n.SetTransform(t)
		return
	}
	n.SetTransform(n.parent.WorldTransform().Inverse().Mul(t))
}

// WorldTransform returns the node's transform relative to the scene.
//
// The value is cached. When the node is dirty this call recalculates the
// cache for the node and every dirty ancestor above it, so it writes internal
// state even though it reads as a query.
func (n *Node) WorldTransform() Transform {
	n.updateWorldTransform()
	return n.world
}

// Dirty reports whether the cached world transform is stale.
func (n *Node) Dirty() bool {
	return n.dirty
}

// setWorldTransformDirty marks n and its subtree dirty. A dirty node's
// descendants are always dirty already, so the walk stops at any node that is
// dirty.
func (n *Node) setWorldTransformDirty() {
	if n.dirty {
		return
	}
	n.TraverseBFS(func(c *Node) TraverseAction {
		if c.dirty {
			return TraverseSkipSubtree
		}
		c.dirty = true
		return TraverseContinue
	})
}

// updateWorldTransform recalculates n and its chain of dirty ancestors, top
// down, so each parent is up to date before its child uses it.
func (n *Node) updateWorldTransform() {
	if !n.dirty {
		return
	}
	var chain []*Node
	if n.graph != nil {
		chain = n.graph.chainBuf[:0]
	}
	for p := n; p != nil && p.dirty; p = p.parent {
		if p.parent == p {
			panic("lumen: node is its own parent")
		}
		chain = append(chain, p)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].recalculateWorldTransform()
		chain[i] = nil
	}
	if n.graph != nil {
		n.graph.chainBuf = chain[:0]
	}
}

// recalculateWorldTransform sets world = parent.world * local. It must only be
// called from updateWorldTransform, with the parent already clean.
func (n *Node) recalculateWorldTransform() {
	if !n.dirty {
		panic("lumen: recalculating a clean world transform")
	}
	if n.parent != nil {
		n.world = n.parent.world.Mul(n.local)
	} else {
		n.world = n.local
	}
	n.dirty = false
}
