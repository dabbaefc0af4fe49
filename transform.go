package aspen

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// IdentityMatrix is the identity affine matrix.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// TranslateMatrix returns a translation by (dx, dy).
func TranslateMatrix(dx, dy float64) Matrix {
	return Matrix{1, 0, 0, 1, dx, dy}
}

// ScaleMatrix returns a scale by (sx, sy) about the origin.
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// RotateMatrix returns a clockwise rotation by r radians about the origin.
func RotateMatrix(r float64) Matrix {
	sin, cos := math.Sincos(r)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * child: child is applied first, then m.
func (m Matrix) Multiply(child Matrix) Matrix {
	return Matrix{
		m[0]*child[0] + m[2]*child[1],
		m[1]*child[0] + m[3]*child[1],
		m[0]*child[2] + m[2]*child[3],
		m[1]*child[2] + m[3]*child[3],
		m[0]*child[4] + m[2]*child[5] + m[4],
		m[1]*child[4] + m[3]*child[5] + m[5],
	}
}

// Invert returns the inverse of m, or the identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityMatrix
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// MapPoint applies m to the point (x, y).
func (m Matrix) MapPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// MapRect returns the bounding rectangle of r after applying m.
func (m Matrix) MapRect(r Rect) Rect {
	if !m.IsRotating() {
		x0, y0 := m.MapPoint(r.X, r.Y)
		x1, y1 := m.MapPoint(r.Right(), r.Bottom())
		return Rect{math.Min(x0, x1), math.Min(y0, y1), math.Abs(x1 - x0), math.Abs(y1 - y0)}
	}
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.MapPoint(r.X, r.Y)
	xs[1], ys[1] = m.MapPoint(r.Right(), r.Y)
	xs[2], ys[2] = m.MapPoint(r.Right(), r.Bottom())
	xs[3], ys[3] = m.MapPoint(r.X, r.Bottom())
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// IsRotating reports whether m rotates or shears, so that axis-aligned
// rectangles no longer map to axis-aligned rectangles.
func (m Matrix) IsRotating() bool {
	return m[1] != 0 || m[2] != 0
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == IdentityMatrix
}

// aff3 converts m to the row-major layout used by golang.org/x/image/draw.
func (m Matrix) aff3() f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// computeLocalTransform composes a transform node's properties into a matrix.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) Matrix {
	sx := n.ScaleX
	sy := n.ScaleY

	sin, cos := math.Sincos(n.Rotation)

	var tanSkewX, tanSkewY float64
	if n.SkewX != 0 {
		tanSkewX = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		tanSkewY = math.Tan(n.SkewY)
	}

	// After Scale * Translate(-pivot) and Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := n.PivotX
	py := n.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	if n.Rotation == 0 {
		return Matrix{a, b, c, d, preTx + n.X, preTy + n.Y}
	}

	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return Matrix{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// --- Transform node property setters ---

// SetPosition sets a transform node's X and Y and marks its matrix dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.applyLocalTransform()
}

// SetScale sets a transform node's ScaleX and ScaleY and marks its matrix dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.applyLocalTransform()
}

// SetRotation sets a transform node's rotation (radians, clockwise) and marks
// its matrix dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.applyLocalTransform()
}

// SetSkew sets a transform node's SkewX and SkewY and marks its matrix dirty.
func (n *Node) SetSkew(sx, sy float64) {
	n.SkewX = sx
	n.SkewY = sy
	n.applyLocalTransform()
}

// SetPivot sets a transform node's PivotX and PivotY and marks its matrix dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	n.applyLocalTransform()
}

// SetMatrix replaces a transform node's matrix directly. The property fields
// are left untouched and are ignored until the next property setter call.
func (n *Node) SetMatrix(m Matrix) {
	if n.Type != NodeTypeTransform {
		panic("aspen: SetMatrix on a non-transform node")
	}
	if n.matrix == m {
		return
	}
	n.matrix = m
	n.MarkDirty(DirtyMatrix)
}

// Matrix returns a transform node's local matrix.
func (n *Node) Matrix() Matrix {
	return n.matrix
}

// ApplyTransform recomputes the matrix from the property fields. Useful after
// bulk-setting X, Y, ScaleX, and friends directly.
func (n *Node) ApplyTransform() {
	n.applyLocalTransform()
}

func (n *Node) applyLocalTransform() {
	if n.Type != NodeTypeTransform {
		panic("aspen: transform property set on a non-transform node")
	}
	n.SetMatrix(computeLocalTransform(n))
}
