package aspen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of a node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenRotation, TweenOpacity, TweenColor) and call Update(dt) each frame. The
// group writes the values and reports the change to the renderer. If the
// target node is disposed, the group stops immediately.
//
// There is no global animation manager. Users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	apply  func()
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and applies them to the node. If the target node has been disposed, Done is
// set to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target == nil || g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply()
}

// Reset rewinds every tween to its start value.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
	}
	g.Done = false
}

// TweenPosition animates a transform node's X and Y to the given target
// coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, apply: node.ApplyTransform}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenScale animates a transform node's ScaleX and ScaleY to the given target
// values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, apply: node.ApplyTransform}
	g.tweens[0] = gween.New(float32(node.ScaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.ScaleY), float32(toSY), duration, fn)
	g.fields[0] = &node.ScaleX
	g.fields[1] = &node.ScaleY
	return g
}

// TweenRotation animates a transform node's Rotation to the target value over
// the specified duration using the easing function.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node, apply: node.ApplyTransform}
	g.tweens[0] = gween.New(float32(node.Rotation), float32(to), duration, fn)
	g.fields[0] = &node.Rotation
	return g
}

// TweenOpacity animates an opacity node's value to the target over the
// specified duration using the easing function.
func TweenOpacity(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	value := node.Opacity()
	g := &TweenGroup{count: 1, target: node}
	g.apply = func() { node.SetOpacity(value) }
	g.tweens[0] = gween.New(float32(value), float32(to), duration, fn)
	g.fields[0] = &value
	return g
}

// TweenColor animates all four components of a paint node's fill color to the
// target color over the specified duration. The node's content must be a
// RectFill, SolidRect, or RoundedRect; other content yields a finished group.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := contentColor(node.Content())
	if c == nil {
		return &TweenGroup{target: node, Done: true}
	}
	g := &TweenGroup{count: 4, target: node}
	g.apply = func() { node.MarkDirty(DirtyMaterial) }
	g.tweens[0] = gween.New(float32(c.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(c.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(c.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(c.A), float32(to.A), duration, fn)
	g.fields[0] = &c.R
	g.fields[1] = &c.G
	g.fields[2] = &c.B
	g.fields[3] = &c.A
	return g
}

// contentColor returns a pointer to the fill color of solid content.
func contentColor(c Content) *Color {
	switch c := c.(type) {
	case *RectFill:
		return &c.Color
	case *SolidRect:
		return &c.Color
	case *RoundedRect:
		return &c.Color
	}
	return nil
}
