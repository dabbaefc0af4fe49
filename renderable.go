package aspen

import "image"

// opacityEpsilon is the opacity below which a node is treated as invisible.
const opacityEpsilon = 1e-12

// RenderableNode is the renderer's per-paint-node state: bounds rounded in
// both directions, the dirty region accumulated since the last paint, and the
// transform, clip, and opacity accumulated from the node's ancestors.
type RenderableNode struct {
	typ  RenderableType
	node *Node

	isOpaque bool
	isDirty  bool

	dirtyRegion         Region
	previousDirtyRegion Region

	boundingRectMin image.Rectangle
	boundingRectMax image.Rectangle

	transform     Matrix
	clipRegion    Region
	hasClipRegion bool
	opacity       float64
}

// NewRenderableNode returns the renderable for a paint node. The type tag is
// taken from the node's content and never changes afterwards.
func NewRenderableNode(node *Node) *RenderableNode {
	r := &RenderableNode{
		node:      node,
		transform: IdentityMatrix,
		opacity:   1,
	}
	if c := node.Content(); c != nil {
		r.typ = c.RenderableType()
	}
	return r
}

// content returns the backing content, or nil when the node is gone or its
// content no longer matches the type tag.
func (r *RenderableNode) content() Content {
	if r.node == nil || r.node.IsDisposed() {
		return nil
	}
	c := r.node.Content()
	if c == nil || c.RenderableType() != r.typ {
		return nil
	}
	return c
}

func (r *RenderableNode) Node() *Node                      { return r.node }
func (r *RenderableNode) Type() RenderableType             { return r.typ }
func (r *RenderableNode) IsOpaque() bool                   { return r.isOpaque }
func (r *RenderableNode) IsDirty() bool                    { return r.isDirty }
func (r *RenderableNode) DirtyRegion() Region              { return r.dirtyRegion }
func (r *RenderableNode) BoundingRectMin() image.Rectangle { return r.boundingRectMin }
func (r *RenderableNode) BoundingRectMax() image.Rectangle { return r.boundingRectMax }
func (r *RenderableNode) Transform() Matrix                { return r.transform }
func (r *RenderableNode) ClipRegion() Region               { return r.clipRegion }
func (r *RenderableNode) HasClipRegion() bool              { return r.hasClipRegion }
func (r *RenderableNode) Opacity() float64                 { return r.opacity }

// SetTransform sets the accumulated transform. Takes effect on the next Update.
func (r *RenderableNode) SetTransform(m Matrix) { r.transform = m }

// SetClipRegion sets the accumulated clip. Takes effect on the next Update.
func (r *RenderableNode) SetClipRegion(clip Region, hasClip bool) {
	r.clipRegion = clip
	r.hasClipRegion = hasClip
}

// SetOpacity sets the accumulated opacity. Takes effect on the next Update.
func (r *RenderableNode) SetOpacity(o float64) { r.opacity = o }

// Update recomputes the opaque flag and the bounding rectangles from the
// content and the accumulated state, then marks the whole max rect dirty.
func (r *RenderableNode) Update() {
	c := r.content()
	if c == nil {
		return
	}

	r.isOpaque = c.isOpaque() && !r.transform.IsRotating() && r.opacity >= 1

	if cp, ok := c.(*CustomPaint); ok && !cp.bounded() {
		r.boundingRectMin = image.Rectangle{}
		r.boundingRectMax = image.Rect(-unboundedExtent, -unboundedExtent, unboundedExtent, unboundedExtent)
	} else {
		br := r.transform.MapRect(c.Bounds())
		r.boundingRectMin = rectMin(br)
		r.boundingRectMax = rectMax(br)
	}

	if r.hasClipRegion && r.clipRegion.RectCount() <= 1 {
		if r.clipRegion.IsEmpty() {
			r.boundingRectMin = image.Rectangle{}
			r.boundingRectMax = image.Rectangle{}
		} else {
			cr := r.clipRegion.Bounds()
			r.boundingRectMin = r.boundingRectMin.Intersect(cr)
			r.boundingRectMax = r.boundingRectMax.Intersect(cr)
		}
	}

	r.dirtyRegion = RegionFromRect(r.boundingRectMax)
	r.isDirty = true
}

// MarkGeometryDirty drops cached content renderings and updates the node.
func (r *RenderableNode) MarkGeometryDirty() {
	r.invalidate()
	r.Update()
}

// MarkMaterialDirty drops cached content renderings and updates the node.
func (r *RenderableNode) MarkMaterialDirty() {
	r.invalidate()
	r.Update()
}

func (r *RenderableNode) invalidate() {
	if cc, ok := r.content().(cachedContent); ok {
		cc.invalidate()
	}
}

// AddDirtyRegion adds the part of dirty inside the max bounding rect. With
// force the node becomes dirty; without it a clean node is left untouched.
func (r *RenderableNode) AddDirtyRegion(dirty Region, force bool) {
	if r.content() == nil || !dirty.Intersects(r.boundingRectMax) {
		return
	}
	if force {
		r.isDirty = true
	}
	if r.isDirty {
		r.dirtyRegion = r.dirtyRegion.Union(dirty.IntersectRect(r.boundingRectMax))
	}
}

// SubtractDirtyRegion removes obscured from a dirty node's dirty region. A node
// left with nothing to repaint becomes clean.
func (r *RenderableNode) SubtractDirtyRegion(obscured Region) {
	if r.content() == nil || !r.isDirty || !obscured.Intersects(r.boundingRectMax) {
		return
	}
	r.dirtyRegion = r.dirtyRegion.Subtract(obscured)
	if r.dirtyRegion.IsEmpty() {
		r.isDirty = false
	}
}

// PreviousDirtyRegion returns the area painted in the last frame. On removal
// the stored region is returned whole and consumed; otherwise only the part
// outside the current max rect is returned and the region is kept.
func (r *RenderableNode) PreviousDirtyRegion(removed bool) Region {
	if removed {
		prev := r.previousDirtyRegion
		r.previousDirtyRegion = Region{}
		return prev
	}
	if r.content() == nil {
		return Region{}
	}
	return r.previousDirtyRegion.SubtractRect(r.boundingRectMax)
}

// takePreviousDirtyRegion returns PreviousDirtyRegion(false) and trims the
// stored region to the current max rect, so a vacated area is handed to the
// nodes behind once even when this node is never painted again.
func (r *RenderableNode) takePreviousDirtyRegion() Region {
	prev := r.PreviousDirtyRegion(false)
	if !prev.IsEmpty() {
		r.previousDirtyRegion = r.previousDirtyRegion.IntersectRect(r.boundingRectMax)
	}
	return prev
}

// RenderNode paints the dirty part of the node and returns the painted region.
// forceOpaque paints without blending. Clean, invisible, or fully obscured
// nodes are skipped and their dirty state cleared.
func (r *RenderableNode) RenderNode(p *Painter, forceOpaque bool) Region {
	c := r.content()
	if c == nil {
		return Region{}
	}
	if !r.isDirty || r.opacity < opacityEpsilon ||
		(r.typ != RenderableRenderNode && r.dirtyRegion.IsEmpty()) {
		r.clearDirty()
		return Region{}
	}

	clip := r.dirtyRegion
	if r.hasClipRegion && r.clipRegion.RectCount() > 1 {
		clip = clip.Intersect(r.clipRegion)
	}

	p.Save()
	p.SetOpacity(r.opacity)
	p.SetClipRegion(clip, ReplaceClip)
	p.SetTransform(r.transform)
	if forceOpaque || r.isOpaque {
		p.SetCompositionMode(CompositionSource)
	} else {
		p.SetCompositionMode(CompositionSourceOver)
	}
	c.paint(p, RenderState{
		Transform:  r.transform,
		Opacity:    r.opacity,
		ClipRegion: clip,
		HasClip:    true,
	})
	p.Restore()

	var painted Region
	if cp, ok := c.(*CustomPaint); ok {
		if cp.bounded() {
			painted = RegionFromRect(r.boundingRectMax)
		} else {
			painted = RegionFromRect(p.LogicalBounds())
		}
		r.previousDirtyRegion = painted
	} else {
		painted = r.dirtyRegion
		r.previousDirtyRegion = RegionFromRect(r.boundingRectMax)
	}
	r.clearDirty()
	return painted
}

func (r *RenderableNode) clearDirty() {
	r.isDirty = false
	r.dirtyRegion = Region{}
}
