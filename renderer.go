package aspen

import "image"

// Renderer tracks the paint nodes of a scene tree and computes, each frame,
// the smallest set of pixels that must be repainted. It is driven by a
// front-end in three steps: BuildRenderList, OptimizeRenderList, RenderNodes.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	root *Node

	backgroundNode *Node
	backgroundFill *RectFill
	background     *RenderableNode
	backgroundRect image.Rectangle
	dpr            float64

	nodes      map[*Node]*RenderableNode
	renderList []*RenderableNode
	updater    *nodeUpdater

	// pending is damage not tied to a live renderable: full repaints and the
	// areas vacated by removed nodes. Consumed by the next optimize.
	pending  Region
	isOpaque bool
}

// NewRenderer returns a renderer with an opaque white background and no root.
func NewRenderer() *Renderer {
	r := &Renderer{
		backgroundFill: &RectFill{Color: ColorWhite},
		dpr:            1,
		nodes:          make(map[*Node]*RenderableNode),
	}
	r.backgroundNode = NewPaint("background", r.backgroundFill)
	r.background = NewRenderableNode(r.backgroundNode)
	r.updater = newNodeUpdater(r)
	return r
}

// SetRootNode attaches the renderer to root, detaching it from any previous
// root. The whole tree is updated and a full repaint is queued.
func (r *Renderer) SetRootNode(root *Node) {
	if r.root == root {
		return
	}
	if r.root != nil {
		r.root.RemoveObserver(r)
	}
	clear(r.nodes)
	r.updater.reset()
	r.renderList = r.renderList[:0]
	r.root = root
	if root != nil {
		root.AddObserver(r)
		r.updater.UpdateNodes(root, false)
	}
	r.MarkDirty()
}

// RootNode returns the attached root, or nil.
func (r *Renderer) RootNode() *Node {
	return r.root
}

// Renderable returns the renderable mapped to a paint node, or nil.
func (r *Renderer) Renderable(n *Node) *RenderableNode {
	return r.nodes[n]
}

// Background returns the background renderable, always first in the render list.
func (r *Renderer) Background() *RenderableNode {
	return r.background
}

// RenderList returns the list built by the last BuildRenderList. The slice is
// reused by the next build.
func (r *Renderer) RenderList() []*RenderableNode {
	return r.renderList
}

// NodeChanged implements NodeObserver.
func (r *Renderer) NodeChanged(node *Node, state DirtyState) {
	if state&DirtyGeometry != 0 {
		r.contentChanged(node, (*RenderableNode).MarkGeometryDirty)
	}
	if state&DirtyMaterial != 0 {
		r.contentChanged(node, (*RenderableNode).MarkMaterialDirty)
	}
	if state&(DirtyMatrix|DirtyNodeAdded|DirtyOpacity|DirtySubtreeBlocked|DirtyForceUpdate) != 0 {
		r.updater.UpdateNodes(node, false)
	}
	if state&DirtyNodeRemoved != 0 {
		r.nodeRemoved(node)
	}
}

// contentChanged marks a mapped renderable dirty. Unmapped nodes, and nodes
// whose content changed kind, go through the updater instead.
func (r *Renderer) contentChanged(node *Node, mark func(*RenderableNode)) {
	if rn := r.nodes[node]; rn != nil && rn.content() != nil {
		mark(rn)
		return
	}
	r.updater.UpdateNodes(node, false)
}

// nodeRemoved folds the area last painted by node and its descendants into
// the pending damage and forgets them.
func (r *Renderer) nodeRemoved(node *Node) {
	if rn := r.nodes[node]; rn != nil {
		r.forget(node, rn)
	}
	for _, child := range node.Children() {
		r.nodeRemoved(child)
	}
	r.updater.UpdateNodes(node, true)
}

// forget drops the renderable of node and queues the area it last painted.
func (r *Renderer) forget(node *Node, rn *RenderableNode) {
	dirty := rn.PreviousDirtyRegion(true)
	if dirty.IsEmpty() {
		dirty = RegionFromRect(rn.BoundingRectMax())
	}
	r.pending = r.pending.Union(dirty)
	delete(r.nodes, node)
	Logger().Debug("renderable removed", "node", node.Name, "id", node.ID, "damage", dirty.Bounds())
}

// MarkDirty queues a repaint of the whole background rect.
func (r *Renderer) MarkDirty() {
	r.pending = RegionFromRect(r.backgroundRect)
}

// SetBackgroundRect sets the logical area being rendered and the device pixel
// ratio it is presented at. A change queues a full repaint.
func (r *Renderer) SetBackgroundRect(rect image.Rectangle, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	if r.backgroundRect == rect && r.dpr == dpr {
		return
	}
	r.backgroundRect = rect
	r.dpr = dpr
	r.backgroundFill.Rect = toRect(rect)
	r.background.MarkGeometryDirty()
	r.MarkDirty()
}

// BackgroundRect returns the logical area being rendered.
func (r *Renderer) BackgroundRect() image.Rectangle {
	return r.backgroundRect
}

// DevicePixelRatio returns the ratio passed to SetBackgroundRect.
func (r *Renderer) DevicePixelRatio() float64 {
	return r.dpr
}

// SetBackgroundColor sets the color painted under all content.
func (r *Renderer) SetBackgroundColor(c Color) {
	if r.backgroundFill.Color == c {
		return
	}
	r.backgroundFill.Color = c
	r.background.MarkMaterialDirty()
}

// BackgroundColor returns the color painted under all content.
func (r *Renderer) BackgroundColor() Color {
	return r.backgroundFill.Color
}

// IsOpaque reports whether the last optimized frame covers the whole
// background rect with opaque content.
func (r *Renderer) IsOpaque() bool {
	return r.isOpaque
}

// BuildRenderList rebuilds the paint-ordered list of renderables.
func (r *Renderer) BuildRenderList() {
	r.renderList = buildRenderList(r.renderList, r.root, r.background, r.nodes)
}

// OptimizeRenderList settles every renderable's dirty region for this frame
// and returns the region that must be repainted. Dirty state is consumed by
// RenderNodes, so calling it again before painting returns the same region.
func (r *Renderer) OptimizeRenderList() Region {
	obscured := backwardPass(r.renderList, r.pending, r.backgroundRect)
	r.pending = Region{}
	r.isOpaque = obscured.Contains(r.backgroundRect)
	return forwardPass(r.renderList)
}

// RenderNodes paints every dirty renderable in list order and returns the
// region actually painted. The background is painted without blending.
func (r *Renderer) RenderNodes(p *Painter) Region {
	var painted Region
	for i, rn := range r.renderList {
		painted = painted.Union(rn.RenderNode(p, i == 0))
	}
	return painted
}

// backwardPass walks list front to back. Damage from nodes in front is pushed
// into the nodes behind, parts hidden by opaque nodes in front are dropped,
// and dirty content outside background is discarded. It returns the region
// covered by opaque content.
func backwardPass(list []*RenderableNode, dirty Region, background image.Rectangle) Region {
	var obscured Region
	for i := len(list) - 1; i >= 0; i-- {
		rn := list[i]
		if !dirty.IsEmpty() {
			rn.AddDirtyRegion(dirty, true)
		}
		if !obscured.IsEmpty() {
			rn.SubtractDirtyRegion(obscured)
		}
		if rn.IsOpaque() {
			obscured = obscured.UnionRect(rn.BoundingRectMin())
		}
		// A node moved under opaque content is clean by now but still
		// left pixels behind.
		if prev := rn.takePreviousDirtyRegion(); !prev.IsEmpty() {
			dirty = dirty.Union(prev)
		}
		if !rn.IsDirty() {
			continue
		}
		if !rn.BoundingRectMax().In(background) {
			if outside := rn.DirtyRegion().SubtractRect(background); !outside.IsEmpty() {
				rn.SubtractDirtyRegion(outside)
			}
		}
		if rn.IsOpaque() {
			dirty = dirty.SubtractRect(rn.BoundingRectMin())
		} else {
			dirty = dirty.Union(rn.DirtyRegion())
		}
	}
	return obscured
}

// forwardPass walks list back to front, forcing damage from nodes behind into
// blended nodes and into opaque nodes whose edges fall between pixels. It
// returns the union of all dirty regions.
func forwardPass(list []*RenderableNode) Region {
	var dirty Region
	for _, rn := range list {
		if (!rn.IsOpaque() || rn.BoundingRectMax() != rn.BoundingRectMin()) && !dirty.IsEmpty() {
			rn.AddDirtyRegion(dirty, true)
		}
		dirty = dirty.Union(rn.DirtyRegion())
	}
	return dirty
}
