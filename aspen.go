package aspen

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the painter converts it for rasterization.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// IsOpaque reports whether the color has full alpha.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

// toRGBA converts the color to a premultiplied color.RGBA, scaled by opacity.
func (c Color) toRGBA(opacity float64) color.RGBA {
	a := clamp01(c.A * opacity)
	return color.RGBA{
		R: uint8(math.Round(clamp01(c.R) * a * 255)),
		G: uint8(math.Round(clamp01(c.G) * a * 255)),
		B: uint8(math.Round(clamp01(c.B) * a * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets, and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned floating-point rectangle in logical coordinates. The
// origin is at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle covers no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// NodeType distinguishes the role of a Node in the scene graph.
type NodeType uint8

const (
	NodeTypeRoot      NodeType = iota // tree root; dispatches change notifications
	NodeTypeGroup                     // plain grouping node with no state of its own
	NodeTypeTransform                 // applies an affine matrix to its subtree
	NodeTypeClip                      // clips its subtree to a rectangle
	NodeTypeOpacity                   // multiplies the opacity of its subtree
	NodeTypePaint                     // leaf-like node carrying paintable Content
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeRoot:
		return "root"
	case NodeTypeGroup:
		return "group"
	case NodeTypeTransform:
		return "transform"
	case NodeTypeClip:
		return "clip"
	case NodeTypeOpacity:
		return "opacity"
	case NodeTypePaint:
		return "paint"
	default:
		return "unknown"
	}
}

// DirtyState is a bitmask describing what changed on a node.
type DirtyState uint16

const (
	DirtyGeometry       DirtyState = 1 << iota // content bounds or shape changed
	DirtyMaterial                              // content colors or textures changed
	DirtyMatrix                                // transform node matrix changed
	DirtyNodeAdded                             // node was attached to a tree
	DirtyNodeRemoved                           // node is being detached from a tree
	DirtyOpacity                               // opacity node value changed
	DirtySubtreeBlocked                        // subtree became hidden or visible
	DirtyForceUpdate                           // re-run the update for the whole subtree
)

// RenderableType tags which paint routine a RenderableNode uses.
type RenderableType uint8

const (
	RenderableSimpleRect RenderableType = iota
	RenderableSimpleTexture
	RenderableImage
	RenderablePainter
	RenderableRectangle
	RenderableGlyph
	RenderableNinePatch
	RenderableSimpleRectangle
	RenderableSimpleImage
	RenderableSprite
	RenderableRenderNode
)

var renderableTypeNames = [...]string{
	"SimpleRect", "SimpleTexture", "Image", "Painter", "Rectangle", "Glyph",
	"NinePatch", "SimpleRectangle", "SimpleImage", "Sprite", "RenderNode",
}

func (t RenderableType) String() string {
	if int(t) < len(renderableTypeNames) {
		return renderableTypeNames[t]
	}
	return "unknown"
}

// CompositionMode selects how the painter combines source and destination.
type CompositionMode uint8

const (
	CompositionSourceOver CompositionMode = iota // standard alpha blending
	CompositionSource                            // opaque copy (skip blending)
)

// ClipOperation selects how SetClipRegion combines with the current clip.
type ClipOperation uint8

const (
	ReplaceClip   ClipOperation = iota // discard the current clip
	IntersectClip                      // intersect with the current clip
)

// Filtering selects the sampling used when a texture is scaled.
type Filtering uint8

const (
	FilteringNearest Filtering = iota
	FilteringLinear
)
