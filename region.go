package aspen

import (
	"image"
	"math"
	"slices"
	"strings"
)

// Region is a set of pixels described by disjoint integer rectangles. The zero
// value is the empty region. Regions are values: every operation returns a new
// Region and never modifies or aliases its receiver or arguments.
type Region struct {
	rects []image.Rectangle
}

// RegionFromRect returns a region covering r. An empty r yields the empty region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	if r.Empty() {
		return Region{}
	}
	return Region{rects: []image.Rectangle{r}}
}

// RegionFromRects returns the union of the given rectangles.
func RegionFromRects(rs ...image.Rectangle) Region {
	var g Region
	for _, r := range rs {
		g = g.UnionRect(r)
	}
	return g
}

// IsEmpty reports whether the region covers no pixels.
func (g Region) IsEmpty() bool {
	return len(g.rects) == 0
}

// RectCount returns the number of disjoint rectangles in the region.
func (g Region) RectCount() int {
	return len(g.rects)
}

// Rects returns a copy of the region's disjoint rectangles, sorted top to
// bottom, then left to right.
func (g Region) Rects() []image.Rectangle {
	return slices.Clone(g.rects)
}

// Bounds returns the smallest rectangle containing the region.
func (g Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, r := range g.rects {
		b = b.Union(r)
	}
	return b
}

// Area returns the number of pixels covered by the region.
func (g Region) Area() int {
	area := 0
	for _, r := range g.rects {
		area += r.Dx() * r.Dy()
	}
	return area
}

// UnionRect returns g ∪ r.
func (g Region) UnionRect(r image.Rectangle) Region {
	r = r.Canon()
	if r.Empty() {
		return g
	}
	if g.IsEmpty() {
		return Region{rects: []image.Rectangle{r}}
	}
	pieces := []image.Rectangle{r}
	for _, e := range g.rects {
		if !e.Overlaps(r) {
			continue
		}
		pieces = subtractFromAll(pieces, e)
		if len(pieces) == 0 {
			return g
		}
	}
	out := make([]image.Rectangle, 0, len(g.rects)+len(pieces))
	out = append(out, g.rects...)
	out = append(out, pieces...)
	return Region{rects: coalesce(out)}
}

// Union returns g ∪ o.
func (g Region) Union(o Region) Region {
	if o.IsEmpty() {
		return g
	}
	if g.IsEmpty() {
		return o
	}
	for _, r := range o.rects {
		g = g.UnionRect(r)
	}
	return g
}

// SubtractRect returns g \ r.
func (g Region) SubtractRect(r image.Rectangle) Region {
	r = r.Canon()
	if r.Empty() || g.IsEmpty() {
		return g
	}
	if !g.Intersects(r) {
		return g
	}
	return Region{rects: coalesce(subtractFromAll(g.rects, r))}
}

// Subtract returns g \ o.
func (g Region) Subtract(o Region) Region {
	for _, r := range o.rects {
		if g.IsEmpty() {
			break
		}
		g = g.SubtractRect(r)
	}
	return g
}

// IntersectRect returns g ∩ r.
func (g Region) IntersectRect(r image.Rectangle) Region {
	r = r.Canon()
	var out []image.Rectangle
	for _, e := range g.rects {
		if i := e.Intersect(r); !i.Empty() {
			out = append(out, i)
		}
	}
	return Region{rects: coalesce(out)}
}

// Intersect returns g ∩ o.
func (g Region) Intersect(o Region) Region {
	var out []image.Rectangle
	for _, a := range g.rects {
		for _, b := range o.rects {
			if i := a.Intersect(b); !i.Empty() {
				out = append(out, i)
			}
		}
	}
	return Region{rects: coalesce(out)}
}

// Intersects reports whether any pixel of r lies in g.
func (g Region) Intersects(r image.Rectangle) bool {
	for _, e := range g.rects {
		if e.Overlaps(r) {
			return true
		}
	}
	return false
}

// IntersectsRegion reports whether g and o share at least one pixel.
func (g Region) IntersectsRegion(o Region) bool {
	for _, r := range o.rects {
		if g.Intersects(r) {
			return true
		}
	}
	return false
}

// Contains reports whether every pixel of r lies in g. An empty r is
// contained in every region.
func (g Region) Contains(r image.Rectangle) bool {
	r = r.Canon()
	if r.Empty() {
		return true
	}
	rest := []image.Rectangle{r}
	for _, e := range g.rects {
		if !e.Overlaps(r) {
			continue
		}
		rest = subtractFromAll(rest, e)
		if len(rest) == 0 {
			return true
		}
	}
	return false
}

// ContainsRegion reports whether o ⊆ g.
func (g Region) ContainsRegion(o Region) bool {
	return o.Subtract(g).IsEmpty()
}

// Equal reports whether g and o cover exactly the same pixels.
func (g Region) Equal(o Region) bool {
	if g.Area() != o.Area() {
		return false
	}
	return g.Subtract(o).IsEmpty()
}

// Translate returns g shifted by (dx, dy).
func (g Region) Translate(dx, dy int) Region {
	if g.IsEmpty() {
		return g
	}
	d := image.Pt(dx, dy)
	out := make([]image.Rectangle, len(g.rects))
	for i, r := range g.rects {
		out[i] = r.Add(d)
	}
	return Region{rects: out}
}

func (g Region) String() string {
	if g.IsEmpty() {
		return "Region{}"
	}
	var b strings.Builder
	b.WriteString("Region{")
	for i, r := range g.rects {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(r.String())
	}
	b.WriteString("}")
	return b.String()
}

// --- Rectangle arithmetic ---

// subtractFromAll removes cut from every rectangle in rs.
func subtractFromAll(rs []image.Rectangle, cut image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rs)+3)
	for _, r := range rs {
		out = appendDifference(out, r, cut)
	}
	return out
}

// appendDifference appends the parts of r outside cut: at most a top band, a
// bottom band, and left/right pieces of the middle band.
func appendDifference(dst []image.Rectangle, r, cut image.Rectangle) []image.Rectangle {
	if !r.Overlaps(cut) {
		return append(dst, r)
	}
	if r.Min.Y < cut.Min.Y {
		dst = append(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, cut.Min.Y))
		r.Min.Y = cut.Min.Y
	}
	if cut.Max.Y < r.Max.Y {
		dst = append(dst, image.Rect(r.Min.X, cut.Max.Y, r.Max.X, r.Max.Y))
		r.Max.Y = cut.Max.Y
	}
	if r.Min.X < cut.Min.X {
		dst = append(dst, image.Rect(r.Min.X, r.Min.Y, cut.Min.X, r.Max.Y))
	}
	if cut.Max.X < r.Max.X {
		dst = append(dst, image.Rect(cut.Max.X, r.Min.Y, r.Max.X, r.Max.Y))
	}
	return dst
}

// coalesce merges rectangles that share a full edge and sorts the result.
// Inputs must be disjoint; merging two disjoint edge-sharing rectangles keeps
// the set disjoint.
func coalesce(rs []image.Rectangle) []image.Rectangle {
	if len(rs) == 0 {
		return nil
	}
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(rs) && !merged; i++ {
			for j := i + 1; j < len(rs); j++ {
				if m, ok := mergeRects(rs[i], rs[j]); ok {
					rs[i] = m
					rs = slices.Delete(rs, j, j+1)
					merged = true
					break
				}
			}
		}
	}
	slices.SortFunc(rs, func(a, b image.Rectangle) int {
		if a.Min.Y != b.Min.Y {
			return a.Min.Y - b.Min.Y
		}
		return a.Min.X - b.Min.X
	})
	return rs
}

func mergeRects(a, b image.Rectangle) (image.Rectangle, bool) {
	if a.Min.Y == b.Min.Y && a.Max.Y == b.Max.Y && (a.Max.X == b.Min.X || b.Max.X == a.Min.X) {
		return a.Union(b), true
	}
	if a.Min.X == b.Min.X && a.Max.X == b.Max.X && (a.Max.Y == b.Min.Y || b.Max.Y == a.Min.Y) {
		return a.Union(b), true
	}
	return image.Rectangle{}, false
}

// --- Rounding ---

// pixelSnap absorbs floating-point noise from matrix products so that a value
// like 99.99999999997 is treated as the pixel boundary 100.
const pixelSnap = 1e-6

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < pixelSnap {
		return r
	}
	return v
}

// rectMin rounds r inward: the largest integer rectangle fully inside r. Safe
// for occlusion claims.
func rectMin(r Rect) image.Rectangle {
	return intRect(
		int(math.Ceil(snap(r.X))), int(math.Ceil(snap(r.Y))),
		int(math.Floor(snap(r.Right()))), int(math.Floor(snap(r.Bottom()))),
	)
}

// rectMax rounds r outward: the smallest integer rectangle containing r. Safe
// for damage claims.
func rectMax(r Rect) image.Rectangle {
	return intRect(
		int(math.Floor(snap(r.X))), int(math.Floor(snap(r.Y))),
		int(math.Ceil(snap(r.Right()))), int(math.Ceil(snap(r.Bottom()))),
	)
}

// rectRound rounds each edge of r to the nearest pixel.
func rectRound(r Rect) image.Rectangle {
	return intRect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

// intRect builds a well-formed rectangle, collapsing inverted extents to empty
// instead of swapping them the way image.Rect does.
func intRect(x0, y0, x1, y1 int) image.Rectangle {
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: image.Pt(x0, y0), Max: image.Pt(x1, y1)}
}

// toRect converts an integer rectangle to a logical Rect.
func toRect(r image.Rectangle) Rect {
	return Rect{float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())}
}

// transformRegion maps a region through an axis-aligned matrix, rounding
// outward and clipping to bounds.
func transformRegion(r Region, m Matrix, bounds image.Rectangle) Region {
	var out Region
	for _, rect := range r.rects {
		out = out.UnionRect(rectMax(m.MapRect(toRect(rect))).Intersect(bounds))
	}
	return out
}
