package aspen

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/vector"
)

// cornerSegments is the number of line segments used per rounded corner.
const cornerSegments = 8

type painterState struct {
	transform Matrix
	opacity   float64
	clip      Region
	hasClip   bool
	mode      CompositionMode
}

// Painter draws into an RGBA image on the CPU. Coordinates pass through the
// user transform and then the device transform; clip regions are given in the
// space between the two (logical pixels).
type Painter struct {
	dst    *image.RGBA
	device Matrix
	state  painterState
	stack  []painterState
	rast   vector.Rasterizer
}

// NewPainter returns a painter targeting dst with identity transforms, full
// opacity, and no clip.
func NewPainter(dst *image.RGBA) *Painter {
	return &Painter{
		dst:    dst,
		device: IdentityMatrix,
		state:  painterState{transform: IdentityMatrix, opacity: 1},
	}
}

// Target returns the image being painted.
func (p *Painter) Target() *image.RGBA {
	return p.dst
}

// SetDeviceTransform sets the logical to device pixel mapping, for example a
// device pixel ratio scale or a projection window.
func (p *Painter) SetDeviceTransform(m Matrix) {
	p.device = m
}

// DeviceTransform returns the logical to device pixel mapping.
func (p *Painter) DeviceTransform() Matrix {
	return p.device
}

// LogicalBounds returns the target bounds in logical pixels.
func (p *Painter) LogicalBounds() image.Rectangle {
	return rectMax(p.device.Invert().MapRect(toRect(p.dst.Bounds())))
}

// Save pushes the current state.
func (p *Painter) Save() {
	p.stack = append(p.stack, p.state)
}

// Restore pops the most recently saved state. No-op on an empty stack.
func (p *Painter) Restore() {
	if len(p.stack) == 0 {
		return
	}
	p.state = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
}

// SetTransform replaces the user transform.
func (p *Painter) SetTransform(m Matrix) { p.state.transform = m }

// Transform returns the user transform.
func (p *Painter) Transform() Matrix { return p.state.transform }

// SetOpacity sets the opacity applied to every draw, clamped to [0, 1].
func (p *Painter) SetOpacity(o float64) { p.state.opacity = clamp01(o) }

// Opacity returns the current opacity.
func (p *Painter) Opacity() float64 { return p.state.opacity }

// SetCompositionMode selects blending (SourceOver) or copying (Source).
func (p *Painter) SetCompositionMode(m CompositionMode) { p.state.mode = m }

// CompositionMode returns the current composition mode.
func (p *Painter) CompositionMode() CompositionMode { return p.state.mode }

// SetClipRegion sets or narrows the clip. An empty region with ReplaceClip
// clips away everything.
func (p *Painter) SetClipRegion(r Region, op ClipOperation) {
	if op == IntersectClip && p.state.hasClip {
		r = p.state.clip.Intersect(r)
	}
	p.state.clip = r
	p.state.hasClip = true
}

// SetClipping enables or disables the current clip without discarding it.
func (p *Painter) SetClipping(enabled bool) { p.state.hasClip = enabled }

// ClipRegion returns the clip region and whether clipping is enabled.
func (p *Painter) ClipRegion() (Region, bool) { return p.state.clip, p.state.hasClip }

// --- Draw operations ---

// Fill paints c over the whole clip area, ignoring the user transform.
func (p *Painter) Fill(c Color) {
	clip := p.deviceClip()
	src := image.NewUniform(c.toRGBA(p.state.opacity))
	op := p.drawOp()
	for _, r := range clip.rects {
		draw.Draw(p.dst, r, src, image.Point{}, op)
	}
}

// FillRect fills r with c.
func (p *Painter) FillRect(r Rect, c Color) {
	if r.IsEmpty() {
		return
	}
	p.fillPolygons(c, []Vec2{
		{r.X, r.Y}, {r.Right(), r.Y}, {r.Right(), r.Bottom()}, {r.X, r.Bottom()},
	})
}

// FillRoundedRect fills r with c, rounding the corners by radius.
func (p *Painter) FillRoundedRect(r Rect, radius float64, c Color) {
	if r.IsEmpty() {
		return
	}
	p.fillPolygons(c, roundedRectPoints(r, radius))
}

// StrokeRoundedRect paints a ring of the given width inside r.
func (p *Painter) StrokeRoundedRect(r Rect, radius, width float64, c Color) {
	if r.IsEmpty() || width <= 0 {
		return
	}
	outer := roundedRectPoints(r, radius)
	inner := Rect{r.X + width, r.Y + width, r.Width - 2*width, r.Height - 2*width}
	if inner.IsEmpty() {
		p.fillPolygons(c, outer)
		return
	}
	hole := roundedRectPoints(inner, math.Max(radius-width, 0))
	for i, j := 0, len(hole)-1; i < j; i, j = i+1, j-1 {
		hole[i], hole[j] = hole[j], hole[i]
	}
	p.fillPolygons(c, outer, hole)
}

// FillPolygon fills the closed polygon through pts with c. Overlapping parts of
// self-intersecting polygons with opposite winding cancel out.
func (p *Painter) FillPolygon(pts []Vec2, c Color) {
	if len(pts) < 3 {
		return
	}
	p.fillPolygons(c, pts)
}

// DrawTexture draws the sr part of tex stretched over target.
func (p *Painter) DrawTexture(target Rect, tex *Texture, sr image.Rectangle, f Filtering) {
	if tex == nil {
		return
	}
	p.drawImage(tex.Image(), sr, target, false, false, f)
}

// DrawText draws text with face, with origin at the left end of the baseline.
func (p *Painter) DrawText(face font.Face, origin Vec2, text string, c Color) {
	if mask := rasterizeText(face, text); mask != nil {
		p.drawMaskImage(mask, origin, c)
	}
}

// --- Internals ---

func (p *Painter) drawOp() draw.Op {
	if p.state.mode == CompositionSource {
		return draw.Src
	}
	return draw.Over
}

// deviceClip returns the clip as a region of device pixels within the target.
func (p *Painter) deviceClip() Region {
	b := p.dst.Bounds()
	if !p.state.hasClip {
		return RegionFromRect(b)
	}
	if p.device.IsIdentity() {
		return p.state.clip.IntersectRect(b)
	}
	return transformRegion(p.state.clip, p.device, b)
}

// fillPolygons rasterizes the polygons with the full transform into a coverage
// mask and composites c through it, one clip rectangle at a time.
func (p *Painter) fillPolygons(c Color, polys ...[]Vec2) {
	if p.state.opacity <= 0 {
		return
	}
	clip := p.deviceClip()
	if clip.IsEmpty() {
		return
	}
	m := p.device.Multiply(p.state.transform)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	mapped := make([][]Vec2, len(polys))
	for i, poly := range polys {
		mapped[i] = make([]Vec2, len(poly))
		for j, pt := range poly {
			x, y := m.MapPoint(pt.X, pt.Y)
			mapped[i][j] = Vec2{x, y}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	area := rectMax(Rect{minX, minY, maxX - minX, maxY - minY}).Intersect(clip.Bounds())
	if area.Empty() {
		return
	}

	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	p.rast.Reset(area.Dx(), area.Dy())
	for _, poly := range mapped {
		if len(poly) < 3 {
			continue
		}
		p.rast.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, pt := range poly[1:] {
			p.rast.LineTo(float32(pt.X-ox), float32(pt.Y-oy))
		}
		p.rast.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	p.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	rgba := c.toRGBA(p.state.opacity)
	op := p.drawOp()
	if rgba.A == 0xff {
		// Identical to Src inside the shape and blends partially covered edges.
		op = draw.Over
	}
	src := image.NewUniform(rgba)
	for _, r := range clip.IntersectRect(area).rects {
		draw.DrawMask(p.dst, r, src, image.Point{}, mask, r.Min.Sub(area.Min), op)
	}
}

// drawImage maps the sr part of img onto target, optionally mirrored.
func (p *Painter) drawImage(img image.Image, sr image.Rectangle, target Rect, mirrorH, mirrorV bool, f Filtering) {
	if img == nil || sr.Empty() || target.IsEmpty() || p.state.opacity <= 0 {
		return
	}
	sx := target.Width / float64(sr.Dx())
	sy := target.Height / float64(sr.Dy())
	local := Matrix{sx, 0, 0, sy, target.X - float64(sr.Min.X)*sx, target.Y - float64(sr.Min.Y)*sy}
	if mirrorH {
		local[0] = -sx
		local[4] = target.Right() + float64(sr.Min.X)*sx
	}
	if mirrorV {
		local[3] = -sy
		local[5] = target.Bottom() + float64(sr.Min.Y)*sy
	}
	p.transformImage(img, sr, local, f, nil)
}

// drawMaskImage paints c through an alpha mask whose origin sits at origin.
func (p *Painter) drawMaskImage(mask *image.Alpha, origin Vec2, c Color) {
	if p.state.opacity <= 0 {
		return
	}
	src := image.NewUniform(c.toRGBA(1))
	p.transformImage(src, mask.Bounds(), TranslateMatrix(origin.X, origin.Y), FilteringLinear, mask)
}

// transformImage draws the sr part of src through device * user * local,
// once per device clip rectangle.
func (p *Painter) transformImage(src image.Image, sr image.Rectangle, local Matrix, f Filtering, srcMask image.Image) {
	clip := p.deviceClip()
	if clip.IsEmpty() {
		return
	}
	m := p.device.Multiply(p.state.transform).Multiply(local)
	bounds := rectMax(m.MapRect(toRect(sr))).Intersect(clip.Bounds())
	if bounds.Empty() {
		return
	}

	var interp draw.Interpolator = draw.ApproxBiLinear
	if f == FilteringNearest || isPixelAligned(m) {
		interp = draw.NearestNeighbor
	}
	opts := &draw.Options{SrcMask: srcMask}
	if p.state.opacity < 1 {
		opts.DstMask = image.NewUniform(color.Alpha16{A: uint16(math.Round(p.state.opacity * 0xffff))})
	}
	op := p.drawOp()
	aff := m.aff3()
	for _, r := range clip.IntersectRect(bounds).rects {
		interp.Transform(p.dst.SubImage(r).(*image.RGBA), aff, src, sr, op, opts)
	}
}

// isPixelAligned reports whether m is an integer translation.
func isPixelAligned(m Matrix) bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 &&
		m[4] == math.Trunc(m[4]) && m[5] == math.Trunc(m[5])
}

// roundedRectPoints returns a clockwise polygon approximating r with corners
// rounded by radius. A zero radius yields the four corners.
func roundedRectPoints(r Rect, radius float64) []Vec2 {
	radius = math.Min(radius, math.Min(r.Width, r.Height)/2)
	if radius <= 0 {
		return []Vec2{{r.X, r.Y}, {r.Right(), r.Y}, {r.Right(), r.Bottom()}, {r.X, r.Bottom()}}
	}
	centers := [4]Vec2{
		{r.Right() - radius, r.Y + radius},
		{r.Right() - radius, r.Bottom() - radius},
		{r.X + radius, r.Bottom() - radius},
		{r.X + radius, r.Y + radius},
	}
	pts := make([]Vec2, 0, 4*(cornerSegments+1))
	for i, c := range centers {
		start := -math.Pi/2 + float64(i)*math.Pi/2
		for s := 0; s <= cornerSegments; s++ {
			sin, cos := math.Sincos(start + float64(s)*(math.Pi/2)/cornerSegments)
			pts = append(pts, Vec2{c.X + cos*radius, c.Y + sin*radius})
		}
	}
	return pts
}
