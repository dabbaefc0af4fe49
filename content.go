package aspen

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Content is the paintable payload of a paint node. The set of implementations
// is closed: each one maps to exactly one RenderableType.
type Content interface {
	// RenderableType returns the paint routine tag for this content.
	RenderableType() RenderableType
	// Bounds returns the content's extent in the paint node's local coordinates.
	Bounds() Rect

	isOpaque() bool
	paint(p *Painter, rs RenderState)
}

// RenderState describes the accumulated state a CustomPaint callback is
// invoked with.
type RenderState struct {
	Transform  Matrix
	Opacity    float64
	ClipRegion Region
	HasClip    bool
}

// cachedContent is implemented by content that renders into an intermediate
// image and must drop it when marked dirty.
type cachedContent interface {
	invalidate()
}

// --- Texture ---

// Texture wraps an image used by texture-based content.
type Texture struct {
	img      image.Image
	hasAlpha bool
}

// NewTexture wraps img. Whether the texture carries transparency is computed
// once here.
func NewTexture(img image.Image) *Texture {
	return &Texture{img: img, hasAlpha: imageHasAlpha(img)}
}

// LoadTexture decodes the image file at path, applying EXIF orientation.
func LoadTexture(path string) (*Texture, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("aspen: load texture %s: %w", path, err)
	}
	Logger().Debug("texture loaded", "path", path, "size", img.Bounds().Size())
	return NewTexture(img), nil
}

// Image returns the wrapped image.
func (t *Texture) Image() image.Image {
	if t == nil {
		return nil
	}
	return t.img
}

// Bounds returns the wrapped image's bounds.
func (t *Texture) Bounds() image.Rectangle {
	if t == nil || t.img == nil {
		return image.Rectangle{}
	}
	return t.img.Bounds()
}

// HasAlphaChannel reports whether any pixel of the texture is not fully opaque.
func (t *Texture) HasAlphaChannel() bool {
	if t == nil {
		return true
	}
	return t.hasAlpha
}

func imageHasAlpha(img image.Image) bool {
	if img == nil {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// sourceRect resolves an optional sub-rectangle against the texture bounds.
func (t *Texture) sourceRect(sr image.Rectangle) image.Rectangle {
	b := t.Bounds()
	if sr.Empty() {
		return b
	}
	return sr.Intersect(b)
}

// --- SimpleRect ---

// RectFill is a solid color rectangle.
type RectFill struct {
	Rect  Rect
	Color Color
}

func (c *RectFill) RenderableType() RenderableType { return RenderableSimpleRect }
func (c *RectFill) Bounds() Rect                   { return c.Rect }
func (c *RectFill) isOpaque() bool                 { return c.Color.IsOpaque() }
func (c *RectFill) paint(p *Painter, _ RenderState) {
	p.FillRect(c.Rect, c.Color)
}

// --- SimpleTexture ---

// TextureQuad draws SourceRect of Texture (the whole texture when empty)
// stretched over Rect.
type TextureQuad struct {
	Rect       Rect
	SourceRect image.Rectangle
	Texture    *Texture
	Filtering  Filtering
}

func (c *TextureQuad) RenderableType() RenderableType { return RenderableSimpleTexture }
func (c *TextureQuad) Bounds() Rect                   { return c.Rect }
func (c *TextureQuad) isOpaque() bool                 { return !c.Texture.HasAlphaChannel() }
func (c *TextureQuad) paint(p *Painter, _ RenderState) {
	if c.Texture == nil {
		return
	}
	p.DrawTexture(c.Rect, c.Texture, c.Texture.sourceRect(c.SourceRect), c.Filtering)
}

// --- Image ---

// ImageBlock draws part of a texture into TargetRect with optional mirroring.
type ImageBlock struct {
	TargetRect Rect
	SourceRect image.Rectangle
	Texture    *Texture
	MirrorH    bool
	MirrorV    bool
	Smooth     bool
}

func (c *ImageBlock) RenderableType() RenderableType { return RenderableImage }
func (c *ImageBlock) Bounds() Rect                   { return c.TargetRect }
func (c *ImageBlock) isOpaque() bool                 { return !c.Texture.HasAlphaChannel() }
func (c *ImageBlock) paint(p *Painter, _ RenderState) {
	if c.Texture == nil {
		return
	}
	p.drawImage(c.Texture.Image(), c.Texture.sourceRect(c.SourceRect), c.TargetRect,
		c.MirrorH, c.MirrorV, smoothFiltering(c.Smooth))
}

func smoothFiltering(smooth bool) Filtering {
	if smooth {
		return FilteringLinear
	}
	return FilteringNearest
}

// --- Painter ---

// PaintCanvas is content drawn by a user callback into a cached image of the
// given size. The callback runs again only after the node is marked dirty.
type PaintCanvas struct {
	Size      Vec2
	Opaque    bool
	FillColor Color
	Paint     func(p *Painter)

	cache *image.RGBA
}

func (c *PaintCanvas) RenderableType() RenderableType { return RenderablePainter }
func (c *PaintCanvas) Bounds() Rect                   { return Rect{0, 0, c.Size.X, c.Size.Y} }
func (c *PaintCanvas) isOpaque() bool                 { return c.Opaque }
func (c *PaintCanvas) invalidate()                    { c.cache = nil }

func (c *PaintCanvas) paint(p *Painter, _ RenderState) {
	img := c.image()
	if img == nil {
		return
	}
	p.drawImage(img, img.Bounds(), c.Bounds(), false, false, FilteringLinear)
}

// image returns the cached canvas, rendering it first when stale.
func (c *PaintCanvas) image() *image.RGBA {
	if c.cache != nil {
		return c.cache
	}
	w := int(math.Ceil(c.Size.X))
	h := int(math.Ceil(c.Size.Y))
	if w <= 0 || h <= 0 {
		return nil
	}
	c.cache = image.NewRGBA(image.Rect(0, 0, w, h))
	cp := NewPainter(c.cache)
	if c.FillColor.A > 0 {
		cp.Fill(c.FillColor)
	}
	if c.Paint != nil {
		c.Paint(cp)
	}
	return c.cache
}

// --- Rectangle ---

// RoundedRect is a rectangle with optional rounded corners and an inner pen.
type RoundedRect struct {
	Rect     Rect
	Color    Color
	Radius   float64
	PenWidth float64
	PenColor Color
}

func (c *RoundedRect) RenderableType() RenderableType { return RenderableRectangle }
func (c *RoundedRect) Bounds() Rect                   { return c.Rect }

func (c *RoundedRect) isOpaque() bool {
	if c.Radius > 0 || !c.Color.IsOpaque() {
		return false
	}
	return c.PenWidth <= 0 || c.PenColor.IsOpaque()
}

func (c *RoundedRect) paint(p *Painter, _ RenderState) {
	pen := math.Min(c.PenWidth, math.Min(c.Rect.Width, c.Rect.Height)/2)
	if pen <= 0 {
		p.FillRoundedRect(c.Rect, c.Radius, c.Color)
		return
	}
	inner := Rect{c.Rect.X + pen, c.Rect.Y + pen, c.Rect.Width - 2*pen, c.Rect.Height - 2*pen}
	innerRadius := math.Max(c.Radius-pen, 0)
	if !inner.IsEmpty() && c.Color.A > 0 {
		p.FillRoundedRect(inner, innerRadius, c.Color)
	}
	p.StrokeRoundedRect(c.Rect, c.Radius, pen, c.PenColor)
}

// --- Glyph ---

// GlyphRun is a line of text drawn with a bitmap font face. Origin is the
// position of the baseline's left end.
type GlyphRun struct {
	Text   string
	Origin Vec2
	Color  Color
	Face   font.Face

	cache *image.Alpha
}

func (c *GlyphRun) RenderableType() RenderableType { return RenderableGlyph }
func (c *GlyphRun) isOpaque() bool                 { return false }
func (c *GlyphRun) invalidate()                    { c.cache = nil }

func (c *GlyphRun) face() font.Face {
	if c.Face == nil {
		return basicfont.Face7x13
	}
	return c.Face
}

func (c *GlyphRun) Bounds() Rect {
	b, _ := font.BoundString(c.face(), c.Text)
	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	if r.Empty() {
		return Rect{}
	}
	return Rect{c.Origin.X + float64(r.Min.X), c.Origin.Y + float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())}
}

func (c *GlyphRun) paint(p *Painter, _ RenderState) {
	if c.cache == nil {
		c.cache = rasterizeText(c.face(), c.Text)
	}
	if c.cache == nil {
		return
	}
	p.drawMaskImage(c.cache, c.Origin, c.Color)
}

// --- NinePatch ---

// NinePatch stretches a texture over Rect keeping the Left, Top, Right, and
// Bottom margins (in texture pixels) unscaled.
type NinePatch struct {
	Rect    Rect
	Texture *Texture
	Left    int
	Top     int
	Right   int
	Bottom  int

	cache     *image.NRGBA
	cacheSize image.Point
}

func (c *NinePatch) RenderableType() RenderableType { return RenderableNinePatch }
func (c *NinePatch) Bounds() Rect                   { return c.Rect }
func (c *NinePatch) isOpaque() bool                 { return !c.Texture.HasAlphaChannel() }
func (c *NinePatch) invalidate()                    { c.cache = nil }

func (c *NinePatch) paint(p *Painter, _ RenderState) {
	if c.Texture == nil || c.Rect.IsEmpty() {
		return
	}
	size := image.Pt(int(math.Ceil(c.Rect.Width)), int(math.Ceil(c.Rect.Height)))
	if c.cache == nil || c.cacheSize != size {
		c.cache = composeNinePatch(c.Texture.Image(), size, c.Left, c.Top, c.Right, c.Bottom)
		c.cacheSize = size
	}
	p.drawImage(c.cache, c.cache.Bounds(), c.Rect, false, false, FilteringLinear)
}

// composeNinePatch builds the stretched image at the given pixel size.
func composeNinePatch(src image.Image, size image.Point, left, top, right, bottom int) *image.NRGBA {
	sb := src.Bounds()
	left, right = clampMargins(left, right, min(sb.Dx(), size.X))
	top, bottom = clampMargins(top, bottom, min(sb.Dy(), size.Y))

	sx := [4]int{sb.Min.X, sb.Min.X + left, sb.Max.X - right, sb.Max.X}
	sy := [4]int{sb.Min.Y, sb.Min.Y + top, sb.Max.Y - bottom, sb.Max.Y}
	dx := [4]int{0, left, size.X - right, size.X}
	dy := [4]int{0, top, size.Y - bottom, size.Y}

	dst := imaging.New(size.X, size.Y, image.Transparent.C)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			sr := image.Rect(sx[col], sy[row], sx[col+1], sy[row+1])
			w, h := dx[col+1]-dx[col], dy[row+1]-dy[row]
			if sr.Empty() || w <= 0 || h <= 0 {
				continue
			}
			piece := imaging.Crop(src, sr)
			if piece.Bounds().Dx() != w || piece.Bounds().Dy() != h {
				piece = imaging.Resize(piece, w, h, imaging.Linear)
			}
			dst = imaging.Paste(dst, piece, image.Pt(dx[col], dy[row]))
		}
	}
	return dst
}

func clampMargins(a, b, total int) (int, int) {
	a, b = max(a, 0), max(b, 0)
	if a+b > total {
		a = total * a / max(a+b, 1)
		b = total - a
	}
	return a, b
}

// --- SimpleRectangle ---

// SolidRect is a solid color rectangle without pen or radius.
type SolidRect struct {
	Rect  Rect
	Color Color
}

func (c *SolidRect) RenderableType() RenderableType { return RenderableSimpleRectangle }
func (c *SolidRect) Bounds() Rect                   { return c.Rect }
func (c *SolidRect) isOpaque() bool                 { return c.Color.IsOpaque() }
func (c *SolidRect) paint(p *Painter, _ RenderState) {
	p.FillRect(c.Rect, c.Color)
}

// --- SimpleImage ---

// TextureImage draws SourceRect of Texture (the whole texture when empty) into
// Rect.
type TextureImage struct {
	Rect       Rect
	SourceRect image.Rectangle
	Texture    *Texture
	Smooth     bool
}

func (c *TextureImage) RenderableType() RenderableType { return RenderableSimpleImage }
func (c *TextureImage) Bounds() Rect                   { return c.Rect }
func (c *TextureImage) isOpaque() bool                 { return !c.Texture.HasAlphaChannel() }
func (c *TextureImage) paint(p *Painter, _ RenderState) {
	if c.Texture == nil {
		return
	}
	p.DrawTexture(c.Rect, c.Texture, c.Texture.sourceRect(c.SourceRect), smoothFiltering(c.Smooth))
}

// --- Sprite ---

// SpriteFrame draws one cell of a sprite sheet. Frames are numbered left to
// right, top to bottom, in cells of FrameSize.
type SpriteFrame struct {
	Rect      Rect
	Texture   *Texture
	FrameSize image.Point
	Frame     int
}

func (c *SpriteFrame) RenderableType() RenderableType { return RenderableSprite }
func (c *SpriteFrame) Bounds() Rect                   { return c.Rect }
func (c *SpriteFrame) isOpaque() bool                 { return false }

// FrameRect returns the texture rectangle of the current frame.
func (c *SpriteFrame) FrameRect() image.Rectangle {
	b := c.Texture.Bounds()
	if c.FrameSize.X <= 0 || c.FrameSize.Y <= 0 {
		return b
	}
	cols := b.Dx() / c.FrameSize.X
	rows := b.Dy() / c.FrameSize.Y
	if cols == 0 || rows == 0 {
		return image.Rectangle{}
	}
	f := c.Frame % (cols * rows)
	if f < 0 {
		f += cols * rows
	}
	origin := b.Min.Add(image.Pt(f%cols*c.FrameSize.X, f/cols*c.FrameSize.Y))
	return image.Rectangle{Min: origin, Max: origin.Add(c.FrameSize)}
}

func (c *SpriteFrame) paint(p *Painter, _ RenderState) {
	if c.Texture == nil {
		return
	}
	if sr := c.FrameRect(); !sr.Empty() {
		p.DrawTexture(c.Rect, c.Texture, sr, FilteringNearest)
	}
}

// --- RenderNode ---

// RenderFlags describe what a CustomPaint callback promises about its output.
type RenderFlags uint8

const (
	// OpaqueRendering promises every pixel inside Rect is painted opaquely.
	OpaqueRendering RenderFlags = 1 << iota
	// BoundedRectRendering promises nothing is painted outside Rect.
	BoundedRectRendering
)

// unboundedExtent is the half-size, in logical pixels, of the area claimed by
// a CustomPaint without BoundedRectRendering.
const unboundedExtent = 1 << 30

// CustomPaint hands the painter to a user callback. Without
// BoundedRectRendering the callback may draw anywhere and the node is treated
// as covering the whole window.
type CustomPaint struct {
	Rect   Rect
	Flags  RenderFlags
	Render func(p *Painter, rs RenderState)
}

func (c *CustomPaint) RenderableType() RenderableType { return RenderableRenderNode }
func (c *CustomPaint) Bounds() Rect                   { return c.Rect }
func (c *CustomPaint) isOpaque() bool                 { return c.Flags&OpaqueRendering != 0 }
func (c *CustomPaint) bounded() bool                  { return c.Flags&BoundedRectRendering != 0 }

func (c *CustomPaint) paint(p *Painter, rs RenderState) {
	if c.Render != nil {
		c.Render(p, rs)
	}
}

// rasterizeText renders text at the origin into an alpha mask whose bounds are
// relative to the baseline origin.
func rasterizeText(face font.Face, text string) *image.Alpha {
	b, _ := font.BoundString(face, text)
	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	if r.Empty() {
		return nil
	}
	mask := image.NewAlpha(r)
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	d.DrawString(text)
	return mask
}
