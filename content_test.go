package aspen

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestTextureAlpha(t *testing.T) {
	if solidTexture(2, 2, redRGBA).HasAlphaChannel() {
		t.Error("opaque texture reported alpha")
	}
	if !solidTexture(2, 2, rgba(0, 0, 128, 128)).HasAlphaChannel() {
		t.Error("translucent texture should report alpha")
	}
	var nilTex *Texture
	if !nilTex.HasAlphaChannel() || nilTex.Image() != nil || !nilTex.Bounds().Empty() {
		t.Error("nil texture should be empty and translucent")
	}
	if !NewTexture(nil).HasAlphaChannel() {
		t.Error("texture without image should report alpha")
	}
}

func TestTextureSourceRect(t *testing.T) {
	tex := solidTexture(8, 4, redRGBA)
	if got := tex.sourceRect(image.Rectangle{}); got != image.Rect(0, 0, 8, 4) {
		t.Errorf("empty source = %v", got)
	}
	if got := tex.sourceRect(image.Rect(6, 2, 20, 20)); got != image.Rect(6, 2, 8, 4) {
		t.Errorf("clamped source = %v", got)
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Bounds().Size() != image.Pt(3, 2) {
		t.Errorf("size = %v", tex.Bounds().Size())
	}
	if tex.HasAlphaChannel() {
		t.Error("opaque PNG reported alpha")
	}

	if _, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestContentOpacity(t *testing.T) {
	opaque := solidTexture(2, 2, redRGBA)
	tests := []struct {
		name string
		c    Content
		want bool
	}{
		{"opaque fill", &RectFill{Color: red}, true},
		{"translucent fill", &RectFill{Color: halfBlue}, false},
		{"solid rect", &SolidRect{Color: green}, true},
		{"texture quad", &TextureQuad{Texture: opaque}, true},
		{"texture quad without texture", &TextureQuad{}, false},
		{"image block", &ImageBlock{Texture: opaque}, true},
		{"texture image", &TextureImage{Texture: opaque}, true},
		{"nine patch", &NinePatch{Texture: opaque}, true},
		{"sprite", &SpriteFrame{Texture: opaque}, false},
		{"glyphs", &GlyphRun{Text: "x", Color: red}, false},
		{"canvas", &PaintCanvas{Opaque: true}, true},
		{"square rect", &RoundedRect{Color: red}, true},
		{"rounded rect", &RoundedRect{Color: red, Radius: 4}, false},
		{"translucent pen", &RoundedRect{Color: red, PenWidth: 2, PenColor: halfBlue}, false},
		{"opaque pen", &RoundedRect{Color: red, PenWidth: 2, PenColor: green}, true},
		{"custom opaque", &CustomPaint{Flags: OpaqueRendering}, true},
		{"custom", &CustomPaint{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.isOpaque(); got != tt.want {
				t.Errorf("isOpaque = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampMargins(t *testing.T) {
	tests := []struct {
		a, b, total  int
		wantA, wantB int
	}{
		{2, 3, 10, 2, 3},
		{8, 8, 10, 5, 5},
		{-1, 4, 10, 0, 4},
		{6, 2, 4, 3, 1},
		{0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		a, b := clampMargins(tt.a, tt.b, tt.total)
		if a != tt.wantA || b != tt.wantB {
			t.Errorf("clampMargins(%d, %d, %d) = %d, %d, want %d, %d", tt.a, tt.b, tt.total, a, b, tt.wantA, tt.wantB)
		}
	}
}

func TestComposeNinePatchKeepsCorners(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	gray := color.NRGBA{128, 128, 128, 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, gray)
		}
	}
	corner := color.NRGBA{255, 0, 0, 255}
	src.SetNRGBA(0, 0, corner)
	src.SetNRGBA(3, 3, corner)

	out := composeNinePatch(src, image.Pt(10, 10), 1, 1, 1, 1)
	if out.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got != corner {
		t.Errorf("top-left = %v, want %v", got, corner)
	}
	if got := out.NRGBAAt(9, 9); got != corner {
		t.Errorf("bottom-right = %v, want %v", got, corner)
	}
	if got := out.NRGBAAt(9, 0); got != gray {
		t.Errorf("top-right = %v, want %v", got, gray)
	}
}

func TestSpriteFrameRect(t *testing.T) {
	tex := solidTexture(64, 32, redRGBA)
	tests := []struct {
		name  string
		size  image.Point
		frame int
		want  image.Rectangle
	}{
		{"first", image.Pt(16, 16), 0, image.Rect(0, 0, 16, 16)},
		{"second row", image.Pt(16, 16), 5, image.Rect(16, 16, 32, 32)},
		{"wraps", image.Pt(16, 16), 8, image.Rect(0, 0, 16, 16)},
		{"negative", image.Pt(16, 16), -1, image.Rect(48, 16, 64, 32)},
		{"no frame size", image.Point{}, 3, image.Rect(0, 0, 64, 32)},
		{"cell larger than sheet", image.Pt(100, 16), 0, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &SpriteFrame{Texture: tex, FrameSize: tt.size, Frame: tt.frame}
			if got := c.FrameRect(); got != tt.want {
				t.Errorf("FrameRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGlyphRunBounds(t *testing.T) {
	g := &GlyphRun{Text: "Hi", Origin: Vec2{10, 20}, Face: basicfont.Face7x13}
	b := g.Bounds()
	if b.X != 10 || b.Y != 9 || b.Height != 13 {
		t.Errorf("Bounds = %v, want origin (10, 9) and height 13", b)
	}
	if b.Width <= 7 || b.Width > 14 {
		t.Errorf("Bounds width = %v, want two glyph cells", b.Width)
	}
	if got := (&GlyphRun{}).Bounds(); got != (Rect{}) {
		t.Errorf("empty text bounds = %v", got)
	}
	if (&GlyphRun{}).face() != basicfont.Face7x13 {
		t.Error("nil face should default to basicfont")
	}
}

func TestPaintCanvasCaches(t *testing.T) {
	calls := 0
	c := &PaintCanvas{
		Size:      Vec2{4, 4},
		FillColor: green,
		Paint:     func(p *Painter) { calls++ },
	}
	img := c.image()
	if img == nil || c.image() != img || calls != 1 {
		t.Fatalf("second image() should reuse the cache, calls = %d", calls)
	}
	if got := img.RGBAAt(1, 1); got != greenRGBA {
		t.Errorf("fill = %v", got)
	}

	c.invalidate()
	c.image()
	if calls != 2 {
		t.Errorf("calls after invalidate = %d, want 2", calls)
	}

	if (&PaintCanvas{}).image() != nil {
		t.Error("zero-size canvas should have no image")
	}
}

func TestMarkDirtyInvalidatesCanvas(t *testing.T) {
	r, root := newTestRenderer()
	calls := 0
	canvas := &PaintCanvas{Size: Vec2{10, 10}, Paint: func(*Painter) { calls++ }}
	n := NewPaint("canvas", canvas)
	root.AddChild(n)
	img := settle(t, r)

	renderFrame(r, img)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	n.MarkDirty(DirtyMaterial)
	renderFrame(r, img)
	if calls != 2 {
		t.Errorf("calls after MarkDirty = %d, want 2", calls)
	}
}

func TestTextureQuadPaints(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	p := NewPainter(img)
	(&TextureQuad{Rect: Rect{0, 0, 8, 8}, Texture: solidTexture(2, 2, greenRGBA)}).paint(p, RenderState{})
	assertPixel(t, img, 4, 4, greenRGBA)
	assertPixel(t, img, 9, 9, rgba(0, 0, 0, 0))
}

func TestSpriteFramePaintsCurrentCell(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			c := redRGBA
			if x >= 2 {
				c = greenRGBA
			}
			sheet.SetRGBA(x, y, c)
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	sprite := &SpriteFrame{Rect: Rect{0, 0, 2, 2}, Texture: NewTexture(sheet), FrameSize: image.Pt(2, 2), Frame: 1}
	sprite.paint(NewPainter(img), RenderState{})
	assertPixel(t, img, 0, 0, greenRGBA)
	assertPixel(t, img, 1, 1, greenRGBA)
}
