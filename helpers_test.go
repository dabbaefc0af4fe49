package aspen

import (
	"image"
	"image/color"
	"testing"
)

// changeRecord is one NodeChanged notification.
type changeRecord struct {
	node  *Node
	state DirtyState
}

// recordingObserver records every notification it receives.
type recordingObserver struct {
	changes []changeRecord
}

func (o *recordingObserver) NodeChanged(node *Node, state DirtyState) {
	o.changes = append(o.changes, changeRecord{node, state})
}

func (o *recordingObserver) last() changeRecord {
	if len(o.changes) == 0 {
		return changeRecord{}
	}
	return o.changes[len(o.changes)-1]
}

func (o *recordingObserver) reset() {
	o.changes = o.changes[:0]
}

// observedRoot returns a root node with a recording observer attached.
func observedRoot() (*Node, *recordingObserver) {
	root := NewRoot("root")
	obs := &recordingObserver{}
	root.AddObserver(obs)
	return root, obs
}

// rgba is a shorthand for premultiplied 8-bit colors in pixel assertions.
func rgba(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// assertPixel checks the pixel at (x, y).
func assertPixel(t *testing.T, img *image.RGBA, x, y int, want color.RGBA) {
	t.Helper()
	if got := img.RGBAAt(x, y); got != want {
		t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

// assertRegion checks that got covers exactly the pixels of want.
func assertRegion(t *testing.T, got Region, want ...image.Rectangle) {
	t.Helper()
	w := RegionFromRects(want...)
	if !got.Equal(w) {
		t.Errorf("region = %v, want %v", got, w)
	}
}

// solidTexture returns an opaque or translucent single-color texture.
func solidTexture(w, h int, c color.RGBA) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return NewTexture(img)
}

// renderFrame runs one full build, optimize, render cycle into img and
// returns the update and painted regions.
func renderFrame(r *Renderer, img *image.RGBA) (update, painted Region) {
	r.BuildRenderList()
	update = r.OptimizeRenderList()
	painted = r.RenderNodes(NewPainter(img))
	return update, painted
}

// newTestRenderer returns a renderer with an 800x600 opaque white background
// attached to a fresh root.
func newTestRenderer() (*Renderer, *Node) {
	r := NewRenderer()
	r.SetBackgroundRect(image.Rect(0, 0, 800, 600), 1)
	root := NewRoot("root")
	r.SetRootNode(root)
	return r, root
}
