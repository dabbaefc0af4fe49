package aspen

import (
	"image"
	"testing"
)

func newSoftwareScene(w, h int, dpr float64) (*SoftwareRenderer, *ImageBackingStore, *Node) {
	sr := NewSoftwareRenderer()
	store := NewImageBackingStore(w, h, dpr)
	sr.SetBackingStore(store)
	root := NewRoot("root")
	sr.SetRootNode(root)
	return sr, store, root
}

func TestSoftwareRendererFirstFrame(t *testing.T) {
	sr, store, root := newSoftwareScene(100, 80, 1)
	root.AddChild(NewPaint("p", &RectFill{Rect: Rect{10, 10, 20, 20}, Color: red}))

	assertRegion(t, sr.Render(), image.Rect(0, 0, 100, 80))
	if err := sr.Flush(); err != nil {
		t.Fatal(err)
	}
	assertRegion(t, store.TakeFlushed(), image.Rect(0, 0, 100, 80))
	assertPixel(t, store.Image(), 0, 0, whiteRGBA)
	assertPixel(t, store.Image(), 15, 15, redRGBA)
	if store.Painting() {
		t.Error("store should not be painting after Render")
	}
}

func TestSoftwareRendererFlushesOnlyDamage(t *testing.T) {
	sr, store, root := newSoftwareScene(100, 80, 1)
	xf := NewTransform("xf")
	root.AddChild(xf)
	xf.AddChild(NewPaint("p", &RectFill{Rect: Rect{10, 10, 20, 20}, Color: red}))
	sr.Render()
	sr.Flush()
	store.TakeFlushed()

	sr.Render()
	sr.Flush()
	if got := store.TakeFlushed(); !got.IsEmpty() {
		t.Errorf("unchanged frame flushed %v", got)
	}

	xf.SetPosition(50, 0)
	sr.Render()
	sr.Flush()
	assertRegion(t, store.TakeFlushed(), image.Rect(10, 10, 30, 30), image.Rect(60, 10, 80, 30))
	assertPixel(t, store.Image(), 15, 15, whiteRGBA)
	assertPixel(t, store.Image(), 65, 15, redRGBA)
}

func TestSoftwareRendererSkipsWithoutDevice(t *testing.T) {
	sr := NewSoftwareRenderer()
	sr.SetRootNode(NewRoot("root"))
	if got := sr.Render(); !got.IsEmpty() {
		t.Errorf("no backing store: rendered %v", got)
	}
	if err := sr.Flush(); err != nil {
		t.Errorf("Flush without store: %v", err)
	}

	store := NewImageBackingStore(0, 0, 1)
	sr.SetBackingStore(store)
	if store.Image() != nil {
		t.Fatal("zero-size store should have no pixels")
	}
	if got := sr.Render(); !got.IsEmpty() {
		t.Errorf("empty device: rendered %v", got)
	}
}

func TestSoftwareRendererResizeRepaints(t *testing.T) {
	sr, store, _ := newSoftwareScene(100, 80, 1)
	sr.Render()

	store.Resize(120, 90)
	assertRegion(t, sr.Render(), image.Rect(0, 0, 120, 90))
	assertPixel(t, store.Image(), 110, 85, whiteRGBA)
}

func TestSoftwareRendererDevicePixelRatio(t *testing.T) {
	sr, store, root := newSoftwareScene(200, 160, 2)
	root.AddChild(NewPaint("p", &RectFill{Rect: Rect{10, 10, 20, 20}, Color: red}))

	assertRegion(t, sr.Render(), image.Rect(0, 0, 100, 80))
	if got := sr.BackgroundRect(); got != image.Rect(0, 0, 100, 80) {
		t.Errorf("logical background = %v", got)
	}
	assertPixel(t, store.Image(), 25, 25, redRGBA)
	assertPixel(t, store.Image(), 59, 59, redRGBA)
	assertPixel(t, store.Image(), 15, 15, whiteRGBA)
	assertPixel(t, store.Image(), 61, 61, whiteRGBA)
}

func TestSoftwareRendererFractionalRatioCoversDevice(t *testing.T) {
	sr, store, _ := newSoftwareScene(1001, 601, 1.5)
	sr.Render()
	if got := sr.BackgroundRect(); got != image.Rect(0, 0, 668, 401) {
		t.Errorf("logical background = %v, want rounded up", got)
	}
	assertPixel(t, store.Image(), 1000, 300, whiteRGBA)
	assertPixel(t, store.Image(), 500, 600, whiteRGBA)
	assertPixel(t, store.Image(), 1000, 600, whiteRGBA)
}

func TestSoftwareRendererFullRepaint(t *testing.T) {
	sr, _, root := newSoftwareScene(100, 80, 1)
	root.AddChild(NewPaint("p", &RectFill{Rect: Rect{10, 10, 20, 20}, Color: red}))
	sr.Render()

	sr.SetFullRepaint(true)
	if !sr.FullRepaint() {
		t.Fatal("FullRepaint should be enabled")
	}
	assertRegion(t, sr.Render(), image.Rect(0, 0, 100, 80))
}

func TestSoftwareRendererClearColor(t *testing.T) {
	sr, store, _ := newSoftwareScene(10, 10, 1)
	sr.SetClearColor(green)
	if sr.ClearColor() != green {
		t.Errorf("ClearColor = %v", sr.ClearColor())
	}
	sr.Render()
	assertPixel(t, store.Image(), 5, 5, greenRGBA)

	sr.SetClearColor(red)
	assertRegion(t, sr.Render(), image.Rect(0, 0, 10, 10))
	assertPixel(t, store.Image(), 5, 5, redRGBA)
}

func TestSoftwareRendererFrameObserver(t *testing.T) {
	sr, _, root := newSoftwareScene(100, 80, 1)
	root.AddChild(NewPaint("p", &RectFill{Rect: Rect{10, 10, 20, 20}, Color: red}))

	var frames []FrameStats
	sr.SetFrameObserver(FrameObserverFunc(func(s FrameStats) { frames = append(frames, s) }))
	sr.Render()
	sr.Render()

	if len(frames) != 2 {
		t.Fatalf("observed %d frames, want 2", len(frames))
	}
	first := frames[0]
	if first.RenderListLen != 2 || first.DirtyNodes != 2 || !first.Opaque {
		t.Errorf("first frame stats = %+v", first)
	}
	assertRegion(t, first.UpdateRegion, image.Rect(0, 0, 100, 80))
	if !frames[1].UpdateRegion.IsEmpty() || frames[1].DirtyNodes != 0 {
		t.Errorf("second frame stats = %+v", frames[1])
	}
	if sr.FlushRegion().IsEmpty() != frames[1].FlushRegion.IsEmpty() {
		t.Error("FlushRegion should match the last frame")
	}
}

func TestImageBackingStoreSnapshot(t *testing.T) {
	store := NewImageBackingStore(4, 4, 0)
	if store.DevicePixelRatio() != 1 {
		t.Errorf("dpr = %v, want 1 for non-positive input", store.DevicePixelRatio())
	}
	store.Image().Pix[0] = 42
	snap := store.Snapshot()
	store.Image().Pix[0] = 7
	if snap.Pix[0] != 42 {
		t.Error("snapshot should be a copy")
	}

	store.Resize(-1, 4)
	if store.Snapshot() != nil {
		t.Error("store without pixels should snapshot to nil")
	}
}

func TestImageBackingStoreResizeSameSizeKeepsPixels(t *testing.T) {
	store := NewImageBackingStore(4, 4, 1)
	img := store.Image()
	store.Resize(4, 4)
	if store.Image() != img {
		t.Error("resizing to the same size should keep the image")
	}
}

func TestDeviceRegion(t *testing.T) {
	b := image.Rect(0, 0, 200, 200)
	assertRegion(t, deviceRegion(RegionFromRect(image.Rect(10, 10, 20, 20)), 1, b), image.Rect(10, 10, 20, 20))
	assertRegion(t, deviceRegion(RegionFromRect(image.Rect(10, 10, 20, 20)), 2, b), image.Rect(20, 20, 40, 40))
	assertRegion(t, deviceRegion(RegionFromRect(image.Rect(90, 90, 150, 150)), 2, b), image.Rect(180, 180, 200, 200))
}

func TestLogicalRect(t *testing.T) {
	if got := logicalRect(image.Pt(200, 150), 2); got != image.Rect(0, 0, 100, 75) {
		t.Errorf("logicalRect = %v", got)
	}
	if got := logicalRect(image.Pt(1001, 601), 1.5); got != image.Rect(0, 0, 668, 401) {
		t.Errorf("fractional logicalRect = %v", got)
	}
}
