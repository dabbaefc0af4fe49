package aspen

import (
	"image"
	"math"
	"time"

	"golang.org/x/image/draw"
)

// PaintDevice is a surface of device pixels.
type PaintDevice interface {
	// Image returns the pixels to paint into. Nil means the device is not
	// available.
	Image() *image.RGBA
	// DevicePixelRatio returns the number of device pixels per logical pixel.
	DevicePixelRatio() float64
}

// BackingStore is a paint device whose painted areas must be flushed to
// become visible. Regions are in logical pixels.
type BackingStore interface {
	PaintDevice
	BeginPaint(region Region)
	EndPaint()
	Flush(region Region) error
}

// SoftwareRenderer renders a scene tree into a backing store, repainting and
// flushing only the damaged parts of each frame.
type SoftwareRenderer struct {
	*Renderer

	store       BackingStore
	painter     *Painter
	clearColor  Color
	fullRepaint bool
	flushRegion Region
	observer    FrameObserver
}

// NewSoftwareRenderer returns a renderer with an opaque white clear color and
// no backing store.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{
		Renderer:   NewRenderer(),
		clearColor: ColorWhite,
	}
}

// SetBackingStore sets the store frames are painted into. A new store
// receives a full repaint.
func (s *SoftwareRenderer) SetBackingStore(bs BackingStore) {
	if s.store == bs {
		return
	}
	s.store = bs
	s.painter = nil
	s.MarkDirty()
}

// BackingStore returns the current store, or nil.
func (s *SoftwareRenderer) BackingStore() BackingStore {
	return s.store
}

// SetClearColor sets the background color of every frame.
func (s *SoftwareRenderer) SetClearColor(c Color) { s.clearColor = c }

// ClearColor returns the background color of every frame.
func (s *SoftwareRenderer) ClearColor() Color { return s.clearColor }

// SetFullRepaint makes every frame repaint and flush the whole window. Useful
// for debugging damage tracking.
func (s *SoftwareRenderer) SetFullRepaint(enabled bool) { s.fullRepaint = enabled }

// FullRepaint reports whether full-repaint mode is enabled.
func (s *SoftwareRenderer) FullRepaint() bool { return s.fullRepaint }

// SetFrameObserver sets the observer notified after every frame. Nil removes it.
func (s *SoftwareRenderer) SetFrameObserver(o FrameObserver) { s.observer = o }

// FlushRegion returns the region painted by the last frame.
func (s *SoftwareRenderer) FlushRegion() Region { return s.flushRegion }

// Render paints one frame and returns the region that changed. Frames are
// skipped when there is no backing store or it has no pixels; the last
// presented frame then stays on screen.
func (s *SoftwareRenderer) Render() Region {
	if s.store == nil {
		Logger().Debug("frame skipped", "reason", "no backing store")
		return Region{}
	}
	img := s.store.Image()
	if img == nil || img.Bounds().Empty() {
		Logger().Debug("frame skipped", "reason", "empty paint device")
		return Region{}
	}
	dpr := s.store.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}

	s.SetBackgroundColor(s.clearColor)
	s.SetBackgroundRect(logicalRect(img.Bounds().Size(), dpr), dpr)
	if s.painter == nil || s.painter.Target() != img {
		// New pixels start out blank.
		s.painter = NewPainter(img)
		s.MarkDirty()
	}
	if s.fullRepaint {
		s.MarkDirty()
	}

	var stats FrameStats
	t0 := time.Now()
	s.BuildRenderList()
	stats.BuildTime = time.Since(t0)

	t0 = time.Now()
	update := s.OptimizeRenderList()
	stats.OptimizeTime = time.Since(t0)
	stats.DirtyNodes = countDirty(s.RenderList())

	t0 = time.Now()
	s.store.BeginPaint(update)
	s.painter.SetDeviceTransform(deviceMatrix(img.Bounds().Min, dpr))
	s.flushRegion = s.RenderNodes(s.painter)
	s.store.EndPaint()
	stats.RenderTime = time.Since(t0)

	stats.RenderListLen = len(s.RenderList())
	stats.UpdateRegion = update
	stats.FlushRegion = s.flushRegion
	stats.Opaque = s.IsOpaque()
	logFrame("software", stats)
	if s.observer != nil {
		s.observer.FrameRendered(stats)
	}
	return s.flushRegion
}

// Flush hands the region painted by the last frame to the backing store.
func (s *SoftwareRenderer) Flush() error {
	if s.store == nil || s.flushRegion.IsEmpty() {
		return nil
	}
	return s.store.Flush(s.flushRegion)
}

// logicalRect returns the logical rect of a device of the given pixel size,
// rounded up so the background reaches the last device pixel.
func logicalRect(size image.Point, dpr float64) image.Rectangle {
	return image.Rect(0, 0, int(math.Ceil(float64(size.X)/dpr)), int(math.Ceil(float64(size.Y)/dpr)))
}

// deviceMatrix maps logical pixels to the device pixels of an image whose
// bounds start at origin.
func deviceMatrix(origin image.Point, dpr float64) Matrix {
	return Matrix{dpr, 0, 0, dpr, float64(origin.X), float64(origin.Y)}
}

// deviceRegion converts a logical region to device pixels inside bounds,
// rounding outward.
func deviceRegion(r Region, dpr float64, bounds image.Rectangle) Region {
	m := deviceMatrix(bounds.Min, dpr)
	if m.IsIdentity() {
		return r.IntersectRect(bounds)
	}
	return transformRegion(r, m, bounds)
}

// --- ImageBackingStore ---

// ImageBackingStore is an in-memory backing store. Flushed regions accumulate
// until TakeFlushed is called.
type ImageBackingStore struct {
	img      *image.RGBA
	dpr      float64
	painting bool
	flushed  Region
}

// NewImageBackingStore returns a store of width x height device pixels.
func NewImageBackingStore(width, height int, dpr float64) *ImageBackingStore {
	if dpr <= 0 {
		dpr = 1
	}
	b := &ImageBackingStore{dpr: dpr}
	b.Resize(width, height)
	return b
}

// Image implements PaintDevice.
func (b *ImageBackingStore) Image() *image.RGBA { return b.img }

// DevicePixelRatio implements PaintDevice.
func (b *ImageBackingStore) DevicePixelRatio() float64 { return b.dpr }

// Resize replaces the pixels with a transparent image of the new size. A
// zero or negative size leaves the store without pixels.
func (b *ImageBackingStore) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		b.img = nil
		return
	}
	if b.img != nil && b.img.Bounds().Dx() == width && b.img.Bounds().Dy() == height {
		return
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// BeginPaint implements BackingStore.
func (b *ImageBackingStore) BeginPaint(Region) { b.painting = true }

// EndPaint implements BackingStore.
func (b *ImageBackingStore) EndPaint() { b.painting = false }

// Painting reports whether a frame is being painted.
func (b *ImageBackingStore) Painting() bool { return b.painting }

// Flush implements BackingStore.
func (b *ImageBackingStore) Flush(r Region) error {
	b.flushed = b.flushed.Union(r)
	return nil
}

// TakeFlushed returns and clears the accumulated flushed region.
func (b *ImageBackingStore) TakeFlushed() Region {
	r := b.flushed
	b.flushed = Region{}
	return r
}

// Snapshot returns a copy of the current pixels.
func (b *ImageBackingStore) Snapshot() *image.RGBA {
	if b.img == nil {
		return nil
	}
	out := image.NewRGBA(b.img.Bounds())
	draw.Draw(out, out.Bounds(), b.img, b.img.Bounds().Min, draw.Src)
	return out
}
