package aspen

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// EbitenBackingStore keeps frames in CPU memory and uploads only flushed
// rectangles to a GPU image, which is then presented on the ebiten screen.
type EbitenBackingStore struct {
	img     *image.RGBA
	dpr     float64
	frame   *ebiten.Image
	pending Region // device pixels flushed but not yet uploaded
	buf     []byte
}

// NewEbitenBackingStore returns an empty store. Resize gives it pixels.
func NewEbitenBackingStore() *EbitenBackingStore {
	return &EbitenBackingStore{dpr: 1}
}

// Image implements PaintDevice.
func (b *EbitenBackingStore) Image() *image.RGBA { return b.img }

// DevicePixelRatio implements PaintDevice.
func (b *EbitenBackingStore) DevicePixelRatio() float64 { return b.dpr }

// Resize discards the content and allocates width x height device pixels.
func (b *EbitenBackingStore) Resize(width, height int, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	b.dpr = dpr
	if width <= 0 || height <= 0 {
		b.img = nil
		b.frame = nil
		b.pending = Region{}
		return
	}
	if b.img != nil && b.img.Bounds().Dx() == width && b.img.Bounds().Dy() == height {
		return
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	if b.frame != nil {
		b.frame.Deallocate()
	}
	b.frame = ebiten.NewImage(width, height)
	b.pending = Region{}
}

// BeginPaint implements BackingStore.
func (b *EbitenBackingStore) BeginPaint(Region) {}

// EndPaint implements BackingStore.
func (b *EbitenBackingStore) EndPaint() {}

// Flush implements BackingStore. The region is queued for upload by the next
// Present.
func (b *EbitenBackingStore) Flush(r Region) error {
	if b.img == nil {
		return nil
	}
	b.pending = b.pending.Union(deviceRegion(r, b.dpr, b.img.Bounds()))
	return nil
}

// Present uploads the queued rectangles and draws the frame onto screen.
func (b *EbitenBackingStore) Present(screen *ebiten.Image) {
	if b.frame == nil {
		return
	}
	for _, r := range b.pending.rects {
		sub := b.frame.SubImage(r).(*ebiten.Image)
		sub.WritePixels(b.packRect(r))
	}
	b.pending = Region{}
	screen.DrawImage(b.frame, &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy})
}

// packRect copies the pixels of r into a contiguous buffer.
func (b *EbitenBackingStore) packRect(r image.Rectangle) []byte {
	rowLen := 4 * r.Dx()
	need := rowLen * r.Dy()
	if cap(b.buf) < need {
		b.buf = make([]byte, need)
	}
	buf := b.buf[:need]
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := b.img.PixOffset(r.Min.X, y)
		copy(buf[(y-r.Min.Y)*rowLen:], b.img.Pix[off:off+rowLen])
	}
	return buf
}

// --- Run ---

// RunConfig configures Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool

	// ClearColor is the window background. Zero means opaque white.
	ClearColor Color
	// FullRepaint repaints the whole window every frame.
	FullRepaint bool
	// Update, when set, is called once per tick before the frame is rendered.
	Update func() error
	// Observer, when set, receives the statistics of every frame.
	Observer FrameObserver
}

type runGame struct {
	renderer *SoftwareRenderer
	store    *EbitenBackingStore
	cfg      RunConfig
}

func (g *runGame) Update() error {
	if g.cfg.Update != nil {
		return g.cfg.Update()
	}
	return nil
}

func (g *runGame) Draw(screen *ebiten.Image) {
	g.renderer.Render()
	if err := g.renderer.Flush(); err != nil {
		Logger().Warn("flush failed", "error", err)
	}
	g.store.Present(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *runGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := ebiten.Monitor().DeviceScaleFactor()
	w := int(float64(outsideWidth) * dpr)
	h := int(float64(outsideHeight) * dpr)
	g.store.Resize(w, h, dpr)
	return w, h
}

// Run opens a window showing root and blocks until it is closed. Only damaged
// rectangles are repainted and uploaded each frame.
func Run(root *Node, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.ClearColor == (Color{}) {
		cfg.ClearColor = ColorWhite
	}

	r := NewSoftwareRenderer()
	store := NewEbitenBackingStore()
	r.SetBackingStore(store)
	r.SetClearColor(cfg.ClearColor)
	r.SetFullRepaint(cfg.FullRepaint)
	r.SetFrameObserver(cfg.Observer)
	r.SetRootNode(root)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)

	Logger().Info("window opened", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	if err := ebiten.RunGame(&runGame{renderer: r, store: store, cfg: cfg}); err != nil {
		return fmt.Errorf("aspen: run: %w", err)
	}
	return nil
}
