package aspen

import (
	"image"
	"time"

	"golang.org/x/image/draw"
)

// PixmapRenderer renders a scene tree into caller-owned images, for window
// grabs and offscreen layers. Rendering into the same image repeatedly only
// repaints what changed; a different image gets a full repaint.
type PixmapRenderer struct {
	*Renderer

	clearColor Color
	lastTarget *image.RGBA
	observer   FrameObserver
}

// NewPixmapRenderer returns a renderer with a transparent clear color.
func NewPixmapRenderer() *PixmapRenderer {
	return &PixmapRenderer{
		Renderer:   NewRenderer(),
		clearColor: ColorTransparent,
	}
}

// SetClearColor sets the background color of every frame.
func (pr *PixmapRenderer) SetClearColor(c Color) { pr.clearColor = c }

// ClearColor returns the background color of every frame.
func (pr *PixmapRenderer) ClearColor() Color { return pr.clearColor }

// SetFrameObserver sets the observer notified after every frame. Nil removes it.
func (pr *PixmapRenderer) SetFrameObserver(o FrameObserver) { pr.observer = o }

// RenderTo renders the projection rect of the scene, in logical pixels,
// stretched over target. It returns the logical region that was painted.
func (pr *PixmapRenderer) RenderTo(target *image.RGBA, projection image.Rectangle) Region {
	projection = projection.Canon()
	if target == nil || target.Bounds().Empty() || projection.Empty() {
		return Region{}
	}
	if target != pr.lastTarget {
		pr.lastTarget = target
		pr.MarkDirty()
	}

	pr.SetBackgroundRect(projection, 1)
	pr.SetBackgroundColor(pr.clearColor)

	var stats FrameStats
	t0 := time.Now()
	pr.BuildRenderList()
	stats.BuildTime = time.Since(t0)

	t0 = time.Now()
	update := pr.OptimizeRenderList()
	stats.OptimizeTime = time.Since(t0)
	stats.DirtyNodes = countDirty(pr.RenderList())

	t0 = time.Now()
	window := windowMatrix(projection, target.Bounds())
	if !pr.IsOpaque() {
		for _, r := range transformRegion(update, window, target.Bounds()).rects {
			draw.Draw(target, r, image.Transparent, image.Point{}, draw.Src)
		}
	}
	p := NewPainter(target)
	p.SetDeviceTransform(window)
	painted := pr.RenderNodes(p)
	stats.RenderTime = time.Since(t0)

	stats.RenderListLen = len(pr.RenderList())
	stats.UpdateRegion = update
	stats.FlushRegion = painted
	stats.Opaque = pr.IsOpaque()
	logFrame("pixmap", stats)
	if pr.observer != nil {
		pr.observer.FrameRendered(stats)
	}
	return painted
}

// windowMatrix maps the logical window rect onto the device rect.
func windowMatrix(window, device image.Rectangle) Matrix {
	sx := float64(device.Dx()) / float64(window.Dx())
	sy := float64(device.Dy()) / float64(window.Dy())
	return Matrix{
		sx, 0, 0, sy,
		float64(device.Min.X) - float64(window.Min.X)*sx,
		float64(device.Min.Y) - float64(window.Min.Y)*sy,
	}
}
