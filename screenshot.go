package aspen

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GrabImage renders root into a new image of the given logical size. Pixels
// not covered by the scene take the clear color.
func GrabImage(root *Node, size image.Point, clear Color) *image.RGBA {
	if root == nil || size.X <= 0 || size.Y <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	pr := NewPixmapRenderer()
	pr.SetClearColor(clear)
	pr.SetRootNode(root)
	pr.RenderTo(img, img.Bounds())
	pr.SetRootNode(nil)
	return img
}

// SaveScreenshot writes img as a PNG into dir, creating it if needed. The file
// name is a timestamp followed by the sanitized label. It returns the path.
func SaveScreenshot(dir, label string, img *image.RGBA) (string, error) {
	if img == nil {
		return "", fmt.Errorf("aspen: screenshot %q: nil image", label)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("aspen: screenshot: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	if err := writePNG(path, unpremultiply(img)); err != nil {
		return "", fmt.Errorf("aspen: screenshot: %w", err)
	}
	Logger().Info("screenshot saved", "path", path)
	return path, nil
}

// unpremultiply converts premultiplied RGBA to straight-alpha NRGBA.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := img.PixOffset(0, y)
		for x := 0; x < 4*b.Dx(); x += 4 {
			r, g, bl, a := src.Pix[so+x], src.Pix[so+x+1], src.Pix[so+x+2], src.Pix[so+x+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			img.Pix[do+x] = r
			img.Pix[do+x+1] = g
			img.Pix[do+x+2] = bl
			img.Pix[do+x+3] = a
		}
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
