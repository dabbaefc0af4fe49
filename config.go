package aspen

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the settings a renderer can be tuned with from a TOML file.
type Config struct {
	// ClearColor is a hex color such as "#ffffff" or "#00000080".
	ClearColor    string       `toml:"clear_color"`
	FullRepaint   bool         `toml:"full_repaint"`
	Debug         bool         `toml:"debug"`
	ScreenshotDir string       `toml:"screenshot_dir"`
	Window        WindowConfig `toml:"window"`
}

// WindowConfig describes the window opened by Run.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		ClearColor:    "#ffffff",
		ScreenshotDir: "screenshots",
		Window:        WindowConfig{Title: "aspen", Width: 640, Height: 480},
	}
}

// LoadConfig reads a TOML file. Keys missing from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("aspen: load config %s: %w", path, err)
	}
	if _, err := ParseHexColor(cfg.ClearColor); err != nil {
		return Config{}, fmt.Errorf("aspen: load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML text over the defaults.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("aspen: parse config: %w", err)
	}
	if _, err := ParseHexColor(cfg.ClearColor); err != nil {
		return Config{}, fmt.Errorf("aspen: parse config: %w", err)
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML into path.
func WriteConfig(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("aspen: encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("aspen: write config %s: %w", path, err)
	}
	return nil
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is
// optional. An empty string is opaque white.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 0:
		return ColorWhite, nil
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]}) + "ff"
	case 6:
		s += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// ApplyConfig sets the clear color, full-repaint mode and debug mode.
func (s *SoftwareRenderer) ApplyConfig(cfg Config) error {
	c, err := ParseHexColor(cfg.ClearColor)
	if err != nil {
		return fmt.Errorf("aspen: apply config: %w", err)
	}
	s.SetClearColor(c)
	s.SetFullRepaint(cfg.FullRepaint)
	SetDebugMode(cfg.Debug)
	return nil
}

// RunConfig converts the window settings into a RunConfig. Invalid colors
// fall back to white.
func (cfg Config) RunConfig() RunConfig {
	c, err := ParseHexColor(cfg.ClearColor)
	if err != nil {
		c = ColorWhite
	}
	return RunConfig{
		Title:       cfg.Window.Title,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		ClearColor:  c,
		FullRepaint: cfg.FullRepaint,
	}
}
