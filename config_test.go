package aspen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ffffff", ColorWhite},
		{"", ColorWhite},
		{"#000", Color{0, 0, 0, 1}},
		{"f00", Color{1, 0, 0, 1}},
		{"#00ff00", Color{0, 1, 0, 1}},
		{"#0000ff00", Color{0, 0, 1, 0}},
		{"  #FFF  ", ColorWhite},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil {
			t.Errorf("ParseHexColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHexColorInvalid(t *testing.T) {
	for _, in := range []string{"#12", "#12345", "#gggggg", "red"} {
		if _, err := ParseHexColor(in); err == nil {
			t.Errorf("ParseHexColor(%q) should fail", in)
		}
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig(`
full_repaint = true

[window]
title = "demo"
`)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.FullRepaint || cfg.Window.Title != "demo" {
		t.Errorf("parsed values lost: %+v", cfg)
	}
	def := DefaultConfig()
	if cfg.ClearColor != def.ClearColor || cfg.Window.Width != def.Window.Width || cfg.ScreenshotDir != def.ScreenshotDir {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig(`clear_color = "#zz"`); err == nil {
		t.Error("invalid color should fail")
	}
	if _, err := ParseConfig(`window = 3`); err == nil {
		t.Error("type mismatch should fail")
	}
}

func TestWriteAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aspen.toml")
	want := DefaultConfig()
	want.ClearColor = "#102030"
	want.Debug = true
	want.Window = WindowConfig{Title: "roundtrip", Width: 320, Height: 200}

	if err := WriteConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("LoadConfig = %+v, want %+v", got, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "missing.toml") {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte(`clear_color = "nope"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("invalid color in file should fail")
	}
}

func TestApplyConfig(t *testing.T) {
	defer SetDebugMode(false)

	sr := NewSoftwareRenderer()
	cfg := DefaultConfig()
	cfg.ClearColor = "#00ff00"
	cfg.FullRepaint = true
	cfg.Debug = true
	if err := sr.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if sr.ClearColor() != green || !sr.FullRepaint() || !DebugMode() {
		t.Errorf("config not applied: clear=%v full=%v debug=%v", sr.ClearColor(), sr.FullRepaint(), DebugMode())
	}

	cfg.ClearColor = "#1"
	if err := sr.ApplyConfig(cfg); err == nil {
		t.Error("invalid color should fail")
	}
	if sr.ClearColor() != green {
		t.Error("failed apply should leave the renderer unchanged")
	}
}

func TestConfigRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClearColor = "#f00"
	cfg.FullRepaint = true
	rc := cfg.RunConfig()
	if rc.Title != "aspen" || rc.Width != 640 || rc.Height != 480 {
		t.Errorf("window = %q %dx%d", rc.Title, rc.Width, rc.Height)
	}
	if rc.ClearColor != red || !rc.FullRepaint {
		t.Errorf("clear=%v full=%v", rc.ClearColor, rc.FullRepaint)
	}

	cfg.ClearColor = "bogus"
	if rc := cfg.RunConfig(); rc.ClearColor != ColorWhite {
		t.Errorf("invalid color should fall back to white, got %v", rc.ClearColor)
	}
}
