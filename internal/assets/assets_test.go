package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadSearchOrder(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "click.wav", []byte("low"))
	writeFile(t, high, "click.wav", []byte("high"))
	writeFile(t, low, "only-low.wav", []byte("low"))

	m := NewManager()
	m.AddDir(low)
	m.AddDir(high)

	tests := []struct {
		path string
		want string
	}{
		{"click.wav", "high"},
		{"only-low.wav", "low"},
	}
	for _, tt := range tests {
		data, err := m.Load(tt.path)
		if err != nil {
			t.Fatalf("Load(%q): %v", tt.path, err)
		}
		if string(data) != tt.want {
			t.Errorf("Load(%q) = %q, want %q", tt.path, data, tt.want)
		}
	}
}

func TestLoadAbsolutePath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.bin", []byte("abs"))

	m := NewManager()
	data, err := m.Load(path)
	if err != nil || string(data) != "abs" {
		t.Errorf("Load = %q, %v", data, err)
	}
}

func TestLoadCaches(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.bin", []byte("v1"))

	m := NewManager()
	if _, err := m.Load(path); err != nil {
		t.Fatal(err)
	}
	// Changes on disk are not seen once cached.
	writeFile(t, dir, "a.bin", []byte("v2"))
	data, _ := m.Load(path)
	if string(data) != "v1" {
		t.Errorf("Load = %q, want the cached v1", data)
	}

	hits, misses := m.cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses, want 1 and 1", hits, misses)
	}

	m.Close()
	data, _ = m.Load(path)
	if string(data) != "v2" {
		t.Errorf("Load after Close = %q, want v2", data)
	}
}

func TestLoadNotFound(t *testing.T) {
	m := NewManager()
	m.AddDir(t.TempDir())
	if _, err := m.Load("missing.ttf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mono.ttf", gomono.TTF)
	writeFile(t, dir, "broken.ttf", []byte("not a font"))

	m := NewManager()
	m.AddDir(dir)

	face, err := m.Face("mono.ttf", 20)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	adv, ok := face.GlyphAdvance('i')
	wide, _ := face.GlyphAdvance('W')
	if !ok || adv != wide {
		t.Errorf("monospace advances differ: i=%v W=%v", adv, wide)
	}

	if _, err := m.Face("", 20); err != nil {
		t.Errorf("default face: %v", err)
	}
	if _, err := m.Face("broken.ttf", 20); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := m.Face("missing.ttf", 20); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
