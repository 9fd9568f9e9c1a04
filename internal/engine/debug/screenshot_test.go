package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
}

func TestSaveBottomUpFlipsRows(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenshots(filepath.Join(dir, "shots"), "frame")
	s.now = fixedClock

	// 1x2 image: bottom row red, top row blue, in framebuffer order.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	name, err := s.SaveBottomUp(pixels, 1, 2)
	if err != nil {
		t.Fatalf("SaveBottomUp: %v", err)
	}
	if want := filepath.Join(dir, "shots", "frame_2024-05-01_12-30-00_001.png"); name != want {
		t.Errorf("name = %s, want %s", name, want)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	top := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	bottom := color.RGBAModel.Convert(img.At(0, 1)).(color.RGBA)
	if top.B != 255 || top.R != 0 {
		t.Errorf("top pixel = %v, want blue", top)
	}
	if bottom.R != 255 || bottom.B != 0 {
		t.Errorf("bottom pixel = %v, want red", bottom)
	}
}

func TestSaveBottomUpRejectsBadSize(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "frame")
	if _, err := s.SaveBottomUp(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected a size mismatch error")
	}
	if _, err := s.SaveBottomUp(nil, 0, 0); err == nil {
		t.Error("expected an error for an empty frame")
	}
}

func TestNamesDoNotCollide(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "frame")
	s.now = fixedClock

	pixels := make([]byte, 4)
	a, err := s.SaveBottomUp(pixels, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.SaveBottomUp(pixels, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two captures share the name %s", a)
	}
}
