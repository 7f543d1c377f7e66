package surface

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestSurfaceDimensionsFollowHalfBlockInvariant(t *testing.T) {
	s := New(10, 5)
	if s.PixelWidth() != 10 {
		t.Fatalf("pixel width should equal columns, got %d", s.PixelWidth())
	}
	if s.PixelHeight() != 10 {
		t.Fatalf("pixel height should be twice the rows, got %d", s.PixelHeight())
	}
}

func TestAddPixelRejectsOutOfBounds(t *testing.T) {
	s := New(10, 5)
	red := color.RGBA{R: 255, A: 255}

	for _, bad := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if err := s.AddPixel(bad[0], bad[1], red); err == nil {
			t.Fatalf("expected error for pixel %dx%d", bad[0], bad[1])
		}
	}

	if err := s.AddPixel(9, 9, red); err != nil {
		t.Fatalf("in-bounds pixel rejected: %v", err)
	}
	if got := s.Pixel(9, 9); got != red {
		t.Fatalf("expected stored pixel %v, got %v", red, got)
	}
}

func TestCellsRenderHalfBlockPairs(t *testing.T) {
	s := New(4, 1)
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	// Column 0: both transparent. Column 1: upper only. Column 2: lower
	// only. Column 3: both.
	if err := s.AddPixel(1, 0, red); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPixel(2, 1, blue); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPixel(3, 0, red); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPixel(3, 1, blue); err != nil {
		t.Fatal(err)
	}

	cells := s.Cells()
	if len(cells) != 1 || len(cells[0]) != 4 {
		t.Fatalf("unexpected cell grid shape: %dx%d", len(cells), len(cells[0]))
	}

	if cells[0][0].Ch != 0 {
		t.Fatalf("transparent pair should produce a zero cell, got %q", cells[0][0].Ch)
	}
	if cells[0][1].Ch != '▀' {
		t.Fatalf("upper-only pair should be ▀, got %q", cells[0][1].Ch)
	}
	if cells[0][2].Ch != '▄' {
		t.Fatalf("lower-only pair should be ▄, got %q", cells[0][2].Ch)
	}

	both := cells[0][3]
	if both.Ch != '▀' {
		t.Fatalf("full pair should be ▀, got %q", both.Ch)
	}
	fg, bg, _ := both.Style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Fatalf("upper pixel should be the foreground, got %v", fg)
	}
	if bg != tcell.NewRGBColor(0, 0, 255) {
		t.Fatalf("lower pixel should be the background, got %v", bg)
	}
}

func TestBlendOverRespectsOpacity(t *testing.T) {
	base := tcell.NewRGBColor(0, 0, 0)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	if got := BlendOver(base, white, 0); got != base {
		t.Fatalf("zero opacity should return the base color, got %v", got)
	}

	full := BlendOver(base, white, 1)
	r, g, b := full.RGB()
	if r < 250 || g < 250 || b < 250 {
		t.Fatalf("full opacity over black should be near white, got %d %d %d", r, g, b)
	}

	transparent := color.RGBA{}
	if got := BlendOver(base, transparent, 1); got != base {
		t.Fatalf("transparent pixel should leave the base untouched, got %v", got)
	}
}
