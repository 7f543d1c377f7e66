// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: surface/surface.go
// Summary: Half-block pixel surface that layers draw into.
// Notes: A terminal cell is addressed as a 1x2 block of "pixels", so the
// surface is twice as tall in pixels as the terminal is in rows.

package surface

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// Surface is a per-frame pixel canvas in half-block resolution. Pixels start
// fully transparent; a layer writes the pixels it wants composited and leaves
// the rest alone.
type Surface struct {
	// Cols and Rows are the terminal size in cells.
	Cols int
	Rows int

	pixels []color.RGBA
}

// New creates a cleared surface for a terminal of the given cell size.
func New(cols, rows int) *Surface {
	return &Surface{
		Cols:   cols,
		Rows:   rows,
		pixels: make([]color.RGBA, cols*rows*2),
	}
}

// PixelWidth is the addressable pixel width, equal to the column count.
func (s *Surface) PixelWidth() int { return s.Cols }

// PixelHeight is the addressable pixel height, twice the row count.
func (s *Surface) PixelHeight() int { return s.Rows * 2 }

// AddPixel writes one pixel. Coordinates are top-left origin, in half-block
// units.
func (s *Surface) AddPixel(x, y int, c color.RGBA) error {
	if x < 0 || x >= s.PixelWidth() || y < 0 || y >= s.PixelHeight() {
		return fmt.Errorf("surface: pixel %dx%d outside %dx%d surface", x, y, s.PixelWidth(), s.PixelHeight())
	}
	s.pixels[y*s.Cols+x] = c
	return nil
}

// Pixel returns the pixel at the given coordinate, or transparent black when
// out of bounds.
func (s *Surface) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= s.PixelWidth() || y < 0 || y >= s.PixelHeight() {
		return color.RGBA{}
	}
	return s.pixels[y*s.Cols+x]
}

// Cells renders the surface into terminal cells using half-block glyphs.
// Cell (x, y) covers pixels (x, 2y) and (x, 2y+1). Cells whose pixel pair is
// fully transparent come out with a zero Ch so compositors skip them.
func (s *Surface) Cells() [][]Cell {
	cells := make([][]Cell, s.Rows)
	for y := 0; y < s.Rows; y++ {
		cells[y] = make([]Cell, s.Cols)
		for x := 0; x < s.Cols; x++ {
			upper := s.pixels[(y*2)*s.Cols+x]
			lower := s.pixels[(y*2+1)*s.Cols+x]
			cells[y][x] = halfBlockCell(upper, lower)
		}
	}
	return cells
}

func halfBlockCell(upper, lower color.RGBA) Cell {
	switch {
	case upper.A == 0 && lower.A == 0:
		return Cell{}
	case lower.A == 0:
		return Cell{Ch: '▀', Style: tcell.StyleDefault.Foreground(toTcell(upper))}
	case upper.A == 0:
		return Cell{Ch: '▄', Style: tcell.StyleDefault.Foreground(toTcell(lower))}
	default:
		return Cell{
			Ch:    '▀',
			Style: tcell.StyleDefault.Foreground(toTcell(upper)).Background(toTcell(lower)),
		}
	}
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// FrameUpdate is one layer's finished frame, submitted to the host for
// compositing. Z and Opacity are re-read from config every frame so live
// reconfiguration takes effect without restarting the layer.
type FrameUpdate struct {
	Layer   string
	Z       int
	Opacity float32
	Surface *Surface
}
