// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layer/base.go
// Summary: Common foundation every layer builds on.
// Usage: Embed or own a Base; it supplies frame timing, the output surface
// and the shared bookkeeping all layers need.

package layer

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/scrim/protocol"
	"github.com/framegrace/scrim/state"
	"github.com/framegrace/scrim/surface"
)

// Base carries the machinery common to all layers: identity, z-order and
// opacity, the frame clock, the per-frame output surface, and the outbound
// frame channel.
type Base struct {
	Name  string
	State *state.State

	// Z and Opacity are re-applied from config by the owning layer; the host
	// reads them from each submitted frame.
	Z       int
	Opacity float32

	// Cols and Rows track the terminal size in cells, updated by
	// HandleCommonMessage on resize.
	Cols int
	Rows int

	// Surface is the frame under construction. Reset every render pass.
	Surface *surface.Surface

	out    chan<- surface.FrameUpdate
	ticker *time.Ticker
}

// NewBase creates a layer foundation sized to the current terminal, ticking
// at the configured frame rate.
func NewBase(name string, st *state.State, z int, opacity float32, out chan<- surface.FrameUpdate) *Base {
	size := st.TTYSize()
	rate := st.Config().FrameRate
	if rate < 1 {
		rate = 1
	}
	b := &Base{
		Name:    name,
		State:   st,
		Z:       z,
		Opacity: opacity,
		Cols:    size.Cols,
		Rows:    size.Rows,
		out:     out,
		ticker:  time.NewTicker(time.Second / time.Duration(rate)),
	}
	b.InitialiseSurface()
	return b
}

// Tick is the frame clock. One receive per render pass.
func (b *Base) Tick() <-chan time.Time {
	return b.ticker.C
}

// Stop releases the frame clock.
func (b *Base) Stop() {
	b.ticker.Stop()
}

// InitialiseSurface replaces the output surface with a cleared one at the
// current terminal size.
func (b *Base) InitialiseSurface() {
	b.Surface = surface.New(b.Cols, b.Rows)
}

// HandleCommonMessage deals with the control messages every layer handles
// the same way: size bookkeeping on resize. Layer-specific messages are the
// owner's business.
func (b *Base) HandleCommonMessage(msg protocol.Message) error {
	if resize, ok := msg.(protocol.Resize); ok {
		if resize.Cols <= 0 || resize.Rows <= 0 {
			return fmt.Errorf("layer %s: invalid resize to %dx%d cells", b.Name, resize.Cols, resize.Rows)
		}
		b.Cols = resize.Cols
		b.Rows = resize.Rows
		b.InitialiseSurface()
	}
	return nil
}

// CursorPosition returns the terminal cursor's current cell position.
func (b *Base) CursorPosition() (int, int) {
	tty := b.State.TTY()
	return tty.CursorX, tty.CursorY
}

// SendOutput submits the finished surface to the host.
func (b *Base) SendOutput() error {
	if b.out == nil {
		return fmt.Errorf("layer %s: no output channel", b.Name)
	}
	b.out <- surface.FrameUpdate{
		Layer:   b.Name,
		Z:       b.Z,
		Opacity: b.Opacity,
		Surface: b.Surface,
	}
	return nil
}

// TTYImage renders the shared terminal snapshot as a half-block pixel image
// with a top-left origin, for upload to a pipeline's input texture. When
// includeContent is false a fully transparent placeholder of the right size
// is returned instead.
func (b *Base) TTYImage(includeContent bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Cols, b.Rows*2))
	if !includeContent {
		return img
	}

	tty := b.State.TTY()
	for y, row := range tty.Cells {
		if y >= b.Rows {
			break
		}
		for x, cell := range row {
			if x >= b.Cols {
				break
			}
			fg, bg, _ := cell.Style.Decompose()
			upper := bg
			if cell.Ch != 0 && cell.Ch != ' ' {
				upper = fg
			}
			img.SetRGBA(x, y*2, cellColor(upper))
			img.SetRGBA(x, y*2+1, cellColor(bg))
		}
	}
	return img
}

func cellColor(c tcell.Color) color.RGBA {
	if !c.Valid() {
		return color.RGBA{}
	}
	r, g, bl := c.RGB()
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(bl), A: 255}
}
