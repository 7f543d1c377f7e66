// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layer/cursor.go
// Summary: The animated cursor layer: drives a shader pipeline and composites
// its output onto the terminal, paced by the frame clock.
// Notes: The whole loop runs under a fault barrier; a broken shader or a
// pipeline bug takes down this layer, never the host.

package layer

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"

	"github.com/framegrace/scrim/gpu"
	"github.com/framegrace/scrim/protocol"
	"github.com/framegrace/scrim/state"
	"github.com/framegrace/scrim/surface"
)

// CursorLayerName identifies the animated cursor layer in frame updates.
const CursorLayerName = "animated_cursor"

// Renderer is the contract the animated cursor needs from a shader pipeline.
// *gpu.Pipeline satisfies it; tests substitute fakes.
type Renderer interface {
	UpdateCursorPosition(x, y uint32)
	UpdateChannelTexture(img image.Image)
	HandleMessage(msg protocol.Message) error
	Render() (*image.RGBA, error)
}

// AnimatedCursor owns one layer base and one shader pipeline and runs the
// render/control loop for the cursor effect.
type AnimatedCursor struct {
	base *Base
	gpu  Renderer
}

// newAnimatedCursor builds the pipeline from the configured shader and the
// current terminal size, then the layer base with the configured z-order and
// opacity.
func newAnimatedCursor(out chan<- surface.FrameUpdate, st *state.State) (*AnimatedCursor, error) {
	cfg := st.Config().AnimatedCursor
	size := st.TTYSize()
	shaderPath := filepath.Join(st.ConfigDir(), cfg.Path)

	pipeline, err := gpu.NewPipeline(shaderPath, size.Cols, size.Rows*2, st.Protocol)
	if err != nil {
		return nil, fmt.Errorf("initialising GPU pipeline: %w", err)
	}

	return &AnimatedCursor{
		base: NewBase(CursorLayerName, st, cfg.Layer, cfg.Opacity, out),
		gpu:  pipeline,
	}, nil
}

// StartAnimatedCursor is the layer's supervised entry point. Errors from the
// loop are logged, reported as a notification and propagated; panics are
// contained and reported the same way, after which the entry point returns
// nil so the fault never reaches the host.
func StartAnimatedCursor(out chan<- surface.FrameUpdate, st *state.State) error {
	return supervise(st, func() error {
		return runAnimatedCursor(out, st)
	})
}

// supervise is the layer's fault barrier. The body's own error is reported
// and propagated; a panic is converted into a notification and swallowed, so
// the supervising task itself always returns normally.
func supervise(st *state.State, body func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			message := panicMessage(r)
			log.Printf("AnimatedCursor: shader panic: %s", message)
			st.Notify("GPU pipeline panic", state.LevelError, message, true)
			err = nil
		}
	}()

	if runErr := body(); runErr != nil {
		log.Printf("AnimatedCursor: GPU pipeline error: %v", runErr)
		st.Notify("GPU pipeline error", state.LevelError, runErr.Error(), true)
		return runErr
	}
	return nil
}

// panicMessage extracts something human-readable from a panic payload.
func panicMessage(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return "caught a panic with an unknown payload type"
	}
}

// runAnimatedCursor is the loop body: race the frame clock against the
// control bus and react to whichever fires first, until End arrives.
func runAnimatedCursor(out chan<- surface.FrameUpdate, st *state.State) error {
	receiver := st.Protocol.Subscribe()
	cursor, err := newAnimatedCursor(out, st)
	if err != nil {
		return err
	}
	defer cursor.base.Stop()

	messages := receiver.Chan()
	for {
		select {
		case <-cursor.base.Tick():
			if err := cursor.render(); err != nil {
				return err
			}
		case msg, ok := <-messages:
			if dropped := receiver.Lagged(); dropped > 0 {
				log.Printf("AnimatedCursor: control bus dropped %d messages", dropped)
			}
			if !ok {
				// Bus closed. Not fatal, but there is nothing more to
				// receive; stop selecting on it.
				log.Printf("AnimatedCursor: control bus closed")
				messages = nil
				continue
			}
			if _, end := msg.(protocol.End); end {
				return nil
			}
			if err := cursor.handleMessage(msg); err != nil {
				return err
			}
		}
	}
}

// handleMessage forwards a control message to the pipeline and the layer
// base. A repaint refreshes the pipeline's input texture first, so a shader
// consuming the terminal content reacts to the same paint it was told about.
func (c *AnimatedCursor) handleMessage(msg protocol.Message) error {
	if _, repaint := msg.(protocol.Repaint); repaint {
		c.uploadTTY()
	}
	if err := c.gpu.HandleMessage(msg); err != nil {
		return err
	}
	return c.base.HandleCommonMessage(msg)
}

// uploadTTY pushes the terminal content into the pipeline's input texture,
// honouring the live upload_tty_as_pixels flag.
func (c *AnimatedCursor) uploadTTY() {
	includeContent := c.base.State.Config().AnimatedCursor.UploadTTYAsPixels
	c.gpu.UpdateChannelTexture(c.base.TTYImage(includeContent))
}

// render runs one full render pass: cursor update, live config re-read,
// fresh surface, pipeline render, vertical flip into the terminal's
// top-left coordinate space, and submission.
func (c *AnimatedCursor) render() error {
	cursorX, cursorY := c.base.CursorPosition()
	pipelineX, pipelineY, err := cursorToPipeline(cursorX, cursorY)
	if err != nil {
		return err
	}
	c.gpu.UpdateCursorPosition(pipelineX, pipelineY)

	// Config is re-read every frame so opacity and z-order changes apply
	// without restarting the layer.
	cfg := c.base.State.Config().AnimatedCursor
	c.base.Opacity = cfg.Opacity
	c.base.Z = cfg.Layer
	c.base.InitialiseSurface()

	img, err := c.gpu.Render()
	if err != nil {
		return err
	}

	pixelHeight := c.base.Rows * 2
	for y := 0; y < pixelHeight; y++ {
		// The rendered image's vertical origin is at the bottom.
		sourceY := pixelHeight - y - 1
		for x := 0; x < c.base.Cols; x++ {
			pixel, err := pixelAt(img, x, sourceY)
			if err != nil {
				return err
			}
			if err := c.base.Surface.AddPixel(x, y, pixel); err != nil {
				return err
			}
		}
	}

	return c.base.SendOutput()
}

// cursorToPipeline converts a cursor cell position into the pipeline's
// unsigned coordinate units. A negative position means the host handed us an
// inconsistent surface and the frame is aborted.
func cursorToPipeline(x, y int) (uint32, uint32, error) {
	if x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("converting cursor position %dx%d: coordinates must be non-negative", x, y)
	}
	return uint32(x), uint32(y), nil
}

// pixelAt fetches one pixel, failing with the offending coordinate when the
// rendered image is smaller than the terminal expects. That mismatch is a
// pipeline bug, not something to paper over.
func pixelAt(img *image.RGBA, x, y int) (pixel color.RGBA, err error) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return pixel, fmt.Errorf("couldn't get pixel %dx%d: rendered image is %dx%d",
			x, y, img.Bounds().Dx(), img.Bounds().Dy())
	}
	return img.RGBAAt(x, y), nil
}
