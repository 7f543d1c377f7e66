// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: gpu/pipeline.go
// Summary: Shader pipeline rendering the animated cursor effect.
// Notes: The render target uses a bottom-left origin, as GPU render targets
// do; consumers compositing onto a top-left terminal grid must flip rows.

package gpu

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/framegrace/scrim/protocol"
)

// Pipeline compiles a WGSL cursor shader and renders it once per frame. The
// SPIR-V module is kept for submission to a GPU device; rendering itself runs
// through a CPU evaluator of the stock cursor-glow field so the pipeline
// works on headless hosts.
type Pipeline struct {
	mu sync.Mutex

	shaderPath string
	spirv      []uint32
	bus        *protocol.Bus

	width  int
	height int

	started time.Time
	frame   int32
	cursorX uint32
	cursorY uint32

	// channel is the input texture holding the terminal content, scaled to
	// the render size. Nil until the first upload.
	channel *image.RGBA
}

// NewPipeline builds a pipeline from a shader file and the initial render
// size in half-block pixels. Construction fails if the shader is missing or
// doesn't compile. The bus lets the pipeline ask the host for work, such as
// a repaint after a resize invalidates its input texture.
func NewPipeline(shaderPath string, width, height int, bus *protocol.Bus) (*Pipeline, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid render size %dx%d", width, height)
	}

	src, err := loadShaderSource(shaderPath)
	if err != nil {
		return nil, err
	}
	spirv, err := compileShader(shaderPath, src)
	if err != nil {
		return nil, err
	}
	log.Printf("GPU: compiled shader %s (%d SPIR-V words)", shaderPath, len(spirv))

	return &Pipeline{
		shaderPath: shaderPath,
		spirv:      spirv,
		bus:        bus,
		width:      width,
		height:     height,
		started:    time.Now(),
	}, nil
}

// Size returns the current render target size in half-block pixels.
func (p *Pipeline) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// UpdateCursorPosition records the cursor's cell position for the next
// render.
func (p *Pipeline) UpdateCursorPosition(x, y uint32) {
	p.mu.Lock()
	p.cursorX = x
	p.cursorY = y
	p.mu.Unlock()
}

// UpdateChannelTexture uploads the terminal content as the shader's input
// texture, rescaling it to the render size.
func (p *Pipeline) UpdateChannelTexture(img image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	scaled := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	p.channel = scaled
}

// HandleMessage reacts to control messages the pipeline cares about. A resize
// reallocates the render target and requests a repaint so the input texture
// gets refreshed at the new size. Everything else is ignored.
func (p *Pipeline) HandleMessage(msg protocol.Message) error {
	resize, ok := msg.(protocol.Resize)
	if !ok {
		return nil
	}
	if resize.Cols <= 0 || resize.Rows <= 0 {
		return fmt.Errorf("gpu: invalid resize to %dx%d cells", resize.Cols, resize.Rows)
	}

	p.mu.Lock()
	p.width = resize.Cols
	p.height = resize.Rows * 2
	hadChannel := p.channel != nil
	p.channel = nil
	p.mu.Unlock()

	log.Printf("GPU: render target resized to %dx%d", resize.Cols, resize.Rows*2)
	if hadChannel && p.bus != nil {
		p.bus.Send(protocol.Repaint{})
	}
	return nil
}

// uniforms assembles the current uniform values. Callers hold p.mu.
func (p *Pipeline) uniforms() Uniforms {
	return Uniforms{
		Resolution: [2]float32{float32(p.width), float32(p.height)},
		Time:       float32(time.Since(p.started).Seconds()),
		Frame:      p.frame,
		Cursor: [4]float32{
			float32(p.cursorX)*CursorPixelWidth + 0.5,
			float32(p.cursorY)*CursorPixelHeight + 1.0,
			CursorPixelWidth,
			CursorPixelHeight,
		},
	}
}

// Render produces a fresh frame. The returned image has a bottom-left
// origin: row 0 is the bottom of the terminal.
func (p *Pipeline) Render() (*image.RGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.width <= 0 || p.height <= 0 {
		return nil, fmt.Errorf("gpu: render target has invalid size %dx%d", p.width, p.height)
	}

	u := p.uniforms()
	p.frame++

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	radius := float64(u.Cursor[3]) * 6.0
	pulse := 0.75 + 0.25*math.Sin(float64(u.Time)*3.0)

	for iy := 0; iy < p.height; iy++ {
		// Flip into screen coordinates for distance math; the target keeps
		// its bottom-left origin.
		screenY := p.height - 1 - iy
		dy := float64(screenY) + 0.5 - float64(u.Cursor[1])
		for ix := 0; ix < p.width; ix++ {
			dx := float64(ix) + 0.5 - float64(u.Cursor[0])
			glow := math.Exp(-math.Hypot(dx, dy)/radius) * pulse

			r, g, b := 0.35, 0.78, 1.0
			if p.channel != nil {
				// Shaders that consume the terminal texture tint the glow
				// with the content underneath.
				c := p.channel.RGBAAt(ix, iy)
				if c.A > 0 {
					t := float64(c.A) / 255.0
					r = r*(1-t) + float64(c.R)/255.0*t
					g = g*(1-t) + float64(c.G)/255.0*t
					b = b*(1-t) + float64(c.B)/255.0*t
				}
			}

			a := glow
			if a > 1 {
				a = 1
			}
			if a < 1.0/255.0 {
				continue
			}
			img.SetRGBA(ix, iy, color.RGBA{
				R: uint8(r * a * 255),
				G: uint8(g * a * 255),
				B: uint8(b * a * 255),
				A: uint8(a * 255),
			})
		}
	}

	return img, nil
}
