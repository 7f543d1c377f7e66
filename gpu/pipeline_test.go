package gpu

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framegrace/scrim/config"
	"github.com/framegrace/scrim/protocol"
)

// newTestPipeline builds a pipeline on the embedded stock shader.
func newTestPipeline(t *testing.T, width, height int, bus *protocol.Bus) *Pipeline {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultCursorShaderFilename)
	p, err := NewPipeline(path, width, height, bus)
	if err != nil {
		t.Fatalf("NewPipeline on the stock shader failed: %v", err)
	}
	return p
}

func TestNewPipelineMissingShaderFails(t *testing.T) {
	_, err := NewPipeline(filepath.Join(t.TempDir(), "nope.wgsl"), 10, 10, nil)
	if err == nil {
		t.Fatal("expected an error for a missing shader file")
	}
}

func TestNewPipelineFallsBackToEmbeddedStockShader(t *testing.T) {
	// The default filename resolves to the embedded copy when the user's
	// shader directory doesn't contain it.
	p := newTestPipeline(t, 10, 10, nil)
	if len(p.spirv) == 0 {
		t.Fatal("expected compiled SPIR-V words")
	}
}

func TestNewPipelineRejectsGLSL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.glsl")
	glsl := "#version 330 core\nout vec4 color;\nvoid main() {\n    color = vec4(1.0);\n}\n"
	if err := os.WriteFile(path, []byte(glsl), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewPipeline(path, 10, 10, nil)
	if err == nil {
		t.Fatal("expected GLSL shader to be rejected")
	}
	if !strings.Contains(err.Error(), "only WGSL") {
		t.Fatalf("expected a pointed dialect error, got: %v", err)
	}
}

func TestNewPipelineRejectsInvalidSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultCursorShaderFilename)
	if _, err := NewPipeline(path, 0, 10, nil); err == nil {
		t.Fatal("expected an error for zero width")
	}
}

func TestRenderMatchesTargetSizeAndGlowsAtCursor(t *testing.T) {
	p := newTestPipeline(t, 10, 10, nil)
	p.UpdateCursorPosition(5, 2)

	img, err := p.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
		t.Fatalf("unexpected render size %v", img.Bounds())
	}

	// Cursor cell (5, 2) sits at pixel (5.5, 5.0) in screen coordinates,
	// which is row 4 of the bottom-up render target.
	near := img.RGBAAt(5, 4).A
	far := img.RGBAAt(0, 9).A
	if near <= far {
		t.Fatalf("glow should peak at the cursor: near=%d far=%d", near, far)
	}
}

func TestRenderAdvancesFrameCounter(t *testing.T) {
	p := newTestPipeline(t, 8, 8, nil)
	if _, err := p.Render(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Render(); err != nil {
		t.Fatal(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frame != 2 {
		t.Fatalf("expected 2 completed frames, got %d", p.frame)
	}
}

func TestResizeReallocatesTargetAndRequestsRepaint(t *testing.T) {
	bus := protocol.NewBus()
	receiver := bus.Subscribe()
	p := newTestPipeline(t, 10, 10, bus)

	// Upload a texture so the resize has something to invalidate.
	tex := image.NewRGBA(image.Rect(0, 0, 10, 10))
	tex.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	p.UpdateChannelTexture(tex)

	if err := p.HandleMessage(protocol.Resize{Cols: 20, Rows: 8}); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if w, h := p.Size(); w != 20 || h != 16 {
		t.Fatalf("expected 20x16 target after resize, got %dx%d", w, h)
	}

	select {
	case msg := <-receiver.Chan():
		if _, ok := msg.(protocol.Repaint); !ok {
			t.Fatalf("expected a Repaint request, got %T", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the pipeline to request a repaint after resize")
	}
}

func TestResizeWithoutTextureStaysQuiet(t *testing.T) {
	bus := protocol.NewBus()
	receiver := bus.Subscribe()
	p := newTestPipeline(t, 10, 10, bus)

	if err := p.HandleMessage(protocol.Resize{Cols: 5, Rows: 5}); err != nil {
		t.Fatalf("resize failed: %v", err)
	}

	select {
	case msg := <-receiver.Chan():
		t.Fatalf("unexpected message %T", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnrelatedMessagesAreIgnored(t *testing.T) {
	p := newTestPipeline(t, 10, 10, nil)
	if err := p.HandleMessage(protocol.CursorVisibility{Visible: false}); err != nil {
		t.Fatalf("unrelated message should be ignored, got %v", err)
	}
}
