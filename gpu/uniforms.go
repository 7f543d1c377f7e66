package gpu

// CursorPixelWidth and CursorPixelHeight are the cursor's footprint in
// half-block pixels: one cell is one pixel wide and two pixels tall.
const (
	CursorPixelWidth  = 1
	CursorPixelHeight = 2
)

// Uniforms are the global values handed to the shader each frame. The layout
// mirrors the uniform block declared by the stock shaders.
type Uniforms struct {
	// Resolution of the render target in half-block pixels.
	Resolution [2]float32
	// Time in seconds since the pipeline was constructed.
	Time float32
	// Frame counts completed render passes.
	Frame int32
	// Cursor is x, y, width, height of the cursor in half-block pixels.
	Cursor [4]float32
}
