package protocol

// Message is a control message broadcast to every layer. The set of variants
// is closed; layers forward messages they don't care about to their
// collaborators untouched.
type Message interface {
	kind() string
}

// Repaint announces that the terminal's visible content changed and layers
// that keep a copy of it should refresh.
type Repaint struct{}

// End asks every layer to shut down cleanly.
type End struct{}

// Resize carries the new terminal size in cells.
type Resize struct {
	Cols int
	Rows int
}

// CursorVisibility reports whether the terminal's own cursor is shown.
type CursorVisibility struct {
	Visible bool
}

// ConfigReloaded announces that the user's config file changed on disk and
// shared state already holds the fresh values.
type ConfigReloaded struct{}

func (Repaint) kind() string          { return "Repaint" }
func (End) kind() string              { return "End" }
func (Resize) kind() string           { return "Resize" }
func (CursorVisibility) kind() string { return "CursorVisibility" }
func (ConfigReloaded) kind() string   { return "ConfigReloaded" }
