package surface

import "github.com/gdamore/tcell/v2"

// Cell is one character cell of terminal content. A zero Ch marks the cell
// as transparent for compositing.
type Cell struct {
	Ch    rune
	Style tcell.Style
}
