package shaderfmt

import (
	"errors"
	"strings"
	"testing"
)

const sample = "struct Uniforms {\n    time: f32,\n}\n"

func TestHighlightNumbersEveryLine(t *testing.T) {
	out := Highlight(sample)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 numbered lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "1 │") {
		t.Fatalf("first line should carry its number, got %q", lines[0])
	}
	if !strings.Contains(lines[2], "3 │") {
		t.Fatalf("last line should carry its number, got %q", lines[2])
	}
}

func TestHighlightKeepsSourceText(t *testing.T) {
	out := Highlight("fn main() {}\n")
	// ANSI escapes may be interleaved, but the identifier must survive.
	if !strings.Contains(stripEscapes(out), "main") {
		t.Fatalf("source text lost in highlighting:\n%s", out)
	}
}

func TestAnnotateLeadsWithTheError(t *testing.T) {
	out := Annotate("cursor_shaders/glow.wgsl", sample, errors.New("unexpected token"))
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(first, "cursor_shaders/glow.wgsl") || !strings.Contains(first, "unexpected token") {
		t.Fatalf("annotation should name path and error first, got %q", first)
	}
	if !strings.Contains(out, "│") {
		t.Fatal("annotation should include the numbered listing")
	}
}

func stripEscapes(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			inEscape = true
		case inEscape && r == 'm':
			inEscape = false
		case !inEscape:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
