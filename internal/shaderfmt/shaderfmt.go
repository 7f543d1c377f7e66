// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package shaderfmt pretty-prints shader source for compile-error
// diagnostics, so a broken shader is readable in the log instead of a wall
// of plain text.
package shaderfmt

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultStyleName = "catppuccin-mocha"

// Highlight renders shader source with ANSI colors and line numbers.
// Unknown dialects fall back to an unstyled listing.
func Highlight(source string) string {
	lexer := lexers.Get("wgsl")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(defaultStyleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return numberLines(source)
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return numberLines(source)
	}
	return numberLines(sb.String())
}

// Annotate produces a log-ready block: the compile error followed by the
// highlighted source it came from.
func Annotate(path, source string, err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "shader %s failed to compile: %v\n", path, err)
	sb.WriteString(Highlight(source))
	return sb.String()
}

func numberLines(source string) string {
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d │ %s\n", i+1, line)
	}
	return sb.String()
}
