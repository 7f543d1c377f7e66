// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded stock assets shipped with the binary.
// The embedded shader is used when the user's config directory doesn't
// provide one.

package defaults

import _ "embed"

//go:embed glow.wgsl
var cursorShader []byte

// CursorShader returns the stock cursor shader source.
func CursorShader() []byte {
	return cursorShader
}
