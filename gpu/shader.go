// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: gpu/shader.go
// Summary: Shader source loading and WGSL compilation.

package gpu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-enry/go-enry/v2"
	"github.com/gogpu/naga"

	"github.com/framegrace/scrim/config"
	"github.com/framegrace/scrim/defaults"
)

// loadShaderSource reads the shader file. When the user hasn't installed the
// stock shader into their config directory, the embedded copy stands in.
func loadShaderSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err == nil {
		return src, nil
	}
	if errors.Is(err, fs.ErrNotExist) && filepath.Base(path) == config.DefaultCursorShaderFilename {
		return defaults.CursorShader(), nil
	}
	return nil, fmt.Errorf("gpu: reading shader %s: %w", path, err)
}

// compileShader validates the source and compiles it to SPIR-V words. Only
// WGSL is supported; sources that classify as another shading language get a
// pointed error instead of an opaque parse failure.
func compileShader(path string, src []byte) ([]uint32, error) {
	if lang := enry.GetLanguage(filepath.Base(path), src); lang == "GLSL" || lang == "HLSL" {
		return nil, fmt.Errorf("gpu: shader %s looks like %s; only WGSL shaders are supported", path, lang)
	}

	spirvBytes, err := naga.Compile(string(src))
	if err != nil {
		return nil, fmt.Errorf("gpu: compiling shader %s: %w", path, err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
