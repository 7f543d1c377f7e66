// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: User configuration with total defaults and TOML overlay.
// Notes: Every field has a working default; a missing or partial config file
// always yields a fully valid configuration.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// CursorShaderDirectory is the subdirectory of the config directory where
// cursor shaders live.
const CursorShaderDirectory = "cursor_shaders"

// DefaultCursorShaderFilename is the stock shader used when the user hasn't
// configured one.
const DefaultCursorShaderFilename = "glow.wgsl"

// Cursor configures the animated cursor layer.
type Cursor struct {
	// Enabled turns the layer on.
	Enabled bool `toml:"enabled"`
	// Path to the shader file, resolved relative to the config directory.
	Path string `toml:"path"`
	// Opacity of the rendered layer, 0.0 to 1.0.
	Opacity float32 `toml:"opacity"`
	// Layer is the z-index the effect renders into. Lower is further back;
	// negative layers sit behind the terminal text.
	Layer int `toml:"layer"`
	// UploadTTYAsPixels uploads a pixel representation of the terminal
	// content to the shader. Useful for shaders that replace the text
	// itself.
	UploadTTYAsPixels bool `toml:"upload_tty_as_pixels"`
}

// Config is the root of the user's configuration file.
type Config struct {
	// FrameRate is the target frames per second for animated layers.
	FrameRate int `toml:"frame_rate"`

	AnimatedCursor Cursor `toml:"animated_cursor"`
}

// Default returns the configuration used when the user has no config file.
func Default() Config {
	return Config{
		FrameRate: 30,
		AnimatedCursor: Cursor{
			Enabled:           false,
			Path:              filepath.Join(CursorShaderDirectory, DefaultCursorShaderFilename),
			Opacity:           0.75,
			Layer:             -1,
			UploadTTYAsPixels: false,
		},
	}
}

// Load reads the TOML file at path and overlays it onto the defaults. Fields
// absent from the file keep their default values. A missing file is not an
// error; it just means all defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// clamp keeps parsed values inside their documented ranges.
func (c *Config) clamp() {
	if c.FrameRate < 1 {
		c.FrameRate = 1
	}
	if c.AnimatedCursor.Opacity < 0 {
		c.AnimatedCursor.Opacity = 0
	}
	if c.AnimatedCursor.Opacity > 1 {
		c.AnimatedCursor.Opacity = 1
	}
}
