package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "scrim.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}

	cursor := cfg.AnimatedCursor
	if cursor.Enabled {
		t.Fatal("cursor layer should be disabled by default")
	}
	if cursor.Opacity != 0.75 {
		t.Fatalf("expected default opacity 0.75, got %v", cursor.Opacity)
	}
	if cursor.Layer != -1 {
		t.Fatalf("expected default layer -1, got %d", cursor.Layer)
	}
	want := filepath.Join(CursorShaderDirectory, DefaultCursorShaderFilename)
	if cursor.Path != want {
		t.Fatalf("expected default path %q, got %q", want, cursor.Path)
	}
	if cursor.UploadTTYAsPixels {
		t.Fatal("upload_tty_as_pixels should be off by default")
	}
}

func TestLoadPartialFileOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrim.toml")
	content := "[animated_cursor]\nenabled = true\nopacity = 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cursor := cfg.AnimatedCursor
	if !cursor.Enabled {
		t.Fatal("enabled should come from the file")
	}
	if cursor.Opacity != 0.5 {
		t.Fatalf("opacity should come from the file, got %v", cursor.Opacity)
	}
	// Everything the file doesn't mention keeps its default.
	if cursor.Layer != -1 {
		t.Fatalf("layer should keep its default, got %d", cursor.Layer)
	}
	if cfg.FrameRate != 30 {
		t.Fatalf("frame rate should keep its default, got %d", cfg.FrameRate)
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrim.toml")
	content := "frame_rate = 0\n[animated_cursor]\nopacity = 1.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FrameRate != 1 {
		t.Fatalf("frame rate should clamp to 1, got %d", cfg.FrameRate)
	}
	if cfg.AnimatedCursor.Opacity != 1 {
		t.Fatalf("opacity should clamp to 1, got %v", cfg.AnimatedCursor.Opacity)
	}
}

func TestLoadInvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrim.toml")
	if err := os.WriteFile(path, []byte("animated_cursor = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error for invalid TOML")
	}
}
