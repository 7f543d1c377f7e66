// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: state/state.go
// Summary: Host state shared between the compositor and its layers.
// Notes: Layers only read; every accessor returns a point-in-time copy so no
// lock is held while a layer is suspended.

package state

import (
	"sync"

	"github.com/framegrace/scrim/config"
	"github.com/framegrace/scrim/protocol"
	"github.com/framegrace/scrim/surface"
)

// TTYSize is the terminal size in cells.
type TTYSize struct {
	Cols int
	Rows int
}

// State holds everything the host shares with its layers: the live config,
// the config directory (shader paths resolve relative to it), the terminal
// size, and a copy of the terminal's rendered content.
type State struct {
	// Protocol is the broadcast control bus all layers subscribe to.
	Protocol *protocol.Bus

	mu            sync.RWMutex
	configDir     string
	cfg           config.Config
	ttySize       TTYSize
	cells         [][]surface.Cell
	cursorX       int
	cursorY       int
	cursorVisible bool

	notifications chan Notification
}

// New creates shared state with default config and a fresh control bus.
func New(configDir string) *State {
	return &State{
		Protocol:      protocol.NewBus(),
		configDir:     configDir,
		cfg:           config.Default(),
		cursorVisible: true,
		notifications: make(chan Notification, 16),
	}
}

// ConfigDir returns the directory the config file and shader paths resolve
// against.
func (s *State) ConfigDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configDir
}

// Config returns a copy of the current configuration.
func (s *State) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the current configuration.
func (s *State) SetConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// TTYSize returns the current terminal size in cells.
func (s *State) TTYSize() TTYSize {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttySize
}

// SetTTYSize records a new terminal size.
func (s *State) SetTTYSize(cols, rows int) {
	s.mu.Lock()
	s.ttySize = TTYSize{Cols: cols, Rows: rows}
	s.mu.Unlock()
}

// TTYSnapshot is a consistent copy of the terminal's rendered content and
// cursor at one point in time.
type TTYSnapshot struct {
	Cells         [][]surface.Cell
	CursorX       int
	CursorY       int
	CursorVisible bool
}

// TTY returns the current terminal content snapshot. The returned cell rows
// are shared; callers must not mutate them.
func (s *State) TTY() TTYSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TTYSnapshot{
		Cells:         s.cells,
		CursorX:       s.cursorX,
		CursorY:       s.cursorY,
		CursorVisible: s.cursorVisible,
	}
}

// SetTTY replaces the terminal content snapshot. The host hands over
// ownership of cells; it must not write to the rows afterwards.
func (s *State) SetTTY(cells [][]surface.Cell, cursorX, cursorY int) {
	s.mu.Lock()
	s.cells = cells
	s.cursorX = cursorX
	s.cursorY = cursorY
	s.mu.Unlock()
}

// SetCursorVisible records whether the terminal's own cursor is shown.
func (s *State) SetCursorVisible(visible bool) {
	s.mu.Lock()
	s.cursorVisible = visible
	s.mu.Unlock()
}
