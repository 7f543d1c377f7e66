// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/scrim/main.go
// Summary: Minimal host: runs a shell in a PTY, mirrors it on a tcell
// screen, and composites effect layers on top.
// Notes: This is a demonstration host. Full multi-layer z-order resolution
// belongs to a real compositor, not here.

package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/x/vt"
	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/framegrace/scrim/config"
	"github.com/framegrace/scrim/internal/shaderfmt"
	"github.com/framegrace/scrim/layer"
	"github.com/framegrace/scrim/protocol"
	"github.com/framegrace/scrim/state"
	"github.com/framegrace/scrim/surface"
)

func main() {
	defaultDir := "."
	if base, err := os.UserConfigDir(); err == nil {
		defaultDir = filepath.Join(base, "scrim")
	}
	configDir := flag.String("config", defaultDir, "config directory")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "scrim: stdin is not a terminal")
		os.Exit(1)
	}

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "scrim: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	st := state.New(configDir)
	cfg, err := config.Load(st.ConfigFilePath())
	if err != nil {
		return err
	}
	st.SetConfig(cfg)

	// The screen belongs to tcell from here on; logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(configDir, "scrim.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	h, err := newHost(st)
	if err != nil {
		return err
	}
	defer h.close()

	return h.loop()
}

// host wires the PTY, the terminal emulator, the tcell screen and the effect
// layers together.
type host struct {
	st     *state.State
	screen tcell.Screen
	emu    *vt.SafeEmulator
	ptmx   *os.File
	cmd    *exec.Cmd

	frames chan surface.FrameUpdate

	mu     sync.Mutex
	latest map[string]surface.FrameUpdate

	cancel context.CancelFunc
}

func newHost(st *state.State) (*host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("opening screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initialising screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()

	cols, rows := screen.Size()
	st.SetTTYSize(cols, rows)

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.Start(cmd)
	if err != nil {
		screen.Fini()
		return nil, fmt.Errorf("starting shell: %w", err)
	}
	_ = pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})

	ctx, cancel := context.WithCancel(context.Background())
	h := &host{
		st:     st,
		screen: screen,
		emu:    vt.NewSafeEmulator(cols, rows),
		ptmx:   ptmx,
		cmd:    cmd,
		frames: make(chan surface.FrameUpdate, 8),
		latest: make(map[string]surface.FrameUpdate),
		cancel: cancel,
	}

	go h.readPTY()
	go h.forwardEmulatorInput()
	go h.consumeFrames()
	go h.drainNotifications()
	go func() {
		if err := st.WatchConfig(ctx); err != nil {
			log.Printf("Host: config watcher stopped: %v", err)
		}
	}()

	if st.Config().AnimatedCursor.Enabled {
		go h.startCursorLayer()
	}

	return h, nil
}

func (h *host) startCursorLayer() {
	if err := layer.StartAnimatedCursor(h.frames, h.st); err != nil {
		shaderPath := filepath.Join(h.st.ConfigDir(), h.st.Config().AnimatedCursor.Path)
		if src, readErr := os.ReadFile(shaderPath); readErr == nil {
			log.Print(shaderfmt.Annotate(shaderPath, string(src), err))
		}
	}
}

// readPTY pumps shell output into the emulator and tells the layers that the
// terminal content changed.
func (h *host) readPTY() {
	buf := make([]byte, 4096)
	for {
		n, err := h.ptmx.Read(buf)
		if n > 0 {
			if _, werr := h.emu.Write(buf[:n]); werr != nil {
				log.Printf("Host: emulator write: %v", werr)
			}
			h.syncTTY()
			h.st.Protocol.Send(protocol.Repaint{})
			h.draw()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Host: pty read: %v", err)
			}
			return
		}
	}
}

// forwardEmulatorInput pipes VT-generated input (key encodings, query
// replies) back to the shell.
func (h *host) forwardEmulatorInput() {
	if _, err := io.Copy(h.ptmx, h.emu); err != nil {
		log.Printf("Host: input forwarding stopped: %v", err)
	}
}

func (h *host) consumeFrames() {
	for fu := range h.frames {
		h.mu.Lock()
		h.latest[fu.Layer] = fu
		h.mu.Unlock()
		h.draw()
	}
}

func (h *host) drainNotifications() {
	for n := range h.st.Notifications() {
		log.Printf("Notification [%s] %s: %s", n.Level, n.Title, n.Body)
	}
}

// syncTTY copies the emulator's cell grid and cursor into shared state.
// Continuation columns of wide glyphs are left with a zero Ch, which draw
// skips so tcell can spill the glyph itself.
func (h *host) syncTTY() {
	size := h.st.TTYSize()
	cells := make([][]surface.Cell, size.Rows)
	for y := 0; y < size.Rows; y++ {
		cells[y] = make([]surface.Cell, size.Cols)
		for x := 0; x < size.Cols; {
			converted, width := h.cellAt(x, y)
			cells[y][x] = converted
			x += width
		}
	}
	cur := h.emu.CursorPosition()
	h.st.SetTTY(cells, cur.X, cur.Y)
}

func (h *host) cellAt(x, y int) (surface.Cell, int) {
	cell := h.emu.CellAt(x, y)
	if cell == nil {
		return surface.Cell{Ch: ' ', Style: tcell.StyleDefault}, 1
	}

	ch := ' '
	for _, r := range cell.Content {
		ch = r
		break
	}
	width := cell.Width
	if width < 1 {
		width = runewidth.RuneWidth(ch)
	}
	if width < 1 {
		width = 1
	}

	fg := toTcellColor(cell.Style.Fg, tcell.ColorDefault)
	bg := toTcellColor(cell.Style.Bg, tcell.ColorDefault)
	// Reverse video.
	if uint8(cell.Style.Attrs)&(1<<5) != 0 {
		fg, bg = bg, fg
	}
	return surface.Cell{Ch: ch, Style: tcell.StyleDefault.Foreground(fg).Background(bg)}, width
}

func toTcellColor(c color.Color, fallback tcell.Color) tcell.Color {
	if c == nil {
		return fallback
	}
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// draw repaints the screen: terminal content first, then every layer's
// latest frame in z-order.
func (h *host) draw() {
	h.mu.Lock()
	defer h.mu.Unlock()

	tty := h.st.TTY()
	for y, row := range tty.Cells {
		for x, cell := range row {
			if cell.Ch == 0 {
				continue
			}
			h.screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}

	updates := make([]surface.FrameUpdate, 0, len(h.latest))
	for _, fu := range h.latest {
		updates = append(updates, fu)
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Z < updates[j].Z })
	for _, fu := range updates {
		h.compositeFrame(tty.Cells, fu)
	}

	if tty.CursorVisible {
		h.screen.ShowCursor(tty.CursorX, tty.CursorY)
	} else {
		h.screen.HideCursor()
	}
	h.screen.Show()
}

// compositeFrame blends one layer frame over the terminal content. Cells with
// a glyph keep their text and only pick up a tinted background; blank cells
// are rendered as half-block pixel pairs.
func (h *host) compositeFrame(cells [][]surface.Cell, fu surface.FrameUpdate) {
	if fu.Surface == nil {
		return
	}
	for y := 0; y < fu.Surface.Rows; y++ {
		for x := 0; x < fu.Surface.Cols; x++ {
			upper := fu.Surface.Pixel(x, y*2)
			lower := fu.Surface.Pixel(x, y*2+1)
			if upper.A == 0 && lower.A == 0 {
				continue
			}

			var under surface.Cell
			if y < len(cells) && x < len(cells[y]) {
				under = cells[y][x]
			}
			_, underBg, _ := under.Style.Decompose()

			if under.Ch != 0 && under.Ch != ' ' {
				blended := surface.BlendOver(underBg, lower, fu.Opacity)
				h.screen.SetContent(x, y, under.Ch, nil, under.Style.Background(blended))
				continue
			}

			fg := surface.BlendOver(underBg, upper, fu.Opacity)
			bg := surface.BlendOver(underBg, lower, fu.Opacity)
			h.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

// loop is the host's input/event loop. Ctrl+Q shuts everything down.
func (h *host) loop() error {
	for {
		ev := h.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			h.resize(ev.Size())
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ {
				h.st.Protocol.Send(protocol.End{})
				h.st.Protocol.Close()
				return nil
			}
			h.sendKey(ev)
		case nil:
			return nil
		}
	}
}

func (h *host) resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	h.st.SetTTYSize(cols, rows)
	h.emu.Resize(cols, rows)
	_ = pty.Setsize(h.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	h.st.Protocol.Send(protocol.Resize{Cols: cols, Rows: rows})
	h.syncTTY()
	h.draw()
}

// sendKey translates a tcell key event into emulator input; the emulator's
// encoding is then forwarded to the shell by forwardEmulatorInput.
func (h *host) sendKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		h.emu.SendText(string(ev.Rune()))
	case tcell.KeyEnter:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyEnter})
	case tcell.KeyTab:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyTab})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyBackspace})
	case tcell.KeyEscape:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyEscape})
	case tcell.KeyUp:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyUp})
	case tcell.KeyDown:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyDown})
	case tcell.KeyLeft:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyLeft})
	case tcell.KeyRight:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyRight})
	case tcell.KeyDelete:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyDelete})
	case tcell.KeyHome:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyHome})
	case tcell.KeyEnd:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyEnd})
	case tcell.KeyPgUp:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyPgUp})
	case tcell.KeyPgDn:
		h.emu.SendKey(vt.KeyPressEvent{Code: vt.KeyPgDown})
	default:
		// Control characters map straight through.
		if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
			_, _ = h.ptmx.Write([]byte{byte(ev.Key())})
		}
	}
}

func (h *host) close() {
	h.cancel()
	_ = h.emu.Close()
	_ = h.ptmx.Close()
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	h.screen.Fini()
}
