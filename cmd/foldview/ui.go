package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/foldview/internal/app"
	"github.com/dshills/foldview/internal/renderer/backend"
)

// ui runs the interactive viewer: a document pane plus a one-row status
// line, with vi-flavored keys.
type ui struct {
	app    *app.Application
	screen *backend.Screen

	top     uint32 // first visible source line
	cursor  int    // row index within the visible rows
	pending rune   // first key of a two-key sequence ("za")
}

func newUI(a *app.Application) (*ui, error) {
	screen, err := backend.NewScreen(a.Theme())
	if err != nil {
		return nil, err
	}
	return &ui{app: a, screen: screen}, nil
}

func (u *ui) run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()

	// External document edits and config file changes repaint via an
	// interrupt event; tcell's PollEvent is the only consumer of the queue.
	if err := u.app.Watch(func() {
		_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = u.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	}()

	for {
		u.draw()
		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if u.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventInterrupt:
			if _, quit := ev.Data().(quitSignal); quit {
				return nil
			}
			// A config reload may have swapped the theme; the view and
			// render options are re-read on every draw.
			u.screen.SetTheme(u.app.Theme())
		}
	}
}

// quitSignal is posted through the event queue on context cancellation.
type quitSignal struct{}

// handleKey reacts to one key event. Returns true to quit.
func (u *ui) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if ev.Key() == tcell.KeyEnter {
		u.toggle()
		return false
	}
	if ev.Key() != tcell.KeyRune {
		u.pending = 0
		return false
	}

	r := ev.Rune()
	if u.pending == 'z' {
		u.pending = 0
		if r == 'a' {
			u.toggle()
		}
		return false
	}

	switch r {
	case 'q':
		return true
	case 'z':
		u.pending = 'z'
	case 'j':
		u.moveCursor(1)
	case 'k':
		u.moveCursor(-1)
	case 'g':
		u.top = 0
		u.cursor = 0
	case 'G':
		u.jumpToEnd()
	case ' ':
		u.toggle()
	}
	return false
}

// draw repaints the document pane and the status line.
func (u *ui) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	if height < 2 {
		u.screen.Show()
		return
	}
	paneHeight := height - 1

	rows := u.app.View().VisibleRows(u.top, paneHeight, width)
	if u.cursor >= len(rows) && len(rows) > 0 {
		u.cursor = len(rows) - 1
	}
	tabWidth := u.app.Config().Render.TabWidth
	for y, row := range rows {
		u.screen.DrawRow(y, row.Chunks, tabWidth)
	}

	status := fmt.Sprintf(" %s  line %d  folds %d  [za toggle, q quit]",
		filepath.Base(u.app.File()), u.cursorLine(rows), u.app.Regions().Len())
	u.screen.DrawText(height-1, status, "statusline")
	u.screen.Show()
}

// cursorLine maps the cursor row back to its source line, one-based for
// display.
func (u *ui) cursorLine(rows []app.Row) int {
	if u.cursor < 0 || u.cursor >= len(rows) {
		return int(u.top) + 1
	}
	return int(rows[u.cursor].Line) + 1
}

// moveCursor shifts the cursor by delta rows, scrolling at the edges.
func (u *ui) moveCursor(delta int) {
	width, height := u.screen.Size()
	paneHeight := height - 1
	if paneHeight < 1 {
		return
	}
	rows := u.app.View().VisibleRows(u.top, paneHeight, width)
	if len(rows) == 0 {
		return
	}

	next := u.cursor + delta
	switch {
	case next < 0:
		u.scrollUp()
		u.cursor = 0
	case next >= len(rows):
		u.cursor = len(rows) - 1
		if len(rows) == paneHeight && len(rows) > 1 {
			// Bottom of a full pane: scroll instead of sticking.
			u.top = rows[1].Line
		}
	default:
		u.cursor = next
	}
}

// scrollUp moves the viewport one visible row up, stepping over lines
// hidden inside closed folds.
func (u *ui) scrollUp() {
	for u.top > 0 {
		u.top--
		if !u.app.Regions().Hidden(u.top) {
			return
		}
	}
}

// jumpToEnd positions the viewport so the last line is visible.
func (u *ui) jumpToEnd() {
	width, height := u.screen.Size()
	paneHeight := height - 1
	if paneHeight < 1 {
		return
	}
	// Walk the whole document and keep the last window of rows.
	rows := u.app.View().VisibleRows(0, 1<<30, width)
	if len(rows) == 0 {
		return
	}
	start := len(rows) - paneHeight
	if start < 0 {
		start = 0
	}
	u.top = rows[start].Line
	u.cursor = len(rows) - 1 - start
}

// toggle flips the fold under the cursor.
func (u *ui) toggle() {
	width, height := u.screen.Size()
	rows := u.app.View().VisibleRows(u.top, height-1, width)
	if u.cursor < 0 || u.cursor >= len(rows) {
		return
	}
	u.app.ToggleFold(rows[u.cursor].Line)
}
