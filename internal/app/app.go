// Package app wires the foldview components together and manages their
// lifecycle: configuration, theme, document, fold regions, the optional
// language server and Lua hook, and the session store.
package app

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/foldview/internal/config"
	"github.com/dshills/foldview/internal/highlight"
	"github.com/dshills/foldview/internal/lsp"
	"github.com/dshills/foldview/internal/plugin/lua"
	"github.com/dshills/foldview/internal/region"
	"github.com/dshills/foldview/internal/renderer/theme"
	"github.com/dshills/foldview/internal/session"
	"github.com/dshills/foldview/internal/source"
)

// Options configures the application.
type Options struct {
	// File is the document to open.
	File string

	// ConfigPath overrides the configuration file location.
	ConfigPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogOutput receives log lines. Nil discards them, which is the right
	// default while a terminal UI owns the screen.
	LogOutput io.Writer
}

// Application is the central coordinator for all foldview components.
type Application struct {
	log     *Logger
	store   *source.FileStore
	regs    *region.Registry
	session *session.Store
	hook    *lua.Hook
	lsp     *lsp.Client

	// mu guards the pieces the config watcher replaces at runtime.
	mu    sync.RWMutex
	cfg   config.Config
	theme *theme.Theme
	view  *View

	cfgWatcher *config.Watcher

	opts Options
}

// New creates an Application and initializes its components in dependency
// order. Missing optional pieces (theme file, Lua script, session store)
// degrade to defaults rather than failing.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		regs: region.NewRegistry(),
	}

	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	app.log = NewLogger(ParseLogLevel(opts.LogLevel), out)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		app.log.Warn("config load failed, using defaults: %v", err)
		cfg = config.Default()
	}
	app.cfg = cfg

	app.theme, err = theme.Load(cfg.Theme.Path)
	if err != nil {
		app.log.Warn("theme load failed, using default theme: %v", err)
		app.theme = theme.Default()
	}

	if cfg.Session.Path != "" {
		app.session, err = session.Open(cfg.Session.Path)
		if err != nil {
			app.log.Warn("session store unavailable: %v", err)
		}
	}

	if cfg.Lua.Script != "" {
		app.hook, err = lua.LoadFile(cfg.Lua.Script)
		if err != nil {
			app.log.Warn("foldtext script rejected: %v", err)
			app.hook = nil
		}
	}

	return app, nil
}

// Open loads the document, starts the optional language server, and builds
// the view. It must be called once before VisibleRows.
func (a *Application) Open(ctx context.Context) error {
	store, err := source.NewFileStore(a.opts.File)
	if err != nil {
		return NewOperationError("open", a.opts.File, err)
	}
	a.store = store

	if cmd := a.cfg.LSP.Command; cmd != "" {
		if err := a.startLSP(ctx, cmd, a.cfg.LSP.Args); err != nil {
			a.log.Warn("language server unavailable: %v", err)
		}
	}

	a.mu.Lock()
	a.view = a.buildView()
	a.mu.Unlock()
	return nil
}

// buildView assembles the display-row builder from the current
// configuration. Callers hold a.mu.
func (a *Application) buildView() *View {
	var spans SpanProvider
	if hl := highlighterFor(a.opts.File); hl != nil {
		spans = hl
	}
	var hook FoldtextHook
	if a.hook != nil {
		hook = a.hook
	}
	return NewView(ViewConfig{
		Lines:    a.store,
		Regions:  a.regs,
		Spans:    spans,
		Hook:     hook,
		FillRune: a.cfg.FillRune(),
		TabWidth: a.cfg.Render.TabWidth,
		Suffix:   a.cfg.Suffix,
		Logger:   a.log,
	})
}

// applyConfig swaps in a freshly loaded configuration. The theme and view
// are rebuilt; the session store, Lua hook, and language server keep
// running as originally started.
func (a *Application) applyConfig(cfg config.Config) {
	th, err := theme.Load(cfg.Theme.Path)
	if err != nil {
		a.log.Warn("theme reload failed, keeping current theme: %v", err)
		th = nil
	}

	a.mu.Lock()
	a.cfg = cfg
	if th != nil {
		a.theme = th
	}
	a.view = a.buildView()
	a.mu.Unlock()

	a.log.Info("configuration reloaded")
}

// startLSP launches the configured server, announces the document, and
// seeds the region registry from its folding ranges.
func (a *Application) startLSP(ctx context.Context, command string, args []string) error {
	abs, err := filepath.Abs(a.opts.File)
	if err != nil {
		return err
	}
	rootURI := "file://" + filepath.Dir(abs)
	uri := "file://" + abs

	client, err := lsp.Start(ctx, rootURI, command, args...)
	if err != nil {
		return err
	}

	// Server-side log messages land in our log instead of being dropped.
	lspLog := a.log.WithComponent("lsp")
	client.Transport().OnNotification("window/logMessage", func(method string, params json.RawMessage) {
		lspLog.Debug("%s", gjson.GetBytes(params, "message").String())
	})

	text, err := os.ReadFile(abs)
	if err != nil {
		client.Close()
		return err
	}
	if err := client.DidOpen(uri, languageID(abs), string(text)); err != nil {
		client.Close()
		return err
	}

	ranges, err := client.FoldingRanges(ctx, uri)
	if err != nil {
		client.Close()
		return err
	}
	a.lsp = client
	a.SetRegions(ranges)
	a.log.Info("language server provided %d folding ranges", len(ranges))
	return nil
}

// View returns the display-row builder. Valid after Open.
func (a *Application) View() *View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// File returns the path of the open document.
func (a *Application) File() string { return a.opts.File }

// Theme returns the active theme.
func (a *Application) Theme() *theme.Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

// Config returns the active configuration.
func (a *Application) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Regions returns the fold region registry.
func (a *Application) Regions() *region.Registry { return a.regs }

// SetRegions replaces the fold set and restores per-fold open state
// remembered from earlier sessions.
func (a *Application) SetRegions(ranges []lsp.FoldingRange) {
	regions := make([]region.Region, 0, len(ranges))
	for _, fr := range ranges {
		regions = append(regions, region.Region{
			StartLine: fr.StartLine,
			EndLine:   fr.EndLine,
			Kind:      fr.Kind,
			Open:      true,
		})
	}
	a.regs.Replace(regions)
	a.applySession()
}

// AddRegion registers a single fold, used for folds given on the command
// line when no language server is configured.
func (a *Application) AddRegion(startLine, endLine uint32, kind string) {
	a.regs.Add(startLine, endLine, kind)
	a.applySession()
}

// ToggleFold flips the innermost fold at line and records the new state in
// the session store.
func (a *Application) ToggleFold(line uint32) (region.Region, bool) {
	r, ok := a.regs.Toggle(line)
	if !ok {
		return region.Region{}, false
	}
	if a.session != nil {
		if err := a.session.SetOpen(a.opts.File, r.StartLine, r.EndLine, r.Open); err != nil {
			a.log.Warn("session record failed: %v", err)
		}
	}
	return r, true
}

// Watch registers a callback for external changes to the document or the
// configuration file. Configuration edits are applied before the callback
// runs, so a repaint picks up the new settings.
func (a *Application) Watch(onChange func()) error {
	if a.opts.ConfigPath != "" {
		w, err := config.Watch(a.opts.ConfigPath, func(cfg config.Config) {
			a.applyConfig(cfg)
			onChange()
		})
		if err != nil {
			a.log.Warn("config watch unavailable: %v", err)
		} else {
			a.cfgWatcher = w
		}
	}
	return a.store.Watch(onChange)
}

// Close releases every component, flushing the session store first so fold
// state survives the exit.
func (a *Application) Close() error {
	var firstErr error
	if a.cfgWatcher != nil {
		if err := a.cfgWatcher.Close(); err != nil {
			firstErr = err
		}
	}
	if a.session != nil {
		if err := a.session.Flush(); err != nil {
			a.log.Error("session flush failed: %v", err)
			firstErr = err
		}
	}
	if a.lsp != nil {
		if err := a.lsp.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.hook != nil {
		a.hook.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applySession overlays remembered open/closed state onto the current
// region set.
func (a *Application) applySession() {
	if a.session == nil {
		return
	}
	for _, r := range a.regs.Regions() {
		if open, known := a.session.IsOpen(a.opts.File, r.StartLine, r.EndLine); known {
			a.regs.SetOpen(r.ID, open)
		}
	}
}

// highlighterFor picks a span provider from the file extension. Unknown
// extensions render unstyled.
func highlighterFor(path string) *highlight.Highlighter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return highlight.Go()
	default:
		return nil
	}
}

// languageID maps a file path to an LSP language identifier.
func languageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".py":
		return "python"
	case ".ts":
		return "typescript"
	case ".js":
		return "javascript"
	default:
		return "plaintext"
	}
}
