// Package lua hosts the optional user foldtext hook. A script may define
//
//	function foldtext(line, hidden)
//
// returning either a string (which replaces the informational suffix) or a
// table of {text=..., tag=...} chunks (which replaces the whole preview;
// the renderer's width pass still clamps it). gopher-lua's LState is not
// goroutine-safe, so all calls are serialized behind a mutex.
package lua

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/foldview/internal/renderer/fold"
)

// ErrNoHook indicates the script does not define a foldtext function.
var ErrNoHook = errors.New("lua: script defines no foldtext function")

// callTimeout bounds one hook invocation. A hook that runs away is
// disabled rather than allowed to stall rendering.
const callTimeout = 50 * time.Millisecond

// Hook is a loaded foldtext script.
type Hook struct {
	mu       sync.Mutex
	state    *lua.LState
	disabled bool
}

// LoadFile loads and checks a foldtext script from disk.
func LoadFile(path string) (*Hook, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lua: reading %s: %w", path, err)
	}
	return Load(string(src))
}

// Load compiles script source and verifies it defines foldtext.
func Load(src string) (*Hook, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	sandbox(L)

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua: running script: %w", err)
	}

	if _, ok := L.GetGlobal("foldtext").(*lua.LFunction); !ok {
		L.Close()
		return nil, ErrNoHook
	}
	return &Hook{state: L}, nil
}

// Close releases the Lua state.
func (h *Hook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != nil {
		h.state.Close()
		h.state = nil
	}
}

// Disabled reports whether the hook has been switched off after a failure.
func (h *Hook) Disabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disabled
}

// Foldtext invokes the hook once and interprets the result. At most one of
// suffix/chunks is populated. ok is false when the hook is disabled,
// errored, or returned something unusable.
func (h *Hook) Foldtext(line string, hidden int) (suffix string, chunks []fold.Chunk, ok bool) {
	v, ok := h.call(line, hidden)
	if !ok {
		return "", nil, false
	}
	switch rv := v.(type) {
	case lua.LString:
		return string(rv), nil, true
	case *lua.LTable:
		if cs := chunksFromTable(rv); len(cs) > 0 {
			return "", cs, true
		}
	}
	return "", nil, false
}

func chunksFromTable(tbl *lua.LTable) []fold.Chunk {
	var chunks []fold.Chunk
	tbl.ForEach(func(_, entry lua.LValue) {
		et, ok := entry.(*lua.LTable)
		if !ok {
			return
		}
		text, ok := et.RawGetString("text").(lua.LString)
		if !ok {
			return
		}
		tag := ""
		if lt, ok := et.RawGetString("tag").(lua.LString); ok {
			tag = string(lt)
		}
		chunks = append(chunks, fold.Chunk{Text: string(text), Tag: tag})
	})
	return chunks
}

// call runs foldtext(line, hidden) and returns the raw result.
func (h *Hook) call(line string, hidden int) (lua.LValue, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disabled || h.state == nil {
		return nil, false
	}

	L := h.state
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	L.SetContext(ctx)
	defer func() {
		cancel()
		L.RemoveContext()
	}()

	fn := L.GetGlobal("foldtext")
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(line), lua.LNumber(hidden)); err != nil {
		// A failing hook is disabled, not retried: rendering must not
		// pay for a broken script on every fold.
		h.disabled = true
		return nil, false
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, true
}

// sandbox loads only the safe parts of the Lua stdlib and strips loaders.
// No io, no os, no module loading from disk.
func sandbox(L *lua.LState) {
	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}
