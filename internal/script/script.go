// Package script runs Lua drawing scripts against a diagram store.
//
// A script sees a small set of globals that map onto store operations:
//
//	component(type, x, y [, rotation [, label [, value]]]) -> id
//	wire(x1, y1, x2, y2)                                   -> id
//	text(x, y, s)                                          -> id
//	layer(name [, color])                                  -> id (creates or activates)
//	grid(size)
//
// The whole run is one transaction, so a successful script is a single
// undo step and a failing one leaves the store untouched.
package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// DefaultTimeout bounds a script run.
const DefaultTimeout = 5 * time.Second

// Result summarises what a run added.
type Result struct {
	Components int
	Wires      int
	Texts      int
	Layers     int
}

// Runner executes scripts.
type Runner struct {
	timeout time.Duration
	out     io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the time budget for one run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOutput sets where print writes. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{timeout: DefaultTimeout, out: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunFile runs the script at path.
func (r *Runner) RunFile(ctx context.Context, s *diagram.Store, path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, s, path, string(src))
}

// Run executes src against s. On any error the store is rolled back.
func (r *Runner) Run(ctx context.Context, s *diagram.Store, name, src string) (res Result, err error) {
	tx, err := s.Begin()
	if err != nil {
		return Result{}, err
	}
	settings := s.Settings()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	L := newState(r.out)
	defer L.Close()
	L.SetContext(ctx)

	b := &binding{store: s}
	b.install(L)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("script %s: lua panic: %v", name, rec)
		}
		if err != nil {
			tx.Rollback()
			s.SetSettings(settings)
			diagram.Logger().Warn("script rolled back", "script", name, "err", err)
			res = Result{}
			return
		}
		err = tx.Commit()
		res = b.result
	}()

	fn, err := L.LoadString(src)
	if err != nil {
		return Result{}, fmt.Errorf("script %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("script %s: %w", name, ctxErr)
		}
		return Result{}, fmt.Errorf("script %s: %w", name, err)
	}
	return Result{}, nil
}

// newState opens a Lua state with only the base, table, string and math
// libraries, and without the loaders.
func newState(out io.Writer) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		for i := 1; i <= n; i++ {
			if i > 1 {
				io.WriteString(out, "\t")
			}
			io.WriteString(out, L.ToStringMeta(L.Get(i)).String())
		}
		io.WriteString(out, "\n")
		return 0
	}))
	return L
}

// binding exposes store operations as Lua globals.
type binding struct {
	store  *diagram.Store
	result Result
}

func (b *binding) install(L *lua.LState) {
	L.SetGlobal("component", L.NewFunction(b.component))
	L.SetGlobal("wire", L.NewFunction(b.wire))
	L.SetGlobal("text", L.NewFunction(b.text))
	L.SetGlobal("layer", L.NewFunction(b.layer))
	L.SetGlobal("grid", L.NewFunction(b.grid))
}

func point(L *lua.LState, n int) diagram.Point {
	return diagram.Pt(float64(L.CheckNumber(n)), float64(L.CheckNumber(n+1)))
}

func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}

func (b *binding) component(L *lua.LState) int {
	typ := L.CheckString(1)
	pos := point(L, 2)
	props := diagram.ComponentProps{
		Rotation: float64(L.OptNumber(4, 0)),
		Label:    L.OptString(5, ""),
		Value:    L.OptString(6, ""),
	}
	e, err := b.store.AddComponent(typ, pos, props)
	if err != nil {
		raise(L, err)
		return 0
	}
	b.result.Components++
	L.Push(lua.LString(e.ID))
	return 1
}

func (b *binding) wire(L *lua.LState) int {
	e, err := b.store.AddWire(point(L, 1), point(L, 3))
	if err != nil {
		raise(L, err)
		return 0
	}
	b.result.Wires++
	L.Push(lua.LString(e.ID))
	return 1
}

func (b *binding) text(L *lua.LState) int {
	pos := point(L, 1)
	e, err := b.store.AddText(pos, L.CheckString(3))
	if err != nil {
		raise(L, err)
		return 0
	}
	b.result.Texts++
	L.Push(lua.LString(e.ID))
	return 1
}

func (b *binding) layer(L *lua.LState) int {
	name := L.CheckString(1)
	color := L.OptString(2, "")
	for _, l := range b.store.Layers() {
		if l.Name == name {
			b.store.SetActiveLayer(l.ID)
			if color != "" && color != l.Color {
				if err := b.store.SetLayerColor(l.ID, color); err != nil {
					raise(L, err)
					return 0
				}
			}
			L.Push(lua.LString(l.ID))
			return 1
		}
	}
	l := b.store.AddLayer(name, color)
	b.store.SetActiveLayer(l.ID)
	b.result.Layers++
	L.Push(lua.LString(l.ID))
	return 1
}

func (b *binding) grid(L *lua.LState) int {
	size := float64(L.CheckNumber(1))
	if size <= 0 {
		L.ArgError(1, "grid size must be positive")
		return 0
	}
	st := b.store.Settings()
	st.GridSize = size
	b.store.SetSettings(st)
	return 0
}
