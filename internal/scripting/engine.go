package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/freelist"
)

// Engine wraps a single gopher-lua VM wired to one pool instance. Scenario
// scripts drive operation interleavings (slot-reuse storms, erase-order
// repros) against the pool without recompiling; a shadow model backs the
// check() builtin. Single-goroutine access only.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	pool  *freelist.Pool[float64]
	model map[freelist.Handle]float64
}

// NewEngine creates a Lua engine driving a pool of the given capacity.
func NewEngine(capacity int, log *zap.Logger) (*Engine, error) {
	if capacity < 0 || capacity >= 1<<16 {
		return nil, fmt.Errorf("scenario capacity %d out of range [0, 65536)", capacity)
	}

	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:    vm,
		log:   log,
		pool:  freelist.New[float64](capacity),
		model: make(map[freelist.Handle]float64),
	}
	e.register()
	return e, nil
}

// register installs the pool API as Lua globals. Handles cross the boundary
// as plain numbers; a 32-bit handle is exact in a Lua number.
func (e *Engine) register() {
	fns := map[string]lua.LGFunction{
		"insert":   e.luaInsert,
		"erase":    e.luaErase,
		"contains": e.luaContains,
		"lookup":   e.luaLookup,
		"size":     e.luaSize,
		"capacity": e.luaCapacity,
		"check":    e.luaCheck,
		"reset":    e.luaReset,
	}
	for name, fn := range fns {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// RunDir executes every .lua file in dir, in directory order.
func (e *Engine) RunDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read scenario dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.RunFile(path); err != nil {
			return err
		}
	}
	return nil
}

// RunFile executes a single scenario file.
func (e *Engine) RunFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("scenario %s: %w", path, err)
	}
	e.log.Info("scenario passed",
		zap.String("file", path),
		zap.Int("live", e.pool.Len()))
	return nil
}

// RunString executes scenario source directly.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) luaInsert(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	if e.pool.Len() == e.pool.Cap() {
		L.RaiseError("insert: pool is full (capacity %d)", e.pool.Cap())
	}
	h := e.pool.Insert(v)
	e.model[h] = v
	L.Push(lua.LNumber(h))
	return 1
}

func (e *Engine) luaErase(L *lua.LState) int {
	h := freelist.Handle(uint32(L.CheckNumber(1)))
	if !e.pool.Contains(h) {
		L.RaiseError("erase: %s is stale or unknown", h)
	}
	e.pool.Erase(h)
	delete(e.model, h)
	return 0
}

func (e *Engine) luaContains(L *lua.LState) int {
	h := freelist.Handle(uint32(L.CheckNumber(1)))
	L.Push(lua.LBool(e.pool.Contains(h)))
	return 1
}

func (e *Engine) luaLookup(L *lua.LState) int {
	h := freelist.Handle(uint32(L.CheckNumber(1)))
	v, ok := e.pool.Get(h)
	if !ok {
		L.RaiseError("lookup: %s is stale or unknown", h)
	}
	L.Push(lua.LNumber(*v))
	return 1
}

func (e *Engine) luaSize(L *lua.LState) int {
	L.Push(lua.LNumber(e.pool.Len()))
	return 1
}

func (e *Engine) luaCapacity(L *lua.LState) int {
	L.Push(lua.LNumber(e.pool.Cap()))
	return 1
}

// luaCheck verifies pool state against the shadow model and raises a Lua
// error on the first violation.
func (e *Engine) luaCheck(L *lua.LState) int {
	if err := e.verify(); err != nil {
		L.RaiseError("check: %s", err)
	}
	return 0
}

// luaReset replaces the pool with a fresh one of the same capacity, so one
// scenario file can run several independent cases.
func (e *Engine) luaReset(L *lua.LState) int {
	e.pool = freelist.New[float64](e.pool.Cap())
	e.model = make(map[freelist.Handle]float64)
	return 0
}

func (e *Engine) verify() error {
	if e.pool.Len() != len(e.model) {
		return fmt.Errorf("occupancy %d, model has %d", e.pool.Len(), len(e.model))
	}
	seen := make(map[freelist.Handle]bool, len(e.model))
	for h := range e.pool.All() {
		if seen[h] {
			return fmt.Errorf("iteration yielded %s twice", h)
		}
		seen[h] = true
		want, ok := e.model[h]
		if !ok {
			return fmt.Errorf("iteration yielded unknown %s", h)
		}
		if got := *e.pool.Lookup(h); got != want {
			return fmt.Errorf("value mismatch for %s: pool %v, model %v", h, got, want)
		}
	}
	if len(seen) != len(e.model) {
		return fmt.Errorf("iteration yielded %d handles, want %d", len(seen), len(e.model))
	}
	return nil
}
