package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, capacity int) *Engine {
	t.Helper()
	e, err := NewEngine(capacity, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestScenarioBasicOps(t *testing.T) {
	e := newTestEngine(t, 4)
	err := e.RunString(`
		local a = insert(1)
		local b = insert(2)
		assert(size() == 2)
		assert(capacity() == 4)
		assert(contains(a))
		assert(lookup(a) == 1)
		erase(a)
		assert(not contains(a))
		assert(contains(b))
		assert(lookup(b) == 2)
		check()
	`)
	require.NoError(t, err)
}

func TestScenarioSlotReuseStorm(t *testing.T) {
	e := newTestEngine(t, 1)
	err := e.RunString(`
		local old = insert(100)
		erase(old)
		for i = 1, 1000 do
			local h = insert(i)
			assert(h ~= old, "reissued a retired handle")
			assert(not contains(old))
			erase(h)
			check()
		end
	`)
	require.NoError(t, err)
}

func TestScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"stale erase", `local h = insert(1) erase(h) erase(h)`},
		{"stale lookup", `local h = insert(1) erase(h) lookup(h)`},
		{"overflow", `insert(1) insert(2) insert(3)`},
		{"syntax error", `this is not lua`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, 2)
			assert.Error(t, e.RunString(tt.src))
		})
	}
}

func TestScenarioReset(t *testing.T) {
	e := newTestEngine(t, 2)
	err := e.RunString(`
		insert(1)
		insert(2)
		reset()
		assert(size() == 0)
		insert(3)
		check()
	`)
	require.NoError(t, err)
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	script := []byte(`
		local h = insert(5)
		assert(lookup(h) == 5)
		check()
	`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), script, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	e := newTestEngine(t, 4)
	require.NoError(t, e.RunDir(dir))

	assert.Error(t, e.RunDir(filepath.Join(dir, "missing")))
}

func TestNewEngineRejectsBadCapacity(t *testing.T) {
	_, err := NewEngine(1<<16, zap.NewNop())
	assert.Error(t, err)
	_, err = NewEngine(-1, zap.NewNop())
	assert.Error(t, err)
}
