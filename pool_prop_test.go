package freelist

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPoolMatchesModel drives random insert/erase traffic against a shadow
// model and checks the pool's observable behavior after every step.
func TestPoolMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		p := New[int](capacity)
		model := make(map[Handle]int)
		var order []Handle   // live handles, stable draw order
		var retired []Handle // handles that must stay dead

		steps := rapid.IntRange(1, 400).Draw(t, "steps")
		next := 0
		for i := 0; i < steps; i++ {
			insert := p.Len() == 0 ||
				(p.Len() < capacity && rapid.Bool().Draw(t, "insert"))

			if insert {
				h := p.Insert(next)
				require.NotContains(t, model, h, "reissued a live handle")
				model[h] = next
				order = append(order, h)
				next++
			} else {
				n := rapid.IntRange(0, len(order)-1).Draw(t, "victim")
				h := order[n]
				p.Erase(h)
				delete(model, h)
				order[n] = order[len(order)-1]
				order = order[:len(order)-1]
				retired = append(retired, h)
			}

			require.Equal(t, len(model), p.Len())
			for h, want := range model {
				require.True(t, p.Contains(h))
				got, ok := p.Get(h)
				require.True(t, ok)
				require.Equal(t, want, *got)
			}
			for _, h := range retired {
				require.False(t, p.Contains(h), "retired handle %v resurrected", h)
			}
		}

		// Iteration yields each live handle exactly once.
		seen := make(map[Handle]bool)
		for h := range p.All() {
			require.False(t, seen[h])
			require.Contains(t, model, h)
			seen[h] = true
		}
		require.Len(t, seen, len(model))
	})
}

// TestCloneMatchesOriginal checks deep-copy independence under random churn.
func TestCloneMatchesOriginal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(t, "capacity")
		p := New[int](capacity)
		var order []Handle
		n := rapid.IntRange(0, capacity).Draw(t, "inserts")
		for i := 0; i < n; i++ {
			order = append(order, p.Insert(i))
		}

		c := p.Clone()
		for _, h := range order {
			c.Erase(h)
		}
		require.Equal(t, 0, c.Len())
		require.Equal(t, n, p.Len())
		for i, h := range order {
			require.True(t, p.Contains(h))
			require.Equal(t, i, *p.Lookup(h))
		}
	})
}
