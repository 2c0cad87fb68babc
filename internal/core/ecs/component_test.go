package ecs

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type velocity struct{ X, Y float32 }
type health struct{ HP int }

func TestStoreAddGet(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()

	require.NoError(t, Add(w, e, position{X: 1, Y: 2}))
	p, ok := Get[position](w, e)
	require.True(t, ok)
	require.Equal(t, position{X: 1, Y: 2}, *p)

	p.X = 10
	p2, _ := Get[position](w, e)
	require.Equal(t, float32(10), p2.X, "Get returns a mutable pointer")
}

func TestStoreAddDuplicateDoesNotOverwrite(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, health{HP: 5}))

	err := Add(w, e, health{HP: 99})
	require.ErrorIs(t, err, ErrDuplicateComponent)
	h, _ := Get[health](w, e)
	require.Equal(t, 5, h.HP)

	require.NoError(t, Set(w, e, health{HP: 99}))
	h, _ = Get[health](w, e)
	require.Equal(t, 99, h.HP)
}

func TestStoreStaleEntity(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, health{HP: 1}))
	require.NoError(t, w.DestroyEntity(e))

	require.ErrorIs(t, Add(w, e, health{HP: 2}), ErrStaleEntity)
	_, err := Remove[health](w, e)
	require.ErrorIs(t, err, ErrStaleEntity)
	_, ok := Get[health](w, e)
	require.False(t, ok)
	require.False(t, Has[health](w, e))

	reused := w.CreateEntity()
	require.Equal(t, e.Index(), reused.Index())
	_, ok = Get[health](w, reused)
	require.False(t, ok, "recycled index must not inherit components")
}

func TestStoreRemoveSwapsLastIntoHole(t *testing.T) {
	w := NewWorld()
	s := Register[health](w)
	a, b, c := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()
	require.NoError(t, s.Add(a, health{1}))
	require.NoError(t, s.Add(b, health{2}))
	require.NoError(t, s.Add(c, health{3}))

	v, err := s.Remove(a)
	require.NoError(t, err)
	require.Equal(t, 1, v.HP)
	require.Equal(t, []Entity{c, b}, s.Entities())

	hc, ok := s.Get(c)
	require.True(t, ok)
	require.Equal(t, 3, hc.HP)

	_, err = s.Remove(a)
	require.ErrorIs(t, err, ErrComponentNotFound)
}

func TestStoreIterationMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	w := NewWorld()
	s := Register[health](w)
	ref := map[Entity]int{}
	var pool []Entity
	for i := 0; i < 64; i++ {
		pool = append(pool, w.CreateEntity())
	}

	for step := 0; step < 4000; step++ {
		e := pool[rng.IntN(len(pool))]
		if _, held := ref[e]; held && rng.IntN(2) == 0 {
			v, err := s.Remove(e)
			require.NoError(t, err)
			require.Equal(t, ref[e], v.HP)
			delete(ref, e)
		} else if !held {
			hp := rng.IntN(1000)
			require.NoError(t, s.Add(e, health{hp}))
			ref[e] = hp
		}

		if step%50 == 0 {
			seen := map[Entity]int{}
			for e, h := range s.All() {
				_, dup := seen[e]
				require.False(t, dup, "duplicate entity in iteration")
				seen[e] = h.HP
			}
			require.Equal(t, ref, seen)
			require.Equal(t, len(ref), s.Len())
		}
	}
}

func TestStoreRejectsStructuralMutationDuringIteration(t *testing.T) {
	w := NewWorld()
	s := Register[health](w)
	a, b := w.CreateEntity(), w.CreateEntity()
	require.NoError(t, s.Add(a, health{1}))

	for e := range s.All() {
		require.ErrorIs(t, s.Add(b, health{2}), ErrStructuralMutation)
		_, err := s.Remove(e)
		require.ErrorIs(t, err, ErrStructuralMutation)
		require.ErrorIs(t, w.DestroyEntity(e), ErrStructuralMutation)
		require.NoError(t, s.Set(e, health{7}), "in-place overwrite is not structural")
	}
	require.False(t, s.Iterating())
	require.NoError(t, s.Add(b, health{2}))
	h, _ := s.Get(a)
	require.Equal(t, 7, h.HP)
}

func TestStoreEarlyBreakReleasesGuard(t *testing.T) {
	w := NewWorld()
	s := Register[health](w)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(w.CreateEntity(), health{i}))
	}
	for range s.All() {
		break
	}
	require.False(t, s.Iterating())
}

func TestStoreClear(t *testing.T) {
	w := NewWorld()
	s := Register[health](w)
	e := w.CreateEntity()
	require.NoError(t, s.Add(e, health{1}))
	require.NoError(t, s.Clear())
	require.Equal(t, 0, s.Len())
	require.False(t, s.Has(e))
	require.NoError(t, s.Add(e, health{2}))
}

func TestStandaloneStoreWithoutPool(t *testing.T) {
	s := NewStore[position](nil)
	e := NewEntity(3, 9)
	require.NoError(t, s.Add(e, position{1, 1}))
	require.True(t, s.Has(e))
	require.False(t, s.Has(NewEntity(3, 8)), "generation must match")
	require.Equal(t, "ecs.position", s.Name())
}
