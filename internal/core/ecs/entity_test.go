package ecs

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityPoolCreateFresh(t *testing.T) {
	p := NewEntityPool()
	e0 := p.Create()
	e1 := p.Create()

	require.Equal(t, uint32(0), e0.Index())
	require.Equal(t, uint32(0), e0.Generation())
	require.Equal(t, uint32(1), e1.Index())
	require.True(t, p.Alive(e0))
	require.True(t, p.Alive(e1))
	require.Equal(t, 2, p.Len())
}

func TestEntityPoolRecycleBumpsGeneration(t *testing.T) {
	p := NewEntityPool()
	old := p.Create()
	require.True(t, p.Destroy(old))
	require.False(t, p.Alive(old))

	reused := p.Create()
	require.Equal(t, old.Index(), reused.Index())
	require.Equal(t, old.Generation()+1, reused.Generation())
	require.True(t, p.Alive(reused))
	require.False(t, p.Alive(old), "stale handle must stay dead after recycle")
}

func TestEntityPoolDestroyStaleIsNoop(t *testing.T) {
	p := NewEntityPool()
	e := p.Create()
	require.True(t, p.Destroy(e))
	require.False(t, p.Destroy(e))

	reused := p.Create()
	require.False(t, p.Destroy(e), "stale destroy must not kill the recycled slot")
	require.True(t, p.Alive(reused))
	require.Equal(t, 1, p.Len())
}

func TestEntityPoolUnknownIndex(t *testing.T) {
	p := NewEntityPool()
	require.False(t, p.Alive(NewEntity(42, 0)))
	require.False(t, p.Destroy(NewEntity(42, 0)))
}

func TestEntityPoolStaleHandlesNeverRevive(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	p := NewEntityPool()
	var live []Entity
	var dead []Entity

	for step := 0; step < 5000; step++ {
		if len(live) == 0 || rng.IntN(3) > 0 {
			live = append(live, p.Create())
		} else {
			i := rng.IntN(len(live))
			e := live[i]
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			require.True(t, p.Destroy(e))
			dead = append(dead, e)
		}
		if step%97 == 0 {
			for _, e := range dead {
				require.False(t, p.Alive(e))
			}
			for _, e := range live {
				require.True(t, p.Alive(e))
			}
		}
	}
	require.Equal(t, len(live), p.Len())
}
