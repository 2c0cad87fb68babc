package asset

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/render"
)

func newTable(t *testing.T) (*TextureTable, *gpu.Recorder) {
	t.Helper()
	rec := gpu.NewRecorder()
	ps, err := render.NewPipelineSet(rec, render.EngineShader(), zap.NewNop())
	require.NoError(t, err)
	table, err := NewTextureTable(rec, ps.TextureLayout(), gpu.FilterNearest, zap.NewNop())
	require.NoError(t, err)
	return table, rec
}

func TestHandleForIsStable(t *testing.T) {
	require.Equal(t, HandleFor("player.png"), HandleFor("player.png"))
	require.NotEqual(t, HandleFor("player.png"), HandleFor("enemy.png"))
	require.NotEqual(t, render.NoTexture, HandleFor(""))
}

func TestLoadResolvesBindGroup(t *testing.T) {
	table, rec := newTable(t)
	h, err := table.Load("checker", 2, 2, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, HandleFor("checker"), h)
	require.Equal(t, 1, rec.Count(gpu.OpWriteTexture))

	g, ok := table.BindGroup(h)
	require.True(t, ok)
	require.Len(t, g.Entries, 2)

	got, ok := table.Lookup("checker")
	require.True(t, ok)
	require.Equal(t, h, got)
	require.Equal(t, 1, table.Count())

	_, err = table.Load("checker", 2, 2, make([]byte, 16))
	require.ErrorIs(t, err, ErrTextureExists)
}

func TestLoadRejectsBadPixels(t *testing.T) {
	table, _ := newTable(t)
	_, err := table.Load("short", 2, 2, make([]byte, 15))
	require.ErrorIs(t, err, ErrBadPixels)
	_, err = table.Load("empty", 0, 4, nil)
	require.ErrorIs(t, err, ErrBadPixels)
	require.Zero(t, table.Count())
}

func TestUnloadFallsBackInRenderer(t *testing.T) {
	table, _ := newTable(t)
	h, err := table.LoadSolid("white", render.White)
	require.NoError(t, err)
	require.True(t, table.Unload(h))
	require.False(t, table.Unload(h))
	_, ok := table.BindGroup(h)
	require.False(t, ok)
}
