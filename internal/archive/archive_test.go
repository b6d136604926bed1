package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	run := &Run{
		Kind:          "price",
		Value:         8.53592506466286,
		Inputs:        map[string]float64{"forward": 110, "strike": 120},
		Sensitivities: map[string]float64{"forward": 0.433995720171781},
	}
	require.NoError(t, s.Save(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "price", got.Kind)
	assert.Equal(t, run.Value, got.Value)
	assert.Equal(t, run.Inputs, got.Inputs)
	assert.Equal(t, run.Sensitivities, got.Sensitivities)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_GetNotFound(t *testing.T) {
	_, err := openStore(t).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	run := &Run{Kind: "risk"}
	require.NoError(t, s.Save(ctx, run))
	assert.Error(t, s.Save(ctx, &Run{ID: run.ID, Kind: "risk"}))
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, &Run{
			Kind:      "risk",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Value:     float64(i),
		}))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 4.0, all[0].Value, "newest first")

	top, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, []float64{4, 3}, []float64{top[0].Value, top[1].Value})
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	run := &Run{Kind: "calibrate", Value: 0.2}
	require.NoError(t, s.Save(ctx, run))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.2, got.Value)
	assert.Nil(t, got.Inputs)
}
