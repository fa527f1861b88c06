package model

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.Equal(t, Untrained, s.Get())
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("FTRL", "Predict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotTrained))

	s.BeginTraining()
	assert.Equal(t, "training", s.Get().String())
	s.SetDimensions(3, 100)
	s.SetFitted()
	assert.NoError(t, s.RequireFitted("FTRL", "Predict"))
	nf, ns := s.GetDimensions()
	assert.Equal(t, 3, nf)
	assert.Equal(t, 100, ns)

	s.Reset()
	assert.Equal(t, Untrained, s.Get())
	nf, ns = s.GetDimensions()
	assert.Zero(t, nf)
	assert.Zero(t, ns)
}

func TestBatches(t *testing.T) {
	X := frame.MustNew(frame.Range("x", 7))
	y := frame.MustNew(frame.Bools("y", true, false, true, false, true, false, true))

	var sizes []int
	for b := range Batches(context.Background(), X, y, 3) {
		assert.Equal(t, b.X.NRows(), b.Y.NRows())
		sizes = append(sizes, b.X.NRows())
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)
}

func TestBatchesCancel(t *testing.T) {
	X := frame.MustNew(frame.Range("x", 100))
	y := frame.MustNew(frame.Range("y", 100))

	ctx, cancel := context.WithCancel(context.Background())
	ch := Batches(ctx, X, y, 1)
	<-ch
	cancel()
	for range ch {
	}
}

type gobState struct {
	Z []float64
	N []float64
}

func TestGobHelpers(t *testing.T) {
	in := gobState{Z: []float64{-0.5, 1}, N: []float64{0.25, 2}}

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(in, &buf))
	var out gobState
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.Equal(t, in, out)

	path := filepath.Join(t.TempDir(), "state.gob")
	require.NoError(t, SaveModel(in, path))
	var fromFile gobState
	require.NoError(t, LoadModel(&fromFile, path))
	assert.Equal(t, in, fromFile)

	assert.Error(t, LoadModel(&fromFile, filepath.Join(t.TempDir(), "missing.gob")))
}
