package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMLPValidation(t *testing.T) {
	_, err := NewMLP("tanh", 0, []int{4}, 1, 1)
	assert.Error(t, err, "zero inputs")

	_, err = NewMLP("tanh", 2, []int{4}, 0, 1)
	assert.Error(t, err, "zero outputs")

	_, err = NewMLP("tanh", 2, []int{4, -1}, 1, 1)
	assert.Error(t, err, "negative hidden width")

	_, err = NewMLP("swish", 2, []int{4}, 1, 1)
	assert.Error(t, err, "unregistered activation")
}

func TestMLPShapes(t *testing.T) {
	m, err := NewMLP("leaky_relu", 2, []int{8, 4}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Inputs())
	assert.Equal(t, 1, m.Outputs())
	assert.Equal(t, "leaky_relu", m.Activation())

	out, err := m.Forward([]float64{0.5, -0.5})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.False(t, math.IsNaN(out[0]))

	_, err = m.Forward([]float64{1, 2, 3})
	assert.Error(t, err, "wrong input width")
}

func TestMLPDeterministicPerSeed(t *testing.T) {
	x := []float64{0.25, -1, 0.5}

	a, err := NewMLP("tanh", 3, []int{5}, 2, 7)
	require.NoError(t, err)
	b, err := NewMLP("tanh", 3, []int{5}, 2, 7)
	require.NoError(t, err)
	c, err := NewMLP("tanh", 3, []int{5}, 2, 8)
	require.NoError(t, err)

	outA, err := a.Forward(x)
	require.NoError(t, err)
	outB, err := b.Forward(x)
	require.NoError(t, err)
	outC, err := c.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, outA, outB, "same seed, same weights")
	assert.NotEqual(t, outA, outC, "different seed, different weights")
}

func TestMLPNoHiddenLayers(t *testing.T) {
	m, err := NewMLP("tanh", 2, nil, 3, 1)
	require.NoError(t, err)

	out, err := m.Forward([]float64{1, -1})
	require.NoError(t, err)
	assert.Len(t, out, 3)

	_, err = m.Hidden([]float64{1, -1})
	assert.Error(t, err, "no hidden activity to expose")
}

func TestMLPHidden(t *testing.T) {
	m, err := NewMLP("tanh", 2, []int{6, 3}, 1, 2)
	require.NoError(t, err)

	h, err := m.Hidden([]float64{0.1, 0.9})
	require.NoError(t, err)
	assert.Len(t, h, 3, "last hidden layer width")
	for _, v := range h {
		assert.LessOrEqual(t, math.Abs(v), 1.0, "tanh activity is bounded")
	}

	batch, err := m.HiddenBatch([][]float64{{0.1, 0.9}, {0.2, 0.8}})
	require.NoError(t, err)
	rows, cols := batch.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	_, err = m.HiddenBatch(nil)
	assert.Error(t, err, "empty batch")
}
