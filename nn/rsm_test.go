package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRSM(t *testing.T) {
	h := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 2,
		1, 1,
	})

	rsm := RSM(h)
	rows, cols := rsm.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)

	want := []float64{
		1, 0, 1,
		0, 4, 2,
		1, 2, 2,
	}
	assert.InDeltaSlice(t, want, rsm.RawMatrix().Data, 1e-12)

	// Symmetric, with squared norms on the diagonal.
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, rsm.At(i, j), rsm.At(j, i))
		}
	}
}

func TestRSMFromHiddenActivity(t *testing.T) {
	m, err := NewMLP("tanh", 4, []int{6}, 2, 3)
	require.NoError(t, err)

	batch := [][]float64{
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 1},
	}
	h, err := m.HiddenBatch(batch)
	require.NoError(t, err)

	rsm := RSM(h)
	// Identical stimuli have identical similarity rows.
	assert.InDelta(t, rsm.At(0, 0), rsm.At(0, 1), 1e-12)
	assert.InDelta(t, rsm.At(0, 0), rsm.At(1, 1), 1e-12)
}
