package nn

import "gonum.org/v1/gonum/mat"

// RSM returns the representational similarity matrix h * hᵀ of an activity
// matrix with one row per stimulus and one column per unit. Entry (i, j) is
// the dot product of the responses to stimuli i and j, so similar inputs
// produce similar rows and large diagonal entries.
func RSM(h mat.Matrix) *mat.Dense {
	n, _ := h.Dims()
	rsm := mat.NewDense(n, n, nil)
	rsm.Mul(h, h.T())
	return rsm
}
