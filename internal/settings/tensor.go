package settings

import "fmt"

// Tensor is a canonical 3x3 material property tensor.
type Tensor [3][3]float64

// ElasticTensor is a full rank-4 (3,3,3,3) elastic stiffness tensor.
type ElasticTensor [3][3][3][3]float64

// voigtIndex maps a pair of Cartesian indices to its Voigt component:
// xx yy zz yz xz xy -> 0..5.
var voigtIndex = [3][3]int{
	{0, 5, 4},
	{5, 1, 3},
	{4, 3, 2},
}

// CastTensor canonicalizes a tensor-like setting into a 3x3 matrix. A scalar
// becomes scalar * identity, a 3-vector becomes its diagonal matrix, and a
// 3x3 matrix passes through unchanged.
func CastTensor(value any) (Tensor, error) {
	if scalar, ok := asFloat(value); ok {
		var t Tensor
		for i := 0; i < 3; i++ {
			t[i][i] = scalar
		}
		return t, nil
	}

	if t, ok := value.(Tensor); ok {
		return t, nil
	}

	if vector, ok := asFloatSlice(value); ok && isFlatNumeric(value) {
		if len(vector) != 3 {
			return Tensor{}, fmt.Errorf("%w: vector of length %d", ErrUnsupportedTensorShape, len(vector))
		}
		var t Tensor
		for i, v := range vector {
			t[i][i] = v
		}
		return t, nil
	}

	if rows, ok := asMatrix(value); ok {
		t, ok := asTensor3(rows)
		if !ok {
			return Tensor{}, fmt.Errorf("%w: matrix of shape (%d, %d)", ErrUnsupportedTensorShape, len(rows), rowWidth(rows))
		}
		return t, nil
	}

	return Tensor{}, fmt.Errorf("%w: %T", ErrUnsupportedTensorShape, value)
}

// CastElasticTensor canonicalizes an elastic constant into a full rank-4
// tensor. A scalar c builds the Voigt matrix c*I6 with the shear diagonal
// halved, then expands it; a 6x6 matrix is expanded via the Voigt mapping; a
// (3,3,3,3) tensor passes through unchanged.
func CastElasticTensor(value any) (ElasticTensor, error) {
	if scalar, ok := asFloat(value); ok {
		var voigt [6][6]float64
		for i := 0; i < 6; i++ {
			voigt[i][i] = scalar
			if i >= 3 {
				voigt[i][i] /= 2
			}
		}
		return fromVoigt(voigt), nil
	}

	if t, ok := value.(ElasticTensor); ok {
		return t, nil
	}

	if rows, ok := asMatrix(value); ok {
		if len(rows) == 6 && rowWidth(rows) == 6 && uniformWidth(rows) {
			var voigt [6][6]float64
			for i, row := range rows {
				copy(voigt[i][:], row)
			}
			return fromVoigt(voigt), nil
		}
		return ElasticTensor{}, fmt.Errorf("%w: matrix of shape (%d, %d)", ErrUnsupportedElasticTensorShape, len(rows), rowWidth(rows))
	}

	if t, ok := asRank4(value); ok {
		return t, nil
	}

	return ElasticTensor{}, fmt.Errorf("%w: %T", ErrUnsupportedElasticTensorShape, value)
}

// fromVoigt expands a 6x6 Voigt stiffness matrix to the full rank-4 tensor.
// Stiffness components carry no shear scale factors, so the expansion is a
// pure index mapping.
func fromVoigt(voigt [6][6]float64) ElasticTensor {
	var t ElasticTensor
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					t[i][j][k][l] = voigt[voigtIndex[i][j]][voigtIndex[k][l]]
				}
			}
		}
	}
	return t
}

// isFlatNumeric reports whether value is a sequence of plain numbers rather
// than a sequence of rows.
func isFlatNumeric(value any) bool {
	items, ok := value.([]any)
	if !ok {
		// Concrete numeric slice kinds are flat by construction.
		switch value.(type) {
		case []float64, []int, []int64:
			return true
		}
		return false
	}
	for _, item := range items {
		if _, ok := asFloat(item); !ok {
			return false
		}
	}
	return len(items) > 0
}

// asMatrix converts a decoded nested sequence into rows of float64. It
// returns false for flat sequences and deeper nestings.
func asMatrix(value any) ([][]float64, bool) {
	switch v := value.(type) {
	case [][]float64:
		return v, true
	case []any:
		if len(v) == 0 || isFlatNumeric(value) {
			return nil, false
		}
		rows := make([][]float64, len(v))
		for i, item := range v {
			row, ok := asFloatSlice(item)
			if !ok {
				return nil, false
			}
			rows[i] = row
		}
		return rows, true
	default:
		return nil, false
	}
}

func asTensor3(rows [][]float64) (Tensor, bool) {
	if len(rows) != 3 {
		return Tensor{}, false
	}
	var t Tensor
	for i, row := range rows {
		if len(row) != 3 {
			return Tensor{}, false
		}
		copy(t[i][:], row)
	}
	return t, true
}

func rowWidth(rows [][]float64) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

func uniformWidth(rows [][]float64) bool {
	for _, row := range rows {
		if len(row) != len(rows[0]) {
			return false
		}
	}
	return true
}

// asRank4 converts a 4-deep nested sequence of shape (3,3,3,3) into an
// ElasticTensor.
func asRank4(value any) (ElasticTensor, bool) {
	outer, ok := value.([]any)
	if !ok || len(outer) != 3 {
		return ElasticTensor{}, false
	}
	var t ElasticTensor
	for i, level1 := range outer {
		inner1, ok := level1.([]any)
		if !ok || len(inner1) != 3 {
			return ElasticTensor{}, false
		}
		for j, level2 := range inner1 {
			rows, ok := asMatrix(level2)
			if !ok {
				return ElasticTensor{}, false
			}
			block, ok := asTensor3(rows)
			if !ok {
				return ElasticTensor{}, false
			}
			t[i][j] = [3][3]float64(block)
		}
	}
	return t, true
}
