package qsim

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"
)

// MaxGateArity caps the number of lines a single gate may act on. A gate of
// arity k carries a 4^k entry matrix, so this is a memory bound, not a
// property of the applicator.
const MaxGateArity = 10

// Matrix is a square, row-major complex matrix whose dimension is a power
// of two.
type Matrix struct {
	dim  int
	data []complex128
}

// NewMatrix copies rows into a Matrix. Rows must be square with a power of
// two dimension.
func NewMatrix(rows [][]complex128) (Matrix, error) {
	dim := len(rows)
	if dim == 0 || dim&(dim-1) != 0 {
		return Matrix{}, fmt.Errorf("%w: dimension %d is not a power of two", ErrArityMismatch, dim)
	}
	if bits.TrailingZeros(uint(dim)) > MaxGateArity {
		return Matrix{}, fmt.Errorf("%w: arity %d exceeds %d", ErrArityMismatch, bits.TrailingZeros(uint(dim)), MaxGateArity)
	}

	m := Matrix{dim: dim, data: make([]complex128, dim*dim)}
	for i, row := range rows {
		if len(row) != dim {
			return Matrix{}, fmt.Errorf("%w: row %d has %d entries, want %d", ErrArityMismatch, i, len(row), dim)
		}
		copy(m.data[i*dim:], row)
	}
	return m, nil
}

func mustMatrix(rows [][]complex128) Matrix {
	m, err := NewMatrix(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the 2^k dimensional identity.
func Identity(k int) Matrix {
	dim := 1 << k
	m := Matrix{dim: dim, data: make([]complex128, dim*dim)}
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return m
}

func (m Matrix) Dim() int { return m.dim }

// Arity is the number of qubit lines the matrix acts on.
func (m Matrix) Arity() int {
	if m.dim == 0 {
		return 0
	}
	return bits.TrailingZeros(uint(m.dim))
}

func (m Matrix) At(i, j int) complex128 {
	return m.data[i*m.dim+j]
}

// Rows returns a copy of the entries.
func (m Matrix) Rows() [][]complex128 {
	rows := make([][]complex128, m.dim)
	for i := range rows {
		rows[i] = append([]complex128(nil), m.data[i*m.dim:(i+1)*m.dim]...)
	}
	return rows
}

func (m Matrix) Mul(o Matrix) Matrix {
	n := m.dim
	out := Matrix{dim: n, data: make([]complex128, n*n)}
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += a * o.data[k*n+j]
			}
		}
	}
	return out
}

// Adjoint is the conjugate transpose.
func (m Matrix) Adjoint() Matrix {
	n := m.dim
	out := Matrix{dim: n, data: make([]complex128, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[j*n+i] = cmplx.Conj(m.data[i*n+j])
		}
	}
	return out
}

// Kron returns m ⊗ o. The lines of m become the most significant bits of
// the product's index.
func (m Matrix) Kron(o Matrix) Matrix {
	n := m.dim * o.dim
	out := Matrix{dim: n, data: make([]complex128, n*n)}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			a := m.data[i*m.dim+j]
			if a == 0 {
				continue
			}
			for k := 0; k < o.dim; k++ {
				for l := 0; l < o.dim; l++ {
					out.data[(i*o.dim+k)*n+j*o.dim+l] = a * o.data[k*o.dim+l]
				}
			}
		}
	}
	return out
}

// IsUnitary reports whether m·m† is the identity within tol per entry.
func (m Matrix) IsUnitary(tol float64) bool {
	if m.dim == 0 {
		return false
	}
	return m.Mul(m.Adjoint()).Equal(Identity(m.Arity()), tol)
}

func (m Matrix) IsDiagonal() bool {
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			if i != j && m.data[i*m.dim+j] != 0 {
				return false
			}
		}
	}
	return true
}

// IsIdentity is exact; a near-identity matrix is still applied.
func (m Matrix) IsIdentity() bool {
	if !m.IsDiagonal() {
		return false
	}
	for i := 0; i < m.dim; i++ {
		if m.data[i*m.dim+i] != 1 {
			return false
		}
	}
	return true
}

func (m Matrix) Equal(o Matrix, tol float64) bool {
	if m.dim != o.dim {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

func (m Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.dim; i++ {
		b.WriteByte('[')
		for j := 0; j < m.dim; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			v := m.data[i*m.dim+j]
			fmt.Fprintf(&b, "%.4g%+.4gi", cleanZero(real(v)), cleanZero(imag(v)))
		}
		b.WriteString("]\n")
	}
	return b.String()
}

func cleanZero(f float64) float64 {
	if math.Abs(f) < 1e-15 {
		return 0
	}
	return f
}
