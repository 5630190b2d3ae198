package qsim

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Kind tags the family a Gate belongs to.
type Kind uint8

const (
	KindCustom Kind = iota
	KindI
	KindH
	KindX
	KindY
	KindZ
	KindS
	KindSdg
	KindT
	KindTdg
	KindRX
	KindRY
	KindRZ
	KindU1
	KindU2
	KindU3
	KindSwap
)

var kindNames = map[Kind]string{
	KindCustom: "custom",
	KindI:      "I",
	KindH:      "H",
	KindX:      "X",
	KindY:      "Y",
	KindZ:      "Z",
	KindS:      "S",
	KindSdg:    "Sdg",
	KindT:      "T",
	KindTdg:    "Tdg",
	KindRX:     "RX",
	KindRY:     "RY",
	KindRZ:     "RZ",
	KindU1:     "U1",
	KindU2:     "U2",
	KindU3:     "U3",
	KindSwap:   "SWAP",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

/*
Gate is a unitary acting on a fixed number of qubit lines.

A Gate is a plain value: a family tag with its parameters, an optional number
of control lines, and the base matrix the family resolves to. The applicator
switches on the resolved matrix shape rather than calling through an
interface, so the inner loop stays free of dynamic dispatch.

Control lines always come first in a target list. A gate with c controls and
a k-line base matrix has arity c+k and only acts where all c control bits
are 1.
*/
type Gate struct {
	kind     Kind
	name     string
	params   []float64
	controls int
	base     Matrix
}

// Custom wraps a caller supplied matrix. The matrix is checked for
// unitarity here, never at application time.
func Custom(name string, m Matrix, tol float64) (Gate, error) {
	if m.dim == 0 {
		return Gate{}, fmt.Errorf("%w: empty matrix", ErrArityMismatch)
	}
	if tol <= 0 {
		tol = NewConfig().Tolerance
	}
	if !m.IsUnitary(tol) {
		return Gate{}, fmt.Errorf("%w: %s", ErrNonUnitaryGate, name)
	}
	return Gate{kind: KindCustom, name: name, base: m}, nil
}

// Controlled adds n control lines in front of g's targets.
func Controlled(g Gate, n int) Gate {
	if n < 0 {
		n = 0
	}
	c := g
	c.controls = g.controls + n
	c.name = strings.Repeat("C", n) + g.name
	return c
}

// Kron combines two gates acting on disjoint lines into one; a's lines come
// first in the target list.
func Kron(a, b Gate) Gate {
	return Gate{
		kind: KindCustom,
		name: a.name + "⊗" + b.name,
		base: a.Matrix().Kron(b.Matrix()),
	}
}

func named(kind Kind, params ...float64) Gate {
	return Gate{
		kind:   kind,
		name:   kind.String(),
		params: params,
		base:   resolve(kind, params),
	}
}

func I() Gate   { return named(KindI) }
func H() Gate   { return named(KindH) }
func X() Gate   { return named(KindX) }
func Y() Gate   { return named(KindY) }
func Z() Gate   { return named(KindZ) }
func S() Gate   { return named(KindS) }
func Sdg() Gate { return named(KindSdg) }
func T() Gate   { return named(KindT) }
func Tdg() Gate { return named(KindTdg) }

// Swap exchanges the state of two lines.
func Swap() Gate { return named(KindSwap) }

func RX(theta float64) Gate  { return named(KindRX, theta) }
func RY(theta float64) Gate  { return named(KindRY, theta) }
func RZ(lambda float64) Gate { return named(KindRZ, lambda) }

// U1 is a phase rotation diag(1, e^{iλ}).
func U1(lambda float64) Gate { return named(KindU1, lambda) }

// Phase is an alias for U1.
func Phase(lambda float64) Gate { return U1(lambda) }

func U2(phi, lambda float64) Gate { return named(KindU2, phi, lambda) }

func U3(theta, phi, lambda float64) Gate { return named(KindU3, theta, phi, lambda) }

func CX() Gate  { return Controlled(X(), 1) }
func CY() Gate  { return Controlled(Y(), 1) }
func CZ() Gate  { return Controlled(Z(), 1) }
func CH() Gate  { return Controlled(H(), 1) }
func CCX() Gate { return Controlled(X(), 2) }
func CCZ() Gate { return Controlled(Z(), 2) }

func (g Gate) Kind() Kind { return g.kind }

func (g Gate) Name() string { return g.name }

// Controls is the number of leading control lines.
func (g Gate) Controls() int { return g.controls }

func (g Gate) Arity() int { return g.controls + g.base.Arity() }

func (g Gate) Params() []float64 {
	return append([]float64(nil), g.params...)
}

// Base is the matrix applied where all control lines are 1.
func (g Gate) Base() Matrix { return g.base }

// Matrix resolves the full 2^k × 2^k unitary, controls included.
func (g Gate) Matrix() Matrix {
	if g.controls == 0 {
		return g.base
	}
	full := Identity(g.Arity())
	offset := full.dim - g.base.dim
	for i := 0; i < g.base.dim; i++ {
		for j := 0; j < g.base.dim; j++ {
			full.data[(offset+i)*full.dim+offset+j] = g.base.data[i*g.base.dim+j]
		}
	}
	return full
}

func (g Gate) String() string {
	if len(g.params) == 0 {
		return g.name
	}
	parts := make([]string, len(g.params))
	for i, p := range g.params {
		parts[i] = fmt.Sprintf("%g", p)
	}
	return fmt.Sprintf("%s(%s)", g.name, strings.Join(parts, ", "))
}

func resolve(kind Kind, params []float64) Matrix {
	h := complex(1/math.Sqrt2, 0)

	switch kind {
	case KindI:
		return Identity(1)
	case KindH:
		return mustMatrix([][]complex128{{h, h}, {h, -h}})
	case KindX:
		return mustMatrix([][]complex128{{0, 1}, {1, 0}})
	case KindY:
		return mustMatrix([][]complex128{{0, -1i}, {1i, 0}})
	case KindZ:
		return diagonal(1, -1)
	case KindS:
		return diagonal(1, 1i)
	case KindSdg:
		return diagonal(1, -1i)
	case KindT:
		return diagonal(1, cmplx.Rect(1, math.Pi/4))
	case KindTdg:
		return diagonal(1, cmplx.Rect(1, -math.Pi/4))
	case KindRX:
		c, s := halfAngle(params[0])
		return mustMatrix([][]complex128{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		})
	case KindRY:
		c, s := halfAngle(params[0])
		return mustMatrix([][]complex128{
			{complex(c, 0), complex(-s, 0)},
			{complex(s, 0), complex(c, 0)},
		})
	case KindRZ:
		return diagonal(cmplx.Rect(1, -params[0]/2), cmplx.Rect(1, params[0]/2))
	case KindU1:
		return diagonal(1, cmplx.Rect(1, params[0]))
	case KindU2:
		return u3(math.Pi/2, params[0], params[1])
	case KindU3:
		return u3(params[0], params[1], params[2])
	case KindSwap:
		return mustMatrix([][]complex128{
			{1, 0, 0, 0},
			{0, 0, 1, 0},
			{0, 1, 0, 0},
			{0, 0, 0, 1},
		})
	}
	panic(fmt.Sprintf("qsim: no matrix for %v", kind))
}

func u3(theta, phi, lambda float64) Matrix {
	c, s := halfAngle(theta)
	return mustMatrix([][]complex128{
		{complex(c, 0), -cmplx.Rect(s, lambda)},
		{cmplx.Rect(s, phi), cmplx.Rect(c, phi+lambda)},
	})
}

func halfAngle(theta float64) (float64, float64) {
	return math.Cos(theta / 2), math.Sin(theta / 2)
}

func diagonal(a, b complex128) Matrix {
	return mustMatrix([][]complex128{{a, 0}, {0, b}})
}
