package qsim

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewMatrix(t *testing.T) {
	Convey("Given rows for a new matrix", t, func() {
		Convey("When the dimension is a power of two", func() {
			m, err := NewMatrix([][]complex128{{0, 1}, {1, 0}})

			Convey("Then it should be built with the right arity", func() {
				So(err, ShouldBeNil)
				So(m.Dim(), ShouldEqual, 2)
				So(m.Arity(), ShouldEqual, 1)
				So(m.At(0, 1), ShouldEqual, complex(1, 0))
			})
		})

		Convey("When the dimension is not a power of two", func() {
			_, err := NewMatrix([][]complex128{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})

		Convey("When a row is ragged", func() {
			_, err := NewMatrix([][]complex128{{1, 0}, {0}})
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})

		Convey("When there are no rows", func() {
			_, err := NewMatrix(nil)
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})
	})
}

func TestMatrixAlgebra(t *testing.T) {
	Convey("Given the Pauli matrices", t, func() {
		x := X().Matrix()
		z := Z().Matrix()

		Convey("Their Kronecker product puts the left operand on the high bit", func() {
			xz := x.Kron(z)
			So(xz.Dim(), ShouldEqual, 4)
			// X on the high bit maps row 0 to column 2.
			So(xz.At(0, 2), ShouldEqual, complex(1, 0))
			So(xz.At(1, 3), ShouldEqual, complex(-1, 0))
			So(xz.At(0, 0), ShouldEqual, complex(0, 0))
		})

		Convey("The adjoint of Y should be Y", func() {
			y := Y().Matrix()
			So(y.Adjoint().Equal(y, 0), ShouldBeTrue)
		})

		Convey("S squared should be Z", func() {
			s := S().Matrix()
			So(s.Mul(s).Equal(z, 1e-12), ShouldBeTrue)
		})

		Convey("Identity should be recognised exactly", func() {
			So(Identity(2).IsIdentity(), ShouldBeTrue)
			So(z.IsIdentity(), ShouldBeFalse)
			So(z.IsDiagonal(), ShouldBeTrue)
			So(x.IsDiagonal(), ShouldBeFalse)
		})

		Convey("Rows should be a copy", func() {
			rows := x.Rows()
			rows[0][0] = 5
			So(x.At(0, 0), ShouldEqual, complex(0, 0))
		})
	})
}

func TestMatrixUnitarity(t *testing.T) {
	Convey("Given a matrix that is not unitary", t, func() {
		m, err := NewMatrix([][]complex128{{1, 1}, {0, 1}})
		So(err, ShouldBeNil)

		Convey("IsUnitary should reject it", func() {
			So(m.IsUnitary(1e-9), ShouldBeFalse)
		})

		Convey("A scaled rotation should only pass with a loose tolerance", func() {
			c := complex(math.Cos(0.3)*1.001, 0)
			s := complex(math.Sin(0.3)*1.001, 0)
			r, err := NewMatrix([][]complex128{{c, -s}, {s, c}})
			So(err, ShouldBeNil)
			So(r.IsUnitary(1e-9), ShouldBeFalse)
			So(r.IsUnitary(1e-2), ShouldBeTrue)
		})
	})
}
