package main

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qsim"
)

func sample(name string, qubits int) (*qsim.Histogram, error) {
	c, err := build(name, qubits, 1.0)
	if err != nil {
		return nil, err
	}
	engine := qsim.NewEngine(nil, qsim.WithLogger(log.New(io.Discard)))
	return engine.Sample(context.Background(), c, 256, 1)
}

func TestCircuits(t *testing.T) {
	Convey("Given the bundled circuits", t, func() {
		Convey("Every name should build", func() {
			for _, name := range circuitNames() {
				c, err := build(name, 3, 0.5)
				So(err, ShouldBeNil)
				So(c.Len(), ShouldBeGreaterThan, 0)
			}
		})

		Convey("An unknown name should be rejected", func() {
			_, err := build("shor", 3, 0)
			So(err, ShouldNotBeNil)
		})

		Convey("ghz should only produce all zeros or all ones", func() {
			h, err := sample("ghz", 5)
			So(err, ShouldBeNil)
			So(h.Keys(), ShouldResemble, []uint64{0, 31})
		})

		Convey("grover should always find the marked state", func() {
			h, err := sample("grover", 0)
			So(err, ShouldBeNil)
			So(h.Count(3), ShouldEqual, 256)
		})

		Convey("bell should render a two line histogram", func() {
			h, err := sample("bell", 0)
			So(err, ShouldBeNil)

			out := renderHistogram("bell", h)
			So(out, ShouldContainSubstring, "00")
			So(out, ShouldContainSubstring, "11")
			So(out, ShouldContainSubstring, "256 shots")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given command line arguments", t, func() {
		Convey("A valid invocation should succeed", func() {
			So(run([]string{"--circuit", "teleport", "--shots", "32", "--workers", "2", "--metrics"}), ShouldBeNil)
		})

		Convey("An unknown circuit should fail", func() {
			So(run([]string{"--circuit", "nope"}), ShouldNotBeNil)
		})

		Convey("An invalid worker count should fail", func() {
			So(run([]string{"--workers", "-1"}), ShouldNotBeNil)
		})
	})
}
