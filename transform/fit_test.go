package transform_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/holaplex/imgopt/transform"
)

var _ = Describe("Fit", func() {
	It("never upscales when both dimensions are already within W", func() {
		outw, outh := transform.Fit(100, 80, 400)
		Expect(outw).To(Equal(uint32(100)))
		Expect(outh).To(Equal(uint32(80)))
	})

	It("maps the longer side to W for a wide image", func() {
		outw, outh := transform.Fit(2000, 1000, 400)
		Expect(outw).To(Equal(uint32(400)))
		Expect(outh).To(Equal(uint32(200)))
	})

	It("maps the longer side to W for a tall image, even though width < W", func() {
		// width (100) is under W, but height (300) is the longer side and
		// exceeds W — the divisor must be chosen off the longer side, not
		// off whichever dimension the caller happens to check first.
		outw, outh := transform.Fit(100, 300, 50)
		Expect(outh).To(Equal(uint32(50)))
		Expect(outw).To(Equal(uint32(16)))
	})

	It("produces a square output for square input", func() {
		outw, outh := transform.Fit(900, 900, 400)
		Expect(outw).To(Equal(uint32(400)))
		Expect(outh).To(Equal(uint32(400)))
	})

	It("produces W x W for a square input smaller than W", func() {
		outw, outh := transform.Fit(50, 50, 400)
		Expect(outw).To(Equal(uint32(400)))
		Expect(outh).To(Equal(uint32(400)))
	})

	It("clamps extreme aspect ratios to a minimum of 1 in each dimension", func() {
		outw, outh := transform.Fit(10000, 1, 1)
		Expect(outw).To(Equal(uint32(1)))
		Expect(outh).To(Equal(uint32(1)))
	})

	DescribeTable("monotonicity: output never exceeds max(input, W)",
		func(imgw, imgh, w uint32) {
			outw, outh := transform.Fit(imgw, imgh, w)
			Expect(outw).To(BeNumerically("<=", maxU32(imgw, w)))
			Expect(outh).To(BeNumerically("<=", maxU32(imgh, w)))
			Expect(outw).To(BeNumerically(">=", uint32(1)))
			Expect(outh).To(BeNumerically(">=", uint32(1)))
		},
		Entry("wide", uint32(4000), uint32(300), uint32(800)),
		Entry("tall", uint32(300), uint32(4000), uint32(800)),
		Entry("square", uint32(1200), uint32(1200), uint32(800)),
		Entry("already small", uint32(10), uint32(10), uint32(800)),
		Entry("extreme", uint32(10000), uint32(1), uint32(1)),
	)
})

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
