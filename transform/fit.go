// Package transform implements the Media Transform Engine (C1):
// format-specific resize/convert primitives over bytes and on-disk paths.
package transform

// Fit computes the target dimensions for a resize to width W, sharing
// the aspect-preserving policy across every format-specific resizer:
//   - square: output is W x W, also when the input is smaller than W
//   - non-square, longer side > W: divide both sides by the integer
//     factor longer/W, so the longer side lands on W when W divides it
//     evenly and above W otherwise
//   - non-square, both sides already <= W: no upscaling, output equals input
//
// Integer division can yield 0 for extreme aspect ratios; clamp each
// dimension to a minimum of 1.
func Fit(imgw, imgh, w uint32) (uint32, uint32) {
	var outw, outh uint32
	longer := imgw
	if imgh > longer {
		longer = imgh
	}
	switch {
	case imgw == imgh:
		outw, outh = w, w
	case longer > w:
		outw, outh = imgw/(longer/w), imgh/(longer/w)
	default:
		outw, outh = imgw, imgh
	}
	if outw < 1 {
		outw = 1
	}
	if outh < 1 {
		outh = 1
	}
	return outw, outh
}
