package transform

import (
	"bytes"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

// ResizePNGDedicated is the engine=0 (default) PNG path: a Triangle-filter
// resize via nfnt/resize instead of the generic Lanczos round-trip.
//
// Paletted (indexed) PNGs are the one color model nfnt/resize can't sample
// correctly, so they fall back to the generic resizer instead of failing
// the request outright.
func ResizePNGDedicated(data []byte, w uint32) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if _, paletted := img.(*image.Paletted); paletted {
		return ResizeStatic(data, w, FormatPNG)
	}

	bounds := img.Bounds()
	imgw, imgh := uint32(bounds.Dx()), uint32(bounds.Dy())
	if imgw == w {
		return data, nil
	}
	outw, outh := Fit(imgw, imgh, w)
	resized := resize.Resize(outw, outh, img, resize.Triangle)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
