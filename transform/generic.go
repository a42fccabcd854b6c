package transform

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format names the handful of encodable formats the generic resizer
// round-trips through.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatGIF  Format = "gif"
)

// ResizeStatic decodes data, applies the Fit policy to width w and
// re-encodes in format. This is the "generic-resize" path used for
// jpeg (default engine), png (engine=1), and as the second stage after
// SVG rasterization.
//
// Early exit: if the decoded width already equals w, the input bytes are
// returned byte-for-byte with no re-encode.
func ResizeStatic(data []byte, w uint32, format Format) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	imgw, imgh := uint32(bounds.Dx()), uint32(bounds.Dy())
	if imgw == w {
		return data, nil
	}
	outw, outh := Fit(imgw, imgh, w)
	resized := imaging.Resize(img, int(outw), int(outh), imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90})
	case FormatPNG:
		err = png.Encode(&buf, resized)
	case FormatWebP:
		err = webp.Encode(&buf, resized, &webp.Options{Quality: 80})
	case FormatGIF:
		err = gif.Encode(&buf, resized, nil)
	default:
		return nil, errUnsupportedFormat(format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type unsupportedFormatError struct{ format Format }

func (e unsupportedFormatError) Error() string {
	return "transform: unsupported generic-resize format " + string(e.format)
}

func errUnsupportedFormat(f Format) error { return unsupportedFormatError{format: f} }
