package transform

import (
	"go.uber.org/zap"
)

// Engine selects among the alternate implementations a content type can
// offer via the "engine" query param; 0 is always the default.
type Engine uint32

// Result is a completed transform: the output bytes plus the content type
// they should be served and cached under, which can differ from the input
// (svg+xml -> image/png, video/mp4 -> image/gif).
type Result struct {
	Data        []byte
	ContentType string
}

// Transformer dispatches content-type + engine to the matching
// format-specific resizer.
type Transformer struct {
	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Transformer {
	return &Transformer{log: log}
}

// Transform resizes data (believed to be contentType) to width w using
// engine, returning the bytes and content type to persist and serve.
// sourcePath is the on-disk path data was read from; it's only consulted
// by the mp4 path, which needs a real file for ffprobe/the conversion
// script rather than a byte buffer.
func (t *Transformer) Transform(contentType string, data []byte, sourcePath string, w uint32, engine Engine) (Result, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		out, err := ResizeStatic(data, w, FormatJPEG)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: out, ContentType: "image/jpeg"}, nil

	case "image/png":
		var out []byte
		var err error
		if engine == 1 {
			out, err = ResizeStatic(data, w, FormatPNG)
		} else {
			out, err = ResizePNGDedicated(data, w)
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Data: out, ContentType: "image/png"}, nil

	case "image/webp":
		out, err := t.resizeWebP(data, w)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: out, ContentType: "image/webp"}, nil

	case "image/gif":
		out, err := ResizeGIF(data, w)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: out, ContentType: "image/gif"}, nil

	case "image/svg+xml":
		png, err := RasterizeSVG(data)
		if err != nil {
			return Result{}, err
		}
		out, err := ResizeStatic(png, w, FormatPNG)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: out, ContentType: "image/png"}, nil

	case "video/mp4":
		vw, vh, err := ProbeDimensions(sourcePath)
		if err != nil {
			t.log.Warnw("mp4 probe failed, falling back to source bytes", "path", sourcePath, "err", err)
			return Result{Data: data, ContentType: contentType}, nil
		}
		outw, outh := Fit(vw, vh, w)
		gifData, err := MP4ToGIF(sourcePath, outw, outh, data)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: gifData, ContentType: "image/gif"}, nil

	case "application/json", "text/plain", "text/html":
		return Result{Data: data, ContentType: contentType}, nil

	default:
		t.log.Warnw("no transform known for content type, passing through", "contentType", contentType)
		return Result{Data: data, ContentType: contentType}, nil
	}
}

// resizeWebP always routes through IsAnimatedWebP rather than letting the
// caller pick: the animated/static branch is an implementation detail of
// "resize a webp", not a separate content type.
func (t *Transformer) resizeWebP(data []byte, w uint32) ([]byte, error) {
	if !IsAnimatedWebP(data) {
		return ResizeStaticWebP(data, w)
	}
	if cw, _, ok := canvasDimensions(data); ok && cw == w {
		return data, nil
	}
	frames, canvasW, canvasH, err := decodeAnimatedWebP(data)
	if err != nil {
		return nil, err
	}
	return ResizeAnimatedWebP(frames, canvasW, canvasH, w)
}
