package transform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sizeofint/webpanimation"
	"golang.org/x/image/webp"
)

// IsAnimatedWebP sniffs the RIFF/VP8X/ANIM chunk layout directly rather
// than fully decoding: [0:4]=="RIFF", [8:12]=="WEBP", [12:16]=="VP8X" and
// [30:34]=="ANIM" together mean the extended-format container carries an
// animation chunk right after VP8X. Anything that doesn't even parse as a
// RIFF/WEBP container is treated as not animated; the static path's own
// decode surfaces the real error.
func IsAnimatedWebP(data []byte) bool {
	if len(data) < 34 {
		return false
	}
	return string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP" &&
		string(data[12:16]) == "VP8X" &&
		string(data[30:34]) == "ANIM"
}

// canvasDimensions reads the VP8X chunk's canvas width/height (each a
// 24-bit little-endian "value minus one") without a full demux, so the
// animated path can apply the early-exit rule before paying for a decode.
func canvasDimensions(data []byte) (uint32, uint32, bool) {
	if len(data) < 30 || string(data[12:16]) != "VP8X" {
		return 0, 0, false
	}
	w := uint32(data[24]) | uint32(data[25])<<8 | uint32(data[26])<<16
	h := uint32(data[27]) | uint32(data[28])<<8 | uint32(data[29])<<16
	return w + 1, h + 1, true
}

// ResizeStaticWebP decodes a single-frame webp, applies Fit and re-encodes.
func ResizeStaticWebP(data []byte, w uint32) ([]byte, error) {
	return ResizeStatic(data, w, FormatWebP)
}

// AnimFrame is one decoded frame of an animated webp at the frame's own
// size, paired with its display duration in milliseconds. Frame offsets
// and blend/dispose flags are not applied.
type AnimFrame struct {
	Image      image.Image
	DurationMs int
}

// ResizeAnimatedWebP re-encodes every frame of an animated webp at the
// Fit-derived size: each output frame keeps its original duration, and a
// final, image-less frame is appended at the sum of all durations to
// close out the loop.
func ResizeAnimatedWebP(frames []AnimFrame, canvasW, canvasH, w uint32) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("transform: no frames to encode")
	}
	outw, outh := Fit(canvasW, canvasH, w)

	anim := webpanimation.NewWebpAnimation(int(outw), int(outh), 0)
	defer anim.ReleaseMemory()

	cfg := webpanimation.NewWebpConfig()
	cfg.SetQuality(75)
	cfg.SetSegments(2)
	cfg.SetAlphaCompression(1)
	cfg.SetLossless(0)

	var ts int
	for _, f := range frames {
		resized := f.Image
		if uint32(resized.Bounds().Dx()) != outw {
			resized = imaging.Resize(resized, int(outw), int(outh), imaging.Lanczos)
		}
		if err := anim.AddFrame(resized, ts, cfg); err != nil {
			return nil, err
		}
		ts += f.DurationMs
	}
	// A closing, image-less frame at the total duration terminates the
	// timeline, the way libwebp's animation muxer expects.
	if err := anim.AddFrame(nil, ts, cfg); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := anim.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeAnimatedWebP demuxes the ANMF chunks of an animated webp and
// decodes each frame's embedded bitstream. sizeofint/webpanimation only
// wraps libwebp's encoder, so decoding goes through golang.org/x/image/webp
// instead: each ANMF payload carries the same VP8/VP8L(+ALPH) chunk layout
// as a standalone single-image webp file, just without the outer
// RIFF/WEBP header, so decodeANMFFrame rebuilds that header before handing
// the bitstream to webp.Decode.
func decodeAnimatedWebP(data []byte) ([]AnimFrame, uint32, uint32, error) {
	canvasW, canvasH, ok := canvasDimensions(data)
	if !ok {
		return nil, 0, 0, fmt.Errorf("decoding animated webp: missing VP8X canvas header")
	}

	var frames []AnimFrame
	pos := 12 // past "RIFF" + 4-byte size + "WEBP"
	for pos+8 <= len(data) {
		fourcc := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		payloadStart := pos + 8
		payloadEnd := payloadStart + size
		if size < 0 || payloadEnd > len(data) {
			break
		}
		if fourcc == "ANMF" {
			frame, err := decodeANMFFrame(data[payloadStart:payloadEnd])
			if err != nil {
				return nil, 0, 0, fmt.Errorf("decoding animated webp: %w", err)
			}
			frames = append(frames, frame)
		}
		pos = payloadEnd
		if size%2 == 1 {
			pos++ // chunks are padded to an even length
		}
	}
	if len(frames) == 0 {
		return nil, 0, 0, fmt.Errorf("decoding animated webp: no ANMF frames found")
	}
	return frames, canvasW, canvasH, nil
}

// decodeANMFFrame reads the duration from one ANMF chunk's 16-byte frame
// header (the position, size and blend/dispose fields are skipped) and
// decodes the bitstream that follows it.
func decodeANMFFrame(payload []byte) (AnimFrame, error) {
	if len(payload) < 16 {
		return AnimFrame{}, fmt.Errorf("truncated ANMF chunk")
	}
	duration := int(payload[12]) | int(payload[13])<<8 | int(payload[14])<<16

	img, err := decodeBareWebPBitstream(payload[16:])
	if err != nil {
		return AnimFrame{}, err
	}
	return AnimFrame{Image: img, DurationMs: duration}, nil
}

// decodeBareWebPBitstream wraps a chunk sequence lacking its own RIFF/WEBP
// container in a minimal one so webp.Decode can read it.
func decodeBareWebPBitstream(chunks []byte) (image.Image, error) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+len(chunks)))
	buf.Write(size[:])
	buf.WriteString("WEBP")
	buf.Write(chunks)
	return webp.Decode(&buf)
}
