package transform

import (
	"fmt"
	"os"
	"os/exec"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeDimensions shells out to ffprobe (via ffmpeg-go's Probe helper) to
// read the first video stream's width/height, ahead of invoking the
// conversion script.
func ProbeDimensions(path string) (uint32, uint32, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, 0, err
	}
	w, h, err := parseProbeDimensions(raw)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// MP4ToGIF shells out to the mp4-to-gif.sh conversion script, the same
// external-binary pattern as the gifsicle and `file` calls elsewhere in
// this package. On failure it returns the caller's fallback bytes
// unmodified rather than erroring the whole request.
func MP4ToGIF(inputPath string, w, h uint32, fallback []byte) ([]byte, error) {
	out, err := os.CreateTemp("", "imgopt-mp4-out-*.gif")
	if err != nil {
		return fallback, nil
	}
	defer os.Remove(out.Name())
	out.Close()

	cmd := exec.Command("./mp4-to-gif.sh", inputPath, fmt.Sprint(w), fmt.Sprint(h), out.Name())
	if err := cmd.Run(); err != nil {
		return fallback, nil
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		return fallback, nil
	}
	return data, nil
}
