package transform

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

type probeOutput struct {
	Streams []struct {
		Width  uint32 `json:"width"`
		Height uint32 `json:"height"`
	} `json:"streams"`
}

func parseProbeDimensions(raw string) (uint32, uint32, error) {
	var out probeOutput
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(raw, &out); err != nil {
		return 0, 0, err
	}
	for _, s := range out.Streams {
		if s.Width != 0 && s.Height != 0 {
			return s.Width, s.Height, nil
		}
	}
	return 0, 0, fmt.Errorf("transform: no video stream with dimensions in probe output")
}
