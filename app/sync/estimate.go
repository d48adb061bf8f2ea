package sync

import (
	"github.com/podmirror/podmirror/app/model"
)

// Querying exact file sizes needs one extra upstream call per item, which is
// too expensive, so when the extractor reports no size we approximate from
// duration and the nominal bitrate of the selected format.
const (
	hdBytesPerSecond        = 350000
	ldBytesPerSecond        = 100000
	highAudioBytesPerSecond = 128000 / 8
	lowAudioBytesPerSecond  = 48000 / 8
)

func estimateSize(format model.Format, quality model.Quality, duration int64) int64 {
	if format == model.FormatAudio {
		if quality == model.QualityHigh {
			return highAudioBytesPerSecond * duration
		}
		return lowAudioBytesPerSecond * duration
	}

	if quality == model.QualityHigh {
		return hdBytesPerSecond * duration
	}
	return ldBytesPerSecond * duration
}
