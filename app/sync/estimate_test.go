package sync

import (
	"testing"

	"github.com/podmirror/podmirror/app/model"
)

func TestEstimateSize(t *testing.T) {
	if got := estimateSize(model.FormatVideo, model.QualityHigh, 10); got != 3500000 {
		t.Errorf("Expected 3500000 for 10s of high video, got %d", got)
	}
	if got := estimateSize(model.FormatVideo, model.QualityLow, 10); got != 1000000 {
		t.Errorf("Expected 1000000 for 10s of low video, got %d", got)
	}
	if got := estimateSize(model.FormatAudio, model.QualityHigh, 10); got != 160000 {
		t.Errorf("Expected 160000 for 10s of high audio, got %d", got)
	}
	if got := estimateSize(model.FormatAudio, model.QualityLow, 10); got != 60000 {
		t.Errorf("Expected 60000 for 10s of low audio, got %d", got)
	}
}

func TestEstimateSize_ZeroDuration(t *testing.T) {
	if got := estimateSize(model.FormatVideo, model.QualityHigh, 0); got != 0 {
		t.Errorf("Expected 0 for zero duration, got %d", got)
	}
}
