package model

import (
	"fmt"
	"os"
)

// Model identifies a whisper model size.
type Model string

const (
	Tiny   Model = "tiny"
	Base   Model = "base"
	Small  Model = "small"
	Medium Model = "medium"
	Large  Model = "large"
)

// Auto is the sentinel meaning "no explicit choice"; it is never passed to
// the whisper binary.
const Auto Model = "auto"

// SizeThreshold is the input size, in bytes, at which smart selection switches
// from the high-accuracy model to the faster one. Short recordings (voice
// messages) are cheap to run at maximum accuracy; long recordings favor latency.
const SizeThreshold = 100 * 1024

// All returns the valid model identifiers in ascending size order.
func All() []Model {
	return []Model{Tiny, Base, Small, Medium, Large}
}

// Valid reports whether m names a known model size.
func (m Model) Valid() bool {
	switch m {
	case Tiny, Base, Small, Medium, Large:
		return true
	}
	return false
}

// Select picks a model for the audio file at path. An explicit model always
// wins. Otherwise the file's byte size decides: below SizeThreshold the
// high-accuracy Large model is used, at or above it the faster Medium model.
// The decision never inspects audio content, only byte length.
func Select(path string, explicit Model) (Model, error) {
	if explicit != "" && explicit != Auto {
		return explicit, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot size audio file: %w", err)
	}

	if info.Size() < SizeThreshold {
		return Large, nil
	}
	return Medium, nil
}
