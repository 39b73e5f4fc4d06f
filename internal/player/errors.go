package player

import (
	"errors"
	"fmt"

	"github.com/desertthunder/wavelet/internal/shared"
)

// ErrorKind classifies a [PlaybackError].
type ErrorKind int

const (
	LoadFailed ErrorKind = iota
)

func (k ErrorKind) String() string {
	switch k {
	case LoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// PlaybackError reports a failure to prepare a track for playback.
type PlaybackError struct {
	Kind    ErrorKind
	TrackID string
	Err     error
}

func (e *PlaybackError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("playback %s: track %s", e.Kind, e.TrackID)
	}
	return fmt.Sprintf("playback %s: track %s: %v", e.Kind, e.TrackID, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Is matches [shared.ErrPlaybackFailed] so callers can test the category without a type assertion.
func (e *PlaybackError) Is(target error) bool {
	return target == shared.ErrPlaybackFailed
}

// IsLoadFailed reports whether err is a [PlaybackError] of kind [LoadFailed].
func IsLoadFailed(err error) bool {
	var pe *PlaybackError
	return errors.As(err, &pe) && pe.Kind == LoadFailed
}
