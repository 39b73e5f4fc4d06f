package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

// RestartOnPlayPolicy decides what happens to progress when playback resumes.
type RestartOnPlayPolicy int

const (
	Continue        RestartOnPlayPolicy = iota // resume from current progress
	RestartFromZero                            // every resume starts at 0
)

func (p RestartOnPlayPolicy) String() string {
	switch p {
	case Continue:
		return "continue"
	case RestartFromZero:
		return "restart"
	default:
		return ""
	}
}

// ParseRestartPolicy accepts "continue", "restart" or "restart-from-zero". Empty means [Continue].
func ParseRestartPolicy(s string) (RestartOnPlayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return Continue, nil
	case "restart", "restart-from-zero", "restart_from_zero":
		return RestartFromZero, nil
	default:
		return Continue, fmt.Errorf("%w: restart_on_play %q", shared.ErrInvalidConfig, s)
	}
}

// TickPolicy is the cadence and per-tick increment of the progress timer.
type TickPolicy struct {
	Name     string
	Interval time.Duration
	Step     func(track models.Track) float64
}

// FixedTick advances half a percentage point every 100ms regardless of track length.
var FixedTick = TickPolicy{
	Name:     "fixed",
	Interval: 100 * time.Millisecond,
	Step:     func(models.Track) float64 { return 0.5 },
}

// DurationTick advances in real time: one second of audio per tick.
// Tracks with unknown duration fall back to the fixed increment.
var DurationTick = TickPolicy{
	Name:     "duration",
	Interval: time.Second,
	Step: func(t models.Track) float64 {
		if t.Duration <= 0 {
			return 0.5
		}
		return 100 / float64(t.Duration)
	},
}

// ParseTickPolicy accepts "duration" or "fixed". Empty means [DurationTick].
func ParseTickPolicy(s string) (TickPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "duration":
		return DurationTick, nil
	case "fixed":
		return FixedTick, nil
	default:
		return DurationTick, fmt.Errorf("%w: tick_mode %q", shared.ErrInvalidConfig, s)
	}
}

// advance applies one tick of step to progress. Progress that is already at 100, or would pass it, wraps to 0.
func advance(progress, step float64) float64 {
	if progress >= 100 || progress+step > 100 {
		return 0
	}
	return progress + step
}
