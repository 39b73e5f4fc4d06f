// Package waveform draws the decorative progress waveform shown by the player.
//
// Samples are synthetic: [Generate] produces a smooth pseudo-random envelope once per view and the renderers
// color it by playback progress. [Renderer] targets terminal cells, [RenderImage] targets pixels at the
// surface's device pixel ratio. [SeekPercent] maps a pointer position back to a progress percentage.
package waveform

import (
	"math"
	"math/rand"
	"time"

	"github.com/desertthunder/wavelet/internal/shared"
)

// DefaultSamples is the number of bars in a generated waveform.
const DefaultSamples = 200

const (
	minAmplitude = 0.1
	maxAmplitude = 1.0
)

// Generate returns n amplitudes in [0.1, 1.0]. A nil rng seeds from the clock.
func Generate(n int, rng *rand.Rand) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	samples := make([]float64, n)
	for i := range samples {
		x := float64(i)
		a := math.Sin(x*0.1)*0.5 + 0.5 + math.Sin(x*0.05)*0.3 + (rng.Float64()*0.2 - 0.1)
		samples[i] = shared.Clamp(a, minAmplitude, maxAmplitude)
	}
	return samples
}

// SeekPercent converts a pointer x offset on a surface of the given width to a percentage in [0,100].
// A non-positive width yields 0.
func SeekPercent(x, width float64) float64 {
	if width <= 0 || math.IsNaN(width) {
		return 0
	}
	return shared.Clamp(100*x/width, 0, 100)
}

// Surface is the drawing area in logical units plus the device pixel ratio.
type Surface struct {
	Width      int
	Height     int
	PixelRatio float64
}

// Resize sets the logical width, as on container resize. Negative widths become 0.
func (s *Surface) Resize(width int) {
	s.Width = max(width, 0)
}

// Ratio is the device pixel ratio, treating non-positive values as 1.
func (s Surface) Ratio() float64 {
	if s.PixelRatio <= 0 || math.IsNaN(s.PixelRatio) {
		return 1
	}
	return s.PixelRatio
}

// BackingWidth is the pixel width of the backing store.
func (s Surface) BackingWidth() int { return int(math.Round(float64(s.Width) * s.Ratio())) }

// BackingHeight is the pixel height of the backing store.
func (s Surface) BackingHeight() int { return int(math.Round(float64(s.Height) * s.Ratio())) }

// SeekPercent maps a logical x offset on this surface to a percentage.
func (s Surface) SeekPercent(x float64) float64 { return SeekPercent(x, float64(s.Width)) }

// played reports whether sample i of n falls at or before progress.
func played(i, n int, progress float64) bool {
	return float64(i)/float64(n) <= progress/100
}

// markerOffset places the progress marker on a span of the given length.
func markerOffset(progress float64, span int) int {
	if span <= 1 {
		return 0
	}
	p := shared.Clamp(progress, 0, 100)
	return int(math.Round(p / 100 * float64(span-1)))
}
