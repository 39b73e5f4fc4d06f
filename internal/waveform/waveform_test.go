package waveform

import (
	"bytes"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGenerate(t *testing.T) {
	t.Run("amplitudes stay in range", func(t *testing.T) {
		for seed := int64(0); seed < 50; seed++ {
			samples := Generate(DefaultSamples, rand.New(rand.NewSource(seed)))
			if len(samples) != DefaultSamples {
				t.Fatalf("expected %d samples, got %d", DefaultSamples, len(samples))
			}
			for i, a := range samples {
				if a < 0.1 || a > 1.0 {
					t.Fatalf("seed %d sample %d = %v out of [0.1, 1.0]", seed, i, a)
				}
			}
		}
	})

	t.Run("same seed gives same waveform", func(t *testing.T) {
		a := Generate(20, rand.New(rand.NewSource(7)))
		b := Generate(20, rand.New(rand.NewSource(7)))
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
			}
		}
	})

	t.Run("non-positive n", func(t *testing.T) {
		if got := Generate(0, nil); len(got) != 0 {
			t.Errorf("expected empty, got %d", len(got))
		}
	})

	t.Run("nil rng", func(t *testing.T) {
		if got := Generate(5, nil); len(got) != 5 {
			t.Errorf("expected 5 samples, got %d", len(got))
		}
	})
}

func TestSeekPercent(t *testing.T) {
	tests := []struct {
		name     string
		x, width float64
		want     float64
	}{
		{"left edge", 0, 300, 0},
		{"right edge", 300, 300, 100},
		{"middle", 75, 300, 25},
		{"before left", -20, 300, 0},
		{"past right", 400, 300, 100},
		{"zero width", 10, 0, 0},
		{"negative width", 10, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeekPercent(tt.x, tt.width); got != tt.want {
				t.Errorf("SeekPercent(%v, %v) = %v, want %v", tt.x, tt.width, got, tt.want)
			}
		})
	}
}

func TestSurface(t *testing.T) {
	t.Run("backing size follows pixel ratio", func(t *testing.T) {
		s := Surface{Width: 300, Height: 60, PixelRatio: 2}
		if s.BackingWidth() != 600 || s.BackingHeight() != 120 {
			t.Errorf("expected 600x120, got %dx%d", s.BackingWidth(), s.BackingHeight())
		}
		s.Resize(150)
		if s.BackingWidth() != 300 {
			t.Errorf("expected 300 after resize, got %d", s.BackingWidth())
		}
	})

	t.Run("non-positive ratio treated as 1", func(t *testing.T) {
		s := Surface{Width: 100, Height: 10}
		if s.Ratio() != 1 || s.BackingWidth() != 100 {
			t.Errorf("expected ratio 1, got %v", s.Ratio())
		}
	})

	t.Run("resize clamps negative width", func(t *testing.T) {
		s := Surface{Width: 10}
		s.Resize(-4)
		if s.Width != 0 {
			t.Errorf("expected 0, got %d", s.Width)
		}
	})

	t.Run("SeekPercent uses logical width", func(t *testing.T) {
		s := Surface{Width: 200, PixelRatio: 3}
		if got := s.SeekPercent(200); got != 100 {
			t.Errorf("expected 100, got %v", got)
		}
	})
}

func plainRenderer(width, height int) *Renderer {
	r := NewRenderer(width, height)
	r.Played = lipgloss.NewStyle()
	r.Muted = lipgloss.NewStyle()
	r.Marker = lipgloss.NewStyle()
	return r
}

func TestRenderer(t *testing.T) {
	samples := Generate(DefaultSamples, rand.New(rand.NewSource(1)))

	t.Run("one column per cell and one row per line", func(t *testing.T) {
		out := plainRenderer(40, 3).Render(samples, 50, false)
		lines := strings.Split(out, "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(lines))
		}
		for i, l := range lines {
			if n := len([]rune(l)); n != 40 {
				t.Errorf("row %d has %d columns, want 40", i, n)
			}
		}
	})

	t.Run("marker position and glyph", func(t *testing.T) {
		r := plainRenderer(11, 1)
		paused := []rune(r.Render(samples, 50, false))
		if string(paused[5]) != markerPaused {
			t.Errorf("expected paused marker at column 5, got %q", string(paused[5]))
		}
		playing := []rune(r.Render(samples, 100, true))
		if string(playing[10]) != markerPlaying {
			t.Errorf("expected playing marker at last column, got %q", string(playing[10]))
		}
		start := []rune(r.Render(samples, 0, true))
		if string(start[0]) != markerPlaying {
			t.Errorf("expected marker at column 0, got %q", string(start[0]))
		}
	})

	t.Run("full bars fill the bottom row", func(t *testing.T) {
		flat := []float64{1, 1, 1, 1}
		out := plainRenderer(4, 2).Render(flat, 100, false)
		lines := strings.Split(out, "\n")
		if lines[1][:len("█")] != "█" {
			t.Errorf("expected full block in bottom row, got %q", lines[1])
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		if out := plainRenderer(0, 1).Render(samples, 10, false); out != "" {
			t.Errorf("expected empty output for zero width, got %q", out)
		}
		if out := plainRenderer(10, 1).Render(nil, 10, false); out != "" {
			t.Errorf("expected empty output without samples, got %q", out)
		}
	})

	t.Run("played split", func(t *testing.T) {
		if !played(0, 200, 0) {
			t.Error("first sample is played at 0%")
		}
		if played(101, 200, 50) {
			t.Error("sample 101/200 is past 50%")
		}
		if !played(100, 200, 50) {
			t.Error("sample 100/200 is at 50%")
		}
	})
}

func TestRenderImage(t *testing.T) {
	samples := []float64{1, 1, 1, 1}

	t.Run("backing resolution", func(t *testing.T) {
		img := RenderImage(samples, 50, true, Surface{Width: 40, Height: 10, PixelRatio: 2})
		b := img.Bounds()
		if b.Dx() != 80 || b.Dy() != 20 {
			t.Fatalf("expected 80x20, got %dx%d", b.Dx(), b.Dy())
		}
	})

	t.Run("played and muted colors", func(t *testing.T) {
		img := RenderImage(samples, 25, false, Surface{Width: 40, Height: 10, PixelRatio: 1})
		// slot 0 is played, slot 3 is muted; sample the bar centers away from the marker
		if got := img.RGBAAt(5, 5); got != DefaultImageStyle.Played {
			t.Errorf("expected played color at slot 0, got %v", got)
		}
		if got := img.RGBAAt(35, 5); got != DefaultImageStyle.Muted {
			t.Errorf("expected muted color at slot 3, got %v", got)
		}
	})

	t.Run("empty surface", func(t *testing.T) {
		img := RenderImage(samples, 0, false, Surface{})
		if !img.Bounds().Empty() {
			t.Errorf("expected empty image, got %v", img.Bounds())
		}
	})

	t.Run("EncodePNG", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, samples, 50, true, Surface{Width: 20, Height: 8, PixelRatio: 1.5}); err != nil {
			t.Fatalf("EncodePNG: %v", err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 12 {
			t.Errorf("expected 30x12, got %v", img.Bounds())
		}
	})
}
