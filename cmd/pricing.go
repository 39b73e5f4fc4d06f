package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/waveform"
	"github.com/urfave/cli/v3"
)

// environment starts from the detected locale and timezone and applies any flags given.
func environment(cmd *cli.Command) pricing.Environment {
	env := pricing.DetectEnvironment()
	if l := cmd.String("locale"); l != "" {
		env.Locale = pricing.NormalizeLocale(l)
	}
	if tz := cmd.String("timezone"); tz != "" {
		env.Timezone = tz
	}
	return env
}

// PricingQuote prints the regional offer.
func (r *Runner) PricingQuote(ctx context.Context, cmd *cli.Command) error {
	env := environment(cmd)
	quote := pricing.Quote(env)
	r.logger.Debug("quoted", "locale", env.Locale, "timezone", env.Timezone, "region", quote.Region)

	if cmd.Bool("json") {
		return r.writeJSON(quote, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Premium (%s)", quote.Region))
	r.writePlain("Locale: %s\n", orUnknown(env.Locale))
	r.writePlain("Timezone: %s\n", orUnknown(env.Timezone))
	r.writePlain("Price: %s (was %s)\n", quote.DiscountedFormatted, quote.OriginalFormatted)
	return r.writePlain("Save %d%%\n", quote.SavingsPercentage)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// WaveformRender prints a seeded waveform, or encodes it as PNG when --output is set.
func (r *Runner) WaveformRender(ctx context.Context, cmd *cli.Command) error {
	width, height := cmd.Int("width"), cmd.Int("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width and height must be positive", shared.ErrInvalidFlag)
	}

	progress := shared.Clamp(cmd.Float("progress"), 0, 100)
	playing := cmd.Bool("playing")

	samples := r.config.Player.WaveformSamples
	if samples <= 0 {
		samples = waveform.DefaultSamples
	}
	data := waveform.Generate(samples, rand.New(rand.NewSource(cmd.Int64("seed"))))

	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		surface := waveform.Surface{Width: width, Height: height, PixelRatio: 1}
		if err := waveform.EncodePNG(f, data, progress, playing, surface); err != nil {
			return err
		}
		return r.writePlain("✓ Waveform written to %s\n", path)
	}

	return r.writePlain("%s\n", waveform.NewRenderer(width, height).Render(data, progress, playing))
}
