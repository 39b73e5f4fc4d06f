package waveform

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/vector"
)

// ImageStyle holds the colors used by [RenderImage].
type ImageStyle struct {
	Played color.Color
	Muted  color.Color
	Marker color.Color
	// BarFill is the share of each slot covered by its bar; the rest is gap.
	BarFill float64
}

var DefaultImageStyle = ImageStyle{
	Played:  color.RGBA{0x8B, 0x5C, 0xF6, 0xFF},
	Muted:   color.RGBA{0x4B, 0x55, 0x63, 0xFF},
	Marker:  color.RGBA{0xF9, 0xFA, 0xFB, 0xFF},
	BarFill: 0.7,
}

// RenderImage rasterises samples at the surface's backing resolution. Bars are centered vertically with
// height proportional to amplitude. The marker is one logical unit wide, drawn at half opacity when paused.
func RenderImage(samples []float64, progress float64, playing bool, surface Surface) *image.RGBA {
	return DefaultImageStyle.Render(samples, progress, playing, surface)
}

// Render is [RenderImage] with this style.
func (st ImageStyle) Render(samples []float64, progress float64, playing bool, surface Surface) *image.RGBA {
	w, h := surface.BackingWidth(), surface.BackingHeight()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 || len(samples) == 0 {
		return img
	}

	fill := st.BarFill
	if fill <= 0 || fill > 1 {
		fill = 1
	}

	n := len(samples)
	slot := float32(w) / float32(n)
	barW := slot * float32(fill)
	mid := float32(h) / 2

	playedZ := vector.NewRasterizer(w, h)
	mutedZ := vector.NewRasterizer(w, h)
	for i, a := range samples {
		x0 := float32(i)*slot + (slot-barW)/2
		half := float32(a) * float32(h) / 2
		z := mutedZ
		if played(i, n, progress) {
			z = playedZ
		}
		rect(z, x0, mid-half, x0+barW, mid+half)
	}
	playedZ.Draw(img, img.Bounds(), image.NewUniform(st.Played), image.Point{})
	mutedZ.Draw(img, img.Bounds(), image.NewUniform(st.Muted), image.Point{})

	ratio := float32(surface.Ratio())
	mx := float32(markerOffset(progress, w))
	markerZ := vector.NewRasterizer(w, h)
	rect(markerZ, max(mx-ratio/2, 0), 0, min(mx+ratio/2, float32(w)), float32(h))

	var src image.Image = image.NewUniform(st.Marker)
	if !playing {
		r, g, b, _ := st.Marker.RGBA()
		src = image.NewUniform(color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0x80})
	}
	markerZ.DrawOp = draw.Over
	markerZ.Draw(img, img.Bounds(), src, image.Point{})
	return img
}

// EncodePNG writes RenderImage output as PNG.
func EncodePNG(w io.Writer, samples []float64, progress float64, playing bool, surface Surface) error {
	return png.Encode(w, RenderImage(samples, progress, playing, surface))
}

func rect(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}
