// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package satellite

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"strings"

	"github.com/tomtom215/aetherwatch/internal/imaging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

const (
	// Fixed seed keeps the synthetic Earth stable across calls, so a dead
	// upstream does not produce a different planet on every refresh.
	mockNoiseSeed = 42

	// Coarse noise cells are upscaled bilinearly; the divisor sets the
	// continent scale relative to the output size.
	mockNoiseScale = 4

	// Smoothed noise above this value (0..255) classifies as land.
	landThreshold = 100

	mockBannerHeight = 22
)

// layerPalette holds the two classification colors for a synthetic raster.
type layerPalette struct {
	land  color.RGBA
	ocean color.RGBA
}

// paletteFor picks colors from the layer semantics: night layers get dark
// oceans with lit land, temperature layers a thermal ramp, snow layers
// white-on-blue, everything else approximates true color.
func paletteFor(layer Layer) layerPalette {
	id := strings.ToLower(layer.Name + " " + layer.GIBS)
	switch {
	case strings.Contains(id, "night") || strings.Contains(id, "black_marble"):
		return layerPalette{land: color.RGBA{255, 200, 50, 255}, ocean: color.RGBA{5, 5, 15, 255}}
	case strings.Contains(id, "temp"):
		return layerPalette{land: color.RGBA{200, 100, 50, 255}, ocean: color.RGBA{0, 80, 150, 255}}
	case strings.Contains(id, "snow"):
		return layerPalette{land: color.RGBA{230, 230, 255, 255}, ocean: color.RGBA{30, 80, 160, 255}}
	default:
		return layerPalette{land: color.RGBA{80, 130, 60, 255}, ocean: color.RGBA{20, 60, 140, 255}}
	}
}

// MockImage renders a synthetic Earth-like raster for the layer and box:
// smoothed value noise classified into ocean and land, tinted per layer,
// with a banner that marks the output as simulated. It never fails.
func MockImage(layer Layer, bbox models.BoundingBox, width, height int) ([]byte, error) {
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}

	//nolint:gosec // math/rand is fine for synthetic imagery
	rng := rand.New(rand.NewSource(mockNoiseSeed))

	coarseW := width / mockNoiseScale
	coarseH := height / mockNoiseScale
	if coarseW < 2 {
		coarseW = 2
	}
	if coarseH < 2 {
		coarseH = 2
	}
	coarse := make([]float64, coarseW*coarseH)
	for i := range coarse {
		coarse[i] = rng.Float64() * 255
	}

	pal := paletteFor(layer)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := sampleBilinear(coarse, coarseW, coarseH, x, y, width, height)
			c := pal.ocean
			if v > landThreshold {
				c = pal.land
			}
			// Same jitter on all channels, like sensor noise rather
			// than chroma noise.
			img.SetRGBA(x, y, jitter(c, rng.Float64()*20-10))
		}
	}

	drawMockBanner(img, layer, bbox, width)
	return imaging.EncodeJPEG(img, satJPEGQuality)
}

// sampleBilinear interpolates the coarse grid at output pixel (x, y).
func sampleBilinear(grid []float64, gw, gh, x, y, w, h int) float64 {
	gx := float64(x) * float64(gw-1) / float64(w-1)
	gy := float64(y) * float64(gh-1) / float64(h-1)

	x0, y0 := int(gx), int(gy)
	x1, y1 := x0+1, y0+1
	if x1 >= gw {
		x1 = gw - 1
	}
	if y1 >= gh {
		y1 = gh - 1
	}
	fx, fy := gx-float64(x0), gy-float64(y0)

	top := grid[y0*gw+x0]*(1-fx) + grid[y0*gw+x1]*fx
	bot := grid[y1*gw+x0]*(1-fx) + grid[y1*gw+x1]*fx
	return top*(1-fy) + bot*fy
}

func jitter(c color.RGBA, d float64) color.RGBA {
	return color.RGBA{R: clampChan(float64(c.R) + d), G: clampChan(float64(c.G) + d), B: clampChan(float64(c.B) + d), A: 255}
}

func clampChan(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func drawMockBanner(img *image.RGBA, layer Layer, bbox models.BoundingBox, width int) {
	imaging.FillRect(img, image.Rect(0, 0, width, mockBannerHeight), color.RGBA{0, 0, 0, 255})
	text := fmt.Sprintf("SIMULATED IMAGERY | Layer: %s | BBox: %s | Connect NASA GIBS for real data",
		layer.Name, bannerBBox(bbox))
	imaging.DrawLabel(img, 6, 15, text, color.RGBA{255, 100, 100, 255})
}

// bannerBBox formats a box compactly for banner overlays.
func bannerBBox(b models.BoundingBox) string {
	return fmt.Sprintf("%.0f,%.0f to %.0f,%.0f", b.West, b.South, b.East, b.North)
}
