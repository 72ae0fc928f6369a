// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package satellite

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/tomtom215/aetherwatch/internal/models"
)

func TestMockImageIsDecodableAtRequestedSize(t *testing.T) {
	layer, _ := LayerByKey(DefaultLayerKey)
	data, err := MockImage(layer, models.GlobalBBox(), 320, 160)
	if err != nil {
		t.Fatalf("MockImage: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 160 {
		t.Errorf("size = %dx%d, want 320x160", b.Dx(), b.Dy())
	}
}

func TestMockImageDeterministic(t *testing.T) {
	layer, _ := LayerByKey("night_lights")
	bbox := models.BoundingBox{West: -30, South: 30, East: 45, North: 75}

	a, err := MockImage(layer, bbox, 200, 120)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := MockImage(layer, bbox, 200, 120)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same layer and box produced different rasters")
	}
}

func TestMockImageClampsTinySizes(t *testing.T) {
	layer, _ := LayerByKey(DefaultLayerKey)
	data, err := MockImage(layer, models.GlobalBBox(), 1, 0)
	if err != nil {
		t.Fatalf("MockImage: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() < 2 || b.Dy() < 2 {
		t.Errorf("size = %dx%d, want at least 2x2", b.Dx(), b.Dy())
	}
}

func TestPaletteSelection(t *testing.T) {
	tests := []struct {
		name      string
		layer     Layer
		wantOcean color.RGBA
		wantLand  color.RGBA
	}{
		{
			name:      "night lights by name",
			layer:     Layer{Name: "Night Lights (VIIRS Black Marble)", GIBS: "VIIRS_Black_Marble"},
			wantOcean: color.RGBA{5, 5, 15, 255},
			wantLand:  color.RGBA{255, 200, 50, 255},
		},
		{
			name:      "land temperature by id",
			layer:     Layer{Name: "Surface Heat", GIBS: "MODIS_Terra_Land_Surface_Temp_Day"},
			wantOcean: color.RGBA{0, 80, 150, 255},
			wantLand:  color.RGBA{200, 100, 50, 255},
		},
		{
			name:      "sea temperature by name only",
			layer:     Layer{Name: "Sea Surface Temperature", GIBS: "MUR-JPL-L4-GLOB-v4.1"},
			wantOcean: color.RGBA{0, 80, 150, 255},
			wantLand:  color.RGBA{200, 100, 50, 255},
		},
		{
			name:      "snow cover",
			layer:     Layer{Name: "Snow & Ice Cover", GIBS: "MODIS_Terra_Snow_Cover"},
			wantOcean: color.RGBA{30, 80, 160, 255},
			wantLand:  color.RGBA{230, 230, 255, 255},
		},
		{
			name:      "true color default",
			layer:     Layer{Name: "True Color (VIIRS SNPP)", GIBS: "VIIRS_SNPP_CorrectedReflectance_TrueColor"},
			wantOcean: color.RGBA{20, 60, 140, 255},
			wantLand:  color.RGBA{80, 130, 60, 255},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pal := paletteFor(tc.layer)
			if pal.ocean != tc.wantOcean {
				t.Errorf("ocean = %v, want %v", pal.ocean, tc.wantOcean)
			}
			if pal.land != tc.wantLand {
				t.Errorf("land = %v, want %v", pal.land, tc.wantLand)
			}
		})
	}
}

func TestSampleBilinearHitsGridCorners(t *testing.T) {
	// 2x2 grid; output corners must reproduce the grid corners exactly.
	grid := []float64{10, 20, 30, 40}

	corners := []struct {
		x, y int
		want float64
	}{
		{0, 0, 10},
		{9, 0, 20},
		{0, 9, 30},
		{9, 9, 40},
	}
	for _, c := range corners {
		if got := sampleBilinear(grid, 2, 2, c.x, c.y, 10, 10); got != c.want {
			t.Errorf("sample(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}

	// Center of the output interpolates between all four corners.
	mid := sampleBilinear(grid, 2, 2, 4, 4, 9, 9)
	if mid != 25 {
		t.Errorf("center sample = %v, want 25", mid)
	}
}

func TestJitterClampsChannels(t *testing.T) {
	bright := jitter(color.RGBA{250, 250, 250, 255}, 10)
	if bright.R != 255 || bright.G != 255 || bright.B != 255 {
		t.Errorf("high jitter not clamped: %v", bright)
	}
	dark := jitter(color.RGBA{3, 3, 3, 255}, -10)
	if dark.R != 0 || dark.G != 0 || dark.B != 0 {
		t.Errorf("low jitter not clamped: %v", dark)
	}
}
