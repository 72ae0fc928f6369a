// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestFillRectClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}

	// Rectangle extends well past the image; must not panic and must only
	// touch in-bounds pixels.
	FillRect(img, image.Rect(5, 5, 100, 100), red)

	if got := img.RGBAAt(7, 7); got != red {
		t.Errorf("in-bounds pixel = %v, want %v", got, red)
	}
	if got := img.RGBAAt(2, 2); got == red {
		t.Error("pixel outside rect was filled")
	}
}

func TestFillEllipseStaysInsideRect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	blue := color.RGBA{B: 255, A: 255}
	FillEllipse(img, image.Rect(4, 4, 16, 16), blue)

	if got := img.RGBAAt(10, 10); got != blue {
		t.Errorf("ellipse center = %v, want %v", got, blue)
	}
	// Corners of the bounding rect are outside the inscribed ellipse.
	if got := img.RGBAAt(4, 4); got == blue {
		t.Error("rect corner was filled, ellipse leaked outside its curve")
	}
}

func TestStrokeRectLeavesInteriorEmpty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	green := color.RGBA{G: 255, A: 255}
	StrokeRect(img, image.Rect(5, 5, 25, 25), 2, green)

	if got := img.RGBAAt(5, 5); got != green {
		t.Errorf("border pixel = %v, want %v", got, green)
	}
	if got := img.RGBAAt(15, 15); got == green {
		t.Error("interior pixel was filled by stroke")
	}
}

func TestDrawLabelMarksPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 30))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	DrawLabel(img, 4, 20, "CAM 01", white)

	marked := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y) == white {
				marked++
			}
		}
	}
	if marked == 0 {
		t.Error("label drew no pixels")
	}
}

func TestLabelWidthGrowsWithText(t *testing.T) {
	short := LabelWidth("ab")
	long := LabelWidth("abcdef")
	if long <= short {
		t.Errorf("width(abcdef)=%d not greater than width(ab)=%d", long, short)
	}
}

func TestLerpEndpointsAndClamp(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	b := color.RGBA{R: 200, G: 0, B: 100, A: 255}

	if got := Lerp(a, b, 0); got != a {
		t.Errorf("t=0: got %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("t=1: got %v, want %v", got, b)
	}
	if got := Lerp(a, b, -5); got != a {
		t.Errorf("t clamped low: got %v, want %v", got, a)
	}
	mid := Lerp(a, b, 0.5)
	if mid.R != 100 {
		t.Errorf("midpoint R = %d, want 100", mid.R)
	}
}

func TestCloneRGBAIsIndependent(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	orig := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	FillRect(src, src.Bounds(), orig)

	clone := CloneRGBA(src)
	clone.SetRGBA(3, 3, color.RGBA{R: 255, A: 255})

	if got := src.RGBAAt(3, 3); got != orig {
		t.Errorf("mutating clone changed source pixel to %v", got)
	}
}

func TestEncodeJPEGRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	FillRect(src, src.Bounds(), color.RGBA{R: 120, G: 80, B: 40, A: 255})

	data, err := EncodeJPEG(src, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("decoded size = %dx%d, want 32x16", b.Dx(), b.Dy())
	}
}
