// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	// Frames arrive as JPEG from the camera path but detect is also fed
	// uploaded stills; register the common decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/tomtom215/aetherwatch/internal/imaging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

const (
	annotationJPEGQuality = 85
	labelBarHeight        = 14
	statsBarHeight        = 20
)

// classColors follows the dashboard's marker scheme; unknown classes get
// white.
var classColors = map[string]color.RGBA{
	"person":     {255, 68, 68, 255},
	"car":        {68, 255, 68, 255},
	"truck":      {255, 136, 0, 255},
	"bus":        {255, 136, 0, 255},
	"motorcycle": {0, 255, 255, 255},
	"bicycle":    {255, 255, 0, 255},
	"airplane":   {255, 68, 255, 255},
	"boat":       {68, 136, 255, 255},
}

func classColor(name string) color.RGBA {
	if c, ok := classColors[name]; ok {
		return c
	}
	return color.RGBA{255, 255, 255, 255}
}

// annotateFrame draws boxes, labels and a bottom count bar on a copy of
// the frame and returns the new JPEG plus the frame dimensions. If the
// frame does not decode, the original bytes pass through unchanged with
// zero dimensions.
func annotateFrame(frame []byte, detections []models.Detection) ([]byte, int, int) {
	decoded, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return frame, 0, 0
	}

	img := imaging.CloneRGBA(decoded)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	for _, det := range detections {
		c := classColor(det.ClassName)
		imaging.StrokeRect(img, image.Rect(det.X1, det.Y1, det.X2, det.Y2), 2, c)

		label := fmt.Sprintf("%s %.0f%%", det.ClassName, det.Confidence*100)
		labelW := imaging.LabelWidth(label) + 4
		imaging.FillRect(img, image.Rect(det.X1, det.Y1-labelBarHeight, det.X1+labelW, det.Y1), c)
		imaging.DrawLabel(img, det.X1+2, det.Y1-3, label, color.RGBA{0, 0, 0, 255})
	}

	if len(detections) > 0 {
		drawStatsBar(img, detections)
	}

	out, err := imaging.EncodeJPEG(img, annotationJPEGQuality)
	if err != nil {
		return frame, w, h
	}
	return out, w, h
}

// drawStatsBar writes per-class counts along the bottom edge, the same
// summary the dashboard shows under each feed.
func drawStatsBar(img *image.RGBA, detections []models.Detection) {
	counts := make(map[string]int)
	for _, det := range detections {
		counts[det.ClassName]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}

	h := img.Bounds().Dy()
	w := img.Bounds().Dx()
	imaging.FillRect(img, image.Rect(0, h-statsBarHeight, w, h), color.RGBA{0, 0, 0, 255})
	imaging.DrawLabel(img, 4, h-6, "Detected: "+strings.Join(parts, "  "), color.RGBA{100, 255, 100, 255})
}

// passthroughFrame marks a frame as not analyzed. Undecodable input is
// returned untouched.
func passthroughFrame(frame []byte) []byte {
	decoded, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return frame
	}

	img := imaging.CloneRGBA(decoded)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	imaging.FillRect(img, image.Rect(0, h-statsBarHeight, w, h), color.RGBA{0, 0, 0, 255})
	imaging.DrawLabel(img, 4, h-6, "detection unavailable", color.RGBA{150, 150, 150, 255})

	out, err := imaging.EncodeJPEG(img, annotationJPEGQuality)
	if err != nil {
		return frame
	}
	return out
}
