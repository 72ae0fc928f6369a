// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package camera

import (
	"hash/fnv"
	"image"
	"image/color"
	"math/rand"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/imaging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

const (
	mockFrameWidth  = 640
	mockFrameHeight = 360
	mockJPEGQuality = 72
)

var (
	vehiclePalette = []color.RGBA{
		{192, 57, 43, 255},   // red
		{41, 128, 185, 255},  // blue
		{39, 174, 96, 255},   // green
		{243, 156, 18, 255},  // orange
		{142, 68, 173, 255},  // purple
		{236, 240, 241, 255}, // white
		{44, 62, 80, 255},    // dark grey
	}

	buildingPalette = []color.RGBA{
		{40, 40, 50, 255},
		{50, 50, 65, 255},
		{35, 35, 45, 255},
	}

	// Weighted so most traffic is cars.
	vehicleKinds = []string{"car", "car", "car", "truck", "bus"}

	mockHours = []int{6, 8, 10, 12, 14, 16, 18, 20}
)

type mockVehicle struct {
	x, y  float64
	speed float64
	fill  color.RGBA
	kind  string
	lane  int
}

// camScene is the persistent simulation state for one camera. The backdrop
// (sky, skyline, road) is rendered once at creation; only the vehicles and
// the HUD change between frames.
type camScene struct {
	rng      *rand.Rand
	backdrop *image.RGBA
	vehicles []mockVehicle
}

// MockRenderer produces synthetic traffic-camera frames when a live feed is
// unavailable. Scenes are keyed by camera id and seeded from it, so the same
// camera always gets the same skyline and vehicle fleet, and successive
// frames animate instead of resetting. Frames carry a SIMULATED banner so
// they can never pass for live footage.
type MockRenderer struct {
	mu     sync.Mutex
	scenes map[string]*camScene
	now    func() time.Time
}

func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		scenes: make(map[string]*camScene),
		now:    time.Now,
	}
}

// Render advances the camera's simulation by one step and returns the frame
// as JPEG bytes.
func (m *MockRenderer) Render(desc models.CameraDescriptor) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scene, ok := m.scenes[desc.ID]
	if !ok {
		scene = newCamScene(desc.ID)
		m.scenes[desc.ID] = scene
	}

	scene.advance()

	frame := image.NewRGBA(scene.backdrop.Bounds())
	copy(frame.Pix, scene.backdrop.Pix)

	for _, v := range scene.vehicles {
		drawVehicle(frame, v)
	}
	drawHUD(frame, desc, m.now().UTC())

	return imaging.EncodeJPEG(frame, mockJPEGQuality)
}

func newCamScene(id string) *camScene {
	//nolint:gosec // math/rand is fine for synthetic demo frames
	rng := rand.New(rand.NewSource(sceneSeed(id)))

	s := &camScene{rng: rng}
	s.backdrop = renderBackdrop(rng, mockHours[rng.Intn(len(mockHours))])

	count := 4 + rng.Intn(9)
	for i := 0; i < count; i++ {
		s.vehicles = append(s.vehicles, mockVehicle{
			x:     50 + rng.Float64()*(mockFrameWidth-100),
			y:     mockFrameHeight*0.55 + rng.Float64()*mockFrameHeight*0.30,
			speed: 0.5 + rng.Float64()*2.0,
			fill:  vehiclePalette[rng.Intn(len(vehiclePalette))],
			kind:  vehicleKinds[rng.Intn(len(vehicleKinds))],
			lane:  rng.Intn(3),
		})
	}
	return s
}

func sceneSeed(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}

// advance scrolls each vehicle along its lane, wrapping at the frame edges.
// Odd lanes travel right-to-left.
func (s *camScene) advance() {
	for i := range s.vehicles {
		v := &s.vehicles[i]
		dir := 1.0
		if v.lane%2 == 1 {
			dir = -1.0
		}
		v.x += dir * v.speed * 0.5
		if v.x > mockFrameWidth+80 {
			v.x = -80
		} else if v.x < -80 {
			v.x = mockFrameWidth + 80
		}
	}
}

// renderBackdrop draws the static scene: a time-of-day sky gradient, a
// building silhouette along the horizon, and the road surface with dashed
// lane markings.
func renderBackdrop(rng *rand.Rand, hour int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, mockFrameWidth, mockFrameHeight))

	var top, bottom color.RGBA
	switch {
	case hour >= 5 && hour < 7: // dawn
		top, bottom = color.RGBA{255, 140, 0, 255}, color.RGBA{255, 200, 100, 255}
	case hour >= 7 && hour < 18: // day
		top, bottom = color.RGBA{30, 100, 200, 255}, color.RGBA{135, 185, 235, 255}
	case hour >= 18 && hour < 20: // dusk
		top, bottom = color.RGBA{200, 70, 30, 255}, color.RGBA{255, 160, 80, 255}
	default: // night
		top, bottom = color.RGBA{5, 5, 20, 255}, color.RGBA{20, 20, 60, 255}
	}

	skyH := int(mockFrameHeight * 0.45)
	for y := 0; y < skyH; y++ {
		ratio := float64(y) / float64(skyH)
		imaging.FillRect(img, image.Rect(0, y, mockFrameWidth, y+1), imaging.Lerp(top, bottom, ratio))
	}

	horizonY := int(mockFrameHeight * 0.45)
	imaging.FillRect(img, image.Rect(0, horizonY, mockFrameWidth, mockFrameHeight), color.RGBA{80, 80, 80, 255})

	roadY := int(mockFrameHeight * 0.5)
	imaging.FillRect(img, image.Rect(0, roadY, mockFrameWidth, mockFrameHeight), color.RGBA{55, 55, 55, 255})

	const dashW, dashH, gap = 40, 4, 30
	frameH := float64(mockFrameHeight)
	for _, laneY := range []int{int(0.63 * frameH), int(0.75 * frameH)} {
		for x := 0; x < mockFrameWidth; x += dashW + gap {
			imaging.FillRect(img, image.Rect(x, laneY, x+dashW, laneY+dashH), color.RGBA{220, 220, 140, 255})
		}
	}

	drawSkyline(img, rng, horizonY)
	return img
}

func drawSkyline(img *image.RGBA, rng *rand.Rand, horizonY int) {
	for x := 0; x < mockFrameWidth; {
		bw := 30 + rng.Intn(51)
		bh := 30 + rng.Intn(71)
		by := horizonY - bh
		imaging.FillRect(img, image.Rect(x, by, x+bw, horizonY), buildingPalette[rng.Intn(len(buildingPalette))])

		// Lit and dark windows.
		for wy := by + 5; wy < horizonY-5; wy += 12 {
			for wx := x + 4; wx < x+bw-4; wx += 8 {
				if rng.Float64() > 0.4 {
					wc := color.RGBA{50, 50, 80, 255}
					if rng.Float64() > 0.3 {
						wc = color.RGBA{255, 240, 150, 255}
					}
					imaging.FillRect(img, image.Rect(wx, wy, wx+4, wy+6), wc)
				}
			}
		}
		x += bw + 2 + rng.Intn(9)
	}
}

func drawVehicle(img *image.RGBA, v mockVehicle) {
	x, y := int(v.x), int(v.y)

	var w, h int
	switch v.kind {
	case "truck":
		w, h = 50, 18
	case "bus":
		w, h = 55, 20
	default:
		w, h = 30, 14
	}

	imaging.FillRect(img, image.Rect(x, y-h, x+w, y), v.fill)
	imaging.FillRect(img, image.Rect(x+4, y-h+2, x+w-4, y-h+8), color.RGBA{150, 200, 255, 255})
	for _, wx := range []int{x + 5, x + w - 8} {
		imaging.FillEllipse(img, image.Rect(wx, y-3, wx+6, y+3), color.RGBA{20, 20, 20, 255})
	}
}

func drawHUD(img *image.RGBA, desc models.CameraDescriptor, now time.Time) {
	black := color.RGBA{0, 0, 0, 255}

	imaging.FillRect(img, image.Rect(0, 0, mockFrameWidth, 28), black)
	banner := desc.Name + " | " + now.Format("2006-01-02 15:04:05 UTC") + " | SIMULATED FEED"
	imaging.DrawLabel(img, 6, 18, banner, color.RGBA{255, 60, 60, 255})

	imaging.FillRect(img, image.Rect(0, mockFrameHeight-24, mockFrameWidth, mockFrameHeight), black)
	footer := desc.City
	if desc.Description != "" {
		footer += " - " + desc.Description
	}
	imaging.DrawLabel(img, 6, mockFrameHeight-8, footer, color.RGBA{200, 200, 200, 255})
}
