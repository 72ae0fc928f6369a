// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package camera

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// builtinCameras seeds the registry with publicly accessible feeds from
// government and municipal traffic systems. Only open feeds belong here.
var builtinCameras = []models.CameraDescriptor{
	{
		ID: "cam_nyc_01", Name: "NYC - Manhattan Bridge",
		URL:      "https://511ny.org/cameras/statewide/NYSDOT/camera000001.jpg",
		Kind:     models.FeedStatic,
		Latitude: 40.7074, Longitude: -73.9903,
		City: "New York, USA", Description: "Manhattan Bridge approach",
	},
	{
		ID: "cam_chi_01", Name: "Chicago - Lake Shore Dr",
		URL:      "https://www.chicago.gov/content/dam/city/depts/cdot/traffic_video/camera_1.jpg",
		Kind:     models.FeedStatic,
		Latitude: 41.8827, Longitude: -87.6233,
		City: "Chicago, USA", Description: "Lake Shore Drive downtown",
	},
	{
		ID: "cam_la_01", Name: "Los Angeles - I-405",
		URL:      "https://cwwp2.dot.ca.gov/vm/streamhub/CCTV1090.jpg",
		Kind:     models.FeedStatic,
		Latitude: 33.9416, Longitude: -118.4085,
		City: "Los Angeles, USA", Description: "I-405 near LAX",
	},
	{
		ID: "cam_ga_01", Name: "Atlanta - I-75 North",
		URL:      "https://www.511ga.org/imap/images/cameras/GDOT001.jpg",
		Kind:     models.FeedStatic,
		Latitude: 33.7490, Longitude: -84.3880,
		City: "Atlanta, USA", Description: "I-75 northbound",
	},
	{
		ID: "cam_london_01", Name: "London - Tower Bridge",
		URL:      "https://www.tfl.gov.uk/tfl/livetravelnews/realtime/cctv/14401.jpg",
		Kind:     models.FeedStatic,
		Latitude: 51.5055, Longitude: -0.0754,
		City: "London, UK", Description: "Tower Bridge approach",
	},
	{
		ID: "cam_pearson_01", Name: "Toronto - Pearson Airport Approach",
		URL:      "https://511on.ca/api/v2/get/cameras?lang=en&format=json",
		Kind:     models.FeedStatic,
		Latitude: 43.6777, Longitude: -79.6248,
		City: "Toronto, Canada", Description: "Airport approach corridor",
	},
	{
		ID: "cam_beach_01", Name: "Miami - South Beach",
		URL:      "https://www.earthcam.com/usa/florida/miami/southbeach/?cam=southbeach",
		Kind:     models.FeedStatic,
		Latitude: 25.7617, Longitude: -80.1918,
		City: "Miami, USA", Description: "South Beach boardwalk",
	},
	{
		ID: "cam_port_01", Name: "Los Angeles - Port of LA",
		URL:      "https://www.portoflosangeles.org/img/cams/cam1.jpg",
		Kind:     models.FeedStatic,
		Latitude: 33.7397, Longitude: -118.2640,
		City: "San Pedro, USA", Description: "Main channel and terminals",
	},
	{
		ID: "cam_sea_01", Name: "Seattle - I-5 Downtown",
		URL:      "https://images.wsdot.wa.gov/nw/005vc13581.jpg",
		Kind:     models.FeedStatic,
		Latitude: 47.6062, Longitude: -122.3321,
		City: "Seattle, USA", Description: "I-5 through downtown",
	},
	{
		ID: "cam_vegas_01", Name: "Las Vegas - The Strip",
		URL:      "https://nvroads.com/cctvimage/NV_CCTV_1001.jpg",
		Kind:     models.FeedStatic,
		Latitude: 36.1699, Longitude: -115.1398,
		City: "Las Vegas, USA", Description: "Las Vegas Blvd",
	},
}

// Registry holds camera descriptors and their fetch health. Descriptors are
// immutable once registered; runtime additions share the builtin shape.
type Registry struct {
	mu       sync.RWMutex
	cameras  map[string]models.CameraDescriptor
	order    []string
	statuses map[string]models.CameraStatus
}

// NewRegistry returns a registry seeded with the builtin cameras.
func NewRegistry() *Registry {
	r := &Registry{
		cameras:  make(map[string]models.CameraDescriptor, len(builtinCameras)),
		statuses: make(map[string]models.CameraStatus, len(builtinCameras)),
	}
	for _, c := range builtinCameras {
		r.cameras[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

// Cameras returns all descriptors in registration order.
func (r *Registry) Cameras() []models.CameraDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CameraDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cameras[id])
	}
	return out
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (models.CameraDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cameras[id]
	return c, ok
}

// Add registers a camera at runtime. IDs must be unique.
func (r *Registry) Add(desc models.CameraDescriptor) error {
	if !desc.Kind.Valid() {
		return fmt.Errorf("camera %q: unsupported feed kind %q", desc.ID, desc.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cameras[desc.ID]; exists {
		return fmt.Errorf("camera %q already registered", desc.ID)
	}
	r.cameras[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	return nil
}

// Statuses returns a snapshot of per-camera fetch health keyed by id.
// Cameras never fetched report a zero status.
func (r *Registry) Statuses() map[string]models.CameraStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.CameraStatus, len(r.order))
	for _, id := range r.order {
		out[id] = r.statuses[id]
	}
	return out
}

// Status returns the fetch health for one camera.
func (r *Registry) Status(id string) (models.CameraStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[id]
	return s, ok
}

// OnlineCount returns how many tracked cameras are currently online.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.statuses {
		if s.Online {
			n++
		}
	}
	return n
}

// recordSuccess marks a camera online and resets its failure streak.
func (r *Registry) recordSuccess(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[id] = models.CameraStatus{
		Online:      true,
		LastSuccess: time.Now().UTC(),
		FailCount:   0,
	}
}

// recordFailure increments the failure streak and reports whether this
// failure should be logged. Only every 5th consecutive failure is logged
// to keep a flapping camera from flooding the log.
func (r *Registry) recordFailure(id string) (failCount int, shouldLog bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.statuses[id]
	s.FailCount++
	s.Online = false
	r.statuses[id] = s
	return s.FailCount, s.FailCount%5 == 1
}

