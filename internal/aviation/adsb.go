// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

const (
	adsbFiBaseURL  = "https://opendata.adsb.fi/api"
	adsbLolBaseURL = "https://api.adsb.lol"
)

// maxGridPoints bounds how many point queries a single fetch may fan
// out to, regardless of bbox size. Oversized boxes get sampled rather
// than fully covered.
const maxGridPoints = 24

// adsbAircraft is the wire shape shared by adsb.fi and adsb.lol point
// responses. Positions are pointers so absent coordinates can be told
// apart from 0,0.
type adsbAircraft struct {
	Hex      string          `json:"hex"`
	Flight   string          `json:"flight"`
	Reg      string          `json:"r"`
	Type     string          `json:"t"`
	Lat      *float64        `json:"lat"`
	Lon      *float64        `json:"lon"`
	AltBaro  json.RawMessage `json:"alt_baro"`
	GS       float64         `json:"gs"`
	Track    float64         `json:"track"`
	BaroRate float64         `json:"baro_rate"`
	Squawk   string          `json:"squawk"`
}

type adsbResponse struct {
	AC []adsbAircraft `json:"ac"`
}

// pointRadiusProvider queries an adsb.fi-compatible API. The endpoint
// only serves point/radius lookups, so a bbox is approximated by a
// grid of center points queried concurrently and merged through a
// seen-set keyed by hex id.
type pointRadiusProvider struct {
	name        string
	baseURL     string
	client      *upstream.Client
	radiusNM    float64
	concurrency int
}

// NewAdsbFi builds the adsb.fi provider.
func NewAdsbFi(cfg config.AviationConfig) Provider {
	return newPointRadiusProvider("adsbfi", adsbFiBaseURL, cfg)
}

// NewAdsbLol builds the adsb.lol provider. Same wire shape as adsb.fi,
// alternate operator.
func NewAdsbLol(cfg config.AviationConfig) Provider {
	return newPointRadiusProvider("adsblol", adsbLolBaseURL, cfg)
}

func newPointRadiusProvider(name, baseURL string, cfg config.AviationConfig) *pointRadiusProvider {
	burst := cfg.RateBurst
	if burst < maxGridPoints {
		burst = maxGridPoints
	}

	concurrency := cfg.GridConcurrency
	if concurrency < 1 {
		concurrency = 4
	}

	radius := cfg.RadiusNM
	if radius <= 0 {
		radius = 250
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &pointRadiusProvider{
		name:        name,
		baseURL:     baseURL,
		client:      upstream.NewClient(name, timeout, cfg.RateLimit, burst),
		radiusNM:    radius,
		concurrency: concurrency,
	}
}

func (p *pointRadiusProvider) Name() string { return p.name }

func (p *pointRadiusProvider) IsAvailable() bool { return p.client.Available() }

// Fetch covers bbox with a grid of point queries. A point query that
// fails is tolerated as long as at least one other point succeeds;
// only a full wipeout fails the provider.
func (p *pointRadiusProvider) Fetch(ctx context.Context, bbox models.BoundingBox) ([]models.AircraftState, error) {
	points := gridPoints(bbox, p.radiusNM, maxGridPoints)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
		out  []models.AircraftState
		errs []error
	)

	sem := make(chan struct{}, p.concurrency)
	now := time.Now().Unix()

	for _, pt := range points {
		wg.Add(1)
		sem <- struct{}{}

		go func(pt gridPoint) {
			defer wg.Done()
			defer func() { <-sem }()

			batch, err := p.fetchPoint(ctx, pt)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, err)
				return
			}
			for _, ac := range batch.AC {
				state, ok := normalizeAdsb(ac, now)
				if !ok {
					continue
				}
				if _, dup := seen[state.ICAO24]; dup {
					continue
				}
				seen[state.ICAO24] = struct{}{}
				out = append(out, state)
			}
		}(pt)
	}

	wg.Wait()

	if len(errs) == len(points) {
		return nil, fmt.Errorf("%s: all %d grid points failed: %w", p.name, len(points), errors.Join(errs...))
	}

	return out, nil
}

func (p *pointRadiusProvider) fetchPoint(ctx context.Context, pt gridPoint) (*adsbResponse, error) {
	url := fmt.Sprintf("%s/v2/point/%.4f/%.4f/%.0f", p.baseURL, pt.lat, pt.lon, p.radiusNM)

	var resp adsbResponse
	if err := p.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// normalizeAdsb maps one wire record into the canonical state. Records
// without a usable position are dropped; grounded aircraft are dropped
// by the airborne filter.
func normalizeAdsb(ac adsbAircraft, now int64) (models.AircraftState, bool) {
	if ac.Lat == nil || ac.Lon == nil {
		return models.AircraftState{}, false
	}
	if !models.ValidPosition(*ac.Lat, *ac.Lon) {
		return models.AircraftState{}, false
	}

	altFt, onGround := parseAltBaro(ac.AltBaro)
	if onGround {
		return models.AircraftState{}, false
	}

	return models.AircraftState{
		ICAO24:          ac.Hex,
		Callsign:        normalizeCallsign(ac.Flight),
		OriginCountry:   ac.Reg,
		Latitude:        *ac.Lat,
		Longitude:       *ac.Lon,
		AltitudeFt:      altFt,
		OnGround:        false,
		VelocityKts:     ac.GS,
		Heading:         ac.Track,
		VerticalRateFPM: ac.BaroRate,
		Squawk:          normalizeSquawk(ac.Squawk),
		AircraftType:    ac.Type,
		LastContact:     now,
		IsMock:          false,
	}, true
}

// parseAltBaro handles the two shapes alt_baro takes on the wire: a
// number in feet, or the literal string "ground".
func parseAltBaro(raw json.RawMessage) (altFt float64, onGround bool) {
	if len(raw) == 0 {
		return 0, false
	}
	if string(raw) == `"ground"` {
		return 0, true
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, false
}

type gridPoint struct {
	lat float64
	lon float64
}

// gridPoints computes query centers so that circles of radiusNM cover
// bbox. A circle of radius r covers an inscribed square of side r*√2,
// and one degree of latitude is 60 NM; longitude steps widen with
// latitude. When full coverage would exceed maxPoints the grid is
// rescaled to sample the box evenly instead.
func gridPoints(bbox models.BoundingBox, radiusNM float64, maxPoints int) []gridPoint {
	latSpan := bbox.LatSpan()
	lonSpan := bbox.LonSpan()

	step := radiusNM * math.Sqrt2 / 60.0
	if step <= 0 {
		step = 1
	}

	rows := int(math.Ceil(latSpan / step))
	if rows < 1 {
		rows = 1
	}

	midLat := (bbox.South + bbox.North) / 2
	cosMid := math.Cos(midLat * math.Pi / 180)
	if cosMid < 0.2 {
		cosMid = 0.2
	}

	cols := int(math.Ceil(lonSpan / (step / cosMid)))
	if cols < 1 {
		cols = 1
	}

	if rows*cols > maxPoints {
		scale := math.Sqrt(float64(maxPoints) / float64(rows*cols))
		rows = int(float64(rows) * scale)
		if rows < 1 {
			rows = 1
		}
		cols = maxPoints / rows
		if cols < 1 {
			cols = 1
		}
	}

	points := make([]gridPoint, 0, rows*cols)
	for i := 0; i < rows; i++ {
		lat := bbox.South + (float64(i)+0.5)*latSpan/float64(rows)
		for j := 0; j < cols; j++ {
			lon := bbox.West + (float64(j)+0.5)*lonSpan/float64(cols)
			points = append(points, gridPoint{lat: lat, lon: lon})
		}
	}
	return points
}
