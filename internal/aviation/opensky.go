// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

const openSkyBaseURL = "https://opensky-network.org"

// OpenSky state-vector array positions. The API returns each aircraft
// as a fixed-position heterogeneous array, not an object.
const (
	osIdxICAO24        = 0
	osIdxCallsign      = 1
	osIdxOriginCountry = 2
	osIdxLongitude     = 5
	osIdxLatitude      = 6
	osIdxBaroAltM      = 7
	osIdxOnGround      = 8
	osIdxVelocityMS    = 9
	osIdxHeading       = 10
	osIdxVerticalRate  = 11
	osIdxSquawk        = 14
)

type openSkyResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// openSkyProvider queries the OpenSky Network bbox endpoint. Unlike
// the point-radius providers it covers the whole bbox in one request.
// Anonymous access works but is heavily rate limited upstream;
// credentials raise the quota.
type openSkyProvider struct {
	baseURL string
	client  *upstream.Client
	auth    *upstream.BasicAuth
}

// NewOpenSky builds the OpenSky provider. Credentials are optional.
func NewOpenSky(cfg config.AviationConfig) Provider {
	return newOpenSkyProvider(openSkyBaseURL, cfg)
}

func newOpenSkyProvider(baseURL string, cfg config.AviationConfig) *openSkyProvider {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	var auth *upstream.BasicAuth
	if cfg.OpenSky.Username != "" {
		auth = &upstream.BasicAuth{
			Username: cfg.OpenSky.Username,
			Password: cfg.OpenSky.Password,
		}
	}

	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &openSkyProvider{
		baseURL: baseURL,
		client:  upstream.NewClient("opensky", timeout, cfg.RateLimit, burst),
		auth:    auth,
	}
}

func (p *openSkyProvider) Name() string { return "opensky" }

func (p *openSkyProvider) IsAvailable() bool { return p.client.Available() }

func (p *openSkyProvider) Fetch(ctx context.Context, bbox models.BoundingBox) ([]models.AircraftState, error) {
	params := url.Values{}
	params.Set("lamin", fmt.Sprintf("%g", bbox.South))
	params.Set("lomin", fmt.Sprintf("%g", bbox.West))
	params.Set("lamax", fmt.Sprintf("%g", bbox.North))
	params.Set("lomax", fmt.Sprintf("%g", bbox.East))

	reqURL := fmt.Sprintf("%s/api/states/all?%s", p.baseURL, params.Encode())

	var resp openSkyResponse
	opts := &upstream.ReqOptions{BasicAuth: p.auth}
	if err := p.client.GetJSON(ctx, reqURL, opts, &resp); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	out := make([]models.AircraftState, 0, len(resp.States))
	for _, row := range resp.States {
		state, ok := parseOpenSkyState(row, now)
		if !ok {
			continue
		}
		out = append(out, state)
	}
	return out, nil
}

// parseOpenSkyState maps one positional state vector into the
// canonical model. Rows too short to hold a squawk, rows without a
// position and grounded aircraft are all dropped.
func parseOpenSkyState(row []interface{}, now int64) (models.AircraftState, bool) {
	if len(row) <= osIdxSquawk {
		return models.AircraftState{}, false
	}

	lat, latOK := floatAt(row, osIdxLatitude)
	lon, lonOK := floatAt(row, osIdxLongitude)
	if !latOK || !lonOK || !models.ValidPosition(lat, lon) {
		return models.AircraftState{}, false
	}

	if boolAt(row, osIdxOnGround) {
		return models.AircraftState{}, false
	}

	altM, _ := floatAt(row, osIdxBaroAltM)
	velMS, _ := floatAt(row, osIdxVelocityMS)
	heading, _ := floatAt(row, osIdxHeading)
	vertMS, _ := floatAt(row, osIdxVerticalRate)

	return models.AircraftState{
		ICAO24:          stringAt(row, osIdxICAO24),
		Callsign:        normalizeCallsign(stringAt(row, osIdxCallsign)),
		OriginCountry:   stringAt(row, osIdxOriginCountry),
		Latitude:        lat,
		Longitude:       lon,
		AltitudeFt:      altM * metersToFeet,
		OnGround:        false,
		VelocityKts:     velMS * msToKnots,
		Heading:         heading,
		VerticalRateFPM: vertMS * msToFeetPerMin,
		Squawk:          normalizeSquawk(stringAt(row, osIdxSquawk)),
		AircraftType:    "",
		LastContact:     now,
		IsMock:          false,
	}, true
}

func stringAt(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func floatAt(row []interface{}, i int) (float64, bool) {
	if i >= len(row) {
		return 0, false
	}
	v, ok := row[i].(float64)
	return v, ok
}

func boolAt(row []interface{}, i int) bool {
	if i >= len(row) {
		return false
	}
	b, _ := row[i].(bool)
	return b
}
