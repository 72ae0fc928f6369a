// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// Airports anchoring synthetic flight paths. Mock aircraft fly
// interpolated routes between random origin/destination pairs so the
// map looks like real traffic rather than uniform noise.
var mockAirports = []struct {
	code string
	lat  float64
	lon  float64
	city string
}{
	{"KJFK", 40.6413, -73.7781, "New York"},
	{"KLAX", 33.9416, -118.4085, "Los Angeles"},
	{"KORD", 41.9742, -87.9073, "Chicago"},
	{"KDEN", 39.8561, -104.6737, "Denver"},
	{"KMIA", 25.7959, -80.2870, "Miami"},
	{"EGLL", 51.4700, -0.4543, "London"},
	{"LFPG", 49.0097, 2.5479, "Paris"},
	{"EDDF", 50.0379, 8.5622, "Frankfurt"},
	{"RJTT", 35.5533, 139.7811, "Tokyo"},
	{"OMDB", 25.2528, 55.3644, "Dubai"},
	{"YSSY", -33.9461, 151.1772, "Sydney"},
	{"SBGR", -23.4356, -46.4731, "São Paulo"},
	{"FAOR", -26.1392, 28.2460, "Johannesburg"},
	{"VHHH", 22.3080, 113.9185, "Hong Kong"},
	{"WSSS", 1.3644, 103.9915, "Singapore"},
}

var mockAircraftTypes = []string{
	"B738", "B739", "B77W", "B787", "B748",
	"A320", "A321", "A330", "A350", "A380",
	"E190", "CRJ9", "DH8D", "C172", "GLF6",
}

var mockAirlines = []string{
	"UAL", "DAL", "AAL", "SWA", "BAW", "DLH",
	"AFR", "UAE", "QFA", "SIA", "CPA", "ANA",
}

var mockCountries = []string{
	"United States", "United Kingdom", "Germany", "France",
	"Japan", "Australia", "UAE", "Singapore", "Canada", "Brazil",
}

// Generator produces synthetic aircraft when every live provider has
// failed. It cannot fail and every record it emits carries
// is_mock=true.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the clock.
func NewGenerator() *Generator {
	//nolint:gosec // math/rand is fine for synthetic demo data
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// newSeededGenerator pins the seed for reproducible tests.
func newSeededGenerator(seed int64) *Generator {
	//nolint:gosec // math/rand is fine for synthetic demo data
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns count synthetic airborne aircraft scattered along
// routes between major airports.
func (g *Generator) Generate(count int) []models.AircraftState {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC().Unix()
	out := make([]models.AircraftState, 0, count)

	for i := 0; i < count; i++ {
		origin := mockAirports[g.rng.Intn(len(mockAirports))]
		dest := origin
		for dest.code == origin.code {
			dest = mockAirports[g.rng.Intn(len(mockAirports))]
		}

		// Position along a linear route approximation with gaussian
		// jitter so successive batches do not overlap exactly.
		t := g.rng.Float64()
		lat := origin.lat + t*(dest.lat-origin.lat) + g.rng.NormFloat64()*0.3
		lon := origin.lon + t*(dest.lon-origin.lon) + g.rng.NormFloat64()*0.3
		lat = math.Max(-85, math.Min(85, lat))
		lon = math.Max(-180, math.Min(180, lon))

		heading := math.Mod(
			math.Atan2(dest.lon-origin.lon, dest.lat-origin.lat)*180/math.Pi+360,
			360,
		)
		// Rounding to one decimal can land exactly on 360.
		heading = math.Mod(math.Round(heading*10)/10, 360)

		airline := mockAirlines[g.rng.Intn(len(mockAirlines))]

		out = append(out, models.AircraftState{
			ICAO24:          fmt.Sprintf("%06x", g.rng.Intn(0x1000000)),
			Callsign:        fmt.Sprintf("%s%d", airline, 100+g.rng.Intn(9900)),
			OriginCountry:   mockCountries[g.rng.Intn(len(mockCountries))],
			Latitude:        round4(lat),
			Longitude:       round4(lon),
			AltitudeFt:      float64(15000 + g.rng.Intn(27001)),
			OnGround:        false,
			VelocityKts:     float64(350 + g.rng.Intn(231)),
			Heading:         heading,
			VerticalRateFPM: float64(-1500 + g.rng.Intn(3001)),
			Squawk:          fmt.Sprintf("%04o", g.rng.Intn(0o10000)),
			AircraftType:    mockAircraftTypes[g.rng.Intn(len(mockAircraftTypes))],
			LastContact:     now,
			IsMock:          true,
		})
	}

	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
