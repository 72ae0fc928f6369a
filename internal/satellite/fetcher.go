// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

// Package satellite serves NASA GIBS WMS imagery with a synthetic fallback.
//
// GIBS answers invalid layer/date combinations with an XML service
// exception and HTTP 200, so the Content-Type is checked explicitly; any
// non-image response counts as a provider failure. Failures fall through
// to a procedurally generated raster and raise a WARNING alert. Imagery
// changes on a daily cadence at best, so results are cached aggressively.
package satellite

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"net/url"
	"strconv"
	"strings"
	"time"

	// GIBS GetMap responses are JPEG; register the decoder.
	_ "image/jpeg"

	"github.com/tomtom215/aetherwatch/internal/alerts"
	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/imaging"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

const (
	providerName = "nasa-gibs"

	dateLayout = "2006-01-02"

	satJPEGQuality = 85

	// Height floor and ceiling around the bbox-derived aspect ratio.
	// Extreme tall-narrow boxes would otherwise request absurd tiles.
	minImageHeight = 200
	maxImageHeight = 4096

	liveBannerHeight = 22
)

// Image is one rendered satellite view plus its provenance.
type Image struct {
	JPEG      []byte             `json:"-"`
	Layer     Layer              `json:"layer"`
	Date      string             `json:"date"`
	BBox      models.BoundingBox `json:"bbox"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Live      bool               `json:"is_live"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Fetcher retrieves GIBS imagery for a layer, date and bounding box,
// falling back to the synthetic renderer when the provider misbehaves.
type Fetcher struct {
	client  *upstream.Client
	cache   *cache.Cache
	alerts  *alerts.Dispatcher
	baseURL string
	width   int
	lagDays int
	now     func() time.Time
}

// NewFetcher wires a satellite fetcher from config. The dispatcher may be
// nil, in which case provider failures are logged but raise no alert.
func NewFetcher(cfg config.SatelliteConfig, c *cache.Cache, dispatcher *alerts.Dispatcher) *Fetcher {
	width := cfg.Width
	if width <= 0 {
		width = 800
	}
	return &Fetcher{
		client:  upstream.NewClient(providerName, cfg.RequestTimeout, 2.0, 4),
		cache:   c,
		alerts:  dispatcher,
		baseURL: cfg.BaseURL,
		width:   width,
		lagDays: cfg.DateLagDays,
		now:     time.Now,
	}
}

// DefaultDate returns the most recent date GIBS is expected to have
// processed, today minus the configured availability lag.
func (f *Fetcher) DefaultDate() string {
	return f.now().UTC().AddDate(0, 0, -f.lagDays).Format(dateLayout)
}

// AvailableDates lists the last count dates ending at the default date,
// newest first.
func (f *Fetcher) AvailableDates(count int) []string {
	if count < 1 {
		count = 1
	}
	end := f.now().UTC().AddDate(0, 0, -f.lagDays)
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, end.AddDate(0, 0, -i).Format(dateLayout))
	}
	return dates
}

// Status reports GIBS availability for the status endpoint.
func (f *Fetcher) Status() models.ProviderStatus {
	return models.ProviderStatus{Name: providerName, Available: f.client.Available()}
}

// RegionImage renders a preset region. An empty date selects the default.
func (f *Fetcher) RegionImage(ctx context.Context, layerKey, date, regionKey string) (Image, error) {
	region, err := RegionByKey(regionKey)
	if err != nil {
		return Image{}, err
	}
	return f.Image(ctx, layerKey, date, region.BBox)
}

// Image renders a layer over an arbitrary bounding box. Provider failures
// degrade to a simulated raster; only invalid input or caller cancellation
// surface as errors.
func (f *Fetcher) Image(ctx context.Context, layerKey, date string, bbox models.BoundingBox) (Image, error) {
	layer, err := LayerByKey(layerKey)
	if err != nil {
		return Image{}, err
	}
	if err := bbox.Validate(); err != nil {
		return Image{}, err
	}
	if date == "" {
		date = f.DefaultDate()
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return Image{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}

	width, height := f.imageSize(bbox)

	key := cache.GenerateKey("satellite", map[string]interface{}{
		"layer": layer.GIBS,
		"date":  date,
		"bbox":  bbox.String(),
		"w":     width,
		"h":     height,
	})
	if cached, ok := f.cache.Get(key); ok {
		if img, ok := cached.(Image); ok {
			return img, nil
		}
	}

	start := time.Now()
	jpegBytes, err := f.fetchWMS(ctx, layer, date, bbox, width, height)
	metrics.RecordFetch("satellite", providerName, time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil {
			return Image{}, ctx.Err()
		}
		return f.simulated(ctx, layer, date, bbox, width, height, key, err)
	}

	img := Image{
		JPEG:      jpegBytes,
		Layer:     layer,
		Date:      date,
		BBox:      bbox,
		Width:     width,
		Height:    height,
		Live:      true,
		FetchedAt: time.Now().UTC(),
	}
	f.cache.Set(key, img)
	return img, nil
}

// simulated renders the mock raster, raises the provider alert, and caches
// the result so a dead upstream is not re-probed on every map pan.
func (f *Fetcher) simulated(ctx context.Context, layer Layer, date string, bbox models.BoundingBox, width, height int, key string, cause error) (Image, error) {
	logging.Warn().
		Err(cause).
		Str("layer", layer.GIBS).
		Str("date", date).
		Msg("Satellite imagery unavailable, using simulated raster")
	metrics.MockFallbacks.WithLabelValues("satellite").Inc()

	if f.alerts != nil {
		f.alerts.Dispatch(ctx, models.AlertWarning, "Satellite API",
			fmt.Sprintf("NASA GIBS unavailable: %v. Using simulated imagery.", cause),
			map[string]interface{}{"layer": layer.GIBS, "date": date})
	}

	jpegBytes, err := MockImage(layer, bbox, width, height)
	if err != nil {
		return Image{}, fmt.Errorf("render simulated imagery: %w", err)
	}

	img := Image{
		JPEG:      jpegBytes,
		Layer:     layer,
		Date:      date,
		BBox:      bbox,
		Width:     width,
		Height:    height,
		Live:      false,
		FetchedAt: time.Now().UTC(),
	}
	f.cache.Set(key, img)
	return img, nil
}

// imageSize derives the output size from the bbox: fixed width, height
// following the lon/lat span ratio within the configured floor and ceiling.
func (f *Fetcher) imageSize(bbox models.BoundingBox) (int, int) {
	ratio := 2.0
	if latSpan := bbox.LatSpan(); latSpan > 0 {
		ratio = bbox.LonSpan() / latSpan
	}
	if ratio <= 0 {
		ratio = 2.0
	}

	width := f.width
	height := int(float64(width) / ratio)
	if height < minImageHeight {
		height = minImageHeight
	}
	if height > maxImageHeight {
		height = maxImageHeight
	}
	return width, height
}

// fetchWMS issues the GetMap request and returns annotated JPEG bytes.
func (f *Fetcher) fetchWMS(ctx context.Context, layer Layer, date string, bbox models.BoundingBox, width, height int) ([]byte, error) {
	body, contentType, err := f.client.GetBytes(ctx, f.wmsURL(layer.GIBS, date, bbox, width, height), &upstream.ReqOptions{Accept: "image/jpeg"})
	if err != nil {
		return nil, err
	}

	// GIBS reports bad layer/date combinations as XML with HTTP 200.
	if !strings.Contains(strings.ToLower(contentType), "image") {
		return nil, fmt.Errorf("non-image response (%s), likely a WMS service exception", contentType)
	}

	decoded, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode imagery: %w", err)
	}

	annotated := imaging.CloneRGBA(decoded)
	drawLiveBanner(annotated, layer, date, bbox)
	return imaging.EncodeJPEG(annotated, satJPEGQuality)
}

// wmsURL builds the WMS 1.1.1 GetMap query for one tile.
func (f *Fetcher) wmsURL(layerID, date string, bbox models.BoundingBox, width, height int) string {
	q := url.Values{}
	q.Set("SERVICE", "WMS")
	q.Set("VERSION", "1.1.1")
	q.Set("REQUEST", "GetMap")
	q.Set("LAYERS", layerID)
	q.Set("STYLES", "")
	q.Set("SRS", "EPSG:4326")
	q.Set("BBOX", bbox.String())
	q.Set("WIDTH", strconv.Itoa(width))
	q.Set("HEIGHT", strconv.Itoa(height))
	q.Set("FORMAT", "image/jpeg")
	q.Set("TRANSPARENT", "FALSE")
	q.Set("TIME", date)
	return f.baseURL + "?" + q.Encode()
}

func drawLiveBanner(img *image.RGBA, layer Layer, date string, bbox models.BoundingBox) {
	w := img.Bounds().Dx()
	imaging.FillRect(img, image.Rect(0, 0, w, liveBannerHeight), color.RGBA{0, 0, 0, 255})
	text := fmt.Sprintf("NASA GIBS | Layer: %s | Date: %s | BBox: %s", layer.Name, date, bannerBBox(bbox))
	imaging.DrawLabel(img, 6, 15, text, color.RGBA{100, 200, 100, 255})
}
