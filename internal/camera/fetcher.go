// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package camera fetches single frames from public traffic cameras.

Two feed kinds are supported: static still images behind a plain GET, and
MJPEG streams from which the first complete JPEG frame is extracted. Any
fetch failure falls through to a per-camera animated synthetic frame, so a
frame is always produced. Fetch health is tracked per camera in the
Registry; a camera that goes dark is logged on every 5th consecutive
failure only.
*/
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	// Static cameras serve PNG or GIF occasionally; register the decoders.
	_ "image/gif"
	_ "image/png"

	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/imaging"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

const (
	defaultFetchTimeout   = 6 * time.Second
	defaultMaxStreamBytes = 1 << 20
	liveJPEGQuality       = 80

	// Static frames are capped well above any sane camera still.
	maxStaticBytes = 8 << 20

	cameraUserAgent = "Mozilla/5.0 (compatible; AetherWatch/1.0)"

	streamChunkSize = 4096
)

var (
	jpegSOI = []byte{0xff, 0xd8}
	jpegEOI = []byte{0xff, 0xd9}
)

// Frame is one captured camera frame. Live is false when the frame came
// from the synthetic renderer.
type Frame struct {
	CameraID  string    `json:"camera_id"`
	JPEG      []byte    `json:"-"`
	Live      bool      `json:"live"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher retrieves camera frames with mock fallback and short-TTL caching.
// Live frames are cached; synthetic frames are regenerated on every call so
// the simulation keeps animating.
type Fetcher struct {
	httpc          *http.Client
	registry       *Registry
	mock           *MockRenderer
	cache          *cache.Cache
	maxStreamBytes int64
}

func NewFetcher(cfg config.CameraConfig, reg *Registry, c *cache.Cache) *Fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxStream := cfg.MaxStreamBytes
	if maxStream <= 0 {
		maxStream = defaultMaxStreamBytes
	}

	return &Fetcher{
		httpc:          &http.Client{Timeout: timeout},
		registry:       reg,
		mock:           NewMockRenderer(),
		cache:          c,
		maxStreamBytes: int64(maxStream),
	}
}

// Frame returns the current frame for the camera. The error is non-nil only
// when the context is done; every other failure yields a synthetic frame.
func (f *Fetcher) Frame(ctx context.Context, desc models.CameraDescriptor) (Frame, error) {
	key := cache.GenerateKey("camera", desc.ID)
	if v, ok := f.cache.Get(key); ok {
		if frame, ok := v.(Frame); ok {
			return frame, nil
		}
	}

	start := time.Now()
	data, err := f.fetchLive(ctx, desc)
	metrics.RecordFetch("camera", desc.ID, time.Since(start), err)

	if err == nil {
		f.registry.recordSuccess(desc.ID)
		frame := Frame{
			CameraID:  desc.ID,
			JPEG:      data,
			Live:      true,
			FetchedAt: time.Now().UTC(),
		}
		f.cache.Set(key, frame)
		return frame, nil
	}

	if ctx.Err() != nil {
		return Frame{}, ctx.Err()
	}

	failCount, shouldLog := f.registry.recordFailure(desc.ID)
	if shouldLog {
		logging.Warn().
			Err(err).
			Str("camera", desc.Name).
			Int("fail_count", failCount).
			Msg("Camera offline, using synthetic frame")
	}

	return f.syntheticFrame(desc)
}

// SyntheticFrame renders a mock frame directly, bypassing the live fetch.
func (f *Fetcher) SyntheticFrame(desc models.CameraDescriptor) (Frame, error) {
	return f.syntheticFrame(desc)
}

func (f *Fetcher) syntheticFrame(desc models.CameraDescriptor) (Frame, error) {
	metrics.MockFallbacks.WithLabelValues("camera").Inc()

	data, err := f.mock.Render(desc)
	if err != nil {
		return Frame{}, fmt.Errorf("render synthetic frame for %s: %w", desc.ID, err)
	}
	return Frame{
		CameraID:  desc.ID,
		JPEG:      data,
		Live:      false,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *Fetcher) fetchLive(ctx context.Context, desc models.CameraDescriptor) ([]byte, error) {
	switch desc.Kind {
	case models.FeedMJPEG:
		return f.fetchMJPEG(ctx, desc.URL)
	default:
		return f.fetchStatic(ctx, desc.URL)
	}
}

// fetchStatic grabs a still image, verifies it decodes, and normalizes it
// to JPEG.
func (f *Fetcher) fetchStatic(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkImageResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return imaging.EncodeJPEG(img, liveJPEGQuality)
}

// fetchMJPEG reads the stream until the buffer holds one complete JPEG
// (an 0xFFD8 start marker followed by an 0xFFD9 end marker) and returns
// exactly that byte range. Fails once maxStreamBytes accumulate without a
// complete frame.
func (f *Fetcher) fetchMJPEG(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var buf []byte
	chunk := make([]byte, streamChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		buf = append(buf, chunk[:n]...)

		if frame, ok := extractJPEG(buf); ok {
			if _, err := jpeg.Decode(bytes.NewReader(frame)); err != nil {
				return nil, fmt.Errorf("decode mjpeg frame: %w", err)
			}
			return frame, nil
		}

		if int64(len(buf)) > f.maxStreamBytes {
			return nil, fmt.Errorf("mjpeg frame exceeded %d byte limit", f.maxStreamBytes)
		}
		if readErr == io.EOF {
			return nil, fmt.Errorf("mjpeg stream ended without a complete frame")
		}
		if readErr != nil {
			return nil, fmt.Errorf("read mjpeg stream: %w", readErr)
		}
	}
}

// extractJPEG returns the first complete JPEG in buf. The returned slice
// spans the start marker through the end marker inclusive.
func extractJPEG(buf []byte) ([]byte, bool) {
	start := bytes.Index(buf, jpegSOI)
	if start < 0 {
		return nil, false
	}
	end := bytes.Index(buf[start+2:], jpegEOI)
	if end < 0 {
		return nil, false
	}
	return buf[start : start+2+end+2], true
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", cameraUserAgent)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera request: %w", err)
	}
	return resp, nil
}

func checkImageResponse(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &upstream.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	ct := resp.Header.Get("Content-Type")
	if !isImageContentType(ct) {
		return fmt.Errorf("unexpected content type %q", ct)
	}
	return nil
}

func isImageContentType(ct string) bool {
	lower := strings.ToLower(ct)
	return strings.Contains(lower, "image") || strings.Contains(lower, "jpeg")
}
