// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

// Package vision wraps an HTTP inference sidecar behind a detector that
// degrades instead of failing. The model loads once per process; until it
// is ready, and forever after a failed load, Detect returns an
// empty-detection passthrough so frame serving never blocks on inference.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

// Detector lifecycle states.
const (
	StateUnloaded   = "unloaded"
	StateLoading    = "loading"
	StateReady      = "ready"
	StateLoadFailed = "load_failed"
)

var stateGaugeValues = map[string]float64{
	StateUnloaded:   0,
	StateLoading:    1,
	StateReady:      2,
	StateLoadFailed: 3,
}

// capabilitiesResponse is the sidecar's capability handshake payload.
type capabilitiesResponse struct {
	Model   string   `json:"model"`
	Devices []string `json:"devices"`
}

type loadRequest struct {
	Device     string  `json:"device"`
	Confidence float64 `json:"confidence"`
	InputSize  int     `json:"input_size"`
}

type loadResponse struct {
	Status string `json:"status"`
}

type detectRequest struct {
	ImageB64   string  `json:"image_b64"`
	ContextID  string  `json:"context_id,omitempty"`
	Confidence float64 `json:"confidence"`
	InputSize  int     `json:"input_size"`
}

type sidecarDetection struct {
	ClassID    int     `json:"class_id"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

type detectResponse struct {
	Detections  []sidecarDetection `json:"detections"`
	InferenceMS float64            `json:"inference_ms"`
}

// Detector runs object detection through a local inference sidecar.
// Construct with NewDetector and share one instance; the zero value is not
// usable.
type Detector struct {
	client *upstream.Client
	cfg    config.VisionConfig

	loadOnce sync.Once
	loadDone chan struct{}

	mu      sync.RWMutex
	state   string
	backend string
	model   string

	cacheMu sync.Mutex
	cache   map[string]models.DetectionResult
}

// NewDetector builds a detector from config without touching the network.
// The sidecar handshake happens on StartLoad or first Detect.
func NewDetector(cfg config.VisionConfig) *Detector {
	d := &Detector{
		client:   upstream.NewClient("vision-sidecar", cfg.RequestTimeout, 0, 0),
		cfg:      cfg,
		loadDone: make(chan struct{}),
		state:    StateUnloaded,
		cache:    make(map[string]models.DetectionResult),
	}
	metrics.DetectorState.Set(stateGaugeValues[StateUnloaded])
	return d
}

// StartLoad begins the one-time sidecar handshake. Only the first call
// acts; it returns immediately while the load proceeds in the background.
func (d *Detector) StartLoad() {
	d.loadOnce.Do(func() {
		if d.cfg.BackendURL == "" {
			logging.Warn().Msg("Detection backend not configured, running in passthrough mode")
			d.setState(StateLoadFailed, "", "")
			close(d.loadDone)
			return
		}
		d.setState(StateLoading, "", "")
		go func() {
			defer close(d.loadDone)
			d.load()
		}()
	})
}

// load performs the capability handshake and device negotiation against
// the sidecar. Runs once, off the caller's goroutine.
func (d *Detector) load() {
	ctx, cancel := context.WithTimeout(context.Background(), d.loadTimeout())
	defer cancel()

	var caps capabilitiesResponse
	if err := d.client.GetJSON(ctx, d.cfg.BackendURL+"/v1/capabilities", nil, &caps); err != nil {
		logging.Error().Err(err).Msg("Detection backend handshake failed, running in passthrough mode")
		d.setState(StateLoadFailed, "", "")
		return
	}

	device, err := negotiateDevice(d.cfg.Devices, caps.Devices)
	if err != nil {
		logging.Error().Err(err).Strs("offered", caps.Devices).Msg("Detection device negotiation failed")
		d.setState(StateLoadFailed, "", "")
		return
	}

	req := loadRequest{Device: device, Confidence: d.cfg.Confidence, InputSize: d.cfg.InputSize}
	var resp loadResponse
	if err := d.client.PostJSON(ctx, d.cfg.BackendURL+"/v1/load", nil, req, &resp); err != nil {
		logging.Error().Err(err).Str("device", device).Msg("Detection model load failed")
		d.setState(StateLoadFailed, "", "")
		return
	}
	if resp.Status != "ok" {
		logging.Error().Str("status", resp.Status).Msg("Detection backend refused load")
		d.setState(StateLoadFailed, "", "")
		return
	}

	d.setState(StateReady, device, caps.Model)
	logging.Info().
		Str("device", device).
		Str("model", caps.Model).
		Msg("Detection model loaded")
}

// negotiateDevice returns the first preferred device the sidecar offers.
// Preference order defaults to cuda, mps, cpu.
func negotiateDevice(preferred, offered []string) (string, error) {
	if len(preferred) == 0 {
		preferred = []string{"cuda", "mps", "cpu"}
	}
	available := make(map[string]bool, len(offered))
	for _, dev := range offered {
		available[dev] = true
	}
	for _, want := range preferred {
		if available[want] {
			return want, nil
		}
	}
	return "", fmt.Errorf("no mutually supported device (want one of %v)", preferred)
}

func (d *Detector) loadTimeout() time.Duration {
	if d.cfg.RequestTimeout > 0 {
		return d.cfg.RequestTimeout
	}
	return 30 * time.Second
}

func (d *Detector) setState(state, backend, model string) {
	d.mu.Lock()
	d.state = state
	d.backend = backend
	d.model = model
	d.mu.Unlock()
	metrics.DetectorState.Set(stateGaugeValues[state])
}

// Ready reports whether inference calls will reach the sidecar.
func (d *Detector) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state == StateReady
}

// Status reports lifecycle state for the status endpoint.
func (d *Detector) Status() models.DetectorStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	backend := d.backend
	if d.model != "" {
		backend = d.model + " on " + d.backend
	}
	return models.DetectorStatus{
		State:   d.state,
		Backend: backend,
		Ready:   d.state == StateReady,
	}
}

// Detect runs inference on a JPEG frame. It never returns an error: before
// the model is ready, after a failed load, or on any inference failure the
// result is a passthrough with zero detections and is_live=false. The
// caller's bytes are never modified; the annotated frame is a copy.
func (d *Detector) Detect(ctx context.Context, frame []byte, contextID string) models.DetectionResult {
	d.StartLoad()

	if !d.Ready() {
		metrics.RecordDetection("passthrough", 0)
		return d.passthrough(frame)
	}

	start := time.Now()
	resp, err := d.infer(ctx, frame, contextID)
	elapsed := time.Since(start)
	if err != nil {
		logging.Error().Err(err).Str("context_id", contextID).Msg("Inference failed, passing frame through")
		metrics.RecordDetection("error", elapsed)
		return d.passthrough(frame)
	}

	detections := make([]models.Detection, 0, len(resp.Detections))
	for _, row := range resp.Detections {
		detections = append(detections, models.Detection{
			ClassID:    row.ClassID,
			ClassName:  row.Class,
			Confidence: row.Confidence,
			X1:         row.BBox[0],
			Y1:         row.BBox[1],
			X2:         row.BBox[2],
			Y2:         row.BBox[3],
		})
	}

	inferenceMS := resp.InferenceMS
	if inferenceMS <= 0 {
		inferenceMS = float64(elapsed.Milliseconds())
	}

	annotated, width, height := annotateFrame(frame, detections)

	result := models.DetectionResult{
		Detections:  detections,
		Annotated:   annotated,
		InferenceMS: inferenceMS,
		Anomalies:   DeriveAnomalies(detections, width, height, d.cfg.CrowdThreshold, d.cfg.VehicleThreshold),
		IsLive:      true,
		Backend:     d.Status().Backend,
		Timestamp:   time.Now().UTC(),
	}

	d.cacheMu.Lock()
	d.cache[cacheKey(contextID)] = result
	d.cacheMu.Unlock()

	metrics.RecordDetection("live", elapsed)
	return result
}

func (d *Detector) infer(ctx context.Context, frame []byte, contextID string) (*detectResponse, error) {
	req := detectRequest{
		ImageB64:   base64.StdEncoding.EncodeToString(frame),
		ContextID:  contextID,
		Confidence: d.cfg.Confidence,
		InputSize:  d.cfg.InputSize,
	}
	var resp detectResponse
	if err := d.client.PostJSON(ctx, d.cfg.BackendURL+"/v1/detect", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CachedResult returns the last live result for a context id, if any.
// Advisory only; callers needing fresh detections should call Detect.
func (d *Detector) CachedResult(contextID string) (models.DetectionResult, bool) {
	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	res, ok := d.cache[cacheKey(contextID)]
	return res, ok
}

func cacheKey(contextID string) string {
	if contextID == "" {
		return "default"
	}
	return contextID
}

// passthrough builds the degraded result: no detections, no anomalies,
// the frame echoed back with a "detection unavailable" banner when it
// decodes.
func (d *Detector) passthrough(frame []byte) models.DetectionResult {
	return models.DetectionResult{
		Detections: []models.Detection{},
		Annotated:  passthroughFrame(frame),
		Anomalies:  []string{},
		IsLive:     false,
		Backend:    d.Status().Backend,
		Timestamp:  time.Now().UTC(),
	}
}
