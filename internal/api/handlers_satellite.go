// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/satellite"
)

// SatelliteImage renders satellite imagery for a layer, date and area.
//
// Method: GET
// Path: /api/v1/satellite/image?layer=&date=&region=|bbox=
//
// Area selection: an explicit region preset wins, then an explicit bbox,
// then the global preset. Provider failures degrade to the simulated
// raster inside the fetcher, so errors here mean bad input or a dead
// request context.
//
// Response headers:
//   - X-Aetherwatch-Live: whether GIBS supplied the pixels
//   - X-Aetherwatch-Layer: resolved layer key
//   - X-Aetherwatch-Date: resolved imagery date
func (h *Handler) SatelliteImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireSatellite(w) {
		return
	}

	query := r.URL.Query()
	layerKey := query.Get("layer")
	date := query.Get("date")
	regionKey := query.Get("region")
	rawBBox := query.Get("bbox")

	var (
		img satellite.Image
		err error
	)

	switch {
	case regionKey != "":
		img, err = h.satellite.RegionImage(r.Context(), layerKey, date, regionKey)
	case rawBBox != "":
		var bbox models.BoundingBox
		bbox, err = models.ParseBoundingBox(rawBBox)
		if err == nil {
			img, err = h.satellite.Image(r.Context(), layerKey, date, bbox)
		}
	default:
		img, err = h.satellite.RegionImage(r.Context(), layerKey, date, "global")
	}

	if err != nil {
		if r.Context().Err() != nil {
			respondError(w, http.StatusInternalServerError, "FETCH_ERROR", "Imagery fetch aborted", err)
			return
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	w.Header().Set("X-Aetherwatch-Layer", img.Layer.Key)
	w.Header().Set("X-Aetherwatch-Date", img.Date)
	respondJPEG(w, img.JPEG, img.Live)
}

// SatelliteLayers returns the imagery layer catalog.
//
// Method: GET
// Path: /api/v1/satellite/layers
func (h *Handler) SatelliteLayers(w http.ResponseWriter, r *http.Request) {
	layers := satellite.Layers()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"layers":  layers,
			"count":   len(layers),
			"default": satellite.DefaultLayerKey,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// SatelliteRegions returns the preset region catalog.
//
// Method: GET
// Path: /api/v1/satellite/regions
func (h *Handler) SatelliteRegions(w http.ResponseWriter, r *http.Request) {
	regions := satellite.Regions()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"regions": regions,
			"count":   len(regions),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// SatelliteDates returns recent imagery dates, newest first.
//
// Method: GET
// Path: /api/v1/satellite/dates?days=N
//
// N defaults to 10 and is clamped to [1, 60]; GIBS keeps a deep archive
// but the dashboard date picker only ever shows a short window.
func (h *Handler) SatelliteDates(w http.ResponseWriter, r *http.Request) {
	if !h.requireSatellite(w) {
		return
	}

	days := getIntParam(r, "days", 10)
	if days < 1 {
		days = 1
	}
	if days > 60 {
		days = 60
	}

	dates := h.satellite.AvailableDates(days)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"dates":   dates,
			"count":   len(dates),
			"default": h.satellite.DefaultDate(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
