// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package satellite

import (
	"fmt"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// Layer pairs a stable API key with the GIBS layer identifier used in WMS
// requests. Name is the human-readable label for layer pickers.
type Layer struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	GIBS string `json:"gibs_id"`
}

// DefaultLayerKey is used when a request names no layer.
const DefaultLayerKey = "true_color"

// layerCatalog is ordered for display. Identifiers come from the GIBS
// visualization catalog; daily layers lag realtime by one to two days.
var layerCatalog = []Layer{
	{Key: "true_color", Name: "True Color (VIIRS SNPP)", GIBS: "VIIRS_SNPP_CorrectedReflectance_TrueColor"},
	{Key: "terra_true_color", Name: "True Color (MODIS Terra)", GIBS: "MODIS_Terra_CorrectedReflectance_TrueColor"},
	{Key: "aqua_true_color", Name: "True Color (MODIS Aqua)", GIBS: "MODIS_Aqua_CorrectedReflectance_TrueColor"},
	{Key: "night_lights", Name: "Night Lights (VIIRS Black Marble)", GIBS: "VIIRS_Black_Marble"},
	{Key: "land_temp", Name: "Land Surface Temperature", GIBS: "MODIS_Terra_Land_Surface_Temp_Day"},
	{Key: "sea_temp", Name: "Sea Surface Temperature", GIBS: "MUR-JPL-L4-GLOB-v4.1"},
	{Key: "snow_cover", Name: "Snow & Ice Cover", GIBS: "MODIS_Terra_Snow_Cover"},
	{Key: "aerosol", Name: "Aerosol (Dust/Smoke)", GIBS: "MODIS_Terra_Aerosol"},
	{Key: "vegetation", Name: "Vegetation (NDVI)", GIBS: "MODIS_Terra_NDVI_8Day"},
}

// regionCatalog holds the preset viewing regions. Boxes are west, south,
// east, north in degrees.
var regionCatalog = []models.Region{
	{Key: "global", Name: "Global", BBox: models.BoundingBox{West: -180, South: -90, East: 180, North: 90}},
	{Key: "north_america", Name: "North America", BBox: models.BoundingBox{West: -170, South: 15, East: -50, North: 80}},
	{Key: "europe", Name: "Europe", BBox: models.BoundingBox{West: -30, South: 30, East: 45, North: 75}},
	{Key: "asia_pacific", Name: "Asia Pacific", BBox: models.BoundingBox{West: 60, South: -15, East: 180, North: 60}},
	{Key: "africa", Name: "Africa", BBox: models.BoundingBox{West: -25, South: -40, East: 60, North: 40}},
	{Key: "middle_east", Name: "Middle East", BBox: models.BoundingBox{West: 25, South: 10, East: 75, North: 45}},
	{Key: "south_america", Name: "South America", BBox: models.BoundingBox{West: -85, South: -60, East: -30, North: 15}},
	{Key: "arctic", Name: "Arctic", BBox: models.BoundingBox{West: -180, South: 60, East: 180, North: 90}},
}

// Layers returns the layer catalog in display order.
func Layers() []Layer {
	out := make([]Layer, len(layerCatalog))
	copy(out, layerCatalog)
	return out
}

// LayerByKey resolves an API layer key. An empty key selects the default
// true-color layer.
func LayerByKey(key string) (Layer, error) {
	if key == "" {
		key = DefaultLayerKey
	}
	for _, l := range layerCatalog {
		if l.Key == key {
			return l, nil
		}
	}
	return Layer{}, fmt.Errorf("unknown satellite layer %q", key)
}

// Regions returns the preset regions in display order.
func Regions() []models.Region {
	out := make([]models.Region, len(regionCatalog))
	copy(out, regionCatalog)
	return out
}

// RegionByKey resolves a preset region key.
func RegionByKey(key string) (models.Region, error) {
	for _, r := range regionCatalog {
		if r.Key == key {
			return r, nil
		}
	}
	return models.Region{}, fmt.Errorf("unknown satellite region %q", key)
}
