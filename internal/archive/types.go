// Package archive stores rendered animation frames in a SQLite database.
package archive

import (
	"strconv"
	"time"
)

// Frame kinds.
const (
	KindTexture = "texture"
	KindTerrain = "terrain"
)

// Metadata describes an archived sequence.
type Metadata struct {
	Name        string
	Kind        string        // KindTexture or KindTerrain
	Format      string        // frame encoding: png, bmp, tiff or obj
	Resolution  int           // texture edge length or grid cells along X
	Interval    time.Duration // simulated time between frames
	Seed        int64
	Family      string // noise family
	Gradient    string // gradient in "t:#rrggbb,..|t:a,.." form
	Description string
	Version     string
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Kind != "" {
		result["kind"] = m.Kind
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Resolution > 0 {
		result["resolution"] = strconv.Itoa(m.Resolution)
	}
	if m.Interval > 0 {
		result["interval"] = m.Interval.String()
	}
	if m.Seed != 0 {
		result["seed"] = strconv.FormatInt(m.Seed, 10)
	}
	if m.Family != "" {
		result["family"] = m.Family
	}
	if m.Gradient != "" {
		result["gradient"] = m.Gradient
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}

	return result
}

// metadataFromMap is the inverse of ToMap. Malformed numbers are skipped.
func metadataFromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Kind:        values["kind"],
		Format:      values["format"],
		Family:      values["family"],
		Gradient:    values["gradient"],
		Description: values["description"],
		Version:     values["version"],
	}
	if v, ok := values["resolution"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Resolution = i
		}
	}
	if v, ok := values["interval"]; ok {
		if d, err := time.ParseDuration(v); err == nil {
			meta.Interval = d
		}
	}
	if v, ok := values["seed"]; ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			meta.Seed = i
		}
	}
	return meta
}

// ContentType returns the MIME type of the frame format.
func (m Metadata) ContentType() string {
	switch m.Format {
	case "png":
		return "image/png"
	case "bmp":
		return "image/bmp"
	case "tiff", "tif":
		return "image/tiff"
	case "obj":
		return "model/obj"
	}
	return "application/octet-stream"
}
