// Package model defines the defect record types mirrored from the detection service.
package model

import (
	"fmt"
	"time"
)

// Severity is the urgency classification assigned by the detection service.
// It informs presentation only and plays no part in lifecycle transitions.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Status is the lifecycle state of a defect record as held by the server.
// Deleted records are removed from the set entirely and never appear here.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusResolved Status = "Resolved"
)

// PlaceholderUnknown is rendered for optional fields the server did not supply.
const PlaceholderUnknown = "Unknown"

// Defect is a single anomaly record reported by the detection service.
// The client holds a read-only projection; the server is the sole mutation
// authority.
type Defect struct {
	ID             int      `json:"id"`
	DefectType     string   `json:"defect_type"`
	Severity       Severity `json:"severity"`
	Status         Status   `json:"status"`
	Confidence     float64  `json:"confidence"`
	ImageURL       string   `json:"image_url,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Chainage       string   `json:"chainage,omitempty"`
	NearestStation string   `json:"nearest_station,omitempty"`
	RootCause      string   `json:"root_cause,omitempty"`
	ActionRequired string   `json:"action_required,omitempty"`
	// ResolutionSteps is a loosely structured free-text field. It is stored
	// opaque; ParseResolutionSteps derives a display list from it.
	ResolutionSteps string     `json:"resolution_steps,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// Station returns the nearest station label, degrading to a placeholder
// when the server omitted it.
func (d *Defect) Station() string {
	if d.NearestStation == "" {
		return PlaceholderUnknown
	}
	return d.NearestStation
}

// Location returns a printable coordinate pair, degrading to a placeholder
// when coordinates are absent.
func (d *Defect) Location() string {
	if d.Latitude == nil || d.Longitude == nil {
		return PlaceholderUnknown
	}
	return fmt.Sprintf("%.5f, %.5f", *d.Latitude, *d.Longitude)
}

// IsResolved reports whether the record is in the Resolved state.
func (d *Defect) IsResolved() bool {
	return d.Status == StatusResolved
}
