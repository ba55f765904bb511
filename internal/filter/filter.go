// Package filter provides a pure, side-effect-free projection of a defect
// snapshot given a text query and severity/status filters.
package filter

import (
	"strings"

	"github.com/railwatch/railwatch-go/internal/model"
)

// All is the sentinel disabling a filter dimension.
const All = "All"

// Criteria holds the three independent filter dimensions. They compose with
// logical AND and commute; the zero value (with Severity and Status set to
// All) passes every record.
type Criteria struct {
	// Query matches case-insensitively as a substring of the defect type or
	// the nearest station label. Empty matches everything.
	Query string

	// Severity is an exact severity match, or All.
	Severity string

	// Status is an exact status match, or All.
	Status string
}

// None returns criteria that pass every record.
func None() Criteria {
	return Criteria{Severity: All, Status: All}
}

// Matches reports whether a single record passes the criteria.
func (c Criteria) Matches(d *model.Defect) bool {
	return matchesQuery(d, c.Query) && matchesSeverity(d, c.Severity) && matchesStatus(d, c.Status)
}

// Apply projects the snapshot through the criteria, preserving the relative
// order of the input. The input slice is never modified.
func Apply(defects []model.Defect, c Criteria) []model.Defect {
	filtered := make([]model.Defect, 0, len(defects))
	for i := range defects {
		if c.Matches(&defects[i]) {
			filtered = append(filtered, defects[i])
		}
	}
	return filtered
}

// VisibleIDs returns the identifiers of the records passing the criteria, in
// snapshot order.
func VisibleIDs(defects []model.Defect, c Criteria) []int {
	ids := make([]int, 0, len(defects))
	for i := range defects {
		if c.Matches(&defects[i]) {
			ids = append(ids, defects[i].ID)
		}
	}
	return ids
}

func matchesQuery(d *model.Defect, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(d.DefectType), q) ||
		strings.Contains(strings.ToLower(d.NearestStation), q)
}

func matchesSeverity(d *model.Defect, severity string) bool {
	return severity == "" || severity == All || string(d.Severity) == severity
}

func matchesStatus(d *model.Defect, status string) bool {
	return status == "" || status == All || string(d.Status) == status
}
