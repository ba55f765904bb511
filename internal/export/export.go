// Package export requests the binary report artifact for the current record
// set and hands it to a file-save collaborator.
package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/railwatch/railwatch-go/internal/defectapi"
	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/logging"
	"github.com/railwatch/railwatch-go/internal/observability/metrics"
)

// Exporter is the slice of the detection service API the requester needs.
type Exporter interface {
	ExportExcel(ctx context.Context) (*defectapi.ExportResult, error)
}

// Saver persists a completed artifact. It is only invoked with a fully
// received payload, so no partial file is ever produced.
type Saver interface {
	Save(filename string, data []byte) (string, error)
}

// Requester fetches report artifacts and saves them through the collaborator.
type Requester struct {
	api     Exporter
	saver   Saver
	metrics *metrics.LifecycleMetrics
}

// NewRequester creates an export requester. Metrics may be nil.
func NewRequester(api Exporter, saver Saver, m *metrics.LifecycleMetrics) *Requester {
	return &Requester{api: api, saver: saver, metrics: m}
}

// Request fetches the report for the current record set and saves it,
// returning the path of the written file.
func (r *Requester) Request(ctx context.Context) (string, error) {
	result, err := r.api.ExportExcel(ctx)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordExport("error")
		}
		return "", err
	}

	path, err := r.saver.Save(result.Filename, result.Data)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordExport("error")
		}
		return "", err
	}

	if r.metrics != nil {
		r.metrics.RecordExport("success")
		r.metrics.RecordExportPayload(len(result.Data))
	}
	logging.Info("report exported", "path", path, "bytes", len(result.Data))
	return path, nil
}

// DirectorySaver writes artifacts into a fixed directory. The advisory
// filename is reduced to its base name so a hostile Content-Disposition
// header cannot escape the directory.
type DirectorySaver struct {
	Dir string
}

// Save writes the payload and returns the full path written.
func (s DirectorySaver) Save(filename string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, filepath.Base(filename))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Newf("failed to write report file: %w", err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return path, nil
}
