// Package lifecycle executes state-changing operations against defect
// records, enforcing the permitted-transition table and reconciling local
// state with the server after every successful mutation.
package lifecycle

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/logging"
	"github.com/railwatch/railwatch-go/internal/model"
	"github.com/railwatch/railwatch-go/internal/observability/metrics"
	"github.com/railwatch/railwatch-go/internal/session"
)

// Package-level logger for the lifecycle controller
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "lifecycle.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "lifecycle", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize lifecycle file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "lifecycle")
		closeLogger = func() error { return nil }
	}
}

// Mutator is the slice of the detection service API the controller needs.
type Mutator interface {
	ResolveDefect(ctx context.Context, id int) error
	ReopenDefect(ctx context.Context, id int) error
	DeleteDefect(ctx context.Context, id int) error
	BulkDeleteDefects(ctx context.Context, ids []int) error
}

// SnapshotSource provides record lookup against the current snapshot and the
// invalidation hook used for post-mutation reconciliation.
type SnapshotSource interface {
	Lookup(id int) (model.Defect, bool)
	Invalidate()
}

// Selection is the bulk-operation view of the selection model.
type Selection interface {
	IDs() []int
	Clear()
}

// Controller executes lifecycle transitions for the current operator.
//
// Reconciliation policy: after any successful mutation the controller does
// not patch the snapshot in place; it invalidates it and forces a full
// refetch, so the client converges to server truth. Resolve and Reopen
// return a transient optimistic copy of the record for immediate display;
// that copy is overwritten as soon as the authoritative refetch lands and is
// never the system of record.
type Controller struct {
	session   *session.Context
	api       Mutator
	snapshots SnapshotSource
	metrics   *metrics.LifecycleMetrics
}

// NewController creates a lifecycle controller bound to an operator session.
// Metrics may be nil.
func NewController(sess *session.Context, api Mutator, snapshots SnapshotSource, m *metrics.LifecycleMetrics) *Controller {
	return &Controller{
		session:   sess,
		api:       api,
		snapshots: snapshots,
		metrics:   m,
	}
}

// Resolve transitions an open defect to Resolved. On success it returns an
// optimistic copy of the record with the new status; resolved_at stays unset
// until the server-assigned value arrives with the reconciling refetch.
func (c *Controller) Resolve(ctx context.Context, id int) (model.Defect, error) {
	record, err := c.precheck(TransitionResolve, id)
	if err != nil {
		return model.Defect{}, err
	}

	if err := c.dispatch(TransitionResolve, func() error {
		return c.api.ResolveDefect(ctx, id)
	}); err != nil {
		return model.Defect{}, err
	}

	c.reconcile(TransitionResolve, id)

	optimistic := record
	optimistic.Status = model.StatusResolved
	return optimistic, nil
}

// Reopen transitions a resolved defect back to Open. Admin only.
func (c *Controller) Reopen(ctx context.Context, id int) (model.Defect, error) {
	record, err := c.precheck(TransitionReopen, id)
	if err != nil {
		return model.Defect{}, err
	}

	if err := c.dispatch(TransitionReopen, func() error {
		return c.api.ReopenDefect(ctx, id)
	}); err != nil {
		return model.Defect{}, err
	}

	c.reconcile(TransitionReopen, id)

	optimistic := record
	optimistic.Status = model.StatusOpen
	optimistic.ResolvedAt = nil
	return optimistic, nil
}

// Delete permanently removes a defect record. Admin only, irreversible.
func (c *Controller) Delete(ctx context.Context, id int) error {
	if _, err := c.precheck(TransitionDelete, id); err != nil {
		return err
	}

	if err := c.dispatch(TransitionDelete, func() error {
		return c.api.DeleteDefect(ctx, id)
	}); err != nil {
		return err
	}

	c.reconcile(TransitionDelete, id)
	return nil
}

// BulkDelete removes every selected record as a single logical request,
// all-or-nothing from the client's perspective. On success the selection is
// cleared and a resync triggered; on failure no removals are assumed and the
// selection is retained.
func (c *Controller) BulkDelete(ctx context.Context, sel Selection) error {
	ids := sel.IDs()
	if len(ids) == 0 {
		c.reject(TransitionBulkDelete, "empty_selection")
		return errors.Newf("no defects selected for bulk delete").
			Component("lifecycle").
			Category(errors.CategoryValidation).
			Build()
	}

	if err := CanTransition(c.session.Role(), "", TransitionBulkDelete); err != nil {
		c.reject(TransitionBulkDelete, rejectionReason(err))
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordBulkDeleteSize(len(ids))
	}

	if err := c.dispatch(TransitionBulkDelete, func() error {
		return c.api.BulkDeleteDefects(ctx, ids)
	}); err != nil {
		// All-or-nothing: assume nothing was removed, keep the selection
		return err
	}

	sel.Clear()
	c.reconcile(TransitionBulkDelete, 0)
	logger.Info("bulk delete completed", "count", len(ids))
	return nil
}

// precheck validates a single-record transition against the current snapshot
// before any network call is made.
func (c *Controller) precheck(t Transition, id int) (model.Defect, error) {
	record, ok := c.snapshots.Lookup(id)
	if !ok {
		c.reject(t, "not_found")
		return model.Defect{}, errors.Newf("defect %d not found in current snapshot", id).
			Component("lifecycle").
			Category(errors.CategoryNotFound).
			Context("defect_id", id).
			Build()
	}

	if err := CanTransition(c.session.Role(), record.Status, t); err != nil {
		c.reject(t, rejectionReason(err))
		logger.Warn("transition rejected before dispatch",
			"transition", string(t),
			"defect_id", id,
			"role", string(c.session.Role()),
			"status", string(record.Status))
		return model.Defect{}, err
	}

	return record, nil
}

// dispatch runs the mutation call and records its outcome.
func (c *Controller) dispatch(t Transition, call func() error) error {
	start := time.Now()
	err := call()
	if c.metrics != nil {
		c.metrics.RecordMutationDuration(string(t), time.Since(start).Seconds())
	}

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordMutation(string(t), "error")
		}
		logger.Error("mutation failed",
			"transition", string(t),
			"error", err)
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordMutation(string(t), "success")
	}
	return nil
}

// reconcile invalidates the snapshot after a successful mutation so the
// synchronizer refetches server truth.
func (c *Controller) reconcile(t Transition, id int) {
	c.snapshots.Invalidate()
	if c.metrics != nil {
		c.metrics.RecordReconciliation()
	}
	logger.Debug("reconciliation refetch requested",
		"transition", string(t),
		"defect_id", id)
}

func (c *Controller) reject(t Transition, reason string) {
	if c.metrics != nil {
		c.metrics.RecordRejection(string(t), reason)
	}
}

// rejectionReason maps a precheck error to a metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.IsAuthorization(err):
		return "unauthorized"
	case errors.IsCategory(err, errors.CategoryState):
		return "invalid_transition"
	case errors.IsNotFound(err):
		return "not_found"
	default:
		return "other"
	}
}

// CloseLog closes the service log file. Used during graceful shutdown.
func CloseLog() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("error closing lifecycle logger: %v", err)
		}
	}
}
