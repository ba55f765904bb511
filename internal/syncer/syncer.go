// Package syncer keeps a local snapshot of the server-held defect set in sync
// by polling the detection service on a fixed cadence.
package syncer

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/logging"
	"github.com/railwatch/railwatch-go/internal/model"
	"github.com/railwatch/railwatch-go/internal/observability/metrics"
)

// Package-level logger for the synchronizer service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "syncer.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "syncer", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize syncer file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "syncer")
		closeLogger = func() error { return nil }
	}
}

const (
	// DefaultInterval is the poll cadence when none is configured.
	DefaultInterval = 5 * time.Second

	// subscriberBuffer is the per-subscriber channel capacity. A slow
	// consumer drops updates rather than stalling the poll loop.
	subscriberBuffer = 8

	// errThrottleWindow suppresses repeated logging of the same transient
	// fetch failure within this window.
	errThrottleWindow = 5 * time.Minute
)

// Fetcher retrieves the current defect set from the detection service.
type Fetcher interface {
	ListDefects(ctx context.Context) ([]model.Defect, error)
}

// Snapshot is the synchronizer's current belief about server state: an
// ordered sequence of defect records plus the instant it was fetched.
type Snapshot struct {
	Defects   []model.Defect
	FetchedAt time.Time
}

// Service polls the detection service and republishes the snapshot to
// subscribers only when its content changes. A failed poll is swallowed and
// the previously published snapshot stays authoritative until the next
// successful attempt.
type Service struct {
	fetcher  Fetcher
	interval time.Duration
	metrics  *metrics.SyncMetrics

	mu          sync.RWMutex
	current     Snapshot
	initialized bool
	subscribers []chan Snapshot

	// inFlight is a single-slot marker so a new fetch never starts while a
	// prior request is still outstanding.
	inFlight atomic.Bool

	runMu      sync.Mutex
	stopChan   chan struct{}
	doneChan   chan struct{}
	invalidate chan struct{}

	errThrottle *gocache.Cache
}

// NewService creates a defect synchronizer. A zero interval falls back to
// DefaultInterval. Metrics may be nil.
func NewService(fetcher Fetcher, interval time.Duration, m *metrics.SyncMetrics) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		fetcher:     fetcher,
		interval:    interval,
		metrics:     m,
		invalidate:  make(chan struct{}, 1),
		errThrottle: gocache.New(errThrottleWindow, 2*errThrottleWindow),
	}
}

// Subscribe registers a new snapshot consumer. Subscriptions live for the
// process lifetime; an update is dropped for a subscriber whose buffer is
// full.
func (s *Service) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// Current returns the latest published snapshot and whether any snapshot has
// been published yet. An empty defect set with ok=true is a valid, complete
// snapshot and is distinct from "no data yet".
func (s *Service) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.initialized
}

// Lookup returns the record with the given id from the current snapshot.
func (s *Service) Lookup(id int) (model.Defect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.current.Defects {
		if s.current.Defects[i].ID == id {
			return s.current.Defects[i], true
		}
	}
	return model.Defect{}, false
}

// Start begins the polling loop. It returns an error if the service is
// already running. The service is restartable after Stop.
func (s *Service) Start() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopChan != nil {
		return errors.Newf("synchronizer already running").
			Component("syncer").
			Category(errors.CategoryState).
			Build()
	}

	stopChan := make(chan struct{})
	doneChan := make(chan struct{})
	s.stopChan = stopChan
	s.doneChan = doneChan

	logger.Info("starting defect synchronizer", "interval", s.interval)
	go s.run(stopChan, doneChan)
	return nil
}

// Stop cancels the poll timer and waits for the loop to exit. It does not
// cancel an in-flight fetch; a fetch completing after Stop is discarded
// without publishing.
func (s *Service) Stop() {
	s.runMu.Lock()
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.stopChan = nil
	s.doneChan = nil
	s.runMu.Unlock()

	if stopChan == nil {
		return
	}
	close(stopChan)
	<-doneChan
	logger.Info("defect synchronizer stopped")
}

// RefreshOnce performs a single synchronous fetch-and-publish outside the
// polling loop. Used by one-shot flows that need a current snapshot before
// acting on it.
func (s *Service) RefreshOnce(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return errors.Newf("a fetch is already in flight").
			Component("syncer").
			Category(errors.CategoryState).
			Build()
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	defects, err := s.fetcher.ListDefects(ctx)
	if s.metrics != nil {
		s.metrics.RecordFetchDuration(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordFetch("error")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordFetch("success")
	}

	s.publish(defects)
	return nil
}

// Invalidate discards the local belief and requests an immediate refetch so
// the client converges to server truth after a mutation. Multiple
// invalidations arriving while a fetch is outstanding coalesce into one
// follow-up fetch.
func (s *Service) Invalidate() {
	select {
	case s.invalidate <- struct{}{}:
	default:
		// A refetch is already pending
	}
	if s.metrics != nil {
		s.metrics.RecordInvalidation()
	}
	logger.Debug("snapshot invalidated, refetch requested")
}

func (s *Service) run(stopChan <-chan struct{}, doneChan chan<- struct{}) {
	defer close(doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial fetch so consumers are not left waiting a full interval
	s.poll(stopChan)

	for {
		select {
		case <-ticker.C:
			s.poll(stopChan)
		case <-s.invalidate:
			s.poll(stopChan)
		case <-stopChan:
			return
		}
	}
}

// poll performs one fetch attempt. On success the snapshot is published only
// when it differs from the previous one; on failure the attempt is discarded
// and the prior snapshot retained.
func (s *Service) poll(stopChan <-chan struct{}) {
	if !s.inFlight.CompareAndSwap(false, true) {
		logger.Debug("fetch already in flight, skipping cycle")
		if s.metrics != nil {
			s.metrics.RecordFetchSkipped()
		}
		return
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	defects, err := s.fetcher.ListDefects(context.Background())
	if s.metrics != nil {
		s.metrics.RecordFetchDuration(time.Since(start).Seconds())
	}

	if err != nil {
		// Transient failure: keep the prior snapshot, retry next cycle
		if s.metrics != nil {
			s.metrics.RecordFetch("error")
		}
		s.logFetchError(err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordFetch("success")
	}

	// A fetch that completes after Stop must not publish
	select {
	case <-stopChan:
		logger.Debug("fetch completed after stop, discarding result")
		return
	default:
	}

	s.publish(defects)
}

// publish replaces the snapshot wholesale and notifies subscribers, unless
// the fetched content deep-equals the current snapshot.
func (s *Service) publish(defects []model.Defect) {
	s.mu.Lock()

	if s.initialized && reflect.DeepEqual(s.current.Defects, defects) {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordPublishSuppressed()
		}
		logger.Debug("snapshot unchanged, publish suppressed", "count", len(defects))
		return
	}

	snapshot := Snapshot{Defects: defects, FetchedAt: time.Now()}
	s.current = snapshot
	s.initialized = true
	subscribers := make([]chan Snapshot, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordPublish()
		s.metrics.SetSnapshotSize(len(defects))
	}
	logger.Info("snapshot published", "count", len(defects))

	for _, ch := range subscribers {
		select {
		case ch <- snapshot:
		default:
			logger.Warn("subscriber buffer full, dropping snapshot update")
		}
	}
}

// logFetchError logs a transient fetch failure, throttling repeats of the
// same failure so a flapping network does not flood the log.
func (s *Service) logFetchError(err error) {
	key := err.Error()
	if _, found := s.errThrottle.Get(key); found {
		logger.Debug("defect fetch failed (repeat)", "error", err)
		return
	}
	s.errThrottle.Set(key, struct{}{}, gocache.DefaultExpiration)

	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		logger.Warn("defect fetch failed, keeping previous snapshot",
			"error", err,
			"category", ee.GetCategory())
		return
	}
	logger.Warn("defect fetch failed, keeping previous snapshot", "error", err)
}

// CloseLog closes the service log file. Used during graceful shutdown.
func CloseLog() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("error closing syncer logger: %v", err)
		}
	}
}
