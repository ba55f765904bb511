// Package app wires the configured settings into the client's service graph.
package app

import (
	"time"

	"github.com/railwatch/railwatch-go/internal/conf"
	"github.com/railwatch/railwatch-go/internal/defectapi"
	"github.com/railwatch/railwatch-go/internal/export"
	"github.com/railwatch/railwatch-go/internal/lifecycle"
	"github.com/railwatch/railwatch-go/internal/observability"
	"github.com/railwatch/railwatch-go/internal/selection"
	"github.com/railwatch/railwatch-go/internal/session"
	"github.com/railwatch/railwatch-go/internal/syncer"
)

// App bundles the constructed services for command use.
type App struct {
	Settings   *conf.Settings
	Session    *session.Context
	API        *defectapi.Client
	Syncer     *syncer.Service
	Controller *lifecycle.Controller
	Selection  *selection.Model
	Exporter   *export.Requester
	Metrics    *observability.Metrics
}

// New builds the service graph from settings. The session context is created
// here, at process start, and torn down by Close.
func New(settings *conf.Settings) (*App, error) {
	role, err := session.ParseRole(settings.Session.Role)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewContext(settings.Session.Username, role, settings.Session.Token)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	api, err := defectapi.NewClient(defectapi.Config{
		BaseURL:  settings.Service.BaseURL,
		Timeout:  time.Duration(settings.Service.TimeoutSec) * time.Second,
		PageSize: settings.Service.PageSize,
	}, sess)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(settings.Service.PollIntervalMs) * time.Millisecond
	sync := syncer.NewService(api, interval, metrics.Sync)

	return &App{
		Settings:   settings,
		Session:    sess,
		API:        api,
		Syncer:     sync,
		Controller: lifecycle.NewController(sess, api, sync, metrics.Lifecycle),
		Selection:  selection.NewModel(),
		Exporter: export.NewRequester(api, export.DirectorySaver{
			Dir: settings.Export.Directory,
		}, metrics.Lifecycle),
		Metrics: metrics,
	}, nil
}

// Close releases the app's resources in reverse construction order.
func (a *App) Close() {
	a.Syncer.Stop()
	a.API.Close()
	a.Session.Close()
	syncer.CloseLog()
	lifecycle.CloseLog()
}
