// Package watch implements the continuous monitoring subcommand.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/railwatch/railwatch-go/internal/app"
	"github.com/railwatch/railwatch-go/internal/conf"
	"github.com/railwatch/railwatch-go/internal/filter"
	"github.com/railwatch/railwatch-go/internal/logging"
	"github.com/railwatch/railwatch-go/internal/observability"
	"github.com/railwatch/railwatch-go/internal/syncer"
)

// Command returns the watch subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	criteria := filter.None()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously mirror the server-held defect set and print changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(settings, criteria)
		},
	}

	cmd.Flags().StringVar(&criteria.Query, "query", "", "Filter by defect type or nearest station substring")
	cmd.Flags().StringVar(&criteria.Severity, "severity", filter.All, "Filter by severity (Low, High, Critical or All)")
	cmd.Flags().StringVar(&criteria.Status, "status", filter.All, "Filter by status (Open, Resolved or All)")

	return cmd
}

func runWatch(settings *conf.Settings, criteria filter.Criteria) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	updates := a.Syncer.Subscribe()
	if err := a.Syncer.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	quitChan := make(chan struct{})

	if settings.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(settings, a.Metrics)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quitChan)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("watching %s every %dms, press Ctrl+C to stop\n",
		settings.Service.BaseURL, settings.Service.PollIntervalMs)

	for {
		select {
		case snap := <-updates:
			printSnapshot(snap, criteria)
		case sig := <-sigChan:
			logging.Info("shutting down on signal", "signal", sig.String())
			close(quitChan)
			wg.Wait()
			return nil
		}
	}
}

func printSnapshot(snap syncer.Snapshot, criteria filter.Criteria) {
	visible := filter.Apply(snap.Defects, criteria)

	fmt.Printf("\n[%s] %d defect(s), %d matching filter\n",
		snap.FetchedAt.Format("15:04:05"), len(snap.Defects), len(visible))
	for i := range visible {
		d := &visible[i]
		fmt.Printf("  #%-5d %-8s %-8s %-24s %s\n",
			d.ID, d.Severity, d.Status, d.DefectType, d.Station())
	}
}
