// Package resolve implements the resolve subcommand.
package resolve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/railwatch/railwatch-go/internal/app"
	"github.com/railwatch/railwatch-go/internal/conf"
	"github.com/railwatch/railwatch-go/internal/defectapi"
	"github.com/railwatch/railwatch-go/internal/lifecycle"
)

// Command returns the resolve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <defect-id>",
		Short: "Mark an open defect as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid defect id %q", args[0])
			}
			return runResolve(cmd.Context(), settings, id)
		},
	}
}

func runResolve(ctx context.Context, settings *conf.Settings, id int) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Syncer.RefreshOnce(ctx); err != nil {
		return err
	}

	optimistic, err := a.Controller.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("%s", defectapi.Detail(err, lifecycle.FallbackMessage(lifecycle.TransitionResolve)))
	}

	fmt.Printf("defect #%d (%s) marked as %s\n", optimistic.ID, optimistic.DefectType, optimistic.Status)

	// Reconcile so the reported state is server truth, not the optimistic hint
	if err := a.Syncer.RefreshOnce(ctx); err == nil {
		if record, ok := a.Syncer.Lookup(id); ok && record.ResolvedAt != nil {
			fmt.Printf("resolved at %s\n", record.ResolvedAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
