// Package reopen implements the reopen subcommand.
package reopen

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

// Command returns the reopen subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <defect-id>",
		Short: "Return a resolved defect to the open state (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid defect id %q", args[0])
			}
			return runReopen(cmd.Context(), settings, id)
		},
	}
}

func runReopen(ctx context.Context, settings *conf.Settings, id int) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Syncer.RefreshOnce(ctx); err != nil {
		return err
	}

	optimistic, err := a.Controller.Reopen(ctx, id)
	if err != nil {
		return fmt.Errorf("%s", defectapi.Detail(err, lifecycle.FallbackMessage(lifecycle.TransitionReopen)))
	}

	fmt.Printf("defect #%d (%s) reopened\n", optimistic.ID, optimistic.DefectType)
	return nil
}
