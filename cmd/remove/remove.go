// Package remove implements the delete subcommand for single and bulk
// removal of defect records.
package remove

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/railwatch/railwatch-go/internal/app"
	"github.com/railwatch/railwatch-go/internal/conf"
	"github.com/railwatch/railwatch-go/internal/defectapi"
	"github.com/railwatch/railwatch-go/internal/filter"
	"github.com/railwatch/railwatch-go/internal/lifecycle"
)

// Command returns the delete subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	criteria := filter.None()
	var selectAll bool
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete [defect-id...]",
		Short: "Permanently delete defect records (admin only)",
		Long: `Permanently delete one or more defect records. With explicit ids the
records are selected directly; with --all every record matching the filter
flags is selected. Deletion is irreversible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid defect id %q", arg)
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 && !selectAll {
				return fmt.Errorf("nothing to delete: give defect ids or --all")
			}
			return runDelete(cmd.Context(), settings, ids, criteria, selectAll, assumeYes)
		},
	}

	cmd.Flags().BoolVar(&selectAll, "all", false, "Select every record matching the filter flags")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&criteria.Query, "query", "", "Filter by defect type or nearest station substring")
	cmd.Flags().StringVar(&criteria.Severity, "severity", filter.All, "Filter by severity (Low, High, Critical or All)")
	cmd.Flags().StringVar(&criteria.Status, "status", filter.All, "Filter by status (Open, Resolved or All)")

	return cmd
}

func runDelete(ctx context.Context, settings *conf.Settings, ids []int, criteria filter.Criteria, selectAll, assumeYes bool) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Syncer.RefreshOnce(ctx); err != nil {
		return err
	}

	// Single explicit id goes through the single-record transition
	if len(ids) == 1 && !selectAll {
		if !confirm(assumeYes, fmt.Sprintf("Permanently delete defect #%d? This cannot be undone.", ids[0])) {
			return nil
		}
		if err := a.Controller.Delete(ctx, ids[0]); err != nil {
			return fmt.Errorf("%s", defectapi.Detail(err, lifecycle.FallbackMessage(lifecycle.TransitionDelete)))
		}
		fmt.Printf("defect #%d deleted\n", ids[0])
		return nil
	}

	snap, _ := a.Syncer.Current()
	visible := filter.VisibleIDs(snap.Defects, criteria)

	if selectAll {
		a.Selection.SelectAll(visible)
	} else {
		for _, id := range ids {
			a.Selection.Toggle(id)
		}
		// Selection members must exist within the filtered view
		a.Selection.Prune(visible)
	}

	count := a.Selection.Count()
	if count == 0 {
		return fmt.Errorf("no matching records selected")
	}

	if !confirm(assumeYes, fmt.Sprintf("Permanently delete %d defect record(s)? This cannot be undone.", count)) {
		return nil
	}

	if err := a.Controller.BulkDelete(ctx, a.Selection); err != nil {
		return fmt.Errorf("%s", defectapi.Detail(err, lifecycle.FallbackMessage(lifecycle.TransitionBulkDelete)))
	}

	fmt.Printf("%d defect record(s) deleted\n", count)
	return nil
}

// confirm prompts on stdin unless the prompt is suppressed.
func confirm(assumeYes bool, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
