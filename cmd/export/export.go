// Package export implements the export subcommand.
package export

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railwatch/railwatch-go/internal/app"
	"github.com/railwatch/railwatch-go/internal/conf"
	"github.com/railwatch/railwatch-go/internal/defectapi"
)

// Command returns the export subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the Excel defect report",
		Long: `Request the server-rendered Excel report for all defect records and
save it under the configured export directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVarP(&settings.Export.Directory, "output", "o", settings.Export.Directory, "Directory to write the report into")

	return cmd
}

func runExport(ctx context.Context, settings *conf.Settings) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.Exporter.Request(ctx)
	if err != nil {
		return fmt.Errorf("%s", defectapi.Detail(err, "Failed to export defect data"))
	}

	fmt.Printf("report written to %s\n", path)
	return nil
}
