package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/comb/internal/db"
	"github.com/chriserin/comb/internal/ui"
)

var formFlag string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded builds, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunHistory(cmd.OutOrStdout(), cfg.Registry, formFlag)
	},
}

func init() {
	historyCmd.Flags().StringVar(&formFlag, "form", "", "Only show builds of this form id")
	rootCmd.AddCommand(historyCmd)
}

func RunHistory(w io.Writer, registry, formID string) error {
	if _, err := os.Stat(registry); os.IsNotExist(err) {
		return fmt.Errorf("no registry at %s, run `comb init` first", registry)
	}

	sqlDB, err := db.Open(registry)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	builds, err := db.ListBuilds(sqlDB, formID)
	if err != nil {
		return err
	}

	// Compute column widths
	formWidth, versionWidth := 0, 0
	for _, b := range builds {
		formWidth = max(formWidth, len(b.FormID))
		versionWidth = max(versionWidth, len(b.Version))
	}

	for _, b := range builds {
		ui.HistoryRow(w, b.CompiledAt.Local().Format("2006-01-02 15:04"), b.FormID, b.Version, b.OutputPath,
			b.SurveyRows, b.ChoiceRows, formWidth, versionWidth)
	}
	return nil
}
