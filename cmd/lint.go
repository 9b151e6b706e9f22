package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/comb/internal/lint"
	"github.com/chriserin/comb/internal/ui"
	"github.com/chriserin/comb/internal/xlsform"
)

var lintCmd = &cobra.Command{
	Use:   "lint <form.xlsx>",
	Short: "Check an XLSForm workbook for common mistakes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunLint(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func RunLint(w io.Writer, path string) error {
	wb, err := xlsform.Load(afero.NewOsFs(), path)
	if err != nil {
		return err
	}

	findings := lint.Check(wb)
	printFindings(w, findings)

	if lint.HasErrors(findings) {
		return errLintFailed
	}
	return nil
}

func printFindings(w io.Writer, findings []lint.Finding) {
	errs, warnings := 0, 0
	for _, f := range findings {
		location := f.Sheet
		if f.Row > 0 {
			location = fmt.Sprintf("%s:%d", f.Sheet, f.Row)
		}
		ui.FindingLine(w, string(f.Severity), location, f.Message)

		if f.Severity == lint.Error {
			errs++
		} else {
			warnings++
		}
	}
	ui.LintSummary(w, errs, warnings)
}
