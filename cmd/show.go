package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/comb/internal/compiler"
	"github.com/chriserin/comb/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <file.comb>",
	Short: "Print the compiled outline of a survey without writing a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShow(cmd.OutOrStdout(), args[0], logger)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, source string, logger *log.Logger) error {
	c := compiler.New(compiler.Options{Fs: afero.NewOsFs(), Logger: logger})
	res, err := c.CompileFile(source)
	if err != nil {
		return err
	}

	if res.Settings != nil {
		fmt.Fprintf(w, "%s %s\n", res.Settings["form_id"], res.Settings["version"])
		fmt.Fprintln(w)
	}

	depth := 0
	for _, row := range res.Survey {
		typ := row["type"]
		if strings.HasPrefix(typ, "end ") {
			depth = max(depth-1, 0)
			continue
		}
		label := row["label"]
		if label == "" {
			label = row["calculation"]
		}
		ui.OutlineRow(w, depth, typ, row["name"], label)
		if strings.HasPrefix(typ, "begin ") {
			depth++
		}
	}

	// Lists in order of first appearance
	var lists []string
	counts := map[string]int{}
	for _, row := range res.Choices {
		name := row["list_name"]
		if _, seen := counts[name]; !seen {
			lists = append(lists, name)
		}
		counts[name]++
	}
	if len(lists) > 0 {
		fmt.Fprintln(w)
	}
	for _, name := range lists {
		ui.ChoiceListLine(w, name, counts[name])
	}

	return nil
}
