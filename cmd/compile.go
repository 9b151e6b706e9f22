package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/comb/internal/compiler"
	"github.com/chriserin/comb/internal/db"
	"github.com/chriserin/comb/internal/lint"
	"github.com/chriserin/comb/internal/ui"
	"github.com/chriserin/comb/internal/xlsform"
)

var errLintFailed = errors.New("lint found errors")

var compileCmd = &cobra.Command{
	Use:   "compile <file.comb>",
	Short: "Compile a comb survey into an XLSForm workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCompile(cmd.OutOrStdout(), CompileOptions{
			Source:   args[0],
			Output:   cfg.Output,
			Registry: cfg.Registry,
			Lint:     cfg.Lint,
			Logger:   logger,
		})
	},
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "Workbook to write (default: the source name with .xlsx)")
	compileCmd.Flags().Bool("lint", false, "Lint the workbook after writing it")
	rootCmd.AddCommand(compileCmd)
}

type CompileOptions struct {
	Source   string
	Output   string
	Registry string // builds are recorded only when this database exists
	Lint     bool
	Logger   *log.Logger
	Now      func() time.Time
}

func RunCompile(w io.Writer, opts CompileOptions) error {
	if opts.Output == "" {
		opts.Output = strings.TrimSuffix(opts.Source, filepath.Ext(opts.Source)) + ".xlsx"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	fs := afero.NewOsFs()
	c := compiler.New(compiler.Options{Fs: fs, Now: opts.Now, Logger: opts.Logger})
	res, err := c.CompileFile(opts.Source)
	if err != nil {
		return err
	}

	wb, err := xlsform.FromResult(res)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.Source, err)
	}
	if err := xlsform.Write(fs, opts.Output, wb); err != nil {
		return err
	}
	ui.WroteLine(w, opts.Output, len(res.Survey), len(res.Choices))
	opts.Logger.Info("compiled", "source", opts.Source, "form", res.Settings["form_id"], "version", res.Settings["version"])

	var findings []lint.Finding
	if opts.Lint {
		loaded, err := xlsform.Load(fs, opts.Output)
		if err != nil {
			return err
		}
		findings = lint.Check(loaded)
		printFindings(w, findings)
	}

	if err := recordBuild(opts, res, findings); err != nil {
		return err
	}

	if lint.HasErrors(findings) {
		return errLintFailed
	}
	return nil
}

func recordBuild(opts CompileOptions, res *compiler.Result, findings []lint.Finding) error {
	if _, err := os.Stat(opts.Registry); os.IsNotExist(err) {
		opts.Logger.Debug("no registry, build not recorded", "registry", opts.Registry)
		return nil
	}

	sqlDB, err := db.Open(opts.Registry)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	b := db.Build{
		SourcePath: opts.Source,
		OutputPath: opts.Output,
		FormID:     res.Settings["form_id"],
		Version:    res.Settings["version"],
		SurveyRows: len(res.Survey),
		ChoiceRows: len(res.Choices),
		CompiledAt: opts.Now(),
	}
	for _, f := range findings {
		if f.Severity == lint.Error {
			b.LintErrors++
		} else {
			b.LintWarnings++
		}
	}

	id, err := db.RecordBuild(sqlDB, b)
	if err != nil {
		return err
	}
	opts.Logger.Debug("recorded build", "id", id, "registry", opts.Registry)
	return nil
}
