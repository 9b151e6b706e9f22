package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/comb/internal/config"
	"github.com/chriserin/comb/internal/diag"
	"github.com/chriserin/comb/internal/ui"
)

var (
	cfg    = &config.Config{LogLevel: "warn", Registry: config.DefaultRegistry}
	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:           "comb",
	Short:         "Compile comb survey sources into XLSForm workbooks",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configure(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("registry", config.DefaultRegistry, "Build registry database")
}

// configure loads the configuration for the current directory and sets up
// the logger.
func configure(cmd *cobra.Command) error {
	c, err := config.Load(afero.NewOsFs(), ".", cmd.Flags())
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}

	cfg = c
	logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: level, Prefix: "comb"})
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError prints err and, when it points into a source file, the lines
// around the fault.
func printError(w io.Writer, err error) {
	ui.ErrorLine(w, err)

	var de *diag.Error
	if !errors.As(err, &de) {
		return
	}
	src, readErr := os.ReadFile(de.Pos.File)
	if readErr != nil {
		return
	}
	ui.Snippet(w, de.Pos, strings.ReplaceAll(string(src), "\r\n", "\n"))
}
