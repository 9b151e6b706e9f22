// Package compiler expands parsed comb sources into XLSForm rows.
package compiler

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/chriserin/comb/internal/diag"
	"github.com/chriserin/comb/internal/parser"
	"github.com/chriserin/comb/internal/preprocess"
)

// Row is one worksheet row keyed by column name.
type Row map[string]string

// Result holds the rows of a compiled form. Settings is nil when the source
// has no @form command.
type Result struct {
	Survey   []Row
	Choices  []Row
	Settings Row
}

type Options struct {
	Fs     afero.Fs         // defaults to the OS filesystem
	Now    func() time.Time // clock for "auto" versions; defaults to time.Now
	Logger *log.Logger      // defaults to a discarding logger
}

type Compiler struct {
	fs     afero.Fs
	now    func() time.Time
	logger *log.Logger
}

func New(opts Options) *Compiler {
	c := &Compiler{fs: opts.Fs, now: opts.Now, logger: opts.Logger}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// CompileFile compiles the survey file at path.
func (c *Compiler) CompileFile(path string) (*Result, error) {
	src, err := c.read(path)
	if err != nil {
		return nil, err
	}
	return c.Compile(path, src)
}

// Compile compiles survey source text. Files it references resolve relative
// to the directory of name.
func (c *Compiler) Compile(name, src string) (*Result, error) {
	s := &session{Compiler: c}
	leave, err := s.enter(diag.Position{File: name}, name)
	if err != nil {
		return nil, err
	}
	defer leave()

	nodes, err := parseSurvey(name, src)
	if err != nil {
		return nil, err
	}

	out, err := s.expandSurvey(nodes, Params{})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled", "file", name, "survey", len(out.survey), "choices", len(out.choices))
	return &Result{Survey: out.survey, Choices: out.choices, Settings: out.settings}, nil
}

func (c *Compiler) read(path string) (string, error) {
	c.logger.Debug("reading source", "path", path)
	b, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.ReplaceAll(string(b), "\r\n", "\n"), nil
}

func parseSurvey(name, src string) ([]parser.Node, error) {
	folded, err := preprocess.FoldContinuations(src)
	if err != nil {
		return nil, fmt.Errorf("folding %s: %w", name, err)
	}
	return parser.ParseSurvey(name, folded)
}

// session is the state of one compile: the chain of files currently being
// expanded, used to reject an include of a file that is already open.
type session struct {
	*Compiler
	chain []string
}

func (s *session) enter(at diag.Position, path string) (leave func(), err error) {
	canonical, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		canonical = filepath.Clean(path)
	}
	for i, open := range s.chain {
		if open == canonical {
			cycle := append(append([]string{}, s.chain[i:]...), canonical)
			return nil, diag.Errorf(diag.ErrCyclicInclude, at, "%s", strings.Join(cycle, " -> "))
		}
	}
	s.chain = append(s.chain, canonical)
	return func() { s.chain = s.chain[:len(s.chain)-1] }, nil
}

// resolve locates a file named by a command relative to the file holding
// the command.
func resolve(at diag.Position, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(filepath.Dir(at.File), target)
}

// include reads the file a command refers to, substitutes the command's
// macro arguments and parses it with parse. Errors from the included file
// are wrapped with the include site.
func (s *session) include(cmd *parser.Command, macros Params, parse func(name, src string) ([]parser.Node, error), expand func([]parser.Node) error) error {
	path := resolve(cmd.Pos, cmd.Args[0])
	s.logger.Debug("including", "command", cmd.Name, "path", path, "from", cmd.Pos.String())

	leave, err := s.enter(cmd.Pos, path)
	if err != nil {
		return err
	}
	defer leave()

	err = func() error {
		src, err := s.read(path)
		if err != nil {
			return err
		}
		src, err = preprocess.SubstituteMacros(path, src, macros)
		if err != nil {
			return err
		}
		nodes, err := parse(path, src)
		if err != nil {
			return err
		}
		return expand(nodes)
	}()
	if err != nil {
		return fmt.Errorf("%s: @%s %s: %w", cmd.Pos, cmd.Name, cmd.Args[0], err)
	}
	return nil
}

// pairs reads key/value arguments.
func pairs(cmd *parser.Command, args []string) (Params, error) {
	if len(args)%2 != 0 {
		return nil, diag.Errorf(diag.ErrSyntax, cmd.Pos, "@%s: argument %q has no value", cmd.Name, args[len(args)-1])
	}
	out := make(Params, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		out[args[i]] = args[i+1]
	}
	return out, nil
}
