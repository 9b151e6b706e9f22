package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/chriserin/comb/internal/diag"
)

const tabWidth = 8

// line is a non-blank physical source line.
type line struct {
	num  int    // 1-based line number
	col  int    // 1-based column of the first non-blank character, tabs expanded
	text string // whole line including indentation
}

func (l line) comment() bool {
	return strings.HasPrefix(strings.TrimSpace(l.text), "#")
}

type statementFunc func(b *blockParser, l line) (Node, error)

// blockParser groups lines into nested blocks by indentation. A block's
// column is the column of its first statement, and every other statement of
// the block must start at exactly that column. A shallower line closes the
// block and must match the column of an enclosing block.
type blockParser struct {
	file      string
	lines     []line
	next      int
	stack     []int // columns of the open blocks; stack[0] is a sentinel
	statement statementFunc
}

// ParseSurvey parses survey source text into its statement tree.
func ParseSurvey(filename, src string) ([]Node, error) {
	return newBlockParser(filename, src, surveyStatement).block()
}

// ParseChoices parses choices source text into its statement tree.
func ParseChoices(filename, src string) ([]Node, error) {
	return newBlockParser(filename, src, choicesStatement).block()
}

func newBlockParser(filename, src string, statement statementFunc) *blockParser {
	return &blockParser{
		file:      filename,
		lines:     splitLines(src),
		stack:     []int{0},
		statement: statement,
	}
}

func splitLines(src string) []line {
	var lines []line
	for i, text := range strings.Split(src, "\n") {
		text = strings.TrimSuffix(text, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, line{num: i + 1, col: indentColumn(text), text: text})
	}
	return lines
}

func indentColumn(text string) int {
	width := 0
	for _, r := range text {
		switch r {
		case ' ':
			width++
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		default:
			return width + 1
		}
	}
	return width + 1
}

func (b *blockParser) block() ([]Node, error) {
	nodes := b.comments()
	if b.next == len(b.lines) || b.lines[b.next].col <= b.stack[len(b.stack)-1] {
		return nodes, nil
	}

	col := b.lines[b.next].col
	b.stack = append(b.stack, col)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	for b.next < len(b.lines) {
		l := b.lines[b.next]
		if l.comment() {
			nodes = append(nodes, b.comments()...)
			continue
		}
		if l.col < col {
			if !b.closes(l.col) {
				return nil, b.errorf(diag.ErrIndentation, l, "unindent does not match any outer indentation level")
			}
			break
		}
		if l.col > col {
			return nil, b.errorf(diag.ErrIndentation, l, "unexpected indent")
		}

		b.next++
		node, err := b.statement(b, l)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// comments consumes consecutive comment lines. Comments do not take part in
// the indentation stack.
func (b *blockParser) comments() []Node {
	var nodes []Node
	for b.next < len(b.lines) && b.lines[b.next].comment() {
		l := b.lines[b.next]
		text := strings.TrimPrefix(strings.TrimSpace(l.text), "#")
		nodes = append(nodes, &Comment{Pos: b.pos(l), Text: strings.TrimSpace(text)})
		b.next++
	}
	return nodes
}

// body parses the indented block following a header line. ok is false when
// the block holds no statements.
func (b *blockParser) body() (nodes []Node, ok bool, err error) {
	nodes, err = b.block()
	if err != nil {
		return nil, false, err
	}
	for _, n := range nodes {
		if _, isComment := n.(*Comment); !isComment {
			return nodes, true, nil
		}
	}
	return nodes, false, nil
}

func (b *blockParser) closes(col int) bool {
	for i := len(b.stack) - 2; i >= 0; i-- {
		if b.stack[i] == col {
			return true
		}
	}
	return false
}

func (b *blockParser) pos(l line) diag.Position {
	return diag.Position{File: b.file, Line: l.num, Col: l.col}
}

func (b *blockParser) errorf(kind error, l line, format string, args ...any) error {
	return diag.Errorf(kind, b.pos(l), format, args...)
}

func (b *blockParser) syntaxError(l line, err error) error {
	pos := b.pos(l)
	msg := err.Error()
	var perr participle.Error
	if errors.As(err, &perr) {
		pos.Col = perr.Position().Column
		msg = perr.Message()
	}
	return &diag.Error{Kind: diag.ErrSyntax, Pos: pos, Message: msg}
}

func surveyStatement(b *blockParser, l line) (Node, error) {
	parsed, err := surveyParser.ParseString(b.file, l.text)
	if err != nil {
		return nil, b.syntaxError(l, err)
	}
	pos := b.pos(l)

	switch {
	case parsed.Command != nil:
		return parsed.Command.node(pos), nil

	case parsed.If != nil:
		body, ok, err := b.body()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, b.errorf(diag.ErrIndentation, l, "expected an indented block after if")
		}
		return &If{Pos: pos, Cond: parsed.If.Cond.condition(), Body: body}, nil

	case parsed.Group != nil:
		body, ok, err := b.body()
		if err != nil {
			return nil, err
		}
		if ok {
			return parsed.Group.node(pos, body), nil
		}
		// "group integer:" without a body is a question named group.
		if parsed.Group.bare() {
			if q, err := questionParser.ParseString(b.file, l.text); err == nil {
				return q.node(pos), nil
			}
		}
		return nil, b.errorf(diag.ErrIndentation, l, "expected an indented block after %s %s", parsed.Group.Kind, parsed.Group.Name)

	default:
		return parsed.Question.node(pos), nil
	}
}

func choicesStatement(b *blockParser, l line) (Node, error) {
	parsed, err := choicesParser.ParseString(b.file, l.text)
	if err != nil {
		return nil, b.syntaxError(l, err)
	}
	pos := b.pos(l)

	switch {
	case parsed.Command != nil:
		return parsed.Command.node(pos), nil

	case parsed.List != nil:
		body, ok, err := b.body()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, b.errorf(diag.ErrIndentation, l, "expected an indented block after list %s", parsed.List.Name)
		}
		return parsed.List.node(pos, body), nil

	default:
		return parsed.Choice.node(pos), nil
	}
}
