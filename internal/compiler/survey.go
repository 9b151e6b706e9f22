package compiler

import (
	"maps"
	"strings"

	"github.com/chriserin/comb/internal/diag"
	"github.com/chriserin/comb/internal/parser"
)

// Keys that apply to a group or repeat marker row only and are not inherited
// by the block's children.
var markerOnlyKeys = []string{relevanceKey, "appearance"}

type expansion struct {
	survey   []Row
	choices  []Row
	settings Row
}

// splice appends the rows of a nested block. Settings from the block
// replace earlier ones, since a later @form wins.
func (e *expansion) splice(inner *expansion) {
	e.survey = append(e.survey, inner.survey...)
	e.choices = append(e.choices, inner.choices...)
	if inner.settings != nil {
		e.settings = inner.settings
	}
}

func (s *session) expandSurvey(nodes []parser.Node, scope Params) (*expansion, error) {
	out := &expansion{}

	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Comment:

		case *parser.Command:
			var err error
			scope, err = s.surveyCommand(n, scope, out)
			if err != nil {
				return nil, err
			}

		case *parser.If:
			inner, err := s.expandSurvey(n.Body, Merge(scope, Params{relevanceKey: Relevance(n.Cond)}))
			if err != nil {
				return nil, err
			}
			out.splice(inner)

		case *parser.Group:
			if err := s.expandGroup(n, scope, out); err != nil {
				return nil, err
			}

		case *parser.Question:
			out.survey = append(out.survey, question(n, scope))
		}
	}

	return out, nil
}

// surveyCommand runs one @command and returns the scope in effect for the
// statements after it.
func (s *session) surveyCommand(cmd *parser.Command, scope Params, out *expansion) (Params, error) {
	switch cmd.Name {
	case "form":
		settings, err := s.formSettings(cmd)
		if err != nil {
			return nil, err
		}
		out.settings = settings

	case "choices":
		macros, err := pairs(cmd, cmd.Args[1:])
		if err != nil {
			return nil, err
		}
		err = s.include(cmd, macros, parser.ParseChoices, func(nodes []parser.Node) error {
			rows, err := s.expandChoices(nodes, Params{})
			out.choices = append(out.choices, rows...)
			return err
		})
		if err != nil {
			return nil, err
		}

	case "include":
		macros, err := pairs(cmd, cmd.Args[1:])
		if err != nil {
			return nil, err
		}
		err = s.include(cmd, macros, parseSurvey, func(nodes []parser.Node) error {
			inner, err := s.expandSurvey(nodes, scope.Clone())
			if err != nil {
				return err
			}
			// Settings are global to the top-level compile.
			out.survey = append(out.survey, inner.survey...)
			out.choices = append(out.choices, inner.choices...)
			return nil
		})
		if err != nil {
			return nil, err
		}

	case "required":
		if len(cmd.Args) != 1 {
			return nil, diag.Errorf(diag.ErrSyntax, cmd.Pos, "@required takes one argument, got %d", len(cmd.Args))
		}
		return scope.With("required", cmd.Args[0]), nil

	default:
		return nil, diag.Errorf(diag.ErrUnknownCommand, cmd.Pos, "@%s", cmd.Name)
	}

	return scope, nil
}

// formSettings builds the settings row of @form <id> <version> <title>.
func (s *session) formSettings(cmd *parser.Command) (Row, error) {
	if len(cmd.Args) < 3 {
		return nil, diag.Errorf(diag.ErrSyntax, cmd.Pos, "@form needs an id, a version and a title")
	}
	extra, err := pairs(cmd, cmd.Args[3:])
	if err != nil {
		return nil, err
	}

	row := Row{"form_id": cmd.Args[0], "form_title": cmd.Args[2]}
	maps.Copy(row, extra)
	if cond, ok := row["if"]; ok {
		row[relevanceKey] = cond
		delete(row, "if")
	}

	row["version"] = cmd.Args[1]
	if cmd.Args[1] == "auto" {
		row["version"] = s.now().UTC().Format("0601021504")
	}
	return row, nil
}

func (s *session) expandGroup(g *parser.Group, scope Params, out *expansion) error {
	own := paramsOf(g.Params)
	if g.If != nil {
		own[relevanceKey] = Relevance(*g.If)
	}
	merged := Merge(scope, own)

	begin := Row{"type": "begin " + string(g.Kind), "name": g.Name}
	if g.Label != nil {
		begin["label"] = *g.Label
	}
	maps.Copy(begin, merged)
	out.survey = append(out.survey, begin)

	inner, err := s.expandSurvey(g.Body, merged.Without(markerOnlyKeys...))
	if err != nil {
		return err
	}
	out.splice(inner)

	out.survey = append(out.survey, Row{"type": "end " + string(g.Kind), "name": g.Name})
	return nil
}

func question(q *parser.Question, scope Params) Row {
	row := Row{"name": q.Name, "type": strings.Join(q.Type, " ")}
	if q.Label != nil {
		if row["type"] == "calculate" {
			row["calculation"] = *q.Label
		} else {
			row["label"] = *q.Label
		}
	}
	maps.Copy(row, Merge(scope, paramsOf(q.Params)))
	return row
}
