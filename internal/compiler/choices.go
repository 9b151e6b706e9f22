package compiler

import (
	"maps"

	"github.com/chriserin/comb/internal/diag"
	"github.com/chriserin/comb/internal/parser"
)

func (s *session) expandChoices(nodes []parser.Node, scope Params) ([]Row, error) {
	var rows []Row

	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Comment:

		case *parser.Command:
			if n.Name != "include" {
				return nil, diag.Errorf(diag.ErrUnknownCommand, n.Pos, "@%s", n.Name)
			}
			macros, err := pairs(n, n.Args[1:])
			if err != nil {
				return nil, err
			}
			err = s.include(n, macros, parser.ParseChoices, func(nodes []parser.Node) error {
				included, err := s.expandChoices(nodes, scope.Clone())
				rows = append(rows, included...)
				return err
			})
			if err != nil {
				return nil, err
			}

		case *parser.List:
			// The list's own parameters replace inherited ones outright.
			listScope := Merge(scope, Params{"list_name": n.Name})
			maps.Copy(listScope, paramsOf(n.Params))

			entries, err := s.expandChoices(n.Body, listScope)
			if err != nil {
				return nil, err
			}
			rows = append(rows, entries...)

		case *parser.Choice:
			row := Row{"value": n.Value, "label": n.Label}
			maps.Copy(row, Merge(scope, paramsOf(n.Params)))
			rows = append(rows, row)
		}
	}

	return rows, nil
}
