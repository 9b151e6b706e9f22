// Package xlsform reads and writes XLSForm workbooks: the survey, choices
// and settings worksheets produced by the compiler.
package xlsform

import (
	"errors"
	"slices"

	"github.com/chriserin/comb/internal/compiler"
)

var ErrNoSettings = errors.New("form has no settings; add an @form command")

const (
	SurveySheet   = "survey"
	ChoicesSheet  = "choices"
	SettingsSheet = "settings"
)

// Leading columns of each sheet. Other columns follow in name order.
var (
	SurveyColumns = []string{
		"type", "name", "label", "hint", "appearance", "constraint",
		"constraint_message", "calculation", "required",
		"required_message", "repeat_count", "relevance",
	}
	ChoicesColumns  = []string{"list_name", "value", "label", "filter"}
	SettingsColumns = []string{"form_title", "form_id", "version"}
)

type Row map[string]string

// Sheet is one worksheet. Rows[i] is spreadsheet row i+2; row 1 holds the
// column names.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the sheet's header names col.
func (s *Sheet) HasColumn(col string) bool {
	return slices.Contains(s.Columns, col)
}

type Workbook struct {
	Survey   Sheet
	Choices  Sheet
	Settings Sheet
}

func (wb *Workbook) sheets() []*Sheet {
	return []*Sheet{&wb.Survey, &wb.Choices, &wb.Settings}
}

// FromResult lays out a compile result as a workbook.
func FromResult(res *compiler.Result) (*Workbook, error) {
	if res.Settings == nil {
		return nil, ErrNoSettings
	}
	settings := []Row{Row(res.Settings)}

	return &Workbook{
		Survey:   newSheet(SurveySheet, SurveyColumns, rows(res.Survey)),
		Choices:  newSheet(ChoicesSheet, ChoicesColumns, rows(res.Choices)),
		Settings: newSheet(SettingsSheet, SettingsColumns, settings),
	}, nil
}

func rows(in []compiler.Row) []Row {
	out := make([]Row, len(in))
	for i, r := range in {
		out[i] = Row(r)
	}
	return out
}

func newSheet(name string, leading []string, rows []Row) Sheet {
	return Sheet{Name: name, Columns: columnOrder(leading, rows), Rows: rows}
}

// columnOrder returns the keys used by rows: those listed in leading first,
// in that order, then the rest sorted.
func columnOrder(leading []string, rows []Row) []string {
	used := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			used[k] = true
		}
	}

	var cols, rest []string
	for _, k := range leading {
		if used[k] {
			cols = append(cols, k)
			delete(used, k)
		}
	}
	for k := range used {
		rest = append(rest, k)
	}
	slices.Sort(rest)

	return append(cols, rest...)
}
