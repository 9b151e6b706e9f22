// Package lint checks a compiled XLSForm workbook for mistakes the compiler
// lets through: duplicate names, dangling references, missing lists.
package lint

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/chriserin/comb/internal/xlsform"
)

type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

type Finding struct {
	Severity Severity
	Sheet    string
	Row      int // spreadsheet row number, 0 for the sheet as a whole
	Name     string
	Message  string
}

func (f Finding) String() string {
	if f.Row == 0 {
		return fmt.Sprintf("%s: %s", f.Sheet, f.Message)
	}
	return fmt.Sprintf("%s:%d: %s", f.Sheet, f.Row, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == Error })
}

var (
	coreColumns = []string{"name", "type", "label"}

	structuralTypes = []string{"begin group", "end group", "begin repeat", "end repeat", "note"}

	// Question types that need not be required.
	optionalTypes = []string{
		"calculate", "calculate_here", "start", "end", "today",
		"deviceid", "subscriberid", "text audit",
	}

	variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)
)

// Check runs every rule over wb. Choices findings come first, then survey
// findings in row order, then settings.
func Check(wb *xlsform.Workbook) []Finding {
	var findings []Finding
	findings = append(findings, checkChoices(&wb.Choices)...)
	findings = append(findings, checkSurvey(&wb.Survey, listNames(&wb.Choices))...)
	findings = append(findings, checkSettings(&wb.Settings)...)
	return findings
}

func checkSettings(sheet *xlsform.Sheet) []Finding {
	if len(sheet.Rows) > 0 {
		return nil
	}
	return []Finding{{
		Severity: Error,
		Sheet:    sheet.Name,
		Message:  "the form has no settings row",
	}}
}

// checkChoices warns about a list whose entries are split by another list.
func checkChoices(sheet *xlsform.Sheet) []Finding {
	var findings []Finding
	seen := map[string]bool{}
	reported := map[string]bool{}
	last := ""

	for i, row := range sheet.Rows {
		name := row["list_name"]
		if name != last && seen[name] && !reported[name] {
			findings = append(findings, Finding{
				Severity: Warning,
				Sheet:    sheet.Name,
				Row:      i + 2,
				Name:     name,
				Message:  fmt.Sprintf("choice list %s is defined in multiple places", name),
			})
			reported[name] = true
		}
		seen[name] = true
		last = name
	}
	return findings
}

func listNames(sheet *xlsform.Sheet) map[string]bool {
	names := map[string]bool{}
	for _, row := range sheet.Rows {
		names[row["list_name"]] = true
	}
	return names
}

func checkSurvey(sheet *xlsform.Sheet, lists map[string]bool) []Finding {
	var missing []string
	for _, col := range coreColumns {
		if !sheet.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return []Finding{{
			Severity: Error,
			Sheet:    sheet.Name,
			Message:  fmt.Sprintf("the survey worksheet is missing core columns %s", strings.Join(missing, ", ")),
		}}
	}

	var findings []Finding
	names := map[string]bool{}

	for i, row := range sheet.Rows {
		name := row["name"]
		report := func(sev Severity, format string, args ...any) {
			findings = append(findings, Finding{
				Severity: sev,
				Sheet:    sheet.Name,
				Row:      i + 2,
				Name:     name,
				Message:  name + " " + fmt.Sprintf(format, args...),
			})
		}

		if definesVariable(row) || row["type"] == "begin repeat" {
			if names[name] {
				report(Warning, "is defined more than once")
			}
			names[name] = true
		}

		if definesSelect(row) {
			var undefined []string
			for _, l := range selectLists(row) {
				if !lists[l] {
					undefined = append(undefined, l)
				}
			}
			if len(undefined) > 0 {
				report(Error, "refers to undefined choice lists: %s", strings.Join(undefined, ", "))
			}
		}

		if definesVariable(row) && !slices.Contains(optionalTypes, row["type"]) && row["required"] != "yes" {
			report(Warning, "is not required")
		}

		if definesCalculate(row) && strings.TrimSpace(row["calculation"]) == "" {
			report(Error, "has empty calculation")
		}

		if refs := undefinedReferences(row, names); len(refs) > 0 {
			report(Error, "has undefined references: %s", strings.Join(refs, ", "))
		}
	}
	return findings
}

func definesVariable(row xlsform.Row) bool {
	t := row["type"]
	return strings.TrimSpace(t) != "" && !slices.Contains(structuralTypes, t)
}

func definesSelect(row xlsform.Row) bool {
	t := row["type"]
	return strings.HasPrefix(t, "select_one ") || strings.HasPrefix(t, "select_multiple ")
}

func definesCalculate(row xlsform.Row) bool {
	return row["type"] == "calculate" || row["type"] == "calculate_here"
}

// selectLists returns the list names in a select type, without or_other.
func selectLists(row xlsform.Row) []string {
	var lists []string
	for _, word := range strings.Split(row["type"], " ")[1:] {
		if word != "" && word != "or_other" {
			lists = append(lists, word)
		}
	}
	return lists
}

// Variables returns the names referenced as ${name} in s.
func Variables(s string) []string {
	var vars []string
	for _, m := range variablePattern.FindAllStringSubmatch(s, -1) {
		vars = append(vars, m[1])
	}
	return vars
}

func undefinedReferences(row xlsform.Row, defined map[string]bool) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	var refs []string
	for _, col := range cols {
		for _, v := range Variables(row[col]) {
			if !defined[v] && !slices.Contains(refs, v) {
				refs = append(refs, v)
			}
		}
	}
	return refs
}
