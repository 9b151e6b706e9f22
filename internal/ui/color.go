package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/comb/internal/diag"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// WroteLine reports a written workbook.
func WroteLine(w io.Writer, path string, surveyRows, choiceRows int) {
	fmt.Fprintf(w, "%s  %s %s\n", okStyle.Render("wrote"), path,
		faintStyle.Render(fmt.Sprintf("(%d survey rows, %d choices)", surveyRows, choiceRows)))
}

func FindingLine(w io.Writer, severity, location, message string) {
	tag := warnStyle.Render(fmt.Sprintf("%-7s", severity))
	if severity == "error" {
		tag = errStyle.Render(fmt.Sprintf("%-7s", severity))
	}
	fmt.Fprintf(w, "%s  %s  %s\n", tag, faintStyle.Render(location), message)
}

func LintSummary(w io.Writer, errors, warnings int) {
	if errors == 0 && warnings == 0 {
		fmt.Fprintln(w, okStyle.Render("no problems found"))
		return
	}
	fmt.Fprintf(w, "%d errors, %d warnings\n", errors, warnings)
}

// HistoryRow prints one recorded build. Widths pad the form and version
// columns so rows line up.
func HistoryRow(w io.Writer, compiledAt, formID, version, output string, surveyRows, choiceRows, formWidth, versionWidth int) {
	fmt.Fprintf(w, "%s  %-*s  %-*s  %s %s\n",
		faintStyle.Render(compiledAt),
		formWidth, formID,
		versionWidth, version,
		output,
		faintStyle.Render(fmt.Sprintf("%d/%d", surveyRows, choiceRows)))
}

func ErrorLine(w io.Writer, err error) {
	fmt.Fprintln(w, errStyle.Render("error")+"  "+err.Error())
}

// Snippet prints the source line at pos with one line of context on each
// side and a caret under the column.
func Snippet(w io.Writer, pos diag.Position, src string) {
	if pos.Line == 0 || src == "" {
		return
	}

	lines := strings.Split(src, "\n")
	line := min(pos.Line, len(lines))
	fmt.Fprintln(w)
	if line > 1 {
		fmt.Fprintf(w, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(w, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(w, "     | %s%s\n", strings.Repeat(" ", max(pos.Col-1, 0)), errStyle.Render("^"))
	if line < len(lines) {
		fmt.Fprintf(w, "%4d | %s\n", line+1, lines[line])
	}
}

// OutlineRow prints one survey row of a form outline, indented by depth.
func OutlineRow(w io.Writer, depth int, typ, name, label string) {
	line := strings.Repeat("  ", depth) + faintStyle.Render(typ) + " " + name
	if label != "" {
		line += "  " + label
	}
	fmt.Fprintln(w, line)
}

func ChoiceListLine(w io.Writer, list string, count int) {
	fmt.Fprintf(w, "%s %s %s\n", faintStyle.Render("list"), list, faintStyle.Render(fmt.Sprintf("(%d choices)", count)))
}
