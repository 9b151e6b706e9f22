package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chriserin/comb/internal/diag"
)

func TestSnippet_CaretUnderColumn(t *testing.T) {
	var buf bytes.Buffer
	src := "a integer:\nq integer: \"L\" \"x\"\nb text:"
	Snippet(&buf, diag.Position{File: "f.comb", Line: 2, Col: 17}, src)

	out := buf.String()
	assert.Contains(t, out, "   1 | a integer:\n")
	assert.Contains(t, out, "   2 | q integer: \"L\" \"x\"\n")
	assert.Contains(t, out, "     | "+strings.Repeat(" ", 16)+"^\n")
	assert.Contains(t, out, "   3 | b text:")
}

func TestSnippet_FirstAndOnlyLine(t *testing.T) {
	var buf bytes.Buffer
	Snippet(&buf, diag.Position{File: "f.comb", Line: 1, Col: 1}, "@page x")
	assert.Contains(t, buf.String(), "   1 | @page x\n")
	assert.NotContains(t, buf.String(), "   0 |")
	assert.NotContains(t, buf.String(), "   2 |")
}

func TestSnippet_NoLine(t *testing.T) {
	var buf bytes.Buffer
	Snippet(&buf, diag.Position{File: "f.comb"}, "a integer:")
	assert.Empty(t, buf.String())
}

func TestErrorLine(t *testing.T) {
	var buf bytes.Buffer
	ErrorLine(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestOutlineRow_Indent(t *testing.T) {
	var buf bytes.Buffer
	OutlineRow(&buf, 2, "integer", "age", "Age")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("    ")))
	assert.Contains(t, buf.String(), "age  Age")
}
