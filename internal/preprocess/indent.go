// Package preprocess rewrites raw comb text before it reaches the grammar.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// continuationPattern matches a header line (a question head ending in a
// colon, or an @ command) followed by lines indented deeper than it that
// start with a quote or a word character. The header indentation is
// captured once and required again on every continuation line, which needs
// a backreference.
var continuationPattern = regexp2.MustCompile(
	`(^|\n)`+ // start of text or of a line
		`([ \t]*(?!if\s|group\s|repeat\s))`+ // indentation, not a block keyword
		`(\w+.*:|@.*)[ ]*`+ // question head or command
		`((?:\n\2[ \t]+["\w].*)+)`, // deeper continuation lines
	regexp2.None)

var whitespaceRun = regexp.MustCompile(`[ \t\n]+`)

// FoldContinuations joins hand-wrapped continuation lines onto their header
// line. Each folded line is replaced by an empty line after the header so
// that line numbers of the following source stay unchanged.
func FoldContinuations(src string) (string, error) {
	return continuationPattern.ReplaceFunc(src, func(m regexp2.Match) string {
		continuation := m.GroupByNumber(4).String()
		folded := strings.TrimSpace(whitespaceRun.ReplaceAllString(continuation, " "))

		return m.GroupByNumber(1).String() +
			m.GroupByNumber(2).String() +
			m.GroupByNumber(3).String() + " " + folded +
			strings.Repeat("\n", strings.Count(continuation, "\n"))
	}, -1, -1)
}
