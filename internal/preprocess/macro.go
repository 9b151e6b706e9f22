package preprocess

import (
	"regexp"
	"strings"

	"github.com/chriserin/comb/internal/diag"
)

var macroPattern = regexp.MustCompile(`\$\{!([^}]+)\}`)

// SubstituteMacros replaces every ${!NAME} in src with macros[NAME] in a
// single left-to-right pass. Replacement text is not scanned again.
func SubstituteMacros(filename, src string, macros map[string]string) (string, error) {
	matches := macroPattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := src[m[2]:m[3]]
		value, ok := macros[name]
		if !ok {
			return "", diag.Errorf(diag.ErrUnknownMacro, diag.PositionAt(filename, src, m[0]), "%s is not defined at the include site", name)
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(src[last:])

	return b.String(), nil
}
