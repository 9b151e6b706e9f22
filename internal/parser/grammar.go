package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Statement grammar of a single logical line. Block structure is handled by
// the indentation stack in parser.go, so none of these rules span lines.

var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "VarRef", Pattern: `\$\{\s*[A-Za-z][A-Za-z0-9_]*\s*\}`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `!=|>=|<=|=|>|<`},
	{Name: "Punct", Pattern: `[@:.]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var lineOptions = []participle.Option{
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Map(unquoteString, "String"),
	participle.Map(compactVarRef, "VarRef"),
	participle.UseLookahead(participle.MaxLookahead),
}

var (
	surveyParser   = participle.MustBuild[surveyLine](lineOptions...)
	questionParser = participle.MustBuild[questionLine](lineOptions...)
	choicesParser  = participle.MustBuild[choicesLine](lineOptions...)
)

type surveyLine struct {
	Pos lexer.Position

	Command  *commandLine  `  "@" @@`
	If       *ifLine       `| "if" @@`
	Group    *groupLine    `| @@`
	Question *questionLine `| @@`
}

type choicesLine struct {
	Pos lexer.Position

	Command *commandLine `  "@" @@`
	List    *listLine    `| "list" @@`
	Choice  *choiceLine  `| @@`
}

type commandLine struct {
	Name string   `@Ident`
	Args []string `@(Ident | Number | String)+`
}

type ifLine struct {
	Cond *condition `@@ ":"`
}

type condition struct {
	Left  string `(  @(VarRef | ".")`
	Op    string `   @Operator`
	Right string `   @(Number | String) )`
	Value string `| @(Number | String)`
}

type groupLine struct {
	Kind   string     `@("group" | "repeat")`
	Name   string     `@Ident`
	Label  *string    `@String?`
	Params []*param   `@@*`
	If     *condition `("if" @@)? ":"`
}

type questionLine struct {
	Name   string   `@Ident`
	Type   []string `@Ident+ ":"`
	Label  *string  `@(String | Number)?`
	Params []*param `@@*`
}

type listLine struct {
	Name   string   `@Ident`
	Params []*param `@@* ":"`
}

type choiceLine struct {
	Value  string   `@(Number | String)`
	Label  string   `@(Number | String)`
	Params []*param `@@*`
}

type param struct {
	Key   string `@Ident`
	Value string `@(Ident | Number | String)`
}

// unquoteString strips the quotes of a string literal. A backslash escapes
// the next character; \n, \t, \r and \f stand for the whitespace itself.
func unquoteString(tok lexer.Token) (lexer.Token, error) {
	s := tok.Value[1 : len(tok.Value)-1]
	if !strings.Contains(s, `\`) {
		tok.Value = s
		return tok, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		default:
			b.WriteByte(s[i])
		}
	}
	tok.Value = b.String()
	return tok, nil
}

// compactVarRef drops the blanks allowed inside ${ name }.
func compactVarRef(tok lexer.Token) (lexer.Token, error) {
	tok.Value = strings.Join(strings.Fields(tok.Value), "")
	return tok, nil
}
