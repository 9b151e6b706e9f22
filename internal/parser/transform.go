package parser

import "github.com/chriserin/comb/internal/diag"

// Conversions from the line grammar's capture structs to tree nodes.

func (c *commandLine) node(pos diag.Position) *Command {
	return &Command{Pos: pos, Name: c.Name, Args: c.Args}
}

func (c *condition) condition() Condition {
	if c.Op == "" {
		return Condition{Value: c.Value}
	}
	return Condition{Left: c.Left, Op: c.Op, Value: c.Right}
}

func (g *groupLine) node(pos diag.Position, body []Node) *Group {
	group := &Group{
		Pos:    pos,
		Kind:   GroupKind(g.Kind),
		Name:   g.Name,
		Label:  g.Label,
		Params: params(g.Params),
		Body:   body,
	}
	if g.If != nil {
		cond := g.If.condition()
		group.If = &cond
	}
	return group
}

// bare reports whether the header is just a keyword and a name, which can
// also be read as a question.
func (g *groupLine) bare() bool {
	return g.Label == nil && len(g.Params) == 0 && g.If == nil
}

func (q *questionLine) node(pos diag.Position) *Question {
	return &Question{
		Pos:    pos,
		Name:   q.Name,
		Type:   q.Type,
		Label:  q.Label,
		Params: params(q.Params),
	}
}

func (l *listLine) node(pos diag.Position, body []Node) *List {
	return &List{Pos: pos, Name: l.Name, Params: params(l.Params), Body: body}
}

func (c *choiceLine) node(pos diag.Position) *Choice {
	return &Choice{Pos: pos, Value: c.Value, Label: c.Label, Params: params(c.Params)}
}

func params(ps []*param) []Param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{Key: p.Key, Value: p.Value}
	}
	return out
}
