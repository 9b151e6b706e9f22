package parser

import "github.com/chriserin/comb/internal/diag"

// Node is one statement of a survey or choices source. The types in this
// file are its only implementations.
type Node interface {
	Position() diag.Position
	node()
}

type Comment struct {
	Pos  diag.Position
	Text string
}

// Command is an @name line, e.g. @include "part.comb" NAME "value".
type Command struct {
	Pos  diag.Position
	Name string
	Args []string
}

type If struct {
	Pos  diag.Position
	Cond Condition
	Body []Node
}

type GroupKind string

const (
	KindGroup  GroupKind = "group"
	KindRepeat GroupKind = "repeat"
)

// Group is a group or repeat block.
type Group struct {
	Pos    diag.Position
	Kind   GroupKind
	Name   string
	Label  *string
	Params []Param
	If     *Condition // inline condition before the colon
	Body   []Node
}

type Question struct {
	Pos    diag.Position
	Name   string
	Type   []string // select_one yes_no is two type words
	Label  *string  // the calculation when the type is calculate
	Params []Param
}

type List struct {
	Pos    diag.Position
	Name   string
	Params []Param
	Body   []Node
}

type Choice struct {
	Pos    diag.Position
	Value  string
	Label  string
	Params []Param
}

type Param struct {
	Key   string
	Value string
}

// Condition is the test of an if block: either a comparison such as
// ${age} >= 18 or a bare literal carried as is.
type Condition struct {
	Left  string // ${name} or "."; empty for a bare literal
	Op    string
	Value string
}

func (n *Comment) Position() diag.Position  { return n.Pos }
func (n *Command) Position() diag.Position  { return n.Pos }
func (n *If) Position() diag.Position       { return n.Pos }
func (n *Group) Position() diag.Position    { return n.Pos }
func (n *Question) Position() diag.Position { return n.Pos }
func (n *List) Position() diag.Position     { return n.Pos }
func (n *Choice) Position() diag.Position   { return n.Pos }

func (*Comment) node()  {}
func (*Command) node()  {}
func (*If) node()       {}
func (*Group) node()    {}
func (*Question) node() {}
func (*List) node()     {}
func (*Choice) node()   {}
