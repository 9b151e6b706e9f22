package compiler

import (
	"maps"

	"github.com/chriserin/comb/internal/parser"
)

const relevanceKey = "relevance"

// Params is a parameter scope. Methods never modify the receiver; each
// returns a new map, so a scope handed to a child block cannot leak back into
// its parent or siblings.
type Params map[string]string

func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// With returns a copy of p with key set to value.
func (p Params) With(key, value string) Params {
	out := p.Clone()
	out[key] = value
	return out
}

// Without returns a copy of p without the given keys.
func (p Params) Without(keys ...string) Params {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Merge returns base overridden by overlay. When both define relevance the
// result requires both conditions.
func Merge(base, overlay Params) Params {
	out := base.Clone()
	maps.Copy(out, overlay)

	b, inBase := base[relevanceKey]
	o, inOverlay := overlay[relevanceKey]
	if inBase && inOverlay {
		out[relevanceKey] = "(" + b + ") and (" + o + ")"
	}
	return out
}

// Relevance renders an if condition as a relevance expression.
func Relevance(c parser.Condition) string {
	if c.Op == "" {
		return c.Value
	}
	return c.Left + " " + c.Op + " " + c.Value
}

// paramsOf turns parameter pairs into a scope. A later pair overrides an
// earlier one with the same key, and an "if" pair becomes relevance.
func paramsOf(pairs []parser.Param) Params {
	out := make(Params, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	if cond, ok := out["if"]; ok {
		out[relevanceKey] = cond
		delete(out, "if")
	}
	return out
}
