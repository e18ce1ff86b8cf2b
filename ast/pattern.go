package ast

import "strings"

// PatternKind distinguishes the shapes a `let` pattern may take
// §4.5.2.
type PatternKind int

const (
	PatVar PatternKind = iota
	PatArray
	PatTuple
	PatGenTuple
	PatStruct
	PatIgnoreOne // "_"
	PatIgnoreRange // ".."
)

// Pattern is a `let`-binding pattern. Only the fields relevant to Kind are
// populated; the zero value of the others is harmless.
type Pattern struct {
	Pos  Pos
	Kind PatternKind

	// PatVar
	Name     string
	MoreBind []string // additional names aliasing the same value ("let a|b = ...")

	// PatTuple/PatStruct: the struct/tuple type name being matched against.
	TypeName string

	// PatArray/PatTuple/PatGenTuple/PatStruct: nested sub-patterns.
	Items []Pattern
	// PatStruct: field name for each entry in Items, parallel array.
	FieldNames []string
}

func (p Pattern) String() string {
	switch p.Kind {
	case PatVar:
		if len(p.MoreBind) == 0 {
			return p.Name
		}
		return p.Name + "|" + strings.Join(p.MoreBind, "|")
	case PatIgnoreOne:
		return "_"
	case PatIgnoreRange:
		return ".."
	case PatArray:
		parts := make([]string, len(p.Items))
		for i, it := range p.Items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case PatTuple, PatGenTuple:
		parts := make([]string, len(p.Items))
		for i, it := range p.Items {
			parts[i] = it.String()
		}
		return p.TypeName + "(" + strings.Join(parts, ",") + ")"
	case PatStruct:
		parts := make([]string, len(p.Items))
		for i, it := range p.Items {
			name := ""
			if i < len(p.FieldNames) {
				name = p.FieldNames[i]
			}
			parts[i] = name + ":" + it.String()
		}
		return p.TypeName + "{" + strings.Join(parts, ",") + "}"
	default:
		return "<pattern>"
	}
}

// Names returns every variable name bound anywhere in the pattern, in
// left-to-right, depth-first order, including MoreBind aliases.
func (p Pattern) Names() []string {
	switch p.Kind {
	case PatVar:
		out := []string{p.Name}
		return append(out, p.MoreBind...)
	case PatArray, PatTuple, PatGenTuple, PatStruct:
		var out []string
		for _, it := range p.Items {
			out = append(out, it.Names()...)
		}
		return out
	default:
		return nil
	}
}
