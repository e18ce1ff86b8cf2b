package symtable

import "github.com/ca-lang/cac/ast"

// Entry is implemented by every symbol-table entry kind: Variable, Label,
// LabelHanging, FnDecl/FnDef, DataType, TraitDef, TraitImpl.
type Entry interface {
	ast.SymEntry
}

// ---- Variable ----

// CAVariable is one binding of a variable name to a type and (once lowered)
// a backend value.
type CAVariable struct {
	Name      string
	DataType  string // typeid
	Loc       ast.Pos
	Global    bool
	LLVMValue interface{} // opaque backend handle, filled in during lowering
}

// VariableEntry is the STEntry::Variable case: a shielding stack supporting
// re-binding of the same name within one textual scope.
type VariableEntry struct {
	Shielding VariableShielding
}

func (*VariableEntry) EntryKind() string { return "Variable" }

// NewVariableEntry creates a variable entry with its first binding already
// installed as Current.
func NewVariableEntry(v *CAVariable) *VariableEntry {
	e := &VariableEntry{}
	e.Shielding.Push(v)
	return e
}

// ---- Label ----

// LabelEntry is a label that has been defined ("label:").
type LabelEntry struct {
	Name string
}

func (*LabelEntry) EntryKind() string { return "Label" }

// LabelHangingEntry is a label referenced by `goto` before its definition
// site has been seen. It must become a LabelEntry before the enclosing
// function ends, or compilation fails.
type LabelHangingEntry struct {
	Name string
	Refs []ast.Pos // every goto site that referenced this label while hanging
}

func (*LabelHangingEntry) EntryKind() string { return "LabelHanging" }

// ---- Function ----

// FuncKind is a bitfield over {Function, Method, MethodForTrait,
// MethodInTrait, GenericFunction}.
type FuncKind uint8

const (
	FuncPlain FuncKind = 1 << iota
	FuncMethod
	FuncMethodForTrait
	FuncMethodInTrait
	FuncGeneric
)

func (k FuncKind) Has(bit FuncKind) bool { return k&bit != 0 }

// ArgList is the fixed-capacity (16) formal-argument list shared by
// functions and tuple type declarations.
const MaxArgs = 16

type ArgList struct {
	// Names and Types are parallel: entry i is the name and typeid of the
	// i-th argument or member, for functions and tuple types alike.
	Names       []string
	Types       []string
	ContainVarg bool
	Owner       *Scope
}

// Append adds one (name, typeid) pair, panicking if the fixed capacity is
// exceeded — a genuine compiler-internal bug, not a user error, since the
// parser is responsible for rejecting arg lists over the limit earlier.
func (a *ArgList) Append(name, typeid string) {
	if len(a.Names) >= MaxArgs {
		panic("symtable: argument list exceeds fixed capacity (16)")
	}
	a.Names = append(a.Names, name)
	a.Types = append(a.Types, typeid)
}

// FnEntry is the STEntry::FnDecl/FnDef case.
type FnEntry struct {
	ArgList      *ArgList
	RetType      string
	MangledID    string
	Kind         FuncKind
	GenericTypes []string // non-nil iff Kind.Has(FuncGeneric)
	HasBody      bool     // true once the matching FnDef (not just FnDecl) is seen
	IsExtern     bool
}

func (*FnEntry) EntryKind() string { return "Fn" }

// ---- Alias ----

// AliasEntry is the STEntry::Alias case for a `type New = Old;`
// declaration: a transparent redirect to another typeid, resolved in the
// scope that declared the alias.
type AliasEntry struct {
	Target string // typeid
}

func (*AliasEntry) EntryKind() string { return "Alias" }

// ---- DataType ----

// DataTypeEntry is the STEntry::DataType case: a struct/tuple type's
// identity plus its struct-impl tables.
type DataTypeEntry struct {
	Kind     ast.StructKind
	ID       string // typeid
	Members  *ArgList
	IDTable  *Scope // the scope owning this type's members
	Runables *Runables
}

func (*DataTypeEntry) EntryKind() string { return "DataType" }

// ---- Trait ----

// TraitNodeInfo partitions a trait's methods into those with a default body
// and those requiring every impl to supply one.
type TraitNodeInfo struct {
	FnNodes    map[string]int // name -> index into TraitDefEntry.Items
	IDsWithDef []string
	IDsNoDef   []string
}

// TraitDefEntry is the STEntry::TraitDef case.
type TraitDefEntry struct {
	TraitID string
	Info    TraitNodeInfo
	// Items holds, in declaration order, one entry per trait method; entries
	// whose Stmts are empty and HasDefault is false are signature-only.
	Items []TraitItem
}

func (*TraitDefEntry) EntryKind() string { return "TraitDef" }

// TraitItem is one method signature (and optional default body) inside a
// trait definition.
type TraitItem struct {
	Name       string
	ArgList    *ArgList
	RetType    string
	HasDefault bool
	Body       interface{} // the trait item's *ast.FnDef; opaque to avoid ast<->symtable body coupling beyond Node
}

// TraitImplEntry is the STEntry::TraitImpl case: records that TypeName
// implements TraitName, and which methods were actually provided by the
// impl (as opposed to inherited trait defaults).
type TraitImplEntry struct {
	TypeName   string
	TraitName  string
	Overridden map[string]bool
}

func (*TraitImplEntry) EntryKind() string { return "TraitImpl" }
