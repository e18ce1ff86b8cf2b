package ast

import "strings"

// FormalArg is one declared parameter of a function.
type FormalArg struct {
	Name    string
	TypeID  string
}

// FnDecl is a function prototype: name, return type, formal args, whether
// it's an extern declaration, and an optional list of generic type
// parameters.
type FnDecl struct {
	Base
	Name         string
	Ret          string // typeid; "" means void
	Args         []FormalArg
	Variadic     bool
	IsExtern     bool
	GenericTypes []string // names of generic type parameters, nil if non-generic
}

func (n *FnDecl) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.Name + ":" + a.TypeID
	}
	return "fn " + n.Name + "(" + strings.Join(parts, ",") + ")"
}

// FnDef is a function definition: the declaration, its statement body, and
// the bookkeeping the lowering driver installs for `return` (a dedicated
// return basic block and a return-value stack slot).
type FnDef struct {
	Base
	Decl *FnDecl
	Stmts []Node

	// RetBB/RetSlot are opaque handles filled in by package lower during
	// emission; nil until then.
	RetBB   interface{}
	RetSlot interface{}
}

func (n *FnDef) String() string { return n.Decl.String() }

// ImplInfo describes an "impl Type {...}" or "impl Trait for Type {...}"
// block header.
type ImplInfo struct {
	TypeName  string
	TraitName string // "" for an inherent impl
}

// FnDefImpl is a struct-impl or trait-impl block: "impl [Trait for] Type {
// item* }".
type FnDefImpl struct {
	Base
	Impl  ImplInfo
	Items []*FnDef
}

func (n *FnDefImpl) String() string {
	if n.Impl.TraitName != "" {
		return "impl " + n.Impl.TraitName + " for " + n.Impl.TypeName
	}
	return "impl " + n.Impl.TypeName
}

// TraitFn is a trait definition: "trait Name { item* }" where each item is
// either a bare signature (no default body) or a FnDef with one (a default
// method).
type TraitFn struct {
	Base
	TraitID string
	Items   []*FnDef // items with nil Stmts are signature-only
}

func (n *TraitFn) String() string { return "trait " + n.TraitID }

// StructMember is one field of a struct type declaration.
type StructMember struct {
	Name   string // "" for tuple-positional members
	TypeID string
}

// StructKind mirrors CAStruct.kind in.
type StructKind int

const (
	NamedStruct StructKind = iota
	NamedTuple
	GeneralTuple
	SliceStruct
	UnionStruct
	EnumStruct
	GeneralStruct
)

// Struct is a struct *type declaration* node ("struct Name { ... }"),
// distinct from StructExpr (a struct *value* literal).
type Struct struct {
	Base
	Name    string
	Kind    StructKind
	Members []StructMember
	Packed  bool
}

func (n *Struct) String() string { return "struct " + n.Name }

// TypeDef is a type alias declaration: "type New = Old;".
type TypeDef struct {
	Base
	New, Old string
}

func (n *TypeDef) String() string { return "type " + n.New + " = " + n.Old }

// LetBind is "let pattern [: type] = expr;".
type LetBind struct {
	Base
	Pattern  Pattern
	TypeID   string // "" if the pattern has no explicit type annotation
	Expr     Node
	Mutable  bool
}

func (n *LetBind) String() string { return "let " + n.Pattern.String() + " = " + n.Expr.String() }

// AssignOp distinguishes plain "=" from compound assignment operators.
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignShl
	AssignShr
)

// Assign is "lhs op= expr;" (op is AssignPlain for a bare "=").
type Assign struct {
	Base
	LHS  Node
	Op   AssignOp
	Expr Node
}

func (n *Assign) String() string { return n.LHS.String() + "=" + n.Expr.String() }

// Ret is "return [expr];".
type Ret struct {
	Base
	Expr Node // nil for a bare "return;"
}

func (n *Ret) String() string {
	if n.Expr == nil {
		return "return"
	}
	return "return " + n.Expr.String()
}

// DbgPrint is "print expr;".
type DbgPrint struct {
	Base
	Expr Node
}

func (n *DbgPrint) String() string { return "print " + n.Expr.String() }

// DbgPrintType is "printtype Type;" or "printtype expr;".
type DbgPrintType struct {
	Base
	TypeID string
	Expr   Node // nil if TypeID was given directly
}

func (n *DbgPrintType) String() string { return "dbgprinttype " + n.TypeID }
