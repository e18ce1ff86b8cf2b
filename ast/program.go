package ast

// Program is the root of a compiled source file: a linked list (here a
// slice) of top-level nodes, in source order. The lowering driver (package
// lower) walks this twice: once to register prototypes, once to emit
// bodies.
type Program struct {
	Base
	Decls []Node
}

func (n *Program) String() string { return "program" }
