// Package graphviz renders a program's AST as a Graphviz dot digraph, the
// Go counterpart of original_source/dotgraph.cpp's parse-tree dumper. The
// original walks bison production names as the parser reduces them; here
// there is no textual grammar to trace, so DumpAST instead walks the
// already-built ast.Node tree directly, giving each node a dot-safe name
// derived from its Go type and a monotonic per-type sequence number (the
// s_name_seq / dot_step counters dotgraph.cpp keeps as package globals).
package graphviz

import (
	"fmt"
	"io"
	"reflect"

	"github.com/ca-lang/cac/ast"
)

// writer mirrors termutil's batchPrinter: a thin WriteString wrapper around
// an io.Writer, just enough buffering vocabulary for one dumper that never
// needs paging or interactivity.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

// DumpAST writes root's structure to w as a Graphviz dot digraph. Each AST
// node becomes one quoted node labeled with its Go type name plus an
// occurrence count; each parent-child relationship becomes one labeled edge
// numbered in the order edges are emitted (dotgraph.cpp's ++genv.dot_step).
func DumpAST(w io.Writer, root ast.Node) error {
	dw := &writer{out: w}
	dw.WriteString("digraph {\n")
	dw.WriteString("rankdir=LR;\n")
	dw.WriteString("\t\"program\" [color=cyan, style=filled] ;\n")

	d := &dumper{w: dw, seq: map[string]int{}}
	rootName := d.nodeName(root)
	dw.WriteString(fmt.Sprintf("\t\"program\" -> \"%s\" [ label=\"%d\" ];\n", rootName, d.nextStep()))
	d.walk(root, rootName)

	dw.WriteString("}\n")
	return dw.err
}

type dumper struct {
	w    *writer
	seq  map[string]int // per-type-name node counter, dotgraph.cpp's s_name_seq
	step int
}

// nodeName assigns n its dot-safe name: its Go type name plus the next
// occurrence count for that type. Called exactly once per node, at the
// point its parent decides to descend into it.
func (d *dumper) nodeName(n ast.Node) string {
	if n == nil {
		return "nil"
	}
	kind := reflect.TypeOf(n).Elem().Name()
	d.seq[kind]++
	return fmt.Sprintf("%s-%d", kind, d.seq[kind])
}

func (d *dumper) nextStep() int {
	d.step++
	return d.step
}

func (d *dumper) emitEdge(fromName, toName string) {
	d.w.WriteString(fmt.Sprintf("\t\"%s\" -> \"%s\" [ label=\"%d\" ];\n", fromName, toName, d.nextStep()))
}

// walk emits one edge per child of n and recurses into each, threading name
// (n's own already-assigned name) down explicitly rather than trying to
// recover it afterward from the shared seq counter, which a sibling node of
// the same Go type would otherwise have bumped out from under it.
func (d *dumper) walk(n ast.Node, name string) {
	for _, child := range childrenOf(n) {
		childName := d.nodeName(child)
		d.emitEdge(name, childName)
		d.walk(child, childName)
	}
}

var nodeType = reflect.TypeOf((*ast.Node)(nil)).Elem()

// childrenOf extracts n's child nodes via reflection over its exported
// fields rather than a hand-maintained type switch over every one of the
// AST's variant types: a field holding an ast.Node, a slice of ast.Node, or
// a struct field (e.g. ast.Pattern's Items) whose own fields recursively
// hold nodes all contribute children. This mirrors dotgraph.cpp's approach
// of walking whatever the grammar handed it without needing to know every
// production's shape in advance.
func childrenOf(n ast.Node) []ast.Node {
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	var out []ast.Node
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue // unexported field
		}
		collectNodes(v.Field(i), &out)
	}
	return out
}

func collectNodes(f reflect.Value, out *[]ast.Node) {
	switch f.Kind() {
	case reflect.Interface:
		if f.IsNil() || !f.Type().Implements(nodeType) {
			return
		}
		if n, ok := f.Interface().(ast.Node); ok && n != nil {
			*out = append(*out, n)
		}
	case reflect.Ptr:
		if f.IsNil() {
			return
		}
		if f.Type().Implements(nodeType) {
			if n, ok := f.Interface().(ast.Node); ok {
				*out = append(*out, n)
			}
			return
		}
		collectNodes(f.Elem(), out)
	case reflect.Slice, reflect.Array:
		for i := 0; i < f.Len(); i++ {
			collectNodes(f.Index(i), out)
		}
	case reflect.Struct:
		// A struct-valued field (e.g. ast.Pattern) never implements Node
		// itself (it has no Base embedding), but may still own nested
		// nodes through its own fields.
		ft := f.Type()
		for i := 0; i < f.NumField(); i++ {
			if ft.Field(i).PkgPath != "" {
				continue
			}
			collectNodes(f.Field(i), out)
		}
	}
}
