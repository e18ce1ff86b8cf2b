// Package symtable implements the CA compiler's scoped symbol table: a tree
// of hash maps with a parent pointer, the variable-shielding stack that
// lets `let` re-bind a name within the same textual scope, and the
// association overlay used to bind Self and generic type parameters
// during trait/generic instantiation.
package symtable

import "github.com/ca-lang/cac/ast"

// Scope is one node of the symbol-table tree.
type Scope struct {
	id      int64
	parent  *Scope
	entries map[string]Entry
	assoc   *Assoc
}

var _ ast.Scope = (*Scope)(nil)

var nextScopeID int64 = 1

// NewGlobal creates the root (global) scope of a fresh compilation.
func NewGlobal() *Scope {
	return &Scope{id: allocScopeID(), entries: make(map[string]Entry)}
}

func allocScopeID() int64 {
	id := nextScopeID
	nextScopeID++
	return id
}

// ScopeID implements ast.Scope.
func (s *Scope) ScopeID() int64 { return s.id }

// PushNew opens a child scope of parent (operation "push_new").
func PushNew(parent *Scope) *Scope {
	return &Scope{id: allocScopeID(), parent: parent, entries: make(map[string]Entry)}
}

// Pop closes s and returns its parent (operation "pop"). The caller is
// expected to discard s after this; symtable does not reference-count
// scopes.
func Pop(s *Scope) *Scope { return s.parent }

// ParentOrGlobal returns s's parent, or s itself if s has no parent (it is
// already the global scope) — operation "parent_or_global".
func ParentOrGlobal(s *Scope) *Scope {
	if s.parent == nil {
		return s
	}
	return s.parent
}

// Parent returns s's immediate parent, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Insert adds name unconditionally, without checking for an existing entry
// ("insert": overwrite semantics for variable shielding is handled by the
// caller via Push, not by Insert).
func (s *Scope) Insert(name string, e Entry) {
	s.entries[name] = e
}

// CheckInsert inserts name only if absent, returning the existing entry if
// one is already there ("check_insert": idempotent).
func (s *Scope) CheckInsert(name string, make func() Entry) Entry {
	if e, ok := s.entries[name]; ok {
		return e
	}
	e := make()
	s.entries[name] = e
	return e
}

// LocalLookup returns the entry bound to name in exactly this scope, with no
// parent-chain walk.
func (s *Scope) LocalLookup(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Getsym walks the parent chain from s looking for name, ignoring any
// association overlay. It returns the entry and the scope that owns it.
func Getsym(s *Scope, name string) (Entry, *Scope, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if e, ok := sc.entries[name]; ok {
			return e, sc, true
		}
	}
	return nil, nil, false
}

// GetsymST2 is Getsym but honors the association overlay installed on s (the
// starting scope only): if s's overlay redirects name, resolution proceeds
// from the overlay's target scope instead of s. This is the lookup path
// trait-default-method bodies and generic-function bodies use to resolve
// `Self` and generic type parameters.
func GetsymST2(s *Scope, name string) (Entry, *Scope, bool) {
	start := s
	if s.assoc != nil && s.assoc.Kind == AssocGeneric && s.assoc.IDSet[name] {
		start = s.assoc.Table
	}
	return Getsym(start, name)
}
