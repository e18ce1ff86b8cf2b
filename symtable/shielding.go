package symtable

import "github.com/ca-lang/cac/ast"

// VariableShielding supports re-binding a name within one textual scope
// ("let a = a;" shadowing its own RHS). Current is the active binding;
// Stack holds prior bindings in source order, most recent last.
type VariableShielding struct {
	Current *CAVariable
	Stack   []*CAVariable
}

// Push installs v as the new Current binding, pushing the previous Current
// (if any) onto the shielding stack. This is what a `let` that re-binds an
// existing name does.
func (vs *VariableShielding) Push(v *CAVariable) {
	if vs.Current != nil {
		vs.Stack = append(vs.Stack, vs.Current)
	}
	vs.Current = v
}

// Pop removes the active binding, restoring whatever was shielded beneath
// it. It returns the binding that was popped. Calling Pop when Current is
// nil and Stack is empty is a bug (invariant 8's "shielding stack empty at
// end of compilation" is checked the other way: every Push must eventually
// be matched with a Pop as its scope closes).
func (vs *VariableShielding) Pop() *CAVariable {
	cur := vs.Current
	if n := len(vs.Stack); n > 0 {
		vs.Current = vs.Stack[n-1]
		vs.Stack = vs.Stack[:n-1]
	} else {
		vs.Current = nil
	}
	return cur
}

// Rotate swaps Current with the top of Stack, where an empty Stack counts as
// having a nil top: with no shielded binding, Current moves onto the stack
// and Current becomes nil. It is its own inverse: calling
// it twice in a row is a no-op. The two call sites below give each direction
// of that swap a name matching "rotate forward / rotate
// back" vocabulary, even though the underlying operation is identical.
func (vs *VariableShielding) rotate() {
	n := len(vs.Stack)
	switch {
	case n == 0 && vs.Current == nil:
		return
	case n == 0:
		vs.Stack = append(vs.Stack, vs.Current)
		vs.Current = nil
	case vs.Current == nil:
		vs.Current = vs.Stack[n-1]
		vs.Stack = vs.Stack[:n-1]
	default:
		top := vs.Stack[n-1]
		vs.Stack[n-1] = vs.Current
		vs.Current = top
	}
}

// RotateBack consults the previous binding instead of the current one — used
// while evaluating a `let`'s right-hand side, so "let a = a;" resolves the
// RHS's `a` to the outer variable.
func (vs *VariableShielding) RotateBack() { vs.rotate() }

// RotateForward undoes RotateBack once the RHS has been evaluated, so the
// body (and any further statements) again see the newly bound variable.
func (vs *VariableShielding) RotateForward() { vs.rotate() }

// VarshieldingRotate implements the package-level operation
// "varshielding_rotate(entry, back?)": rotate the shielding stack of the
// Variable entry e.
func VarshieldingRotate(e *VariableEntry, back bool) {
	if back {
		e.Shielding.RotateBack()
	} else {
		e.Shielding.RotateForward()
	}
}

// VarshieldingRotateCAPattern rotates every name bound anywhere within
// pattern, looked up in scope s — "varshielding_rotate_capattern". It is a
// no-op (not an error) for names the pattern introduces that don't yet exist
// in s, since those are first bindings with nothing to rotate.
func VarshieldingRotateCAPattern(s *Scope, pattern ast.Pattern, back bool) {
	for _, name := range pattern.Names() {
		if e, ok := s.LocalLookup(name); ok {
			if ve, ok := e.(*VariableEntry); ok {
				VarshieldingRotate(ve, back)
			}
		}
	}
}
