package resolver

import (
	"fmt"

	"github.com/ca-lang/cac/symtable"
)

// ResolveFreeCall resolves a bare function call "name(...)" by walking the
// scope chain for a Fn entry. It does
// not consult any struct's Runables table — that's ResolveMethodCall's job.
func ResolveFreeCall(scope *symtable.Scope, name string) (*symtable.FnEntry, string, error) {
	entry, _, ok := symtable.Getsym(scope, name)
	if !ok {
		return nil, "", fmt.Errorf("resolver: undefined function %q", name)
	}
	fn, ok := entry.(*symtable.FnEntry)
	if !ok {
		return nil, "", fmt.Errorf("resolver: %q is not a function", name)
	}
	return fn, fn.MangledID, nil
}

// AmbiguousMethodError reports a method name resolvable through more than
// one implemented trait, with no direct struct method to break the tie.
// Carries every candidate trait so a caller can report one note per
// candidate ahead of the final fatal diagnostic, rather than folding the
// whole candidate list into a single error line.
type AmbiguousMethodError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousMethodError) Error() string {
	return fmt.Sprintf("resolver: call to %q is ambiguous between traits %v; qualify with Type::Trait::%s(...)", e.Name, e.Candidates, e.Name)
}

// ResolveMethodCall resolves "recv.method(...)" against the receiver
// struct's Runables table: a direct struct method wins outright; otherwise
// a method available through exactly one implemented trait is used;
// anything else is an error (no applicable method, or more than one trait
// providing it, reported as an *AmbiguousMethodError).
func ResolveMethodCall(structEntry *symtable.DataTypeEntry, name string) (*symtable.MethodImpl, *symtable.Assoc, error) {
	if structEntry.Runables == nil {
		return nil, nil, fmt.Errorf("resolver: type %q defines no methods", structEntry.ID)
	}
	m, assoc, ambiguous := structEntry.Runables.Lookup(name)
	if m != nil {
		return m, assoc, nil
	}
	if len(ambiguous) > 0 {
		return nil, nil, &AmbiguousMethodError{Name: name, Candidates: ambiguous}
	}
	return nil, nil, fmt.Errorf("resolver: type %q has no method %q", structEntry.ID, name)
}

// ResolveDomainCall resolves a fully-qualified call "Type::Trait::method(...)",
// bypassing trait-ambiguity entirely by naming the trait explicitly.
func ResolveDomainCall(structEntry *symtable.DataTypeEntry, trait, name string) (*symtable.MethodImpl, *symtable.Assoc, error) {
	if structEntry.Runables == nil {
		return nil, nil, fmt.Errorf("resolver: type %q defines no methods", structEntry.ID)
	}
	byName, ok := structEntry.Runables.MethodsInTraits[trait]
	if !ok {
		return nil, nil, fmt.Errorf("resolver: type %q does not implement trait %q", structEntry.ID, trait)
	}
	m, ok := byName[name]
	if !ok {
		return nil, nil, fmt.Errorf("resolver: trait %q has no method %q", trait, name)
	}
	return m, structEntry.Runables.AssocByTrait[trait][name], nil
}
