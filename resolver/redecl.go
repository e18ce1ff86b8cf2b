package resolver

import (
	"fmt"

	"github.com/ca-lang/cac/symtable"
)

// CheckRedeclarationAgrees enforces that a second sighting of a function
// name (an `extern` prototype later matched by a real definition, or the
// same signature appearing twice) has an identical signature to the first.
// Argument names are allowed to differ; types, arity, variadic-ness, and
// return type must not.
func CheckRedeclarationAgrees(existing, incoming *symtable.FnEntry) error {
	if existing.RetType != incoming.RetType {
		return fmt.Errorf("resolver: redeclaration disagrees on return type (%s vs %s)", existing.RetType, incoming.RetType)
	}
	if existing.ArgList.ContainVarg != incoming.ArgList.ContainVarg {
		return fmt.Errorf("resolver: redeclaration disagrees on variadic-ness")
	}
	if len(existing.ArgList.Types) != len(incoming.ArgList.Types) {
		return fmt.Errorf("resolver: redeclaration disagrees on arity (%d vs %d)",
			len(existing.ArgList.Types), len(incoming.ArgList.Types))
	}
	for i, t := range existing.ArgList.Types {
		if t != incoming.ArgList.Types[i] {
			return fmt.Errorf("resolver: redeclaration disagrees on argument %d's type (%s vs %s)", i, t, incoming.ArgList.Types[i])
		}
	}
	return nil
}

// CheckTraitImplComplete verifies that impl supplies (directly or via the
// trait's default body) every method the trait declares with no default,
// returning the list of missing ones.
func CheckTraitImplComplete(trait *symtable.TraitDefEntry, impl *symtable.TraitImplEntry) []string {
	var missing []string
	for _, name := range trait.Info.IDsNoDef {
		if !impl.Overridden[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
