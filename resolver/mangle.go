// Package resolver implements the CA compiler's name-resolution layer:
// the `f:...` label mangling scheme for free functions, struct methods, and
// trait methods; struct-impl/trait-impl method lookup (delegating to
// symtable.Runables for the actual table); re-declaration signature
// agreement; and the bridge from package types' abstract Resolver interface
// to the concrete symbol table.
package resolver

import (
	"fmt"
	"strings"
)

// MangleFunction returns the label for a free (non-method) function —
// "f:name". Mirrors intern.Table.FormFunctionID.
func MangleFunction(name string) string { return "f:" + name }

// MangleMethod returns the label for a method, either a struct-inherent
// method ("f:SFClass_method") or a trait-impl method
// ("f:TSF<len trait><trait><len class><class>_method"), matching
// intern.Table.FormMethodID's scheme exactly so the two stay
// interchangeable depending on whether a caller goes through the interner
// or works with raw strings (package types and symtable both do the
// latter).
func MangleMethod(fn, class, trait string) string {
	if trait == "" {
		return fmt.Sprintf("f:SF%s_%s", class, fn)
	}
	return fmt.Sprintf("f:TSF%d%s%d%s_%s", len(trait), trait, len(class), class, fn)
}

// Demangle reverses MangleMethod/MangleFunction, recovering the function,
// type and trait names from a mangled label.
func Demangle(label string) (fn, class, trait string, isMethod bool, ok bool) {
	if !strings.HasPrefix(label, "f:") {
		return "", "", "", false, false
	}
	body := label[2:]
	switch {
	case strings.HasPrefix(body, "TSF"):
		rest := body[3:]
		traitLen, rest, err := readLenPrefixed(rest)
		if err != nil {
			return "", "", "", false, false
		}
		trait, rest = rest[:traitLen], rest[traitLen:]
		classLen, rest, err := readLenPrefixed(rest)
		if err != nil {
			return "", "", "", false, false
		}
		class, rest = rest[:classLen], rest[classLen:]
		if !strings.HasPrefix(rest, "_") {
			return "", "", "", false, false
		}
		return rest[1:], class, trait, true, true
	case strings.HasPrefix(body, "SF"):
		rest := body[2:]
		idx := strings.IndexByte(rest, '_')
		if idx < 0 {
			return "", "", "", false, false
		}
		return rest[idx+1:], rest[:idx], "", true, true
	default:
		return body, "", "", false, true
	}
}

// readLenPrefixed reads a decimal length prefix off s (e.g. "5Point..." ->
// 5, "Point...") the way MangleMethod writes "<len><text>".
func readLenPrefixed(s string) (int, string, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("resolver: expected a decimal length prefix in %q", s)
	}
	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
	}
	return n, s[i:], nil
}
