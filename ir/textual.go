package ir

import (
	"fmt"
	"strings"
)

// String renders the full module as pseudo-LLVM textual IR — the concrete
// realization of `-ll` output, and also what `-S`/`-c`/`-native`
// would hand to an external assembler/linker in a build with a real
// target.
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %s\n", m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(&b, "@%s = private constant [%d x i8] c\"%s\\00\"\n", g.Name, len(g.Value)+1, g.Escaped())
	}
	for _, fn := range m.Functions {
		b.WriteString(fn.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (fn *Function) signature() string {
	var params []string
	if fn.IsDecl {
		params = make([]string, len(fn.FT.Params))
		for i, t := range fn.FT.Params {
			params[i] = t.String()
		}
	} else {
		params = make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = fmt.Sprintf("%s %%%s", p.T, p.Name)
		}
	}
	sig := strings.Join(params, ", ")
	if fn.FT.Vararg {
		if sig != "" {
			sig += ", "
		}
		sig += "..."
	}
	return fmt.Sprintf("%s @%s(%s)", fn.FT.Ret, fn.Name, sig)
}

func (fn *Function) String() string {
	var b strings.Builder
	if fn.IsDecl {
		fmt.Fprintf(&b, "declare %s\n", fn.signature())
		return b.String()
	}
	linkage := ""
	if fn.Linkage == Internal {
		linkage = "internal "
	}
	fmt.Fprintf(&b, "define %s%s {\n", linkage, fn.signature())
	for _, bb := range fn.Blocks {
		fmt.Fprintf(&b, "%s:\n", bb.Label)
		for _, in := range bb.Insns {
			fmt.Fprintf(&b, "  %s\n", in)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// Verify checks the structural invariants the backend promises to enforce
// before a module is handed to an emitter: every defined function has at
// least one block, and every block ends in exactly one terminator.
func (m *Module) Verify() error {
	for _, fn := range m.Functions {
		if fn.IsDecl {
			continue
		}
		if len(fn.Blocks) == 0 {
			return fmt.Errorf("ir: function %q has no basic blocks", fn.Name)
		}
		for _, bb := range fn.Blocks {
			if !bb.sealed {
				return fmt.Errorf("ir: function %q block %q has no terminator", fn.Name, bb.Label)
			}
		}
	}
	return nil
}
