package types

import (
	"fmt"
	"strings"

	"github.com/ca-lang/cac/ast"
)

// Formalize computes final byte sizes and, for struct-kind types, field
// offsets and alignment. It is idempotent:
// a type already at StatusExpand or StatusCompact is left untouched.
//
// Pointer and array chains never need the "collapse multi-dimension chains
// to dimension 1" step describes for the original's C layout,
// because the unwinder here already builds one PointerInfo/ArrayInfo node
// per `*`/`[...]` token — each node's Dimension is always 1 by
// construction (see unwind.go).
func (c *Cache) Formalize(dt *CADataType) error {
	seen := map[*CADataType]bool{}
	return formalize(dt, seen)
}

func formalize(dt *CADataType, seen map[*CADataType]bool) error {
	if dt.Status == StatusExpand || dt.Status == StatusCompact {
		return nil
	}
	if seen[dt] {
		return nil // already in progress higher up the call stack (pointer-broken recursion)
	}
	seen[dt] = true

	switch dt.Token {
	case POINTER:
		// A pointer's own size never depends on its pointee being complete;
		// only recurse to formalize the pointee for its own sake.
		if dt.Pointer.Kernel.Status != StatusExpand && dt.Pointer.Kernel.Status != StatusCompact && dt.Pointer.Kernel.ByteSize != SizeComputing {
			if err := formalize(dt.Pointer.Kernel, seen); err != nil {
				return err
			}
		}
		dt.ByteSize = 8
	case ARRAY:
		if err := formalize(dt.Array.Elem, seen); err != nil {
			return err
		}
		if dt.Array.Elem.ByteSize < 0 {
			dt.ByteSize = SizeUnbounded
		} else {
			total := dt.Array.Elem.ByteSize
			for _, n := range dt.Array.Lengths {
				total *= int64(n)
			}
			dt.ByteSize = total
		}
	case STRUCT, SLICE:
		if dt.Struct == nil {
			return fmt.Errorf("types: struct-kind type %q missing struct payload", dt.Signature)
		}
		if err := layoutStruct(dt, seen); err != nil {
			return err
		}
	case RANGE:
		if dt.Range.Packaged != nil {
			if err := formalize(dt.Range.Packaged, seen); err != nil {
				return err
			}
			dt.ByteSize = dt.Range.Packaged.ByteSize
		}
	default:
		// primitive: ByteSize was fixed at creation.
	}
	dt.Status = StatusExpand
	return nil
}

// layoutStruct assigns each field a natural-alignment offset (fields larger
// than 8 bytes align to 8; Packed structs pack with no padding at all) and
// sets the struct's own size (rounded up to its max member alignment) and
// MaxAlign.
func layoutStruct(dt *CADataType, seen map[*CADataType]bool) error {
	si := dt.Struct
	var offset int64
	var maxAlign int64 = 1
	unbounded := false
	for i := range si.Fields {
		f := &si.Fields[i]
		if f.Type.ByteSize == SizeComputing {
			// self-referential by value with no pointer indirection:
			// disallows this (a struct cannot contain itself by value).
			return fmt.Errorf("types: struct %q contains itself by value (field %q)", si.Name, f.Name)
		}
		if f.Type.Status != StatusExpand && f.Type.Status != StatusCompact {
			if err := formalize(f.Type, seen); err != nil {
				return err
			}
		}
		if f.Type.ByteSize < 0 {
			unbounded = true
			continue
		}
		align := fieldAlign(f.Type.ByteSize)
		if !si.Packed {
			offset = alignUp(offset, align)
			if align > maxAlign {
				maxAlign = align
			}
		}
		f.Offset = offset
		offset += f.Type.ByteSize
	}
	si.MaxAlign = maxAlign
	if unbounded {
		dt.ByteSize = SizeUnbounded
		return nil
	}
	if !si.Packed {
		offset = alignUp(offset, maxAlign)
	}
	dt.ByteSize = offset
	return nil
}

func fieldAlign(size int64) int64 {
	switch {
	case size >= 8:
		return 8
	case size >= 4:
		return 4
	case size >= 2:
		return 2
	default:
		return 1
	}
}

func alignUp(off, align int64) int64 {
	if align <= 1 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// CheckIdenticalAcrossScopes reports whether typeid resolves to the same
// structural type when looked up from two different scopes.
func CheckIdenticalAcrossScopes(c *Cache, r Resolver, s1, s2 ast.Scope, typeid string) (bool, error) {
	t1, err := c.GetByName(s1, r, typeid)
	if err != nil {
		return false, err
	}
	t2, err := c.GetByName(s2, r, typeid)
	if err != nil {
		return false, err
	}
	return Identical(t1, t2), nil
}

// CanBind reports whether a value of type from can be used directly
// (without an explicit `as` cast) where a value of type to is expected:
// exact signature identity, or an untyped/"flexible" literal already
// narrowed by determine_literal_type to a compatible width.
func CanBind(from, to *CADataType) bool {
	if Identical(from, to) {
		return true
	}
	if from.Token.IsInteger() && to.Token.IsInteger() && from.Token.IsSigned() == to.Token.IsSigned() {
		return from.ByteSize <= to.ByteSize
	}
	if from.Token == POINTER && to.Token == POINTER {
		return Identical(from.Pointer.Kernel, to.Pointer.Kernel)
	}
	return false
}

// Dump renders dt as an indented tree of its structural shape, the
// dbgprinttype backend's structural printer.
func Dump(dt *CADataType) string {
	var b strings.Builder
	dumpInto(&b, dt, 0, map[*CADataType]bool{})
	return b.String()
}

func dumpInto(b *strings.Builder, dt *CADataType, depth int, seen map[*CADataType]bool) {
	indent := strings.Repeat("  ", depth)
	if dt == nil {
		fmt.Fprintf(b, "%s<nil>\n", indent)
		return
	}
	fmt.Fprintf(b, "%s%s (%s, size=%d)\n", indent, dt.Signature, dt.Token, dt.ByteSize)
	if seen[dt] {
		fmt.Fprintf(b, "%s  ...\n", indent)
		return
	}
	seen[dt] = true
	switch dt.Token {
	case POINTER:
		dumpInto(b, dt.Pointer.Kernel, depth+1, seen)
	case ARRAY:
		dumpInto(b, dt.Array.Elem, depth+1, seen)
	case STRUCT, SLICE:
		for _, f := range dt.Struct.Fields {
			fmt.Fprintf(b, "%s  .%s @%d:\n", indent, f.Name, f.Offset)
			dumpInto(b, f.Type, depth+2, seen)
		}
	case RANGE:
		if dt.Range.Start != nil {
			dumpInto(b, dt.Range.Start, depth+1, seen)
		}
		if dt.Range.End != nil {
			dumpInto(b, dt.Range.End, depth+1, seen)
		}
	}
}
