package types

import (
	"fmt"

	"github.com/ca-lang/cac/ast"
)

// SliceOf builds (or returns the already-cached) slice-of-elem type: a
// 3-field struct {data *elem, len u64, cap u64}. This
// is slice_create_catype.
func SliceOf(c *Cache, elem *CADataType) *CADataType {
	sig := "t:<slice;" + elem.Signature[len("t:"):] + ">"
	if existing, ok := c.bySignature[sig]; ok {
		return existing
	}
	ptrToElem := &CADataType{
		Token: POINTER, ByteSize: 8, Status: StatusCompact,
		Signature: "t:*" + elem.Signature[len("t:"):],
		Pointer:   &PointerInfo{Kernel: elem, Dimension: 1},
	}
	ptrToElem = c.RegisterSignature(ptrToElem)
	u64 := c.Primitive("u64")
	dt := &CADataType{
		Token: SLICE, ByteSize: 24, Status: StatusCompact, Signature: sig,
		Struct: &StructInfo{
			Kind: ast.SliceStruct,
			Name: "",
			Fields: []StructField{
				{Name: "data", Offset: 0, Type: ptrToElem},
				{Name: "len", Offset: 8, Type: u64},
				{Name: "cap", Offset: 16, Type: u64},
			},
			MaxAlign: 8,
		},
	}
	return c.RegisterSignature(dt)
}

// rangeKindTag is catype_from_range's textual signature tag for each kind.
func rangeKindTag(k RangeKind) string {
	switch k {
	case RangeFull:
		return "full"
	case RangeInclusive:
		return "incl"
	case RangeRightExclusive:
		return "rexcl"
	case RangeInclusiveTo:
		return "inclto"
	case RangeRightExclusiveTo:
		return "rexclto"
	case RangeFrom:
		return "from"
	default:
		return "?"
	}
}

// RangeType builds (or returns the already-cached) range type of the given
// kind with the given start/end component types — catype_from_range. The
// runtime representation is a general-tuple "Packaged" type holding
// whichever of start/end this kind actually carries, so `for i in a..b`
// lowers to ordinary struct-field loads.
func RangeType(c *Cache, kind RangeKind, start, end *CADataType) *CADataType {
	startSig, endSig := "_", "_"
	var fields []StructField
	if start != nil {
		startSig = start.Signature[len("t:"):]
		fields = append(fields, StructField{Name: "start", Type: start})
	}
	if end != nil {
		endSig = end.Signature[len("t:"):]
		fields = append(fields, StructField{Name: "end", Type: end})
	}
	sig := fmt.Sprintf("t:#%d;%s;%s#", int(kind), startSig, endSig)
	if existing, ok := c.bySignature[sig]; ok {
		return existing
	}
	packaged := &CADataType{
		Token: STRUCT, Status: StatusCompact,
		Signature: sig + ".pkg",
		Struct:    &StructInfo{Kind: ast.GeneralTuple, Fields: fields},
	}
	inclusive := kind == RangeInclusive || kind == RangeInclusiveTo
	dt := &CADataType{
		Token: RANGE, Status: StatusCompact, Signature: sig,
		Range: &RangeInfo{Kind: kind, Inclusive: inclusive, Start: start, End: end, Packaged: packaged},
	}
	return c.RegisterSignature(dt)
}
