package types

import "fmt"

// InferLiteral picks the literal's "natural" type from its lexeme kind
// alone, with no surrounding-context type to narrow against
// (inference_literal_type): integers default to i32 if they
// fit, else i64; unsigned-lexeme integers default to u32/u64 the same way;
// float literals default to f64; bool/char/string/cstring map directly to
// their single possible type.
func InferLiteral(c *Cache, kind LitKindLike, text string, i64 int64) (*CADataType, error) {
	switch kind {
	case LitKindSignedInt:
		if i64 >= -(1<<31) && i64 < (1<<31) {
			return c.Primitive("i32"), nil
		}
		return c.Primitive("i64"), nil
	case LitKindUnsignedInt:
		u := uint64(i64)
		if u < (1 << 32) {
			return c.Primitive("u32"), nil
		}
		return c.Primitive("u64"), nil
	case LitKindFloat:
		return c.Primitive("f64"), nil
	case LitKindBool:
		return c.Primitive("bool"), nil
	case LitKindI8:
		return c.Primitive("i8"), nil
	case LitKindU8:
		return c.Primitive("u8"), nil
	case LitKindCString:
		return c.Primitive("cstring"), nil
	default:
		return nil, fmt.Errorf("types: cannot infer a type for literal %q", text)
	}
}

// LitKindLike mirrors ast.LitKind without importing package ast (which
// would create an ast<->types cycle the moment ast needs a typed
// literal-kind constant back from types; none currently does, but nothing
// here needs ast's richer Literal payload either, only its kind tag).
type LitKindLike int

const (
	LitKindInvalid LitKindLike = iota
	LitKindSignedInt
	LitKindUnsignedInt
	LitKindFloat
	LitKindBool
	LitKindI8
	LitKindU8
	LitKindCString
)

// DetermineLiteral narrows a literal already inferred as natural to the
// concrete target type wanted by its surrounding context (an assignment's
// declared type, a function argument's formal type, and so on) —
// determine_literal_type. It range-checks integer literals
// against the target width/signedness and rejects a target that cannot
// represent the literal.
func DetermineLiteral(natural, target *CADataType, i64 int64, isFloat bool) (*CADataType, error) {
	if target == nil {
		return natural, nil
	}
	if target.Token.IsFloat() {
		return target, nil
	}
	if !target.Token.IsInteger() {
		return nil, fmt.Errorf("types: literal cannot be used as %s", target.Signature)
	}
	if isFloat {
		return nil, fmt.Errorf("types: floating-point literal cannot be used as %s", target.Signature)
	}
	lo, hi := integerRange(target)
	if i64 < lo || (hi >= 0 && i64 > hi) {
		return nil, fmt.Errorf("types: literal %d out of range for %s", i64, target.Signature)
	}
	return target, nil
}

// integerRange returns the representable [lo, hi] range of an integer
// CADataType; hi is returned as -1 for u64 to mean "no usable upper bound
// representable in an int64" (the caller should skip the upper check in
// that case, which the hi >= 0 && i64 > hi test above already does by
// treating a negative hi as "unbounded").
func integerRange(t *CADataType) (int64, int64) {
	switch t.FormalName {
	case "i8":
		return -128, 127
	case "u8":
		return 0, 255
	case "i16":
		return -32768, 32767
	case "u16":
		return 0, 65535
	case "i32":
		return -(1 << 31), (1 << 31) - 1
	case "u32":
		return 0, (1 << 32) - 1
	case "i64":
		return -(1 << 63), (1<<63 - 1)
	case "u64":
		return 0, -1
	default:
		return 0, -1
	}
}
