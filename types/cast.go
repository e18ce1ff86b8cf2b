package types

import "fmt"

// CastOp names the backend opcode family an `as` cast must lower to.
type CastOp int

const (
	CastNone CastOp = iota // no-op: identical types
	CastIntTrunc
	CastIntSExt
	CastIntZExt
	CastIntToFloat
	CastUIntToFloat
	CastFloatToInt
	CastFloatToUInt
	CastFloatTrunc
	CastFloatExt
	CastBitcast // pointer<->pointer, pointer<->integer of matching width
	CastIntToBool
	CastBoolToInt
)

// CastRule resolves the opcode for `from as to`, or an error if the pair
// has no defined cast.
func CastRule(from, to *CADataType) (CastOp, error) {
	if Identical(from, to) {
		return CastNone, nil
	}
	switch {
	case from.Token.IsInteger() && to.Token.IsInteger():
		switch {
		case from.ByteSize > to.ByteSize:
			return CastIntTrunc, nil
		case from.ByteSize < to.ByteSize:
			if from.Token.IsSigned() {
				return CastIntSExt, nil
			}
			return CastIntZExt, nil
		default:
			return CastBitcast, nil // same width, signed<->unsigned reinterpret
		}
	case from.Token.IsInteger() && to.Token.IsFloat():
		if from.Token.IsSigned() {
			return CastIntToFloat, nil
		}
		return CastUIntToFloat, nil
	case from.Token.IsFloat() && to.Token.IsInteger():
		if to.Token.IsSigned() {
			return CastFloatToInt, nil
		}
		return CastFloatToUInt, nil
	case from.Token.IsFloat() && to.Token.IsFloat():
		if from.ByteSize < to.ByteSize {
			return CastFloatExt, nil
		}
		return CastFloatTrunc, nil
	case from.Token == BOOL && to.Token.IsInteger():
		return CastBoolToInt, nil
	case from.Token.IsInteger() && to.Token == BOOL:
		return CastIntToBool, nil
	case from.Token == POINTER && to.Token == POINTER:
		return CastBitcast, nil
	case from.Token == POINTER && to.Token.IsInteger() && to.ByteSize == 8:
		return CastBitcast, nil
	case from.Token.IsInteger() && from.ByteSize == 8 && to.Token == POINTER:
		return CastBitcast, nil
	default:
		return 0, fmt.Errorf("types: no `as` cast from %s to %s", from.Signature, to.Signature)
	}
}
