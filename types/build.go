package types

// GetOrBuildPointer returns the (cached) pointer-to-elem type, building it
// if this is the first time elem has been pointed to. Used where lowering
// already holds a resolved CADataType and needs its pointer form directly
// (address-of, box), rather than going through GetByName's typeid-text path.
func GetOrBuildPointer(c *Cache, elem *CADataType, alloc AllocPos) *CADataType {
	sig := "t:*" + elem.Signature[len("t:"):]
	if existing, ok := c.bySignature[sig]; ok {
		return existing
	}
	dt := &CADataType{
		Token: POINTER, ByteSize: 8, Status: StatusCompact, Signature: sig,
		Pointer: &PointerInfo{Kernel: elem, Dimension: 1, Alloc: alloc},
	}
	return c.RegisterSignature(dt)
}

// GetOrBuildArray returns the (cached) [elem; n] array type, building it if
// this exact (elem, n) pair hasn't been seen yet. Used for array-literal
// expressions, which carry their element count directly rather than a
// typeid string to unwind.
func GetOrBuildArray(c *Cache, elem *CADataType, n uint64) *CADataType {
	sig := sigForArray(elem, n)
	if existing, ok := c.bySignature[sig]; ok {
		return existing
	}
	size := SizeUnbounded
	if elem.ByteSize >= 0 {
		size = elem.ByteSize * int64(n)
	}
	dt := &CADataType{
		Token: ARRAY, ByteSize: size, Status: StatusCompact, Signature: sig,
		Array: &ArrayInfo{Elem: elem, Dimension: 1, Lengths: []uint64{n}},
	}
	return c.RegisterSignature(dt)
}

func sigForArray(elem *CADataType, n uint64) string {
	return "t:[" + elem.Signature[len("t:"):] + ";" + uitoa(n) + "]"
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
