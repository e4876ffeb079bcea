package classfile

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

// ConstantIndexInfo covers the entries that point at a single other
// entry: Class, String, MethodType, Module and Package.
type ConstantIndexInfo struct {
	tag   ConstantTag
	Index uint16
}

func (c *ConstantIndexInfo) Tag() ConstantTag { return c.tag }

// ConstantPairInfo covers member references, NameAndType, dynamic
// call sites and method handles (First holds the reference kind).
type ConstantPairInfo struct {
	tag    ConstantTag
	First  uint16
	Second uint16
}

func (c *ConstantPairInfo) Tag() ConstantTag { return c.tag }

type ConstantPool []ConstantPoolEntry

func (cp ConstantPool) entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

func (cp ConstantPool) indexed(index uint16, tag ConstantTag) (uint16, bool) {
	if e, ok := cp.entry(index).(*ConstantIndexInfo); ok && e.tag == tag {
		return e.Index, true
	}
	return 0, false
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if e, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return e.Value
	}
	return ""
}

// GetClassName returns the internal (slash separated) name of a Class entry.
func (cp ConstantPool) GetClassName(index uint16) string {
	if name, ok := cp.indexed(index, ConstantClass); ok {
		return cp.GetUtf8(name)
	}
	return ""
}

func (cp ConstantPool) GetString(index uint16) (string, bool) {
	if s, ok := cp.indexed(index, ConstantString); ok {
		return cp.GetUtf8(s), true
	}
	return "", false
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if e, ok := cp.entry(index).(*ConstantPairInfo); ok && e.tag == ConstantNameAndType {
		return cp.GetUtf8(e.First), cp.GetUtf8(e.Second)
	}
	return "", ""
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	if e, ok := cp.entry(index).(*ConstantIntegerInfo); ok {
		return e.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	if e, ok := cp.entry(index).(*ConstantLongInfo); ok {
		return e.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetFloat(index uint16) (float32, bool) {
	if e, ok := cp.entry(index).(*ConstantFloatInfo); ok {
		return e.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetDouble(index uint16) (float64, bool) {
	if e, ok := cp.entry(index).(*ConstantDoubleInfo); ok {
		return e.Value, true
	}
	return 0, false
}

// Constant returns the Go value of a loadable literal entry: int32,
// int64, float32, float64 or string.
func (cp ConstantPool) Constant(index uint16) (any, bool) {
	switch e := cp.entry(index).(type) {
	case *ConstantIntegerInfo:
		return e.Value, true
	case *ConstantLongInfo:
		return e.Value, true
	case *ConstantFloatInfo:
		return e.Value, true
	case *ConstantDoubleInfo:
		return e.Value, true
	case *ConstantIndexInfo:
		if e.tag == ConstantString {
			return cp.GetUtf8(e.Index), true
		}
	}
	return nil, false
}
