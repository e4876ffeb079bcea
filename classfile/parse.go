package classfile

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidMagic = errors.New("invalid class file magic")
	ErrTruncated    = errors.New("truncated class file")
)

// decoder walks a byte slice. The first failure sticks; later reads
// return zero values so callers check err once per structure.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if n < 0 || d.off+n > len(d.buf) {
		d.err = errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, d.off, len(d.buf)-d.off)
		return false
	}
	return true
}

func (d *decoder) u1() uint8 {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.off]
	d.off++
	return v
}

func (d *decoder) u2() uint16 {
	if !d.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(d.buf[d.off:])
	d.off += 2
	return v
}

func (d *decoder) u4() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v
}

func (d *decoder) bytes(n int) []byte {
	if !d.need(n) {
		return nil
	}
	v := d.buf[d.off : d.off+n]
	d.off += n
	return v
}

func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read class file")
	}
	return ParseBytes(data)
}

func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read class file")
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) (*ClassFile, error) {
	d := &decoder{buf: data}

	if magic := d.u4(); d.err != nil {
		return nil, errors.Wrap(d.err, "read magic")
	} else if magic != Magic {
		return nil, errors.Wrapf(ErrInvalidMagic, "got 0x%X", magic)
	}

	cf := &ClassFile{
		MinorVersion: d.u2(),
		MajorVersion: d.u2(),
	}

	pool, err := readConstantPool(d)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = pool

	cf.AccessFlags = AccessFlags(d.u2())
	cf.ThisClass = d.u2()
	cf.SuperClass = d.u2()
	cf.Interfaces = make([]uint16, d.u2())
	for i := range cf.Interfaces {
		cf.Interfaces[i] = d.u2()
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "read class header")
	}

	if cf.Fields, err = readMembers(d, pool); err != nil {
		return nil, errors.Wrap(err, "read fields")
	}
	if cf.Methods, err = readMembers(d, pool); err != nil {
		return nil, errors.Wrap(err, "read methods")
	}
	if cf.Attributes, err = readAttributes(d, pool); err != nil {
		return nil, errors.Wrap(err, "read class attributes")
	}
	return cf, nil
}

func readConstantPool(d *decoder) (ConstantPool, error) {
	count := d.u2()
	if d.err != nil {
		return nil, errors.Wrap(d.err, "read constant pool count")
	}
	if count == 0 {
		return ConstantPool{}, nil
	}

	pool := make(ConstantPool, count-1)
	for i := 1; i < int(count); i++ {
		entry, wide, err := readConstant(d)
		if err != nil {
			return nil, errors.Wrapf(err, "constant pool entry %d", i)
		}
		pool[i-1] = entry
		// long and double occupy two slots; the second is unusable.
		if wide {
			i++
		}
	}
	return pool, nil
}

func readConstant(d *decoder) (ConstantPoolEntry, bool, error) {
	tag := ConstantTag(d.u1())
	var entry ConstantPoolEntry
	wide := false

	switch tag {
	case ConstantUtf8:
		n := int(d.u2())
		entry = &ConstantUtf8Info{Value: decodeModifiedUtf8(d.bytes(n))}
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(d.u4())}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(d.u4())}
	case ConstantLong:
		hi, lo := d.u4(), d.u4()
		entry = &ConstantLongInfo{Value: int64(uint64(hi)<<32 | uint64(lo))}
		wide = true
	case ConstantDouble:
		hi, lo := d.u4(), d.u4()
		entry = &ConstantDoubleInfo{Value: math.Float64frombits(uint64(hi)<<32 | uint64(lo))}
		wide = true
	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		entry = &ConstantIndexInfo{tag: tag, Index: d.u2()}
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
		entry = &ConstantPairInfo{tag: tag, First: d.u2(), Second: d.u2()}
	case ConstantMethodHandle:
		kind := d.u1()
		entry = &ConstantPairInfo{tag: tag, First: uint16(kind), Second: d.u2()}
	default:
		if d.err == nil {
			return nil, false, errors.Newf("unknown constant pool tag %d", tag)
		}
	}

	if d.err != nil {
		return nil, false, d.err
	}
	return entry, wide, nil
}

func readMembers(d *decoder, pool ConstantPool) ([]Member, error) {
	members := make([]Member, d.u2())
	for i := range members {
		m := &members[i]
		m.AccessFlags = AccessFlags(d.u2())
		m.Name = pool.GetUtf8(d.u2())
		m.Descriptor = pool.GetUtf8(d.u2())
		attrs, err := readAttributes(d, pool)
		if err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		m.Attributes = attrs
	}
	if d.err != nil {
		return nil, d.err
	}
	return members, nil
}

func readAttributes(d *decoder, pool ConstantPool) (Attributes, error) {
	attrs := make(Attributes, d.u2())
	for i := range attrs {
		attrs[i].Name = pool.GetUtf8(d.u2())
		attrs[i].Info = d.bytes(int(d.u4()))
	}
	if d.err != nil {
		return nil, d.err
	}
	return attrs, nil
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8, including
// surrogate pairs encoded as two three-byte sequences. An unpaired
// surrogate keeps its three-byte form, so the result is not always
// valid UTF-8 but no code unit is lost.
func decodeModifiedUtf8(b []byte) string {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			out = append(out, c)
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			out = utf8.AppendRune(out, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 {
				lo := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if lo >= 0xDC00 && lo <= 0xDFFF {
					out = utf8.AppendRune(out, 0x10000+(r-0xD800)<<10+(lo-0xDC00))
					i += 6
					continue
				}
			}
			if utf16.IsSurrogate(r) {
				out = append(out, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
			} else {
				out = utf8.AppendRune(out, r)
			}
			i += 3
		default:
			out = utf8.AppendRune(out, rune(c))
			i++
		}
	}
	return string(out)
}
