// Package classtest assembles minimal class files for tests. It writes
// only the structures the readers in this module look at.
package classtest

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
)

const (
	AccPublic     uint16 = 0x0001
	AccPrivate    uint16 = 0x0002
	AccProtected  uint16 = 0x0004
	AccStatic     uint16 = 0x0008
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020
	AccVarargs    uint16 = 0x0080
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
)

// Pool is a constant pool under construction. Entries are shared.
type Pool struct {
	buf   bytes.Buffer
	next  uint16
	index map[string]uint16
}

func newPool() *Pool {
	return &Pool{next: 1, index: map[string]uint16{}}
}

func (p *Pool) add(key string, slots uint16, write func(w *bytes.Buffer)) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := p.next
	write(&p.buf)
	p.next += slots
	p.index[key] = idx
	return idx
}

func (p *Pool) Utf8(s string) uint16 {
	return p.add("u:"+s, 1, func(w *bytes.Buffer) {
		w.WriteByte(1)
		put2(w, uint16(len(s)))
		w.WriteString(s)
	})
}

func (p *Pool) Class(internalName string) uint16 {
	name := p.Utf8(internalName)
	return p.add("c:"+internalName, 1, func(w *bytes.Buffer) {
		w.WriteByte(7)
		put2(w, name)
	})
}

func (p *Pool) String(s string) uint16 {
	utf := p.Utf8(s)
	return p.add("s:"+s, 1, func(w *bytes.Buffer) {
		w.WriteByte(8)
		put2(w, utf)
	})
}

func (p *Pool) Integer(v int32) uint16 {
	return p.add("i:"+strconv.FormatInt(int64(v), 10), 1, func(w *bytes.Buffer) {
		w.WriteByte(3)
		put4(w, uint32(v))
	})
}

func (p *Pool) Long(v int64) uint16 {
	return p.add("j:"+strconv.FormatInt(v, 10), 2, func(w *bytes.Buffer) {
		w.WriteByte(5)
		put4(w, uint32(uint64(v)>>32))
		put4(w, uint32(v))
	})
}

func (p *Pool) Double(v float64) uint16 {
	bits := math.Float64bits(v)
	return p.add("d:"+strconv.FormatUint(bits, 16), 2, func(w *bytes.Buffer) {
		w.WriteByte(6)
		put4(w, uint32(bits>>32))
		put4(w, uint32(bits))
	})
}

func (p *Pool) NameAndType(name, desc string) uint16 {
	n, d := p.Utf8(name), p.Utf8(desc)
	return p.add("nt:"+name+":"+desc, 1, func(w *bytes.Buffer) {
		w.WriteByte(12)
		put2(w, n)
		put2(w, d)
	})
}

// Attr writes one attribute body, interning what it needs in the pool.
type Attr func(p *Pool) (name string, info []byte)

func Signature(sig string) Attr {
	return func(p *Pool) (string, []byte) {
		return "Signature", u2(p.Utf8(sig))
	}
}

func Deprecated() Attr {
	return func(p *Pool) (string, []byte) { return "Deprecated", nil }
}

func ConstantInt(v int32) Attr {
	return func(p *Pool) (string, []byte) { return "ConstantValue", u2(p.Integer(v)) }
}

func ConstantLong(v int64) Attr {
	return func(p *Pool) (string, []byte) { return "ConstantValue", u2(p.Long(v)) }
}

func ConstantDouble(v float64) Attr {
	return func(p *Pool) (string, []byte) { return "ConstantValue", u2(p.Double(v)) }
}

func ConstantString(s string) Attr {
	return func(p *Pool) (string, []byte) { return "ConstantValue", u2(p.String(s)) }
}

func Exceptions(internalNames ...string) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		put2(&w, uint16(len(internalNames)))
		for _, n := range internalNames {
			put2(&w, p.Class(n))
		}
		return "Exceptions", w.Bytes()
	}
}

type Inner struct {
	Inner  string
	Outer  string
	Name   string
	Access uint16
}

func InnerClasses(entries ...Inner) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		put2(&w, uint16(len(entries)))
		for _, e := range entries {
			put2(&w, p.Class(e.Inner))
			if e.Outer == "" {
				put2(&w, 0)
			} else {
				put2(&w, p.Class(e.Outer))
			}
			if e.Name == "" {
				put2(&w, 0)
			} else {
				put2(&w, p.Utf8(e.Name))
			}
			put2(&w, e.Access)
		}
		return "InnerClasses", w.Bytes()
	}
}

func MethodParameters(names ...string) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		w.WriteByte(byte(len(names)))
		for _, n := range names {
			put2(&w, p.Utf8(n))
			put2(&w, 0)
		}
		return "MethodParameters", w.Bytes()
	}
}

// EnumValue is an annotation element holding an enum constant.
type EnumValue struct {
	Name      string
	TypeDesc  string
	ConstName string
}

// Annotation adds a RuntimeVisibleAnnotations attribute with one
// annotation of the given descriptor type and enum-valued elements.
func Annotation(typeDesc string, elements ...EnumValue) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		put2(&w, 1)
		put2(&w, p.Utf8(typeDesc))
		put2(&w, uint16(len(elements)))
		for _, e := range elements {
			put2(&w, p.Utf8(e.Name))
			w.WriteByte('e')
			put2(&w, p.Utf8(e.TypeDesc))
			put2(&w, p.Utf8(e.ConstName))
		}
		return "RuntimeVisibleAnnotations", w.Bytes()
	}
}

// AnnotationDefaultInt sets an int-valued annotation element default.
func AnnotationDefaultInt(v int32) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		w.WriteByte('I')
		put2(&w, p.Integer(v))
		return "AnnotationDefault", w.Bytes()
	}
}

// Code adds a Code attribute. The bytecode callback may intern
// constants; nested attributes follow it.
func Code(bytecode func(p *Pool) []byte, nested ...Attr) Attr {
	return func(p *Pool) (string, []byte) {
		code := bytecode(p)
		var w bytes.Buffer
		put2(&w, 4)
		put2(&w, 4)
		put4(&w, uint32(len(code)))
		w.Write(code)
		put2(&w, 0)
		writeAttrs(&w, p, nested)
		return "Code", w.Bytes()
	}
}

// LocalVariables adds a LocalVariableTable naming slots in order.
func LocalVariables(names ...string) Attr {
	return func(p *Pool) (string, []byte) {
		var w bytes.Buffer
		put2(&w, uint16(len(names)))
		for i, n := range names {
			put2(&w, 0)
			put2(&w, 1)
			put2(&w, p.Utf8(n))
			put2(&w, p.Utf8("I"))
			put2(&w, uint16(i))
		}
		return "LocalVariableTable", w.Bytes()
	}
}

// EnumInit returns static initializer bytecode that constructs each
// constant as "new Class; dup; ldc name; ...". An empty body class
// means the constant is an instance of enumName itself.
func EnumInit(enumName string, constants [][2]string) func(p *Pool) []byte {
	return func(p *Pool) []byte {
		var w bytes.Buffer
		for i, c := range constants {
			class := c[1]
			if class == "" {
				class = enumName
			}
			w.WriteByte(0xbb)
			put2(&w, p.Class(class))
			w.WriteByte(0x59)
			w.WriteByte(0x13)
			put2(&w, p.String(c[0]))
			w.WriteByte(0x10)
			w.WriteByte(byte(i))
			w.WriteByte(0xb7)
			put2(&w, 0)
			w.WriteByte(0xb3)
			put2(&w, 0)
		}
		w.WriteByte(0xb1)
		return w.Bytes()
	}
}

type member struct {
	access uint16
	name   string
	desc   string
	attrs  []Attr
}

// Class describes one class file to assemble.
type Class struct {
	Name       string
	Access     uint16
	Super      string
	Interfaces []string
	Major      uint16

	fields  []member
	methods []member
	attrs   []Attr
}

func New(internalName string, access uint16) *Class {
	return &Class{Name: internalName, Access: access, Super: "java/lang/Object", Major: 61}
}

func (c *Class) Implements(internalNames ...string) *Class {
	c.Interfaces = append(c.Interfaces, internalNames...)
	return c
}

func (c *Class) Extends(internalName string) *Class {
	c.Super = internalName
	return c
}

func (c *Class) Field(access uint16, name, desc string, attrs ...Attr) *Class {
	c.fields = append(c.fields, member{access, name, desc, attrs})
	return c
}

func (c *Class) Method(access uint16, name, desc string, attrs ...Attr) *Class {
	c.methods = append(c.methods, member{access, name, desc, attrs})
	return c
}

func (c *Class) Attr(attrs ...Attr) *Class {
	c.attrs = append(c.attrs, attrs...)
	return c
}

// Bytes assembles the class file.
func (c *Class) Bytes() []byte {
	p := newPool()
	var body bytes.Buffer

	put2(&body, c.Access)
	put2(&body, p.Class(c.Name))
	if c.Super == "" {
		put2(&body, 0)
	} else {
		put2(&body, p.Class(c.Super))
	}
	put2(&body, uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		put2(&body, p.Class(i))
	}
	for _, members := range [][]member{c.fields, c.methods} {
		put2(&body, uint16(len(members)))
		for _, m := range members {
			put2(&body, m.access)
			put2(&body, p.Utf8(m.name))
			put2(&body, p.Utf8(m.desc))
			writeAttrs(&body, p, m.attrs)
		}
	}
	writeAttrs(&body, p, c.attrs)

	var out bytes.Buffer
	put4(&out, 0xCAFEBABE)
	put2(&out, 0)
	put2(&out, c.Major)
	put2(&out, p.next)
	out.Write(p.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeAttrs(w *bytes.Buffer, p *Pool, attrs []Attr) {
	put2(w, uint16(len(attrs)))
	for _, a := range attrs {
		name, info := a(p)
		put2(w, p.Utf8(name))
		put4(w, uint32(len(info)))
		w.Write(info)
	}
}

func u2(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func put2(w *bytes.Buffer, v uint16) { w.Write(u2(v)) }

func put4(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}
