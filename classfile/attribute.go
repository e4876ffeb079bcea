package classfile

import (
	"github.com/cockroachdb/errors"
)

// Attribute is a raw attribute with its name already resolved. Typed
// views are decoded on demand by the Attributes accessors.
type Attribute struct {
	Name string
	Info []byte
}

type Attributes []Attribute

func (as Attributes) Find(name string) *Attribute {
	for i := range as {
		if as[i].Name == name {
			return &as[i]
		}
	}
	return nil
}

func (as Attributes) Has(name string) bool {
	return as.Find(name) != nil
}

func (as Attributes) IsDeprecated() bool {
	return as.Has("Deprecated")
}

func (as Attributes) IsSynthetic() bool {
	return as.Has("Synthetic")
}

func (as Attributes) u2(name string) (uint16, bool) {
	a := as.Find(name)
	if a == nil {
		return 0, false
	}
	d := &decoder{buf: a.Info}
	v := d.u2()
	return v, d.err == nil
}

// Signature returns the generic signature string, if any.
func (as Attributes) Signature(cp ConstantPool) (string, bool) {
	idx, ok := as.u2("Signature")
	if !ok {
		return "", false
	}
	return cp.GetUtf8(idx), true
}

// ConstantValue returns the constant pool index of a field's constant.
func (as Attributes) ConstantValue() (uint16, bool) {
	return as.u2("ConstantValue")
}

// Exceptions returns the internal names of the declared thrown types.
func (as Attributes) Exceptions(cp ConstantPool) ([]string, error) {
	a := as.Find("Exceptions")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	names := make([]string, d.u2())
	for i := range names {
		names[i] = cp.GetClassName(d.u2())
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode Exceptions")
	}
	return names, nil
}

type InnerClass struct {
	Inner       string
	Outer       string
	SimpleName  string
	AccessFlags AccessFlags
}

func (as Attributes) InnerClasses(cp ConstantPool) ([]InnerClass, error) {
	a := as.Find("InnerClasses")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	entries := make([]InnerClass, d.u2())
	for i := range entries {
		entries[i] = InnerClass{
			Inner:       cp.GetClassName(d.u2()),
			Outer:       cp.GetClassName(d.u2()),
			SimpleName:  cp.GetUtf8(d.u2()),
			AccessFlags: AccessFlags(d.u2()),
		}
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode InnerClasses")
	}
	return entries, nil
}

type EnclosingMethod struct {
	Class      string
	Method     string
	Descriptor string
}

func (as Attributes) EnclosingMethod(cp ConstantPool) (*EnclosingMethod, bool) {
	a := as.Find("EnclosingMethod")
	if a == nil {
		return nil, false
	}
	d := &decoder{buf: a.Info}
	em := &EnclosingMethod{Class: cp.GetClassName(d.u2())}
	em.Method, em.Descriptor = cp.GetNameAndType(d.u2())
	return em, d.err == nil
}

type MethodParameter struct {
	Name        string
	AccessFlags AccessFlags
}

func (as Attributes) MethodParameters(cp ConstantPool) ([]MethodParameter, error) {
	a := as.Find("MethodParameters")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	params := make([]MethodParameter, d.u1())
	for i := range params {
		params[i] = MethodParameter{
			Name:        cp.GetUtf8(d.u2()),
			AccessFlags: AccessFlags(d.u2()),
		}
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode MethodParameters")
	}
	return params, nil
}

// Code is the part of a Code attribute this tool reads: the bytecode
// and the nested attributes. The exception table is skipped.
type Code struct {
	MaxLocals  uint16
	Bytecode   []byte
	Attributes Attributes
}

func (as Attributes) Code(cp ConstantPool) (*Code, error) {
	a := as.Find("Code")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	d.u2()
	code := &Code{MaxLocals: d.u2()}
	code.Bytecode = d.bytes(int(d.u4()))
	d.bytes(int(d.u2()) * 8)
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode Code")
	}
	attrs, err := readAttributes(d, cp)
	if err != nil {
		return nil, errors.Wrap(err, "decode Code attributes")
	}
	code.Attributes = attrs
	return code, nil
}

type LocalVariable struct {
	StartPC uint16
	Name    string
	Slot    uint16
}

// LocalVariables decodes a LocalVariableTable nested in a Code attribute.
func (c *Code) LocalVariables(cp ConstantPool) ([]LocalVariable, error) {
	a := c.Attributes.Find("LocalVariableTable")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	vars := make([]LocalVariable, d.u2())
	for i := range vars {
		vars[i].StartPC = d.u2()
		d.u2()
		vars[i].Name = cp.GetUtf8(d.u2())
		d.u2()
		vars[i].Slot = d.u2()
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode LocalVariableTable")
	}
	return vars, nil
}

type Annotation struct {
	// Type is the field descriptor of the annotation interface,
	// e.g. "Ljava/lang/Deprecated;".
	Type     string
	Elements []ElementPair
}

type ElementPair struct {
	Name  string
	Value ElementValue
}

// ElementValue is one annotation element value. Tag is the JVM tag
// character; the populated field depends on it.
type ElementValue struct {
	Tag        byte
	Const      any
	EnumType   string
	EnumConst  string
	Class      string
	Annotation *Annotation
	Values     []ElementValue
}

func (a *Annotation) Element(name string) (ElementValue, bool) {
	for _, e := range a.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return ElementValue{}, false
}

// Annotations returns the runtime-visible annotations.
func (as Attributes) Annotations(cp ConstantPool) ([]Annotation, error) {
	a := as.Find("RuntimeVisibleAnnotations")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	anns := make([]Annotation, d.u2())
	for i := range anns {
		anns[i] = readAnnotation(d, cp)
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode RuntimeVisibleAnnotations")
	}
	return anns, nil
}

func (as Attributes) AnnotationDefault(cp ConstantPool) (*ElementValue, error) {
	a := as.Find("AnnotationDefault")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	v := readElementValue(d, cp)
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode AnnotationDefault")
	}
	return &v, nil
}

func readAnnotation(d *decoder, cp ConstantPool) Annotation {
	ann := Annotation{Type: cp.GetUtf8(d.u2())}
	n := int(d.u2())
	for i := 0; i < n && d.err == nil; i++ {
		name := cp.GetUtf8(d.u2())
		ann.Elements = append(ann.Elements, ElementPair{Name: name, Value: readElementValue(d, cp)})
	}
	return ann
}

func readElementValue(d *decoder, cp ConstantPool) ElementValue {
	v := ElementValue{Tag: d.u1()}
	switch v.Tag {
	case 'B', 'C', 'I', 'S', 'Z', 'J', 'F', 'D':
		v.Const, _ = cp.Constant(d.u2())
	case 's':
		v.Const = cp.GetUtf8(d.u2())
	case 'e':
		v.EnumType = cp.GetUtf8(d.u2())
		v.EnumConst = cp.GetUtf8(d.u2())
	case 'c':
		v.Class = cp.GetUtf8(d.u2())
	case '@':
		ann := readAnnotation(d, cp)
		v.Annotation = &ann
	case '[':
		n := int(d.u2())
		for i := 0; i < n && d.err == nil; i++ {
			v.Values = append(v.Values, readElementValue(d, cp))
		}
	default:
		if d.err == nil {
			d.err = errors.Newf("unknown element value tag %q", v.Tag)
		}
	}
	return v
}

type RecordComponent struct {
	Name       string
	Descriptor string
	Signature  string
}

func (as Attributes) Record(cp ConstantPool) ([]RecordComponent, error) {
	a := as.Find("Record")
	if a == nil {
		return nil, nil
	}
	d := &decoder{buf: a.Info}
	comps := make([]RecordComponent, d.u2())
	for i := range comps {
		comps[i].Name = cp.GetUtf8(d.u2())
		comps[i].Descriptor = cp.GetUtf8(d.u2())
		attrs, err := readAttributes(d, cp)
		if err != nil {
			return nil, errors.Wrap(err, "decode Record component")
		}
		comps[i].Signature, _ = attrs.Signature(cp)
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decode Record")
	}
	return comps, nil
}
