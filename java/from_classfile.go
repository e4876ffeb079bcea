package java

import (
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dmssargent/StubJars/classfile"
)

var log = commonlog.GetLogger("stubjars.java")

func DescriptorFromFile(path string) (*ClassDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open class file")
	}
	defer f.Close()
	return DescriptorFromReader(f)
}

func DescriptorFromReader(r io.Reader) (*ClassDescriptor, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return DescriptorFromClassFile(cf)
}

// DescriptorFromClassFile builds the descriptor for a parsed class.
// Generic signatures that fail to parse fall back to the erased
// descriptor types.
func DescriptorFromClassFile(cf *classfile.ClassFile) (*ClassDescriptor, error) {
	cp := cf.ConstantPool
	name := classfile.InternalToSourceName(cf.ClassName())
	if name == "" {
		return nil, errors.New("class file has no name")
	}
	pkg, rest := SplitName(name)

	desc := &ClassDescriptor{
		Name:         name,
		Package:      pkg,
		SimpleName:   rest,
		Kind:         classKindFromClassFile(cf),
		Visibility:   visibilityFromAccessFlags(cf.AccessFlags),
		IsFinal:      cf.AccessFlags.IsFinal(),
		IsAbstract:   cf.AccessFlags.IsAbstract(),
		IsSynthetic:  cf.AccessFlags.IsSynthetic(),
		IsDeprecated: cf.Attributes.IsDeprecated(),
	}

	inner, err := cf.Attributes.InnerClasses(cp)
	if err != nil {
		return nil, errors.Wrapf(err, "class %s", name)
	}
	applyInnerClasses(desc, cf.ClassName(), inner)

	if err := applyClassSignature(desc, cf); err != nil {
		return nil, err
	}

	anns, err := cf.Attributes.Annotations(cp)
	if err != nil {
		return nil, errors.Wrapf(err, "class %s", name)
	}
	for _, a := range anns {
		switch a.Type {
		case "Ljava/lang/Deprecated;":
			desc.IsDeprecated = true
		case "Ljava/lang/annotation/Retention;":
			if v, ok := a.Element("value"); ok {
				desc.Retention = v.EnumConst
			}
		}
	}

	for i := range cf.Fields {
		f, err := fieldFromMember(&cf.Fields[i], cp, desc.TypeParameters)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", name)
		}
		desc.Fields = append(desc.Fields, f)
		if f.IsEnumConstant {
			desc.EnumConstants = append(desc.EnumConstants, EnumConstant{Name: f.Name})
		}
	}

	for i := range cf.Methods {
		mi := &cf.Methods[i]
		if mi.IsStaticInitializer() {
			if desc.IsEnum() {
				bodies := enumConstantBodies(mi, cp, cf.ClassName())
				for j := range desc.EnumConstants {
					desc.EnumConstants[j].Body = bodies[desc.EnumConstants[j].Name]
				}
			}
			continue
		}
		m, err := methodFromMember(mi, cp, desc)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", name)
		}
		if m.IsConstructor() {
			desc.Constructors = append(desc.Constructors, m)
		} else {
			desc.Methods = append(desc.Methods, m)
		}
	}

	if desc.Kind == ClassKindRecord {
		comps, err := cf.Attributes.Record(cp)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", name)
		}
		for _, c := range comps {
			desc.RecordComponents = append(desc.RecordComponents, Parameter{
				Name: c.Name,
				Type: typeFromSignature(c.Signature, c.Descriptor, desc.TypeParameters),
			})
		}
	}

	return desc, nil
}

// applyInnerClasses reads nesting from the InnerClasses attribute: the
// entry describing this class carries its source modifiers, and
// entries whose outer class is this class list its members.
func applyInnerClasses(desc *ClassDescriptor, self string, entries []classfile.InnerClass) {
	for _, e := range entries {
		switch {
		case e.Inner == self:
			flags := e.AccessFlags
			desc.Visibility = visibilityFromAccessFlags(flags)
			desc.IsStatic = flags.IsStatic()
			desc.IsFinal = flags.IsFinal()
			desc.IsAbstract = flags.IsAbstract()
			switch {
			case e.SimpleName == "":
				desc.IsAnonymous = true
				desc.SimpleName = ""
			case e.Outer == "":
				desc.IsLocal = true
				desc.SimpleName = e.SimpleName
			default:
				desc.DeclaringClass = classfile.InternalToSourceName(e.Outer)
				desc.SimpleName = e.SimpleName
			}
		case e.Outer == self && e.SimpleName != "":
			desc.NestedClasses = append(desc.NestedClasses, classfile.InternalToSourceName(e.Inner))
		}
	}
}

func applyClassSignature(desc *ClassDescriptor, cf *classfile.ClassFile) error {
	if sig, ok := cf.Attributes.Signature(cf.ConstantPool); ok {
		cs, err := ParseClassSignature(sig)
		if err == nil {
			desc.TypeParameters = bindTypeParameters(cs.TypeParameters)
			desc.SuperClass = bindVariables(cs.SuperClass, desc.TypeParameters)
			for _, i := range cs.Interfaces {
				desc.Interfaces = append(desc.Interfaces, bindVariables(i, desc.TypeParameters))
			}
			return nil
		}
		log.Debugf("%s: %v, using erased types", desc.Name, err)
	}

	if super := cf.SuperClassName(); super != "" {
		desc.SuperClass = TypeFromInternalName(super)
	}
	for _, i := range cf.InterfaceNames() {
		desc.Interfaces = append(desc.Interfaces, TypeFromInternalName(i))
	}
	return nil
}

func bindTypeParameters(params []TypeParameter, outer ...[]TypeParameter) []TypeParameter {
	scopes := append([][]TypeParameter{params}, outer...)
	out := make([]TypeParameter, len(params))
	for i, tp := range params {
		out[i] = TypeParameter{Name: tp.Name}
		for _, b := range tp.Bounds {
			out[i].Bounds = append(out[i].Bounds, bindVariables(b, scopes...))
		}
	}
	return out
}

func typeFromSignature(sig, descriptor string, scopes ...[]TypeParameter) TypeRef {
	if sig != "" {
		if t, err := ParseFieldSignature(sig); err == nil {
			return bindVariables(t, scopes...)
		}
	}
	t, err := ParseFieldSignature(descriptor)
	if err != nil {
		log.Debugf("descriptor %q: %v", descriptor, err)
		return Named(ObjectName)
	}
	return t
}

func fieldFromMember(m *classfile.Member, cp classfile.ConstantPool, classParams []TypeParameter) (Field, error) {
	sig, _ := m.Attributes.Signature(cp)
	f := Field{
		Name:           m.Name,
		Descriptor:     m.Descriptor,
		Type:           typeFromSignature(sig, m.Descriptor, classParams),
		Visibility:     visibilityFromAccessFlags(m.AccessFlags),
		IsStatic:       m.AccessFlags.IsStatic(),
		IsFinal:        m.AccessFlags.IsFinal(),
		IsVolatile:     m.AccessFlags.IsVolatile(),
		IsTransient:    m.AccessFlags.IsTransient(),
		IsSynthetic:    m.IsSynthetic(),
		IsEnumConstant: m.AccessFlags.IsEnum(),
		IsDeprecated:   m.Attributes.IsDeprecated(),
	}
	if idx, ok := m.Attributes.ConstantValue(); ok {
		f.Constant, _ = cp.Constant(idx)
	}
	deprecated, err := hasAnnotation(m.Attributes, cp, "Ljava/lang/Deprecated;")
	if err != nil {
		return f, errors.Wrapf(err, "field %s", m.Name)
	}
	f.IsDeprecated = f.IsDeprecated || deprecated
	return f, nil
}

func methodFromMember(m *classfile.Member, cp classfile.ConstantPool, class *ClassDescriptor) (Method, error) {
	method := Method{
		Name:         m.Name,
		Descriptor:   m.Descriptor,
		Visibility:   visibilityFromAccessFlags(m.AccessFlags),
		IsStatic:     m.AccessFlags.IsStatic(),
		IsFinal:      m.AccessFlags.IsFinal(),
		IsAbstract:   m.AccessFlags.IsAbstract(),
		IsSynthetic:  m.IsSynthetic(),
		IsBridge:     m.AccessFlags.IsBridge(),
		IsVarargs:    m.AccessFlags.IsVarargs(),
		IsNative:     m.AccessFlags.IsNative(),
		IsDeprecated: m.Attributes.IsDeprecated(),
	}

	descParams := classfile.ParameterDescriptors(m.Descriptor)
	// Implicit leading parameters the descriptor carries but source
	// does not: the enclosing instance and the enum name/ordinal pair.
	implicit := 0
	if method.IsConstructor() {
		switch {
		case class.IsEnum():
			implicit = 2
		case class.DeclaringClass != "" && !class.IsStatic && len(descParams) > 0 &&
			descParams[0] == "L"+classfile.SourceToInternalName(class.DeclaringClass)+";":
			implicit = 1
		}
	}
	if implicit > len(descParams) {
		implicit = len(descParams)
	}

	names, err := parameterNames(m, cp, descParams)
	if err != nil {
		return method, errors.Wrapf(err, "method %s", m.Name)
	}

	var sig *MethodSignature
	if s, ok := m.Attributes.Signature(cp); ok {
		if sig, err = ParseMethodSignature(s); err != nil {
			log.Debugf("%s.%s: %v, using erased types", class.Name, m.Name, err)
			sig = nil
		}
	}

	var paramTypes []TypeRef
	if sig != nil {
		method.TypeParameters = bindTypeParameters(sig.TypeParameters, class.TypeParameters)
		scopes := [][]TypeParameter{method.TypeParameters, class.TypeParameters}
		for _, p := range sig.Parameters {
			paramTypes = append(paramTypes, bindVariables(p, scopes...))
		}
		method.ReturnType = bindVariables(sig.ReturnType, scopes...)
		for _, t := range sig.Throws {
			method.Throws = append(method.Throws, bindVariables(t, scopes...))
		}
		// Signatures usually omit implicit parameters; when they do
		// not, drop them here as well.
		if len(paramTypes) == len(descParams) {
			paramTypes = paramTypes[implicit:]
		}
	} else {
		for _, d := range descParams[implicit:] {
			paramTypes = append(paramTypes, typeFromSignature("", d))
		}
		ms, err := ParseMethodSignature(m.Descriptor)
		if err != nil {
			return method, errors.Wrapf(err, "method %s", m.Name)
		}
		method.ReturnType = ms.ReturnType
	}

	if len(method.Throws) == 0 {
		exc, err := m.Attributes.Exceptions(cp)
		if err != nil {
			return method, errors.Wrapf(err, "method %s", m.Name)
		}
		for _, e := range exc {
			method.Throws = append(method.Throws, TypeFromInternalName(e))
		}
	}

	if len(names) == len(descParams) {
		names = names[implicit:]
	}
	for i, t := range paramTypes {
		p := Parameter{Type: t}
		if len(names) == len(paramTypes) {
			p.Name = names[i]
		}
		method.Parameters = append(method.Parameters, p)
	}

	if def, err := m.Attributes.AnnotationDefault(cp); err != nil {
		return method, errors.Wrapf(err, "method %s", m.Name)
	} else if def != nil {
		v := annotationValue(*def)
		method.Default = &v
	}

	deprecated, err := hasAnnotation(m.Attributes, cp, "Ljava/lang/Deprecated;")
	if err != nil {
		return method, errors.Wrapf(err, "method %s", m.Name)
	}
	method.IsDeprecated = method.IsDeprecated || deprecated
	return method, nil
}

// parameterNames prefers MethodParameters and falls back to the local
// variable table. It returns one name per descriptor parameter, or nil.
func parameterNames(m *classfile.Member, cp classfile.ConstantPool, descParams []string) ([]string, error) {
	params, err := m.Attributes.MethodParameters(cp)
	if err != nil {
		return nil, err
	}
	if len(params) == len(descParams) && len(params) > 0 {
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.Name
		}
		if validNames(names) {
			return names, nil
		}
	}

	code, err := m.Attributes.Code(cp)
	if err != nil || code == nil {
		return nil, err
	}
	vars, err := code.LocalVariables(cp)
	if err != nil || len(vars) == 0 {
		return nil, err
	}

	bySlot := make(map[uint16]string, len(vars))
	for _, v := range vars {
		if v.StartPC == 0 {
			bySlot[v.Slot] = v.Name
		}
	}
	slot := uint16(1)
	if m.AccessFlags.IsStatic() {
		slot = 0
	}
	names := make([]string, len(descParams))
	for i, d := range descParams {
		names[i] = bySlot[slot]
		slot++
		if d == "J" || d == "D" {
			slot++
		}
	}
	if !validNames(names) {
		return nil, nil
	}
	return names, nil
}

func validNames(names []string) bool {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] || strings.ContainsAny(n, "$<>") {
			return false
		}
		seen[n] = true
	}
	return true
}

func hasAnnotation(attrs classfile.Attributes, cp classfile.ConstantPool, typeDesc string) (bool, error) {
	anns, err := attrs.Annotations(cp)
	if err != nil {
		return false, err
	}
	for _, a := range anns {
		if a.Type == typeDesc {
			return true, nil
		}
	}
	return false, nil
}

func annotationValue(v classfile.ElementValue) AnnotationValue {
	out := AnnotationValue{Kind: v.Tag, Const: v.Const, EnumConst: v.EnumConst}
	if v.EnumType != "" {
		out.EnumType = typeFromSignature("", v.EnumType)
	}
	if v.Class != "" {
		out.Class = typeFromSignature("", v.Class)
	}
	for _, e := range v.Values {
		out.Values = append(out.Values, annotationValue(e))
	}
	return out
}

const (
	opNew  = 0xbb
	opDup  = 0x59
	opLdc  = 0x12
	opLdcW = 0x13
)

// enumConstantBodies maps enum constant names to the class instantiated
// for them in the static initializer. It matches the sequence javac
// emits for each constant, "new C; dup; ldc name", without decoding
// the rest of the method.
func enumConstantBodies(clinit *classfile.Member, cp classfile.ConstantPool, enum string) map[string]string {
	bodies := map[string]string{}
	code, err := clinit.Attributes.Code(cp)
	if err != nil || code == nil {
		return bodies
	}
	bc := code.Bytecode
	for i := 0; i+5 < len(bc); i++ {
		if bc[i] != opNew || bc[i+3] != opDup {
			continue
		}
		class := cp.GetClassName(binary.BigEndian.Uint16(bc[i+1:]))
		if class == "" || class == enum || !strings.HasPrefix(class, enum+"$") {
			continue
		}
		var idx uint16
		switch bc[i+4] {
		case opLdc:
			idx = uint16(bc[i+5])
		case opLdcW:
			if i+6 >= len(bc) {
				continue
			}
			idx = binary.BigEndian.Uint16(bc[i+5:])
		default:
			continue
		}
		if name, ok := cp.GetString(idx); ok {
			bodies[name] = classfile.InternalToSourceName(class)
		}
	}
	return bodies
}

func visibilityFromAccessFlags(flags classfile.AccessFlags) Visibility {
	switch {
	case flags.IsPublic():
		return VisibilityPublic
	case flags.IsProtected():
		return VisibilityProtected
	case flags.IsPrivate():
		return VisibilityPrivate
	}
	return VisibilityPackage
}

func classKindFromClassFile(cf *classfile.ClassFile) ClassKind {
	switch {
	case cf.IsAnnotation():
		return ClassKindAnnotation
	case cf.IsEnum():
		return ClassKindEnum
	case cf.IsInterface():
		return ClassKindInterface
	case cf.IsRecord():
		return ClassKindRecord
	}
	return ClassKindClass
}
