package stub

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/dmssargent/StubJars/format"
	"github.com/dmssargent/StubJars/java"
)

// ClassEmitter turns class descriptors into source expression trees.
// It holds no per-class state and may be shared by workers.
type ClassEmitter struct {
	catalog  *java.Catalog
	policy   *MemberPolicy
	ctors    *ConstructorSynthesizer
	renderer *format.Renderer
}

func NewClassEmitter(catalog *java.Catalog, policy *MemberPolicy) *ClassEmitter {
	return &ClassEmitter{
		catalog:  catalog,
		policy:   policy,
		ctors:    NewConstructorSynthesizer(catalog, policy),
		renderer: format.NewRenderer(),
	}
}

// Emit returns the declaration of class, including its nested classes.
func (e *ClassEmitter) Emit(class *java.ClassDescriptor) (format.Expression, error) {
	decl, err := e.scope(class).classDecl()
	if err != nil {
		return format.Empty, errors.Wrapf(err, "emit %s", class.Name)
	}
	return decl, nil
}

// EmitFile renders the complete source file for a top-level class.
func (e *ClassEmitter) EmitFile(class *java.ClassDescriptor) (string, error) {
	decl, err := e.Emit(class)
	if err != nil {
		return "", err
	}
	text, err := e.renderer.Render(decl)
	if err != nil {
		return "", errors.Wrapf(err, "render %s", class.Name)
	}
	if class.Package == "" {
		return text, nil
	}
	return "package " + class.Package + ";\n\n" + text, nil
}

type emitScope struct {
	*ClassEmitter
	class  *java.ClassDescriptor
	types  *TypeResolver
	values *DefaultValues
}

func (e *ClassEmitter) scope(class *java.ClassDescriptor) *emitScope {
	types := NewTypeResolver(e.catalog, class)
	return &emitScope{ClassEmitter: e, class: class, types: types, values: NewDefaultValues(types)}
}

var kindKeywords = map[java.ClassKind]string{
	java.ClassKindClass:      "class",
	java.ClassKindInterface:  "interface",
	java.ClassKindAnnotation: "@interface",
	java.ClassKindEnum:       "enum",
	java.ClassKindRecord:     "record",
}

func (s *emitScope) classDecl() (format.Expression, error) {
	c := s.class
	var parts []format.Expression

	if c.Kind == java.ClassKindAnnotation && c.Retention != "" {
		parts = append(parts, format.Literal(
			"@java.lang.annotation.Retention(java.lang.annotation.RetentionPolicy."+c.Retention+")"))
	}
	if c.IsDeprecated {
		parts = append(parts, s.deprecated())
	}

	mods := []string{c.Visibility.Keyword()}
	if c.Kind == java.ClassKindClass {
		if c.DeclaringClass != "" && c.IsStatic {
			mods = append(mods, "static")
		}
		if c.IsAbstract {
			mods = append(mods, "abstract")
		}
		if c.IsFinal {
			mods = append(mods, "final")
		}
	}
	parts = append(parts, format.Words(mods...), format.Literal(kindKeywords[c.Kind]))

	name, err := s.declaredName()
	if err != nil {
		return format.Empty, err
	}
	parts = append(parts, name)

	if c.Kind == java.ClassKindClass {
		switch c.SuperClassName() {
		case "", java.ObjectName, java.EnumName, java.RecordName:
		default:
			super, err := s.types.Resolve(c.SuperClass)
			if err != nil {
				return format.Empty, errors.Wrap(err, "superclass")
			}
			parts = append(parts, format.Literal("extends"), super)
		}
	}

	var ifaces []format.Expression
	for _, i := range c.Interfaces {
		if c.Kind == java.ClassKindAnnotation && java.IsType(i, java.AnnotationName) {
			continue
		}
		t, err := s.types.Resolve(i)
		if err != nil {
			return format.Empty, errors.Wrap(err, "interface")
		}
		ifaces = append(ifaces, t)
	}
	if len(ifaces) > 0 {
		keyword := "implements"
		if c.IsInterface() {
			keyword = "extends"
		}
		parts = append(parts, format.Literal(keyword), format.List(", ", ifaces...))
	}

	body, err := s.body()
	if err != nil {
		return format.Empty, err
	}
	return format.Sequence(append(parts, body)...), nil
}

// declaredName is the simple name with type parameters, and for
// records the component list.
func (s *emitScope) declaredName() (format.Expression, error) {
	c := s.class
	name := []format.Expression{format.Literal(c.SimpleName)}
	if c.Kind != java.ClassKindEnum && c.Kind != java.ClassKindAnnotation {
		tps, err := s.types.TypeParameters(c.TypeParameters)
		if err != nil {
			return format.Empty, err
		}
		name = append(name, tps)
	}
	if c.Kind == java.ClassKindRecord {
		comps, err := s.parameters(c.RecordComponents, false)
		if err != nil {
			return format.Empty, errors.Wrap(err, "record components")
		}
		name = append(name, format.Literal("("), comps, format.Literal(")"))
	}
	return format.Inline(name...), nil
}

func (s *emitScope) body() (format.Expression, error) {
	c := s.class
	var members []format.Expression

	if c.IsEnum() {
		constants, err := s.enumConstants()
		if err != nil {
			return format.Empty, err
		}
		members = append(members, constants)
	}

	for _, f := range s.policy.Fields(c, false) {
		if c.Kind == java.ClassKindRecord && !f.IsStatic {
			continue
		}
		decl, err := s.field(&f)
		if err != nil {
			return format.Empty, errors.Wrapf(err, "field %s", f.Name)
		}
		members = append(members, decl)
	}

	if c.Kind == java.ClassKindClass {
		ctors, err := s.constructors()
		if err != nil {
			return format.Empty, err
		}
		members = append(members, ctors...)
	}

	for _, m := range s.policy.Methods(c, false) {
		decl, err := s.method(&m)
		if err != nil {
			return format.Empty, errors.Wrapf(err, "method %s", m.Name)
		}
		members = append(members, decl)
	}

	for _, nested := range s.policy.NestedClasses(c) {
		decl, err := s.scope(nested).classDecl()
		if err != nil {
			return format.Empty, errors.Wrapf(err, "nested class %s", nested.Name)
		}
		members = append(members, decl)
	}

	return format.Block(members...), nil
}

// enumConstants emits the constant list. A constant with a class body
// gets that body's overridable methods and nothing else.
func (s *emitScope) enumConstants() (format.Expression, error) {
	var items []format.Expression
	for _, ec := range s.class.EnumConstants {
		if ec.Body == "" {
			items = append(items, format.Literal(ec.Name))
			continue
		}
		body, ok := s.catalog.Get(ec.Body)
		if !ok {
			log.Debugf("%s.%s: body class %s not loaded", s.class.Name, ec.Name, ec.Body)
			items = append(items, format.Literal(ec.Name))
			continue
		}
		inner := s.scope(body)
		var methods []format.Expression
		for _, m := range s.policy.Methods(body, true) {
			decl, err := inner.method(&m)
			if err != nil {
				return format.Empty, errors.Wrapf(err, "enum constant %s", ec.Name)
			}
			methods = append(methods, decl)
		}
		items = append(items, format.Sequence(format.Literal(ec.Name), format.Block(methods...)))
	}
	return format.Statement(format.List(",", items...)), nil
}

func (s *emitScope) field(f *java.Field) (format.Expression, error) {
	iface := s.class.IsInterface()
	var parts []format.Expression
	if f.IsDeprecated {
		parts = append(parts, s.deprecated())
	}
	if !iface {
		parts = append(parts, format.Words(
			f.Visibility.Keyword(),
			flag(f.IsStatic, "static"),
			flag(f.IsFinal, "final"),
			flag(f.IsTransient, "transient"),
			flag(f.IsVolatile, "volatile"),
		))
	}
	typ, err := s.types.Resolve(f.Type)
	if err != nil {
		return format.Empty, err
	}
	parts = append(parts, typ, format.Literal(f.Name))

	if f.IsFinal || iface {
		value, err := s.fieldValue(f)
		if err != nil {
			return format.Empty, err
		}
		parts = append(parts, format.Literal("="), value)
	}
	return format.Statement(parts...), nil
}

func (s *emitScope) fieldValue(f *java.Field) (format.Expression, error) {
	if f.Constant != nil {
		lit, err := ConstantLiteral(f.Constant, f.Type)
		if err == nil {
			return format.Literal(lit), nil
		}
		log.Debugf("%s.%s: %v", s.class.Name, f.Name, err)
	}
	return s.values.DefaultValue(f.Type, false)
}

func (s *emitScope) constructors() ([]format.Expression, error) {
	ctors := s.policy.Constructors(s.class)
	if len(ctors) == 0 {
		return nil, nil
	}
	body, err := s.ctors.SuperCall(s.class)
	if err != nil {
		return nil, err
	}

	var out []format.Expression
	for i := range ctors {
		c := &ctors[i]
		private := c.Visibility == java.VisibilityPrivate
		var parts []format.Expression
		if c.IsDeprecated {
			parts = append(parts, s.deprecated())
		}
		parts = append(parts, format.Words(c.Visibility.Keyword()))

		tps, err := s.types.TypeParameters(c.TypeParameters)
		if err != nil {
			return nil, errors.Wrap(err, "constructor")
		}
		var params format.Expression
		if !private {
			parts = append(parts, tps)
			if params, err = s.parameters(c.Parameters, c.IsVarargs); err != nil {
				return nil, errors.Wrap(err, "constructor")
			}
		}
		parts = append(parts, format.Inline(format.Literal(s.class.SimpleName+"("), params, format.Literal(")")))

		throws, err := s.throws(c.Throws)
		if err != nil {
			return nil, errors.Wrap(err, "constructor")
		}
		out = append(out, format.Sequence(append(parts, throws, body)...))
	}
	return out, nil
}

func (s *emitScope) method(m *java.Method) (format.Expression, error) {
	iface := s.class.IsInterface()
	var parts []format.Expression
	if m.IsDeprecated {
		parts = append(parts, s.deprecated())
	}
	switch {
	case iface && m.IsStatic:
		parts = append(parts, format.Literal("static"))
	case iface && !m.IsAbstract:
		parts = append(parts, format.Literal("default"))
	case !iface:
		parts = append(parts, format.Words(
			m.Visibility.Keyword(),
			flag(m.IsStatic, "static"),
			flag(m.IsFinal, "final"),
			flag(m.IsAbstract, "abstract"),
		))
	}

	tps, err := s.types.TypeParameters(m.TypeParameters)
	if err != nil {
		return format.Empty, err
	}
	ret, err := s.types.Resolve(m.ReturnType)
	if err != nil {
		return format.Empty, err
	}
	params, err := s.parameters(m.Parameters, m.IsVarargs)
	if err != nil {
		return format.Empty, err
	}
	throws, err := s.throws(m.Throws)
	if err != nil {
		return format.Empty, err
	}
	parts = append(parts, tps, ret,
		format.Inline(format.Literal(m.Name+"("), params, format.Literal(")")),
		throws)

	switch {
	case s.class.Kind == java.ClassKindAnnotation && m.HasDefault():
		lit, err := s.values.ElementValueLiteral(m.Default)
		if errors.Is(err, ErrUnsupportedType) {
			log.Debugf("%s.%s: default value dropped: %v", s.class.Name, m.Name, err)
			return format.Statement(parts...), nil
		} else if err != nil {
			return format.Empty, err
		}
		return format.Statement(append(parts, format.Literal("default"), format.Literal(lit))...), nil
	case m.IsAbstract:
		return format.Statement(parts...), nil
	case java.IsType(m.ReturnType, "void"):
		return format.Sequence(append(parts, format.Block())...), nil
	}

	value, err := s.values.DefaultValue(m.ReturnType, false)
	if err != nil {
		return format.Empty, err
	}
	ret.Text = "(" + ret.Text + ") " + value.String()
	return format.Sequence(append(parts, format.Block(
		format.Statement(format.Literal("return"), ret),
	))...), nil
}

// parameters renders a comma-separated declaration list. A trailing
// array parameter of a varargs member is written as T... .
func (s *emitScope) parameters(params []java.Parameter, varargs bool) (format.Expression, error) {
	items := make([]format.Expression, len(params))
	for i, p := range params {
		t := p.Type
		suffix := ""
		if arr, ok := t.(*java.ArrayType); ok && varargs && i == len(params)-1 {
			t, suffix = arr.Component, "..."
		}
		typ, err := s.types.Resolve(t)
		if err != nil {
			return format.Empty, errors.Wrapf(err, "parameter %d", i)
		}
		name := p.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		items[i] = format.Literal(typ.Text + suffix + " " + name)
	}
	return format.List(", ", items...), nil
}

func (s *emitScope) throws(types []java.TypeRef) (format.Expression, error) {
	if len(types) == 0 {
		return format.Empty, nil
	}
	items := make([]format.Expression, len(types))
	for i, t := range types {
		typ, err := s.types.Resolve(t)
		if err != nil {
			return format.Empty, errors.Wrap(err, "throws")
		}
		items[i] = typ
	}
	return format.Inline(format.Literal("throws "), format.List(", ", items...)), nil
}

func (s *emitScope) deprecated() format.Expression {
	name, err := s.types.Name("java.lang.Deprecated")
	if err != nil {
		name = "java.lang.Deprecated"
	}
	return format.Literal("@" + name)
}

func flag(set bool, keyword string) string {
	if set {
		return keyword
	}
	return ""
}
