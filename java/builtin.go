package java

// Core JDK classes needed to resolve superclasses and enum defaults
// when no runtime library is on the classpath.

func publicCtor(params ...Parameter) Method {
	return Method{Name: "<init>", Visibility: VisibilityPublic, Parameters: params, ReturnType: Named("void")}
}

func protectedCtor(params ...Parameter) Method {
	m := publicCtor(params...)
	m.Visibility = VisibilityProtected
	return m
}

func builtinClass(name string, kind ClassKind, super string, ctors ...Method) *ClassDescriptor {
	pkg, simple := SplitName(name)
	d := &ClassDescriptor{
		Name:         name,
		Package:      pkg,
		SimpleName:   simple,
		Kind:         kind,
		Visibility:   VisibilityPublic,
		Constructors: ctors,
		Reference:    true,
	}
	if super != "" {
		d.SuperClass = Named(super)
	}
	return d
}

func builtinEnum(name string, constants ...string) *ClassDescriptor {
	d := builtinClass(name, ClassKindEnum, EnumName)
	d.IsFinal = true
	for _, c := range constants {
		d.EnumConstants = append(d.EnumConstants, EnumConstant{Name: c})
		d.Fields = append(d.Fields, Field{
			Name: c, Type: Named(name), Visibility: VisibilityPublic,
			IsStatic: true, IsFinal: true, IsEnumConstant: true,
		})
	}
	return d
}

func builtinClasses() []*ClassDescriptor {
	message := Parameter{Name: "message", Type: Named(StringName)}
	throwable := func(name, super string) *ClassDescriptor {
		return builtinClass(name, ClassKindClass, super, publicCtor(), publicCtor(message))
	}

	enum := builtinClass(EnumName, ClassKindClass, ObjectName, protectedCtor(
		Parameter{Name: "name", Type: Named(StringName)},
		Parameter{Name: "ordinal", Type: Named("int")},
	))
	enum.IsAbstract = true
	enum.TypeParameters = []TypeParameter{{Name: "E", Bounds: []TypeRef{Named(EnumName, &TypeVariable{Name: "E"})}}}

	record := builtinClass(RecordName, ClassKindClass, ObjectName, protectedCtor())
	record.IsAbstract = true

	return []*ClassDescriptor{
		builtinClass(ObjectName, ClassKindClass, "", publicCtor()),
		enum,
		record,
		builtinClass(AnnotationName, ClassKindInterface, ObjectName),
		throwable("java.lang.Throwable", ObjectName),
		throwable("java.lang.Exception", "java.lang.Throwable"),
		throwable("java.lang.RuntimeException", "java.lang.Exception"),
		throwable("java.lang.Error", "java.lang.Throwable"),
		throwable("java.lang.IllegalArgumentException", "java.lang.RuntimeException"),
		throwable("java.lang.IllegalStateException", "java.lang.RuntimeException"),
		throwable("java.lang.UnsupportedOperationException", "java.lang.RuntimeException"),
		throwable("java.io.IOException", "java.lang.Exception"),
		builtinEnum("java.lang.annotation.RetentionPolicy", "SOURCE", "CLASS", "RUNTIME"),
		builtinEnum("java.lang.annotation.ElementType",
			"TYPE", "FIELD", "METHOD", "PARAMETER", "CONSTRUCTOR", "LOCAL_VARIABLE",
			"ANNOTATION_TYPE", "PACKAGE", "TYPE_PARAMETER", "TYPE_USE"),
		builtinEnum("java.util.concurrent.TimeUnit",
			"NANOSECONDS", "MICROSECONDS", "MILLISECONDS", "SECONDS", "MINUTES", "HOURS", "DAYS"),
	}
}

// AddBuiltins registers the core classes that are not already present.
func (c *Catalog) AddBuiltins() {
	for _, d := range builtinClasses() {
		if _, ok := c.classes[d.Name]; !ok {
			_ = c.Add(d)
		}
	}
}
