package stub

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dmssargent/StubJars/format"
	"github.com/dmssargent/StubJars/java"
)

// VariableResolver substitutes a type variable. It reports false to
// keep the variable's own name.
type VariableResolver func(v *java.TypeVariable) (java.TypeRef, bool)

// TypeResolver renders type references as source text relative to the
// class being emitted.
type TypeResolver struct {
	catalog *java.Catalog
	class   *java.ClassDescriptor
}

func NewTypeResolver(catalog *java.Catalog, class *java.ClassDescriptor) *TypeResolver {
	return &TypeResolver{catalog: catalog, class: class}
}

var (
	nestedSeparator = regexp.MustCompile(`\$\d*`)
	numberedNested  = regexp.MustCompile(`\$\d`)
)

// Resolve renders t in full, type arguments included.
func (r *TypeResolver) Resolve(t java.TypeRef) (format.Expression, error) {
	return r.ResolveWith(t, false, nil)
}

// ResolveWith renders t. Simple mode drops all type arguments; vars,
// when set, substitutes type variables.
func (r *TypeResolver) ResolveWith(t java.TypeRef, simple bool, vars VariableResolver) (format.Expression, error) {
	s, err := r.render(t, simple, vars)
	if err != nil {
		return format.Empty, err
	}
	return format.Literal(s), nil
}

func (r *TypeResolver) render(t java.TypeRef, simple bool, vars VariableResolver) (string, error) {
	switch t := t.(type) {
	case *java.NamedType:
		var name string
		if t.Owner != nil && t.Owner.IsParameterized() && !simple {
			owner, err := r.render(t.Owner, false, vars)
			if err != nil {
				return "", err
			}
			name = owner + "." + strings.TrimPrefix(t.Name, t.Owner.Name+"$")
		} else {
			n, err := r.Name(t.Name)
			if err != nil {
				return "", err
			}
			name = n
		}
		if simple || len(t.Args) == 0 {
			return name, nil
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			s, err := r.render(a, false, vars)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return name + "<" + strings.Join(args, ", ") + ">", nil

	case *java.TypeVariable:
		if vars != nil {
			if sub, ok := vars(t); ok {
				return r.render(sub, simple, nil)
			}
		}
		return t.Name, nil

	case *java.ArrayType:
		s, err := r.render(t.Component, simple, vars)
		if err != nil {
			return "", err
		}
		return s + "[]", nil

	case *java.WildcardType:
		switch t.Kind {
		case java.WildcardUnbounded:
			return "?", nil
		case java.WildcardExtends:
			if t.Bound == nil || java.IsType(t.Bound, java.ObjectName) {
				return "?", nil
			}
			s, err := r.render(t.Bound, false, vars)
			return "? extends " + s, err
		case java.WildcardSuper:
			s, err := r.render(t.Bound, false, vars)
			return "? super " + s, err
		}
	}
	return "", errors.Wrapf(ErrUnsupportedType, "%T", t)
}

// Name renders a binary class name. Top-level classes of the emitting
// package and java.lang types use their short name; everything else is
// qualified with nested names joined by '.'.
func (r *TypeResolver) Name(binary string) (string, error) {
	if java.IsPrimitiveName(binary) {
		return binary, nil
	}
	pkg, rest := java.SplitName(binary)
	switch {
	case pkg == "java.lang" && !r.shadowed(rest):
		return sourceName(binary, nestedSeparator.ReplaceAllString(rest, "."))
	case r.class != nil && pkg == r.class.Package && !strings.Contains(rest, "$"):
		return rest, nil
	}
	return sourceName(binary, nestedSeparator.ReplaceAllString(binary, "."))
}

// shadowed reports whether a java.lang short name would resolve to
// something else: a class of the emitting package, or a member class
// of the emitting class or one of its enclosing classes.
func (r *TypeResolver) shadowed(rest string) bool {
	if r.class == nil || r.class.Package == "java.lang" {
		return false
	}
	top, _, _ := strings.Cut(rest, "$")
	for c := r.class; c != nil; {
		for _, nested := range c.NestedClasses {
			if nested[strings.LastIndex(nested, "$")+1:] == top {
				return true
			}
		}
		if c.DeclaringClass == "" || r.catalog == nil {
			break
		}
		c, _ = r.catalog.Get(c.DeclaringClass)
	}
	if r.catalog == nil {
		return false
	}
	_, ok := r.catalog.Get(java.JoinName(r.class.Package, top))
	return ok
}

func sourceName(binary, rendered string) (string, error) {
	if rendered == "" || strings.HasSuffix(rendered, ".") {
		return "", errors.Wrapf(ErrUnsafeName, "%s", binary)
	}
	return rendered, nil
}

// TypeParameters renders a declaration list such as
// "<T extends Number & Comparable<T>, U>", or Empty.
func (r *TypeResolver) TypeParameters(params []java.TypeParameter) (format.Expression, error) {
	if len(params) == 0 {
		return format.Empty, nil
	}
	decls := make([]string, len(params))
	for i, tp := range params {
		var bounds []string
		for _, b := range tp.Bounds {
			if java.IsType(b, java.ObjectName) {
				continue
			}
			s, err := r.render(b, false, nil)
			if err != nil {
				return format.Empty, errors.Wrapf(err, "bound of %s", tp.Name)
			}
			bounds = append(bounds, s)
		}
		decls[i] = tp.Name
		if len(bounds) > 0 {
			decls[i] += " extends " + strings.Join(bounds, " & ")
		}
	}
	return format.Literal("<" + strings.Join(decls, ", ") + ">"), nil
}

// HasSafeName reports whether a class can be named in source. Numbered
// nested classes and classes the catalog knows to be synthetic,
// anonymous or local cannot.
func (r *TypeResolver) HasSafeName(binary string) bool {
	if numberedNested.MatchString(binary) {
		return false
	}
	if r.catalog == nil {
		return true
	}
	if d, ok := r.catalog.Get(binary); ok {
		return !d.IsSynthetic && !d.IsAnonymous && !d.IsLocal
	}
	return true
}

// IsSafeType reports whether every class mentioned by t has a safe name.
func (r *TypeResolver) IsSafeType(t java.TypeRef) bool {
	switch t := t.(type) {
	case *java.NamedType:
		if !t.IsPrimitive() && !r.HasSafeName(t.Name) {
			return false
		}
		for _, a := range t.Args {
			if !r.IsSafeType(a) {
				return false
			}
		}
		return t.Owner == nil || r.IsSafeType(t.Owner)
	case *java.ArrayType:
		return r.IsSafeType(t.Component)
	case *java.WildcardType:
		return t.Bound == nil || r.IsSafeType(t.Bound)
	}
	return true
}
