package stub

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dmssargent/StubJars/format"
	"github.com/dmssargent/StubJars/java"
)

// ConstructorSynthesizer builds constructor bodies that forward to a
// superclass constructor with placeholder arguments.
type ConstructorSynthesizer struct {
	catalog *java.Catalog
	policy  *MemberPolicy
}

func NewConstructorSynthesizer(catalog *java.Catalog, policy *MemberPolicy) *ConstructorSynthesizer {
	return &ConstructorSynthesizer{catalog: catalog, policy: policy}
}

// SuperCall returns the constructor body for class: empty when the
// superclass can be constructed without arguments, otherwise a block
// holding one super(...) statement.
func (s *ConstructorSynthesizer) SuperCall(class *java.ClassDescriptor) (format.Expression, error) {
	superName := class.SuperClassName()
	if superName == "" || superName == java.ObjectName {
		return format.Block(), nil
	}
	super, err := s.catalog.Lookup(superName)
	if err != nil {
		return format.Empty, errors.Wrapf(err, "superclass of %s", class.Name)
	}
	if hasNoArgConstructor(super, class) {
		return format.Block(), nil
	}

	var target *java.Method
	ctors := s.policy.Constructors(super)
	for i := range ctors {
		if accessible(&ctors[i], super, class) {
			target = &ctors[i]
			break
		}
	}
	if target == nil {
		return format.Empty, errors.Wrapf(ErrNoInferableConstructor, "%s extends %s", class.Name, superName)
	}

	types := NewTypeResolver(s.catalog, class)
	values := NewDefaultValues(types)
	vars := func(v *java.TypeVariable) (java.TypeRef, bool) {
		return s.bindVariable(v, class), true
	}

	var args []string
	for _, p := range target.Parameters {
		resolved := substitute(p.Type, vars)
		if java.IsType(resolved, java.VoidName) {
			continue
		}
		cast, err := types.render(p.Type, true, vars)
		if err != nil {
			return format.Empty, errors.Wrapf(err, "super call of %s", class.Name)
		}
		value, err := values.DefaultValue(resolved, false)
		if err != nil {
			return format.Empty, errors.Wrapf(err, "super call of %s", class.Name)
		}
		args = append(args, "("+cast+") "+value.String())
	}
	log.Debugf("%s: forwarding %d arguments to %s", class.Name, len(args), superName)

	return format.Block(format.Statement(
		format.Literal("super(" + strings.Join(args, ", ") + ")"),
	)), nil
}

// hasNoArgConstructor reports whether class can call super() on
// super implicitly.
func hasNoArgConstructor(super, class *java.ClassDescriptor) bool {
	for i := range super.Constructors {
		c := &super.Constructors[i]
		if !c.IsSynthetic && len(c.Parameters) == 0 && accessible(c, super, class) {
			return true
		}
	}
	return false
}

// accessible reports whether class may invoke constructor c of super.
func accessible(c *java.Method, super, class *java.ClassDescriptor) bool {
	switch c.Visibility {
	case java.VisibilityPublic, java.VisibilityProtected:
		return true
	case java.VisibilityPackage:
		return super.Package == class.Package
	}
	return false
}

// bindVariable maps a superclass type variable to a type usable in
// the subclass: the actual type argument when the subclass supplies
// one, otherwise the variable's erasure. Wildcard arguments are
// erased as well since they cannot appear in a cast.
func (s *ConstructorSynthesizer) bindVariable(v *java.TypeVariable, class *java.ClassDescriptor) java.TypeRef {
	arg, ok := s.TypeArgumentFor(v.Name, class)
	if !ok {
		return java.Erasure(v)
	}
	if _, wild := arg.(*java.WildcardType); wild {
		return java.Erasure(arg)
	}
	return arg
}

// TypeArgumentFor finds the type argument class passes for the named
// type parameter of its direct superclass. A parameter matches by name,
// or failing that, when its bound mentions the name.
func (s *ConstructorSynthesizer) TypeArgumentFor(name string, class *java.ClassDescriptor) (java.TypeRef, bool) {
	sup, ok := class.SuperClass.(*java.NamedType)
	if !ok || len(sup.Args) == 0 {
		return nil, false
	}
	super, ok := s.catalog.Get(sup.Name)
	if !ok {
		return nil, false
	}
	params := super.TypeParameters
	if len(params) > len(sup.Args) {
		params = params[:len(sup.Args)]
	}
	for i, tp := range params {
		if tp.Name == name {
			return sup.Args[i], true
		}
	}
	for i, tp := range params {
		for _, b := range tp.Bounds {
			if java.Mentions(b, name) {
				return sup.Args[i], true
			}
		}
	}
	return nil, false
}

// substitute replaces type variables in t using vars.
func substitute(t java.TypeRef, vars VariableResolver) java.TypeRef {
	switch t := t.(type) {
	case *java.NamedType:
		if len(t.Args) == 0 && t.Owner == nil {
			return t
		}
		out := &java.NamedType{Name: t.Name, Args: make([]java.TypeRef, len(t.Args))}
		for i, a := range t.Args {
			out.Args[i] = substitute(a, vars)
		}
		if t.Owner != nil {
			out.Owner = substitute(t.Owner, vars).(*java.NamedType)
		}
		return out
	case *java.TypeVariable:
		if sub, ok := vars(t); ok {
			return sub
		}
	case *java.ArrayType:
		return &java.ArrayType{Component: substitute(t.Component, vars)}
	case *java.WildcardType:
		if t.Bound != nil {
			return &java.WildcardType{Kind: t.Kind, Bound: substitute(t.Bound, vars)}
		}
	}
	return t
}
