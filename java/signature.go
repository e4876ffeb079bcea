package java

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrMalformedSignature = errors.New("malformed signature")

type ClassSignature struct {
	TypeParameters []TypeParameter
	SuperClass     TypeRef
	Interfaces     []TypeRef
}

type MethodSignature struct {
	TypeParameters []TypeParameter
	Parameters     []TypeRef
	ReturnType     TypeRef
	Throws         []TypeRef
}

// sigParser reads the generic signature grammar of JVMS 4.7.9.1. Plain
// field and method descriptors are a subset of it.
type sigParser struct {
	s   string
	pos int
	err error
}

func (p *sigParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = errors.Wrapf(ErrMalformedSignature, "%q at %d: "+format, append([]any{p.s, p.pos}, args...)...)
	}
}

func (p *sigParser) peek() byte {
	if p.err != nil || p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) expect(c byte) {
	if p.peek() != c {
		p.fail("expected %q", c)
		return
	}
	p.pos++
}

func (p *sigParser) identifier() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '.', ';', '[', '/', '<', '>', ':':
			return p.s[start:p.pos]
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func ParseClassSignature(sig string) (*ClassSignature, error) {
	p := &sigParser{s: sig}
	cs := &ClassSignature{TypeParameters: p.typeParameters()}
	cs.SuperClass = p.classType()
	for p.err == nil && p.pos < len(p.s) {
		cs.Interfaces = append(cs.Interfaces, p.classType())
	}
	if p.err != nil {
		return nil, p.err
	}
	return cs, nil
}

func ParseMethodSignature(sig string) (*MethodSignature, error) {
	p := &sigParser{s: sig}
	ms := &MethodSignature{TypeParameters: p.typeParameters()}
	p.expect('(')
	for p.err == nil && p.peek() != ')' {
		if p.pos >= len(p.s) {
			p.fail("unterminated parameter list")
			break
		}
		ms.Parameters = append(ms.Parameters, p.javaType())
	}
	p.expect(')')
	ms.ReturnType = p.javaType()
	for p.err == nil && p.peek() == '^' {
		p.pos++
		ms.Throws = append(ms.Throws, p.referenceType())
	}
	if p.err == nil && p.pos != len(p.s) {
		p.fail("trailing input")
	}
	if p.err != nil {
		return nil, p.err
	}
	return ms, nil
}

// ParseFieldSignature parses a field signature or a field descriptor.
func ParseFieldSignature(sig string) (TypeRef, error) {
	p := &sigParser{s: sig}
	t := p.javaType()
	if p.err == nil && p.pos != len(p.s) {
		p.fail("trailing input")
	}
	if p.err != nil {
		return nil, p.err
	}
	return t, nil
}

// TypeFromInternalName converts "java/util/Map$Entry" to a NamedType.
func TypeFromInternalName(name string) *NamedType {
	return Named(strings.ReplaceAll(name, "/", "."))
}

func (p *sigParser) typeParameters() []TypeParameter {
	if p.peek() != '<' {
		return nil
	}
	p.pos++
	var params []TypeParameter
	for p.err == nil && p.peek() != '>' {
		tp := TypeParameter{Name: p.identifier()}
		if tp.Name == "" {
			p.fail("empty type parameter name")
			break
		}
		p.expect(':')
		// The class bound may be empty when only interface bounds exist.
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		for p.err == nil && p.peek() == ':' {
			p.pos++
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		params = append(params, tp)
	}
	p.expect('>')
	return params
}

func (p *sigParser) javaType() TypeRef {
	c := p.peek()
	if name, ok := baseTypes[c]; ok {
		p.pos++
		return Named(name)
	}
	return p.referenceType()
}

var baseTypes = map[byte]string{
	'B': "byte", 'C': "char", 'D': "double", 'F': "float",
	'I': "int", 'J': "long", 'S': "short", 'Z': "boolean", 'V': "void",
}

func (p *sigParser) referenceType() TypeRef {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		p.pos++
		name := p.identifier()
		p.expect(';')
		return &TypeVariable{Name: name}
	case '[':
		p.pos++
		return &ArrayType{Component: p.javaType()}
	}
	p.fail("expected reference type")
	return nil
}

func (p *sigParser) classType() TypeRef {
	p.expect('L')
	var sb strings.Builder
	for p.err == nil {
		sb.WriteString(p.identifier())
		if p.peek() != '/' {
			break
		}
		p.pos++
		sb.WriteByte('.')
	}

	t := &NamedType{Name: sb.String(), Args: p.typeArguments()}
	for p.err == nil && p.peek() == '.' {
		p.pos++
		inner := &NamedType{Name: t.Name + "$" + p.identifier()}
		inner.Args = p.typeArguments()
		if t.IsParameterized() {
			inner.Owner = t
		}
		t = inner
	}
	p.expect(';')
	if p.err != nil {
		return nil
	}
	return t
}

func (p *sigParser) typeArguments() []TypeRef {
	if p.peek() != '<' {
		return nil
	}
	p.pos++
	var args []TypeRef
	for p.err == nil && p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.pos++
			args = append(args, &WildcardType{Kind: WildcardUnbounded})
		case '+':
			p.pos++
			args = append(args, &WildcardType{Kind: WildcardExtends, Bound: p.referenceType()})
		case '-':
			p.pos++
			args = append(args, &WildcardType{Kind: WildcardSuper, Bound: p.referenceType()})
		case 0:
			p.fail("unterminated type arguments")
		default:
			args = append(args, p.referenceType())
		}
	}
	p.expect('>')
	return args
}

// bindVariables returns t with every type variable carrying the first
// bound found in scopes, searched innermost first. Bounds themselves
// are left unbound so self-referential bounds do not form cycles.
func bindVariables(t TypeRef, scopes ...[]TypeParameter) TypeRef {
	switch t := t.(type) {
	case *NamedType:
		if !t.IsParameterized() {
			return t
		}
		out := &NamedType{Name: t.Name}
		for _, a := range t.Args {
			out.Args = append(out.Args, bindVariables(a, scopes...))
		}
		if t.Owner != nil {
			out.Owner = bindVariables(t.Owner, scopes...).(*NamedType)
		}
		return out
	case *TypeVariable:
		for _, scope := range scopes {
			for _, tp := range scope {
				if tp.Name != t.Name {
					continue
				}
				v := &TypeVariable{Name: t.Name}
				if len(tp.Bounds) > 0 && !IsType(tp.Bounds[0], ObjectName) {
					v.Bound = tp.Bounds[0]
				}
				return v
			}
		}
		return t
	case *ArrayType:
		return &ArrayType{Component: bindVariables(t.Component, scopes...)}
	case *WildcardType:
		if t.Bound == nil {
			return t
		}
		return &WildcardType{Kind: t.Kind, Bound: bindVariables(t.Bound, scopes...)}
	}
	return t
}
