package stub

import (
	"strings"
	"sync"

	"github.com/dmssargent/StubJars/java"
)

// MemberPolicy decides which members of a class appear in its stub.
// It is shared by all workers; the inherited-signature cache is
// guarded by a lock.
type MemberPolicy struct {
	catalog *java.Catalog
	types   *TypeResolver

	mu        sync.RWMutex
	inherited map[string]map[string]bool
}

func NewMemberPolicy(catalog *java.Catalog) *MemberPolicy {
	return &MemberPolicy{
		catalog:   catalog,
		types:     NewTypeResolver(catalog, nil),
		inherited: map[string]map[string]bool{},
	}
}

// Fields returns the fields to declare, in declaration order.
func (p *MemberPolicy) Fields(class *java.ClassDescriptor, enumConstant bool) []java.Field {
	if enumConstant {
		return nil
	}
	shadowed := map[string]bool{}
	if super, ok := p.catalog.Get(class.SuperClassName()); ok {
		for _, f := range super.Fields {
			if f.Visibility != java.VisibilityPrivate {
				shadowed[fieldKey(&f)] = true
			}
		}
	}

	var out []java.Field
	for _, f := range class.Fields {
		switch {
		case f.Visibility == java.VisibilityPrivate, f.IsSynthetic, f.IsEnumConstant:
			continue
		case shadowed[fieldKey(&f)]:
			log.Debugf("%s.%s: declared by superclass", class.Name, f.Name)
			continue
		case !p.types.IsSafeType(f.Type):
			log.Debugf("%s.%s: type %s has no source name", class.Name, f.Name, f.Type)
			continue
		}
		out = append(out, f)
	}
	return dedupe(out, func(f *java.Field) string { return f.Name })
}

func fieldKey(f *java.Field) string {
	return f.Type.String() + " " + f.Name
}

// Methods returns the methods to declare, in declaration order. In
// enum-constant mode only overridable instance methods are kept.
func (p *MemberPolicy) Methods(class *java.ClassDescriptor, enumConstant bool) []java.Method {
	var out []java.Method
	for _, m := range class.Methods {
		switch {
		case m.Visibility == java.VisibilityPrivate, m.IsSynthetic, m.IsBridge:
			continue
		case m.Name == "<clinit>" || m.IsConstructor():
			continue
		case enumConstant && (m.IsStatic || m.IsFinal):
			continue
		case class.IsEnum() && isEnumFactory(&m):
			continue
		case !p.safeSignature(&m):
			log.Debugf("%s.%s: signature names a class with no source name", class.Name, m.Name)
			continue
		case m.IsStatic && p.inheritedSignatures(class)[m.ErasedSignature()]:
			log.Debugf("%s.%s: static method declared by an ancestor", class.Name, m.Name)
			continue
		}
		out = append(out, m)
	}
	return dedupe(out, methodKey)
}

// isEnumFactory matches the values() and valueOf(String) methods the
// compiler adds to every enum.
func isEnumFactory(m *java.Method) bool {
	if !m.IsStatic {
		return false
	}
	switch m.Name {
	case "values":
		return len(m.Parameters) == 0
	case "valueOf":
		return len(m.Parameters) == 1 && java.IsType(m.Parameters[0].Type, java.StringName)
	}
	return false
}

func methodKey(m *java.Method) string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteString("(")
	if m.Visibility != java.VisibilityPrivate || !m.IsConstructor() {
		for i, param := range m.Parameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(java.Erasure(param.Type).String())
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func (p *MemberPolicy) safeSignature(m *java.Method) bool {
	if m.ReturnType != nil && !p.types.IsSafeType(m.ReturnType) {
		return false
	}
	for _, param := range m.Parameters {
		if !p.types.IsSafeType(param.Type) {
			return false
		}
	}
	for _, t := range m.Throws {
		if !p.types.IsSafeType(t) {
			return false
		}
	}
	return true
}

// inheritedSignatures returns the erased signatures of every method
// declared by an ancestor of class.
func (p *MemberPolicy) inheritedSignatures(class *java.ClassDescriptor) map[string]bool {
	p.mu.RLock()
	sigs, ok := p.inherited[class.Name]
	p.mu.RUnlock()
	if ok {
		return sigs
	}

	sigs = map[string]bool{}
	for _, a := range p.catalog.Ancestors(class) {
		for i := range a.Methods {
			sigs[a.Methods[i].ErasedSignature()] = true
		}
	}

	p.mu.Lock()
	p.inherited[class.Name] = sigs
	p.mu.Unlock()
	return sigs
}

// Constructors returns the constructors to declare. When a class has
// several constructors and some could be rewritten to take no
// arguments (private or zero-parameter ones), those collapse: every
// other constructor stays, plus one accessible zero-parameter
// constructor, plus the first private one when nothing else is left.
func (p *MemberPolicy) Constructors(class *java.ClassDescriptor) []java.Method {
	var ctors []java.Method
	for _, c := range class.Constructors {
		if c.IsSynthetic || !p.safeSignature(&c) {
			continue
		}
		ctors = append(ctors, c)
	}

	rewritable := func(c *java.Method) bool {
		return c.Visibility == java.VisibilityPrivate || len(c.Parameters) == 0
	}
	collapse := false
	if len(ctors) > 1 {
		for i := range ctors {
			if rewritable(&ctors[i]) {
				collapse = true
				break
			}
		}
	}
	if !collapse {
		return dedupe(ctors, methodKey)
	}

	var out []java.Method
	var firstPrivate *java.Method
	keptZero := false
	for i := range ctors {
		c := &ctors[i]
		switch {
		case !rewritable(c):
			out = append(out, *c)
		case c.Visibility == java.VisibilityPrivate:
			if firstPrivate == nil {
				firstPrivate = c
			}
		case !keptZero:
			out = append(out, *c)
			keptZero = true
		}
	}
	if len(out) == 0 && firstPrivate != nil {
		out = append(out, *firstPrivate)
	}
	return dedupe(out, methodKey)
}

// NestedClasses returns the member classes to emit inside class.
func (p *MemberPolicy) NestedClasses(class *java.ClassDescriptor) []*java.ClassDescriptor {
	var out []*java.ClassDescriptor
	for _, name := range class.NestedClasses {
		d, ok := p.catalog.Get(name)
		if !ok {
			log.Debugf("%s: nested class %s not loaded", class.Name, name)
			continue
		}
		if d.Visibility == java.VisibilityPrivate || d.IsSynthetic || d.IsAnonymous || !p.types.HasSafeName(d.Name) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dedupe drops members whose key repeats. The last one wins and takes
// the position of the first.
func dedupe[T any](items []T, key func(*T) string) []T {
	index := make(map[string]int, len(items))
	out := items[:0:0]
	for i := range items {
		k := key(&items[i])
		if j, ok := index[k]; ok {
			out[j] = items[i]
			continue
		}
		index[k] = len(out)
		out = append(out, items[i])
	}
	return out
}
