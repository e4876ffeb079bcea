package java

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrClassNotFound  = errors.New("class not found")
	ErrDuplicateClass = errors.New("duplicate class")
)

// Catalog maps binary class names to descriptors. It is filled before
// generation starts and only read afterwards, so lookups need no lock.
type Catalog struct {
	classes map[string]*ClassDescriptor
	order   []string
}

func NewCatalog() *Catalog {
	return &Catalog{classes: map[string]*ClassDescriptor{}}
}

// Add registers a descriptor. A name can be registered only once.
func (c *Catalog) Add(desc *ClassDescriptor) error {
	if _, ok := c.classes[desc.Name]; ok {
		return errors.Wrapf(ErrDuplicateClass, "%s", desc.Name)
	}
	c.classes[desc.Name] = desc
	c.order = append(c.order, desc.Name)
	return nil
}

func (c *Catalog) Get(name string) (*ClassDescriptor, bool) {
	desc, ok := c.classes[name]
	return desc, ok
}

// Lookup is Get with an ErrClassNotFound error for unknown names.
func (c *Catalog) Lookup(name string) (*ClassDescriptor, error) {
	if desc, ok := c.classes[name]; ok {
		return desc, nil
	}
	return nil, errors.Wrapf(ErrClassNotFound, "%s", name)
}

func (c *Catalog) Len() int {
	return len(c.classes)
}

// Targets returns the non-reference classes in load order.
func (c *Catalog) Targets() []*ClassDescriptor {
	var out []*ClassDescriptor
	for _, name := range c.order {
		if d := c.classes[name]; !d.Reference {
			out = append(out, d)
		}
	}
	return out
}

// Ancestors returns every superclass and superinterface reachable from
// desc that the catalog knows, nearest first, without duplicates.
func (c *Catalog) Ancestors(desc *ClassDescriptor) []*ClassDescriptor {
	var out []*ClassDescriptor
	seen := map[string]bool{desc.Name: true}
	queue := []*ClassDescriptor{desc}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		supers := append([]TypeRef{cur.SuperClass}, cur.Interfaces...)
		for _, t := range supers {
			n, ok := t.(*NamedType)
			if !ok || seen[n.Name] {
				continue
			}
			seen[n.Name] = true
			if d, ok := c.classes[n.Name]; ok {
				out = append(out, d)
				queue = append(queue, d)
			}
		}
	}
	return out
}
