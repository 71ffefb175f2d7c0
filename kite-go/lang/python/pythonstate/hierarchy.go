package pythonstate

import (
	"sort"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
)

// maxHierarchyDepth bounds the depth of inheritance walks
const maxHierarchyDepth = 64

// ClassHierarchy records the classes defined in the analyzed program together with their
// direct superclass and subclass edges. Transitive relations are computed on demand.
type ClassHierarchy struct {
	classes map[string]pythontype.Class
	supers  map[string][]string
	subs    map[string][]string
	order   []string

	truncated map[string]bool
}

// NewClassHierarchy returns an empty hierarchy
func NewClassHierarchy() *ClassHierarchy {
	return &ClassHierarchy{
		classes: make(map[string]pythontype.Class),
		supers:  make(map[string][]string),
		subs:    make(map[string][]string),

		truncated: make(map[string]bool),
	}
}

// Register inserts a class, merging it with any class already registered under the same name,
// and returns the registered class.
func (h *ClassHierarchy) Register(c pythontype.Class) pythontype.Class {
	if prev, ok := h.classes[c.Name]; ok {
		c = pythontype.MergeAll(pythontype.NewValue(prev), pythontype.NewValue(c)).Classes()[0]
	} else {
		h.order = append(h.order, c.Name)
	}
	h.classes[c.Name] = c
	for _, base := range c.Bases {
		if !contains(h.supers[c.Name], base) {
			h.supers[c.Name] = append(h.supers[c.Name], base)
			h.subs[base] = append(h.subs[base], c.Name)
		}
	}
	return c
}

// Update replaces the stored class object, e.g. after a method was added
func (h *ClassHierarchy) Update(c pythontype.Class) {
	if _, ok := h.classes[c.Name]; !ok {
		h.Register(c)
		return
	}
	h.classes[c.Name] = c
}

// Class returns the registered class with the given name
func (h *ClassHierarchy) Class(name string) (pythontype.Class, bool) {
	c, ok := h.classes[name]
	return c, ok
}

// Classes returns the names of all registered classes in registration order
func (h *ClassHierarchy) Classes() []string {
	return append([]string(nil), h.order...)
}

// DirectSupers returns the declared bases of a class, in declaration order
func (h *ClassHierarchy) DirectSupers(name string) []string {
	return append([]string(nil), h.supers[name]...)
}

// DirectSubs returns the classes that declare name as a base, sorted
func (h *ClassHierarchy) DirectSubs(name string) []string {
	subs := append([]string(nil), h.subs[name]...)
	sort.Strings(subs)
	return subs
}

// Superclasses returns all transitive superclasses of a class in method resolution order
// (depth-first, left to right, first occurrence wins). The class itself is not included.
func (h *ClassHierarchy) Superclasses(name string) []string {
	return h.walk(name, h.supers)
}

// Subclasses returns all transitive subclasses of a class, breadth first
func (h *ClassHierarchy) Subclasses(name string) []string {
	seen := map[string]bool{name: true}
	var out []string
	queue := h.DirectSubs(name)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, h.DirectSubs(next)...)
	}
	return out
}

// IsSubclass returns true if sub is super or inherits from it
func (h *ClassHierarchy) IsSubclass(sub, super string) bool {
	if sub == super {
		return true
	}
	return contains(h.Superclasses(sub), super)
}

// MRO returns the class followed by its superclasses in resolution order
func (h *ClassHierarchy) MRO(name string) []string {
	return append([]string{name}, h.Superclasses(name)...)
}

// Lookup resolves an attribute of a class through its bases: members of the class object
// itself come first, then each superclass in resolution order.
func (h *ClassHierarchy) Lookup(class, attr string) (pythontype.Value, bool) {
	for _, name := range h.MRO(class) {
		c, ok := h.classes[name]
		if !ok {
			continue
		}
		if v, ok := c.Attrs.Get(attr); ok {
			return v, true
		}
		if v, ok := c.Methods.Get(attr); ok {
			return v, true
		}
	}
	return pythontype.Value{}, false
}

func (h *ClassHierarchy) walk(name string, edges map[string][]string) []string {
	seen := map[string]bool{name: true}
	var out []string

	var visit func(ctx kitectx.CallContext, n string)
	visit = func(ctx kitectx.CallContext, n string) {
		for _, next := range edges[n] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			visit(ctx.Call(), next)
		}
	}
	err := kitectx.Background().WithCallLimit(maxHierarchyDepth, func(ctx kitectx.CallContext) error {
		visit(ctx, name)
		return nil
	})
	if err != nil {
		h.truncated[name] = true
	}
	return out
}

// Truncated returns true if a superclass walk from name stopped at the depth limit, in which
// case Superclasses and MRO list only the bases found before the limit
func (h *ClassHierarchy) Truncated(name string) bool {
	return h.truncated[name]
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
