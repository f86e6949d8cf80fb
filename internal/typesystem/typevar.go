package typesystem

import "strings"

// Variance of a type variable.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// TypeVar is a declared type variable. Two declarations are distinct even
// when they share a name.
type TypeVar struct {
	name        string
	Bound       *ValueSet
	Constraints []*ValueSet
	Variance    Variance
	Decl        any
}

func NewTypeVar(name string) *TypeVar {
	return &TypeVar{name: name}
}

func (t *TypeVar) Name() string   { return t.name }
func (t *TypeVar) String() string { return t.name }
func (t *TypeVar) Class() Value   { return nil }

// ExecuteAnnotation of an unresolved variable falls back to its bound, then
// to its constraints.
func (t *TypeVar) ExecuteAnnotation() *ValueSet {
	if !t.Bound.IsEmpty() {
		return t.Bound.ExecuteAnnotation()
	}
	if len(t.Constraints) > 0 {
		return FromSets(t.Constraints...).ExecuteAnnotation()
	}
	return NoValues
}

func (t *TypeVar) DefineGenerics(b *Bindings) *ValueSet {
	if found := b.Lookup(t); !found.IsEmpty() {
		return found
	}
	return NewValueSet(t)
}

// Bindings maps type variables to the value sets they are bound to. Binding
// a variable twice unions the sets.
type Bindings struct {
	order []*TypeVar
	sets  map[*TypeVar]*ValueSet
}

func NewBindings() *Bindings {
	return &Bindings{sets: map[*TypeVar]*ValueSet{}}
}

// Bind unions vs into the binding of tv. Empty sets are ignored.
func (b *Bindings) Bind(tv *TypeVar, vs *ValueSet) {
	if vs.IsEmpty() {
		return
	}
	prev, ok := b.sets[tv]
	if !ok {
		b.order = append(b.order, tv)
	}
	b.sets[tv] = prev.Union(vs)
}

// Merge unions every binding of o into b.
func (b *Bindings) Merge(o *Bindings) {
	if o == nil {
		return
	}
	for _, tv := range o.order {
		b.Bind(tv, o.sets[tv])
	}
}

// MergeBindings unions all maps into a new one.
func MergeBindings(maps ...*Bindings) *Bindings {
	out := NewBindings()
	for _, m := range maps {
		out.Merge(m)
	}
	return out
}

func (b *Bindings) Lookup(tv *TypeVar) *ValueSet {
	if b == nil {
		return NoValues
	}
	if vs, ok := b.sets[tv]; ok {
		return vs
	}
	return NoValues
}

// LookupName returns the union of all variables spelled name.
func (b *Bindings) LookupName(name string) *ValueSet {
	if b == nil {
		return NoValues
	}
	var parts []*ValueSet
	for _, tv := range b.order {
		if tv.name == name {
			parts = append(parts, b.sets[tv])
		}
	}
	return FromSets(parts...)
}

// Vars returns the bound variables in first-bound order.
func (b *Bindings) Vars() []*TypeVar {
	if b == nil {
		return nil
	}
	return b.order
}

func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Equal compares the maps ignoring binding order.
func (b *Bindings) Equal(o *Bindings) bool {
	if b.Len() != o.Len() {
		return false
	}
	for _, tv := range b.Vars() {
		if !b.sets[tv].Equal(o.Lookup(tv)) {
			return false
		}
	}
	return true
}

func (b *Bindings) String() string {
	parts := make([]string, 0, b.Len())
	for _, tv := range b.Vars() {
		parts = append(parts, tv.name+": "+b.sets[tv].TypeString())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
