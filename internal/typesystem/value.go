package typesystem

// Value is an inferred program entity: a class, an instance, a module, a
// function, a type variable or a typing construct.
type Value interface {
	Name() string
	String() string
	// Class returns the runtime class of the value, or nil when unknown.
	Class() Value
	// ExecuteAnnotation converts a type descriptor into the values it
	// describes, e.g. the class int into an int instance.
	ExecuteAnnotation() *ValueSet
}

// Generic is implemented by parameterized values.
type Generic interface {
	Value
	Generics() []*ValueSet
}

// Dual is implemented by values that are either a class or an instance.
type Dual interface {
	Value
	IsInstance() bool
}

// ClassValue is a class or a parameterized class.
type ClassValue interface {
	Value
	MRO() []ClassValue
	// Base returns the unparameterized class.
	Base() *Class
	// TypeName renders the class as it appears in annotations.
	TypeName() string
}

// Iterable is implemented by values whose iteration yields known types.
type Iterable interface {
	Value
	Iterate() []*ValueSet
}

// Definer is implemented by values that can have type variables
// substituted.
type Definer interface {
	Value
	DefineGenerics(b *Bindings) *ValueSet
}

// HomogeneousTuple distinguishes tuple[X, ...] from fixed-arity tuples.
type HomogeneousTuple interface {
	IsHomogeneous() bool
}

// DefineGenerics substitutes b into every value of set that supports it.
func DefineGenerics(set *ValueSet, b *Bindings) *ValueSet {
	var parts []*ValueSet
	for _, v := range set.Values() {
		if d, ok := v.(Definer); ok {
			parts = append(parts, d.DefineGenerics(b))
		} else {
			parts = append(parts, NewValueSet(v))
		}
	}
	return FromSets(parts...)
}

// defineGenericSets substitutes b into each set and reports whether any
// value changed.
func defineGenericSets(sets []*ValueSet, b *Bindings) ([]*ValueSet, bool) {
	changed := false
	out := make([]*ValueSet, len(sets))
	for i, s := range sets {
		var parts []*ValueSet
		for _, v := range s.Values() {
			d, ok := v.(Definer)
			if !ok {
				parts = append(parts, NewValueSet(v))
				continue
			}
			result := d.DefineGenerics(b)
			if !result.Equal(NewValueSet(v)) {
				changed = true
			}
			parts = append(parts, result)
		}
		out[i] = FromSets(parts...)
	}
	return out, changed
}

func formatGenerics(sets []*ValueSet) string {
	s := ""
	for i, g := range sets {
		if i > 0 {
			s += ", "
		}
		s += g.TypeString()
	}
	return s
}
