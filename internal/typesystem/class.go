package typesystem

import "strings"

// Class is an unparameterized class. Params lists the type variables of a
// generic class in declaration order.
type Class struct {
	name    string
	Module  string
	Bases   []ClassValue
	Params  []*TypeVar
	Meta    Value
	Members map[string]*ValueSet
	// Decl is the declaring syntax node, nil for builtins.
	Decl any

	mro       []ClassValue
	computing bool
	instance  *Instance
	generic   []*GenericClass
}

func NewClass(name, module string, bases ...ClassValue) *Class {
	return &Class{name: name, Module: module, Bases: bases, Members: map[string]*ValueSet{}}
}

func (c *Class) Name() string     { return c.name }
func (c *Class) TypeName() string { return c.name }
func (c *Class) String() string   { return "type[" + c.name + "]" }
func (c *Class) Base() *Class     { return c }
func (c *Class) IsInstance() bool { return false }

func (c *Class) Class() Value {
	return c.Meta
}

// IsGeneric reports whether the class declares type parameters.
func (c *Class) IsGeneric() bool {
	return len(c.Params) > 0
}

// Instance returns the canonical instance of the class.
func (c *Class) Instance() *Instance {
	if c.instance == nil {
		c.instance = &Instance{class: c}
	}
	return c.instance
}

func (c *Class) ExecuteAnnotation() *ValueSet {
	return NewValueSet(c.Instance())
}

// MRO returns the C3 linearization of the class, falling back to a depth
// first walk when the hierarchy is inconsistent.
func (c *Class) MRO() []ClassValue {
	if c.mro != nil {
		return c.mro
	}
	if c.computing {
		return []ClassValue{c}
	}
	c.computing = true
	defer func() { c.computing = false }()

	mro, ok := linearize(c, c.Bases)
	if !ok {
		mro = depthFirst(c)
	}
	c.mro = mro
	return mro
}

// Lookup finds a member along the MRO.
func (c *Class) Lookup(name string) (*ValueSet, bool) {
	for _, anc := range c.MRO() {
		if vs, ok := anc.Base().Members[name]; ok {
			return vs, true
		}
	}
	return nil, false
}

// Parameterize returns the class applied to generics. Equal applications
// share one value.
func (c *Class) Parameterize(generics []*ValueSet, homogeneous bool) *GenericClass {
	for _, g := range c.generic {
		if g.homogeneous == homogeneous && sameGenerics(g.generics, generics) {
			return g
		}
	}
	g := &GenericClass{class: c, generics: generics, homogeneous: homogeneous}
	c.generic = append(c.generic, g)
	return g
}

func sameGenerics(a, b []*ValueSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func linearize(head ClassValue, bases []ClassValue) ([]ClassValue, bool) {
	var seqs [][]ClassValue
	for _, b := range bases {
		seqs = append(seqs, append([]ClassValue(nil), b.MRO()...))
	}
	seqs = append(seqs, append([]ClassValue(nil), bases...))

	result := []ClassValue{head}
	for {
		live := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				live = append(live, s)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return result, true
		}

		var next ClassValue
		for _, s := range seqs {
			if !inTail(seqs, s[0].Base()) {
				next = s[0]
				break
			}
		}
		if next == nil {
			return nil, false
		}
		result = append(result, next)
		for i, s := range seqs {
			if s[0].Base() == next.Base() {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]ClassValue, c *Class) bool {
	for _, s := range seqs {
		for _, t := range s[1:] {
			if t.Base() == c {
				return true
			}
		}
	}
	return false
}

func depthFirst(c *Class) []ClassValue {
	seen := map[*Class]bool{c: true}
	out := []ClassValue{c}
	var visit func(cv ClassValue)
	visit = func(cv ClassValue) {
		for _, anc := range cv.MRO() {
			if seen[anc.Base()] {
				continue
			}
			seen[anc.Base()] = true
			out = append(out, anc)
		}
	}
	for _, b := range c.Bases {
		visit(b)
	}
	return out
}

// GenericClass is a class applied to ordered generic arguments.
type GenericClass struct {
	class       *Class
	generics    []*ValueSet
	homogeneous bool

	instance *Instance
	mro      []ClassValue
}

func (g *GenericClass) Name() string          { return g.class.name }
func (g *GenericClass) Base() *Class          { return g.class }
func (g *GenericClass) Class() Value          { return g.class.Class() }
func (g *GenericClass) Generics() []*ValueSet { return g.generics }
func (g *GenericClass) IsInstance() bool      { return false }
func (g *GenericClass) IsHomogeneous() bool   { return g.homogeneous }

func (g *GenericClass) TypeName() string {
	var sb strings.Builder
	sb.WriteString(g.class.name)
	sb.WriteString("[")
	sb.WriteString(formatGenerics(g.generics))
	if g.homogeneous {
		sb.WriteString(", ...")
	}
	sb.WriteString("]")
	return sb.String()
}

func (g *GenericClass) String() string {
	return "type[" + g.TypeName() + "]"
}

func (g *GenericClass) Instance() *Instance {
	if g.instance == nil {
		g.instance = &Instance{class: g}
	}
	return g.instance
}

func (g *GenericClass) ExecuteAnnotation() *ValueSet {
	return NewValueSet(g.Instance())
}

// ParamBindings maps the class type parameters to the generic arguments.
// A fixed-arity tuple binds its single parameter to the union of its
// element types.
func (g *GenericClass) ParamBindings() *Bindings {
	b := NewBindings()
	params := g.class.Params
	if len(params) == 1 && len(g.generics) > 1 {
		b.Bind(params[0], FromSets(g.generics...))
		return b
	}
	for i, p := range params {
		if i >= len(g.generics) {
			break
		}
		b.Bind(p, g.generics[i])
	}
	return b
}

// MRO is the MRO of the underlying class with the generic arguments
// substituted into every parameterized ancestor.
func (g *GenericClass) MRO() []ClassValue {
	if g.mro != nil {
		return g.mro
	}
	b := g.ParamBindings()
	mro := []ClassValue{g}
	for _, anc := range g.class.MRO()[1:] {
		mro = append(mro, substituteClass(anc, b))
	}
	g.mro = mro
	return mro
}

func substituteClass(c ClassValue, b *Bindings) ClassValue {
	d, ok := c.(Definer)
	if !ok {
		return c
	}
	for _, v := range d.DefineGenerics(b).Values() {
		if cv, ok := v.(ClassValue); ok {
			return cv
		}
	}
	return c
}

func (g *GenericClass) DefineGenerics(b *Bindings) *ValueSet {
	generics, changed := defineGenericSets(g.generics, b)
	if !changed {
		return NewValueSet(g)
	}
	return NewValueSet(g.class.Parameterize(generics, g.homogeneous))
}

// Lookup finds a member along the MRO.
func (g *GenericClass) Lookup(name string) (*ValueSet, bool) {
	return g.class.Lookup(name)
}
