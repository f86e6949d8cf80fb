package typesystem

import "strings"

// Names of the typing constructs with dedicated semantics.
const (
	FormType      = "Type"
	FormCallable  = "Callable"
	FormTuple     = "Tuple"
	FormUnion     = "Union"
	FormOptional  = "Optional"
	FormClassVar  = "ClassVar"
	FormFinal     = "Final"
	FormAnnotated = "Annotated"
	FormGeneric   = "Generic"
	FormProtocol  = "Protocol"
	FormAny       = "Any"
	FormTypeVar   = "TypeVar"
)

// TypingForm is a subscripted typing construct such as Type[T] or
// Callable[[int], str].
type TypingForm struct {
	name        string
	generics    []*ValueSet
	homogeneous bool
	builtins    *Builtins
}

func (f *TypingForm) Name() string          { return f.name }
func (f *TypingForm) Class() Value          { return nil }
func (f *TypingForm) Generics() []*ValueSet { return f.generics }
func (f *TypingForm) IsHomogeneous() bool   { return f.homogeneous }
func (f *TypingForm) IsInstance() bool      { return false }

func (f *TypingForm) String() string {
	var sb strings.Builder
	sb.WriteString(f.name)
	sb.WriteString("[")
	if f.name == FormCallable && len(f.generics) == 2 {
		sb.WriteString(formatCallableParams(f.generics[0]))
		sb.WriteString(", ")
		sb.WriteString(f.generics[1].TypeString())
	} else {
		sb.WriteString(formatGenerics(f.generics))
	}
	if f.homogeneous {
		sb.WriteString(", ...")
	}
	sb.WriteString("]")
	return sb.String()
}

func (f *TypingForm) ExecuteAnnotation() *ValueSet {
	switch f.name {
	case FormUnion:
		return FromSets(f.generics...).ExecuteAnnotation()
	case FormOptional:
		return FromSets(f.generics...).ExecuteAnnotation().Union(NewValueSet(f.builtins.None))
	case FormType:
		if len(f.generics) == 0 {
			return NoValues
		}
		return f.generics[0]
	case FormClassVar, FormFinal, FormAnnotated:
		if len(f.generics) == 0 {
			return NoValues
		}
		return f.generics[0].ExecuteAnnotation()
	case FormTuple:
		return f.builtins.Tuple.Parameterize(f.generics, f.homogeneous).ExecuteAnnotation()
	case FormCallable:
		return NewValueSet(NewCallableInstance(f))
	}
	return NoValues
}

func (f *TypingForm) DefineGenerics(b *Bindings) *ValueSet {
	generics, changed := defineGenericSets(f.generics, b)
	if !changed {
		return NewValueSet(f)
	}
	return NewValueSet(&TypingForm{name: f.name, generics: generics, homogeneous: f.homogeneous, builtins: f.builtins})
}

// formatCallableParams renders the parameter list of a Callable form.
func formatCallableParams(params *ValueSet) string {
	if params.Len() != 1 {
		return params.TypeString()
	}
	switch p := params.Values()[0].(type) {
	case *Instance:
		if p.ArrayType == ArrayList {
			return "[" + formatGenerics(p.elements) + "]"
		}
	case ellipsis:
		return "..."
	}
	return params.TypeString()
}

// SpecialForm is an unsubscripted typing name such as Tuple or Any.
type SpecialForm struct {
	name     string
	builtins *Builtins
}

func (s *SpecialForm) Name() string   { return s.name }
func (s *SpecialForm) String() string { return "typing." + s.name }
func (s *SpecialForm) Class() Value   { return nil }

func (s *SpecialForm) ExecuteAnnotation() *ValueSet {
	switch s.name {
	case FormTuple:
		return s.builtins.Tuple.ExecuteAnnotation()
	case FormType:
		return s.builtins.Type.ExecuteAnnotation()
	}
	return NoValues
}

// Subscript applies the form to generic arguments.
func (s *SpecialForm) Subscript(generics []*ValueSet, homogeneous bool) *TypingForm {
	return &TypingForm{name: s.name, generics: generics, homogeneous: homogeneous, builtins: s.builtins}
}

// Module is a namespace of named values.
type Module struct {
	name    string
	members map[string]*ValueSet
}

func NewModule(name string) *Module {
	return &Module{name: name, members: map[string]*ValueSet{}}
}

func (m *Module) Name() string                 { return m.name }
func (m *Module) String() string               { return "module " + m.name }
func (m *Module) Class() Value                 { return nil }
func (m *Module) ExecuteAnnotation() *ValueSet { return NoValues }

func (m *Module) Define(name string, v ...Value) {
	m.members[name] = NewValueSet(v...)
}

func (m *Module) Member(name string) (*ValueSet, bool) {
	vs, ok := m.members[name]
	return vs, ok
}

type ellipsis struct{}

func (ellipsis) Name() string                 { return "ellipsis" }
func (ellipsis) String() string               { return "..." }
func (ellipsis) Class() Value                 { return nil }
func (ellipsis) ExecuteAnnotation() *ValueSet { return NoValues }

// Ellipsis is the value of the `...` literal.
var Ellipsis Value = ellipsis{}
