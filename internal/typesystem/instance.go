package typesystem

import (
	"strconv"
)

// Array types of literal containers.
const (
	ArrayTuple = "tuple"
	ArrayList  = "list"
	ArraySet   = "set"
	ArrayDict  = "dict"
)

// Instance is an instance of a class. Literal instances also carry their
// payload (strings and numbers) or their element types (containers).
type Instance struct {
	class     ClassValue
	Literal   any
	ArrayType string

	elements   []*ValueSet
	dictValues []*ValueSet
	literalCls ClassValue
}

// NewLiteral creates an instance carrying a constant payload.
func NewLiteral(class *Class, literal any) *Instance {
	return &Instance{class: class, Literal: literal}
}

// NewSequence creates a tuple, list or set literal instance.
func NewSequence(class *Class, arrayType string, elements []*ValueSet) *Instance {
	return &Instance{class: class, ArrayType: arrayType, elements: elements}
}

// NewDict creates a dict literal instance.
func NewDict(class *Class, keys, values []*ValueSet) *Instance {
	return &Instance{class: class, ArrayType: ArrayDict, elements: keys, dictValues: values}
}

func (i *Instance) Name() string     { return i.class.Name() }
func (i *Instance) IsInstance() bool { return true }

// Class returns the class of the instance. Container literals report their
// class parameterized with the classes of their elements.
func (i *Instance) Class() Value {
	return i.ClassValue()
}

func (i *Instance) ClassValue() ClassValue {
	if i.ArrayType == "" || len(i.elements) == 0 {
		return i.class
	}
	if i.literalCls != nil {
		return i.literalCls
	}
	base := i.class.Base()
	switch i.ArrayType {
	case ArrayTuple:
		generics := make([]*ValueSet, len(i.elements))
		for n, e := range i.elements {
			generics[n] = e.Classes()
		}
		i.literalCls = base.Parameterize(generics, false)
	case ArrayDict:
		keys := FromSets(i.elements...).Classes()
		values := FromSets(i.dictValues...).Classes()
		i.literalCls = base.Parameterize([]*ValueSet{keys, values}, false)
	default:
		i.literalCls = base.Parameterize([]*ValueSet{FromSets(i.elements...).Classes()}, false)
	}
	return i.literalCls
}

func (i *Instance) String() string {
	if i.class.Base().name == "NoneType" {
		return "None"
	}
	return i.ClassValue().TypeName()
}

// Generics exposes the generic arguments of a parameterized instance.
func (i *Instance) Generics() []*ValueSet {
	if g, ok := i.ClassValue().(*GenericClass); ok {
		return g.generics
	}
	return nil
}

// ExecuteAnnotation of an instance describes nothing, except None which
// stands for itself.
func (i *Instance) ExecuteAnnotation() *ValueSet {
	if i.class.Base().name == "NoneType" {
		return NewValueSet(i)
	}
	return NoValues
}

// StringLiteral returns the payload of a str literal.
func (i *Instance) StringLiteral() (string, bool) {
	s, ok := i.Literal.(string)
	if !ok || i.class.Base().name != "str" {
		return "", false
	}
	return s, true
}

// IntLiteral returns the payload of an int literal.
func (i *Instance) IntLiteral() (int, bool) {
	text, ok := i.Literal.(string)
	if !ok || i.class.Base().name != "int" {
		return 0, false
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Len reports the number of elements of a fixed-arity tuple or a list
// literal, or -1.
func (i *Instance) Len() int {
	if i.ArrayType == ArrayTuple || i.ArrayType == ArrayList {
		return len(i.elements)
	}
	if g, ok := i.class.(*GenericClass); ok && g.class.name == "tuple" && !g.homogeneous {
		return len(g.generics)
	}
	return -1
}

// Iterate returns the element types in iteration order.
func (i *Instance) Iterate() []*ValueSet {
	if i.ArrayType != "" {
		return i.elements
	}
	if g, ok := i.class.(*GenericClass); ok && g.class.name == "tuple" {
		if g.homogeneous {
			return []*ValueSet{g.generics[0].ExecuteAnnotation()}
		}
		out := make([]*ValueSet, len(g.generics))
		for n, s := range g.generics {
			out[n] = s.ExecuteAnnotation()
		}
		return out
	}
	for _, anc := range i.class.MRO() {
		if anc.Name() != "Iterable" {
			continue
		}
		if g, ok := anc.(*GenericClass); ok && len(g.generics) > 0 {
			return []*ValueSet{g.generics[0].ExecuteAnnotation()}
		}
	}
	return nil
}

// DictValues returns the value types of a mapping.
func (i *Instance) DictValues() *ValueSet {
	if i.ArrayType == ArrayDict {
		return FromSets(i.dictValues...)
	}
	for _, anc := range i.class.MRO() {
		if anc.Name() != "Mapping" {
			continue
		}
		if g, ok := anc.(*GenericClass); ok && len(g.generics) == 2 {
			return g.generics[1].ExecuteAnnotation()
		}
	}
	return NoValues
}

// SimpleGetItem indexes a tuple or list with a constant.
func (i *Instance) SimpleGetItem(index int) *ValueSet {
	switch i.ArrayType {
	case ArrayTuple, ArrayList:
		if index < 0 {
			index += len(i.elements)
		}
		if index < 0 || index >= len(i.elements) {
			return NoValues
		}
		return i.elements[index]
	case "":
	default:
		return NoValues
	}
	g, ok := i.class.(*GenericClass)
	if !ok || len(g.generics) == 0 {
		return NoValues
	}
	switch g.class.name {
	case "tuple":
		if g.homogeneous {
			return g.generics[0].ExecuteAnnotation()
		}
		if index < 0 {
			index += len(g.generics)
		}
		if index < 0 || index >= len(g.generics) {
			return NoValues
		}
		return g.generics[index].ExecuteAnnotation()
	case "list":
		return g.generics[0].ExecuteAnnotation()
	}
	return NoValues
}

// CallableInstance is an instance of a Callable[[params], result] form.
type CallableInstance struct {
	form *TypingForm
}

func NewCallableInstance(form *TypingForm) *CallableInstance {
	return &CallableInstance{form: form}
}

func (c *CallableInstance) Name() string          { return "Callable" }
func (c *CallableInstance) String() string        { return c.form.String() }
func (c *CallableInstance) Class() Value          { return nil }
func (c *CallableInstance) IsInstance() bool      { return true }
func (c *CallableInstance) Generics() []*ValueSet { return c.form.generics }

// ExecuteAnnotation calls the callable: the result annotation executed.
func (c *CallableInstance) ExecuteAnnotation() *ValueSet {
	if len(c.form.generics) != 2 {
		return NoValues
	}
	return c.form.generics[1].ExecuteAnnotation()
}
