package annotation

import (
	"github.com/funvibe/pyhint/internal/diagnostics"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// shape is the role an annotation value plays during unification.
type shape interface {
	shape()
}

type (
	typeVarShape  struct{ tv *ts.TypeVar }
	typeOfShape   struct{ form *ts.TypingForm }
	callableShape struct{ form *ts.TypingForm }
	tupleShape    struct{ form *ts.TypingForm }
	iterableShape struct{ class *ts.GenericClass }
	genericShape  struct{ class *ts.GenericClass }
	otherShape    struct{}
)

func (typeVarShape) shape()  {}
func (typeOfShape) shape()   {}
func (callableShape) shape() {}
func (tupleShape) shape()    {}
func (iterableShape) shape() {}
func (genericShape) shape()  {}
func (otherShape) shape()    {}

func classify(v ts.Value, isClass bool) shape {
	switch a := v.(type) {
	case *ts.TypeVar:
		return typeVarShape{a}
	case *ts.TypingForm:
		switch a.Name() {
		case ts.FormType:
			return typeOfShape{a}
		case ts.FormCallable:
			return callableShape{a}
		case ts.FormTuple:
			return tupleShape{a}
		}
	case *ts.GenericClass:
		if a.Name() == "Iterable" && !isClass {
			return iterableShape{a}
		}
		return genericShape{a}
	}
	return otherShape{}
}

// InferTypeVars binds the type variables of annotation by matching it
// against the actual values. With isClass the actual values are classes
// rather than instances of them. Matches that cannot be made contribute
// nothing.
func (e *Engine) InferTypeVars(annotation ts.Value, actual *ts.ValueSet, isClass bool) *ts.Bindings {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		if !e.overflow {
			e.overflow = true
			e.warn(diagnostics.ErrA005, nil, "type variable inference exceeded depth %d at %s", e.maxDepth, annotation)
		}
		return ts.NewBindings()
	}

	out := ts.NewBindings()
	switch s := classify(annotation, isClass).(type) {
	case typeVarShape:
		if isClass {
			out.Bind(s.tv, actual)
		} else {
			out.Bind(s.tv, actual.Classes())
		}

	case typeOfShape:
		generics := s.form.Generics()
		if isClass {
			for _, v := range actual.Values() {
				if v.Name() != ts.FormType {
					continue
				}
				if g, ok := v.(ts.Generic); ok {
					out.Merge(e.inferPairwise(generics, g.Generics()))
				}
			}
		} else if len(generics) > 0 {
			out.Merge(e.inferEach(generics[0], actual, true))
		}

	case callableShape:
		generics := s.form.Generics()
		if len(generics) == 2 {
			out.Merge(e.inferEach(generics[1], actual.ExecuteAnnotation(), false))
		}

	case tupleShape:
		generics := s.form.Generics()
		for _, el := range actual.Values() {
			var cls ts.Value = el
			if inst, ok := el.(*ts.Instance); ok {
				if gc, ok := inst.ClassValue().(*ts.GenericClass); ok {
					cls = gc
				}
			}
			g, ok := cls.(ts.Generic)
			if !ok {
				continue
			}
			switch cls.(type) {
			case *ts.GenericClass, *ts.TypingForm:
			default:
				continue
			}
			if s.form.IsHomogeneous() {
				if len(generics) > 0 {
					out.Merge(e.inferEach(generics[0], ts.NewValueSet(el).MergeTypesOfIterate(), false))
				}
				continue
			}
			out.Merge(e.inferPairwise(generics, g.Generics()))
		}

	case iterableShape:
		generics := s.class.Generics()
		if len(generics) > 0 {
			out.Merge(e.inferEach(generics[0], actual.MergeTypesOfIterate(), false))
		}

	case genericShape:
		name := s.class.Name()
		for _, el := range actual.Values() {
			cls := classOf(el)
			if cls == nil {
				continue
			}
			for _, anc := range cls.MRO() {
				if anc.Name() != name {
					continue
				}
				gc, ok := anc.(*ts.GenericClass)
				if !ok {
					continue
				}
				out.Merge(e.inferPairwise(s.class.Generics(), gc.Generics()))
				break
			}
		}
	}
	return out
}

// classOf returns the class of an instance, or the value itself when it is
// a class. Values that are neither yield nil.
func classOf(v ts.Value) ts.ClassValue {
	d, ok := v.(ts.Dual)
	if !ok {
		return nil
	}
	if d.IsInstance() {
		if inst, ok := v.(*ts.Instance); ok {
			return inst.ClassValue()
		}
		return nil
	}
	cls, _ := v.(ts.ClassValue)
	return cls
}

// inferEach unifies every alternative of an annotation set.
func (e *Engine) inferEach(annotations *ts.ValueSet, actual *ts.ValueSet, isClass bool) *ts.Bindings {
	out := ts.NewBindings()
	for _, a := range annotations.Values() {
		out.Merge(e.InferTypeVars(a, actual, isClass))
	}
	return out
}

// inferPairwise unifies annotation generics with actual generics position
// by position. Actual generics are classes.
func (e *Engine) inferPairwise(annotation, actual []*ts.ValueSet) *ts.Bindings {
	out := ts.NewBindings()
	for i := range annotation {
		if i >= len(actual) {
			break
		}
		out.Merge(e.inferEach(annotation[i], actual[i], true))
	}
	return out
}
