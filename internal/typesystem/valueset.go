package typesystem

import (
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// ValueSet is an immutable, insertion-ordered set of values deduplicated by
// identity. The nil *ValueSet is the empty set.
type ValueSet struct {
	items   []Value
	members *set.Set[Value]
}

func NewValueSet(values ...Value) *ValueSet {
	s := &ValueSet{members: set.New[Value](len(values))}
	for _, v := range values {
		s.add(v)
	}
	return s
}

// NoValues is the empty set.
var NoValues = NewValueSet()

func (s *ValueSet) add(v Value) {
	if v == nil || s.members.Contains(v) {
		return
	}
	s.members.Insert(v)
	s.items = append(s.items, v)
}

// FromSets is the union of sets, in order.
func FromSets(sets ...*ValueSet) *ValueSet {
	out := NewValueSet()
	for _, s := range sets {
		for _, v := range s.Values() {
			out.add(v)
		}
	}
	return out
}

func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *ValueSet) IsEmpty() bool {
	return s.Len() == 0
}

// Values returns the members in insertion order.
func (s *ValueSet) Values() []Value {
	if s == nil {
		return nil
	}
	return s.items
}

func (s *ValueSet) Contains(v Value) bool {
	if s == nil {
		return false
	}
	return s.members.Contains(v)
}

func (s *ValueSet) Union(o *ValueSet) *ValueSet {
	return FromSets(s, o)
}

func (s *ValueSet) Filter(keep func(Value) bool) *ValueSet {
	out := NewValueSet()
	for _, v := range s.Values() {
		if keep(v) {
			out.add(v)
		}
	}
	return out
}

// Map unions fn over every member.
func (s *ValueSet) Map(fn func(Value) *ValueSet) *ValueSet {
	var parts []*ValueSet
	for _, v := range s.Values() {
		parts = append(parts, fn(v))
	}
	return FromSets(parts...)
}

// Classes maps every member to its runtime class; unknown classes are
// dropped.
func (s *ValueSet) Classes() *ValueSet {
	out := NewValueSet()
	for _, v := range s.Values() {
		if c := v.Class(); c != nil {
			out.add(c)
		}
	}
	return out
}

func (s *ValueSet) ExecuteAnnotation() *ValueSet {
	return s.Map(func(v Value) *ValueSet { return v.ExecuteAnnotation() })
}

// MergeTypesOfIterate is the union of the element types of iterating every
// member.
func (s *ValueSet) MergeTypesOfIterate() *ValueSet {
	return s.Map(func(v Value) *ValueSet {
		it, ok := v.(Iterable)
		if !ok {
			return NoValues
		}
		return FromSets(it.Iterate()...)
	})
}

// MergeDictValues is the union of the value types of every mapping member.
func (s *ValueSet) MergeDictValues() *ValueSet {
	return s.Map(func(v Value) *ValueSet {
		if inst, ok := v.(*Instance); ok {
			return inst.DictValues()
		}
		return NoValues
	})
}

// SimpleGetItem indexes every member that supports constant indexing.
func (s *ValueSet) SimpleGetItem(index int) *ValueSet {
	return s.Map(func(v Value) *ValueSet {
		if inst, ok := v.(*Instance); ok {
			return inst.SimpleGetItem(index)
		}
		return NoValues
	})
}

// Equal compares membership, ignoring order.
func (s *ValueSet) Equal(o *ValueSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, v := range s.Values() {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

func (s *ValueSet) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	parts := make([]string, 0, s.Len())
	for _, v := range s.Values() {
		parts = append(parts, v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TypeString renders the members as an annotation-like union.
func (s *ValueSet) TypeString() string {
	if s.IsEmpty() {
		return "?"
	}
	parts := make([]string, 0, s.Len())
	for _, v := range s.Values() {
		parts = append(parts, TypeString(v))
	}
	return strings.Join(parts, " | ")
}

// Strings renders every member with TypeString.
func (s *ValueSet) Strings() []string {
	out := make([]string, 0, s.Len())
	for _, v := range s.Values() {
		out = append(out, TypeString(v))
	}
	return out
}

// TypeString renders a value as it would be written in an annotation.
func TypeString(v Value) string {
	switch t := v.(type) {
	case ClassValue:
		return t.TypeName()
	case *Instance:
		return t.String()
	}
	return v.String()
}
