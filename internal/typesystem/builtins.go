package typesystem

// Builtins holds the builtin classes and the typing abstract classes the
// inference engine knows about.
type Builtins struct {
	Object    *Class
	Type      *Class
	Int       *Class
	Float     *Class
	Complex   *Class
	Bool      *Class
	Str       *Class
	Bytes     *Class
	List      *Class
	Tuple     *Class
	Dict      *Class
	Set       *Class
	FrozenSet *Class
	NoneType  *Class
	Function  *Class

	Iterable *Class
	Iterator *Class
	Sequence *Class
	Mapping  *Class

	None *Instance

	builtins *Module
	typing   *Module
}

func NewBuiltins() *Builtins {
	b := &Builtins{}

	b.Object = NewClass("object", "builtins")
	b.Type = NewClass("type", "builtins", b.Object)

	tIter := NewTypeVar("_T_co")
	tIter.Variance = Covariant
	b.Iterable = NewClass("Iterable", "typing", b.Object)
	b.Iterable.Params = []*TypeVar{tIter}

	tIterator := NewTypeVar("_T_co")
	tIterator.Variance = Covariant
	b.Iterator = NewClass("Iterator", "typing", b.Iterable.Parameterize(params(tIterator), false))
	b.Iterator.Params = []*TypeVar{tIterator}

	tSeq := NewTypeVar("_T_co")
	tSeq.Variance = Covariant
	b.Sequence = NewClass("Sequence", "typing", b.Iterable.Parameterize(params(tSeq), false))
	b.Sequence.Params = []*TypeVar{tSeq}

	kMap, vMap := NewTypeVar("_KT"), NewTypeVar("_VT_co")
	vMap.Variance = Covariant
	b.Mapping = NewClass("Mapping", "typing", b.Iterable.Parameterize(params(kMap), false))
	b.Mapping.Params = []*TypeVar{kMap, vMap}

	b.Int = NewClass("int", "builtins", b.Object)
	b.Float = NewClass("float", "builtins", b.Object)
	b.Complex = NewClass("complex", "builtins", b.Object)
	b.Bool = NewClass("bool", "builtins", b.Int)
	b.Str = NewClass("str", "builtins")
	b.Str.Bases = []ClassValue{b.Sequence.Parameterize([]*ValueSet{NewValueSet(b.Str)}, false)}
	b.Bytes = NewClass("bytes", "builtins", b.Sequence.Parameterize([]*ValueSet{NewValueSet(b.Int)}, false))
	b.NoneType = NewClass("NoneType", "builtins", b.Object)
	b.Function = NewClass("function", "builtins", b.Object)

	tList := NewTypeVar("_T")
	b.List = NewClass("list", "builtins", b.Sequence.Parameterize(params(tList), false))
	b.List.Params = []*TypeVar{tList}

	tTuple := NewTypeVar("_T_co")
	tTuple.Variance = Covariant
	b.Tuple = NewClass("tuple", "builtins", b.Sequence.Parameterize(params(tTuple), false))
	b.Tuple.Params = []*TypeVar{tTuple}

	kDict, vDict := NewTypeVar("_KT"), NewTypeVar("_VT")
	b.Dict = NewClass("dict", "builtins", b.Mapping.Parameterize(params(kDict, vDict), false))
	b.Dict.Params = []*TypeVar{kDict, vDict}

	tSet := NewTypeVar("_T")
	b.Set = NewClass("set", "builtins", b.Iterable.Parameterize(params(tSet), false))
	b.Set.Params = []*TypeVar{tSet}

	tFrozen := NewTypeVar("_T_co")
	tFrozen.Variance = Covariant
	b.FrozenSet = NewClass("frozenset", "builtins", b.Iterable.Parameterize(params(tFrozen), false))
	b.FrozenSet.Params = []*TypeVar{tFrozen}

	for _, c := range []*Class{
		b.Object, b.Type, b.Int, b.Float, b.Complex, b.Bool, b.Str, b.Bytes,
		b.List, b.Tuple, b.Dict, b.Set, b.FrozenSet, b.NoneType, b.Function,
		b.Iterable, b.Iterator, b.Sequence, b.Mapping,
	} {
		c.Meta = b.Type
	}

	b.None = &Instance{class: b.NoneType}
	b.NoneType.instance = b.None

	b.builtins = NewModule("builtins")
	for _, c := range []*Class{
		b.Object, b.Type, b.Int, b.Float, b.Complex, b.Bool, b.Str, b.Bytes,
		b.List, b.Tuple, b.Dict, b.Set, b.FrozenSet,
	} {
		b.builtins.Define(c.name, c)
	}

	b.typing = NewModule("typing")
	b.typing.Define("List", b.List)
	b.typing.Define("Dict", b.Dict)
	b.typing.Define("Set", b.Set)
	b.typing.Define("FrozenSet", b.FrozenSet)
	for _, c := range []*Class{b.Iterable, b.Iterator, b.Sequence, b.Mapping} {
		b.typing.Define(c.name, c)
	}
	for _, name := range []string{
		FormTuple, FormType, FormCallable, FormUnion, FormOptional, FormClassVar,
		FormFinal, FormAnnotated, FormGeneric, FormProtocol, FormAny, FormTypeVar,
	} {
		b.typing.Define(name, &SpecialForm{name: name, builtins: b})
	}
	return b
}

func params(tvs ...*TypeVar) []*ValueSet {
	out := make([]*ValueSet, len(tvs))
	for i, tv := range tvs {
		out[i] = NewValueSet(tv)
	}
	return out
}

// Module returns the builtins namespace.
func (b *Builtins) Module() *Module { return b.builtins }

// Typing returns the typing module.
func (b *Builtins) Typing() *Module { return b.typing }

// Lookup resolves a builtin name.
func (b *Builtins) Lookup(name string) (*ValueSet, bool) {
	return b.builtins.Member(name)
}

// Form returns the typing special form spelled name.
func (b *Builtins) Form(name string) *SpecialForm {
	return &SpecialForm{name: name, builtins: b}
}

// Union builds the typing.Union of sets.
func (b *Builtins) Union(sets ...*ValueSet) *TypingForm {
	return &TypingForm{name: FormUnion, generics: sets, builtins: b}
}

// StrLiteral returns a str literal instance.
func (b *Builtins) StrLiteral(s string) *Instance {
	return NewLiteral(b.Str, s)
}
