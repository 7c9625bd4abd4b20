package value

// HeapObject is any object a Ref can address.
type HeapObject interface {
	heapObject()
}

// Heap is an append-only slab of objects addressed by stable, 1-based
// indices (index 0 is reserved so the zero Ref is never valid). There is
// no garbage collection: per spec, object lifetime tracks the owning
// engine/run, not reachability, which keeps the evaluator free of a
// tracing pass at the cost of memory living for the run's duration.
type Heap struct {
	slots []HeapObject
}

// NewHeap returns an empty heap with slot 0 reserved.
func NewHeap() *Heap {
	return &Heap{slots: make([]HeapObject, 1)}
}

// Alloc appends obj and returns the Ref addressing it.
func (h *Heap) Alloc(obj HeapObject) Ref {
	h.slots = append(h.slots, obj)
	return Ref{Index: len(h.slots) - 1}
}

// Get dereferences r. Panics on an out-of-range Ref; the zero Ref names
// the reserved slot 0 and yields its nil entry. A Ref is only ever
// constructed by Alloc, so an invalid one indicates an interpreter bug,
// not a guest-script condition.
func (h *Heap) Get(r Ref) HeapObject {
	return h.slots[r.Index]
}

// Len reports the number of allocated slots, including the reserved slot 0.
func (h *Heap) Len() int { return len(h.slots) }

// PropertyDescriptor is one own-property entry of a PlainObject/ArrayObject.
// A data property carries Value; an accessor property carries Get/Set
// (either may be the zero Ref to mean "absent"), never both kinds at once.
type PropertyDescriptor struct {
	Value        Value
	Get, Set     Ref
	HasGet       bool
	HasSet       bool
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func (d PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }

// PlainObject is an ordered own-property map with an optional prototype
// link and private-field table.
type PlainObject struct {
	Class      string // "Object", "Error", "RegExp", "Map", ... for display/tag purposes
	Keys       []PropertyKey // insertion order, integer-like keys sorted first per spec
	Props      map[PropertyKey]*PropertyDescriptor
	Proto      Ref // zero Ref means null prototype
	HasProto   bool
	Sealed     bool
	Frozen     bool
	Extensible bool
	Private    map[*PrivateName]Value
	Internal   any // host-reserved slot for built-in internal state (Map buckets, Date epoch, ...)
}

func (*PlainObject) heapObject() {}

// NewPlainObject returns an extensible, empty object with the given
// prototype (HasProto false means a null-prototype object).
func NewPlainObject(proto Ref, hasProto bool) *PlainObject {
	return &PlainObject{
		Class:      "Object",
		Props:      make(map[PropertyKey]*PropertyDescriptor),
		Proto:      proto,
		HasProto:   hasProto,
		Extensible: true,
	}
}

// PropertyKey is a string or symbol own-property key.
type PropertyKey struct {
	Str    string
	Sym    *Symbol
	IsSym  bool
}

func StringKey(s string) PropertyKey  { return PropertyKey{Str: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{Sym: s, IsSym: true} }

func (k PropertyKey) String() string {
	if k.IsSym {
		return k.Sym.String()
	}
	return k.Str
}

// PrivateName is the identity token for a class-private field/method; two
// PrivateName values are distinct even if declared with the same source
// name in different classes, matching the brand-table design in
// spec.md's class-system invariants.
type PrivateName struct {
	Name  string // without leading '#', for diagnostics only
	Class *ClassObject
}

// ArrayObject is an integer-indexed array. Elements holds the dense
// segment starting at index 0; Sparse holds any indices beyond a hole
// (nil entries in Elements mark holes within the dense segment too).
// Length is kept as an explicit invariant-checked field rather than
// derived, since assigning to `.length` can truncate or extend.
type ArrayObject struct {
	Elements []Value // nil entry = hole
	Sparse   map[int]Value
	Length   int
	Proto    Ref
	Frozen   bool
	Sealed   bool
}

func (*ArrayObject) heapObject() {}

func NewArrayObject(proto Ref) *ArrayObject {
	return &ArrayObject{Proto: proto}
}

// FunctionKind distinguishes calling-convention and this-binding rules.
type FunctionKind int

const (
	FuncNormal FunctionKind = iota
	FuncArrow
	FuncMethod
	FuncGenerator
	FuncAsync
	FuncAsyncGenerator
)

// ConstructorKind distinguishes base from derived-class constructors for
// the super()-before-this-access gate.
type ConstructorKind int

const (
	CtorNone ConstructorKind = iota
	CtorBase
	CtorDerived
)

// FunctionObject is a closure: parameter patterns and body live in the AST
// (opaque here, referenced by the evaluator's node pointers via Body),
// paired with the environment captured at definition time.
type FunctionObject struct {
	Name        string
	Params      any // []ast.Expression, kept as `any` to avoid an ast import cycle from value
	Body        any // ast.Node (*ast.BlockStatement or ast.Expression for concise arrows)
	Env         any // *env.Environment
	Kind        FunctionKind
	HomeObject  Ref // for super resolution in methods; zero Ref if none
	ThisMode    string // "lexical" (arrow), "strict" (method/normal)
	CtorKind    ConstructorKind
	Proto       Ref // .prototype object, present for non-arrow non-method functions
	Native      func(NativeArgs) (Value, error)
	ParentClass *ClassObject // non-nil for a class's own constructor function
	Statics     Ref          // static properties (Promise.resolve, ...), zero Ref if none
}

func (*FunctionObject) heapObject() {}

// NativeArgs is the argument bundle passed to a Native function slot;
// kept minimal and evaluator-agnostic so internal/value has no dependency
// on internal/interp.
type NativeArgs struct {
	This Value
	Args []Value
	Heap *Heap
}

// ClassObject bundles a constructor function with its prototype, static
// home object, private-name registry, and ordered initializer lists.
type ClassObject struct {
	Name              string
	Constructor       Ref // FunctionObject
	Prototype         Ref // PlainObject, instance methods/getters/setters live here
	StaticHome        Ref // PlainObject, static members live here
	SuperClass        Ref // zero Ref if none
	HasSuperClass     bool
	PrivateNames      map[string]*PrivateName
	InstanceFields    []FieldInit
	StaticInitOrder   []StaticInit // interleaved PropertyDefinition/StaticBlock in source order
}

func (*ClassObject) heapObject() {}

// FieldInit is one instance field initializer, run at the start of every
// constructor invocation (own or inherited via super()) in source order.
type FieldInit struct {
	Key      any // ast.Expression (identifier, computed expr, or *PrivateName marker)
	IsPriv   bool
	Priv     *PrivateName
	ValueExp any // ast.Expression, nil for an uninitialized field
}

// StaticInit is one static-side initializer: either a field assignment or
// a static block, interleaved in declaration order per spec.md's
// class-system ordering rule.
type StaticInit struct {
	IsBlock  bool
	Key      any // ast.Expression, for a field
	IsPriv   bool
	Priv     *PrivateName
	ValueExp any // ast.Expression, for a field
	Block    any // []ast.Statement, for a static block
}

// BoundHostObject wraps a host Go value crossing into guest script space.
// ReadOnly objects reject every property write, modeling the "read-only
// proxy" policy from the bridge's SecurityPolicy.
type BoundHostObject struct {
	Host     any
	ReadOnly bool
	Proto    Ref
}

func (*BoundHostObject) heapObject() {}

// GeneratorState tags a GeneratorHandle's lifecycle.
type GeneratorState int

const (
	GenSuspendedStart GeneratorState = iota
	GenSuspendedYield
	GenExecuting
	GenCompleted
)

// GeneratorHandle references a suspended coroutine. Coro is an opaque
// pointer to internal/interp's generator coroutine (a goroutine driven
// through resume/yield channels);
// internal/value only needs to hold and identify the handle, not drive it.
type GeneratorHandle struct {
	State GeneratorState
	Coro  any
}

func (*GeneratorHandle) heapObject() {}

// PromiseState tags a PromiseHandle's settlement.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseHandle is either an internal pending/settled record or a wrapper
// around a host-supplied promise-like value (Host non-nil in that case).
type PromiseHandle struct {
	State      PromiseState
	Result     Value
	Host       any
	OnFulfill  []Ref // queued FunctionObject reactions
	OnReject   []Ref
}

func (*PromiseHandle) heapObject() {}
