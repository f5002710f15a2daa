// Package engine implements the abstract interpreter: frames, states, the
// worklist fixpoint loop, per-opcode transfer functions, and terminal
// outcome aggregation, per spec.md §4.6-§4.9.
package engine

import "javaflow/internal/domain"

// ValueKind tags which lattice a local/stack slot currently holds.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindString
	KindRef
	KindUninitialized
)

// Value is the tagged union boxed onto the operand stack and into locals,
// mirroring the teacher's own boxed Value interface{} pattern but closed
// over the handful of shapes the engine actually manipulates.
type Value struct {
	Kind ValueKind
	Int  domain.IntValue
	Str  domain.StringValue
	// RefNull tracks nullability for a bare object reference that carries
	// no further abstract value (spec.md §4.6): an array or a non-string
	// object used only for its identity/null-ness.
	RefNull domain.Tri
}

func IntVal(v domain.IntValue) Value    { return Value{Kind: KindInt, Int: v} }
func StringVal(v domain.StringValue) Value { return Value{Kind: KindString, Str: v} }
func RefVal(null domain.Tri) Value      { return Value{Kind: KindRef, RefNull: null} }
func Uninitialized() Value              { return Value{Kind: KindUninitialized} }

// IsDefinitelyNull reports whether this value, whatever its kind, is known
// to be null on every path represented by the abstract state.
func (v Value) IsDefinitelyNull() bool {
	switch v.Kind {
	case KindString:
		return v.Str.IsDefinitelyNull()
	case KindRef:
		return v.RefNull == domain.True
	default:
		return false
	}
}

// IsPossiblyNull reports whether null is among the values this slot could
// hold on some path.
func (v Value) IsPossiblyNull() bool {
	switch v.Kind {
	case KindString:
		return v.Str.IsPossiblyNull()
	case KindRef:
		return v.RefNull != domain.False
	default:
		return false
	}
}

// SetNotNull is the refinement applied after a branch that proved this
// value is not null.
func (v Value) SetNotNull() Value {
	switch v.Kind {
	case KindString:
		v.Str = v.Str.SetNotNull()
	case KindRef:
		v.RefNull = domain.False
	}
	return v
}

// Join computes the pointwise LUB of two values occupying the same slot.
// Mismatched kinds (one path leaves an int, another a string, in the same
// local slot) collapse to an unconstrained reference — the slot's static
// type guarantees this can't happen for verified bytecode, but the engine
// stays defined rather than panicking on a decode inconsistency.
func (v Value) Join(other Value) Value {
	if v.Kind == KindUninitialized {
		return other
	}
	if other.Kind == KindUninitialized {
		return v
	}
	if v.Kind != other.Kind {
		return RefVal(domain.Unknown)
	}
	switch v.Kind {
	case KindInt:
		return IntVal(v.Int.Join(other.Int))
	case KindString:
		return StringVal(v.Str.Join(other.Str))
	case KindRef:
		null := domain.Unknown
		if v.RefNull == other.RefNull {
			null = v.RefNull
		}
		return RefVal(null)
	default:
		return v
	}
}

// Widen is Join's widening counterpart, used only at loop heads.
func (v Value) Widen(other Value, constants map[int64]struct{}) Value {
	if v.Kind == KindUninitialized {
		return other
	}
	if other.Kind == KindUninitialized {
		return v
	}
	if v.Kind != other.Kind {
		return RefVal(domain.Unknown)
	}
	switch v.Kind {
	case KindInt:
		return IntVal(v.Int.Widen(other.Int, constants))
	case KindString:
		return StringVal(v.Str.Widen(other.Str))
	case KindRef:
		return v.Join(other)
	default:
		return v
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return v.Int.String()
	case KindString:
		return v.Str.String()
	case KindRef:
		return "ref(null=" + v.RefNull.String() + ")"
	default:
		return "uninitialized"
	}
}
