package domain

import (
	"fmt"
	"math"
	"sort"
)

// NegInf and PosInf are the sentinels used for the extended-integer
// endpoints of an Interval. JVM ints are 32-bit, so these sentinels leave
// enormous headroom for the int64 endpoint arithmetic below without ever
// colliding with a real value.
const (
	NegInf int64 = math.MinInt64
	PosInf int64 = math.MaxInt64
)

// Interval is the pair (Lo, Hi) over extended integers from spec.md §3,
// plus ExcludeZero which is only meaningful when Lo <= 0 <= Hi.
type Interval struct {
	Lo, Hi      int64
	ExcludeZero bool
}

// NewInterval normalizes (lo, hi, excludeZero) per the invariants in
// spec.md §3: lo > hi collapses to the canonical bottom, and ExcludeZero is
// forced false whenever 0 is outside [lo, hi].
func NewInterval(lo, hi int64, excludeZero bool) Interval {
	if lo == PosInf || hi == NegInf || lo > hi {
		return IntervalBottom()
	}
	if !(lo <= 0 && 0 <= hi) {
		excludeZero = false
	}
	return Interval{Lo: lo, Hi: hi, ExcludeZero: excludeZero}
}

func IntervalFromConcrete(v int64) Interval { return NewInterval(v, v, false) }
func IntervalTop() Interval                 { return Interval{Lo: NegInf, Hi: PosInf} }
func IntervalBottom() Interval              { return Interval{Lo: PosInf, Hi: NegInf} }

func (iv Interval) IsBottom() bool { return iv.Lo == PosInf && iv.Hi == NegInf }
func (iv Interval) IsTop() bool    { return iv.Lo == NegInf && iv.Hi == PosInf }

func (iv Interval) Contains(v int64) bool {
	if iv.IsBottom() {
		return false
	}
	inRange := iv.Lo <= v && v <= iv.Hi
	if inRange && v == 0 && iv.ExcludeZero {
		return false
	}
	return inRange
}

// DefinitelyNotZero is true iff 0 is outside [Lo, Hi], or ExcludeZero holds
// while the raw range still straddles zero.
func (iv Interval) DefinitelyNotZero() bool {
	if iv.Lo > 0 || iv.Hi < 0 {
		return true
	}
	return iv.ExcludeZero && iv.Lo <= 0 && 0 <= iv.Hi
}

func (iv Interval) CanBeZero() bool { return iv.Contains(0) }

func (iv Interval) Join(other Interval) Interval {
	if iv.IsBottom() {
		return other
	}
	if other.IsBottom() {
		return iv
	}
	return NewInterval(min64(iv.Lo, other.Lo), max64(iv.Hi, other.Hi), iv.ExcludeZero && other.ExcludeZero)
}

func (iv Interval) Meet(other Interval) Interval {
	if iv.IsBottom() || other.IsBottom() {
		return IntervalBottom()
	}
	lo := max64(iv.Lo, other.Lo)
	hi := min64(iv.Hi, other.Hi)
	if lo > hi {
		return IntervalBottom()
	}
	return NewInterval(lo, hi, iv.ExcludeZero || other.ExcludeZero)
}

// Widen implements the constants-anchored widening of spec.md §4.2: once an
// endpoint moves outward, it snaps to the nearest method-local constant
// beyond it (or to infinity if none exists), instead of jumping straight to
// infinity the way a naive widening would.
func (iv Interval) Widen(other Interval, constants map[int64]struct{}) Interval {
	if iv.IsBottom() {
		return other
	}
	if other.IsBottom() {
		return iv
	}

	anchors := make([]int64, 0, len(constants)+2)
	for c := range constants {
		anchors = append(anchors, c)
	}
	anchors = append(anchors, iv.Lo, iv.Hi)
	sort.Slice(anchors, func(i, j int) bool { return anchors[i] < anchors[j] })

	newLo := iv.Lo
	if other.Lo < iv.Lo {
		newLo = NegInf
		for i := len(anchors) - 1; i >= 0; i-- {
			if anchors[i] <= other.Lo {
				newLo = anchors[i]
				break
			}
		}
	}

	newHi := iv.Hi
	if other.Hi > iv.Hi {
		newHi = PosInf
		for _, c := range anchors {
			if c >= other.Hi {
				newHi = c
				break
			}
		}
	}

	return NewInterval(newLo, newHi, false)
}

func (iv Interval) Add(other Interval) Interval {
	if iv.IsBottom() || other.IsBottom() {
		return IntervalBottom()
	}
	return NewInterval(addSat(iv.Lo, other.Lo), addSat(iv.Hi, other.Hi), false)
}

func (iv Interval) Sub(other Interval) Interval {
	if iv.IsBottom() || other.IsBottom() {
		return IntervalBottom()
	}
	return NewInterval(subSat(iv.Lo, other.Hi), subSat(iv.Hi, other.Lo), false)
}

func (iv Interval) Mul(other Interval) Interval {
	if iv.IsBottom() || other.IsBottom() {
		return IntervalBottom()
	}
	products := [4]int64{
		mulSat(iv.Lo, other.Lo),
		mulSat(iv.Lo, other.Hi),
		mulSat(iv.Hi, other.Lo),
		mulSat(iv.Hi, other.Hi),
	}
	lo, hi := products[0], products[0]
	for _, p := range products[1:] {
		lo = min64(lo, p)
		hi = max64(hi, p)
	}
	return NewInterval(lo, hi, false)
}

// Div implements spec.md §4.2: any interval containing 0 is rejected unless
// ExcludeZero is set, in which case the result is soundly widened to top
// rather than refined further.
func (iv Interval) Div(other Interval) (Interval, error) {
	if iv.IsBottom() || other.IsBottom() {
		return IntervalBottom(), nil
	}
	if other.Lo <= 0 && 0 <= other.Hi && !other.ExcludeZero {
		return IntervalBottom(), ErrAbstractDivByZero
	}
	if other.ExcludeZero && other.Lo <= 0 && 0 <= other.Hi {
		return IntervalTop(), nil
	}
	quotients := [4]int64{
		divSat(iv.Lo, other.Lo),
		divSat(iv.Lo, other.Hi),
		divSat(iv.Hi, other.Lo),
		divSat(iv.Hi, other.Hi),
	}
	lo, hi := quotients[0], quotients[0]
	for _, q := range quotients[1:] {
		lo = min64(lo, q)
		hi = max64(hi, q)
	}
	return NewInterval(lo, hi, false), nil
}

func (iv Interval) Neg() Interval {
	if iv.IsBottom() {
		return IntervalBottom()
	}
	return NewInterval(negSat(iv.Hi), negSat(iv.Lo), false)
}

func (iv Interval) LessEq(other Interval) bool {
	if iv.IsBottom() {
		return true
	}
	if other.IsBottom() {
		return false
	}
	return other.Lo <= iv.Lo && iv.Hi <= other.Hi
}

func (iv Interval) Equal(other Interval) bool {
	return iv.Lo == other.Lo && iv.Hi == other.Hi && iv.ExcludeZero == other.ExcludeZero
}

func (iv Interval) String() string {
	if iv.IsBottom() {
		return "EMPTY"
	}
	lo, hi := "", ""
	if iv.Lo == NegInf {
		lo = "-inf"
	} else {
		lo = fmt.Sprintf("%d", iv.Lo)
	}
	if iv.Hi == PosInf {
		hi = "+inf"
	} else {
		hi = fmt.Sprintf("%d", iv.Hi)
	}
	s := fmt.Sprintf("[%s,%s]", lo, hi)
	if iv.ExcludeZero {
		s += "\\{0}"
	}
	return s
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func addSat(a, b int64) int64 {
	if a == NegInf || b == NegInf {
		return NegInf
	}
	if a == PosInf || b == PosInf {
		return PosInf
	}
	return a + b
}

func subSat(a, b int64) int64 {
	return addSat(a, negSat(b))
}

func negSat(a int64) int64 {
	switch a {
	case NegInf:
		return PosInf
	case PosInf:
		return NegInf
	default:
		return -a
	}
}

func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	aInf, bInf := a == NegInf || a == PosInf, b == NegInf || b == PosInf
	if aInf || bInf {
		neg := (a < 0) != (b < 0)
		if neg {
			return NegInf
		}
		return PosInf
	}
	return a * b
}

func divSat(a, b int64) int64 {
	if b == 0 {
		if a >= 0 {
			return PosInf
		}
		return NegInf
	}
	aInf, bInf := a == NegInf || a == PosInf, b == NegInf || b == PosInf
	if aInf && !bInf {
		neg := (a < 0) != (b < 0)
		if neg {
			return NegInf
		}
		return PosInf
	}
	if bInf {
		return 0
	}
	return a / b
}
