package domain

// IntKind selects which integer domain a frame is configured to use, per
// spec.md §4.5. A frame is fixed to one kind for its whole analysis.
type IntKind int

const (
	IntSign IntKind = iota
	IntInterval
)

// StringKind selects which string domain a frame is configured to use.
type StringKind int

const (
	StringPrefixSuffix StringKind = iota
	StringBricks
)

// IntValue is the uniform surface over Sign and Interval so the engine's
// transfer functions don't need to branch on which domain is configured,
// per spec.md §4.5.
type IntValue struct {
	Kind     IntKind
	Sign     Sign
	Interval Interval
}

func NewIntSign(s Sign) IntValue         { return IntValue{Kind: IntSign, Sign: s} }
func NewIntInterval(iv Interval) IntValue { return IntValue{Kind: IntInterval, Interval: iv} }

func IntTop(kind IntKind) IntValue {
	if kind == IntInterval {
		return NewIntInterval(IntervalTop())
	}
	return NewIntSign(SignTop)
}

func IntFromConcrete(kind IntKind, v int) IntValue {
	if kind == IntInterval {
		return NewIntInterval(IntervalFromConcrete(int64(v)))
	}
	return NewIntSign(SignOf(v))
}

func (v IntValue) IsBottom() bool {
	if v.Kind == IntInterval {
		return v.Interval.IsBottom()
	}
	return v.Sign.IsBottom()
}

func (v IntValue) Join(other IntValue) IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Join(other.Interval))
	}
	return NewIntSign(v.Sign.Join(other.Sign))
}

// Widen only has lattice-height meaning for Interval; Sign has finite
// height on its own and Join already suffices there, per spec.md §4.1/4.2.
func (v IntValue) Widen(other IntValue, constants map[int64]struct{}) IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Widen(other.Interval, constants))
	}
	return NewIntSign(v.Sign.Join(other.Sign))
}

func (v IntValue) Add(other IntValue) IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Add(other.Interval))
	}
	return NewIntSign(v.Sign.Add(other.Sign))
}

func (v IntValue) Sub(other IntValue) IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Sub(other.Interval))
	}
	return NewIntSign(v.Sign.Sub(other.Sign))
}

func (v IntValue) Mul(other IntValue) IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Mul(other.Interval))
	}
	return NewIntSign(v.Sign.Mul(other.Sign))
}

func (v IntValue) Div(other IntValue) (IntValue, error) {
	if v.Kind == IntInterval {
		iv, err := v.Interval.Div(other.Interval)
		return NewIntInterval(iv), err
	}
	s, err := v.Sign.Div(other.Sign)
	return NewIntSign(s), err
}

func (v IntValue) Neg() IntValue {
	if v.Kind == IntInterval {
		return NewIntInterval(v.Interval.Neg())
	}
	return NewIntSign(v.Sign.Neg())
}

func (v IntValue) CanBeZero() bool {
	if v.Kind == IntInterval {
		return v.Interval.CanBeZero()
	}
	return v.Sign.CanBeZero()
}

func (v IntValue) DefinitelyNotZero() bool {
	if v.Kind == IntInterval {
		return v.Interval.DefinitelyNotZero()
	}
	return !v.Sign.CanBeZero()
}

func (v IntValue) String() string {
	if v.Kind == IntInterval {
		return v.Interval.String()
	}
	return v.Sign.String()
}

// StringValue is the uniform surface over PrefixSuffix and Bricks.
type StringValue struct {
	Kind   StringKind
	PS     PrefixSuffix
	Bricks BricksValue
}

func NewStringPS(p PrefixSuffix) StringValue     { return StringValue{Kind: StringPrefixSuffix, PS: p} }
func NewStringBricks(b BricksValue) StringValue { return StringValue{Kind: StringBricks, Bricks: b} }

func StringTop(kind StringKind) StringValue {
	if kind == StringBricks {
		return NewStringBricks(BricksTop())
	}
	return NewStringPS(PSTop())
}

func StringNull(kind StringKind) StringValue {
	if kind == StringBricks {
		return NewStringBricks(BricksNull())
	}
	return NewStringPS(PSNull())
}

func StringFromConcrete(kind StringKind, s string) StringValue {
	if kind == StringBricks {
		return NewStringBricks(BricksFromString(s))
	}
	return NewStringPS(PSFromString(s))
}

// StringFromUntypedTop builds the "some digits" fallback of spec.md §4.5 for
// when a numeric value is concatenated with a string and its own digits
// can't be enumerated: any digit string of length 1 to 11 (enough for the
// decimal rendering of any 32-bit int, including the sign).
func StringFromUntypedTop(kind StringKind) StringValue {
	if kind == StringBricks {
		digits := map[string]struct{}{}
		for c := '0'; c <= '9'; c++ {
			digits[string(c)] = struct{}{}
		}
		digits["-"] = struct{}{}
		return NewStringBricks(BricksValue{Bricks: []Brick{{Strings: digits, Min: 1, Max: 11}}})
	}
	return NewStringPS(PrefixSuffix{Prefixes: strSet(""), Suffixes: strSet(""), MinLen: 1, MaxLen: 11})
}

func (v StringValue) IsBottom() bool {
	if v.Kind == StringBricks {
		return v.Bricks.IsBottom()
	}
	return v.PS.IsBottom()
}

func (v StringValue) IsDefinitelyNull() bool {
	if v.Kind == StringBricks {
		return v.Bricks.IsDefinitelyNull()
	}
	return v.PS.IsDefinitelyNull()
}

func (v StringValue) IsPossiblyNull() bool {
	if v.Kind == StringBricks {
		return v.Bricks.IsPossiblyNull()
	}
	return v.PS.IsPossiblyNull()
}

// SetNotNull is the refinement applied after a passed null-check branch.
func (v StringValue) SetNotNull() StringValue {
	if v.Kind == StringBricks {
		b := v.Bricks
		b.CanBeNull = false
		return NewStringBricks(b)
	}
	p := v.PS
	p.CanBeNull = false
	return NewStringPS(p)
}

func (v StringValue) Join(other StringValue) StringValue {
	if v.Kind == StringBricks {
		return NewStringBricks(v.Bricks.Join(other.Bricks))
	}
	return NewStringPS(v.PS.Join(other.PS))
}

func (v StringValue) Widen(other StringValue) StringValue {
	if v.Kind == StringBricks {
		return NewStringBricks(v.Bricks.Widen(other.Bricks))
	}
	return NewStringPS(v.PS.Widen(other.PS))
}

func (v StringValue) Concat(other StringValue) StringValue {
	if v.Kind == StringBricks {
		return NewStringBricks(Concat(v.Bricks, other.Bricks))
	}
	return NewStringPS(v.PS.Concat(other.PS))
}

func (v StringValue) Length() (int, int) {
	if v.Kind == StringBricks {
		return v.Bricks.Length()
	}
	return v.PS.Length()
}

func (v StringValue) IsEmpty() Tri {
	if v.Kind == StringBricks {
		return v.Bricks.IsEmpty()
	}
	return v.PS.IsEmpty()
}

func (v StringValue) StartsWith(prefix string) Tri {
	if v.Kind == StringBricks {
		if len(v.Bricks.Bricks) > 0 && v.Bricks.Bricks[0].isSingleExact() {
			ok := True
			for s := range v.Bricks.Bricks[0].Strings {
				if !hasPrefix(s, prefix) {
					ok = Unknown
				}
			}
			return ok
		}
		return Unknown
	}
	return v.PS.StartsWith(prefix)
}

func (v StringValue) EndsWith(suffix string) Tri {
	if v.Kind == StringBricks {
		last := len(v.Bricks.Bricks) - 1
		if last >= 0 && v.Bricks.Bricks[last].isSingleExact() {
			ok := True
			for s := range v.Bricks.Bricks[last].Strings {
				if !hasSuffix(s, suffix) {
					ok = Unknown
				}
			}
			return ok
		}
		return Unknown
	}
	return v.PS.EndsWith(suffix)
}

func (v StringValue) Contains(substr string) Tri {
	if v.Kind == StringBricks {
		return Contains(v.Bricks, substr)
	}
	// Prefix/Suffix tracks only the ends of the string, never its middle.
	return Unknown
}

func (v StringValue) Equals(other StringValue) Tri {
	if v.Kind == StringBricks && other.Kind == StringBricks {
		aMin, aMax := v.Bricks.Length()
		bMin, bMax := other.Bricks.Length()
		if aMax != infinite && bMax != infinite && (aMax < bMin || bMax < aMin) {
			return False
		}
		return Unknown
	}
	return v.PS.Equals(other.PS)
}

func (v StringValue) Substring(start, end int, hasEnd bool) StringValue {
	if v.Kind == StringBricks {
		if !hasEnd {
			min, _ := v.Bricks.Length()
			end = min
		}
		return NewStringBricks(Substring(v.Bricks, start, end))
	}
	return NewStringPS(v.PS.Substring(start, end, hasEnd))
}

func (v StringValue) String() string {
	if v.Kind == StringBricks {
		return v.Bricks.String()
	}
	return v.PS.String()
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
