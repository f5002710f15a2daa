package engine

import (
	"javaflow/internal/decode"
	"javaflow/internal/domain"
)

// transferer holds the per-method context shared by every transfer
// function: the config (which domains are active), the decoded
// instructions, the fallthrough-successor map, and the outcome collector.
type transferer struct {
	cfg       Config
	method    decode.Method
	byOffset  map[int]decode.Instruction
	next      map[int]int
	order     []int
	collector *Collector
}

// step applies one instruction's transfer function to frame (consumed) and
// returns the resulting (pc, frame) successor pairs. A terminal outcome
// (return, or a definite error) produces no successors; it is instead
// recorded on the collector.
func (t *transferer) step(pc int, instr decode.Instruction, frame *Frame) []successor {
	fallthrough_ := func() []successor {
		nx := t.next[pc]
		if nx < 0 {
			return nil
		}
		return []successor{{pc: nx, frame: *frame}}
	}
	branchTo := func(target int, f Frame) successor { return successor{pc: target, frame: f} }

	switch instr.Op {
	case "iconst", "bipush", "sipush", "ldc_int":
		v := 0
		if len(instr.Operands) > 0 {
			if n, ok := toInt64(instr.Operands[0]); ok {
				v = int(n)
			}
		}
		frame.Push(IntVal(domain.IntFromConcrete(t.cfg.IntKind, v)))
		return fallthrough_()

	case "ldc_string":
		s := ""
		if len(instr.Operands) > 0 {
			if str, ok := instr.Operands[0].(string); ok {
				s = str
			}
		}
		frame.Push(StringVal(domain.StringFromConcrete(t.cfg.StringKind, s)))
		return fallthrough_()

	case "aconst_null":
		frame.Push(RefVal(domain.True))
		return fallthrough_()

	case "iload":
		frame.Push(frame.Locals[slotOf(instr)])
		return fallthrough_()

	case "aload":
		frame.Push(frame.Locals[slotOf(instr)])
		return fallthrough_()

	case "istore", "astore":
		v := frame.Pop()
		frame.Locals[slotOf(instr)] = v
		return fallthrough_()

	case "pop":
		frame.Pop()
		return fallthrough_()

	case "dup":
		top := frame.Peek()
		frame.Push(top)
		return fallthrough_()

	case "iadd", "isub", "imul":
		b, a := frame.Pop(), frame.Pop()
		frame.Push(IntVal(intBinOp(instr.Op, a.Int, b.Int)))
		return fallthrough_()

	case "idiv", "irem":
		b, a := frame.Pop(), frame.Pop()
		return t.divOrRem(pc, instr.Op, a, b, frame, fallthrough_)

	case "ineg":
		a := frame.Pop()
		frame.Push(IntVal(a.Int.Neg()))
		return fallthrough_()

	case "goto":
		target := intOperand(instr)
		return []successor{branchTo(target, *frame)}

	case "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle":
		return t.condBranchUnary(instr, frame, branchTo, fallthrough_)

	case "if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple":
		return t.condBranchBinary(instr, frame, branchTo, fallthrough_)

	case "ifnull", "ifnonnull":
		return t.condBranchNull(instr, frame, branchTo, fallthrough_)

	case "ireturn", "areturn", "return":
		t.collector.Record(OutcomeOK, pc)
		return nil

	case "athrow":
		t.collector.Record(t.classifyThrow(pc), pc)
		return nil

	case "new":
		if t.targetThrowsAssertion(pc, instr) {
			t.collector.Record(OutcomeAssertionError, pc)
			return nil
		}
		frame.Push(RefVal(domain.False))
		return fallthrough_()

	case "invokevirtual":
		return t.invokeVirtual(pc, instr, frame, fallthrough_)

	case "invokestatic":
		return t.invokeStatic(pc, instr, frame, fallthrough_)

	case "invokedynamic":
		return t.invokeDynamicConcat(instr, frame, fallthrough_)

	case "newarray", "anewarray":
		frame.Pop() // length
		frame.Push(RefVal(domain.False))
		return fallthrough_()

	case "arraylength":
		arr := frame.Pop()
		if arr.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(domain.IntTop(t.cfg.IntKind)))
		return fallthrough_()

	case "iaload", "aaload":
		idx, arr := frame.Pop(), frame.Pop()
		if arr.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		if idx.Kind == KindInt && idx.Int.Kind == domain.IntInterval && idx.Int.Interval.Lo < 0 {
			t.collector.Warn(pc, "index may be negative")
		}
		if instr.Op == "iaload" {
			frame.Push(IntVal(domain.IntTop(t.cfg.IntKind)))
		} else {
			frame.Push(RefVal(domain.Unknown))
		}
		return fallthrough_()

	case "iastore", "aastore":
		frame.Pop()
		idx, arr := frame.Pop(), frame.Pop()
		_ = idx
		if arr.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		return fallthrough_()

	default:
		return fallthrough_()
	}
}

func slotOf(instr decode.Instruction) int {
	if len(instr.Operands) == 0 {
		return 0
	}
	n, _ := toInt64(instr.Operands[0])
	return int(n)
}

func intOperand(instr decode.Instruction) int {
	if len(instr.Operands) == 0 {
		return 0
	}
	n, _ := toInt64(instr.Operands[0])
	return int(n)
}

func intBinOp(op string, a, b domain.IntValue) domain.IntValue {
	switch op {
	case "iadd":
		return a.Add(b)
	case "isub":
		return a.Sub(b)
	case "imul":
		return a.Mul(b)
	default:
		return a
	}
}

// divOrRem implements spec.md §4.1/§4.2/§4.8's error/warning split: a
// divisor that can never be zero proceeds silently; one that might be zero
// records a warning and continues with a widened (top) result, since the
// engine can't know whether the zero branch was actually taken; one that is
// definitely zero terminates the path outright.
func (t *transferer) divOrRem(pc int, op string, a, b Value, frame *Frame, fallthrough_ func() []successor) []successor {
	result, err := a.Int.Div(b.Int)
	if err == nil {
		frame.Push(IntVal(result))
		return fallthrough_()
	}
	if b.Int.Kind == domain.IntInterval {
		if b.Int.Interval.IsBottom() || (b.Int.Interval.Lo == 0 && b.Int.Interval.Hi == 0) {
			t.collector.Record(OutcomeDivideByZero, pc)
			return nil
		}
	} else if b.Int.Sign.IsDefinitelyZero() {
		t.collector.Record(OutcomeDivideByZero, pc)
		return nil
	}
	t.collector.Warn(pc, "possible division by zero")
	frame.Push(IntVal(domain.IntTop(t.cfg.IntKind)))
	return fallthrough_()
}

// condBranchUnary implements a single-operand comparison (ifeq/ifne/etc),
// always against the implicit constant zero. Per spec.md §4.8, when the
// compared value is also sitting in a local (the common `iload n; ifeq`
// shape), that local is narrowed on each branch to the sub-range the
// branch requires — this is the main source of precision for
// assertion-error detection. Infeasible branches are pruned entirely.
func (t *transferer) condBranchUnary(instr decode.Instruction, frame *Frame, branchTo func(int, Frame) successor, fallthrough_ func() []successor) []successor {
	v := frame.Pop()
	target := intOperand(instr)
	op := unaryCompareOp(instr.Op)

	takeTrue, takeFalse := true, true
	var trueVal, falseVal Value
	refined := false
	if v.Kind == KindInt && op != "" {
		switch v.Int.Kind {
		case domain.IntSign:
			trueSign, falseSign := signRefine(v.Int.Sign, domain.SignZero, op)
			takeTrue, takeFalse = !trueSign.IsBottom(), !falseSign.IsBottom()
			trueVal, falseVal = IntVal(domain.NewIntSign(trueSign)), IntVal(domain.NewIntSign(falseSign))
			refined = true
		case domain.IntInterval:
			trueIv, falseIv := intervalRefine(v.Int.Interval, op, 0)
			takeTrue, takeFalse = !trueIv.IsBottom(), !falseIv.IsBottom()
			trueVal, falseVal = IntVal(domain.NewIntInterval(trueIv)), IntVal(domain.NewIntInterval(falseIv))
			refined = true
		}
	}

	var out []successor
	if takeTrue {
		out = append(out, branchTo(target, refineLocalFrame(frame, v, trueVal, refined)))
	}
	if takeFalse {
		if nx := t.next[instr.ByteOffset]; nx >= 0 {
			out = append(out, successor{pc: nx, frame: refineLocalFrame(frame, v, falseVal, refined)})
		}
	}
	return out
}

func unaryCompareOp(op string) string {
	switch op {
	case "ifeq":
		return "eq"
	case "ifne":
		return "ne"
	case "iflt":
		return "lt"
	case "ifge":
		return "ge"
	case "ifgt":
		return "gt"
	case "ifle":
		return "le"
	default:
		return ""
	}
}

// condBranchBinary implements a two-operand comparison (if_icmp*): val2
// (stack top) against val1 (pushed first). Per spec.md §4.8 and mirroring
// the original's by-value local-matching heuristic, if val1 currently
// equals the value held by some local, that local is narrowed on each
// branch using whatever val2 is known to be — a single constant in the
// Interval domain, or just its sign bucket in the Sign domain. This
// generalizes the original's zero-only special case to any constant, which
// spec.md §8 scenario 4 requires (a loop guard `if_icmpge` against 10 must
// narrow the loop variable to lo >= 10 at the exit).
func (t *transferer) condBranchBinary(instr decode.Instruction, frame *Frame, branchTo func(int, Frame) successor, fallthrough_ func() []successor) []successor {
	val2 := frame.Pop()
	val1 := frame.Pop()
	target := intOperand(instr)
	op := binaryCompareOp(instr.Op)

	takeTrue, takeFalse := true, true
	var trueVal, falseVal Value
	refined := false
	if val1.Kind == KindInt && val2.Kind == KindInt && op != "" && val1.Int.Kind == val2.Int.Kind {
		switch val1.Int.Kind {
		case domain.IntSign:
			trueSign, falseSign := signRefine(val1.Int.Sign, val2.Int.Sign, op)
			takeTrue, takeFalse = !trueSign.IsBottom(), !falseSign.IsBottom()
			trueVal, falseVal = IntVal(domain.NewIntSign(trueSign)), IntVal(domain.NewIntSign(falseSign))
			refined = true
		case domain.IntInterval:
			if c, ok := singletonOf(val2.Int.Interval); ok {
				trueIv, falseIv := intervalRefine(val1.Int.Interval, op, c)
				takeTrue, takeFalse = !trueIv.IsBottom(), !falseIv.IsBottom()
				trueVal, falseVal = IntVal(domain.NewIntInterval(trueIv)), IntVal(domain.NewIntInterval(falseIv))
				refined = true
			}
		}
	}

	var out []successor
	if takeTrue {
		out = append(out, branchTo(target, refineLocalFrame(frame, val1, trueVal, refined)))
	}
	if takeFalse {
		if nx := t.next[instr.ByteOffset]; nx >= 0 {
			out = append(out, successor{pc: nx, frame: refineLocalFrame(frame, val1, falseVal, refined)})
		}
	}
	return out
}

func binaryCompareOp(op string) string {
	switch op {
	case "if_icmpeq":
		return "eq"
	case "if_icmpne":
		return "ne"
	case "if_icmplt":
		return "lt"
	case "if_icmpge":
		return "ge"
	case "if_icmpgt":
		return "gt"
	case "if_icmple":
		return "le"
	default:
		return ""
	}
}

// refineLocalFrame writes refined into whichever local slot currently
// holds a value equal to compared (the original's by-value local-matching
// heuristic, not load-site provenance tracking), cloning the frame only
// when a match is found and a refinement is available. Both branches call
// this against the same pre-branch frame, so each gets its own clone
// rather than sharing mutable Locals maps.
func refineLocalFrame(frame *Frame, compared, refined Value, haveRefinement bool) Frame {
	if !haveRefinement {
		return *frame
	}
	idx, ok := findMatchingLocal(frame, compared)
	if !ok {
		return *frame
	}
	out := frame.Clone()
	out.Locals[idx] = refined
	return out
}

// findMatchingLocal looks up the local slot currently holding a value
// equal to v.
func findMatchingLocal(frame *Frame, v Value) (int, bool) {
	for idx, lv := range frame.Locals {
		if lv.Kind == v.Kind && lv.String() == v.String() {
			return idx, true
		}
	}
	return 0, false
}

// signRefine narrows each sign bucket present in s into the buckets that
// survive the true and false sides of "x OP c", where c's own sign set is
// known (a singleton SignZero/SignNeg/SignPos for a definite constant, or
// a wider set when only a sign range is known). Generalizes spec.md
// §4.8's zero-comparison rule — the buckets are treated as the extended
// ranges they represent ((-inf,-1], {0}, [1,+inf)) and compared the same
// way intervalRefine compares exact bounds. A bucket whose range
// straddles c's range survives on both sides, since Sign doesn't track
// magnitude beyond its own bucket.
func signRefine(s, c domain.Sign, op string) (trueBranch, falseBranch domain.Sign) {
	clo, chi := signRange(c)
	for _, bucket := range []domain.Sign{domain.SignNeg, domain.SignZero, domain.SignPos} {
		if s&bucket == 0 {
			continue
		}
		blo, bhi := signRange(bucket)
		canTrue, canFalse := rangeVerdict(blo, bhi, clo, chi, op)
		if canTrue {
			trueBranch |= bucket
		}
		if canFalse {
			falseBranch |= bucket
		}
	}
	return
}

// signRange returns the extended-integer range a (possibly non-singleton)
// Sign set represents, using the same NegInf/PosInf sentinels Interval
// uses. An empty Sign set yields an empty (lo > hi) range.
func signRange(s domain.Sign) (lo, hi int64) {
	lo, hi = domain.PosInf, domain.NegInf
	switch {
	case s&domain.SignNeg != 0:
		lo = domain.NegInf
	case s&domain.SignZero != 0:
		lo = 0
	case s&domain.SignPos != 0:
		lo = 1
	}
	switch {
	case s&domain.SignPos != 0:
		hi = domain.PosInf
	case s&domain.SignZero != 0:
		hi = 0
	case s&domain.SignNeg != 0:
		hi = -1
	}
	return
}

// rangeVerdict reports whether some (x, c) pair drawn from [xlo,xhi] x
// [clo,chi] can satisfy "x op c" (canTrue) and whether some pair can fail
// it (canFalse); both are true when the ranges straddle the comparison
// boundary and neither side is determined. Shared by signRefine (bucket
// ranges) and intervalRefine (exact bounds).
func rangeVerdict(xlo, xhi, clo, chi int64, op string) (canTrue, canFalse bool) {
	switch op {
	case "eq":
		canTrue = xlo <= chi && clo <= xhi
		canFalse = !(xlo == xhi && clo == chi && xlo == clo)
	case "ne":
		t, f := rangeVerdict(xlo, xhi, clo, chi, "eq")
		canTrue, canFalse = f, t
	case "lt":
		canTrue = xlo < chi
		canFalse = xhi >= clo
	case "ge":
		t, f := rangeVerdict(xlo, xhi, clo, chi, "lt")
		canTrue, canFalse = f, t
	case "gt":
		canTrue = xhi > clo
		canFalse = xlo <= chi
	case "le":
		t, f := rangeVerdict(xlo, xhi, clo, chi, "gt")
		canTrue, canFalse = f, t
	default:
		canTrue, canFalse = true, true
	}
	return
}

// intervalRefine narrows iv for a comparison "x OP c" into the true-branch
// and false-branch intervals. Generalizes spec.md §4.8's zero-comparison
// rule (stated there only in terms of excluding zero) to any known
// constant c, so e.g. a loop guard `if_icmpge` against the constant 10
// narrows the compared local to lo >= 10 on the branch that took the
// jump, per spec.md §8 scenario 4.
func intervalRefine(iv domain.Interval, op string, c int64) (trueIv, falseIv domain.Interval) {
	if iv.IsBottom() {
		return domain.IntervalBottom(), domain.IntervalBottom()
	}
	switch op {
	case "eq":
		trueIv = iv.Meet(domain.NewInterval(c, c, false))
		switch {
		case iv.Lo == c && iv.Hi == c:
			falseIv = domain.IntervalBottom()
		case iv.Lo == c:
			falseIv = domain.NewInterval(c+1, iv.Hi, false)
		case iv.Hi == c:
			falseIv = domain.NewInterval(iv.Lo, c-1, false)
		case iv.Lo < c && c < iv.Hi:
			falseIv = domain.NewInterval(iv.Lo, iv.Hi, c == 0)
		default:
			falseIv = iv
		}
	case "ne":
		t, f := intervalRefine(iv, "eq", c)
		trueIv, falseIv = f, t
	case "lt":
		trueIv = domain.NewInterval(iv.Lo, minInt64(iv.Hi, c-1), false)
		falseIv = domain.NewInterval(maxInt64(iv.Lo, c), iv.Hi, false)
	case "ge":
		t, f := intervalRefine(iv, "lt", c)
		trueIv, falseIv = f, t
	case "gt":
		trueIv = domain.NewInterval(maxInt64(iv.Lo, c+1), iv.Hi, false)
		falseIv = domain.NewInterval(iv.Lo, minInt64(iv.Hi, c), false)
	case "le":
		t, f := intervalRefine(iv, "gt", c)
		trueIv, falseIv = f, t
	default:
		trueIv, falseIv = iv, iv
	}
	return
}

// singletonOf reports the exact constant a known-singleton interval
// represents, used to recover the comparison constant from an operand
// that is itself a decoded abstract value rather than a raw literal.
func singletonOf(iv domain.Interval) (int64, bool) {
	if iv.IsBottom() || iv.Lo != iv.Hi || iv.Lo == domain.NegInf || iv.Lo == domain.PosInf {
		return 0, false
	}
	return iv.Lo, true
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func (t *transferer) condBranchNull(instr decode.Instruction, frame *Frame, branchTo func(int, Frame) successor, fallthrough_ func() []successor) []successor {
	v := frame.Pop()
	target := intOperand(instr)

	isNullTarget := instr.Op == "ifnull"
	var out []successor
	if v.IsPossiblyNull() || !v.IsDefinitelyNull() {
		nullFrame := *frame
		notNullFrame := refineLocalFrame(frame, v, v.SetNotNull(), true)
		if isNullTarget {
			if v.IsPossiblyNull() {
				out = append(out, branchTo(target, nullFrame))
			}
			if !v.IsDefinitelyNull() {
				if nx := t.next[instr.ByteOffset]; nx >= 0 {
					out = append(out, successor{pc: nx, frame: notNullFrame})
				}
			}
		} else {
			if !v.IsDefinitelyNull() {
				out = append(out, branchTo(target, notNullFrame))
			}
			if v.IsPossiblyNull() {
				if nx := t.next[instr.ByteOffset]; nx >= 0 {
					out = append(out, successor{pc: nx, frame: nullFrame})
				}
			}
		}
	}
	return out
}

// classifyThrow implements spec.md §4.8's athrow-side backward scan: walk
// bytecode offsets backward from pc looking for the nearest preceding
// `new`, and classify by its class name. This is deliberately the mirror
// image of targetThrowsAssertion's forward scan from the `new` site: that
// one decides whether stepping over a `new AssertionError` should
// pre-empt the outcome before the throw is even reached; this one decides
// what a throw actually was once control gets there, and so also catches
// a construction the forward scan missed (pattern farther than its
// window away, or separated from the throw by a goto/return).
func (t *transferer) classifyThrow(pc int) Outcome {
	for i := len(t.order) - 1; i >= 0; i-- {
		off := t.order[i]
		if off >= pc {
			continue
		}
		in, ok := t.byOffset[off]
		if !ok || in.Op != "new" {
			continue
		}
		className := ""
		if len(in.Operands) > 0 {
			if s, ok := in.Operands[0].(string); ok {
				className = s
			}
		}
		if className == "AssertionError" || className == "java/lang/AssertionError" {
			return OutcomeAssertionError
		}
		return OutcomeError
	}
	return OutcomeError
}

// targetThrowsAssertion implements spec.md §4.8's forward bytecode scan:
// looking up to 40 instructions ahead of a `new AssertionError` for the
// `athrow` that ends the `new` -> `<init>` -> `athrow` pattern, stopping
// early at a return or goto. The instructions in between, the `<init>`
// call included, are not checked.
func (t *transferer) targetThrowsAssertion(pc int, instr decode.Instruction) bool {
	className := ""
	if len(instr.Operands) > 0 {
		if s, ok := instr.Operands[0].(string); ok {
			className = s
		}
	}
	if className != "AssertionError" && className != "java/lang/AssertionError" {
		return false
	}
	const window = 40
	cur := pc
	for i := 0; i < window; i++ {
		nx, ok := t.next[cur]
		if !ok || nx < 0 {
			return false
		}
		in, ok := t.byOffset[nx]
		if !ok {
			return false
		}
		switch in.Op {
		case "athrow":
			return true
		case "return", "ireturn", "areturn", "goto":
			return false
		}
		cur = nx
	}
	return false
}

func (t *transferer) invokeVirtual(pc int, instr decode.Instruction, frame *Frame, fallthrough_ func() []successor) []successor {
	ref := methodRef(instr)
	switch ref {
	case "String.length":
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		min, max := recv.Str.Length()
		frame.Push(IntVal(domain.NewIntInterval(domain.NewInterval(int64(min), int64(clampMax(max)), false))))
		return fallthrough_()

	case "String.isEmpty":
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(triToIntValue(recv.Str.IsEmpty(), t.cfg.IntKind)))
		return fallthrough_()

	case "String.startsWith":
		arg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(triToIntValue(recv.Str.StartsWith(literalOf(arg)), t.cfg.IntKind)))
		return fallthrough_()

	case "String.endsWith":
		arg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(triToIntValue(recv.Str.EndsWith(literalOf(arg)), t.cfg.IntKind)))
		return fallthrough_()

	case "String.equals":
		arg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(triToIntValue(recv.Str.Equals(arg.Str), t.cfg.IntKind)))
		return fallthrough_()

	case "String.contains":
		arg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(IntVal(triToIntValue(recv.Str.Contains(literalOf(arg)), t.cfg.IntKind)))
		return fallthrough_()

	case "String.concat":
		arg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() || arg.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		frame.Push(StringVal(recv.Str.Concat(arg.Str)))
		return fallthrough_()

	case "String.substring":
		// Operands[1] optionally carries the overload's arity (1 or 2
		// args); the args themselves are still popped off the stack.
		argc := 1
		if len(instr.Operands) > 1 {
			if n, ok := toInt64(instr.Operands[1]); ok {
				argc = int(n)
			}
		}
		hasEnd := argc == 2
		var endArg Value
		if hasEnd {
			endArg = frame.Pop()
		}
		startArg := frame.Pop()
		recv := frame.Pop()
		if recv.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		start := 0
		if startArg.Kind == KindInt && startArg.Int.Kind == domain.IntInterval {
			start = int(startArg.Int.Interval.Lo)
			if startArg.Int.Interval.Lo < 0 {
				t.collector.Record(OutcomeIndexRangeException, pc)
				return nil
			}
		}
		end := 0
		if hasEnd && endArg.Kind == KindInt && endArg.Int.Kind == domain.IntInterval {
			end = int(endArg.Int.Interval.Hi)
		}
		_, max := recv.Str.Length()
		if start > max && max != -1 {
			t.collector.Record(OutcomeIndexRangeException, pc)
			return nil
		}
		frame.Push(StringVal(recv.Str.Substring(start, end, hasEnd)))
		return fallthrough_()

	default:
		// Unrecognized method call: the receiver (if any) must still be
		// checked for null, per spec.md §4.8's scope note restricting
		// invokevirtual handling to a fixed recognised set.
		if len(frame.Stack) > 0 {
			recv := frame.Pop()
			if recv.IsDefinitelyNull() {
				t.collector.Record(OutcomeNullPointer, pc)
				return nil
			}
		}
		frame.Push(RefVal(domain.Unknown))
		return fallthrough_()
	}
}

func (t *transferer) invokeStatic(pc int, instr decode.Instruction, frame *Frame, fallthrough_ func() []successor) []successor {
	ref := methodRef(instr)
	switch ref {
	case "Integer.parseInt":
		arg := frame.Pop()
		if arg.IsDefinitelyNull() {
			t.collector.Record(OutcomeNullPointer, pc)
			return nil
		}
		min, _ := arg.Str.Length()
		if min == 0 {
			// An empty string definitely fails to parse.
			t.collector.Record(OutcomeNumberFormatError, pc)
			return nil
		}
		t.collector.Warn(pc, "parseInt argument not provably numeric")
		frame.Push(IntVal(domain.IntTop(t.cfg.IntKind)))
		return fallthrough_()
	default:
		frame.Push(RefVal(domain.Unknown))
		return fallthrough_()
	}
}

// invokeDynamicConcat folds the common javac-generated string-concatenation
// invokedynamic call site into an ordinary Concat, per spec.md §4.8. Any
// non-string operand is first widened to the "some digits" fallback of
// spec.md §4.5.
func (t *transferer) invokeDynamicConcat(instr decode.Instruction, frame *Frame, fallthrough_ func() []successor) []successor {
	argc := 2
	if len(instr.Operands) > 0 {
		if n, ok := toInt64(instr.Operands[0]); ok {
			argc = int(n)
		}
	}
	if argc < 1 || argc > len(frame.Stack) {
		argc = len(frame.Stack)
	}
	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = frame.Pop()
	}
	result := domain.StringFromConcrete(t.cfg.StringKind, "")
	for _, a := range args {
		var sv domain.StringValue
		if a.Kind == KindString {
			sv = a.Str
		} else {
			sv = domain.StringFromUntypedTop(t.cfg.StringKind)
		}
		result = result.Concat(sv)
	}
	frame.Push(StringVal(result))
	return fallthrough_()
}

func methodRef(instr decode.Instruction) string {
	if len(instr.Operands) == 0 {
		return ""
	}
	s, _ := instr.Operands[0].(string)
	return s
}

func literalOf(v Value) string {
	if v.Kind != KindString {
		return ""
	}
	if v.Str.Kind == domain.StringBricks {
		if len(v.Str.Bricks.Bricks) == 1 {
			for s := range v.Str.Bricks.Bricks[0].Strings {
				return s
			}
		}
		return ""
	}
	for p := range v.Str.PS.Prefixes {
		return p
	}
	return ""
}

func clampMax(max int) int64 {
	if max < 0 {
		return domain.PosInf
	}
	return int64(max)
}

func triToIntValue(tri domain.Tri, kind domain.IntKind) domain.IntValue {
	switch tri {
	case domain.True:
		return domain.IntFromConcrete(kind, 1)
	case domain.False:
		return domain.IntFromConcrete(kind, 0)
	default:
		return domain.IntTop(kind)
	}
}
