package engine

import (
	"testing"

	"javaflow/internal/decode"
	"javaflow/internal/domain"
)

// TestCondBranchBinaryRefinesLoopBoundOnIntervalDomain exercises spec.md
// §8 scenario 4 directly against the transfer function: an if_icmpge
// against the constant 10 must narrow the matched local to lo=10 on the
// branch that takes the jump, and to hi=9 on the branch that falls
// through.
func TestCondBranchBinaryRefinesLoopBoundOnIntervalDomain(t *testing.T) {
	instr := decode.Instruction{ByteOffset: 2, Op: "if_icmpge", Operands: []any{100}}
	tr := &transferer{next: map[int]int{2: 3}}

	frame := NewFrame()
	frame.Locals[0] = IntVal(domain.NewIntInterval(domain.IntervalTop()))
	frame.Push(frame.Locals[0])
	frame.Push(IntVal(domain.NewIntInterval(domain.IntervalFromConcrete(10))))

	branchTo := func(target int, f Frame) successor { return successor{pc: target, frame: f} }
	succs := tr.condBranchBinary(instr, &frame, branchTo, nil)
	if len(succs) != 2 {
		t.Fatalf("want 2 successors, got %d: %+v", len(succs), succs)
	}

	var trueSucc, falseSucc *successor
	for i := range succs {
		switch succs[i].pc {
		case 100:
			trueSucc = &succs[i]
		case 3:
			falseSucc = &succs[i]
		}
	}
	if trueSucc == nil || falseSucc == nil {
		t.Fatalf("expected one successor at the branch target and one at the fallthrough: %+v", succs)
	}
	if got := trueSucc.frame.Locals[0].Int.Interval; got.Lo != 10 {
		t.Errorf("true branch (i>=10) should narrow local 0 to lo=10, got %v", got)
	}
	if got := falseSucc.frame.Locals[0].Int.Interval; got.Hi != 9 {
		t.Errorf("false branch (i<10) should narrow local 0 to hi=9, got %v", got)
	}
}

// TestCondBranchUnaryRefinesLocalOnSignDomain confirms the guarded-divide
// precision fix: ifeq against a local that could be any sign must leave
// that local as exactly {0} on the true (taken) branch and as {-,+} (zero
// excluded) on the false (fallthrough) branch.
func TestCondBranchUnaryRefinesLocalOnSignDomain(t *testing.T) {
	instr := decode.Instruction{ByteOffset: 1, Op: "ifeq", Operands: []any{10}}
	tr := &transferer{next: map[int]int{1: 2}}

	frame := NewFrame()
	frame.Locals[0] = IntVal(domain.NewIntSign(domain.SignTop))
	frame.Push(frame.Locals[0])

	branchTo := func(target int, f Frame) successor { return successor{pc: target, frame: f} }
	succs := tr.condBranchUnary(instr, &frame, branchTo, nil)
	if len(succs) != 2 {
		t.Fatalf("want 2 successors, got %d: %+v", len(succs), succs)
	}

	for _, s := range succs {
		switch s.pc {
		case 10:
			if got := s.frame.Locals[0].Int.Sign; got != domain.SignZero {
				t.Errorf("true branch (i==0) should narrow local 0 to {0}, got %v", got)
			}
		case 2:
			if got := s.frame.Locals[0].Int.Sign; got.CanBeZero() {
				t.Errorf("false branch (i!=0) should exclude zero from local 0, got %v", got)
			}
		default:
			t.Errorf("unexpected successor pc %d", s.pc)
		}
	}
}

// TestCondBranchUnaryPrunesInfeasibleIntervalBranch confirms Interval
// unary branches are now pruned as well as refined: a definitely-nonzero
// local can never take the "equal to zero" branch.
func TestCondBranchUnaryPrunesInfeasibleIntervalBranch(t *testing.T) {
	instr := decode.Instruction{ByteOffset: 1, Op: "ifeq", Operands: []any{10}}
	tr := &transferer{next: map[int]int{1: 2}}

	frame := NewFrame()
	frame.Locals[0] = IntVal(domain.NewIntInterval(domain.NewInterval(1, 5, false)))
	frame.Push(frame.Locals[0])

	branchTo := func(target int, f Frame) successor { return successor{pc: target, frame: f} }
	succs := tr.condBranchUnary(instr, &frame, branchTo, nil)
	if len(succs) != 1 {
		t.Fatalf("a definitely-nonzero local should prune the ifeq-taken branch, got %d successors: %+v", len(succs), succs)
	}
	if succs[0].pc != 2 {
		t.Errorf("surviving successor should be the fallthrough, got pc=%d", succs[0].pc)
	}
}

// TestClassifyThrowBackwardScanCatchesAssertionSeparatedByGoto covers the
// case targetThrowsAssertion's forward scan can't: a goto sits between
// the AssertionError construction and the athrow, so only the backward
// scan run at the athrow itself can classify the throw correctly.
func TestClassifyThrowBackwardScanCatchesAssertionSeparatedByGoto(t *testing.T) {
	m := method("separatedThrow",
		decode.Instruction{ByteOffset: 0, Op: "new", Operands: []any{"AssertionError"}},
		decode.Instruction{ByteOffset: 1, Op: "goto", Operands: []any{3}},
		decode.Instruction{ByteOffset: 2, Op: "return"},
		decode.Instruction{ByteOffset: 3, Op: "athrow"},
	)
	a := NewAnalyzer(DefaultConfig())
	res, err := a.Analyze(m)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Probabilities[OutcomeAssertionError] != 100 {
		t.Errorf("probabilities = %v, want 100%% assertion-error", res.Probabilities)
	}
}

// TestClassifyThrowBackwardScanGenericException confirms a throw that was
// never preceded by an AssertionError construction still reports the
// generic error outcome, not assertion-error.
func TestClassifyThrowBackwardScanGenericException(t *testing.T) {
	m := method("genericThrow",
		decode.Instruction{ByteOffset: 0, Op: "new", Operands: []any{"IllegalStateException"}},
		decode.Instruction{ByteOffset: 1, Op: "athrow"},
	)
	a := NewAnalyzer(DefaultConfig())
	res, err := a.Analyze(m)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Probabilities[OutcomeError] != 100 {
		t.Errorf("probabilities = %v, want 100%% error", res.Probabilities)
	}
}
