package engine

import (
	"fmt"

	"javaflow/internal/analyzerrors"
	"javaflow/internal/decode"
	"javaflow/internal/domain"
)

// Config selects which domain family backs the integer and string lattices
// for one analysis run, per spec.md §4.5/§6.
type Config struct {
	IntKind      domain.IntKind
	StringKind   domain.StringKind
	MaxIterations int
	// DisableWiden forces joins at loop heads instead of widening, per
	// SPEC_FULL.md §6's --no-widen flag. Diagnostic only: a method that
	// needs widening to terminate simply won't, within MaxIterations.
	DisableWiden bool
	// OnUpdate, if set, is called after every StateSet.Update — the seam
	// internal/live uses to stream fixpoint progress (spec.md §4.14). Never
	// influences the analysis.
	OnUpdate func(pc int, changed, widened bool)
}

func DefaultConfig() Config {
	return Config{IntKind: domain.IntSign, StringKind: domain.StringPrefixSuffix, MaxIterations: 1000}
}

// Result is the outcome of one analysis: the probability table, the
// distinct error set, and bookkeeping counters for reporting.
type Result struct {
	Method      string
	Probabilities map[Outcome]int
	ErrorSet    []Outcome
	Iterations  int
	Joins       int
	Widens      int
}

// Analyzer runs the worklist fixpoint over one decoded method, per
// spec.md §4.6-§4.9.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer { return &Analyzer{cfg: cfg} }

// Analyze runs the fixpoint to completion. Per spec.md §7, an
// InvariantViolation anywhere in the loop aborts the whole analysis rather
// than being folded into the outcome table.
func (a *Analyzer) Analyze(method decode.Method) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(*analyzerrors.AnalysisError); ok {
				err = ae
				return
			}
			panic(r)
		}
	}()

	byOffset := make(map[int]decode.Instruction, len(method.Instructions))
	order := make([]int, 0, len(method.Instructions))
	for _, in := range method.Instructions {
		byOffset[in.ByteOffset] = in
		order = append(order, in.ByteOffset)
	}
	next := make(map[int]int, len(order))
	for i, pc := range order {
		if i+1 < len(order) {
			next[pc] = order[i+1]
		} else {
			next[pc] = -1
		}
	}

	constants := widenConstants(method.Instructions)

	ss := NewStateSet()
	ss.DisableWiden = a.cfg.DisableWiden
	for pc := range detectLoopHeads(method.Instructions) {
		ss.LoopHeads[pc] = true
	}

	entry := NewFrame()
	for i := 0; i < method.ParamCount; i++ {
		entry.Locals[i] = paramValue(a.cfg)
	}
	if len(order) == 0 {
		// No instructions at all: per spec.md §4.9, the fallback of 100% ok
		// applies whenever both the outcome list and error list are empty,
		// not just when recorded outcomes exist but are all ok.
		return Result{Method: method.Name, Probabilities: map[Outcome]int{OutcomeOK: 100}}, nil
	}
	if _, _, err := ss.Update(order[0], entry, method.Name, constants); err != nil {
		return Result{}, err
	}

	collector := NewCollector()
	t := &transferer{cfg: a.cfg, method: method, byOffset: byOffset, next: next, order: order, collector: collector}

	iterations := 0
	for {
		pc, ok := ss.Next()
		if !ok {
			break
		}
		iterations++
		if iterations > a.cfg.MaxIterations {
			return Result{}, analyzerrors.NewIterationBudget(method.Name, a.cfg.MaxIterations)
		}
		ss.MarkVisited(pc)

		instr, ok := byOffset[pc]
		if !ok {
			continue
		}
		frame := ss.Get(pc).Clone()
		successors := stepGuarded(t, pc, instr, &frame)
		for _, succ := range successors {
			changed, widened, err := ss.Update(succ.pc, succ.frame, method.Name, constants)
			if err != nil {
				return Result{}, err
			}
			if a.cfg.OnUpdate != nil {
				a.cfg.OnUpdate(succ.pc, changed, widened)
			}
			res.Joins++
			if widened {
				res.Widens++
			}
		}
	}

	res.Method = method.Name
	res.Iterations = iterations
	res.Probabilities = collector.Probabilities()
	res.ErrorSet = collector.ErrorSet()
	return res, nil
}

// stepGuarded runs one instruction's transfer function, converting a raw
// stack-underflow panic (a malformed or corrupt instruction stream popping
// more operands than it pushed) into a proper MalformedOperand
// AnalysisError instead of letting a bare index-out-of-range panic escape
// with no context, per spec.md §7.
func stepGuarded(t *transferer, pc int, instr decode.Instruction, frame *Frame) (successors []successor) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*analyzerrors.AnalysisError); ok {
				panic(r)
			}
			panic(analyzerrors.NewMalformedOperand(t.method.Name, pc,
				fmt.Sprintf("%s: stack underflow or malformed operand: %v", instr.Op, r)))
		}
	}()
	return t.step(pc, instr, frame)
}

func paramValue(cfg Config) Value {
	return IntVal(domain.IntTop(cfg.IntKind))
}

// successor is one (pc, frame) pair produced by stepping an instruction.
type successor struct {
	pc    int
	frame Frame
}

// widenConstants collects 0 plus every integer literal pushed by a constant
// instruction in the method, per spec.md §4.2's constant-anchored widening.
func widenConstants(instrs []decode.Instruction) map[int64]struct{} {
	out := map[int64]struct{}{0: {}}
	for _, in := range instrs {
		switch in.Op {
		case "bipush", "sipush", "ldc_int", "iconst":
			if len(in.Operands) > 0 {
				if v, ok := toInt64(in.Operands[0]); ok {
					out[v] = struct{}{}
				}
			}
		}
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// detectLoopHeads applies spec.md §4.7's heuristic: any PC that is the
// target of a branch instruction occurring at or after it (target <=
// current PC) is a loop head.
func detectLoopHeads(instrs []decode.Instruction) map[int]bool {
	heads := map[int]bool{}
	for _, in := range instrs {
		if !isBranch(in.Op) || len(in.Operands) == 0 {
			continue
		}
		target, ok := toInt64(in.Operands[0])
		if !ok {
			continue
		}
		if int(target) <= in.ByteOffset {
			heads[int(target)] = true
		}
	}
	return heads
}

func isBranch(op string) bool {
	switch op {
	case "goto", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
		"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple",
		"ifnull", "ifnonnull":
		return true
	default:
		return false
	}
}
