// Package concrete provides the dynamic-execution collaborators spec.md
// scopes out of the core: a concrete interpreter for running one test case
// to completion, and a coverage-guided fuzzer built on top of it. Neither
// ever influences the abstract interpreter's results — they exist purely
// so the CLI and tests have something real to cross-check coverage against.
package concrete

import (
	"fmt"

	"javaflow/internal/decode"
)

// Runner mirrors the original implementation's interpreter.run_test_case:
// execute bytecodes with concrete params and report which PCs were
// visited, per spec.md §4.10.
type Runner interface {
	RunTestCase(method decode.Method, params []int) (result string, visited map[int]bool, err error)
}

// Fuzzer mirrors fuzzer.coverage_guided_fuzzing: repeatedly mutate inputs
// within a budget, keeping any that grow the visited-PC set.
type Fuzzer interface {
	CoverageGuidedFuzz(method decode.Method, budget int) (interesting [][]int, visited map[int]bool, err error)
}

// StackMachine is a minimal concrete interpreter over the same instruction
// stream the abstract engine consumes. It supports only the opcode subset
// exercised by the example methods in this repo's tests — enough to
// demonstrate coverage tracking, not a general JVM.
type StackMachine struct{}

func NewStackMachine() *StackMachine { return &StackMachine{} }

func (m *StackMachine) RunTestCase(method decode.Method, params []int) (string, map[int]bool, error) {
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

	locals := map[int]int{}
	for i, p := range params {
		locals[i] = p
	}
	var stack []int
	visited := map[int]bool{}

	if len(order) == 0 {
		return "ok", visited, nil
	}
	pc := order[0]
	const maxSteps = 100000
	for steps := 0; steps < maxSteps; steps++ {
		in, ok := byOffset[pc]
		if !ok {
			return "", visited, fmt.Errorf("no instruction at offset %d", pc)
		}
		visited[pc] = true

		switch in.Op {
		case "iconst", "bipush", "sipush", "ldc_int":
			v := 0
			if len(in.Operands) > 0 {
				if n, ok := toInt(in.Operands[0]); ok {
					v = n
				}
			}
			stack = append(stack, v)
		case "iload":
			stack = append(stack, locals[slot(in)])
		case "istore":
			stack, locals[slot(in)] = stack[:len(stack)-1], stack[len(stack)-1]
		case "iadd":
			stack = binOp(stack, func(a, b int) int { return a + b })
		case "isub":
			stack = binOp(stack, func(a, b int) int { return a - b })
		case "imul":
			stack = binOp(stack, func(a, b int) int { return a * b })
		case "idiv":
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			if b == 0 {
				return "divide-by-zero", visited, nil
			}
			stack = append(stack[:len(stack)-2], a/b)
		case "goto":
			pc = intOp(in)
			continue
		case "ifeq":
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if v == 0 {
				pc = intOp(in)
				continue
			}
		case "ifne":
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if v != 0 {
				pc = intOp(in)
				continue
			}
		case "ireturn", "return":
			return "ok", visited, nil
		case "athrow":
			return "error", visited, nil
		}

		nx := next[pc]
		if nx < 0 {
			return "ok", visited, nil
		}
		pc = nx
	}
	return "", visited, fmt.Errorf("exceeded %d concrete steps without returning", maxSteps)
}

func slot(in decode.Instruction) int {
	if len(in.Operands) == 0 {
		return 0
	}
	n, _ := toInt(in.Operands[0])
	return n
}

func intOp(in decode.Instruction) int {
	if len(in.Operands) == 0 {
		return 0
	}
	n, _ := toInt(in.Operands[0])
	return n
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func binOp(stack []int, op func(a, b int) int) []int {
	b := stack[len(stack)-1]
	a := stack[len(stack)-2]
	return append(stack[:len(stack)-2], op(a, b))
}
