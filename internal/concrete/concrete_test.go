package concrete

import (
	"testing"

	"javaflow/internal/decode"
)

func method(name string, paramCount int, instrs ...decode.Instruction) decode.Method {
	return decode.Method{Name: name, ParamCount: paramCount, Instructions: instrs}
}

// guardedDivide mirrors the same shape the abstract engine's
// divide-by-zero tests use: iload 0; ifeq 6 (skip if param == 0);
// iconst 10; iload 0; idiv; ireturn; iconst 0; ireturn.
func guardedDivide() decode.Method {
	return method("guardedDivide", 1,
		decode.Instruction{ByteOffset: 0, Op: "iload", Operands: []any{0}},
		decode.Instruction{ByteOffset: 1, Op: "ifeq", Operands: []any{6}},
		decode.Instruction{ByteOffset: 2, Op: "iconst", Operands: []any{10}},
		decode.Instruction{ByteOffset: 3, Op: "iload", Operands: []any{0}},
		decode.Instruction{ByteOffset: 4, Op: "idiv"},
		decode.Instruction{ByteOffset: 5, Op: "ireturn"},
		decode.Instruction{ByteOffset: 6, Op: "iconst", Operands: []any{0}},
		decode.Instruction{ByteOffset: 7, Op: "ireturn"},
	)
}

func TestStackMachineRunTestCaseDividesOrGuards(t *testing.T) {
	m := guardedDivide()
	machine := NewStackMachine()

	result, visited, err := machine.RunTestCase(m, []int{0})
	if err != nil {
		t.Fatalf("RunTestCase(0): %v", err)
	}
	if result != "ok" {
		t.Errorf("RunTestCase(0) = %q, want ok (guard should take the skip branch)", result)
	}
	if !visited[1] || !visited[6] {
		t.Errorf("RunTestCase(0) visited = %v, want the guard and skip branch covered", visited)
	}

	result, visited, err = machine.RunTestCase(m, []int{5})
	if err != nil {
		t.Fatalf("RunTestCase(5): %v", err)
	}
	if result != "ok" {
		t.Errorf("RunTestCase(5) = %q, want ok (non-zero param divides cleanly)", result)
	}
	if !visited[4] {
		t.Errorf("RunTestCase(5) visited = %v, want the idiv instruction covered", visited)
	}
}

func TestStackMachineRunTestCaseReportsDivideByZero(t *testing.T) {
	m := method("alwaysDivZero", 0,
		decode.Instruction{ByteOffset: 0, Op: "iconst", Operands: []any{1}},
		decode.Instruction{ByteOffset: 1, Op: "iconst", Operands: []any{0}},
		decode.Instruction{ByteOffset: 2, Op: "idiv"},
		decode.Instruction{ByteOffset: 3, Op: "ireturn"},
	)
	machine := NewStackMachine()
	result, _, err := machine.RunTestCase(m, nil)
	if err != nil {
		t.Fatalf("RunTestCase: %v", err)
	}
	if result != "divide-by-zero" {
		t.Errorf("result = %q, want divide-by-zero", result)
	}
}

// TestCoverageGuidedFuzzFindsBothBranches confirms the fuzzer's boundary
// mutations (which always include a zero delta-to-zero candidate) are
// enough to discover both sides of the guard starting from an all-zero
// seed, growing the visited-PC set beyond what the seed alone covers.
func TestCoverageGuidedFuzzFindsBothBranches(t *testing.T) {
	m := guardedDivide()
	machine := NewStackMachine()
	fuzzer := NewCoverageFuzzer(machine, []int{0})

	interesting, visited, err := fuzzer.CoverageGuidedFuzz(m, 8)
	if err != nil {
		t.Fatalf("CoverageGuidedFuzz: %v", err)
	}
	if len(interesting) < 2 {
		t.Errorf("interesting = %v, want at least the seed plus one coverage-growing mutation", interesting)
	}
	if !visited[1] || !visited[6] || !visited[4] {
		t.Errorf("visited = %v, want both the guard and both its branches covered across mutations", visited)
	}
}
