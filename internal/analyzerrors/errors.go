// Package analyzerrors defines the analyzer's own structured error type,
// grounded on sentra's internal/errors design: a typed Kind plus enough
// location information to point at the offending instruction.
package analyzerrors

import "fmt"

// Kind classifies an AnalysisError, per spec.md §7: invariant violations are
// programmer bugs in the engine itself, never a property of the method
// being analyzed.
type Kind string

const (
	// InvariantViolation marks a broken lattice or worklist invariant, such
	// as a stack-height mismatch when joining two states at the same PC.
	InvariantViolation Kind = "InvariantViolation"
	// MalformedOperand marks a decoded instruction whose operands don't
	// match what its mnemonic requires.
	MalformedOperand Kind = "MalformedOperand"
	// IterationBudget marks a worklist that failed to reach a fixpoint
	// within the configured iteration ceiling.
	IterationBudget Kind = "IterationBudget"
)

// AnalysisError is the engine's own error channel. Per spec.md §7 these are
// never folded into a PathOutcome — they abort the analysis outright.
type AnalysisError struct {
	Kind       Kind
	Message    string
	ByteOffset int
	Method     string
}

func (e *AnalysisError) Error() string {
	if e.ByteOffset >= 0 {
		return fmt.Sprintf("%s in %s at offset %d: %s", e.Kind, e.Method, e.ByteOffset, e.Message)
	}
	return fmt.Sprintf("%s in %s: %s", e.Kind, e.Method, e.Message)
}

func NewInvariantViolation(method string, offset int, message string) *AnalysisError {
	return &AnalysisError{Kind: InvariantViolation, Message: message, ByteOffset: offset, Method: method}
}

func NewMalformedOperand(method string, offset int, message string) *AnalysisError {
	return &AnalysisError{Kind: MalformedOperand, Message: message, ByteOffset: offset, Method: method}
}

func NewIterationBudget(method string, limit int) *AnalysisError {
	return &AnalysisError{
		Kind:       IterationBudget,
		Message:    fmt.Sprintf("worklist exceeded %d iterations without reaching a fixpoint", limit),
		ByteOffset: -1,
		Method:     method,
	}
}
