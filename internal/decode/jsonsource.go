package decode

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonInstruction mirrors Instruction with an exported, JSON-friendly shape.
type jsonInstruction struct {
	ByteOffset int   `json:"offset"`
	Op         string `json:"op"`
	Operands   []any `json:"operands"`
}

type jsonMethod struct {
	Name         string            `json:"name"`
	ParamCount   int               `json:"paramCount"`
	Instructions []jsonInstruction `json:"instructions"`
}

// JSONSource reads a document shaped as a list of methods, standing in for
// real classfile decompilation so the CLI and tests have a concrete,
// human-writable Source per spec.md §4.10.
type JSONSource struct {
	methods map[string]Method
	order   []string
}

func NewJSONSource(r io.Reader) (*JSONSource, error) {
	var raw []jsonMethod
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode instruction stream: %w", err)
	}
	methods := make(map[string]Method, len(raw))
	order := make([]string, 0, len(raw))
	for _, m := range raw {
		instrs := make([]Instruction, len(m.Instructions))
		for i, in := range m.Instructions {
			instrs[i] = Instruction{ByteOffset: in.ByteOffset, Op: in.Op, Operands: in.Operands}
		}
		methods[m.Name] = Method{Name: m.Name, Instructions: instrs, ParamCount: m.ParamCount}
		order = append(order, m.Name)
	}
	return &JSONSource{methods: methods, order: order}, nil
}

func (s *JSONSource) Method(name string) (Method, error) {
	m, ok := s.methods[name]
	if !ok {
		return Method{}, fmt.Errorf("method %q not found in source", name)
	}
	return m, nil
}

// Methods returns every method in the source document, in declaration
// order, for the "analyze --case" command's per-method loop.
func (s *JSONSource) Methods() []Method {
	out := make([]Method, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.methods[name])
	}
	return out
}
