package engine

// State is a program counter plus the abstract Frame reached there, per
// spec.md §4.6.
type State struct {
	PC    int
	Frame Frame
}

// StateSet holds one joined State per PC plus the worklist of PCs still to
// process, per spec.md §4.7.
type StateSet struct {
	states   map[int]Frame
	worklist []int
	queued   map[int]bool
	// LoopHeads marks PCs reached by a backward branch (branch target <=
	// current PC), per spec.md §4.7's loop-head heuristic; updates to a
	// loop head widen instead of join once it has been visited once.
	LoopHeads map[int]bool
	visited   map[int]int
	// DisableWiden forces every update to join instead of widen, for
	// diagnosing a non-terminating fixpoint (CLI's --no-widen, per
	// SPEC_FULL.md §6). A method whose true fixpoint requires widening will
	// simply never converge with this set — that is the point.
	DisableWiden bool
}

func NewStateSet() *StateSet {
	return &StateSet{
		states:    map[int]Frame{},
		queued:    map[int]bool{},
		LoopHeads: map[int]bool{},
		visited:   map[int]int{},
	}
}

func (s *StateSet) Has(pc int) bool {
	_, ok := s.states[pc]
	return ok
}

func (s *StateSet) Get(pc int) Frame { return s.states[pc] }

// Update merges incoming into the frame already recorded at pc (join, or widen if pc is a loop head and
// has been visited before), enqueue pc if it changed, and report whether it
// changed and whether this update widened — the two facts live.Server needs
// to stream per spec.md §4.14.
func (s *StateSet) Update(pc int, incoming Frame, method string, constants map[int64]struct{}) (changed bool, widened bool, err error) {
	existing, ok := s.states[pc]
	if !ok {
		s.states[pc] = incoming
		s.enqueue(pc)
		return true, false, nil
	}

	var merged Frame
	if !s.DisableWiden && s.LoopHeads[pc] && s.visited[pc] > 0 {
		merged, err = existing.Widen(incoming, method, pc, constants)
		widened = true
	} else {
		merged, err = existing.Join(incoming, method, pc)
	}
	if err != nil {
		return false, false, err
	}

	if frameEqual(existing, merged) {
		return false, widened, nil
	}
	s.states[pc] = merged
	s.enqueue(pc)
	return true, widened, nil
}

func (s *StateSet) MarkVisited(pc int) { s.visited[pc]++ }

func (s *StateSet) enqueue(pc int) {
	if s.queued[pc] {
		return
	}
	s.queued[pc] = true
	s.worklist = append(s.worklist, pc)
}

// Next pops the next PC to process, in FIFO order, or (-1, false) if the
// worklist is empty and the fixpoint has been reached.
func (s *StateSet) Next() (int, bool) {
	if len(s.worklist) == 0 {
		return -1, false
	}
	pc := s.worklist[0]
	s.worklist = s.worklist[1:]
	delete(s.queued, pc)
	return pc, true
}

func frameEqual(a, b Frame) bool {
	if len(a.Stack) != len(b.Stack) || len(a.Locals) != len(b.Locals) {
		return false
	}
	for i := range a.Stack {
		if a.Stack[i].String() != b.Stack[i].String() {
			return false
		}
	}
	for k, v := range a.Locals {
		ov, ok := b.Locals[k]
		if !ok || v.String() != ov.String() {
			return false
		}
	}
	return true
}
