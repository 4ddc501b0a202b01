package core

import "strings"

// ProgramID names one of the three instruction sequences.
type ProgramID uint8

const (
	ProgramMain ProgramID = iota
	ProgramSub1
	ProgramSub2
	programCount
)

// String returns the document key for the program ("main", "m1", "m2").
func (id ProgramID) String() string {
	switch id {
	case ProgramMain:
		return "main"
	case ProgramSub1:
		return "m1"
	case ProgramSub2:
		return "m2"
	default:
		return "unknown"
	}
}

// ParseProgramID resolves a document key. Keys are case-insensitive and
// "p1"/"p2" are accepted for the subroutines.
func ParseProgramID(key string) (ProgramID, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "main":
		return ProgramMain, true
	case "m1", "p1":
		return ProgramSub1, true
	case "m2", "p2":
		return ProgramSub2, true
	}
	return 0, false
}

// ProgramIDs lists the programs in document order.
func ProgramIDs() []ProgramID {
	return []ProgramID{ProgramMain, ProgramSub1, ProgramSub2}
}

// Programs holds the player-authored instruction sequences.
// Slots may be OpEmpty; sequences may be any length.
type Programs struct {
	seqs [programCount][]Opcode
}

// NewPrograms creates a program set from the three sequences.
// The slices are copied.
func NewPrograms(main, sub1, sub2 []Opcode) Programs {
	var p Programs
	p.Set(ProgramMain, main)
	p.Set(ProgramSub1, sub1)
	p.Set(ProgramSub2, sub2)
	return p
}

// Set replaces one sequence with a copy of ops.
func (p *Programs) Set(id ProgramID, ops []Opcode) {
	if id >= programCount {
		return
	}
	p.seqs[id] = append([]Opcode(nil), ops...)
}

// Get returns a sequence. Callers must not modify the returned slice.
func (p Programs) Get(id ProgramID) []Opcode {
	if id >= programCount {
		return nil
	}
	return p.seqs[id]
}

// Len returns the slot count of a sequence.
func (p Programs) Len(id ProgramID) int {
	return len(p.Get(id))
}

// At returns the opcode at ip, or false when ip is past the end.
func (p Programs) At(id ProgramID, ip int) (Opcode, bool) {
	seq := p.Get(id)
	if ip < 0 || ip >= len(seq) {
		return OpEmpty, false
	}
	return seq[ip], true
}

// HasInstructions reports whether a sequence contains at least one non-empty slot.
func (p Programs) HasInstructions(id ProgramID) bool {
	for _, op := range p.Get(id) {
		if op != OpEmpty {
			return true
		}
	}
	return false
}

// Tokens returns a sequence as wire tokens, with "" for empty slots.
func (p Programs) Tokens(id ProgramID) []string {
	seq := p.Get(id)
	out := make([]string, len(seq))
	for i, op := range seq {
		out[i] = op.Token()
	}
	return out
}

// callTarget maps a call opcode to the program it enters.
func callTarget(op Opcode) (ProgramID, bool) {
	switch op {
	case OpCallSub1:
		return ProgramSub1, true
	case OpCallSub2:
		return ProgramSub2, true
	}
	return 0, false
}
