package formats

import (
	"strings"
	"testing"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
)

const iceLevel = `
id: ice-run
name: Ice Run
gridSize: 4
heights:
  - [0, 0, 0, 0]
  - [0, 0, 0, 0]
  - [0, 0, 0, 0]
  - [0, 0, 0, 1]
start: {x: 0, y: 3, dir: 1}
goals:
  - {x: 2, y: 3}
iceTiles:
  - {x: 1, y: 3}
  - {x: 2, y: 3}
teleportLinks:
  "0,0": "3,0"
  "1,0": {to: "2,2"}
  "2,0": "nowhere"
  "bad": "1,1"
elevatorMeta:
  "0,1": {dir: right}
  "1,1": {dx: 0, dy: 1}
  "2,1": {type: col}
  "3,1": {dx: 0, dy: 0}
  "0,2": {dx: 1.5, dy: 0}
solution:
  main: [F, L]
`

func TestParseYAMLLevel(t *testing.T) {
	lvl, err := ParseYAML([]byte(iceLevel))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	if lvl.ID != "ice-run" || lvl.Name != "Ice Run" {
		t.Errorf("unexpected header: %q %q", lvl.ID, lvl.Name)
	}
	if lvl.Size != 4 {
		t.Errorf("expected size 4, got %d", lvl.Size)
	}
	if len(lvl.Goals) != 1 || lvl.Goals[0] != core.C(2, 3) {
		t.Errorf("unexpected goals: %v", lvl.Goals)
	}
	if len(lvl.Ice) != 2 {
		t.Errorf("expected 2 ice tiles, got %d", len(lvl.Ice))
	}

	if got := lvl.Teleports[core.C(0, 0)]; got != core.C(3, 0) {
		t.Errorf("string teleport: got %v", got)
	}
	if got := lvl.Teleports[core.C(1, 0)]; got != core.C(2, 2) {
		t.Errorf("object teleport: got %v", got)
	}
	if len(lvl.Teleports) != 2 {
		t.Errorf("expected malformed teleports to be dropped, got %v", lvl.Teleports)
	}

	if len(lvl.Elevators) != 3 {
		t.Errorf("expected 3 usable elevators, got %d", len(lvl.Elevators))
	}
	w := lvl.ToWorld()
	if v, ok := w.ElevatorVector(core.C(2, 1)); !ok || v != core.V(0, 1) {
		t.Errorf("legacy col elevator: got %v, %v", v, ok)
	}

	// bad teleport source, bad teleport destination, zero vector, fractional vector
	if len(lvl.Issues) != 4 {
		t.Errorf("expected 4 issues, got %d: %v", len(lvl.Issues), lvl.Issues)
	}

	if lvl.Solution == nil {
		t.Fatal("expected solution to be parsed")
	}
	if got := core.Run(w, *lvl.Solution); !got.Success {
		t.Errorf("reference solution failed: %+v", got)
	}
}

func TestParseYAMLInertForms(t *testing.T) {
	doc := `
id: inert
gridSize: 3
heights: [[0, 0, 0], [0, 0, 0], [0, 0, 0]]
start: {x: 0, y: 2, dir: 0}
goals: [{x: 2, y: 2}]
teleportLinks:
  "01,1": "2,2"
  " 2,0": "0,0"
  "+1,2": "0,0"
elevatorMeta:
  "0,0": {dir: Left}
  "1,0": {type: ROW}
  "2,1": {dir: " up"}
`
	lvl, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(lvl.Teleports) != 0 {
		t.Errorf("expected non-canonical teleport sources to be dropped, got %v", lvl.Teleports)
	}
	if len(lvl.Elevators) != 0 {
		t.Errorf("expected mixed-case elevators to be dropped, got %v", lvl.Elevators)
	}
	if len(lvl.Issues) != 6 {
		t.Errorf("expected 6 issues, got %d: %v", len(lvl.Issues), lvl.Issues)
	}

	w := lvl.ToWorld()
	for _, c := range []core.Coord{core.C(0, 0), core.C(1, 0), core.C(2, 1)} {
		if v, ok := w.ElevatorVector(c); ok {
			t.Errorf("elevator at %v should be inert, got %v", c, v)
		}
	}
	for _, c := range []core.Coord{core.C(1, 1), core.C(2, 0), core.C(1, 2)} {
		if to, ok := w.TeleportDestination(c); ok {
			t.Errorf("teleport at %v should be inert, got %v", c, to)
		}
	}
}

func TestParseSourceKey(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"1,2", true},
		{"-1,0", true},
		{"01,1", false},
		{" 1,1", false},
		{"+1,1", false},
		{"1, 1", false},
		{"-0,0", false},
	}
	for _, tt := range tests {
		if _, ok := parseSourceKey(tt.in); ok != tt.ok {
			t.Errorf("parseSourceKey(%q) ok = %v; want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestParseJSONLevel(t *testing.T) {
	doc := `{
  "id": "json",
  "heights": [[0,0],[0,0]],
  "start": {"x": 0, "y": 0, "dir": 2},
  "goals": [{"x": 0, "y": 1}]
}`

	lvl, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if lvl.Size != 2 {
		t.Errorf("expected size inferred from heights, got %d", lvl.Size)
	}
	if lvl.Spec().Start.Facing != core.DirSouth {
		t.Errorf("expected South facing, got %v", lvl.Spec().Start.Facing)
	}
	if lvl.Solution != nil {
		t.Error("expected no solution")
	}
}

func TestParseYAMLSyntaxError(t *testing.T) {
	if _, err := ParseYAML([]byte("heights: [[0, 0")); err == nil {
		t.Error("expected syntax error")
	}
}

func TestParsePrograms(t *testing.T) {
	doc := `
MAIN: [F, null, TurnLeft, M1, ""]
p1: [J, L]
m2: []
extra: [F]
`
	p, issues, err := ParsePrograms([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePrograms failed: %v", err)
	}

	want := []core.Opcode{core.OpForward, core.OpEmpty, core.OpTurnLeft, core.OpCallSub1, core.OpEmpty}
	got := p.Get(core.ProgramMain)
	if len(got) != len(want) {
		t.Fatalf("main: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("main[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
	if p.Len(core.ProgramSub1) != 2 {
		t.Errorf("p1 alias: expected 2 slots, got %d", p.Len(core.ProgramSub1))
	}
	if len(issues) != 1 || issues[0].Key != "extra" {
		t.Errorf("expected one issue for unknown key, got %v", issues)
	}
}

func TestParseProgramsDuplicateAlias(t *testing.T) {
	_, issues, err := ParsePrograms([]byte("m1: [F]\np1: [L]\n"))
	if err != nil {
		t.Fatalf("ParsePrograms failed: %v", err)
	}
	if len(issues) != 1 {
		t.Errorf("expected duplicate alias issue, got %v", issues)
	}
}

func TestParseProgramsUnknownOpcode(t *testing.T) {
	_, _, err := ParsePrograms([]byte("main: [F, Dance]\n"))
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
	if !strings.Contains(err.Error(), "Dance") {
		t.Errorf("error should name the token, got %v", err)
	}
}

func TestParseSubmission(t *testing.T) {
	doc := `
level:
  id: s
  gridSize: 6
  heights:
    - [0, 0, 0, 0, 0, 0]
    - [0, 0, 0, 0, 0, 0]
    - [0, 0, 0, 0, 0, 0]
    - [0, 0, 0, 0, 0, 0]
    - [0, 0, 0, 0, 0, 0]
    - [0, 0, 0, 0, 0, 0]
  start: {x: 0, y: 5, dir: 1}
  goals: [{x: 3, y: 5}]
  teleportLinks: {"9,9": "x"}
programs:
  main: [F, F, F, L]
`
	sub, err := ParseSubmission([]byte(doc))
	if err != nil {
		t.Fatalf("ParseSubmission failed: %v", err)
	}
	if len(sub.Issues) != 1 {
		t.Errorf("expected level issue to surface, got %v", sub.Issues)
	}
	v := core.Run(sub.Level.ToWorld(), sub.Programs)
	if !v.Success || v.Reason != core.ReasonSuccess {
		t.Errorf("expected SUCCESS, got %+v", v)
	}
}

func TestParseSubmissionMissingLevel(t *testing.T) {
	if _, err := ParseSubmission([]byte("programs: {main: [F]}\n")); err == nil {
		t.Error("expected error for missing level")
	}
}

func TestParseCoordKey(t *testing.T) {
	tests := []struct {
		in   string
		want core.Coord
		ok   bool
	}{
		{"1,2", core.C(1, 2), true},
		{" 3 , 4 ", core.C(3, 4), true},
		{"-1,0", core.C(-1, 0), true},
		{"1", core.Coord{}, false},
		{"1,2,3", core.Coord{}, false},
		{"a,b", core.Coord{}, false},
		{"", core.Coord{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseCoordKey(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCoordKey(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
