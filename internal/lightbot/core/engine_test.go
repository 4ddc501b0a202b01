package core_test

import (
	"testing"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
)

// flatHeights returns an n×n grid of zero heights.
func flatHeights(n int) [][]int {
	h := make([][]int, n)
	for y := range h {
		h[y] = make([]int, n)
	}
	return h
}

// firstSteps is the 6×6 flat level with one goal three tiles east of the start.
func firstSteps() core.LevelSpec {
	return core.LevelSpec{
		Size:    6,
		Heights: flatHeights(6),
		Start:   core.Pose{Pos: core.C(0, 5), Facing: core.DirEast},
		Goals:   []core.Coord{core.C(3, 5)},
	}
}

func ops(list ...core.Opcode) []core.Opcode {
	return list
}

func TestScenarioWalkAndLight(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(ops(core.OpForward, core.OpForward, core.OpForward, core.OpLight), nil, nil)

	res := core.NewSimulation(w, p).Run()
	if !res.Success || res.Reason != core.ReasonSuccess {
		t.Fatalf("expected SUCCESS, got %+v", res.Verdict)
	}
	if res.Final.Pos != core.C(3, 5) {
		t.Errorf("expected robot at (3,5), got %v", res.Final.Pos)
	}
	if res.Steps != 4 {
		t.Errorf("expected 4 steps, got %d", res.Steps)
	}
}

func TestScenarioWalkWithoutLight(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(ops(core.OpForward, core.OpForward, core.OpForward), nil, nil)

	res := core.NewSimulation(w, p).Run()
	if res.Success || res.Reason != core.ReasonGoalsNotLit {
		t.Fatalf("expected GOALS_NOT_LIT, got %+v", res.Verdict)
	}
	// Three instructions plus the return from main.
	if res.Steps != 4 {
		t.Errorf("expected 4 steps, got %d", res.Steps)
	}
}

func TestScenarioNoGoals(t *testing.T) {
	spec := firstSteps()
	spec.Goals = nil
	w := core.NewWorld(spec)

	programs := []core.Programs{
		core.NewPrograms(nil, nil, nil),
		core.NewPrograms(ops(core.OpLight), nil, nil),
		core.NewPrograms(ops(core.OpCallSub1), ops(core.OpCallSub1), nil),
	}
	for _, p := range programs {
		sim := core.NewSimulation(w, p)
		if sim.State() != core.StateNoGoals {
			t.Errorf("expected NoGoals state before running, got %v", sim.State())
		}
		res := sim.Run()
		if res.Success || res.Reason != core.ReasonNoGoals {
			t.Errorf("expected NO_GOALS, got %+v", res.Verdict)
		}
		if res.Steps != 0 {
			t.Errorf("expected no steps, got %d", res.Steps)
		}
	}
}

func TestScenarioStepUp(t *testing.T) {
	spec := firstSteps()
	spec.Heights[5][1] = 1
	spec.Goals = []core.Coord{core.C(1, 5)}
	w := core.NewWorld(spec)

	fwd := core.NewSimulation(w, core.NewPrograms(ops(core.OpForward, core.OpLight), nil, nil))
	ev := fwd.Step()
	if ev.Moved || fwd.Robot().Pos != core.C(0, 5) {
		t.Errorf("forward onto a step must not move, robot at %v", fwd.Robot().Pos)
	}
	if res := fwd.Run(); res.Reason != core.ReasonGoalsNotLit {
		t.Errorf("expected GOALS_NOT_LIT after failed forward, got %v", res.Reason)
	}

	jump := core.NewSimulation(w, core.NewPrograms(ops(core.OpJump, core.OpLight), nil, nil))
	ev = jump.Step()
	if !ev.Moved || jump.Robot().Pos != core.C(1, 5) {
		t.Errorf("jump onto a step must move, robot at %v", jump.Robot().Pos)
	}
	if res := jump.Run(); !res.Success {
		t.Errorf("expected SUCCESS after jump, got %v", res.Reason)
	}
}

func TestScenarioIceRun(t *testing.T) {
	spec := firstSteps()
	spec.Ice = []core.Coord{core.C(1, 5), core.C(2, 5), core.C(3, 5)}
	spec.Heights[5][4] = 1 // wall at the end of the run
	w := core.NewWorld(spec)

	sim := core.NewSimulation(w, core.NewPrograms(ops(core.OpForward, core.OpLight), nil, nil))
	ev := sim.Step()
	if !ev.Moved || ev.Landing == nil {
		t.Fatal("expected forward onto ice to move and resolve a landing")
	}
	if got := len(ev.Landing.Steps); got != 2 {
		t.Errorf("expected 2 slide steps, got %d", got)
	}
	if ev.Landing.Pos != core.C(3, 5) {
		t.Errorf("expected slide to stop at (3,5), got %v", ev.Landing.Pos)
	}
	if !ev.Landing.Momentum.IsZero() {
		t.Errorf("blocked slide must zero momentum, got %v", ev.Landing.Momentum)
	}

	res := sim.Run()
	if !res.Success {
		t.Fatalf("expected SUCCESS, got %+v", res.Verdict)
	}
}

func TestScenarioMutualRecursion(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(
		ops(core.OpCallSub1),
		ops(core.OpCallSub2),
		ops(core.OpCallSub1),
	)

	res := core.NewSimulation(w, p).Run()
	if res.Success || res.Reason != core.ReasonTimeLimitExceeded {
		t.Fatalf("expected TIME_LIMIT_EXCEEDED, got %+v", res.Verdict)
	}
	if res.Steps != core.DefaultStepBudget {
		t.Errorf("expected %d steps, got %d", core.DefaultStepBudget, res.Steps)
	}
	if res.MaxDepth < 100 {
		t.Errorf("expected the stack to grow without a depth guard, max depth %d", res.MaxDepth)
	}
}

func TestReturnOnBudgetBoundaryReportsTimeLimit(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(ops(core.OpForward, core.OpForward, core.OpForward), nil, nil)

	// The fourth iteration pops main and exhausts the budget at the same time.
	res := core.NewSimulation(w, p, core.WithStepBudget(4)).Run()
	if res.Reason != core.ReasonTimeLimitExceeded {
		t.Errorf("expected TIME_LIMIT_EXCEEDED, got %v", res.Reason)
	}

	res = core.NewSimulation(w, p, core.WithStepBudget(5)).Run()
	if res.Reason != core.ReasonGoalsNotLit {
		t.Errorf("expected GOALS_NOT_LIT, got %v", res.Reason)
	}
}

func TestEmptySlotsConsumeSteps(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(ops(core.OpEmpty, core.OpEmpty, core.OpForward), nil, nil)

	sim := core.NewSimulation(w, p)
	for i, want := range []core.StepKind{core.StepEmpty, core.StepEmpty, core.StepExec, core.StepReturn} {
		ev := sim.Step()
		if ev.Kind != want {
			t.Errorf("step %d: expected kind %v, got %v", i+1, want, ev.Kind)
		}
	}
	if sim.Steps() != 4 {
		t.Errorf("expected 4 steps, got %d", sim.Steps())
	}
	if sim.State() != core.StateExhausted {
		t.Errorf("expected Exhausted, got %v", sim.State())
	}
}

func TestCallEmptySubroutineIsNoop(t *testing.T) {
	w := core.NewWorld(firstSteps())
	p := core.NewPrograms(
		ops(core.OpCallSub1, core.OpForward),
		ops(core.OpEmpty, core.OpEmpty),
		nil,
	)

	sim := core.NewSimulation(w, p)
	ev := sim.Step()
	if ev.Called {
		t.Error("call into an empty subroutine must not push a frame")
	}
	if depth := len(sim.Stack()); depth != 1 {
		t.Errorf("expected stack depth 1, got %d", depth)
	}
	ev = sim.Step()
	if ev.Op != core.OpForward || !ev.Moved {
		t.Errorf("expected main to continue with Forward, got %v moved=%v", ev.Op, ev.Moved)
	}
}

func TestSubroutineReturnsToCaller(t *testing.T) {
	w := core.NewWorld(firstSteps())
	// main: M1, L ; m1: F, F, F
	p := core.NewPrograms(
		ops(core.OpCallSub1, core.OpLight),
		ops(core.OpForward, core.OpForward, core.OpForward),
		nil,
	)

	res := core.NewSimulation(w, p).Run()
	if !res.Success {
		t.Fatalf("expected SUCCESS, got %+v", res.Verdict)
	}
	// M1, F, F, F, return, L
	if res.Steps != 6 {
		t.Errorf("expected 6 steps, got %d", res.Steps)
	}
	if res.MaxDepth != 2 {
		t.Errorf("expected max depth 2, got %d", res.MaxDepth)
	}
}

func TestLightToggles(t *testing.T) {
	spec := firstSteps()
	spec.Goals = []core.Coord{core.C(0, 5), core.C(3, 5)}
	w := core.NewWorld(spec)

	sim := core.NewSimulation(w, core.NewPrograms(ops(core.OpLight, core.OpLight), nil, nil))
	ev := sim.Step()
	if !ev.Toggled || !ev.Lit || !sim.IsLit(core.C(0, 5)) {
		t.Fatal("first light should light the start goal")
	}
	ev = sim.Step()
	if !ev.Toggled || ev.Lit || sim.IsLit(core.C(0, 5)) {
		t.Fatal("second light should un-light the start goal")
	}
	if len(sim.Lit()) != 0 {
		t.Errorf("expected empty lit set, got %v", sim.Lit())
	}
	if res := sim.Run(); res.Reason != core.ReasonGoalsNotLit {
		t.Errorf("expected GOALS_NOT_LIT, got %v", res.Reason)
	}
}

func TestLightOnPlainTileDoesNothing(t *testing.T) {
	w := core.NewWorld(firstSteps())
	sim := core.NewSimulation(w, core.NewPrograms(ops(core.OpLight), nil, nil))
	ev := sim.Step()
	if ev.Toggled {
		t.Error("light on a non-goal tile must not toggle")
	}
}

func TestGoalsLitAcrossVisits(t *testing.T) {
	spec := firstSteps()
	spec.Goals = []core.Coord{core.C(2, 5), core.C(4, 5)}
	w := core.NewWorld(spec)
	p := core.NewPrograms(ops(
		core.OpForward, core.OpForward, core.OpLight,
		core.OpForward, core.OpForward, core.OpLight,
	), nil, nil)

	if v := core.Run(w, p); !v.Success {
		t.Errorf("expected SUCCESS, got %+v", v)
	}
}

func TestTurns(t *testing.T) {
	w := core.NewWorld(firstSteps())
	sim := core.NewSimulation(w, core.NewPrograms(ops(core.OpTurnLeft, core.OpTurnLeft, core.OpTurnRight), nil, nil))

	want := []core.Dir{core.DirNorth, core.DirWest, core.DirNorth}
	for i, d := range want {
		sim.Step()
		if got := sim.Robot().Facing; got != d {
			t.Errorf("after turn %d: expected %v, got %v", i+1, d, got)
		}
	}
}

func TestOutOfBoundsMoveIsNoop(t *testing.T) {
	spec := firstSteps()
	spec.Start = core.Pose{Pos: core.C(0, 5), Facing: core.DirSouth}
	w := core.NewWorld(spec)

	sim := core.NewSimulation(w, core.NewPrograms(ops(core.OpForward, core.OpJump), nil, nil))
	for i := 0; i < 2; i++ {
		ev := sim.Step()
		if ev.Moved {
			t.Errorf("step %d: move off the grid must fail", i+1)
		}
	}
	if sim.Robot() != spec.Start {
		t.Errorf("robot must stay at start, got %+v", sim.Robot())
	}
}

func TestStartTileIsResolved(t *testing.T) {
	spec := firstSteps()
	spec.Teleports = map[core.Coord]core.Coord{core.C(0, 5): core.C(2, 2)}
	w := core.NewWorld(spec)

	sim := core.NewSimulation(w, core.NewPrograms(nil, nil, nil))
	if sim.Robot().Pos != core.C(2, 2) {
		t.Errorf("expected start teleport to move robot to (2,2), got %v", sim.Robot().Pos)
	}
	if got := len(sim.InitialLanding().Steps); got != 1 {
		t.Errorf("expected one initial landing step, got %d", got)
	}

	// Standing still on ice does not slide.
	spec = firstSteps()
	spec.Ice = []core.Coord{core.C(0, 5), core.C(1, 5)}
	sim = core.NewSimulation(core.NewWorld(spec), core.NewPrograms(nil, nil, nil))
	if sim.Robot().Pos != core.C(0, 5) {
		t.Errorf("zero momentum on ice must not slide, got %v", sim.Robot().Pos)
	}
}

func TestDeterminism(t *testing.T) {
	spec := firstSteps()
	spec.Ice = []core.Coord{core.C(1, 5), core.C(2, 5)}
	spec.Elevators = map[core.Coord]core.Elevator{core.C(3, 5): {Dir: "up"}}
	spec.Teleports = map[core.Coord]core.Coord{core.C(3, 2): core.C(5, 0)}
	spec.Goals = []core.Coord{core.C(5, 0), core.C(0, 5)}
	p := core.NewPrograms(
		ops(core.OpLight, core.OpCallSub1, core.OpTurnLeft, core.OpCallSub2),
		ops(core.OpForward, core.OpJump, core.OpLight),
		ops(core.OpTurnRight, core.OpForward, core.OpCallSub1),
	)

	first := core.NewSimulation(core.NewWorld(spec), p).Run()
	for i := 0; i < 20; i++ {
		got := core.NewSimulation(core.NewWorld(spec), p).Run()
		if got.Verdict != first.Verdict || got.Steps != first.Steps || got.Final != first.Final {
			t.Fatalf("run %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestBudgetAlwaysTerminates(t *testing.T) {
	w := core.NewWorld(firstSteps())
	programs := []core.Programs{
		core.NewPrograms(ops(core.OpCallSub1), ops(core.OpTurnLeft, core.OpCallSub1), nil),
		core.NewPrograms(ops(core.OpCallSub1), ops(core.OpCallSub2, core.OpForward), ops(core.OpCallSub1, core.OpJump)),
		core.NewPrograms(ops(core.OpCallSub2), nil, ops(core.OpLight, core.OpCallSub2)),
	}
	for i, p := range programs {
		res := core.NewSimulation(w, p, core.WithStepBudget(300)).Run()
		if res.Steps > 300 {
			t.Errorf("program %d ran %d steps past the budget", i, res.Steps)
		}
		if res.Reason != core.ReasonTimeLimitExceeded {
			t.Errorf("program %d: expected TIME_LIMIT_EXCEEDED, got %v", i, res.Reason)
		}
	}
}

func TestStepAfterTerminalIsNoop(t *testing.T) {
	w := core.NewWorld(firstSteps())
	sim := core.NewSimulation(w, core.NewPrograms(nil, nil, nil))
	sim.Run()
	steps := sim.Steps()
	ev := sim.Step()
	if sim.Steps() != steps || ev.State != core.StateExhausted {
		t.Errorf("step after terminal state changed the run: %+v", ev)
	}
}
