package core

import "sort"

// DefaultStepBudget is the number of interpreter iterations after which a run
// is declared non-terminating. Server and client must use the same value.
const DefaultStepBudget = 5000

// Frame is one call stack entry.
type Frame struct {
	Program ProgramID
	IP      int
}

// StepKind classifies one interpreter iteration.
type StepKind uint8

const (
	// StepReturn popped a frame whose pointer ran past the end.
	StepReturn StepKind = iota
	// StepEmpty consumed an empty slot.
	StepEmpty
	// StepExec executed an opcode.
	StepExec
)

// Event describes what one interpreter iteration did.
type Event struct {
	Step    int // 1-based step counter after this iteration
	Frame   Frame
	Kind    StepKind
	Op      Opcode
	Before  Pose
	After   Pose
	Moved   bool
	Landing *Landing // set when a move succeeded
	Toggled bool     // Light changed the lit set
	Lit     bool     // lit state of the tile after a toggle
	Called  bool     // a call pushed a frame
	State   State
}

// Result is the verdict plus run diagnostics.
type Result struct {
	Verdict
	Steps    int
	Final    Pose
	Lit      []Coord
	MaxDepth int
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithStepBudget overrides the step budget. Values <= 0 are ignored.
func WithStepBudget(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.budget = n
		}
	}
}

// Simulation owns all mutable state of one run: robot pose, lit set,
// call stack and step counter. It is not safe for concurrent use; create one
// per run. World and Programs are only read.
type Simulation struct {
	world    *World
	programs Programs
	budget   int

	robot    Pose
	lit      map[Coord]struct{}
	stack    []Frame
	steps    int
	maxDepth int
	state    State
	initial  Landing
}

// NewSimulation prepares a run. A level without goals is rejected up front and
// the simulation starts in StateNoGoals. Otherwise the robot is placed on the
// start pose and the start tile is resolved with zero momentum.
func NewSimulation(w *World, p Programs, opts ...Option) *Simulation {
	s := &Simulation{
		world:    w,
		programs: p,
		budget:   DefaultStepBudget,
		robot:    w.Start(),
		lit:      make(map[Coord]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if w.GoalCount() == 0 {
		s.state = StateNoGoals
		return s
	}

	s.initial = w.Resolve(s.robot.Pos, s.robot.Facing, Vec{})
	s.robot.Pos = s.initial.Pos
	s.stack = []Frame{{Program: ProgramMain, IP: 0}}
	s.maxDepth = 1
	s.state = StateRunning
	return s
}

// Run executes the programs against the level and returns the verdict.
func Run(w *World, p Programs, opts ...Option) Verdict {
	return NewSimulation(w, p, opts...).Run().Verdict
}

// Run steps until a terminal state and returns the result.
func (s *Simulation) Run() Result {
	for !s.state.Terminal() {
		s.Step()
	}
	return s.Result()
}

// Step performs one interpreter iteration. Every iteration consumes one unit
// of the step budget, whether it returns from a subroutine, skips an empty
// slot, or executes an opcode. Calling Step in a terminal state is a no-op.
func (s *Simulation) Step() Event {
	ev := Event{Before: s.robot, After: s.robot, State: s.state, Step: s.steps}
	if s.state.Terminal() {
		return ev
	}

	s.steps++
	ev.Step = s.steps

	top := &s.stack[len(s.stack)-1]
	ev.Frame = *top

	op, ok := s.programs.At(top.Program, top.IP)
	switch {
	case !ok:
		ev.Kind = StepReturn
		s.stack = s.stack[:len(s.stack)-1]
	case op == OpEmpty:
		ev.Kind = StepEmpty
		top.IP++
	default:
		ev.Kind = StepExec
		ev.Op = op
		top.IP++
		s.exec(op, &ev)
	}

	s.advance()
	ev.After = s.robot
	ev.State = s.state
	return ev
}

// exec dispatches one opcode.
func (s *Simulation) exec(op Opcode, ev *Event) {
	switch op {
	case OpForward:
		s.move(MoveForward, ev)
	case OpJump:
		s.move(MoveJump, ev)
	case OpTurnLeft:
		s.robot.Facing = s.robot.Facing.Left()
	case OpTurnRight:
		s.robot.Facing = s.robot.Facing.Right()
	case OpLight:
		ev.Toggled, ev.Lit = s.toggleLight()
	case OpCallSub1, OpCallSub2:
		target, _ := callTarget(op)
		// Entirely empty subroutines are never entered.
		if s.programs.HasInstructions(target) {
			s.stack = append(s.stack, Frame{Program: target, IP: 0})
			if len(s.stack) > s.maxDepth {
				s.maxDepth = len(s.stack)
			}
			ev.Called = true
		}
	}
}

// move applies the movement rules and, on success, resolves the landing with
// the movement vector as initial momentum. A failed move changes nothing.
func (s *Simulation) move(kind MoveKind, ev *Event) {
	dest, delta, ok := s.world.TryMove(s.robot, kind)
	if !ok {
		return
	}
	land := s.world.Resolve(dest, s.robot.Facing, delta)
	s.robot.Pos = land.Pos
	ev.Moved = true
	ev.Landing = &land
}

// toggleLight flips the current tile in the lit set if it is a goal.
func (s *Simulation) toggleLight() (toggled, lit bool) {
	pos := s.robot.Pos
	if !s.world.IsGoal(pos) {
		return false, false
	}
	if _, on := s.lit[pos]; on {
		delete(s.lit, pos)
		return true, false
	}
	s.lit[pos] = struct{}{}
	return true, true
}

// allLit reports whether the goal set is a subset of the lit set.
// Only goals are ever lit, so comparing sizes is enough.
func (s *Simulation) allLit() bool {
	return len(s.lit) == s.world.GoalCount()
}

// advance moves the state machine after an iteration.
func (s *Simulation) advance() {
	switch {
	case s.allLit():
		s.state = StateSucceeded
	case s.steps >= s.budget:
		s.state = StateTimedOut
	case len(s.stack) == 0:
		s.state = StateExhausted
	}
}

// State returns the current engine state.
func (s *Simulation) State() State {
	return s.state
}

// Robot returns the current robot pose.
func (s *Simulation) Robot() Pose {
	return s.robot
}

// Steps returns the number of iterations consumed so far.
func (s *Simulation) Steps() int {
	return s.steps
}

// Budget returns the step budget of this run.
func (s *Simulation) Budget() int {
	return s.budget
}

// Stack returns a copy of the call stack, bottom first.
func (s *Simulation) Stack() []Frame {
	out := make([]Frame, len(s.stack))
	copy(out, s.stack)
	return out
}

// IsLit reports whether the goal at c is currently lit.
func (s *Simulation) IsLit(c Coord) bool {
	_, ok := s.lit[c]
	return ok
}

// Lit returns the lit goals ordered by row then column.
func (s *Simulation) Lit() []Coord {
	out := make([]Coord, 0, len(s.lit))
	for c := range s.lit {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// InitialLanding returns the start-tile resolution performed at construction.
func (s *Simulation) InitialLanding() Landing {
	return s.initial
}

// World returns the level being simulated.
func (s *Simulation) World() *World {
	return s.world
}

// Programs returns the programs being executed.
func (s *Simulation) Programs() Programs {
	return s.programs
}

// Result returns the run result. Before a terminal state the verdict is zero.
func (s *Simulation) Result() Result {
	v, _ := s.state.Verdict()
	return Result{
		Verdict:  v,
		Steps:    s.steps,
		Final:    s.robot,
		Lit:      s.Lit(),
		MaxDepth: s.maxDepth,
	}
}
