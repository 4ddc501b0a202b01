package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
	"github.com/vovakirdan/lightbot-arena/internal/platform/tui"
)

var (
	flagProgramsPath string
	flagTheme        string
	flagTickMS       int
	flagAutoplay     bool
	flagTrace        bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <level-id|level-file>",
	Short: "Step through a run in the terminal",
	Long: `Replay a level's reference solution, or the programs in --programs,
one interpreter step at a time.

Controls:
  Space/N    - Step
  P/Enter    - Play/pause
  E          - Run to end
  R          - Restart
  +/-        - Faster/slower
  Ctrl+S     - Save a board snapshot
  Q/Ctrl+C   - Quit

When stdout is not a terminal (or with --trace) the run is printed as a
step log instead.

Examples:
  lightbot replay 05
  lightbot replay ./levels/maze.yaml --programs ./maze-programs.yaml
  lightbot replay 08 --autoplay --tick 100 --theme mono
  lightbot replay 06 --trace`,
	Args: cobra.ExactArgs(1),
	Run:  withExitCode(runReplay),
}

func init() {
	replayCmd.Flags().StringVar(&flagProgramsPath, "programs", "", "Program document to run instead of the level's solution")
	replayCmd.Flags().StringVar(&flagTheme, "theme", "default", "Board theme: default, mono")
	replayCmd.Flags().IntVar(&flagTickMS, "tick", 0, "Autoplay interval in milliseconds (0 = config value)")
	replayCmd.Flags().BoolVar(&flagAutoplay, "autoplay", false, "Start playing immediately")
	replayCmd.Flags().BoolVar(&flagTrace, "trace", false, "Print a step log instead of the interactive viewer")
}

func runReplay(cmd *cobra.Command, args []string) int {
	lvl, err := resolveLevel(args[0])
	if err != nil {
		return failf("%v", err)
	}
	for _, issue := range lvl.Issues {
		logger.Warn("level issue", "level", lvl.ID, "issue", issue.String())
	}

	programs, err := replayPrograms(lvl.Solution)
	if err != nil {
		return failf("%v", err)
	}

	sub := formats.Submission{Level: lvl.Level, Programs: programs}
	if err := validate.Submission(&sub, validate.Options{Limits: appCfg.Limits}); err != nil {
		return failf("%v", err)
	}

	if flagTrace || !term.IsTerminal(int(os.Stdout.Fd())) {
		printTrace(&sub)
		return 0
	}

	tick := time.Duration(appCfg.Replay.TickMS) * time.Millisecond
	if flagTickMS > 0 {
		tick = time.Duration(flagTickMS) * time.Millisecond
	}

	var cache verify.Cache
	if store := openStore(); store != nil {
		defer store.Close()
		cache = store
	}

	res, err := tui.RunReplay(tui.ReplayConfig{
		Level:    &sub.Level,
		Programs: sub.Programs,
		Theme:    tui.ThemeByName(flagTheme),
		Tick:     tick,
		Autoplay: appCfg.Replay.Autoplay || flagAutoplay,
		Cache:    cache,
	})
	if err != nil {
		return failf("running replay: %v", err)
	}
	if res.Reason != "" {
		fmt.Printf("%s: %s after %d steps\n", lvl.ID, res.Reason, res.Steps)
	}
	return 0
}

// replayPrograms reads --programs, falling back to the level's solution.
func replayPrograms(solution *core.Programs) (core.Programs, error) {
	if flagProgramsPath == "" {
		if solution == nil {
			return core.Programs{}, fmt.Errorf("level has no reference solution; pass --programs")
		}
		return *solution, nil
	}

	data, err := os.ReadFile(flagProgramsPath)
	if err != nil {
		return core.Programs{}, err
	}
	programs, issues, err := formats.ParsePrograms(data)
	if err != nil {
		return core.Programs{}, fmt.Errorf("parsing %s: %w", flagProgramsPath, err)
	}
	for _, issue := range issues {
		logger.Warn("program issue", "file", flagProgramsPath, "issue", issue.String())
	}
	return programs, nil
}

// printTrace runs the submission to the end and prints every step.
func printTrace(sub *formats.Submission) {
	sim := core.NewSimulation(sub.Level.ToWorld(), sub.Programs)
	theme := tui.MonochromeBoardTheme()

	fmt.Printf("%s %s\n", sub.Level.ID, sub.Level.Name)
	for _, step := range sim.InitialLanding().Steps {
		fmt.Printf("#0 start %s %v\n", step.Effect, step.To)
	}
	for !sim.State().Terminal() {
		fmt.Println(tui.DescribeEvent(sim.Step()))
	}

	fmt.Println()
	for _, row := range tui.BoardCells(sim, theme) {
		for _, cell := range row {
			fmt.Print(cell.Text)
		}
		fmt.Println()
	}
	fmt.Println()

	res := sim.Result()
	if res.Success {
		fmt.Printf("%s after %d steps (max depth %d)\n", res.Reason, res.Steps, res.MaxDepth)
		return
	}
	fmt.Printf("%s: %s after %d steps (max depth %d)\n", res.Reason, validate.FailureMessage(res.Reason), res.Steps, res.MaxDepth)
}
