package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
)

var flagCheckNoCache bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every level's reference solution",
	Long: `Verifies the reference solution shipped with each level and reports
the verdicts. Levels without a solution are skipped. The exit status is 1 if
any solution is invalid or fails to light every goal.

Examples:
  lightbot check
  lightbot check --dir ./levels --no-cache`,
	Run: withExitCode(runCheck),
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckNoCache, "no-cache", false, "Skip the verdict cache")
}

func runCheck(cmd *cobra.Command, args []string) int {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	catalog, err := loadCatalog()
	if err != nil {
		return failf("loading levels: %v", err)
	}

	var checked []levels.Level
	var subs []formats.Submission
	for _, lvl := range catalog {
		if lvl.Solution == nil {
			fmt.Printf("SKIP  %-6s %s (no solution)\n", lvl.ID, lvl.Name)
			continue
		}
		checked = append(checked, lvl)
		subs = append(subs, formats.Submission{Level: lvl.Level, Programs: *lvl.Solution})
	}

	var cache verify.Cache
	if !flagCheckNoCache {
		if store := openStore(); store != nil {
			defer store.Close()
			cache = store
		}
	}

	opts := validate.Options{Limits: appCfg.Limits, Strict: appCfg.Verify.Strict}
	v := verify.NewVerifier(cache, opts, logger)

	failed := 0
	for i, out := range v.VerifyAll(ctx, subs, appCfg.Verify.Workers) {
		lvl := checked[i]
		switch {
		case out.Err != nil:
			failed++
			fmt.Printf("ERROR %-6s %s: %v\n", lvl.ID, lvl.Name, out.Err)
		case out.Report.Result.Success:
			fmt.Printf("PASS  %-6s %s (%d steps)\n", lvl.ID, lvl.Name, out.Report.Result.Steps)
		default:
			failed++
			fmt.Printf("FAIL  %-6s %s: %s\n", lvl.ID, lvl.Name, out.Report.Message)
		}
	}

	fmt.Println()
	fmt.Printf("%d checked, %d failed, %d skipped\n", len(checked), failed, len(catalog)-len(checked))
	if failed > 0 {
		return 1
	}
	return 0
}
