package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lightbot-arena/internal/platform/tui"
	"github.com/vovakirdan/lightbot-arena/internal/storage"
)

var flagRecentLimit int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the verdict cache",
	Long: `Verdicts are cached by a fingerprint of the normalized level and
programs, so a repeated submission is answered without simulating it again.

Examples:
  lightbot cache stats
  lightbot cache recent --limit 50
  lightbot cache browse
  lightbot cache clear`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Run:   withExitCode(runCacheStats),
}

var cacheRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the newest cached verdicts",
	Run:   withExitCode(runCacheRecent),
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached verdict",
	Run:   withExitCode(runCacheClear),
}

var cacheBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse cached verdicts interactively",
	Run:   withExitCode(runCacheBrowse),
}

func init() {
	cacheRecentCmd.Flags().IntVar(&flagRecentLimit, "limit", 20, "Number of entries to show")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheRecentCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheBrowseCmd)
}

// openCache opens the cache regardless of storage.enabled.
func openCache() (*storage.Store, error) {
	store, err := storage.Open(appCfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening verdict cache: %w", err)
	}
	return store, nil
}

func runCacheStats(cmd *cobra.Command, args []string) int {
	store, err := openCache()
	if err != nil {
		return failf("%v", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return failf("reading cache stats: %v", err)
	}

	fmt.Printf("Verdict cache - %s\n", appCfg.Storage.Path)
	fmt.Println()
	fmt.Printf("  Entries:    %d\n", stats.Entries)
	fmt.Printf("  Successes:  %d\n", stats.Successes)
	fmt.Printf("  Cache hits: %d\n", stats.Hits)
	if !stats.LastWrite.IsZero() {
		fmt.Printf("  Last write: %s\n", stats.LastWrite.Format("2006-01-02 15:04"))
	}

	if len(stats.ByReason) == 0 {
		return 0
	}
	reasons := make([]string, 0, len(stats.ByReason))
	for r := range stats.ByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	fmt.Println()
	fmt.Println("  By reason:")
	for _, r := range reasons {
		fmt.Printf("    %-20s %d\n", r, stats.ByReason[r])
	}
	return 0
}

func runCacheRecent(cmd *cobra.Command, args []string) int {
	store, err := openCache()
	if err != nil {
		return failf("%v", err)
	}
	defer store.Close()

	entries, err := store.RecentVerdicts(flagRecentLimit)
	if err != nil {
		return failf("reading cache: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No verdicts cached yet.")
		return 0
	}

	fmt.Printf("  %-12s  %-8s  %-20s  %-6s  %-4s  %s\n", "Fingerprint", "Level", "Reason", "Steps", "Hits", "Date")
	fmt.Printf("  %-12s  %-8s  %-20s  %-6s  %-4s  %s\n", "-----------", "-----", "------", "-----", "----", "----")
	for _, e := range entries {
		fp := e.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Printf("  %-12s  %-8s  %-20s  %-6d  %-4d  %s\n",
			fp, e.LevelID, e.Reason, e.Steps, e.Hits, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return 0
}

func runCacheClear(cmd *cobra.Command, args []string) int {
	store, err := openCache()
	if err != nil {
		return failf("%v", err)
	}
	defer store.Close()

	n, err := store.ClearVerdicts()
	if err != nil {
		return failf("clearing cache: %v", err)
	}
	logger.Info("verdict cache cleared", "deleted", n)
	fmt.Printf("Deleted %d cached verdicts.\n", n)
	return 0
}

func runCacheBrowse(cmd *cobra.Command, args []string) int {
	store, err := openCache()
	if err != nil {
		return failf("%v", err)
	}
	defer store.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	if _, err := tui.RunVerdicts(store, width, height); err != nil {
		return failf("running browser: %v", err)
	}
	return 0
}
