package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
)

var (
	flagVerifyJSON    bool
	flagVerifyNoCache bool
	flagVerifyStrict  bool
	flagVerifyWorkers int
)

var verifyCmd = &cobra.Command{
	Use:   "verify <submission-file>...",
	Short: "Verify submission files",
	Long: `Validate and run one or more submissions. A submission file holds the
level and the programs:

  level:
    gridSize: 3
    heights: [[0,0,0],[0,0,0],[0,0,0]]
    start: {x: 0, y: 0, dir: 1}
    goals: [{x: 2, y: 0}]
  programs:
    main: [F, F, L]

Verdicts are cached by content fingerprint. The exit status is 1 if any
submission is invalid or fails.

Examples:
  lightbot verify submission.yaml
  lightbot verify --json a.yaml b.json
  lightbot verify --strict --no-cache --workers 8 subs/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	Run:  withExitCode(runVerify),
}

func init() {
	verifyCmd.Flags().BoolVar(&flagVerifyJSON, "json", false, "Print reports as JSON")
	verifyCmd.Flags().BoolVar(&flagVerifyNoCache, "no-cache", false, "Skip the verdict cache")
	verifyCmd.Flags().BoolVar(&flagVerifyStrict, "strict", false, "Reject malformed teleport/elevator entries")
	verifyCmd.Flags().IntVar(&flagVerifyWorkers, "workers", 0, "Parallel workers (0 = config value)")
}

// verifyReport is the JSON shape of one verified file.
type verifyReport struct {
	File        string `json:"file"`
	Level       string `json:"level,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
	Message     string `json:"message,omitempty"`
	Steps       int    `json:"steps"`
	Cached      bool   `json:"cached"`
	Code        string `json:"code,omitempty"`
	Error       string `json:"error,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) int {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	reports := make([]verifyReport, len(args))
	var subs []formats.Submission
	var index []int // position in args of each parsed submission

	for i, path := range args {
		reports[i].File = path
		data, err := os.ReadFile(path)
		if err != nil {
			reports[i].Error = err.Error()
			continue
		}
		sub, err := formats.ParseSubmission(data)
		if err != nil {
			reports[i].Error = err.Error()
			continue
		}
		for _, issue := range sub.Issues {
			logger.Warn("submission issue", "file", path, "issue", issue.String())
		}
		subs = append(subs, sub)
		index = append(index, i)
	}

	var cache verify.Cache
	if !flagVerifyNoCache {
		if store := openStore(); store != nil {
			defer store.Close()
			cache = store
		}
	}

	opts := validate.Options{
		Limits: appCfg.Limits,
		Strict: appCfg.Verify.Strict || flagVerifyStrict,
	}
	workers := appCfg.Verify.Workers
	if flagVerifyWorkers > 0 {
		workers = flagVerifyWorkers
	}

	v := verify.NewVerifier(cache, opts, logger)
	for j, out := range v.VerifyAll(ctx, subs, workers) {
		fillReport(&reports[index[j]], out)
	}

	failed := 0
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}

	if flagVerifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return failf("encoding reports: %v", err)
		}
	} else {
		printReports(reports)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func fillReport(r *verifyReport, out verify.Outcome) {
	if out.Err != nil {
		var verr *validate.ValidationError
		if errors.As(out.Err, &verr) {
			r.Code = verr.Code
			r.Error = verr.Message
			return
		}
		r.Error = out.Err.Error()
		return
	}

	rep := out.Report
	r.Level = rep.LevelID
	r.Fingerprint = rep.Fingerprint
	r.Success = rep.Result.Success
	r.Reason = string(rep.Result.Reason)
	r.Message = rep.Message
	r.Steps = rep.Result.Steps
	r.Cached = rep.Cached
}

func printReports(reports []verifyReport) {
	for _, r := range reports {
		switch {
		case r.Code != "":
			fmt.Printf("INVALID  %s  [%s] %s\n", r.File, r.Code, r.Error)
		case r.Error != "":
			fmt.Printf("ERROR    %s  %s\n", r.File, r.Error)
		case r.Success:
			fmt.Printf("PASS     %s  level=%s steps=%d%s\n", r.File, r.Level, r.Steps, cachedTag(r.Cached))
		default:
			fmt.Printf("FAIL     %s  level=%s %s (%s) steps=%d%s\n", r.File, r.Level, r.Reason, r.Message, r.Steps, cachedTag(r.Cached))
		}
	}
}

func cachedTag(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}
