// Package verify runs submissions through validation, the verdict cache and
// the engine.
package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
)

// Entry is a cached verdict.
type Entry struct {
	Fingerprint string
	LevelID     string
	Verdict     core.Verdict
	Steps       int
}

// Cache stores verdicts by fingerprint.
// This allows the verifier to reuse results without depending on the storage package.
type Cache interface {
	Lookup(ctx context.Context, fingerprint string) (Entry, bool, error)
	Store(ctx context.Context, e Entry) error
}

// Report is the outcome of verifying one submission.
// For cached reports Result carries only the verdict and step count.
type Report struct {
	LevelID     string
	Fingerprint string
	Result      core.Result
	Message     string
	Cached      bool
}

// Outcome pairs a report with the error that prevented it, if any.
type Outcome struct {
	Report Report
	Err    error
}

// Verifier validates and simulates submissions.
type Verifier struct {
	cache  Cache // Optional, can be nil
	opts   validate.Options
	logger *log.Logger
}

// NewVerifier creates a verifier. cache and logger may be nil.
func NewVerifier(cache Cache, opts validate.Options, logger *log.Logger) *Verifier {
	return &Verifier{cache: cache, opts: opts, logger: logger}
}

// Verify validates a submission, consults the cache and simulates on a miss.
// A validation failure is returned as a *validate.ValidationError.
// Cache failures are logged and otherwise ignored.
func (v *Verifier) Verify(ctx context.Context, sub formats.Submission) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if err := validate.Submission(&sub, v.opts); err != nil {
		return Report{}, err
	}

	fp := Fingerprint(&sub.Level, sub.Programs)
	report := Report{LevelID: sub.Level.ID, Fingerprint: fp}

	if v.cache != nil {
		e, ok, err := v.cache.Lookup(ctx, fp)
		if err != nil {
			v.warn("cache lookup failed", "fingerprint", short(fp), "err", err)
		} else if ok {
			report.Result = core.Result{Verdict: e.Verdict, Steps: e.Steps}
			report.Message = validate.FailureMessage(e.Verdict.Reason)
			report.Cached = true
			v.debug("cache hit", "level", sub.Level.ID, "fingerprint", short(fp))
			return report, nil
		}
	}

	res := core.NewSimulation(sub.Level.ToWorld(), sub.Programs).Run()
	report.Result = res
	report.Message = validate.FailureMessage(res.Reason)
	v.debug("simulated", "level", sub.Level.ID, "reason", res.Reason, "steps", res.Steps)

	if v.cache != nil {
		err := v.cache.Store(ctx, Entry{
			Fingerprint: fp,
			LevelID:     sub.Level.ID,
			Verdict:     res.Verdict,
			Steps:       res.Steps,
		})
		if err != nil {
			v.warn("cache store failed", "fingerprint", short(fp), "err", err)
		}
	}

	return report, nil
}

// VerifyAll verifies submissions on a bounded pool of workers.
// Outcomes keep input order. When ctx is cancelled no further submissions are
// dispatched; undispatched entries carry the context error.
func (v *Verifier) VerifyAll(ctx context.Context, subs []formats.Submission, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(subs) {
		workers = len(subs)
	}

	out := make([]Outcome, len(subs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				r, err := v.Verify(ctx, subs[idx])
				out[idx] = Outcome{Report: r, Err: err}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(subs); next++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(subs); i++ {
		out[i] = Outcome{Err: fmt.Errorf("not dispatched: %w", ctx.Err())}
	}
	return out
}

func (v *Verifier) debug(msg string, kv ...any) {
	if v.logger != nil {
		v.logger.Debug(msg, kv...)
	}
}

func (v *Verifier) warn(msg string, kv ...any) {
	if v.logger != nil {
		v.logger.Warn(msg, kv...)
	}
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
