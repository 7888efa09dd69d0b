// Package scheduler implements the Parallel Scheduler: bounded fan-out of
// detection jobs across a shared engine, honoring batch-size concurrency,
// session-sharing, and stop-on-first-vulnerability semantics.
//
// Grounded on the teacher's use of github.com/sourcegraph/conc/pool for
// bounded fan-out (seen across pkg/active/*.go, e.g. bak_xss.go's
// `pool.New().WithMaxGoroutines(n)` / `.Go` / `.Wait`), adapted from a
// single unbounded queue of payload tests to the spec's batched job model:
// jobs run in contiguous batches of Concurrency, one batch fully settling
// before the next starts, rather than a sliding window of in-flight jobs.
package scheduler

import (
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/ravensec/xssentinel/pkg/model"
)

// Runner executes one job and returns its results, matching
// (*orchestrator.Engine).DetectXSS's shape without importing the
// orchestrator package, so the scheduler stays free of a dependency cycle.
type Runner func(job model.Job) ([]model.TestResult, error)

// Options controls the scheduler's fan-out behavior.
type Options struct {
	Concurrency              int
	ShareSession             bool
	StopOnFirstVulnerability bool
}

// Run dispatches every job in jobs through run, in contiguous batches of
// at most Concurrency jobs, and returns one JobResult per job in submission
// order. Each batch fully settles (every job in it has a result) before the
// next batch begins. When ShareSession is set, every job is rewritten to
// use a single synthetic session name before being handed to run, so they
// reuse one browser instead of launching one each. When
// StopOnFirstVulnerability is set, once a batch produces any job with at
// least one reflected or executed TestResult, every job in that batch still
// runs to completion,
// but subsequent batches are skipped entirely.
func Run(jobs []model.Job, run Runner, opts Options) []model.JobResult {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ShareSession {
		jobs = withSharedSession(jobs)
	}

	results := make([]model.JobResult, len(jobs))
	var mu sync.Mutex
	stop := false

	for start := 0; start < len(jobs); start += opts.Concurrency {
		if stop {
			for i := start; i < len(jobs); i++ {
				results[i] = model.JobResult{Job: jobs[i], Err: errSkipped}
			}
			break
		}

		end := start + opts.Concurrency
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[start:end]

		p := pool.New().WithMaxGoroutines(len(batch))
		for offset, job := range batch {
			i, job := start+offset, job
			p.Go(func() {
				testResults, err := run(job)
				mu.Lock()
				results[i] = model.JobResult{Job: job, Results: testResults, Err: err}
				mu.Unlock()
			})
		}
		p.Wait()

		if opts.StopOnFirstVulnerability {
			for i := start; i < end; i++ {
				for _, r := range results[i].Results {
					if r.Reflected || r.Executed {
						stop = true
					}
				}
			}
		}
	}

	return results
}

// withSharedSession assigns every job the same session id and clears
// CloseAfter so the orchestrator's session manager coalesces them onto one
// browser that stays open between jobs. Run does not close it afterwards.
func withSharedSession(jobs []model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	for i, j := range jobs {
		j.Options.Session.ID = sharedSessionName
		j.Options.Session.CloseAfter = false
		out[i] = j
	}
	return out
}

const sharedSessionName = "scheduler-shared"

var errSkipped = skippedError{}

type skippedError struct{}

func (skippedError) Error() string { return "skipped: stop-on-first-vulnerability already triggered" }
