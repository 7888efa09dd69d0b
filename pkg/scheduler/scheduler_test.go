package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravensec/xssentinel/pkg/model"
)

func TestRunDispatchesAllJobs(t *testing.T) {
	jobs := []model.Job{{URL: "https://a"}, {URL: "https://b"}, {URL: "https://c"}}
	var calls int32
	run := func(job model.Job) ([]model.TestResult, error) {
		atomic.AddInt32(&calls, 1)
		return []model.TestResult{{Payload: job.URL}}, nil
	}

	results := Run(jobs, run, Options{Concurrency: 2})
	require.Len(t, results, 3)
	require.EqualValues(t, 3, calls)
	for i, r := range results {
		require.Equal(t, jobs[i].URL, r.Job.URL)
		require.NoError(t, r.Err)
	}
}

func TestRunShareSessionRewritesJobs(t *testing.T) {
	jobs := []model.Job{{URL: "https://a"}, {URL: "https://b"}}
	var seen []string
	run := func(job model.Job) ([]model.TestResult, error) {
		seen = append(seen, job.Options.Session.ID)
		return nil, nil
	}

	Run(jobs, run, Options{Concurrency: 1, ShareSession: true})
	require.Len(t, seen, 2)
	require.Equal(t, seen[0], seen[1])
	require.NotEmpty(t, seen[0])
}

func TestRunStopsAfterFirstVulnerability(t *testing.T) {
	jobs := []model.Job{{URL: "https://vuln"}, {URL: "https://later-a"}, {URL: "https://later-b"}}
	run := func(job model.Job) ([]model.TestResult, error) {
		if job.URL == "https://vuln" {
			return []model.TestResult{{Executed: true}}, nil
		}
		return []model.TestResult{{Executed: false}}, nil
	}

	results := Run(jobs, run, Options{Concurrency: 1, StopOnFirstVulnerability: true})
	require.Len(t, results, 3)
	require.True(t, results[0].Results[0].Executed)
	require.ErrorIs(t, results[1].Err, errSkipped)
	require.ErrorIs(t, results[2].Err, errSkipped)
}

// TestRunStopsOnAnyTestResultNotJustExecuted pins the batch stop condition
// to "the batch produced at least one reflected or executed TestResult", not
// specifically an executed one: a plain reflection finding also halts later
// batches.
func TestRunStopsOnAnyTestResultNotJustExecuted(t *testing.T) {
	jobs := []model.Job{{URL: "https://reflected-only"}, {URL: "https://later"}}
	run := func(job model.Job) ([]model.TestResult, error) {
		if job.URL == "https://reflected-only" {
			return []model.TestResult{{Reflected: true, Executed: false}}, nil
		}
		return []model.TestResult{{Executed: true}}, nil
	}

	results := Run(jobs, run, Options{Concurrency: 1, StopOnFirstVulnerability: true})
	require.ErrorIs(t, results[1].Err, errSkipped)
}

// TestRunBatchesAreContiguousWithABarrier verifies a batch fully settles
// (every job in it observable in results) before the next batch starts,
// rather than a sliding window of in-flight jobs.
func TestRunBatchesAreContiguousWithABarrier(t *testing.T) {
	jobs := []model.Job{{URL: "https://a"}, {URL: "https://b"}, {URL: "https://c"}, {URL: "https://d"}}
	var maxInFlight, inFlight, completed, startedEarly int32
	run := func(job model.Job) ([]model.TestResult, error) {
		if (job.URL == "https://c" || job.URL == "https://d") && atomic.LoadInt32(&completed) < 2 {
			atomic.StoreInt32(&startedEarly, 1)
		}
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			max := atomic.LoadInt32(&maxInFlight)
			if cur <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, cur) {
				break
			}
		}
		// A slow first job: under a sliding window "c" would start as soon as
		// "b" finished, before "a" does.
		if job.URL == "https://a" {
			time.Sleep(50 * time.Millisecond)
		}
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&completed, 1)
		return nil, nil
	}

	Run(jobs, run, Options{Concurrency: 2})
	require.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	require.Zero(t, atomic.LoadInt32(&startedEarly), "a second-batch job started before the first batch settled")
}
