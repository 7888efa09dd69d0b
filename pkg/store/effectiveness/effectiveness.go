// Package effectiveness implements the Effectiveness Store: a single
// JSON document, keyed by payload string, holding reflected/executed
// counters globally and per browser. The whole document is guarded by one
// exclusive lock for every read-modify-write, per the concurrency note in
// §4.6 of the engine contract.
package effectiveness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ravensec/xssentinel/pkg/model"
)

// Store is a file-backed, mutex-guarded EffectivenessDocument.
type Store struct {
	path string
	mu   sync.Mutex
	doc  model.EffectivenessDocument
}

// Open loads (or initializes) the effectiveness document at path. The path
// is caller-supplied rather than hard-coded, resolving the corresponding
// open question from the engine contract's design notes.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &Store{path: path, doc: model.EffectivenessDocument{Records: map[string]*model.EffectivenessRecord{}}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, err
	}
	if s.doc.Records == nil {
		s.doc.Records = map[string]*model.EffectivenessRecord{}
	}
	return s, nil
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Record increments total and (conditionally) reflected/executed counters
// at both the payload and per-browser scopes, and updates the document's
// global metadata. Counters are monotonically non-decreasing; the whole
// update happens under the store's exclusive lock so concurrent Record
// calls for the same payload linearize.
func (s *Store) Record(payload string, reflected, executed bool, browser model.Browser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.doc.Records[payload]
	if !ok {
		record = &model.EffectivenessRecord{Payload: payload, ByBrowser: map[model.Browser]*model.BrowserCounters{}}
		s.doc.Records[payload] = record
	}
	if record.ByBrowser == nil {
		record.ByBrowser = map[model.Browser]*model.BrowserCounters{}
	}

	now := time.Now()
	bump := func(c *model.BrowserCounters) {
		c.TotalTests++
		if reflected {
			c.ReflectedCount++
		}
		if executed {
			c.ExecutedCount++
		}
		c.LastTested = now
	}
	bump(&record.Global)

	perBrowser, ok := record.ByBrowser[browser]
	if !ok {
		perBrowser = &model.BrowserCounters{}
		record.ByBrowser[browser] = perBrowser
	}
	bump(perBrowser)

	s.doc.LastUpdated = now
	s.doc.TotalTests++

	return s.flushLocked()
}

// Score reports reflection/execution scores for payload, scoped to browser
// when non-empty, otherwise global.
func (s *Store) Score(payload string, browser model.Browser) (reflectionScore, executionScore float64, totalTests int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.doc.Records[payload]
	if !ok {
		return 0, 0, 0
	}
	counters := record.Global
	if browser != "" {
		if perBrowser, ok := record.ByBrowser[browser]; ok {
			counters = *perBrowser
		} else {
			return 0, 0, 0
		}
	}
	return counters.ReflectionScore(), counters.ExecutionScore(), counters.TotalTests
}

// TopKEntry is one ranked row returned by TopK.
type TopKEntry struct {
	Payload         string
	ReflectionScore float64
	ExecutionScore  float64
	TotalTests      int
}

// TopK returns the limit highest-ranked payloads by
// (executionScore desc, reflectionScore desc), scoped to browser when
// non-empty. Readers take a snapshot under the lock so ranking never blocks
// a concurrent writer for longer than the copy takes.
func (s *Store) TopK(limit int, browser model.Browser) []TopKEntry {
	s.mu.Lock()
	snapshot := make([]TopKEntry, 0, len(s.doc.Records))
	for payload, record := range s.doc.Records {
		counters := record.Global
		if browser != "" {
			perBrowser, ok := record.ByBrowser[browser]
			if !ok {
				continue
			}
			counters = *perBrowser
		}
		if counters.TotalTests == 0 {
			continue
		}
		snapshot = append(snapshot, TopKEntry{
			Payload:         payload,
			ReflectionScore: counters.ReflectionScore(),
			ExecutionScore:  counters.ExecutionScore(),
			TotalTests:      counters.TotalTests,
		})
	}
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].ExecutionScore != snapshot[j].ExecutionScore {
			return snapshot[i].ExecutionScore > snapshot[j].ExecutionScore
		}
		return snapshot[i].ReflectionScore > snapshot[j].ReflectionScore
	})

	if limit > 0 && len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	return snapshot
}
