// Package cache implements the Cache Store: one JSON file per
// TestFingerprint under a configured directory, keyed by the md5 hex digest
// computed in pkg/fingerprint. This departs from the teacher's gorm/postgres
// persistence layer on purpose — the engine contract mandates a lightweight,
// per-fingerprint file document, not a relational schema (see DESIGN.md).
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ravensec/xssentinel/pkg/model"
)

// Store is a concurrency-safe, file-backed cache of CachedResult documents.
type Store struct {
	dir string
	// locks guards per-fingerprint read-modify-write sequences; the map
	// itself is protected by mu.
	mu    sync.Mutex
	locks map[model.TestFingerprint]*sync.Mutex
}

// New opens (creating if necessary) a cache store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, locks: make(map[model.TestFingerprint]*sync.Mutex)}, nil
}

func (s *Store) lockFor(fp model.TestFingerprint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[fp]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fp] = l
	}
	return l
}

func (s *Store) path(fp model.TestFingerprint) string {
	return filepath.Join(s.dir, string(fp)+".json")
}

// Exists reports whether a non-expired CachedResult is present for fp,
// pruning the entry on read if it has expired.
func (s *Store) Exists(fp model.TestFingerprint, maxAge time.Duration) bool {
	l := s.lockFor(fp)
	l.Lock()
	defer l.Unlock()

	result, ok := s.readLocked(fp)
	if !ok {
		return false
	}
	if result.Expired(maxAge) {
		_ = os.Remove(s.path(fp))
		return false
	}
	return true
}

// Get reads the CachedResult for fp, if any.
func (s *Store) Get(fp model.TestFingerprint) (model.CachedResult, bool) {
	l := s.lockFor(fp)
	l.Lock()
	defer l.Unlock()
	return s.readLocked(fp)
}

func (s *Store) readLocked(fp model.TestFingerprint) (model.CachedResult, bool) {
	data, err := os.ReadFile(s.path(fp))
	if err != nil {
		return model.CachedResult{}, false
	}
	var result model.CachedResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Warn().Err(err).Str("fingerprint", string(fp)).Msg("corrupt cache entry, treating as miss")
		return model.CachedResult{}, false
	}
	return result, true
}

// Put writes a CachedResult for fp, for both positive and negative outcomes.
func (s *Store) Put(fp model.TestFingerprint, result model.CachedResult) error {
	l := s.lockFor(fp)
	l.Lock()
	defer l.Unlock()

	if result.CapturedAt.IsZero() {
		result.CapturedAt = time.Now()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	tmp := s.path(fp) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(fp))
}

// Clear removes the given fingerprints, or every entry when fps is empty.
func (s *Store) Clear(fps ...model.TestFingerprint) error {
	if len(fps) == 0 {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) != ".json" {
				continue
			}
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	for _, fp := range fps {
		l := s.lockFor(fp)
		l.Lock()
		err := os.Remove(s.path(fp))
		l.Unlock()
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Stats summarizes the on-disk cache.
type Stats struct {
	Count         int
	TotalBytes    int64
	Oldest        time.Time
	Newest        time.Time
	AverageBytes  float64
}

// Stats computes a snapshot of the cache directory.
func (s *Store) Stats() (Stats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalBytes += info.Size()
		modTime := info.ModTime()
		if stats.Oldest.IsZero() || modTime.Before(stats.Oldest) {
			stats.Oldest = modTime
		}
		if stats.Newest.IsZero() || modTime.After(stats.Newest) {
			stats.Newest = modTime
		}
	}
	if stats.Count > 0 {
		stats.AverageBytes = float64(stats.TotalBytes) / float64(stats.Count)
	}
	return stats, nil
}
