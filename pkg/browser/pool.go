package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/ravensec/xssentinel/pkg/model"
)

// pagePoolCap is the maximum number of pages a single session keeps warm,
// matching the teacher's pkg/browser/pages_pool.go cap.
const pagePoolCap = 5

// Session pairs a running browser with a capped page pool and the storage
// state needed to persist authentication across runs. Grounded on the
// teacher's BrowserPoolManager/PagePoolManager in pkg/browser/browser_pool.go
// and pages_pool.go, generalized from one process-wide singleton pool to
// named sessions the orchestrator can request, reuse and close independently.
type Session struct {
	Name    string
	Browser model.Browser

	rodBrowser *rod.Browser
	pages      chan *rod.Page
	mu         sync.Mutex
	pageCount  int
}

// Manager tracks live sessions by name and coalesces concurrent requests for
// the same name into a single launch.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	inflight  map[string]chan struct{}
	stateDir  string
}

// NewManager creates a session manager persisting storage state under
// stateDir.
func NewManager(stateDir string) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		inflight: make(map[string]chan struct{}),
		stateDir: stateDir,
	}
}

// GetSession returns the named session, launching it on first use and, when
// SessionOptions.Reuse is set, restoring the state saved under that name. Concurrent callers
// requesting the same name block on the same launch rather than racing
// separate browser processes.
func (m *Manager) GetSession(name string, browser model.Browser, opts model.SessionOptions) (*Session, error) {
	for {
		m.mu.Lock()
		if s, ok := m.sessions[name]; ok {
			m.mu.Unlock()
			return s, nil
		}
		if wait, launching := m.inflight[name]; launching {
			m.mu.Unlock()
			<-wait
			continue
		}
		wait := make(chan struct{})
		m.inflight[name] = wait
		m.mu.Unlock()

		s, err := m.launchSession(name, browser, opts)

		m.mu.Lock()
		if err == nil {
			m.sessions[name] = s
		}
		delete(m.inflight, name)
		close(wait)
		m.mu.Unlock()
		return s, err
	}
}

func (m *Manager) launchSession(name string, browser model.Browser, opts model.SessionOptions) (*Session, error) {
	rodBrowser, err := Launch(browser)
	if err != nil {
		return nil, err
	}
	s := &Session{
		Name:       name,
		Browser:    browser,
		rodBrowser: rodBrowser,
		pages:      make(chan *rod.Page, pagePoolCap),
	}
	if opts.Reuse {
		if err := m.LoadStorageState(s); err != nil {
			log.Debug().Err(err).Str("session", name).Msg("no saved storage state to restore")
		}
	}
	return s, nil
}

// SessionExists reports whether name is currently live.
func (m *Manager) SessionExists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[name]
	return ok
}

// ListSessions returns the names of all live sessions.
func (m *Manager) ListSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	return names
}

// CloseSession tears down the named session's browser and drains its page
// pool. Safe to call on a name that does not exist.
func (m *Manager) CloseSession(name string) error {
	m.mu.Lock()
	s, ok := m.sessions[name]
	if ok {
		delete(m.sessions, name)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	close(s.pages)
	for page := range s.pages {
		_ = page.Close()
	}
	return s.rodBrowser.Close()
}

// NewPage borrows a page from the session's pool, creating a new one
// whenever the pool is empty; the number of live pages is not capped here.
func (s *Session) NewPage() (*rod.Page, error) {
	select {
	case page := <-s.pages:
		return page, nil
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page, err := s.rodBrowser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.pageCount++
	return page, nil
}

// ReleasePage returns a page to the pool for reuse, navigating it back to a
// blank state first so the next borrower does not inherit prior DOM/JS
// state. Pages beyond the pool's capacity are closed instead of pooled.
func (s *Session) ReleasePage(page *rod.Page) {
	if err := page.Navigate("about:blank"); err != nil {
		_ = page.Close()
		return
	}
	select {
	case s.pages <- page:
	default:
		_ = page.Close()
	}
}

// storageStatePath is the on-disk location for a session's persisted
// cookies.
func (m *Manager) storageStatePath(name string) string {
	return filepath.Join(m.stateDir, name+".json")
}

// SaveStorageState snapshots the session's cookies to stateDir, keyed by
// session name, so a future run started with session.reuse can restore
// authentication without repeating the login recipe.
func (m *Manager) SaveStorageState(s *Session) error {
	cookies, err := s.rodBrowser.GetCookies()
	if err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}
	data, err := marshalCookies(cookies)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.stateDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.storageStatePath(s.Name), data, 0o600)
}

// LoadStorageState restores previously saved cookies into the session's
// browser context.
func (m *Manager) LoadStorageState(s *Session) error {
	data, err := os.ReadFile(m.storageStatePath(s.Name))
	if err != nil {
		return err
	}
	cookies, err := unmarshalCookies(data)
	if err != nil {
		return err
	}
	return s.rodBrowser.SetCookies(cookies)
}
