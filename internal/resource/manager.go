package resource

import (
	"path/filepath"
	"strings"
	"sync"
)

// Kind reports whether an identifier names a file-like or a logical
// resource. The distinction is reporting-only; locking semantics are
// identical for both.
type Kind int

const (
	KindLogical Kind = iota
	KindFile
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "logical"
}

// fileExtensions are the suffixes classify treats as file-like even when
// the identifier carries no path separator.
var fileExtensions = []string{
	".json", ".yaml", ".yml", ".hcl", ".toml", ".txt", ".md",
	".go", ".py", ".js", ".ts", ".sql", ".lock", ".mod", ".sum", ".env",
}

// classify is the single place the file-vs-logical policy lives. Swapping
// the heuristic (or replacing it with caller-supplied tags) must not touch
// any locking code.
func classify(id string) Kind {
	if strings.ContainsRune(id, '/') || strings.ContainsRune(id, filepath.Separator) {
		return KindFile
	}
	lower := strings.ToLower(id)
	for _, ext := range fileExtensions {
		if strings.HasSuffix(lower, ext) {
			return KindFile
		}
	}
	return KindLogical
}

// entry is one named lock plus its diagnostic state.
type entry struct {
	// mu is the per-resource mutual-exclusion primitive. Holding it means
	// holding the resource.
	mu   sync.Mutex
	kind Kind
	// held, holder and history are guarded by the Manager's registration
	// mutex, not by mu, so they stay readable while the lock is contended.
	held    bool
	holder  string
	history []string
}

// Stats summarizes the lock registry for reporting.
type Stats struct {
	Files   int `json:"total_files"`
	Logical int `json:"total_logical"`
	Total   int `json:"total"`
}

// Manager owns the named lock registry. Multiple scheduler instances must
// each get their own Manager so lock ownership never cross-contaminates.
//
// The registry only grows: identifiers referenced once keep their lock
// object for the Manager's lifetime. That is an accepted trade-off for
// simplicity over memory in long-running processes.
type Manager struct {
	// mu is the coarse registration guard. It protects the registry map and
	// the per-entry diagnostic fields, never wraps a blocking acquire, so
	// registering two different identifiers never contends.
	mu    sync.Mutex
	locks map[string]*entry
}

// NewManager creates an empty lock registry.
func NewManager() *Manager {
	return &Manager{locks: make(map[string]*entry)}
}

// register returns the entry for id, creating it on first reference.
func (m *Manager) register(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[id]
	if !ok {
		e = &entry{kind: classify(id)}
		m.locks[id] = e
	}
	return e
}

// Lock blocks the caller until the named lock is free, then marks it held
// by holderID. The holder is recorded in the resource's usage history.
func (m *Manager) Lock(id, holderID string) {
	e := m.register(id)
	e.mu.Lock()

	m.mu.Lock()
	e.held = true
	e.holder = holderID
	e.history = append(e.history, holderID)
	m.mu.Unlock()
}

// Unlock releases the named lock. Releasing an unknown or unheld resource
// is a no-op.
func (m *Manager) Unlock(id string) {
	m.mu.Lock()
	e, ok := m.locks[id]
	if !ok || !e.held {
		m.mu.Unlock()
		return
	}
	e.held = false
	e.holder = ""
	m.mu.Unlock()

	e.mu.Unlock()
}

// Holder reports the step currently holding the named lock, if any.
func (m *Manager) Holder(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[id]
	if !ok || !e.held {
		return "", false
	}
	return e.holder, true
}

// History returns the ordered sequence of holder identifiers the named
// resource has seen. Diagnostics only.
func (m *Manager) History(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[id]
	if !ok {
		return nil
	}
	out := make([]string, len(e.history))
	copy(out, e.history)
	return out
}

// Stats returns counts of distinct file-like and logical resources plus
// their sum.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	for _, e := range m.locks {
		if e.kind == KindFile {
			s.Files++
		} else {
			s.Logical++
		}
	}
	s.Total = s.Files + s.Logical
	return s
}
