// Package storage persists monitor snapshots and tracked issues as JSON
// files under the user config directory. Files are small and rewritten
// whole; a missing file loads as the zero value so first runs need no setup.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

const (
	monitorFile = "monitor.json"
	issuesFile  = "issues.json"
)

// Store reads and writes the persistent state files in a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at the default per-user data directory.
func New() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return NewAt(filepath.Join(base, "seosmith", "data")), nil
}

// NewAt returns a Store rooted at an explicit directory.
func NewAt(dir string) *Store {
	return &Store{dir: dir}
}

// Timestamp returns the current UTC time in the format stored in state
// files and compared by the trackers.
func Timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05")
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05", s)
}

// LoadMonitor reads monitor.json; absent file yields an empty state.
func (s *Store) LoadMonitor() (*models.MonitorFile, error) {
	state := &models.MonitorFile{Sites: map[string]models.SiteSnapshot{}}
	if err := s.load(monitorFile, state); err != nil {
		return nil, err
	}
	if state.Sites == nil {
		state.Sites = map[string]models.SiteSnapshot{}
	}
	return state, nil
}

// SaveMonitor writes monitor.json.
func (s *Store) SaveMonitor(state *models.MonitorFile) error {
	return s.save(monitorFile, state)
}

// LoadIssues reads issues.json; absent file yields an empty state.
func (s *Store) LoadIssues() (*models.IssuesFile, error) {
	state := &models.IssuesFile{Issues: map[string]models.Issue{}}
	if err := s.load(issuesFile, state); err != nil {
		return nil, err
	}
	if state.Issues == nil {
		state.Issues = map[string]models.Issue{}
	}
	return state, nil
}

// SaveIssues writes issues.json.
func (s *Store) SaveIssues(state *models.IssuesFile) error {
	return s.save(issuesFile, state)
}

func (s *Store) load(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) save(name string, state any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
