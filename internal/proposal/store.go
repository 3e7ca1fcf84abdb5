// Package proposal persists edit proposals for SUGGEST_ONLY regions.
// An agent that is blocked from editing files a proposal instead; a human
// reviews it with the pending/approve/reject commands and applies it
// manually. One JSON file per proposal, serialized writes.
package proposal

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// validID matches alphanumeric, dash, underscore, and dot characters only.
var validID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// validateID rejects IDs that could cause path traversal.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("proposal id must not be empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("proposal id must not contain '..'")
	}
	if !validID.MatchString(id) {
		return fmt.Errorf("proposal id contains invalid characters")
	}
	return nil
}

// Status represents the state of a proposal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusApplied  Status = "applied"
)

// Proposal is a single proposed edit awaiting human review.
type Proposal struct {
	ID         string     `json:"id"`
	Status     Status     `json:"status"`
	File       string     `json:"file"`
	LineStart  int        `json:"line_start,omitempty"`
	LineEnd    int        `json:"line_end,omitempty"`
	Summary    string     `json:"summary"`
	Diff       string     `json:"diff,omitempty"`
	Agent      string     `json:"agent,omitempty"`
	Owner      string     `json:"owner,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Store manages proposal files on disk.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store backed by the given directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create proposal directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the proposal directory under a project root.
func DefaultDir(root string) string {
	return filepath.Join(root, ".collab", "proposals")
}

// Create files a new pending proposal and returns it with a generated ID.
func (s *Store) Create(p Proposal) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = newID()
	p.Status = StatusPending
	p.CreatedAt = time.Now().UTC()
	p.ResolvedAt = nil

	if err := s.writeAtomic(s.path(p.ID), p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns one proposal by ID.
func (s *Store) Get(id string) (*Proposal, error) {
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("invalid proposal id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// List returns proposals with the given status, oldest first.
// An empty status lists everything.
func (s *Store) List(status Status) ([]Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read proposal directory: %w", err)
	}

	var out []Proposal
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue // skip corrupt entries, do not fail the listing
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Approve marks a pending proposal as approved.
func (s *Store) Approve(id string) error {
	return s.transition(id, StatusPending, StatusApproved)
}

// Reject marks a pending proposal as rejected.
func (s *Store) Reject(id string) error {
	return s.transition(id, StatusPending, StatusRejected)
}

// MarkApplied marks an approved proposal as applied.
func (s *Store) MarkApplied(id string) error {
	return s.transition(id, StatusApproved, StatusApplied)
}

func (s *Store) transition(id string, from, to Status) error {
	if err := validateID(id); err != nil {
		return fmt.Errorf("invalid proposal id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.read(id)
	if err != nil {
		return fmt.Errorf("proposal %q not found: %w", id, err)
	}
	if p.Status != from {
		return fmt.Errorf("proposal %q is %s, expected %s", id, p.Status, from)
	}

	p.Status = to
	now := time.Now().UTC()
	p.ResolvedAt = &now
	return s.writeAtomic(s.path(id), *p)
}

// Cleanup removes resolved proposals older than maxAge. Pending proposals
// are never removed; review backlogs expire only by human decision.
func (s *Store) Cleanup(maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		if p.Status == StatusPending || p.ResolvedAt == nil || p.ResolvedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) read(id string) (*Proposal, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var p Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("corrupt proposal file: %w", err)
	}
	return &p, nil
}

// writeAtomic writes via a temp file and rename so readers never observe a
// partial proposal.
func (s *Store) writeAtomic(path string, p Proposal) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}
	return os.Rename(tmp, path)
}

// newID generates a proposal ID like "p-3fa9c1d204e8".
func newID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("p-%x", time.Now().UnixNano())
	}
	return "p-" + hex.EncodeToString(b)
}
