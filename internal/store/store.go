// Package store persists the local user profile and activity history
// as JSON files under the application's home directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Profile holds the locally stored user details. There is no account
// system: one profile per installation, edited through the CLI.
type Profile struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Place       string    `json:"place,omitempty"`
	Language    string    `json:"language,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ActivityKind names the capability that produced a history entry.
type ActivityKind string

const (
	ActivityLocation     ActivityKind = "location-analysis"
	ActivityImage        ActivityKind = "image-analysis"
	ActivityPrescription ActivityKind = "prescription-analysis"
	ActivityMentalHealth ActivityKind = "mental-health"
	ActivitySymptoms     ActivityKind = "symptom-checker"
)

// ActivityEntry is one recorded analysis. Data holds the full result
// so past reports can be re-rendered without another upstream call.
type ActivityEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      ActivityKind    `json:"kind"`
	Title     string          `json:"title"`
	Data      json.RawMessage `json:"data,omitempty"`
	Language  string          `json:"language,omitempty"`
}

// maxHistoryEntries bounds the history file; oldest entries fall off.
const maxHistoryEntries = 200

// Store reads and writes profile.json and history.json in dir.
type Store struct {
	dir string
}

// ErrNoProfile is returned when no profile has been saved yet.
var ErrNoProfile = errors.New("no profile saved")

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir is the store location under the user's home directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".geosick"), nil
}

func (s *Store) profilePath() string { return filepath.Join(s.dir, "profile.json") }
func (s *Store) historyPath() string { return filepath.Join(s.dir, "history.json") }

// Profile loads the saved profile.
func (s *Store) Profile() (*Profile, error) {
	data, err := os.ReadFile(s.profilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// SaveProfile writes the profile, stamping CreatedAt on first save and
// UpdatedAt on every save.
func (s *Store) SaveProfile(p *Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		if existing, err := s.Profile(); err == nil {
			p.CreatedAt = existing.CreatedAt
		} else {
			p.CreatedAt = now
		}
	}
	p.UpdatedAt = now

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(s.profilePath(), data, 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// AppendActivity records an entry at the head of the history, filling
// in its identity and timestamp. The history is trimmed to its cap.
func (s *Store) AppendActivity(entry ActivityEntry) (*ActivityEntry, error) {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()

	history, err := s.history()
	if err != nil {
		return nil, err
	}

	history = append([]ActivityEntry{entry}, history...)
	if len(history) > maxHistoryEntries {
		history = history[:maxHistoryEntries]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.historyPath(), data, 0644); err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}
	return &entry, nil
}

// History returns the newest entries first, at most limit of them.
// limit <= 0 returns everything.
func (s *Store) History(limit int) ([]ActivityEntry, error) {
	history, err := s.history()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// ClearHistory removes all recorded activity.
func (s *Store) ClearHistory() error {
	if err := os.Remove(s.historyPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) history() ([]ActivityEntry, error) {
	data, err := os.ReadFile(s.historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var history []ActivityEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return history, nil
}
