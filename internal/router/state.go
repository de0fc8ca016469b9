package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Mode selects the preferred backing store.
type Mode string

const (
	ModePrimary   Mode = "primary"
	ModeSecondary Mode = "secondary"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePrimary:
		return ModePrimary, nil
	case ModeSecondary:
		return ModeSecondary, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State is an immutable snapshot of the router's shared state. It is never
// modified after being published; updates publish a new snapshot.
type State struct {
	Mode        Mode
	RefreshedAt time.Time
	known       map[string]struct{}
}

// Has reports whether ticker is known to be available in the primary store.
func (s *State) Has(ticker string) bool {
	_, ok := s.known[ticker]
	return ok
}

// Known returns the number of tickers known to the primary store.
func (s *State) Known() int { return len(s.known) }

func (s *State) withMode(m Mode) *State {
	return &State{Mode: m, RefreshedAt: s.RefreshedAt, known: s.known}
}

func (s *State) withKnown(known map[string]struct{}, at time.Time) *State {
	return &State{Mode: s.Mode, RefreshedAt: at, known: known}
}

func (s *State) without(ticker string) *State {
	known := make(map[string]struct{}, len(s.known))
	for t := range s.known {
		if t != ticker {
			known[t] = struct{}{}
		}
	}
	return &State{Mode: s.Mode, RefreshedAt: s.RefreshedAt, known: known}
}

// persisted is the on-disk form of the operator-controlled mode.
type persisted struct {
	Mode      Mode      `json:"mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// loadMode reads the persisted mode. A missing file yields "".
func loadMode(path string) (Mode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return "", err
	}
	if p.Mode == "" {
		return "", nil
	}
	return ParseMode(string(p.Mode))
}

// saveMode writes the mode to path, replacing the file atomically.
func saveMode(path string, m Mode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(persisted{Mode: m, UpdatedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
