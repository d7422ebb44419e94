package bt

import (
	"fmt"
	"strings"
)

// Status is the result of ticking a node.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// Valid reports whether s is one of the three defined statuses.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusRunning
}

// Terminal reports whether s ends a pass over a subtree (Success or Failure).
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ParseStatus parses "success", "failure" or "running", ignoring case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return StatusSuccess, nil
	case "failure":
		return StatusFailure, nil
	case "running":
		return StatusRunning, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal status %d: %w", int(s), ErrInvalidStatus)
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
