package runner

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNilRoot         = errors.New("runner requires a root node")
	ErrInvalidInterval = errors.New("tick interval must be positive")
	ErrInvalidMaxTicks = errors.New("max ticks must not be negative")
	ErrSharedNode      = errors.New("node already belongs to another runner in the pool")
)

// Config controls how a Runner drives its tree.
type Config struct {
	// Name labels reports, logs and metrics. Defaults to the root node's name.
	Name string `json:"name" yaml:"name"`
	// Interval between ticks in Run.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// MaxTicks stops Run after that many ticks. Zero means no limit.
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`
	// StopOnTerminal stops Run once the root returns Success or Failure.
	StopOnTerminal bool `json:"stop_on_terminal" yaml:"stop_on_terminal"`
}

// DefaultConfig ticks at 20 Hz until the root finishes.
func DefaultConfig() Config {
	return Config{
		Interval:       50 * time.Millisecond,
		StopOnTerminal: true,
	}
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxTicks, c.MaxTicks)
	}
	return nil
}
