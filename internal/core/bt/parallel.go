package bt

import (
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Parallel ticks every child exactly once per tick, in order, and decides by
// counting results. A child error counts as a failure and is logged, not
// returned. Success is checked before failure when both thresholds are met.
type Parallel struct {
	composite
	requiredToFail    int
	requiredToSucceed int
	logger            log.Log
}

// NewParallel returns a Parallel node. A threshold of zero disables that outcome.
func NewParallel(name string, requiredToFail, requiredToSucceed int) *Parallel {
	return &Parallel{
		composite:         composite{baseNode: baseNode{name: name}},
		requiredToFail:    requiredToFail,
		requiredToSucceed: requiredToSucceed,
		logger:            log.NewNop(),
	}
}

func (p *Parallel) Kind() Kind { return KindParallel }

// Thresholds returns requiredToFail and requiredToSucceed.
func (p *Parallel) Thresholds() (requiredToFail, requiredToSucceed int) {
	return p.requiredToFail, p.requiredToSucceed
}

// SetLogger sets the logger that receives isolated child errors.
func (p *Parallel) SetLogger(logger log.Log) {
	if logger == nil {
		logger = log.NewNop()
	}
	p.logger = logger
}

func (p *Parallel) Tick(t TickContext) (Status, error) {
	succeeded, failed := 0, 0
	for i, ch := range p.children {
		st, err := ch.Tick(t)
		if err != nil {
			p.logger.Warn("parallel child failed",
				log.String("node", p.name),
				log.String("child", ch.Name()),
				log.Int("index", i),
				log.Error(err),
			)
			failed++
			continue
		}
		switch st {
		case StatusSuccess:
			succeeded++
		case StatusFailure:
			failed++
		}
	}

	if p.requiredToSucceed > 0 && succeeded >= p.requiredToSucceed {
		return StatusSuccess, nil
	}
	if p.requiredToFail > 0 && failed >= p.requiredToFail {
		return StatusFailure, nil
	}
	return StatusRunning, nil
}
