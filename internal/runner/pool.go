package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/bt"
)

// Pool steps many independent runners concurrently. Runners in a pool must
// not share node instances, since a node would then be ticked from two
// goroutines at once.
type Pool struct {
	mu      sync.RWMutex
	runners []*Runner
	owners  map[bt.Node]string
	limit   int
}

// NewPool creates a pool that runs at most limit steps at once. A limit of
// zero or less means no limit.
func NewPool(limit int) *Pool {
	return &Pool{owners: make(map[bt.Node]string), limit: limit}
}

// Add registers r. It fails with ErrSharedNode if any node of r's tree is
// already owned by another runner in the pool. Nodes that are not comparable
// have no identity to track and are skipped.
func (p *Pool) Add(r *Runner) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		nodes  []bt.Node
		shared error
	)
	bt.Walk(r.Root(), func(_ int, n bt.Node) bool {
		if !bt.Comparable(n) {
			return true
		}
		if owner, ok := p.owners[n]; ok && shared == nil {
			shared = fmt.Errorf("%s %q (owned by %s): %w", n.Kind(), n.Name(), owner, ErrSharedNode)
		}
		nodes = append(nodes, n)
		return true
	})
	if shared != nil {
		return shared
	}
	for _, n := range nodes {
		p.owners[n] = r.Name()
	}
	p.runners = append(p.runners, r)
	return nil
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.runners)
}

// Step ticks every runner once. Reports are in Add order. The first tick
// error cancels the steps that have not started yet and is returned.
func (p *Pool) Step(ctx context.Context, dt time.Duration) ([]TickReport, error) {
	p.mu.RLock()
	runners := append([]*Runner(nil), p.runners...)
	p.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	reports := make([]TickReport, len(runners))
	for i, r := range runners {
		g.Go(func() error {
			report, err := r.Step(gctx, dt)
			reports[i] = report
			if err != nil {
				return fmt.Errorf("runner %s: %w", r.Name(), err)
			}
			return nil
		})
	}
	err := g.Wait()
	return reports, err
}

// Run steps the pool every cfg.Interval until every runner has finished
// (with StopOnTerminal), MaxTicks is reached, a step fails or ctx is done.
func (p *Pool) Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	prev := time.Now()
	for ticks := 1; ; ticks++ {
		now := time.Now()
		reports, err := p.Step(ctx, now.Sub(prev))
		prev = now
		if err != nil {
			return err
		}
		if cfg.StopOnTerminal && allTerminal(reports) {
			return nil
		}
		if cfg.MaxTicks > 0 && ticks >= cfg.MaxTicks {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func allTerminal(reports []TickReport) bool {
	for _, r := range reports {
		if !r.Status.Terminal() {
			return false
		}
	}
	return true
}
