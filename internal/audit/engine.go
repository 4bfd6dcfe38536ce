package audit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/cleanaudit/internal/logger"
)

// Engine runs a check sequence over one set of inputs. It holds no state
// between runs.
type Engine struct {
	rules   *Rules
	checks  []Check
	workers int
	logger  *logger.Logger
}

// NewEngine creates an engine for the declared check sequence.
func NewEngine(rules *Rules, workers int, log *logger.Logger) (*Engine, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules are nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		rules:   rules,
		checks:  Checks(),
		workers: workers,
		logger:  log,
	}, nil
}

// WithChecks returns a copy of the engine running the given sequence.
func (e *Engine) WithChecks(checks []Check) *Engine {
	cp := *e
	cp.checks = checks
	return &cp
}

// Run executes every check and returns the results in sequence order.
// Column and schema problems skip the affected check; any other check error
// aborts the run, as does context cancellation.
func (e *Engine) Run(ctx context.Context, in *Inputs) ([]CheckResult, error) {
	if in == nil {
		return nil, fmt.Errorf("inputs are nil")
	}
	ev := &env{in: in, rules: e.rules}
	slots := make([][]CheckResult, len(e.checks))

	e.logger.Infof("Starting audit: %d checks, %d workers", len(e.checks), e.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, c := range e.checks {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("audit interrupted: %w", err)
			}
			results, err := e.runCheck(ev, c)
			if err != nil {
				return err
			}
			slots[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []CheckResult
	for _, s := range slots {
		out = append(out, s...)
	}
	e.logger.Infof("Audit complete: %d results from %d checks", len(out), len(e.checks))
	return out, nil
}

// runCheck runs one check and lays its results out in declared output order.
func (e *Engine) runCheck(ev *env, c Check) ([]CheckResult, error) {
	log := e.logger.WithCheck(c.Key)

	results, err := c.run(ev)
	if err != nil {
		if !degrades(err) {
			return nil, fmt.Errorf("check %s: %w", c.Key, err)
		}
		log.Warnf("Check skipped: %v", err)
		results = nil
		for _, o := range c.Outputs {
			results = append(results, skippedResult(o.Key, err))
		}
	}

	byKey := make(map[string]CheckResult, len(results))
	for _, r := range results {
		byKey[r.Key] = r
	}
	if len(byKey) != len(results) || len(byKey) > len(c.Outputs) {
		return nil, fmt.Errorf("check %s: produced %d results for %d outputs", c.Key, len(results), len(c.Outputs))
	}

	out := make([]CheckResult, len(c.Outputs))
	for i, o := range c.Outputs {
		r, ok := byKey[o.Key]
		if !ok {
			return nil, fmt.Errorf("check %s: no result for %s", c.Key, o.Key)
		}
		r.Number = c.Number
		r.Title = o.Title
		r.Required = o.Required
		out[i] = r
		log.Debugw("Check finished", "result", o.Key, "status", r.Status, "findings", len(r.Findings))
	}
	return out, nil
}
