// Package search derives theorems from a formal system by bounded,
// breadth-first application of its rules.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/system"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/theorem"
	"github.com/google/uuid"
)

const (
	// MaxDepthCap is the largest accepted depth bound.
	MaxDepthCap = 999
	// MaxLengthCap is the largest accepted length bound.
	MaxLengthCap = 9999
)

// ErrBoundOutOfRange is returned when a depth or length bound exceeds its cap.
var ErrBoundOutOfRange = errors.New("search bound out of range")

// Options configures an Engine.
type Options struct {
	MaxDepth  int
	MaxLength int
	// Workers is the number of goroutines evaluating the tuples of one rule.
	// Values below 2 evaluate sequentially.
	Workers int
	// Sinks receive every batch of admitted theorems.
	Sinks  []Sink
	Logger *slog.Logger
}

// DefaultOptions returns the default search bounds.
func DefaultOptions() Options {
	return Options{
		MaxDepth:  5,
		MaxLength: 100,
		Workers:   1,
	}
}

// Batch is the set of theorems admitted by one iteration.
type Batch struct {
	RunID    string            `json:"run_id"`
	Depth    int               `json:"depth"`
	Theorems []theorem.Theorem `json:"theorems"`
}

// Sink observes admitted theorems. Sink errors are logged and never abort a
// search.
type Sink interface {
	Admitted(ctx context.Context, batch Batch) error
}

// Engine runs derivation searches over one system. Its theorem store and
// explored depth persist across calls so later searches resume where
// earlier ones stopped. Engine is safe for concurrent use; searches are
// serialised.
type Engine struct {
	mu        sync.Mutex
	sys       *system.System
	store     *theorem.Store
	searched  int
	maxDepth  int
	maxLength int
	workers   int
	sinks     []Sink
	logger    *slog.Logger
}

// NewEngine creates an engine whose store is seeded with the system's
// axioms at depth 0.
func NewEngine(sys *system.System, opts Options) (*Engine, error) {
	if sys == nil {
		return nil, fmt.Errorf("system cannot be nil")
	}
	if err := checkBound("max depth", opts.MaxDepth, MaxDepthCap); err != nil {
		return nil, err
	}
	if err := checkBound("max length", opts.MaxLength, MaxLengthCap); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	store := theorem.NewStore()
	for _, ax := range sys.Axioms() {
		store.Add(ax, 0)
	}

	return &Engine{
		sys:       sys,
		store:     store,
		maxDepth:  opts.MaxDepth,
		maxLength: opts.MaxLength,
		workers:   opts.Workers,
		sinks:     opts.Sinks,
		logger:    opts.Logger.With("component", "search"),
	}, nil
}

// TargetResult reports whether one requested string was found.
type TargetResult struct {
	Target string `json:"target"`
	Found  bool   `json:"found"`
	Depth  int    `json:"depth"`
}

// Result is the outcome of one Search call.
type Result struct {
	RunID string `json:"run_id"`
	// Targets follows request order with duplicates removed.
	Targets []TargetResult `json:"targets,omitempty"`
	// Theorems is filled by exhaustive searches: every theorem with depth
	// within the current bound, in derivation order.
	Theorems    []theorem.Theorem `json:"theorems,omitempty"`
	Iterations  int               `json:"iterations"`
	Evaluations int               `json:"evaluations"`
	Searched    int               `json:"searched"`
	MaxDepth    int               `json:"max_depth"`
	Elapsed     time.Duration     `json:"elapsed"`
}

// Missing returns the targets that were not found.
func (r *Result) Missing() []string {
	var out []string
	for _, t := range r.Targets {
		if !t.Found {
			out = append(out, t.Target)
		}
	}
	return out
}

// Target searches until every target is found or the depth bound is
// exhausted.
func (e *Engine) Target(ctx context.Context, targets ...string) (*Result, error) {
	return e.Search(ctx, targets, false)
}

// Exhaust derives every theorem within the bounds.
func (e *Engine) Exhaust(ctx context.Context) (*Result, error) {
	return e.Search(ctx, nil, true)
}

// Search explores depths searched+1..MaxDepth. In target mode it stops after
// the iteration in which the last outstanding target is admitted. A
// cancelled context discards the iteration in progress, leaving the store at
// the last completed depth, and returns the context's error.
func (e *Engine) Search(ctx context.Context, targets []string, exhaustive bool) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res := &Result{RunID: uuid.NewString(), MaxDepth: e.maxDepth}
	logger := e.logger.With("run_id", res.RunID)

	// Fast path: targets already known need no work.
	remaining := make(map[string]int)
	requested := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if _, dup := requested[t]; dup {
			continue
		}
		requested[t] = struct{}{}
		idx := len(res.Targets)
		remaining[t] = idx
		res.Targets = append(res.Targets, TargetResult{Target: t})
		if d, ok := e.store.Depth(t); ok {
			res.Targets[idx].Found = true
			res.Targets[idx].Depth = d
			delete(remaining, t)
		}
	}

	if exhaustive || len(remaining) > 0 {
		logger.Debug("Search started",
			"targets", len(remaining),
			"exhaustive", exhaustive,
			"from_depth", e.searched+1,
			"max_depth", e.maxDepth,
		)
		for depth := e.searched + 1; depth <= e.maxDepth; depth++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			admitted, evals, err := e.iterate(ctx, depth)
			if err != nil {
				return nil, err
			}

			for _, v := range admitted {
				e.store.Add(v, depth)
				if idx, ok := remaining[v]; ok {
					res.Targets[idx].Found = true
					res.Targets[idx].Depth = depth
					delete(remaining, v)
				}
			}
			e.searched = depth
			res.Iterations++
			res.Evaluations += evals
			logger.Debug("Iteration complete", "depth", depth, "admitted", len(admitted), "evaluations", evals)

			e.notify(ctx, logger, res.RunID, depth, admitted)

			if !exhaustive && len(remaining) == 0 {
				break
			}
		}
	}

	if exhaustive {
		res.Theorems = e.store.UpTo(e.maxDepth)
	}
	res.Searched = e.searched
	res.Elapsed = time.Since(start)
	logger.Info("Search finished",
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"theorems", e.store.Len(),
		"missing", len(remaining),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// iterate computes the strings admitted at depth. The store is read but
// not modified, so a failed iteration leaves no trace.
func (e *Engine) iterate(ctx context.Context, depth int) ([]string, int, error) {
	pool := e.store.Values()
	seen := make(map[string]struct{})
	var admitted []string
	evaluations := 0

	for _, rule := range e.sys.Rules() {
		outputs, evals, err := e.apply(ctx, rule, pool)
		if err != nil {
			return nil, 0, err
		}
		evaluations += evals
		for _, out := range outputs {
			if _, dup := seen[out]; dup {
				continue
			}
			seen[out] = struct{}{}
			admitted = append(admitted, out)
		}
	}
	return admitted, evaluations, nil
}

func (e *Engine) notify(ctx context.Context, logger *slog.Logger, runID string, depth int, admitted []string) {
	if len(e.sinks) == 0 || len(admitted) == 0 {
		return
	}
	batch := Batch{RunID: runID, Depth: depth, Theorems: make([]theorem.Theorem, len(admitted))}
	for i, v := range admitted {
		batch.Theorems[i] = theorem.Theorem{Value: v, Depth: depth}
	}
	for _, s := range e.sinks {
		if err := s.Admitted(ctx, batch); err != nil {
			logger.Warn("Theorem sink failed", "depth", depth, "error", err)
		}
	}
}

// SetMaxDepth changes the depth bound.
func (e *Engine) SetMaxDepth(n int) error {
	if err := checkBound("max depth", n, MaxDepthCap); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxDepth = n
	return nil
}

// SetMaxLength changes the length bound. Theorems already admitted are
// kept even when longer than the new bound.
func (e *Engine) SetMaxLength(n int) error {
	if err := checkBound("max length", n, MaxLengthCap); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxLength = n
	return nil
}

// MaxDepth returns the depth bound.
func (e *Engine) MaxDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxDepth
}

// MaxLength returns the length bound.
func (e *Engine) MaxLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxLength
}

// Searched returns the highest depth fully explored.
func (e *Engine) Searched() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searched
}

// Theorems returns every known theorem in derivation order.
func (e *Engine) Theorems() []theorem.Theorem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.All()
}

// System returns the system the engine searches.
func (e *Engine) System() *system.System {
	return e.sys
}

func checkBound(name string, n, limit int) error {
	if n < 0 || n > limit {
		return fmt.Errorf("%w: %s %d not in [0, %d]", ErrBoundOutOfRange, name, n, limit)
	}
	return nil
}
