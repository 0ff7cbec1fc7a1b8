package search

import (
	"context"
	"unicode/utf8"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
	"golang.org/x/sync/errgroup"
)

// ctxCheckInterval is how many tuples are evaluated between context checks.
const ctxCheckInterval = 1024

// apply evaluates rule on every tuple drawn with repetition from pool whose
// elements pass the rule's filters. Outputs are returned in cartesian-product
// order regardless of how many workers evaluated them.
func (e *Engine) apply(ctx context.Context, rule *rules.Rule, pool []string) ([]string, int, error) {
	candidates := make([][]string, rule.Arity)
	for i := range candidates {
		f := rule.Filters[i]
		if f.IsMatchAll() {
			candidates[i] = pool
			continue
		}
		for _, s := range pool {
			if f.Match(s) {
				candidates[i] = append(candidates[i], s)
			}
		}
		if len(candidates[i]) == 0 {
			return nil, 0, nil
		}
	}

	resolver := e.sys.Resolver()
	if rule.Arity == 0 {
		return e.enumerate(ctx, rule, resolver, candidates, 0, 0)
	}

	n := len(candidates[0])
	chunks := e.workers
	if chunks > n {
		chunks = n
	}
	if chunks < 2 {
		return e.enumerate(ctx, rule, resolver, candidates, 0, n)
	}

	// Split on the first argument, the most significant position of the
	// product, so concatenating chunk outputs restores enumeration order.
	results := make([][]string, chunks)
	counts := make([]int, chunks)
	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < chunks; c++ {
		lo, hi := c*n/chunks, (c+1)*n/chunks
		g.Go(func() error {
			out, cnt, err := e.enumerate(gctx, rule, resolver, candidates, lo, hi)
			results[c], counts[c] = out, cnt
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var outputs []string
	total := 0
	for c := range results {
		outputs = append(outputs, results[c]...)
		total += counts[c]
	}
	return outputs, total, nil
}

// enumerate evaluates the tuples whose first element index lies in [lo, hi).
// A tuple whose evaluation fails contributes nothing. Outputs over the length
// bound, already in the store, or repeated within the range are dropped as
// they are produced, so only admissible strings are retained.
func (e *Engine) enumerate(ctx context.Context, rule *rules.Rule, resolver rules.Resolver, candidates [][]string, lo, hi int) ([]string, int, error) {
	if rule.Arity == 0 {
		out, err := rule.Evaluate(nil, resolver)
		if err != nil {
			e.logger.Debug("Rule evaluation failed", "rule", rule.Name, "error", err)
			return nil, 1, nil
		}
		if !e.admissible(out) {
			return nil, 1, nil
		}
		return []string{out}, 1, nil
	}

	var outputs []string
	seen := make(map[string]struct{})
	count := 0
	idx := make([]int, rule.Arity)
	idx[0] = lo
	args := make([]string, rule.Arity)

	for idx[0] < hi {
		for i := range args {
			args[i] = candidates[i][idx[i]]
		}
		count++
		if count%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, count, err
			}
		}

		out, err := rule.Evaluate(args, resolver)
		if err != nil {
			e.logger.Debug("Rule evaluation failed", "rule", rule.Name, "args", args, "error", err)
		} else if _, dup := seen[out]; !dup && e.admissible(out) {
			seen[out] = struct{}{}
			outputs = append(outputs, out)
		}

		for k := rule.Arity - 1; k >= 0; k-- {
			idx[k]++
			if k == 0 || idx[k] < len(candidates[k]) {
				break
			}
			idx[k] = 0
		}
	}
	return outputs, count, nil
}

// admissible reports whether out fits the length bound and is not yet a
// theorem. The store is only read while an iteration runs.
func (e *Engine) admissible(out string) bool {
	return utf8.RuneCountInString(out) <= e.maxLength && !e.store.Contains(out)
}
