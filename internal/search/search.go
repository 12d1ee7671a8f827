// Package search implements the universal search aggregator that fans a
// query out to every loaded skill's search provider and merges the
// results (spec §4.8).
package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/agentcore/runtime/internal/skill"
)

// DefaultTotalLimit is applied when the caller doesn't specify one.
const DefaultTotalLimit = 20

// Options configures an Aggregate call.
type Options struct {
	TotalLimit   int // default DefaultTotalLimit
	PerSkillLimit int // 0 = unlimited per skill
}

// Aggregate queries every provider concurrently, boosts scores by
// importance, sorts, and truncates to TotalLimit. A provider that errors
// is logged and excluded; the call still returns 200-equivalent (no error).
func Aggregate(ctx context.Context, providers map[string]skill.SearchProvider, query string, opts Options) []skill.Result {
	if opts.TotalLimit <= 0 {
		opts.TotalLimit = DefaultTotalLimit
	}

	var (
		mu      sync.Mutex
		results []skill.Result
		wg      sync.WaitGroup
	)

	for name, provider := range providers {
		wg.Add(1)
		go func(name string, provider skill.SearchProvider) {
			defer wg.Done()
			limit := opts.PerSkillLimit
			if limit <= 0 {
				limit = opts.TotalLimit
			}
			res, err := provider.Search(ctx, query, limit)
			if err != nil {
				slog.Warn("search: provider failed", "skill", name, "error", err)
				return
			}
			for i := range res {
				res[i].Skill = name
				res[i].Score = boost(res[i].Score, res[i].Metadata)
			}
			mu.Lock()
			results = append(results, res...)
			mu.Unlock()
		}(name, provider)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Skill != results[j].Skill {
			return results[i].Skill < results[j].Skill
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > opts.TotalLimit {
		results = results[:opts.TotalLimit]
	}
	return results
}

// boost raises score by 0.15 per importance point (0, 1, or 2), capped at 1.
func boost(score float64, metadata map[string]any) float64 {
	importance, ok := metadata["importance"]
	if !ok {
		return score
	}
	var level float64
	switch v := importance.(type) {
	case int:
		level = float64(v)
	case float64:
		level = v
	default:
		return score
	}
	boosted := score + 0.15*level
	if boosted > 1 {
		return 1
	}
	return boosted
}
