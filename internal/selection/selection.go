// Package selection filters training samples against a per-category duration
// budget.
//
// With no budget the input passes through untouched. With a budget, samples
// are grouped by category label, ordered by the configured policy, and
// accumulated per category until adding the next sample would push that
// category past the target. Categories are merged in lexicographic label
// order so budgeted output is reproducible for the deterministic policies.
package selection

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/book-expert/dataset-service/internal/core"
)

// Policy names the ordering applied within a category before accumulation.
type Policy string

// Supported selection policies.
const (
	// PolicyRandom shuffles candidates. Runs differ unless a seed is set.
	PolicyRandom Policy = "random"
	// PolicyMin prefers the shortest samples first.
	PolicyMin Policy = "min"
	// PolicyMax prefers the longest samples first.
	PolicyMax Policy = "max"
)

// ErrUnknownPolicy indicates a policy value outside random, min, and max.
var ErrUnknownPolicy = errors.New("unknown selection policy")

// ParsePolicy validates a policy value. Matching is case-insensitive on the
// trimmed value; anything unrecognized is an error, never a fallback.
func ParsePolicy(value string) (Policy, error) {
	policy := Policy(strings.ToLower(strings.TrimSpace(value)))
	switch policy {
	case PolicyRandom, PolicyMin, PolicyMax:
		return policy, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownPolicy, value)
	}
}

// Options controls a selection run.
type Options struct {
	// TargetSeconds is the per-category duration budget. Values at or
	// below zero disable filtering entirely.
	TargetSeconds float64
	// Policy orders candidates within each category.
	Policy Policy
	// Seed makes PolicyRandom reproducible when non-negative. Negative
	// values use a time-based source.
	Seed int64
}

// Select applies the duration budget to samples and reports per-category
// accounting. Without a budget it returns the samples unchanged, in input
// order, with no category entries.
func Select(samples []core.Sample, opts Options) ([]core.Sample, []core.CategoryReport, error) {
	if opts.TargetSeconds <= 0 {
		return samples, nil, nil
	}

	switch opts.Policy {
	case PolicyRandom, PolicyMin, PolicyMax:
	default:
		return nil, nil, fmt.Errorf("%w: '%s'", ErrUnknownPolicy, opts.Policy)
	}

	groups, labels := groupByCategory(samples)
	rng := newRand(opts.Seed)

	selected := make([]core.Sample, 0, len(samples))
	reports := make([]core.CategoryReport, 0, len(labels))

	for _, label := range labels {
		candidates := groups[label]
		ordered := orderCandidates(candidates, opts.Policy, rng)
		picked, seconds := takeWithinBudget(ordered, opts.TargetSeconds)

		selected = append(selected, picked...)
		reports = append(reports, core.CategoryReport{
			Label:      label,
			Candidates: len(candidates),
			Selected:   len(picked),
			Seconds:    seconds,
		})
	}

	return selected, reports, nil
}

// groupByCategory buckets samples under their normalized category label and
// returns the labels sorted lexicographically.
func groupByCategory(samples []core.Sample) (map[string][]core.Sample, []string) {
	groups := make(map[string][]core.Sample)

	for _, sample := range samples {
		label := normalizeLabel(sample.Category)
		groups[label] = append(groups[label], sample)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	return groups, labels
}

// orderCandidates returns a policy-ordered copy of candidates. The input
// slice is never reordered. Duration sorts are stable, so equal durations
// keep their table order.
func orderCandidates(candidates []core.Sample, policy Policy, rng *rand.Rand) []core.Sample {
	ordered := make([]core.Sample, len(candidates))
	copy(ordered, candidates)

	switch policy {
	case PolicyMin:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Seconds < ordered[j].Seconds
		})
	case PolicyMax:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Seconds > ordered[j].Seconds
		})
	case PolicyRandom:
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	return ordered
}

// takeWithinBudget accumulates ordered samples until the next one would push
// the running total past the target. The first sample is always taken, even
// when it alone exceeds the target, so no category with candidates comes out
// empty. Accumulation is sequential: the first over-budget sample ends the
// scan.
func takeWithinBudget(ordered []core.Sample, target float64) ([]core.Sample, float64) {
	picked := make([]core.Sample, 0, len(ordered))
	total := 0.0

	for _, sample := range ordered {
		if len(picked) > 0 && total+sample.Seconds > target {
			break
		}

		picked = append(picked, sample)
		total += sample.Seconds
	}

	return picked, total
}

// newRand builds the shuffle source. Non-negative seeds give reproducible
// runs.
func newRand(seed int64) *rand.Rand {
	if seed >= 0 {
		return rand.New(rand.NewSource(seed))
	}

	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// normalizeLabel lower-cases and trims a category label for grouping.
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
