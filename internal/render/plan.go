package render

import (
	"path/filepath"
	"sort"
	"strings"

	"pagebind/internal/naturalsort"
)

// Group is a contiguous, ordered slice of page images rendered together into
// one intermediate document. Index is assigned at partition time and is the
// only reordering key used after parallel rendering.
type Group struct {
	Index int
	Paths []string
}

// Plan deduplicates and orders the extracted assets, then partitions them
// into indexed groups sized by the speed mode, worker count, and total count.
// Ordering happens exactly once, here, before any parallel work.
func Plan(paths []string, opts Options) []Group {
	ordered := orderAssets(paths, opts.MergeOrder)
	if len(ordered) == 0 {
		return nil
	}
	return partition(ordered, groupSize(len(ordered), opts.Speed, opts.workers()))
}

func orderAssets(paths []string, order Order) []string {
	seen := make(map[string]struct{}, len(paths))
	ordered := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		ordered = append(ordered, path)
	}

	naturalsort.Strings(ordered)

	switch order {
	case OrderAlphabetical:
		sort.SliceStable(ordered, func(i, j int) bool {
			return strings.ToLower(filepath.Base(ordered[i])) < strings.ToLower(filepath.Base(ordered[j]))
		})
	case OrderReversed:
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}
	return ordered
}

// groupSize balances per-group encode cost against scheduling overhead.
// Larger groups mean fewer intermediate documents but more lost work when a
// group fails.
func groupSize(total int, speed Speed, workers int) int {
	var base int
	switch speed {
	case SpeedVeryFast:
		base = 60
	case SpeedFast:
		base = 40
	default:
		base = 25
	}

	size := base
	switch {
	case workers > 6:
		size = base / 2
	case workers < 3:
		size = base * 3 / 2
	}

	if total > 1000 && size > 30 {
		size = 30
	} else if total < 100 && size < 15 {
		size = 15
	}

	perWorker := total / workers
	if size > perWorker {
		size = perWorker
	}
	if size < 10 {
		size = 10
	}
	return size
}

func partition(ordered []string, size int) []Group {
	groups := make([]Group, 0, (len(ordered)+size-1)/size)
	for start := 0; start < len(ordered); start += size {
		end := start + size
		if end > len(ordered) {
			end = len(ordered)
		}
		groups = append(groups, Group{Index: len(groups), Paths: ordered[start:end]})
	}
	return groups
}
