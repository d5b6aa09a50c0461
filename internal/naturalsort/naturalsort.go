// Package naturalsort orders page file names the way readers expect:
// embedded digit runs compare as integers and remaining text compares
// case-insensitively, so "page2" sorts before "page10".
package naturalsort

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	mu       sync.Mutex
	collator = collate.New(language.Und, collate.Numeric, collate.Loose)
)

// Compare returns -1, 0, or 1 ordering a relative to b in natural order.
func Compare(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return collator.CompareString(a, b)
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings sorts values in place in natural order.
func Strings(values []string) {
	mu.Lock()
	defer mu.Unlock()
	sort.SliceStable(values, func(i, j int) bool {
		return collator.CompareString(values[i], values[j]) < 0
	})
}
