package scan

import (
	"strings"
	"sync"
)

// WordSet is a read-only set of lowercase words.
type WordSet map[string]struct{}

func (s WordSet) Has(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// ParseWordList reads a newline-delimited list. Blank lines and lines
// starting with '#' are ignored.
func ParseWordList(data string) WordSet {
	set := make(WordSet)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return set
}

// LazyWordSet parses data on first use. Concurrent first calls are safe and
// parse exactly once.
func LazyWordSet(data string) func() WordSet {
	return sync.OnceValue(func() WordSet {
		return ParseWordList(data)
	})
}
