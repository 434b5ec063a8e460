package rules

import (
	"regexp"
	"sync"
)

// Compiled patterns are shared across concurrent assessments. Patterns carry
// full-match semantics, so bare expressions are anchored before compiling.
var patternCache = struct {
	sync.RWMutex
	compiled map[string]*regexp.Regexp
}{compiled: make(map[string]*regexp.Regexp)}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	patternCache.RLock()
	re, ok := patternCache.compiled[pattern]
	patternCache.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, err
	}

	patternCache.Lock()
	patternCache.compiled[pattern] = re
	patternCache.Unlock()
	return re, nil
}
