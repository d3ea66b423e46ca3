package schema

import (
	"regexp"

	"github.com/pingcap/errors"
)

// Filter decides which qualified names take part in synchronization.
// Exclusion is pattern-based, inclusion is exact-name and always wins.
type Filter struct {
	excludes []*regexp.Regexp
	includes map[string]struct{}
}

// NewFilter compiles the exclude patterns eagerly so that a malformed
// pattern fails before any remote call is made.
func NewFilter(excludePatterns, includeNames []string) (*Filter, error) {
	f := &Filter{
		includes: make(map[string]struct{}, len(includeNames)),
	}
	for _, p := range excludePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Annotatef(err, "bad exclude pattern %q", p)
		}
		f.excludes = append(f.excludes, re)
	}
	for _, n := range includeNames {
		f.includes[n] = struct{}{}
	}
	return f, nil
}

// Include reports whether the qualified name should be synchronized.
// An exact include-name match overrides every exclude pattern. Patterns are
// searched, not anchored, so "\[dbo\]\.\[_.*\]" excludes any match anywhere
// in the name.
func (f *Filter) Include(qualifiedName string) bool {
	if _, ok := f.includes[qualifiedName]; ok {
		return true
	}
	for _, re := range f.excludes {
		if re.MatchString(qualifiedName) {
			return false
		}
	}
	return true
}
