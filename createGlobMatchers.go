package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type GlobMatcher struct {
	globPattern  glob.Glob
	inputString  string
	isAdditional bool
}

// CreateGlobMatchers compiles module name patterns using '.' as separator,
// so `pkg.*` matches `pkg.a` but not `pkg.a.b`, while `pkg.**` matches both.
func CreateGlobMatchers(patterns []string) ([]GlobMatcher, error) {
	globMatchers := []GlobMatcher{}
	for idx, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			return nil, fmt.Errorf("pattern[%d]: empty module pattern", idx)
		}
		compiled, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("pattern[%d] %q: %w", idx, pattern, err)
		}
		globMatchers = append(globMatchers, GlobMatcher{
			globPattern: compiled,
			inputString: pattern,
		})
		// A plain module name also covers its submodules, `pkg` matches `pkg.sub`
		if !strings.ContainsAny(pattern, "*?[{") {
			additionalPattern := pattern + ".**"
			globMatchers = append(globMatchers, GlobMatcher{
				globPattern:  glob.MustCompile(additionalPattern, '.'),
				inputString:  additionalPattern,
				isAdditional: true,
			})
		}
	}
	return globMatchers, nil
}

func MatchesAnyGlobMatcher(name string, matchers []GlobMatcher) bool {
	for _, matcher := range matchers {
		if matcher.globPattern.Match(name) {
			return true
		}
	}
	return false
}

// ModuleMatcher decides which absolute module names may be inlined.
// An empty allow list allows every module; the deny list always wins.
type ModuleMatcher struct {
	allow []GlobMatcher
	deny  []GlobMatcher
}

func NewModuleMatcher(allow []string, deny []string) (*ModuleMatcher, error) {
	allowMatchers, err := CreateGlobMatchers(allow)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}
	denyMatchers, err := CreateGlobMatchers(deny)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &ModuleMatcher{allow: allowMatchers, deny: denyMatchers}, nil
}

func (m *ModuleMatcher) IsDenied(name string) bool {
	return MatchesAnyGlobMatcher(name, m.deny)
}

// IsExplicitlyAllowed reports whether name is matched by a non-empty allow list.
func (m *ModuleMatcher) IsExplicitlyAllowed(name string) bool {
	return len(m.allow) > 0 && MatchesAnyGlobMatcher(name, m.allow)
}

func (m *ModuleMatcher) IsAllowed(name string) bool {
	if m.IsDenied(name) {
		return false
	}
	return len(m.allow) == 0 || MatchesAnyGlobMatcher(name, m.allow)
}

// CreateFileGlobMatchers compiles file name patterns such as `*.so`.
func CreateFileGlobMatchers(patterns []string) ([]GlobMatcher, error) {
	globMatchers := make([]GlobMatcher, 0, len(patterns))
	for idx, pattern := range patterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern[%d] %q: %w", idx, pattern, err)
		}
		globMatchers = append(globMatchers, GlobMatcher{globPattern: compiled, inputString: pattern})
	}
	return globMatchers, nil
}
