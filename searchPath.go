package main

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

var DefaultBinaryPatterns = []string{"*.so", "*.pyd", "*.dylib"}

// SearchPath is the ordered list of roots absolute imports are resolved against.
type SearchPath struct {
	Roots []string
	// InterpreterRoots come from the interpreter's sys.path. They only serve
	// modules matched by an explicit allow list entry.
	InterpreterRoots []string
	fs               FileSystem
	binaryMatchers   []GlobMatcher
}

func NewSearchPath(fs FileSystem, roots []string, binaryPatterns []string) (*SearchPath, error) {
	if len(binaryPatterns) == 0 {
		binaryPatterns = DefaultBinaryPatterns
	}
	matchers, err := CreateFileGlobMatchers(binaryPatterns)
	if err != nil {
		return nil, fmt.Errorf("binaryPatterns: %w", err)
	}
	seen := map[string]bool{}
	deduped := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		deduped = append(deduped, root)
	}
	return &SearchPath{Roots: deduped, fs: fs, binaryMatchers: matchers}, nil
}

// AddInterpreterRoots appends sys.path entries not already on the search path.
func (s *SearchPath) AddInterpreterRoots(roots []string) {
	for _, root := range roots {
		if root == "" || slices.Contains(s.Roots, root) || slices.Contains(s.InterpreterRoots, root) {
			continue
		}
		s.InterpreterRoots = append(s.InterpreterRoots, root)
	}
}

func (s *SearchPath) isBinaryFile(name string) bool {
	return MatchesAnyGlobMatcher(name, s.binaryMatchers)
}

// IsBinaryPackage reports whether the package directory at dir holds compiled
// extension modules.
func (s *SearchPath) IsBinaryPackage(ctx context.Context, dir string) bool {
	if !s.fs.IsDir(ctx, dir) {
		return false
	}
	names, err := s.fs.List(ctx, dir)
	if err != nil {
		return false
	}
	for _, name := range names {
		if s.isBinaryFile(name) {
			return true
		}
	}
	return false
}

// HasBinarySibling reports whether parent holds a compiled module named
// `<module>.so` or `<module>.<tag>.so`.
func (s *SearchPath) HasBinarySibling(ctx context.Context, parent string, module string) bool {
	if !s.fs.IsDir(ctx, parent) {
		return false
	}
	names, err := s.fs.List(ctx, parent)
	if err != nil {
		return false
	}
	for _, name := range names {
		if strings.HasPrefix(name, module+".") && s.isBinaryFile(name) {
			return true
		}
	}
	return false
}

// PythonSysPath asks the interpreter for its module search path.
func PythonSysPath(ctx context.Context, python string) ([]string, error) {
	if python == "" {
		python = "python3"
	}
	out, err := exec.CommandContext(ctx, python, "-c", "import sys; print('\\n'.join(sys.path))").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query sys.path from %s: %w", python, err)
	}
	roots := []string{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		// the empty entry stands for the current directory, the input dir already covers it
		if line == "" || strings.HasSuffix(line, ".zip") {
			continue
		}
		roots = append(roots, line)
	}
	return roots, nil
}
