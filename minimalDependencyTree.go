package main

import (
	"context"
	"fmt"
	"sort"
)

// Output structures for minimal dependency tree
type MinimalDependency struct {
	ID           string           `json:"id,omitempty"`
	Request      string           `json:"request"`
	ResolvedType ResolutionStatus `json:"resolvedType"`
	Line         int              `json:"line"`
	IsPackage    bool             `json:"isPackage,omitempty"`
	// Nested imports sit inside a function, class or block
	IsNested bool `json:"isNested,omitempty"`
}

type MinimalDependencyTree map[string][]MinimalDependency

// BuildModuleTree walks the imports reachable from rootPath without splicing
// anything. Files that fail to read or scan are kept with no dependencies and
// reported as diagnostics.
func BuildModuleTree(ctx context.Context, fs FileSystem, resolver *ModuleResolver, rootPath string, guards []string, sink *DiagnosticSink) (MinimalDependencyTree, []string, error) {
	root, err := fs.Abs(rootPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}
	if !fs.Exists(ctx, root) {
		return nil, nil, fmt.Errorf("input file %s does not exist", rootPath)
	}

	result := make(MinimalDependencyTree)
	queue := []string{root}
	for len(queue) > 0 {
		filePath := queue[0]
		queue = queue[1:]
		if _, done := result[filePath]; done {
			continue
		}
		dependencies := []MinimalDependency{}
		result[filePath] = dependencies

		data, err := fs.ReadFile(ctx, filePath)
		if err != nil {
			sink.Add(Diagnostic{Kind: ReadFailed, Path: filePath, Message: err.Error()})
			continue
		}
		stripped, _, err := StripGuardBlocks(string(data), guards)
		if err != nil {
			sink.Add(Diagnostic{Kind: UnterminatedLiteral, Path: filePath, Message: err.Error()})
			continue
		}
		table, err := ScanSource([]byte(stripped))
		if err != nil {
			sink.Add(Diagnostic{Kind: UnterminatedLiteral, Path: filePath, Message: err.Error()})
			continue
		}
		kept := keptGuardSpans([]byte(stripped), table, guards)

		for _, stmt := range LocateImports([]byte(stripped), table) {
			if inAnySpan(stmt.Start, kept) {
				continue
			}
			for _, target := range stmt.Targets() {
				res := resolver.Resolve(ctx, target, filePath)
				if res.Status == NotEligible {
					continue
				}
				dependency := MinimalDependency{
					Request:      target.QualifiedName(),
					ResolvedType: res.Status,
					Line:         stmt.Line,
					IsPackage:    res.IsPackage,
					IsNested:     !stmt.IsModuleScope(),
				}
				if res.Status == Resolved {
					dependency.ID = res.Path
					queue = append(queue, res.Path)
				}
				dependencies = append(dependencies, dependency)
			}
		}
		result[filePath] = dependencies
	}

	sortedFiles := make([]string, 0, len(result))
	for filePath := range result {
		if filePath != root {
			sortedFiles = append(sortedFiles, filePath)
		}
	}
	sort.Strings(sortedFiles)
	// the walk starts from the entry file so cycles are reported from it
	sortedFiles = append([]string{root}, sortedFiles...)
	return result, sortedFiles, nil
}
