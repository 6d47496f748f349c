package main

import (
	"fmt"
	"strings"
)

// FindCircularDependencies detects circular dependencies in the module tree
func FindCircularDependencies(deps MinimalDependencyTree, sortedFilesList []string) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	// Use shared path slice to avoid copying
	path := make([]string, 0, 64)

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = true
		recStack[node] = true

		path = append(path, node)

		for _, dep := range deps[node] {
			if dep.ID == "" {
				continue
			}

			// Dependency on the recursion stack closes a cycle
			if recStack[dep.ID] {
				cycleStart := -1
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == dep.ID {
						cycleStart = i
						break
					}
				}
				if cycleStart >= 0 {
					cycle := make([]string, len(path)-cycleStart+1)
					copy(cycle, path[cycleStart:])
					cycle[len(cycle)-1] = dep.ID // Close the cycle
					cycles = append(cycles, cycle)
				}
				continue
			}

			if !visited[dep.ID] {
				dfs(dep.ID)
			}
		}

		// Remove current node from path when backtracking
		path = path[:len(path)-1]

		recStack[node] = false
	}

	for _, node := range sortedFilesList {
		if !visited[node] {
			dfs(node)
		}
	}

	return deduplicateStringArrays(cycles)
}

// FormatCircularDependencies formats circular dependencies for display
func FormatCircularDependencies(cycles [][]string, pathPrefix string, deps MinimalDependencyTree) string {
	if len(cycles) == 0 {
		return fmt.Sprintln("No circular imports found! ✅")
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d circular imports:\n\n", len(cycles))

	for i, cycle := range cycles {
		fmt.Fprintf(&result, "Circular import %d:\n", i+1)
		for j, file := range cycle {
			cleanPath := strings.TrimPrefix(file, pathPrefix)

			request := ""
			nested := false
			if j > 0 {
				for _, imp := range deps[cycle[j-1]] {
					if imp.ID == file {
						request = imp.Request
						nested = imp.IsNested
						break
					}
				}
			}

			indent := strings.Repeat(" ", j)
			switch {
			case j == 0:
				fmt.Fprintf(&result, "%s ➞ %s (cycle start)\n", indent, cleanPath)
			case nested:
				fmt.Fprintf(&result, "%s ➞ %s ('%s', nested)\n", indent, cleanPath, request)
			default:
				fmt.Fprintf(&result, "%s ➞ %s ('%s')\n", indent, cleanPath, request)
			}
		}
		result.WriteString("\n")
	}
	return result.String()
}

// deduplicateStringArrays deduplicates cycles
func deduplicateStringArrays(arr [][]string) [][]string {
	entries := make(map[string]struct{}, len(arr))
	result := make([][]string, 0, len(arr))

	for _, arrNested := range arr {
		key := strings.Join(arrNested, ",")
		if _, exists := entries[key]; !exists {
			result = append(result, arrNested)
			entries[key] = struct{}{}
		}
	}
	return result
}
