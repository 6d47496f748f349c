package main

import (
	"sort"
	"strings"
)

// Change represents a text replacement in a buffer.
// Start and End are byte offsets in the original content.
type Change struct {
	Start int
	End   int
	Text  string
}

// deleteLineChange removes the whole physical line(s) covering [start, end),
// including the terminating newline.
func deleteLineChange(code []byte, start int, end int) Change {
	lineEnd := lineEndAt(code, end)
	if lineEnd < len(code) {
		lineEnd++
	}
	return Change{Start: lineStartAt(code, start), End: lineEnd}
}

func applyChangesToContent(content string, changes []Change) string {
	if len(changes) == 0 {
		return content
	}

	// 1. When changes overlap only the bigger one is applied, so sort by length DESC.
	// If lengths are equal, sort by Start ASC to be deterministic.
	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		lenI := sorted[i].End - sorted[i].Start
		lenJ := sorted[j].End - sorted[j].Start
		if lenI != lenJ {
			return lenI > lenJ
		}
		return sorted[i].Start < sorted[j].Start
	})

	// 2. Pick non-overlapping changes, always the largest available for a span.
	var picked []Change
	for _, c := range sorted {
		if c.Start < 0 || c.End < c.Start || c.End > len(content) {
			continue
		}
		overlaps := false
		for _, p := range picked {
			if c.Start < p.End && p.Start < c.End {
				overlaps = true
				break
			}
			// two insertions at the same offset
			if c.Start == c.End && p.Start == p.End && c.Start == p.Start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			picked = append(picked, c)
		}
	}

	// 3. Apply one by one, sorted by start location. Since picked changes are
	// disjoint this is the same as applying them from the last offset to the first.
	// An insertion goes before a replacement starting at the same offset.
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].Start != picked[j].Start {
			return picked[i].Start < picked[j].Start
		}
		return picked[i].End < picked[j].End
	})

	var builder strings.Builder
	builder.Grow(len(content))
	lastPos := 0
	for _, c := range picked {
		if c.Start > lastPos {
			builder.WriteString(content[lastPos:c.Start])
		}
		builder.WriteString(c.Text)
		lastPos = c.End
	}

	if lastPos < len(content) {
		builder.WriteString(content[lastPos:])
	}

	return builder.String()
}
