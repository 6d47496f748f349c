package main

import (
	"sort"
	"strings"
)

// headerEnd returns the offset after the shebang and encoding declaration lines.
func headerEnd(code []byte, table *ScanTable) int {
	end := 0
	for _, comment := range table.Comments {
		if comment.Start != lineStartAt(code, comment.Start) || !isExemptComment(code, table, comment) {
			break
		}
		end = lineEndAt(code, comment.End)
		if end < len(code) {
			end++
		}
	}
	return end
}

func isFutureImport(stmt ImportStatement) bool {
	return stmt.Kind == FromImport && stmt.Level == 0 && stmt.Module == "__future__"
}

// ConsolidateImports hoists module-scope imports to the top of the file,
// dropping duplicates. `from __future__` imports come first, the rest is
// sorted by text.
func ConsolidateImports(code string) (string, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	future := []string{}
	regular := []string{}
	seen := map[string]bool{}
	changes := []Change{}
	for _, stmt := range LocateImports(buf, table) {
		if !stmt.IsModuleScope() {
			continue
		}
		changes = append(changes, deleteLineChange(buf, stmt.Start, stmt.End))
		text := stmt.Render(stmt.Bindings)
		if seen[text] {
			continue
		}
		seen[text] = true
		if isFutureImport(stmt) {
			future = append(future, text)
		} else {
			regular = append(regular, text)
		}
	}
	if len(changes) == 0 {
		return code, nil
	}
	sort.Strings(future)
	sort.Strings(regular)

	block := strings.Join(append(future, regular...), "\n") + "\n"
	insertAt := headerEnd(buf, table)
	// an import deleted at the insertion point merges with the hoisted block
	merged := false
	for idx, change := range changes {
		if change.Start == insertAt {
			changes[idx].Text = block
			merged = true
			break
		}
	}
	if !merged {
		if insertAt == len(buf) && insertAt > 0 && buf[insertAt-1] != '\n' {
			block = "\n" + block
		}
		changes = append(changes, Change{Start: insertAt, End: insertAt, Text: block})
	}
	return applyChangesToContent(code, changes), nil
}

// futureImportsStart returns where `from __future__` imports have to live:
// after the shebang, the encoding declaration and the module docstring.
func futureImportsStart(code []byte, table *ScanTable) int {
	at := headerEnd(code, table)
	for _, lineStart := range table.LineStarts() {
		if lineStart < at || isBlankLine(code, lineStart) {
			continue
		}
		j := leadingWhitespace(code, lineStart)
		if j < len(code) && table.Classify(j).Kind == LexLineComment {
			continue
		}
		for _, literal := range table.Strings {
			if literal.PrefixStart == j && isDocstringCandidate(code, table, literal) {
				end := lineEndAt(code, literal.End)
				if end < len(code) {
					end++
				}
				return end
			}
		}
		return lineStart
	}
	return at
}

// futureImportsInPlace reports whether every future import already sits at
// the top of the module, with only blank or comment lines before it.
func futureImportsInPlace(code []byte, table *ScanTable, start int, future []ImportStatement) bool {
	starts := map[int]bool{}
	for _, stmt := range future {
		starts[stmt.Start] = true
	}
	found := 0
	for lineStart := start; lineStart < len(code); {
		j := leadingWhitespace(code, lineStart)
		switch {
		case isBlankLine(code, lineStart) || table.Classify(j).Kind == LexLineComment:
			lineStart = lineEndAt(code, lineStart) + 1
		case starts[lineStart]:
			found++
			lineStart = logicalLineEnd(code, table, lineStart) + 1
		default:
			return found == len(future)
		}
	}
	return found == len(future)
}

// HoistFutureImports moves `from __future__` imports of spliced modules to the
// top of the output, each distinct one once, keeping their order.
func HoistFutureImports(code string) (string, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	future := []ImportStatement{}
	for _, stmt := range LocateImports(buf, table) {
		if isFutureImport(stmt) {
			future = append(future, stmt)
		}
	}
	if len(future) == 0 {
		return code, nil
	}
	insertAt := futureImportsStart(buf, table)
	if futureImportsInPlace(buf, table, insertAt, future) {
		return code, nil
	}

	removed := make([]Span, 0, len(future))
	for _, stmt := range future {
		removed = append(removed, Span{Start: stmt.Start, End: stmt.End})
	}
	lines := []string{}
	seen := map[string]bool{}
	changes := make([]Change, 0, len(future)+1)
	for _, stmt := range future {
		change := deleteLineChange(buf, stmt.Start, stmt.End)
		if stmt.Indent != "" && leavesEmptyBlock(buf, table, change.Start, change.End, removed) {
			change.Text = stmt.Indent + "pass\n"
		}
		changes = append(changes, change)
		if text := stmt.Render(stmt.Bindings); !seen[text] {
			seen[text] = true
			lines = append(lines, text)
		}
	}

	block := strings.Join(lines, "\n") + "\n"
	for idx, change := range changes {
		if change.Start == insertAt && change.Text == "" {
			changes[idx].Text = block
			return applyChangesToContent(code, changes), nil
		}
	}
	if insertAt == len(buf) && insertAt > 0 && buf[insertAt-1] != '\n' {
		block = "\n" + block
	}
	changes = append(changes, Change{Start: insertAt, End: insertAt, Text: block})
	return applyChangesToContent(code, changes), nil
}
