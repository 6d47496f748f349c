package main

import (
	"os"
	"sort"
	"strings"
)

var osSeparator = string(os.PathSeparator)

func StandardiseDirPath(cwd string) string {
	if cwd == "" || strings.HasSuffix(cwd, osSeparator) || strings.HasSuffix(cwd, "/") {
		return cwd
	}
	return cwd + osSeparator
}

func lineIndent(code []byte, lineStart int) string {
	return string(code[lineStart:leadingWhitespace(code, lineStart)])
}

// isBlankLine reports whether the line starting at lineStart holds only whitespace.
func isBlankLine(code []byte, lineStart int) bool {
	j := leadingWhitespace(code, lineStart)
	return j >= len(code) || code[j] == '\n' || code[j] == '\r'
}

// isSignificantLine reports whether lineStart opens a logical line holding code,
// as opposed to a blank line, a comment-only line or a continuation line.
func isSignificantLine(code []byte, table *ScanTable, lineStart int) bool {
	if !table.IsLogicalLineStart(lineStart) || isBlankLine(code, lineStart) {
		return false
	}
	return table.IsCode(leadingWhitespace(code, lineStart))
}

func lineIndexOf(table *ScanTable, lineStart int) int {
	return sort.SearchInts(table.LineStarts(), lineStart)
}

func inAnySpan(offset int, spans []Span) bool {
	for _, span := range spans {
		if offset >= span.Start && offset < span.End {
			return true
		}
	}
	return false
}

// previousSignificantLine returns the start of the last significant line
// starting before offset, or -1.
func previousSignificantLine(code []byte, table *ScanTable, offset int) int {
	starts := table.LineStarts()
	for idx := lineIndexOf(table, lineStartAt(code, offset)) - 1; idx >= 0; idx-- {
		if isSignificantLine(code, table, starts[idx]) {
			return starts[idx]
		}
	}
	return -1
}

// nextSignificantLine returns the start of the first significant line starting
// at or after offset that is not covered by skip, or -1.
func nextSignificantLine(code []byte, table *ScanTable, offset int, skip []Span) int {
	starts := table.LineStarts()
	for idx := sort.SearchInts(starts, offset); idx < len(starts); idx++ {
		ls := starts[idx]
		if ls >= len(code) {
			break
		}
		if isSignificantLine(code, table, ls) && !inAnySpan(ls, skip) {
			return ls
		}
	}
	return -1
}

// logicalLineEnd returns the end (newline offset or len(code)) of the last
// physical line of the logical line starting at lineStart.
func logicalLineEnd(code []byte, table *ScanTable, lineStart int) int {
	starts := table.LineStarts()
	idx := lineIndexOf(table, lineStart) + 1
	for idx < len(starts) && starts[idx] < len(code) && !table.IsLogicalLineStart(starts[idx]) {
		idx++
	}
	if idx < len(starts) {
		return starts[idx] - 1
	}
	return len(code)
}

// lastCodeByte returns the offset of the last non-whitespace code byte of the
// logical line starting at lineStart, or -1.
func lastCodeByte(code []byte, table *ScanTable, lineStart int) int {
	for k := logicalLineEnd(code, table, lineStart) - 1; k >= lineStart; k-- {
		if table.IsCode(k) && !isWhiteSpace(code[k]) {
			return k
		}
	}
	return -1
}

// leavesEmptyBlock reports whether removing the lines in [start, end) leaves
// the enclosing compound statement without a body. Lines covered by removed
// are treated as already gone when looking forward.
func leavesEmptyBlock(code []byte, table *ScanTable, start int, end int, removed []Span) bool {
	prev := previousSignificantLine(code, table, start)
	if prev < 0 {
		return false
	}
	last := lastCodeByte(code, table, prev)
	if last < 0 || code[last] != ':' {
		return false
	}
	next := nextSignificantLine(code, table, end, removed)
	if next < 0 {
		return true
	}
	return len(lineIndent(code, next)) <= len(lineIndent(code, prev))
}

// hasCode reports whether code holds anything besides whitespace and comments.
func hasCode(code []byte, table *ScanTable) bool {
	for k, c := range code {
		if !isWhiteSpace(c) && c != '\f' && table.Classify(k).Kind != LexLineComment {
			return true
		}
	}
	return false
}

// shiftLines prefixes every line of code with indent, except blank lines and
// lines starting inside a multi-line string. A nil table shifts every
// non-blank line.
func shiftLines(code []byte, table *ScanTable, indent string) string {
	if indent == "" {
		return string(code)
	}
	var builder strings.Builder
	builder.Grow(len(code) + len(indent)*8)
	lineStart := 0
	for lineStart < len(code) {
		lineEnd := lineEndAt(code, lineStart)
		inString := table != nil && lineStart > 0 && table.Classify(lineStart-1).Kind == LexString
		if !inString && !isBlankLine(code, lineStart) {
			builder.WriteString(indent)
		}
		if lineEnd < len(code) {
			lineEnd++
		}
		builder.Write(code[lineStart:lineEnd])
		lineStart = lineEnd
	}
	return builder.String()
}
