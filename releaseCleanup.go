package main

import (
	"regexp"
	"strings"
)

// PEP 263 source encoding declaration
var codingCookieRegexp = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*[-\w.]+`)

// isDocstringCandidate reports whether the literal is a bare triple-quoted
// expression statement alone on its lines.
func isDocstringCandidate(code []byte, table *ScanTable, literal StringLiteral) bool {
	state := literal.State
	if !state.Triple || state.Formatted || state.Bytes {
		return false
	}
	lineStart := lineStartAt(code, literal.PrefixStart)
	if leadingWhitespace(code, lineStart) != literal.PrefixStart || table.Depth(literal.PrefixStart) != 0 {
		return false
	}
	if !table.IsLogicalLineStart(lineStart) {
		return false
	}
	// nothing but whitespace or a comment may follow on the closing line
	for k := literal.End; k < len(code) && code[k] != '\n'; k++ {
		if table.Classify(k).Kind == LexLineComment {
			break
		}
		if !isWhiteSpace(code[k]) && code[k] != '\f' {
			return false
		}
	}

	prev := previousSignificantLine(code, table, lineStart)
	if prev < 0 {
		return true
	}
	if last := lastCodeByte(code, table, prev); last >= 0 && (code[last] == '\\' || code[last] == '=') {
		return false
	}
	j := leadingWhitespace(code, prev)
	return !hasWordAt(code, j, "import") && !hasWordAt(code, j, "from") && code[j] != '@'
}

// StripDocstrings removes standalone triple-quoted string statements. When a
// body would be left empty a `pass` takes the docstring's place.
func StripDocstrings(code string) (string, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	removed := []Span{}
	for _, literal := range table.Strings {
		if isDocstringCandidate(buf, table, literal) {
			removed = append(removed, Span{Start: lineStartAt(buf, literal.PrefixStart), End: literal.End})
		}
	}
	if len(removed) == 0 {
		return code, nil
	}

	// one pass per emptied body, keyed by its header line
	padded := map[int]bool{}
	changes := make([]Change, 0, len(removed))
	for _, span := range removed {
		change := deleteLineChange(buf, span.Start, span.End)
		if leavesEmptyBlock(buf, table, change.Start, change.End, removed) {
			if header := previousSignificantLine(buf, table, span.Start); !padded[header] {
				padded[header] = true
				change.Text = lineIndent(buf, span.Start) + "pass\n"
			}
		}
		changes = append(changes, change)
	}
	return applyChangesToContent(code, changes), nil
}

// isExemptComment keeps the shebang and the encoding declaration.
func isExemptComment(code []byte, table *ScanTable, comment Span) bool {
	line, _ := table.Position(comment.Start)
	if line > 2 {
		return false
	}
	lineStart := lineStartAt(code, comment.Start)
	if line == 1 && comment.Start == 0 && hasPrefixAt(code, 0, "#!") {
		return true
	}
	if leadingWhitespace(code, lineStart) != comment.Start {
		return false
	}
	return codingCookieRegexp.Match(code[lineStart:comment.End])
}

// StripComments removes line comments. A line left blank by the removal is
// deleted entirely.
func StripComments(code string) (string, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	changes := []Change{}
	for _, comment := range table.Comments {
		if isExemptComment(buf, table, comment) {
			continue
		}
		lineStart := lineStartAt(buf, comment.Start)
		if leadingWhitespace(buf, lineStart) == comment.Start {
			changes = append(changes, deleteLineChange(buf, comment.Start, comment.End))
			continue
		}
		start := comment.Start
		for start > lineStart && (buf[start-1] == ' ' || buf[start-1] == '\t') {
			start--
		}
		end := comment.End
		if end > start && end <= len(buf) && buf[end-1] == '\r' {
			end--
		}
		changes = append(changes, Change{Start: start, End: end})
	}
	return applyChangesToContent(code, changes), nil
}

// CollapseBlankLines removes whitespace-only lines outside of strings.
func CollapseBlankLines(code string) (string, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.Grow(len(buf))
	lineStart := 0
	for lineStart < len(buf) {
		lineEnd := lineEndAt(buf, lineStart)
		if lineEnd < len(buf) {
			lineEnd++
		}
		inString := lineStart > 0 && table.Classify(lineStart-1).Kind == LexString
		if inString || !isBlankLine(buf, lineStart) {
			builder.Write(buf[lineStart:lineEnd])
		}
		lineStart = lineEnd
	}

	out := builder.String()
	if strings.HasSuffix(code, "\n") && out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// ApplyReleaseCleanup runs the production passes in order.
func ApplyReleaseCleanup(code string) (string, error) {
	passes := []func(string) (string, error){StripDocstrings, StripComments, CollapseBlankLines}
	var err error
	for _, pass := range passes {
		if code, err = pass(code); err != nil {
			return "", err
		}
	}
	return code, nil
}
