package main

import (
	"strings"
)

var DefaultGuardConstants = []string{"TYPE_CHECKING"}

// GuardBlock is an `if <guard>:` statement with its body.
type GuardBlock struct {
	Span      Span // whole lines, trailing newline included
	Indent    string
	Line      int
	Condition string
	// Ambiguous blocks have an attached elif/else and are left in place.
	Ambiguous bool
}

// headerColon finds the colon closing an `if` condition that starts at i.
// Brackets and strings are skipped, walrus `:=` is not a colon.
func headerColon(code []byte, table *ScanTable, i int) int {
	for i < len(code) {
		c := code[i]
		state := table.Classify(i)
		switch {
		case state.Kind == LexLineComment:
			return -1
		case state.Kind == LexString:
			if closer, ok := table.MatchClose(i); ok && closer > i {
				i = closer + 1
				continue
			}
		case c == '\n':
			return -1
		case c == '(' || c == '[' || c == '{':
			closer, found := table.MatchClose(i)
			if !found {
				return -1
			}
			i = closer + 1
			continue
		case c == '\\':
			i = skipInlineSpaces(code, i)
			if i < len(code) && code[i] == '\\' {
				return -1
			}
			continue
		case c == ':':
			if i+1 < len(code) && code[i+1] == '=' {
				i += 2
				continue
			}
			return i
		}
		i++
	}
	return -1
}

// conditionWords flattens the code bytes of a condition into a single spaced string.
// Strings are replaced with a placeholder so their content never matches.
func conditionWords(code []byte, table *ScanTable, from int, to int) string {
	var builder strings.Builder
	for k := from; k < to; k++ {
		switch table.Classify(k).Kind {
		case LexString:
			if k == from || table.Classify(k-1).Kind != LexString {
				builder.WriteString(" '' ")
			}
			continue
		case LexLineComment:
			continue
		}
		c := code[k]
		if c == '\\' || isWhiteSpace(c) {
			builder.WriteByte(' ')
			continue
		}
		builder.WriteByte(c)
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// stripParens removes brackets wrapping the whole expression.
func stripParens(expr string) string {
	for len(expr) >= 2 && expr[0] == '(' && expr[len(expr)-1] == ')' {
		depth := 0
		wraps := true
		for k := 0; k < len(expr)-1; k++ {
			switch expr[k] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				wraps = false
				break
			}
		}
		if !wraps {
			return expr
		}
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

// splitConjuncts splits a flattened condition on top-level `and`. It returns
// nil when the condition holds a top-level `or`, such a header is never a guard.
func splitConjuncts(condition string) []string {
	condition = stripParens(condition)
	conjuncts := []string{}
	depth := 0
	last := 0
	b := []byte(condition)
	for k := 0; k < len(b); k++ {
		switch b[k] {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 || (k > 0 && isByteIdentifierChar(b[k-1])) {
			continue
		}
		if hasWordAt(b, k, "or") {
			return nil
		}
		if hasWordAt(b, k, "and") {
			conjuncts = append(conjuncts, strings.TrimSpace(condition[last:k]))
			last = k + len("and")
		}
	}
	conjuncts = append(conjuncts, strings.TrimSpace(condition[last:]))
	return conjuncts
}

// isGuardConstant matches `NAME` and qualified forms like `typing.NAME`.
func isGuardConstant(expr string, guards []string) bool {
	expr = strings.ReplaceAll(stripParens(expr), " ", "")
	for _, guard := range guards {
		if expr == guard {
			return true
		}
		if strings.HasSuffix(expr, "."+guard) && isDottedName(expr) {
			return true
		}
	}
	return false
}

func isGuardCondition(condition string, guards []string) bool {
	for _, conjunct := range splitConjuncts(condition) {
		if isGuardConstant(conjunct, guards) {
			return true
		}
	}
	return false
}

// guardBlockEnd returns the end of the body of a compound statement whose
// header ends with the colon at colon. A body on the header line itself ends
// with that line. Trailing blank and comment-only lines are not part of it.
func guardBlockEnd(code []byte, table *ScanTable, lineStart int, colon int) int {
	headerEnd := logicalLineEnd(code, table, lineStart)
	if table.Depth(colon) == 0 {
		for k := colon + 1; k < headerEnd; k++ {
			if table.Classify(k).Kind == LexLineComment {
				break
			}
			if !isWhiteSpace(code[k]) {
				return headerEnd
			}
		}
	}

	headerIndent := len(lineIndent(code, lineStart))
	end := headerEnd
	starts := table.LineStarts()
	for idx := lineIndexOf(table, lineStartAt(code, headerEnd)) + 1; idx < len(starts); idx++ {
		ls := starts[idx]
		if ls >= len(code) {
			break
		}
		if !isSignificantLine(code, table, ls) {
			continue
		}
		if len(lineIndent(code, ls)) <= headerIndent {
			break
		}
		end = logicalLineEnd(code, table, ls)
	}
	return end
}

// FindGuardBlocks returns the `if` blocks guarded by one of the guard constants.
func FindGuardBlocks(code []byte, table *ScanTable, guards []string) []GuardBlock {
	if len(guards) == 0 {
		guards = DefaultGuardConstants
	}
	blocks := []GuardBlock{}
	for _, lineStart := range table.LineStarts() {
		if lineStart >= len(code) || !isSignificantLine(code, table, lineStart) {
			continue
		}
		j := leadingWhitespace(code, lineStart)
		if !hasWordAt(code, j, "if") {
			continue
		}
		colon := headerColon(code, table, j+len("if"))
		if colon < 0 {
			continue
		}
		condition := conditionWords(code, table, j+len("if"), colon)
		if !isGuardCondition(condition, guards) {
			continue
		}

		end := guardBlockEnd(code, table, lineStart, colon)
		if end < len(code) {
			end++
		}
		line, _ := table.Position(lineStart)
		block := GuardBlock{
			Span:      Span{Start: lineStart, End: end},
			Indent:    lineIndent(code, lineStart),
			Line:      line,
			Condition: condition,
		}
		if next := nextSignificantLine(code, table, end, nil); next >= 0 && lineIndent(code, next) == block.Indent {
			k := leadingWhitespace(code, next)
			block.Ambiguous = hasWordAt(code, k, "elif") || hasWordAt(code, k, "else")
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// keptGuardSpans returns the spans of the guard blocks StripGuardBlocks leaves
// in place. Imports inside them stay untouched.
func keptGuardSpans(code []byte, table *ScanTable, guards []string) []Span {
	spans := []Span{}
	for _, block := range FindGuardBlocks(code, table, guards) {
		if block.Ambiguous {
			spans = append(spans, block.Span)
		}
	}
	return spans
}

// StripGuardBlocks removes guarded blocks from code. Ambiguous blocks are kept
// and reported. A block that is the only statement of its enclosing block is
// replaced with `pass`.
func StripGuardBlocks(code string, guards []string) (string, []GuardBlock, error) {
	buf := []byte(code)
	table, err := ScanSource(buf)
	if err != nil {
		return "", nil, err
	}
	blocks := FindGuardBlocks(buf, table, guards)
	if len(blocks) == 0 {
		return code, blocks, nil
	}

	removed := make([]Span, 0, len(blocks))
	for _, block := range blocks {
		if !block.Ambiguous {
			removed = append(removed, block.Span)
		}
	}
	changes := make([]Change, 0, len(removed))
	for _, block := range blocks {
		if block.Ambiguous {
			continue
		}
		change := Change{Start: block.Span.Start, End: block.Span.End}
		if leavesEmptyBlock(buf, table, block.Span.Start, block.Span.End, removed) {
			change.Text = block.Indent + "pass\n"
		}
		changes = append(changes, change)
	}
	return applyChangesToContent(code, changes), blocks, nil
}
