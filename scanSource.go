package main

import (
	"errors"
	"fmt"
	"sort"
)

type LexKind uint8

const (
	LexCode LexKind = iota
	LexLineComment
	LexString
)

// ScanState is the lexical classification of a single byte offset.
// Quote, Triple, Raw, Formatted and Bytes are only meaningful for LexString.
type ScanState struct {
	Kind      LexKind
	Quote     byte
	Triple    bool
	Raw       bool
	Formatted bool
	Bytes     bool
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// StringLiteral locates one string literal. PrefixStart points at the first
// prefix letter (r, b, f, u...) or at the opening quote when there is none.
type StringLiteral struct {
	PrefixStart int
	QuoteStart  int
	End         int // after the closing quote(s)
	State       ScanState
}

var ErrUnterminatedLiteral = errors.New("unterminated literal")

// ScanTable is derived once per buffer and never mutated afterwards.
type ScanTable struct {
	code       []byte
	states     []ScanState
	depths     []int32
	closers    map[int]int
	lineStarts []int

	Strings  []StringLiteral
	Comments []Span
}

// ScanSource classifies every byte of a Python buffer in a single forward pass.
// Bracket depth is only tracked in code. Replacement fields of formatted
// strings ({...}) are classified as code; quotes inside them open nested
// literals that are skipped rather than tracked as a new string state.
func ScanSource(code []byte) (*ScanTable, error) {
	n := len(code)
	t := &ScanTable{
		code:       code,
		states:     make([]ScanState, n),
		depths:     make([]int32, n),
		closers:    make(map[int]int),
		lineStarts: []int{0},
	}
	for i, c := range code {
		if c == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
	}

	var openers []int
	var str ScanState
	var literal StringLiteral
	inString := false
	commentStart := -1
	interpolation := 0
	var innerQuote byte

	finishString := func(end int) {
		literal.End = end
		t.Strings = append(t.Strings, literal)
		t.closers[literal.QuoteStart] = end - 1
		inString = false
	}

	for i := 0; i < n; {
		c := code[i]
		t.depths[i] = int32(len(openers))

		if commentStart >= 0 {
			if c == '\n' {
				t.Comments = append(t.Comments, Span{Start: commentStart, End: i})
				commentStart = -1
				i++
				continue
			}
			t.states[i] = ScanState{Kind: LexLineComment}
			i++
			continue
		}

		if inString {
			if interpolation > 0 {
				if innerQuote != 0 {
					if c == innerQuote && !isEscaped(code, i) {
						innerQuote = 0
					}
				} else {
					switch c {
					case '\'', '"':
						innerQuote = c
					case '{':
						interpolation++
					case '}':
						interpolation--
					}
				}
				i++
				continue
			}

			t.states[i] = str
			switch {
			case c == str.Quote && !isEscaped(code, i):
				if !str.Triple {
					finishString(i + 1)
					i++
					continue
				}
				if i+2 < n && code[i+1] == c && code[i+2] == c {
					for k := 1; k <= 2; k++ {
						t.states[i+k] = str
						t.depths[i+k] = t.depths[i]
					}
					finishString(i + 3)
					i += 3
					continue
				}
			case c == '\n' && !str.Triple && !isEscaped(code, i):
				// single-quoted literals cannot span lines, recover at the newline
				t.states[i] = ScanState{}
				finishString(i)
				i++
				continue
			case str.Formatted && c == '{':
				if i+1 < n && code[i+1] == '{' {
					t.states[i+1] = str
					t.depths[i+1] = t.depths[i]
					i += 2
					continue
				}
				interpolation = 1
			case str.Formatted && c == '}' && i+1 < n && code[i+1] == '}':
				t.states[i+1] = str
				t.depths[i+1] = t.depths[i]
				i += 2
				continue
			}
			i++
			continue
		}

		switch c {
		case '#':
			commentStart = i
			t.states[i] = ScanState{Kind: LexLineComment}
		case '(', '[', '{':
			openers = append(openers, i)
		case ')', ']', '}':
			if len(openers) > 0 {
				open := openers[len(openers)-1]
				openers = openers[:len(openers)-1]
				t.closers[open] = i
				t.depths[i] = int32(len(openers))
			}
		case '\'', '"':
			str, literal = openString(code, i)
			inString = true
			interpolation = 0
			innerQuote = 0
			width := 1
			if str.Triple {
				width = 3
			}
			for k := 0; k < width; k++ {
				t.states[i+k] = str
				t.depths[i+k] = t.depths[i]
			}
			i += width
			continue
		}
		i++
	}

	if commentStart >= 0 {
		t.Comments = append(t.Comments, Span{Start: commentStart, End: n})
	}
	if inString {
		line, col := t.Position(literal.QuoteStart)
		return nil, fmt.Errorf("%w: string opened at line %d, column %d", ErrUnterminatedLiteral, line, col)
	}
	if len(openers) > 0 {
		line, col := t.Position(openers[0])
		return nil, fmt.Errorf("%w: '%c' opened at line %d, column %d is never closed", ErrUnterminatedLiteral, code[openers[0]], line, col)
	}
	return t, nil
}

func openString(code []byte, i int) (ScanState, StringLiteral) {
	q := code[i]
	state := ScanState{Kind: LexString, Quote: q}
	state.Triple = i+2 < len(code) && code[i+1] == q && code[i+2] == q

	start := i
	for start > 0 && i-start < 2 && isStringPrefixChar(code[start-1]) {
		start--
	}
	if start > 0 && isByteIdentifierChar(code[start-1]) {
		// tail of a longer identifier, not a prefix
		start = i
	}
	for _, p := range code[start:i] {
		switch p {
		case 'r', 'R':
			state.Raw = true
		case 'f', 'F', 't', 'T':
			state.Formatted = true
		case 'b', 'B':
			state.Bytes = true
		}
	}
	return state, StringLiteral{PrefixStart: start, QuoteStart: i, State: state}
}

func isStringPrefixChar(c byte) bool {
	switch c {
	case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F', 't', 'T':
		return true
	}
	return false
}

// isEscaped reports whether the byte at i is preceded by an odd number of backslashes.
func isEscaped(code []byte, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && code[j] == '\\'; j-- {
		count++
	}
	return count%2 == 1
}

func (t *ScanTable) Classify(offset int) ScanState {
	if offset < 0 || offset >= len(t.states) {
		return ScanState{}
	}
	return t.states[offset]
}

func (t *ScanTable) IsCode(offset int) bool {
	return t.Classify(offset).Kind == LexCode
}

// MatchClose returns the offset of the byte closing the bracket or string
// literal opened at offset. For triple-quoted strings it is the last quote.
func (t *ScanTable) MatchClose(offset int) (int, bool) {
	closer, ok := t.closers[offset]
	return closer, ok
}

// Depth is the number of brackets open around offset.
func (t *ScanTable) Depth(offset int) int {
	if offset < 0 || offset >= len(t.depths) {
		return 0
	}
	return int(t.depths[offset])
}

// Position converts a byte offset to a 1-based line and column.
func (t *ScanTable) Position(offset int) (line int, column int) {
	idx := sort.Search(len(t.lineStarts), func(k int) bool {
		return t.lineStarts[k] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - t.lineStarts[idx] + 1
}

func (t *ScanTable) LineStarts() []int {
	return t.lineStarts
}

// IsLogicalLineStart reports whether the physical line at lineStart begins a
// new logical line: the previous newline is not inside brackets or a string
// and is not escaped by a backslash continuation.
func (t *ScanTable) IsLogicalLineStart(lineStart int) bool {
	if lineStart <= 0 {
		return true
	}
	nl := lineStart - 1
	if t.Classify(nl).Kind == LexString || t.Depth(nl) > 0 {
		return false
	}
	k := nl - 1
	if k >= 0 && t.code[k] == '\r' {
		k--
	}
	return k < 0 || t.code[k] != '\\' || !t.IsCode(k) || isEscaped(t.code, k)
}

func lineStartAt(code []byte, i int) int {
	for i > 0 && code[i-1] != '\n' {
		i--
	}
	return i
}

// lineEndAt returns the offset of the newline ending the line containing i, or len(code).
func lineEndAt(code []byte, i int) int {
	for i < len(code) && code[i] != '\n' {
		i++
	}
	return i
}

func leadingWhitespace(code []byte, lineStart int) int {
	j := lineStart
	for j < len(code) && (code[j] == ' ' || code[j] == '\t' || code[j] == '\f') {
		j++
	}
	return j
}
