package main

import (
	"strings"
)

type ImportKind uint8

const (
	ModuleImport ImportKind = iota // import a.b [as c], d
	FromImport                     // from [.]a.b import c [as d], e
)

// Binding is one imported name with its optional local alias.
type Binding struct {
	Name  string
	Alias string
}

func (b Binding) String() string {
	if b.Alias == "" {
		return b.Name
	}
	return b.Name + " as " + b.Alias
}

type ImportStatement struct {
	Indent   string
	Kind     ImportKind
	Module   string // dotted module path of a from-import, without leading dots
	Level    int    // number of leading dots of a relative from-import
	Bindings []Binding
	Wildcard bool
	Start    int // start of the line, indentation included
	End      int // end of the last line of the statement, newline excluded
	Line     int
}

// ImportTarget is a single module an import statement asks for.
// Binding is the index of the binding the target came from, or -1 when the
// statement's module itself is the target.
type ImportTarget struct {
	Module  string
	Level   int
	Binding int
}

func (t ImportTarget) QualifiedName() string {
	return strings.Repeat(".", t.Level) + t.Module
}

func (t ImportTarget) IsRelative() bool {
	return t.Level > 0
}

func (s ImportStatement) IsRelative() bool {
	return s.Level > 0
}

func (s ImportStatement) IsModuleScope() bool {
	return s.Indent == ""
}

func (s ImportStatement) QualifiedModule() string {
	return strings.Repeat(".", s.Level) + s.Module
}

// Targets lists the modules the statement imports. `import a, b` and
// `from . import a, b` name one module per binding, `from a import b, c`
// names only `a`.
func (s ImportStatement) Targets() []ImportTarget {
	if s.Kind == FromImport && (s.Module != "" || s.Wildcard) {
		return []ImportTarget{{Module: s.Module, Level: s.Level, Binding: -1}}
	}
	targets := make([]ImportTarget, 0, len(s.Bindings))
	for idx, b := range s.Bindings {
		targets = append(targets, ImportTarget{Module: b.Name, Level: s.Level, Binding: idx})
	}
	return targets
}

// Render prints the statement on a single line with the given bindings,
// without indentation.
func (s ImportStatement) Render(bindings []Binding) string {
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		names = append(names, b.String())
	}
	if s.Kind == ModuleImport {
		return "import " + strings.Join(names, ", ")
	}
	if s.Wildcard {
		return "from " + s.QualifiedModule() + " import *"
	}
	return "from " + s.QualifiedModule() + " import " + strings.Join(names, ", ")
}

func isWhiteSpace(char byte) bool {
	return (char == ' ' || char == '\t' || char == '\n' || char == '\r')
}

// skipInlineSpaces skips spaces, tabs and backslash line continuations
func skipInlineSpaces(code []byte, i int) int {
	for i < len(code) {
		switch {
		case code[i] == ' ' || code[i] == '\t' || code[i] == '\f':
			i++
		case code[i] == '\\' && i+1 < len(code) && code[i+1] == '\n':
			i += 2
		case code[i] == '\\' && i+2 < len(code) && code[i+1] == '\r' && code[i+2] == '\n':
			i += 3
		default:
			return i
		}
	}
	return i
}

func isByteIdentifierChar(char byte) bool {
	// 0-9 || A-Z || a-z || _ || any non-ASCII byte of a UTF-8 identifier
	return (char >= 48 && char <= 57) || (char >= 65 && char <= 90) || (char >= 97 && char <= 122) || char == 95 || char >= 0x80
}

func hasPrefixAt(code []byte, i int, s string) bool {
	if i < 0 || i+len(s) > len(code) {
		return false
	}
	for j := 0; j < len(s); j++ {
		if code[i+j] != s[j] {
			return false
		}
	}
	return true
}

func hasWordAt(code []byte, i int, s string) bool {
	if !hasPrefixAt(code, i, s) {
		return false
	}
	end := i + len(s)
	return end >= len(code) || !isByteIdentifierChar(code[end])
}

// parseIdentifier extracts a single identifier token starting at position i.
func parseIdentifier(code []byte, i int) (name string, next int) {
	n := len(code)
	if i >= n || !isByteIdentifierChar(code[i]) || (code[i] >= '0' && code[i] <= '9') {
		return "", i
	}
	start := i
	for i < n && isByteIdentifierChar(code[i]) {
		i++
	}
	return string(code[start:i]), i
}

// parseDottedName extracts `a.b.c` starting at position i.
func parseDottedName(code []byte, i int) (name string, next int) {
	start := i
	for {
		ident, after := parseIdentifier(code, i)
		if ident == "" {
			return "", start
		}
		i = after
		if i+1 < len(code) && code[i] == '.' && isByteIdentifierChar(code[i+1]) {
			i++
			continue
		}
		return string(code[start:i]), i
	}
}

func isIdentifier(s string) bool {
	name, next := parseIdentifier([]byte(s), 0)
	return name != "" && next == len(s)
}

func isDottedName(s string) bool {
	name, next := parseDottedName([]byte(s), 0)
	return name != "" && next == len(s)
}

// statementEnd finds the end of the logical line starting at i: the offset
// of the newline terminating its last physical line (or len(code)). Bracketed
// parts are skipped as a whole via the scan table. Lines with several
// statements separated by `;` are reported as not ok.
func statementEnd(code []byte, table *ScanTable, i int) (int, bool) {
	for i < len(code) {
		c := code[i]
		state := table.Classify(i)
		switch {
		case c == '\n' || state.Kind == LexLineComment:
			end := lineEndAt(code, i)
			if end > 0 && code[end-1] == '\r' {
				end--
			}
			return end, true
		case state.Kind == LexString:
			return 0, false
		case c == '(' || c == '[' || c == '{':
			closer, found := table.MatchClose(i)
			if !found {
				return 0, false
			}
			i = closer + 1
			continue
		case c == '\\':
			next := skipInlineSpaces(code, i)
			if next == i {
				return 0, false
			}
			i = next
			continue
		case c == ';':
			return 0, false
		}
		i++
	}
	return len(code), true
}

// splitTopLevel splits code[from:to] on commas sitting exactly at the given
// bracket depth. Comments and line continuations are dropped.
func splitTopLevel(code []byte, table *ScanTable, from int, to int, depth int) []string {
	segments := []string{}
	var current strings.Builder
	for k := from; k < to; k++ {
		if !table.IsCode(k) {
			continue
		}
		c := code[k]
		if c == ',' && table.Depth(k) == depth {
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		if c == '\\' || isWhiteSpace(c) {
			current.WriteByte(' ')
			continue
		}
		current.WriteByte(c)
	}
	if last := strings.TrimSpace(current.String()); last != "" || len(segments) == 0 {
		segments = append(segments, last)
	}
	return segments
}

func parseBindings(segments []string, dotted bool) ([]Binding, bool) {
	bindings := make([]Binding, 0, len(segments))
	for _, segment := range segments {
		fields := strings.Fields(segment)
		var b Binding
		switch {
		case len(fields) == 1:
			b = Binding{Name: fields[0]}
		case len(fields) == 3 && fields[1] == "as" && isIdentifier(fields[2]):
			b = Binding{Name: fields[0], Alias: fields[2]}
		default:
			return nil, false
		}
		if dotted && !isDottedName(b.Name) || !dotted && !isIdentifier(b.Name) {
			return nil, false
		}
		bindings = append(bindings, b)
	}
	return bindings, true
}

func parseModuleImport(code []byte, table *ScanTable, i int) (ImportStatement, bool) {
	end, ok := statementEnd(code, table, i)
	if !ok {
		return ImportStatement{}, false
	}
	codeEnd := codeContentEnd(code, table, i, end)
	bindings, ok := parseBindings(splitTopLevel(code, table, i, codeEnd, table.Depth(i)), true)
	if !ok {
		return ImportStatement{}, false
	}
	return ImportStatement{Kind: ModuleImport, Bindings: bindings, End: end}, true
}

func parseFromImport(code []byte, table *ScanTable, i int) (ImportStatement, bool) {
	end, ok := statementEnd(code, table, i)
	if !ok {
		return ImportStatement{}, false
	}
	codeEnd := codeContentEnd(code, table, i, end)

	stmt := ImportStatement{Kind: FromImport, End: end}
	i = skipInlineSpaces(code, i)
	for i < codeEnd && code[i] == '.' {
		stmt.Level++
		i = skipInlineSpaces(code, i+1)
	}
	if !hasWordAt(code, i, "import") {
		stmt.Module, i = parseDottedName(code, i)
		i = skipInlineSpaces(code, i)
	}
	if stmt.Level == 0 && stmt.Module == "" || !hasWordAt(code, i, "import") {
		return ImportStatement{}, false
	}
	i = skipInlineSpaces(code, i+len("import"))

	if i < codeEnd && code[i] == '*' {
		if skipInlineSpaces(code, i+1) < codeEnd {
			return ImportStatement{}, false
		}
		stmt.Wildcard = true
		return stmt, true
	}

	var segments []string
	if i < codeEnd && code[i] == '(' {
		closer, found := table.MatchClose(i)
		if !found || skipInlineSpaces(code, closer+1) < codeEnd {
			return ImportStatement{}, false
		}
		segments = splitTopLevel(code, table, i+1, closer, table.Depth(i)+1)
		// a trailing comma is allowed inside parentheses
		if len(segments) > 1 && segments[len(segments)-1] == "" {
			segments = segments[:len(segments)-1]
		}
	} else {
		segments = splitTopLevel(code, table, i, codeEnd, table.Depth(i))
	}
	bindings, ok := parseBindings(segments, false)
	if !ok {
		return ImportStatement{}, false
	}
	stmt.Bindings = bindings
	return stmt, true
}

// codeContentEnd trims a trailing comment and whitespace off code[from:end].
func codeContentEnd(code []byte, table *ScanTable, from int, end int) int {
	last := from
	for k := from; k < end; k++ {
		if table.IsCode(k) && !isWhiteSpace(code[k]) {
			last = k + 1
		}
	}
	return last
}

// LocateImports returns every import statement that starts a logical line in
// code, in document order. Statements inside strings, comments or brackets are
// never reported.
func LocateImports(code []byte, table *ScanTable) []ImportStatement {
	statements := []ImportStatement{}
	for _, lineStart := range table.LineStarts() {
		if lineStart >= len(code) || !table.IsLogicalLineStart(lineStart) {
			continue
		}
		j := leadingWhitespace(code, lineStart)
		if j >= len(code) || !table.IsCode(j) || table.Depth(j) != 0 {
			continue
		}

		var stmt ImportStatement
		var ok bool
		switch {
		case hasWordAt(code, j, "import"):
			stmt, ok = parseModuleImport(code, table, j+len("import"))
		case hasWordAt(code, j, "from"):
			stmt, ok = parseFromImport(code, table, j+len("from"))
		}
		if !ok {
			continue
		}
		stmt.Indent = string(code[lineStart:j])
		stmt.Start = lineStart
		stmt.Line, _ = table.Position(j)
		statements = append(statements, stmt)
	}
	return statements
}

// LocateImportsInSource scans code and locates its import statements.
func LocateImportsInSource(code string) ([]ImportStatement, error) {
	table, err := ScanSource([]byte(code))
	if err != nil {
		return nil, err
	}
	return LocateImports([]byte(code), table), nil
}
