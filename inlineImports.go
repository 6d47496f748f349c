package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

type InlineOptions struct {
	Release            bool
	GuardConstants     []string
	ConsolidateImports bool
}

type InlineResult struct {
	Output string
	// Modules lists the files spliced at least once, in the order they were first inlined.
	Modules     []string
	Diagnostics []Diagnostic
}

// InlineContext holds the state of one top-level inline call.
type InlineContext struct {
	fs          FileSystem
	resolver    *ModuleResolver
	options     InlineOptions
	diagnostics *DiagnosticSink
	logger      *log.Logger

	visited   map[string]bool
	ancestors []string
	modules   []string
}

func NewInlineContext(fs FileSystem, resolver *ModuleResolver, options InlineOptions, logger *log.Logger) *InlineContext {
	if logger == nil {
		logger = discardLogger()
	}
	return &InlineContext{
		fs:          fs,
		resolver:    resolver,
		options:     options,
		diagnostics: NewDiagnosticSink(logger),
		logger:      logger,
		visited:     map[string]bool{},
	}
}

// Inline reads rootPath and returns it with every eligible import replaced by
// the content of the module it refers to, recursively.
func Inline(ctx context.Context, fs FileSystem, resolver *ModuleResolver, rootPath string, options InlineOptions, logger *log.Logger) (InlineResult, error) {
	return NewInlineContext(fs, resolver, options, logger).Run(ctx, rootPath)
}

func (c *InlineContext) Run(ctx context.Context, rootPath string) (InlineResult, error) {
	root, err := c.fs.Abs(rootPath)
	if err != nil {
		return InlineResult{}, fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}
	data, err := c.fs.ReadFile(ctx, root)
	if err != nil {
		return InlineResult{}, fmt.Errorf("failed to read %s: %w", rootPath, err)
	}

	c.visited[root] = true
	c.ancestors = append(c.ancestors, root)
	output, err := c.inlineBuffer(ctx, root, string(data), c.visited)
	c.ancestors = c.ancestors[:0]
	if err != nil {
		return InlineResult{}, fmt.Errorf("%s: %w", rootPath, err)
	}
	if output, err = HoistFutureImports(output); err != nil {
		return InlineResult{}, fmt.Errorf("hoisting future imports of %s: %w", rootPath, err)
	}

	if c.options.Release {
		if output, err = ApplyReleaseCleanup(output); err != nil {
			return InlineResult{}, fmt.Errorf("release cleanup of %s: %w", rootPath, err)
		}
		if c.options.ConsolidateImports {
			if output, err = ConsolidateImports(output); err != nil {
				return InlineResult{}, fmt.Errorf("import consolidation of %s: %w", rootPath, err)
			}
		}
	}

	return InlineResult{
		Output:      output,
		Modules:     c.modules,
		Diagnostics: c.diagnostics.Items(),
	}, nil
}

func (c *InlineContext) addDiagnostic(kind DiagnosticKind, path string, line int, format string, args ...interface{}) {
	c.diagnostics.Add(Diagnostic{Kind: kind, Path: path, Line: line, Message: fmt.Sprintf(format, args...)})
}

// inlineBuffer strips guard blocks from code, then replaces its imports.
func (c *InlineContext) inlineBuffer(ctx context.Context, path string, code string, visited map[string]bool) (string, error) {
	stripped, blocks, err := StripGuardBlocks(code, c.options.GuardConstants)
	if err != nil {
		return "", err
	}
	for _, block := range blocks {
		if block.Ambiguous {
			c.addDiagnostic(AmbiguousGuardBlock, path, block.Line, "`if %s:` has an elif/else branch, left in place", block.Condition)
		}
	}

	buf := []byte(stripped)
	table, err := ScanSource(buf)
	if err != nil {
		return "", err
	}

	kept := keptGuardSpans(buf, table, c.options.GuardConstants)
	changes := []Change{}
	for _, stmt := range LocateImports(buf, table) {
		if inAnySpan(stmt.Start, kept) {
			continue
		}
		if text, ok := c.inlineStatement(ctx, path, stmt, visited); ok {
			changes = append(changes, Change{Start: stmt.Start, End: stmt.End, Text: text})
		}
	}
	return applyChangesToContent(stripped, changes), nil
}

// inlineStatement builds the replacement of one import statement. It returns
// false when nothing in the statement gets inlined.
func (c *InlineContext) inlineStatement(ctx context.Context, path string, stmt ImportStatement, visited map[string]bool) (string, bool) {
	targets := stmt.Targets()

	if stmt.Wildcard {
		res := c.resolver.Resolve(ctx, targets[0], path)
		if res.Status == Resolved || res.Target.IsRelative() {
			c.addDiagnostic(WildcardImport, path, stmt.Line, "wildcard import of %s is never inlined", res.Target.QualifiedName())
		}
		return "", false
	}

	parts := []string{}
	residual := []Binding{}
	inlined := false
	for _, target := range targets {
		res := c.resolver.Resolve(ctx, target, path)
		text, ok := c.spliceModule(ctx, path, stmt, res, visited)
		if !ok {
			if target.Binding >= 0 {
				residual = append(residual, stmt.Bindings[target.Binding])
			}
			continue
		}
		inlined = true
		if text != "" {
			parts = append(parts, text)
		}
		if target.Binding >= 0 && stmt.Bindings[target.Binding].Alias != "" {
			binding := stmt.Bindings[target.Binding]
			c.addDiagnostic(ModuleAliasDropped, path, stmt.Line, "module alias %s of %s cannot be kept once the module is inlined", binding.Alias, target.QualifiedName())
		}
	}
	if !inlined {
		return "", false
	}

	lines := []string{}
	if len(residual) > 0 {
		lines = append(lines, stmt.Indent+stmt.Render(residual))
	}
	lines = append(lines, parts...)
	if len(targets) == 1 && targets[0].Binding < 0 {
		for _, binding := range stmt.Bindings {
			if binding.Alias != "" && binding.Alias != binding.Name {
				lines = append(lines, fmt.Sprintf("%s%s = %s", stmt.Indent, binding.Alias, binding.Name))
			}
		}
	}
	return strings.Join(lines, "\n"), true
}

func (c *InlineContext) marker(indent string, arrow string, res ResolvedModule) string {
	return fmt.Sprintf("%s# %s inlined %s: %s", indent, arrow, res.Kind(), res.Target.QualifiedName())
}

// alreadyInlined is the replacement of a module-scope import whose module
// was spliced before. Release builds drop the statement.
func (c *InlineContext) alreadyInlined(stmt ImportStatement, res ResolvedModule) string {
	if c.options.Release {
		return ""
	}
	return c.marker(stmt.Indent, "↔", res) + " (already inlined)"
}

// spliceModule returns the text replacing one resolved target. False means the
// target stays imported.
func (c *InlineContext) spliceModule(ctx context.Context, importer string, stmt ImportStatement, res ResolvedModule, visited map[string]bool) (string, bool) {
	name := res.Target.QualifiedName()
	switch res.Status {
	case NotEligible:
		return "", false
	case NotFound:
		if res.Requested {
			c.addDiagnostic(ModuleNotFound, importer, stmt.Line, "module %s not found", name)
		} else {
			c.logger.Debug("module not found, left as import", "module", name, "path", importer)
		}
		return "", false
	case BinaryPackage:
		c.addDiagnostic(BinaryPackageSkipped, importer, stmt.Line, "module %s is a compiled package, left as import", name)
		return "", false
	}

	moduleScope := stmt.IsModuleScope()
	if moduleScope && visited[res.Path] {
		return c.alreadyInlined(stmt, res), true
	}
	if slices.Contains(c.ancestors, res.Path) {
		c.addDiagnostic(CycleBroken, importer, stmt.Line, "import of %s closes a cycle", name)
		if moduleScope {
			return c.alreadyInlined(stmt, res), true
		}
		if c.options.Release {
			return stmt.Indent + "pass", true
		}
		return c.marker(stmt.Indent, "↔", res) + " (cycle)\n" + stmt.Indent + "pass", true
	}

	if moduleScope {
		visited[res.Path] = true
	}
	data, err := c.fs.ReadFile(ctx, res.Path)
	if err != nil {
		if moduleScope {
			delete(visited, res.Path)
		}
		c.addDiagnostic(ReadFailed, importer, stmt.Line, "failed to read %s: %s", res.Path, err)
		return "", false
	}

	branch := visited
	if !moduleScope {
		branch = maps.Clone(visited)
	}
	c.ancestors = append(c.ancestors, res.Path)
	content, err := c.inlineBuffer(ctx, res.Path, string(data), branch)
	c.ancestors = c.ancestors[:len(c.ancestors)-1]
	if err != nil {
		if moduleScope {
			delete(visited, res.Path)
		}
		kind := ReadFailed
		if errors.Is(err, ErrUnterminatedLiteral) {
			kind = UnterminatedLiteral
		}
		c.addDiagnostic(kind, res.Path, 0, "%s, import of %s left in place", err, name)
		return "", false
	}
	if !moduleScope {
		for entry := range branch {
			visited[entry] = true
		}
	}
	if !slices.Contains(c.modules, res.Path) {
		c.modules = append(c.modules, res.Path)
	}

	body := indentSplice(content, stmt.Indent)
	if c.options.Release {
		return body, true
	}
	return c.marker(stmt.Indent, "↓↓↓", res) + "\n" + body + "\n" + c.marker(stmt.Indent, "↑↑↑", res), true
}

// indentSplice shifts module content as a block under the import's indentation.
// A nested splice needs at least one statement, `pass` is added otherwise.
func indentSplice(content string, indent string) string {
	content = strings.TrimRight(content, "\r\n")
	buf := []byte(content)
	table, err := ScanSource(buf)
	if err != nil {
		table = nil
	}
	body := shiftLines(buf, table, indent)
	if indent != "" && table != nil && !hasCode(buf, table) {
		if body != "" {
			body += "\n"
		}
		body += indent + "pass"
	}
	return body
}
