package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ErrVerificationFailed = errors.New("output failed syntax verification")

// ---------------- inline ----------------
var (
	inlineRelease            bool
	inlineConsolidateImports bool
	inlineVerify             bool
	inlineDryRun             bool
)

var inlineCmd = &cobra.Command{
	Use:   "inline <input> <output> [modules...]",
	Short: "Inline the modules imported by a Python file into one output file",
	Long: `Replaces every eligible import of the input file with the content of the imported module, recursively,
and writes the result to the output file. Modules may be given as extra arguments or comma separated lists;
without any, every module found on the search path is eligible.
Without arguments all targets from the config file are processed.`,
	Example: `  python-inliner inline main.py dist/main.py app utils -r
  python-inliner inline --config python-inliner.config.yaml`,
	Args: cobra.ArbitraryArgs,
	RunE: runInline,
}

func addInlineFlags(command *cobra.Command) {
	command.Flags().BoolVarP(&inlineRelease, "release", "r", false,
		"Production output: no markers, docstrings, comments or blank lines")
	command.Flags().BoolVar(&inlineConsolidateImports, "consolidate-imports", false,
		"Hoist and deduplicate the remaining module-scope imports (with --release)")
	command.Flags().BoolVar(&inlineVerify, "verify", false,
		"Parse the output and fail on syntax errors")
	command.Flags().BoolVar(&inlineDryRun, "dry-run", false,
		"Print a diff against the existing output instead of writing it")
}

// runSettings is the config file merged with the command line flags.
type runSettings struct {
	Modules            []string
	Exclude            []string
	SearchPaths        []string
	GuardConstants     []string
	Extensions         []string
	BinaryPatterns     []string
	Python             string
	Release            bool
	ConsolidateImports bool
	Verify             bool
	DryRun             bool
	Targets            []InlineTarget
}

// splitModuleArgs accepts `a b` as well as the comma separated `a,b`.
func splitModuleArgs(args []string) []string {
	modules := []string{}
	for _, arg := range args {
		for _, module := range strings.Split(arg, ",") {
			if module = strings.TrimSpace(module); module != "" {
				modules = append(modules, module)
			}
		}
	}
	return modules
}

// loadRunSettings merges the config file, when one is given or found in the
// working directory, with the flags. Flags set on the command line win.
func loadRunSettings(ctx context.Context, cmd *cobra.Command, fs FileSystem, args []string) (runSettings, error) {
	config := InlinerConfig{}
	configPath := sharedConfigPath
	if configPath == "" {
		if found, err := findConfigFile(ctx, fs, currentDir); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		loaded, err := LoadConfig(ctx, fs, configPath)
		if err != nil {
			return runSettings{}, err
		}
		config = loaded
	}

	settings := runSettings{
		Modules:            config.Modules,
		Exclude:            config.Exclude,
		GuardConstants:     config.GuardConstants,
		Extensions:         config.Extensions,
		BinaryPatterns:     config.BinaryPatterns,
		Python:             config.Python,
		Release:            config.Release,
		ConsolidateImports: config.ConsolidateImports,
		Verify:             config.Verify,
	}
	for _, searchPath := range config.SearchPaths {
		settings.SearchPaths = append(settings.SearchPaths, config.resolveConfigPath(fs, searchPath))
	}
	for _, target := range config.Targets {
		settings.Targets = append(settings.Targets, InlineTarget{
			Input:  config.resolveConfigPath(fs, target.Input),
			Output: config.resolveConfigPath(fs, target.Output),
		})
	}

	flags := cmd.Flags()
	if flags.Changed("search-path") {
		settings.SearchPaths = sharedSearchPaths
	}
	if flags.Changed("exclude") {
		settings.Exclude = sharedExclude
	}
	if flags.Changed("guard") {
		settings.GuardConstants = sharedGuardConstants
	}
	if flags.Changed("python") {
		settings.Python = sharedPython
	}
	if flags.Lookup("release") != nil {
		if flags.Changed("release") {
			settings.Release = inlineRelease
		}
		if flags.Changed("consolidate-imports") {
			settings.ConsolidateImports = inlineConsolidateImports
		}
		if flags.Changed("verify") {
			settings.Verify = inlineVerify
		}
		settings.DryRun = inlineDryRun
	}

	if len(args) == 1 {
		return runSettings{}, fmt.Errorf("missing output path for %s", args[0])
	}
	if len(args) >= 2 {
		settings.Targets = []InlineTarget{{Input: args[0], Output: args[1]}}
		if modules := splitModuleArgs(args[2:]); len(modules) > 0 {
			settings.Modules = modules
		}
	}
	if _, err := NewModuleMatcher(settings.Modules, settings.Exclude); err != nil {
		return runSettings{}, err
	}
	return settings, nil
}

// newResolverForInput builds the resolver used for one entry file. The
// directory of the input always comes first in the search path.
func newResolverForInput(ctx context.Context, fs FileSystem, settings runSettings, input string) (*ModuleResolver, error) {
	absInput, err := fs.Abs(input)
	if err != nil {
		return nil, err
	}
	roots := []string{fs.Dir(absInput)}
	for _, searchPath := range settings.SearchPaths {
		absRoot, err := fs.Abs(searchPath)
		if err != nil {
			return nil, err
		}
		roots = append(roots, absRoot)
	}

	searchPath, err := NewSearchPath(fs, roots, settings.BinaryPatterns)
	if err != nil {
		return nil, err
	}
	if settings.Python != "" {
		sysPath, err := PythonSysPath(ctx, settings.Python)
		if err != nil {
			return nil, err
		}
		searchPath.AddInterpreterRoots(sysPath)
	}
	matcher, err := NewModuleMatcher(settings.Modules, settings.Exclude)
	if err != nil {
		return nil, err
	}
	return NewModuleResolver(fs, searchPath, matcher, settings.Extensions), nil
}

type targetOutcome struct {
	target InlineTarget
	result InlineResult
	status WriteStatus
	diff   string
	err    error
}

// inlineTarget runs the whole pipeline for one input/output pair.
func inlineTarget(ctx context.Context, fs FileSystem, settings runSettings, target InlineTarget, logger *log.Logger) targetOutcome {
	outcome := targetOutcome{target: target}
	resolver, err := newResolverForInput(ctx, fs, settings, target.Input)
	if err != nil {
		outcome.err = err
		return outcome
	}
	options := InlineOptions{
		Release:            settings.Release,
		GuardConstants:     settings.GuardConstants,
		ConsolidateImports: settings.ConsolidateImports,
	}
	result, err := Inline(ctx, fs, resolver, target.Input, options, logger.With("input", target.Input))
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.result = result

	if settings.Verify {
		issue, err := VerifyPythonSyntax(ctx, []byte(result.Output))
		if err != nil {
			outcome.err = err
			return outcome
		}
		if issue != nil {
			diagnostic := Diagnostic{Kind: SyntaxError, Path: target.Output, Line: issue.Line, Message: issue.String()}
			outcome.result.Diagnostics = append(outcome.result.Diagnostics, diagnostic)
			outcome.err = fmt.Errorf("%w: %s", ErrVerificationFailed, diagnostic)
			return outcome
		}
	}

	if settings.DryRun {
		existing := []byte{}
		if fs.Exists(ctx, target.Output) {
			existing, _ = fs.ReadFile(ctx, target.Output)
		}
		outcome.diff = RenderLineDiff(string(existing), result.Output)
		outcome.status = Unchanged
		return outcome
	}

	outcome.status, outcome.err = WriteOutput(ctx, fs, target.Output, result.Output)
	return outcome
}

func runInline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fs := NewFileSystem()
	settings, err := loadRunSettings(ctx, cmd, fs, args)
	if err != nil {
		return err
	}
	if len(settings.Targets) == 0 {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("nothing to inline: pass <input> <output> or configure targets")
	}

	logger := NewLogger(os.Stderr, sharedVerbose)

	outcomes := make([]targetOutcome, len(settings.Targets))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for idx, target := range settings.Targets {
		idx, target := idx, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := inlineTarget(ctx, fs, settings, target, logger)
			mu.Lock()
			outcomes[idx] = outcome
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.err != nil {
			failed++
			fmt.Fprintln(os.Stderr, color.RedString("✗ %s: %v", outcome.target.Input, outcome.err))
			continue
		}
		if settings.DryRun {
			fmt.Printf("--- %s\n+++ %s (dry run)\n", outcome.target.Output, outcome.target.Output)
			fmt.Print(outcome.diff)
			continue
		}
		fmt.Println(FormatSummary(outcome.target.Input, outcome.target.Output, outcome.result, outcome.status))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(outcomes))
	}
	return nil
}
