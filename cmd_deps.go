package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// moduleTreeForInput builds the module tree of one entry file with the
// settings from the shared flags and config.
func moduleTreeForInput(cmd *cobra.Command, input string) (MinimalDependencyTree, []string, string, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fs := NewFileSystem()
	settings, err := loadRunSettings(ctx, cmd, fs, nil)
	if err != nil {
		return nil, nil, "", err
	}
	resolver, err := newResolverForInput(ctx, fs, settings, input)
	if err != nil {
		return nil, nil, "", err
	}
	sink := NewDiagnosticSink(NewLogger(os.Stderr, sharedVerbose))
	tree, sortedFiles, err := BuildModuleTree(ctx, fs, resolver, input, settings.GuardConstants, sink)
	if err != nil {
		return nil, nil, "", err
	}
	absInput, _ := fs.Abs(input)
	return tree, sortedFiles, StandardiseDirPath(fs.Dir(absInput)), nil
}

// ---------------- deps ----------------
var depsCmd = &cobra.Command{
	Use:   "deps <input>",
	Short: "Print the modules an entry file would inline",
	Long: `Walks the imports of the entry file the same way inline does, without splicing anything,
and prints the resulting module tree.`,
	Example: "python-inliner deps main.py -s src",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, pathPrefix, err := moduleTreeForInput(cmd, args[0])
		if err != nil {
			return err
		}
		absInput, _ := NewFileSystem().Abs(args[0])
		fmt.Print(FormatModuleTree(tree, absInput, pathPrefix))
		return nil
	},
}

// ---------------- cycles ----------------
var cyclesCmd = &cobra.Command{
	Use:   "cycles <input>",
	Short: "Detect circular imports between the modules of an entry file",
	Long: `Reports import cycles among the modules reachable from the entry file.
Cycles are broken while inlining, this command shows where that happens.`,
	Example: "python-inliner cycles main.py",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, sortedFiles, pathPrefix, err := moduleTreeForInput(cmd, args[0])
		if err != nil {
			return err
		}
		cycles := FindCircularDependencies(tree, sortedFiles)

		fmt.Fprint(os.Stderr, FormatCircularDependencies(cycles, pathPrefix, tree))

		if len(cycles) > 0 {
			os.Exit(len(cycles))
		}
		return nil
	},
}

// FormatModuleTree prints the tree rooted at root, each module once. Modules
// seen before are marked instead of expanded again.
func FormatModuleTree(tree MinimalDependencyTree, root string, pathPrefix string) string {
	var result strings.Builder
	printed := map[string]bool{}

	var walk func(file string, depth int)
	walk = func(file string, depth int) {
		printed[file] = true
		for _, dep := range tree[file] {
			indent := strings.Repeat("  ", depth+1)
			label := dep.Request
			if dep.IsNested {
				label += " (nested)"
			}
			switch dep.ResolvedType {
			case Resolved:
				cleanPath := strings.TrimPrefix(dep.ID, pathPrefix)
				if printed[dep.ID] {
					fmt.Fprintf(&result, "%s➞ %s %s\n", indent, label, color.HiBlackString("%s (already listed)", cleanPath))
					continue
				}
				fmt.Fprintf(&result, "%s➞ %s %s\n", indent, label, color.CyanString(cleanPath))
				walk(dep.ID, depth+1)
			default:
				fmt.Fprintf(&result, "%s➞ %s %s\n", indent, label, color.YellowString("(%s)", dep.ResolvedType))
			}
		}
	}

	result.WriteString(strings.TrimPrefix(root, pathPrefix) + "\n")
	walk(root, 0)
	return result.String()
}
