package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var Version = "0.1.0"

var (
	currentDir, _ = os.Getwd()
	rootCmd       = &cobra.Command{
		Use:   "python-inliner <input> <output> [modules...]",
		Short: "Inline local Python modules into a single file",
		Long: `Merges a Python entry file and the local modules it imports into one self-contained file.
Each eligible import is replaced by the content of the module it refers to, recursively.`,
		Example: `  python-inliner main.py dist/main.py app,utils --release
  python-inliner inline main.py dist/main.py -s src --verify`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInline,
	}
)

var docsCmd = &cobra.Command{
	Use:   "doc-gen",
	Short: "Generate CLI documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll("./docs", 0755); err != nil {
			return err
		}
		return doc.GenMarkdownTree(rootCmd, "./docs")
	},
}

// ---------------- shared flags ----------------

var (
	sharedSearchPaths    []string
	sharedExclude        []string
	sharedGuardConstants []string
	sharedPython         string
	sharedConfigPath     string
	sharedVerbose        bool
)

func addSharedFlags(command *cobra.Command) {
	command.Flags().StringSliceVarP(&sharedSearchPaths, "search-path", "s", []string{},
		"Additional roots to resolve absolute imports against (default: input file directory)")
	command.Flags().StringSliceVar(&sharedExclude, "exclude", []string{},
		"Module patterns that are never inlined, e.g. tests or pkg.legacy.*")
	command.Flags().StringSliceVar(&sharedGuardConstants, "guard", []string{},
		"Constants guarding static-analysis-only blocks (default: TYPE_CHECKING)")
	command.Flags().StringVar(&sharedPython, "python", "",
		"Python interpreter whose sys.path serves the modules named explicitly")
	command.Flags().StringVar(&sharedConfigPath, "config", "",
		"Path to a config file or a directory containing one")
	command.Flags().BoolVarP(&sharedVerbose, "verbose", "v", false,
		"Log every resolution decision")
}

func init() {
	addSharedFlags(rootCmd)
	addInlineFlags(rootCmd)

	addSharedFlags(inlineCmd)
	addInlineFlags(inlineCmd)

	addSharedFlags(depsCmd)
	addSharedFlags(cyclesCmd)

	// config commands
	addSharedFlags(configRunCmd)
	addInlineFlags(configRunCmd)
	configInitCmd.Flags().StringVarP(&configCwd, "cwd", "c", currentDir, "Working directory")
	configInitCmd.Flags().StringVar(&configFormat, "format", "json", "Config file format: json or yaml")
	configCmd.AddCommand(configRunCmd, configInitCmd)

	rootCmd.AddCommand(inlineCmd, depsCmd, cyclesCmd, configCmd, docsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
