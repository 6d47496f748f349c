package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or run a python-inliner config file",
}

var (
	configCwd    string
	configFormat string
)

var configRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Inline every target listed in the config file",
	Long: `Loads python-inliner.config.json(c) or python-inliner.config.yaml from the working directory
(or the file given with --config) and inlines all its targets concurrently.`,
	Example: "python-inliner config run --config build/python-inliner.config.yaml",
	Args:    cobra.NoArgs,
	RunE:    runInline,
}

var configInitCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create a python-inliner config file in the working directory",
	Example: "python-inliner config init --format yaml",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		configPath, err := initConfigFileCore(ctx, NewFileSystem(), configCwd, configFormat)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s\n", configPath)
		return nil
	},
}

// initConfigFileCore writes the default config and returns its path.
func initConfigFileCore(ctx context.Context, fs FileSystem, cwd string, format string) (string, error) {
	if existing, err := findConfigFile(ctx, fs, cwd); err == nil {
		return "", fmt.Errorf("config file already exists at %s", existing)
	}

	config := DefaultConfig()
	var (
		configPath string
		content    []byte
		err        error
	)
	switch format {
	case "yaml", "yml":
		configPath = filepath.Join(cwd, "python-inliner.config.yaml")
		content, err = yaml.Marshal(config)
	case "", "json":
		configPath = filepath.Join(cwd, "python-inliner.config.json")
		content, err = json.MarshalIndent(config, "", "  ")
		content = append(content, '\n')
	default:
		return "", fmt.Errorf("unknown config format %q, use json or yaml", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fs.WriteFile(ctx, configPath, content); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
