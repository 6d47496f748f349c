package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const CurrentConfigVersion = "1.0"

var supportedConfigVersions = "^1.0"

var ErrUnsupportedConfigVersion = errors.New("unsupported configVersion")

var configFileNames = []string{
	"python-inliner.config.json",
	"python-inliner.config.jsonc",
	"python-inliner.config.yaml",
	"python-inliner.config.yml",
}

// InlineTarget is one input file and the bundle produced from it.
type InlineTarget struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

type InlinerConfig struct {
	Schema             string         `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	ConfigVersion      string         `json:"configVersion" yaml:"configVersion"`
	Modules            []string       `json:"modules,omitempty" yaml:"modules,omitempty"`
	Exclude            []string       `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	SearchPaths        []string       `json:"searchPaths,omitempty" yaml:"searchPaths,omitempty"`
	GuardConstants     []string       `json:"guardConstants,omitempty" yaml:"guardConstants,omitempty"`
	Extensions         []string       `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	BinaryPatterns     []string       `json:"binaryPatterns,omitempty" yaml:"binaryPatterns,omitempty"`
	Python             string         `json:"python,omitempty" yaml:"python,omitempty"`
	Release            bool           `json:"release,omitempty" yaml:"release,omitempty"`
	ConsolidateImports bool           `json:"consolidateImports,omitempty" yaml:"consolidateImports,omitempty"`
	Verify             bool           `json:"verify,omitempty" yaml:"verify,omitempty"`
	Targets            []InlineTarget `json:"targets,omitempty" yaml:"targets,omitempty"`

	// Dir is the directory of the config file, relative paths are resolved against it
	Dir string `json:"-" yaml:"-"`
}

func isYAMLConfig(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ParseConfig decodes and validates a config file. YAML is used for .yaml and
// .yml files, JSON with comments for anything else.
func ParseConfig(content []byte, path string) (InlinerConfig, error) {
	var config InlinerConfig
	if isYAMLConfig(path) {
		if err := yaml.Unmarshal(content, &config); err != nil {
			return InlinerConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	} else {
		if err := json.Unmarshal(jsonc.ToJSON(content), &config); err != nil {
			return InlinerConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := validateConfig(&config); err != nil {
		return InlinerConfig{}, err
	}
	return config, nil
}

func validateConfigVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrUnsupportedConfigVersion, version, err)
	}
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w %q, this version supports %s", ErrUnsupportedConfigVersion, version, supportedConfigVersions)
	}
	return nil
}

func validateConfig(config *InlinerConfig) error {
	if err := validateConfigVersion(config.ConfigVersion); err != nil {
		return err
	}
	if _, err := CreateGlobMatchers(config.Modules); err != nil {
		return fmt.Errorf("config.modules: %w", err)
	}
	if _, err := CreateGlobMatchers(config.Exclude); err != nil {
		return fmt.Errorf("config.exclude: %w", err)
	}
	if _, err := CreateFileGlobMatchers(config.BinaryPatterns); err != nil {
		return fmt.Errorf("config.binaryPatterns: %w", err)
	}
	for i, guard := range config.GuardConstants {
		if !isIdentifier(guard) {
			return fmt.Errorf("config.guardConstants[%d]: %q is not an identifier", i, guard)
		}
	}
	for i, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config.extensions[%d]: %q must start with '.'", i, ext)
		}
	}
	for i, target := range config.Targets {
		if target.Input == "" {
			return fmt.Errorf("config.targets[%d].input: required", i)
		}
		if target.Output == "" {
			return fmt.Errorf("config.targets[%d].output: required", i)
		}
		if target.Input == target.Output {
			return fmt.Errorf("config.targets[%d]: output would overwrite input %s", i, target.Input)
		}
	}
	return nil
}

// findConfigFile returns the first known config file name present in dir.
func findConfigFile(ctx context.Context, fs FileSystem, dir string) (string, error) {
	for _, name := range configFileNames {
		candidate := fs.Join(dir, name)
		if fs.Exists(ctx, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found in %s", dir)
}

// LoadConfig loads the configuration from configPath, which is either a
// config file or a directory containing one.
func LoadConfig(ctx context.Context, fs FileSystem, configPath string) (InlinerConfig, error) {
	actualPath := configPath
	if fs.IsDir(ctx, configPath) {
		found, err := findConfigFile(ctx, fs, configPath)
		if err != nil {
			return InlinerConfig{}, err
		}
		actualPath = found
	}

	content, err := fs.ReadFile(ctx, actualPath)
	if err != nil {
		return InlinerConfig{}, err
	}
	config, err := ParseConfig(content, actualPath)
	if err != nil {
		return InlinerConfig{}, fmt.Errorf("%s: %w", actualPath, err)
	}
	config.Dir = fs.Dir(actualPath)
	return config, nil
}

// resolveConfigPath makes a path from the config file relative to its directory.
func (c InlinerConfig) resolveConfigPath(fs FileSystem, path string) string {
	if path == "" || filepath.IsAbs(path) || isURL(path) || c.Dir == "" {
		return path
	}
	return fs.Join(c.Dir, path)
}

// DefaultConfig is written by `config init`.
func DefaultConfig() InlinerConfig {
	return InlinerConfig{
		ConfigVersion:  CurrentConfigVersion,
		Modules:        []string{},
		Exclude:        []string{},
		SearchPaths:    []string{"."},
		GuardConstants: DefaultGuardConstants,
		Targets: []InlineTarget{
			{Input: "main.py", Output: "dist/main.py"},
		},
	}
}
