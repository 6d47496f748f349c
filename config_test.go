package main

import (
	"context"
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseConfigJSONC(t *testing.T) {
	content := []byte(`{
		// modules to inline
		"configVersion": "1.0",
		"modules": ["mylib", "shared.*"],
		"exclude": ["mylib.tests"],
		"searchPaths": ["src", "vendor"],
		"guardConstants": ["TYPE_CHECKING", "MYPY"],
		"release": true,
		"targets": [
			{"input": "main.py", "output": "dist/main.py"}, /* trailing comma below */
		],
	}`)

	config, err := ParseConfig(content, "python-inliner.config.jsonc")
	assert.NilError(t, err)
	assert.DeepEqual(t, config.Modules, []string{"mylib", "shared.*"})
	assert.DeepEqual(t, config.Exclude, []string{"mylib.tests"})
	assert.DeepEqual(t, config.SearchPaths, []string{"src", "vendor"})
	assert.DeepEqual(t, config.GuardConstants, []string{"TYPE_CHECKING", "MYPY"})
	assert.Assert(t, config.Release)
	assert.Assert(t, !config.ConsolidateImports)
	assert.DeepEqual(t, config.Targets, []InlineTarget{{Input: "main.py", Output: "dist/main.py"}})
}

func TestParseConfigYAML(t *testing.T) {
	content := []byte(`configVersion: "1.0"
modules:
  - mylib
extensions: [".py", ".pyi"]
binaryPatterns: ["*.so"]
python: python3.12
consolidateImports: true
verify: true
targets:
  - input: app/main.py
    output: build/app.py
  - input: cli.py
    output: build/cli.py
`)

	config, err := ParseConfig(content, "python-inliner.config.yml")
	assert.NilError(t, err)
	assert.Equal(t, config.ConfigVersion, "1.0")
	assert.DeepEqual(t, config.Extensions, []string{".py", ".pyi"})
	assert.Equal(t, config.Python, "python3.12")
	assert.Assert(t, config.ConsolidateImports)
	assert.Assert(t, config.Verify)
	assert.Equal(t, len(config.Targets), 2)
	assert.Equal(t, config.Targets[1].Output, "build/cli.py")
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "invalid json", content: `{"modules": [}`, expected: "failed to parse config"},
		{name: "invalid module pattern", content: `{"modules": ["pkg.[a"]}`, expected: "config.modules: pattern[0]"},
		{name: "invalid exclude pattern", content: `{"exclude": [""]}`, expected: "config.exclude"},
		{name: "invalid binary pattern", content: `{"binaryPatterns": ["[so"]}`, expected: "config.binaryPatterns"},
		{name: "guard is not an identifier", content: `{"guardConstants": ["typing.TYPE_CHECKING"]}`, expected: "config.guardConstants[0]"},
		{name: "extension without dot", content: `{"extensions": ["py"]}`, expected: "config.extensions[0]"},
		{name: "target without input", content: `{"targets": [{"output": "out.py"}]}`, expected: "config.targets[0].input: required"},
		{name: "target without output", content: `{"targets": [{"input": "a.py", "output": "b.py"}, {"input": "c.py"}]}`, expected: "config.targets[1].output: required"},
		{name: "target overwriting its input", content: `{"targets": [{"input": "a.py", "output": "a.py"}]}`, expected: "output would overwrite input a.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.content), "python-inliner.config.json")
			assert.ErrorContains(t, err, tt.expected)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := newMemFileSystem(map[string]string{
		"/proj/python-inliner.config.yaml":   "searchPaths: [src]\ntargets:\n  - input: main.py\n    output: /tmp/out.py\n",
		"/proj/main.py":                      "",
		"/other/custom.json":                 `{"modules": ["x"]}`,
		"/broken/python-inliner.config.json": `{"configVersion": "3.0"}`,
		"/bare/main.py":                      "",
	})

	config, err := LoadConfig(ctx, fs, "/proj")
	assert.NilError(t, err)
	assert.Equal(t, config.Dir, "/proj")
	assert.Equal(t, config.resolveConfigPath(fs, config.SearchPaths[0]), "/proj/src")
	assert.Equal(t, config.resolveConfigPath(fs, config.Targets[0].Input), "/proj/main.py")
	assert.Equal(t, config.resolveConfigPath(fs, config.Targets[0].Output), "/tmp/out.py")
	assert.Equal(t, config.resolveConfigPath(fs, ""), "")

	config, err = LoadConfig(ctx, fs, "/other/custom.json")
	assert.NilError(t, err)
	assert.DeepEqual(t, config.Modules, []string{"x"})
	assert.Equal(t, config.Dir, "/other")

	_, err = LoadConfig(ctx, fs, "/bare")
	assert.ErrorContains(t, err, "no config file found in /bare")

	_, err = LoadConfig(ctx, fs, "/broken")
	assert.ErrorIs(t, err, ErrUnsupportedConfigVersion)
	assert.ErrorContains(t, err, "/broken/python-inliner.config.json")
}

func TestFindConfigFilePrefersJSON(t *testing.T) {
	ctx := context.Background()
	fs := newMemFileSystem(map[string]string{
		"/proj/python-inliner.config.yaml": "",
		"/proj/python-inliner.config.json": "{}",
	})

	found, err := findConfigFile(ctx, fs, "/proj")
	assert.NilError(t, err)
	assert.Equal(t, found, "/proj/python-inliner.config.json")
}

func TestInitConfigFile(t *testing.T) {
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		fs := newMemFileSystem(nil)
		configPath, err := initConfigFileCore(ctx, fs, "/proj", "json")
		assert.NilError(t, err)
		assert.Equal(t, configPath, "/proj/python-inliner.config.json")

		var written InlinerConfig
		assert.NilError(t, json.Unmarshal([]byte(fs.files[configPath]), &written))
		assert.Equal(t, written.ConfigVersion, CurrentConfigVersion)
		assert.DeepEqual(t, written.Targets, DefaultConfig().Targets)

		_, err = initConfigFileCore(ctx, fs, "/proj", "json")
		assert.ErrorContains(t, err, "config file already exists")
	})

	t.Run("yaml", func(t *testing.T) {
		fs := newMemFileSystem(nil)
		configPath, err := initConfigFileCore(ctx, fs, "/proj", "yaml")
		assert.NilError(t, err)
		assert.Equal(t, configPath, "/proj/python-inliner.config.yaml")

		config, err := ParseConfig([]byte(fs.files[configPath]), configPath)
		assert.NilError(t, err)
		assert.DeepEqual(t, config.GuardConstants, DefaultGuardConstants)
		assert.DeepEqual(t, config.SearchPaths, []string{"."})
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := initConfigFileCore(ctx, newMemFileSystem(nil), "/proj", "toml")
		assert.ErrorContains(t, err, `unknown config format "toml"`)
	})
}
