package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestStripDocstrings(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "module docstring",
			code:     "\"\"\"Module.\"\"\"\nx = 1\n",
			expected: "x = 1\n",
		},
		{
			name:     "only statement of a function becomes pass",
			code:     "def f():\n    \"\"\"Doc.\"\"\"\n",
			expected: "def f():\n    pass\n",
		},
		{
			name:     "consecutive strings emptying a body leave one pass",
			code:     "def f():\n    \"\"\"a\"\"\"\n    \"\"\"b\"\"\"\nx = 1\n",
			expected: "def f():\n    pass\nx = 1\n",
		},
		{
			name:     "consecutive strings at the end of the file",
			code:     "class C:\n    '''a'''\n    '''b'''\n",
			expected: "class C:\n    pass\n",
		},
		{
			name:     "class docstring before a method",
			code:     "class C:\n    '''Doc.'''\n    def m(self):\n        pass\n",
			expected: "class C:\n    def m(self):\n        pass\n",
		},
		{
			name:     "multi line docstring",
			code:     "def f():\n    \"\"\"Line one.\n\n    Line two.\n    \"\"\"\n    return 1\n",
			expected: "def f():\n    return 1\n",
		},
		{
			name:     "docstring with a trailing comment",
			code:     "\"\"\"Doc.\"\"\"  # note\nx = 1\n",
			expected: "x = 1\n",
		},
		{
			name:     "hash inside a docstring",
			code:     "def f():\n    \"\"\"Use # carefully.\"\"\"\n    return 1\n",
			expected: "def f():\n    return 1\n",
		},
		{
			name:     "assigned string is kept",
			code:     "x = \"\"\"text\"\"\"\n",
			expected: "x = \"\"\"text\"\"\"\n",
		},
		{
			name:     "string continued from an assignment is kept",
			code:     "x = \\\n    \"\"\"text\"\"\"\n",
			expected: "x = \\\n    \"\"\"text\"\"\"\n",
		},
		{
			name:     "formatted and bytes strings are kept",
			code:     "f\"\"\"{x}\"\"\"\nb\"\"\"raw\"\"\"\n",
			expected: "f\"\"\"{x}\"\"\"\nb\"\"\"raw\"\"\"\n",
		},
		{
			name:     "string after an import is kept",
			code:     "import os\n\"\"\"Doc.\"\"\"\n",
			expected: "import os\n\"\"\"Doc.\"\"\"\n",
		},
		{
			name:     "string argument is kept",
			code:     "f(\n    \"\"\"arg\"\"\"\n)\n",
			expected: "f(\n    \"\"\"arg\"\"\"\n)\n",
		},
		{
			name:     "single quoted string is kept",
			code:     "\"text\"\n",
			expected: "\"text\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := StripDocstrings(tt.code)
			assert.NilError(t, err)
			if result != tt.expected {
				t.Errorf("StripDocstrings(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "trailing comment",
			code:     "x = 1  # c\n",
			expected: "x = 1\n",
		},
		{
			name:     "comment only line",
			code:     "# full\nx = 1\n",
			expected: "x = 1\n",
		},
		{
			name:     "indented comment line",
			code:     "def f():\n    # note\n    return 1\n",
			expected: "def f():\n    return 1\n",
		},
		{
			name:     "shebang and encoding declaration are kept",
			code:     "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\n# other\nx = 1\n",
			expected: "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nx = 1\n",
		},
		{
			name:     "encoding declaration past the second line is removed",
			code:     "x = 1\ny = 2\n# coding: utf-8\n",
			expected: "x = 1\ny = 2\n",
		},
		{
			name:     "hash inside a string",
			code:     "s = \"# not a comment\"  # real\n",
			expected: "s = \"# not a comment\"\n",
		},
		{
			name:     "windows line endings",
			code:     "x = 1  # c\r\ny = 2\r\n",
			expected: "x = 1\r\ny = 2\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := StripComments(tt.code)
			assert.NilError(t, err)
			if result != tt.expected {
				t.Errorf("StripComments(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestCollapseBlankLines(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{name: "blank and whitespace lines", code: "a\n\n  \nb\n", expected: "a\nb\n"},
		{name: "blank lines inside strings are kept", code: "s = '''\n\n'''\n\n", expected: "s = '''\n\n'''\n"},
		{name: "missing trailing newline stays missing", code: "a\n\nb", expected: "a\nb"},
		{name: "trailing blank lines", code: "a\n\n\n", expected: "a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CollapseBlankLines(tt.code)
			assert.NilError(t, err)
			assert.Equal(t, result, tt.expected)
		})
	}
}

func TestApplyReleaseCleanupIsIdempotent(t *testing.T) {
	inputs := []string{
		"#!/usr/bin/env python3\n\"\"\"Module.\"\"\"\n\nimport os  # os\n\n\nclass C:\n    \"\"\"Doc.\"\"\"\n\n    def m(self):\n        '''Doc.'''\n        return '# kept'\n",
		"def f():\n    \"\"\"Only a docstring.\"\"\"\n\n# trailing\n",
		"x = '''\n\n# inside\n'''\n",
	}

	for _, input := range inputs {
		once, err := ApplyReleaseCleanup(input)
		assert.NilError(t, err)
		twice, err := ApplyReleaseCleanup(once)
		assert.NilError(t, err)
		assert.Equal(t, twice, once)
	}
}

func TestApplyReleaseCleanup(t *testing.T) {
	code := "#!/usr/bin/env python3\n" +
		"\"\"\"Module.\"\"\"\n" +
		"\n" +
		"import os  # os\n" +
		"\n\n" +
		"class C:\n" +
		"    \"\"\"Doc.\"\"\"\n" +
		"\n" +
		"    def m(self):\n" +
		"        '''Doc.'''\n" +
		"        return '# kept'\n"
	expected := "#!/usr/bin/env python3\n" +
		"import os\n" +
		"class C:\n" +
		"    def m(self):\n" +
		"        return '# kept'\n"

	result, err := ApplyReleaseCleanup(code)
	assert.NilError(t, err)
	assert.Equal(t, result, expected)

	_, err = ApplyReleaseCleanup("x = '''\n")
	assert.ErrorIs(t, err, ErrUnterminatedLiteral)
}
