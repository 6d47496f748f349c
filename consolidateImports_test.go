package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestConsolidateImports(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "imports are hoisted and sorted",
			code:     "import sys\nx = 1\nimport os\n",
			expected: "import os\nimport sys\nx = 1\n",
		},
		{
			name:     "future imports come first",
			code:     "import b\nfrom __future__ import annotations\nimport a\n",
			expected: "from __future__ import annotations\nimport a\nimport b\n",
		},
		{
			name:     "shebang and encoding declaration stay on top",
			code:     "#!/usr/bin/env python\n# coding: utf-8\nx = 1\nimport os\n",
			expected: "#!/usr/bin/env python\n# coding: utf-8\nimport os\nx = 1\n",
		},
		{
			name:     "duplicates are dropped",
			code:     "from m import (a,\n    b)\nfrom m import a, b\n",
			expected: "from m import a, b\n",
		},
		{
			name:     "nested imports are left in place",
			code:     "def f():\n    import os\nimport sys\n",
			expected: "import sys\ndef f():\n    import os\n",
		},
		{
			name:     "last line without newline",
			code:     "x = 1\nimport os",
			expected: "import os\nx = 1\n",
		},
		{
			name:     "no imports",
			code:     "x = 1\n",
			expected: "x = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConsolidateImports(tt.code)
			assert.NilError(t, err)
			if result != tt.expected {
				t.Errorf("ConsolidateImports(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestHoistFutureImports(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name: "spliced future import moves to the top",
			code: "import os\n" +
				"# ↓↓↓ inlined module: a\n" +
				"from __future__ import annotations\n" +
				"A = 1\n" +
				"# ↑↑↑ inlined module: a\n",
			expected: "from __future__ import annotations\n" +
				"import os\n" +
				"# ↓↓↓ inlined module: a\n" +
				"A = 1\n" +
				"# ↑↑↑ inlined module: a\n",
		},
		{
			name:     "shebang and module docstring stay first",
			code:     "#!/usr/bin/env python3\n\"\"\"Doc.\"\"\"\nimport os\nfrom __future__ import annotations\n",
			expected: "#!/usr/bin/env python3\n\"\"\"Doc.\"\"\"\nfrom __future__ import annotations\nimport os\n",
		},
		{
			name:     "duplicates are dropped in order of appearance",
			code:     "from __future__ import annotations\nimport a\nfrom __future__ import division\nfrom __future__ import annotations\n",
			expected: "from __future__ import annotations\nfrom __future__ import division\nimport a\n",
		},
		{
			name:     "future imports already on top are left alone",
			code:     "\"\"\"Doc.\"\"\"\n\n# comment\nfrom __future__ import annotations\nimport os\n",
			expected: "\"\"\"Doc.\"\"\"\n\n# comment\nfrom __future__ import annotations\nimport os\n",
		},
		{
			name:     "nested future import leaves pass behind",
			code:     "def f():\n    from __future__ import annotations\nx = 1\n",
			expected: "from __future__ import annotations\ndef f():\n    pass\nx = 1\n",
		},
		{
			name:     "no future imports",
			code:     "import os\n",
			expected: "import os\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HoistFutureImports(tt.code)
			assert.NilError(t, err)
			if result != tt.expected {
				t.Errorf("HoistFutureImports(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}
