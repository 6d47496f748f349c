package main

import (
	"testing"
)

func TestApplyChangesToContent(t *testing.T) {
	content := "import a\nx = 1\nfrom b import c\n"
	// Indices:
	// "import a\n" 0-8, "x = 1\n" 9-14, "from b import c\n" 15-30

	tests := []struct {
		name     string
		changes  []Change
		expected string
	}{
		{
			name: "Basic replacement of an import line",
			changes: []Change{
				{Start: 0, End: 8, Text: "A = 1"},
			},
			expected: "A = 1\nx = 1\nfrom b import c\n",
		},
		{
			name: "Multiple non-overlapping changes given out of order",
			changes: []Change{
				{Start: 15, End: 30, Text: "c = 3"},
				{Start: 0, End: 8, Text: "a = 2"},
			},
			expected: "a = 2\nx = 1\nc = 3\n",
		},
		{
			name: "Nested changes (remove smaller)",
			changes: []Change{
				{Start: 0, End: 15, Text: "y = 0\n"},
				{Start: 9, End: 14, Text: "x = 2"},
			},
			expected: "y = 0\nfrom b import c\n",
		},
		{
			name: "Overlapping changes (keep bigger)",
			changes: []Change{
				{Start: 9, End: 20, Text: "z"},
				{Start: 0, End: 10, Text: "w"},
			},
			expected: "import a\nzb import c\n",
		},
		{
			name: "Insertion next to a replacement",
			changes: []Change{
				{Start: 9, End: 9, Text: "pass\n"},
				{Start: 0, End: 8, Text: "a = 2"},
			},
			expected: "a = 2\npass\nx = 1\nfrom b import c\n",
		},
		{
			name: "Out of range change is ignored",
			changes: []Change{
				{Start: 20, End: 99, Text: "nope"},
			},
			expected: content,
		},
		{
			name:     "No changes",
			changes:  []Change{},
			expected: content,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applyChangesToContent(content, tt.changes)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDeleteLineChange(t *testing.T) {
	code := []byte("a = 1\n    b = 2  # c\nd = 3")

	tests := []struct {
		name     string
		start    int
		end      int
		expected string
	}{
		{name: "middle line", start: 10, end: 15, expected: "a = 1\nd = 3"},
		{name: "first line", start: 0, end: 1, expected: "    b = 2  # c\nd = 3"},
		{name: "last line without newline", start: 21, end: 26, expected: "a = 1\n    b = 2  # c\n"},
		{name: "two lines", start: 2, end: 12, expected: "d = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := deleteLineChange(code, tt.start, tt.end)
			result := applyChangesToContent(string(code), []Change{change})
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}
