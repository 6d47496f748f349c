package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type WriteStatus uint8

const (
	Written WriteStatus = iota
	Unchanged
)

// WriteOutput writes content to path unless the file already holds exactly that content.
func WriteOutput(ctx context.Context, fs FileSystem, path string, content string) (WriteStatus, error) {
	if fs.Exists(ctx, path) {
		existing, err := fs.ReadFile(ctx, path)
		if err == nil && bytes.Equal(existing, []byte(content)) {
			return Unchanged, nil
		}
	}
	if err := fs.WriteFile(ctx, path, []byte(content)); err != nil {
		return Written, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Written, nil
}

// RenderLineDiff returns a unified-style line diff of before and after,
// coloured when colour output is enabled.
func RenderLineDiff(before string, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	var builder strings.Builder
	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				builder.WriteString(added.Sprint("+ " + line))
			case diffmatchpatch.DiffDelete:
				builder.WriteString(removed.Sprint("- " + line))
			case diffmatchpatch.DiffEqual:
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// FormatSummary describes one inlined output for the command line.
func FormatSummary(input string, output string, result InlineResult, status WriteStatus) string {
	state := color.GreenString("written")
	if status == Unchanged {
		state = color.YellowString("unchanged")
	}
	summary := fmt.Sprintf("%s ➞ %s (%s, %d modules inlined, %s)",
		input, output, humanize.Bytes(uint64(len(result.Output))), len(result.Modules), state)
	if len(result.Diagnostics) > 0 {
		summary += color.YellowString(" %d warnings", len(result.Diagnostics))
	}
	return summary
}
