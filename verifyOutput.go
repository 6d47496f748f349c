package main

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxIssue is the first error node found in the parsed output.
type SyntaxIssue struct {
	Line     int
	Column   int
	NodeType string
	Missing  bool
}

func (s SyntaxIssue) String() string {
	if s.Missing {
		return fmt.Sprintf("missing %s at line %d, column %d", s.NodeType, s.Line, s.Column)
	}
	return fmt.Sprintf("syntax error at line %d, column %d", s.Line, s.Column)
}

// VerifyPythonSyntax parses src with the tree-sitter Python grammar. It returns
// nil when the tree holds no error or missing nodes.
func VerifyPythonSyntax(ctx context.Context, src []byte) (*SyntaxIssue, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	point := node.StartPoint()
	return &SyntaxIssue{
		Line:     int(point.Row) + 1,
		Column:   int(point.Column) + 1,
		NodeType: node.Type(),
		Missing:  node.IsMissing(),
	}, nil
}

// firstErrorNode walks the tree depth-first, only descending into subtrees
// that contain errors.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
