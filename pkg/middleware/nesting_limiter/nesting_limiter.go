package nesting_limiter

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/selection"
)

const messageFormat = "Maximum nesting level of %d reached."

// Limiter decides where reference traversal stops. Items selected through a chain of more
// than max reference fields are replaced by a message object.
type Limiter struct {
	max     int
	message string
}

func New(maxNestingLevel int) (*Limiter, error) {
	if maxNestingLevel < 1 {
		return nil, fmt.Errorf("max nesting level must be at least 1, got %d", maxNestingLevel)
	}
	return &Limiter{
		max:     maxNestingLevel,
		message: fmt.Sprintf(messageFormat, maxNestingLevel),
	}, nil
}

func (l *Limiter) MaxNestingLevel() int {
	return l.max
}

// Exceeds reports whether items on level must not be loaded.
func (l *Limiter) Exceeds(level int) bool {
	return level > l.max
}

// Message is the text of the message object.
func (l *Limiter) Message() string {
	return l.message
}

// Inspection summarizes where a tree hits the limit before it is resolved.
type Inspection struct {
	// Limited holds the response paths of reference fields that will be replaced, list indexes omitted.
	Limited []ast.Path
	// DeepestLevel is the deepest level that will be loaded from the store.
	DeepestLevel int
}

// Inspect walks the tree the way the resolver will, without touching the store.
func (l *Limiter) Inspect(tree *selection.Tree) Inspection {
	inspection := Inspection{}
	for _, root := range tree.Roots {
		l.inspect(root, ast.Path{ast.PathName(root.ResponseKey())}, &inspection)
	}
	return inspection
}

func (l *Limiter) inspect(node *selection.Node, path ast.Path, inspection *Inspection) {
	if node.IsReference() && l.Exceeds(node.Level) {
		inspection.Limited = append(inspection.Limited, path)
		// nothing beneath a replaced reference is evaluated
		return
	}
	if node.ContentType != nil && node.Level > inspection.DeepestLevel {
		inspection.DeepestLevel = node.Level
	}
	for _, child := range node.Children {
		childPath := make(ast.Path, len(path), len(path)+1)
		copy(childPath, path)
		l.inspect(child, append(childPath, ast.PathName(child.ResponseKey())), inspection)
	}
}
