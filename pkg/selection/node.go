// Package selection turns GraphQL query text into a tree of field selections bound to the content schema.
package selection

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/schema"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindFind is a root find<Name> field listing content items.
	KindFind
	// KindGet is a root get<Name> field loading a single content item.
	KindGet
	// KindResult is the item list of a find field.
	KindResult
	KindTotal
	KindPage
	// KindScalar is a scalar content field, declared or built-in (id, type, created, updated).
	KindScalar
	// KindReference is a reference field, its children select from the target content type.
	KindReference
	// KindMessage is the message field of a MaximumNestingLevel object.
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindFind:
		return "find"
	case KindGet:
		return "get"
	case KindResult:
		return "result"
	case KindTotal:
		return "total"
	case KindPage:
		return "page"
	case KindScalar:
		return "scalar"
	case KindReference:
		return "reference"
	case KindMessage:
		return "message"
	}
	return "unknown"
}

// Node is a single field selection.
type Node struct {
	// Name is the schema field name, Alias the response key.
	Name  string
	Alias string
	Kind  Kind
	// Field is the declared field definition, nil for built-in fields.
	Field *schema.FieldDefinition
	// ContentType is the type the children of find, get, result and reference nodes select from.
	ContentType *schema.ContentType
	// Level is the nesting level of the items the children select from. Root items are on level 1.
	Level     int
	Arguments map[string]interface{}
	// Query is set on find nodes.
	Query content.Query
	// ID is set on get nodes.
	ID       string
	Children []*Node
	Position *ast.Position
}

// ResponseKey is the alias if present, the name otherwise.
func (n *Node) ResponseKey() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// IsReference reports whether resolving the node crosses a reference field.
func (n *Node) IsReference() bool {
	return n.Kind == KindReference
}

type Tree struct {
	OperationName string
	Roots         []*Node
}
