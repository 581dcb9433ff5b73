package schema

import (
	"strconv"

	"github.com/iancoleman/strcase"
)

const (
	findPrefix = "find"
	getPrefix  = "get"

	// MaximumNestingLevelTypeName is the GraphQL type that replaces a reference once the nesting limit is hit.
	MaximumNestingLevelTypeName = "MaximumNestingLevel"
)

// RootFieldKind tells which kind of top level query field addresses a content type.
type RootFieldKind int

const (
	RootFieldUnknown RootFieldKind = iota
	RootFieldFind
	RootFieldGet
)

// GraphQLName converts an identifier such as "news-category" into "NewsCategory".
func GraphQLName(identifier string) string {
	return strcase.ToCamel(identifier)
}

func FindFieldName(contentType *ContentType) string {
	return findPrefix + GraphQLName(contentType.Identifier)
}

func GetFieldName(contentType *ContentType) string {
	return getPrefix + GraphQLName(contentType.Identifier)
}

// RootField resolves a top level query field like "findNews" to its content type.
func (d *Domain) RootField(name string) (*ContentType, RootFieldKind) {
	for _, contentType := range d.ContentTypes {
		switch name {
		case FindFieldName(contentType):
			return contentType, RootFieldFind
		case GetFieldName(contentType):
			return contentType, RootFieldGet
		}
	}
	return nil, RootFieldUnknown
}

// ContentTypeName is the GraphQL object name of a content type at a nesting level.
// Top level items live at level 1. Types of other domains carry the domain as prefix.
func ContentTypeName(currentDomain string, target ReferenceTarget, level int) string {
	name := GraphQLName(target.ContentType) + "Content"
	if target.Domain != "" && target.Domain != currentDomain {
		name = GraphQLName(target.Domain) + name
	}
	if level > 1 {
		name += "Level" + strconv.Itoa(level)
	}
	return name
}
