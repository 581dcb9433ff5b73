package schema

import (
	"fmt"
	"io"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

const (
	sortInputName   = "SortInput"
	filterInputName = "FilterInput"
)

// WriteSDL prints the GraphQL schema the query engine exposes for domain.
//
// Content types are emitted once per nesting level so the schema mirrors the
// nesting guard: a reference field on the deepest level is typed MaximumNestingLevel.
func WriteSDL(w io.Writer, org *Organization, domain *Domain, maxNestingLevel int) error {
	doc, err := SchemaDocument(org, domain, maxNestingLevel)
	if err != nil {
		return err
	}
	formatter.NewFormatter(w, formatter.WithIndent("  ")).FormatSchemaDocument(doc)
	return nil
}

// SchemaDocument builds the SDL document of domain.
func SchemaDocument(org *Organization, domain *Domain, maxNestingLevel int) (*ast.SchemaDocument, error) {
	if maxNestingLevel < 1 {
		return nil, fmt.Errorf("max nesting level must be at least 1, got %d", maxNestingLevel)
	}
	b := &sdlBuilder{
		org:             org,
		domain:          domain,
		maxNestingLevel: maxNestingLevel,
		emitted:         map[string]struct{}{},
	}
	return b.build()
}

type sdlBuilder struct {
	org             *Organization
	domain          *Domain
	maxNestingLevel int
	emitted         map[string]struct{}
	definitions     ast.DefinitionList
}

func (b *sdlBuilder) build() (*ast.SchemaDocument, error) {
	query := &ast.Definition{Kind: ast.Object, Name: "Query"}
	b.definitions = append(b.definitions, query)

	for _, contentType := range b.domain.ContentTypes {
		target := ReferenceTarget{Domain: b.domain.Identifier, ContentType: contentType.Identifier}
		itemType, err := b.contentType(target, 1)
		if err != nil {
			return nil, err
		}
		resultType := GraphQLName(contentType.Identifier) + "ContentResult"
		b.add(&ast.Definition{
			Kind: ast.Object,
			Name: resultType,
			Fields: ast.FieldList{
				{Name: "total", Type: ast.NamedType("Int", nil)},
				{Name: "page", Type: ast.NamedType("Int", nil)},
				{Name: "result", Type: ast.ListType(ast.NamedType(itemType, nil), nil)},
			},
		})
		query.Fields = append(query.Fields,
			&ast.FieldDefinition{
				Name: FindFieldName(contentType),
				Arguments: ast.ArgumentDefinitionList{
					{Name: "limit", Type: ast.NamedType("Int", nil)},
					{Name: "page", Type: ast.NamedType("Int", nil)},
					{Name: "sort", Type: ast.ListType(ast.NamedType(sortInputName, nil), nil)},
					{Name: "filter", Type: ast.NamedType(filterInputName, nil)},
				},
				Type: ast.NamedType(resultType, nil),
			},
			&ast.FieldDefinition{
				Name: GetFieldName(contentType),
				Arguments: ast.ArgumentDefinitionList{
					{Name: "id", Type: ast.NonNullNamedType("ID", nil)},
				},
				Type: ast.NamedType(itemType, nil),
			},
		)
	}

	b.add(&ast.Definition{
		Kind:   ast.Object,
		Name:   MaximumNestingLevelTypeName,
		Fields: ast.FieldList{{Name: "message", Type: ast.NamedType("String", nil)}},
	})
	b.add(&ast.Definition{
		Kind: ast.InputObject,
		Name: sortInputName,
		Fields: ast.FieldList{
			{Name: "field", Type: ast.NonNullNamedType("String", nil)},
			{Name: "order", Type: ast.NamedType("String", nil)},
		},
	})
	b.add(&ast.Definition{
		Kind: ast.InputObject,
		Name: filterInputName,
		Fields: ast.FieldList{
			{Name: "AND", Type: ast.ListType(ast.NamedType(filterInputName, nil), nil)},
			{Name: "OR", Type: ast.ListType(ast.NamedType(filterInputName, nil), nil)},
			{Name: "field", Type: ast.NamedType("String", nil)},
			{Name: "operator", Type: ast.NamedType("String", nil)},
			{Name: "value", Type: ast.NamedType("String", nil)},
		},
	})

	return &ast.SchemaDocument{Definitions: b.definitions}, nil
}

func (b *sdlBuilder) add(def *ast.Definition) bool {
	if _, ok := b.emitted[def.Name]; ok {
		return false
	}
	b.emitted[def.Name] = struct{}{}
	b.definitions = append(b.definitions, def)
	return true
}

// contentType emits the object type of target at level and returns its name.
func (b *sdlBuilder) contentType(target ReferenceTarget, level int) (string, error) {
	name := ContentTypeName(b.domain.Identifier, target, level)
	contentType, err := b.org.ContentType(target.Domain, target.ContentType)
	if err != nil {
		return "", err
	}
	def := &ast.Definition{
		Kind: ast.Object,
		Name: name,
		Fields: ast.FieldList{
			{Name: "id", Type: ast.NamedType("ID", nil)},
			{Name: "type", Type: ast.NamedType("String", nil)},
			{Name: "created", Type: ast.NamedType("String", nil)},
			{Name: "updated", Type: ast.NamedType("String", nil)},
		},
	}
	if !b.add(def) {
		return name, nil
	}

	for _, field := range contentType.Fields {
		ref, ok := field.ReferenceTarget()
		if !ok {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name: field.Identifier,
				Type: ast.NamedType(field.Type.GraphQLType(), nil),
			})
			continue
		}
		typeName := MaximumNestingLevelTypeName
		if level+1 <= b.maxNestingLevel {
			typeName, err = b.contentType(ref, level+1)
			if err != nil {
				return "", err
			}
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: field.Identifier,
			Type: ast.NamedType(typeName, nil),
		})
	}
	return name, nil
}
