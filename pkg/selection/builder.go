package selection

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/operationreport"
	"github.com/unitecms/contentgraph/pkg/pool"
	"github.com/unitecms/contentgraph/pkg/schema"
)

const DefaultCacheSize = 1024

const (
	fieldID       = "id"
	fieldType     = "type"
	fieldCreated  = "created"
	fieldUpdated  = "updated"
	fieldMessage  = "message"
	fieldResult   = "result"
	fieldTotal    = "total"
	fieldPage     = "page"
	queryTypeName = "Query"
)

var builtinFields = map[string]struct{}{
	fieldID:      {},
	fieldType:    {},
	fieldCreated: {},
	fieldUpdated: {},
}

var ErrParse = errors.New("parse error")

// ParseError is returned for queries that can't be executed at all. It matches ErrParse.
type ParseError struct {
	Report operationreport.Report
}

func (e *ParseError) Error() string {
	return e.Report.Error()
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Builder builds selection trees. It is safe for concurrent use.
type Builder struct {
	maxNestingLevel int
	documents       *lru.Cache
}

// NewBuilder creates a Builder for the given maximum reference nesting level.
// Parsed documents are cached, cacheSize <= 0 uses DefaultCacheSize.
func NewBuilder(maxNestingLevel, cacheSize int) (*Builder, error) {
	if maxNestingLevel < 1 {
		return nil, fmt.Errorf("max nesting level must be at least 1, got %d", maxNestingLevel)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Builder{
		maxNestingLevel: maxNestingLevel,
		documents:       cache,
	}, nil
}

func (b *Builder) MaxNestingLevel() int {
	return b.maxNestingLevel
}

// Build parses query and binds every selected field to the schema of the request's domain.
func (b *Builder) Build(reqCtx identity.Context, query, operationName string, variables map[string]interface{}) (*Tree, error) {
	if reqCtx.Organization == nil || reqCtx.Domain == nil {
		return nil, errors.New("selection: request context has no organization or domain")
	}

	doc, err := b.parse(query)
	if err != nil {
		return nil, err
	}

	c := &buildContext{
		maxNestingLevel: b.maxNestingLevel,
		org:             reqCtx.Organization,
		domain:          reqCtx.Domain,
		doc:             doc,
	}

	op := doc.Operations.ForName(operationName)
	if op == nil {
		c.report.AddExternalError(operationreport.ErrOperationNotFound(operationName))
		return nil, &ParseError{Report: c.report}
	}
	if op.Operation != ast.Query {
		c.report.AddExternalError(operationreport.ErrOperationNotSupported(string(op.Operation), op.Position))
		return nil, &ParseError{Report: c.report}
	}

	c.variables = c.coerceVariables(op, variables)
	if c.report.HasErrors() {
		return nil, &ParseError{Report: c.report}
	}

	tree := &Tree{
		OperationName: op.Name,
		Roots:         c.rootFields(op.SelectionSet),
	}
	if c.report.HasErrors() {
		return nil, &ParseError{Report: c.report}
	}
	return tree, nil
}

func (b *Builder) parse(query string) (*ast.QueryDocument, error) {
	xxh := pool.Hash64.Get()
	_, _ = xxh.WriteString(query)
	key := xxh.Sum64()
	pool.Hash64.Put(xxh)

	if cached, ok := b.documents.Get(key); ok {
		return cached.(*ast.QueryDocument), nil
	}

	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: query})
	if err != nil {
		report := operationreport.Report{}
		var gqlErr *gqlerror.Error
		if errors.As(err, &gqlErr) {
			locations := make([]operationreport.Location, 0, len(gqlErr.Locations))
			for _, loc := range gqlErr.Locations {
				locations = append(locations, operationreport.Location{Line: loc.Line, Column: loc.Column})
			}
			report.AddExternalError(operationreport.ErrSyntax(gqlErr.Message, locations))
		} else {
			report.AddExternalError(operationreport.ErrSyntax(err.Error(), nil))
		}
		return nil, &ParseError{Report: report}
	}

	b.documents.Add(key, doc)
	return doc, nil
}

type buildContext struct {
	maxNestingLevel int
	org             *schema.Organization
	domain          *schema.Domain
	doc             *ast.QueryDocument
	variables       map[string]interface{}
	report          operationreport.Report
}

// coerceVariables applies variable defaults and checks that required variables are present.
func (c *buildContext) coerceVariables(op *ast.OperationDefinition, variables map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(variables)+len(op.VariableDefinitions))
	for name, value := range variables {
		out[name] = value
	}
	for _, def := range op.VariableDefinitions {
		if value, ok := out[def.Variable]; ok && value != nil {
			continue
		}
		if def.DefaultValue != nil {
			value, err := def.DefaultValue.Value(nil)
			if err != nil {
				c.report.AddExternalError(operationreport.ErrSyntax(
					fmt.Sprintf("Invalid default value of variable %q: %s.", "$"+def.Variable, err), operationreport.LocationFromPosition(def.Position)))
				continue
			}
			out[def.Variable] = value
			continue
		}
		if def.Type != nil && def.Type.NonNull {
			c.report.AddExternalError(operationreport.ErrSyntax(
				fmt.Sprintf("Variable %q of required type %q was not provided.", "$"+def.Variable, def.Type.String()),
				operationreport.LocationFromPosition(def.Position)))
		}
	}
	return out
}

func (c *buildContext) rootFields(set ast.SelectionSet) []*Node {
	var nodes []*Node
	for _, group := range c.collectFields(set) {
		field := group.fields[0]
		path := ast.Path{ast.PathName(group.key)}
		contentType, kind := c.domain.RootField(field.Name)

		var node *Node
		switch kind {
		case schema.RootFieldFind:
			node = c.findField(group, contentType, path)
		case schema.RootFieldGet:
			node = c.getField(group, contentType, path)
		default:
			c.report.AddExternalError(operationreport.ErrFieldUndefinedOnType(field.Name, queryTypeName, path, field.Position))
			continue
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (c *buildContext) findField(group fieldGroup, contentType *schema.ContentType, path ast.Path) *Node {
	field := group.fields[0]
	node := &Node{
		Name:        field.Name,
		Alias:       group.key,
		Kind:        KindFind,
		ContentType: contentType,
		Level:       1,
		Position:    field.Position,
	}
	args, ok := c.arguments(field, path, findArguments)
	if !ok {
		return nil
	}
	node.Arguments = args
	query, err := parseQuery(args)
	if err != nil {
		c.report.AddExternalError(operationreport.ErrArgumentInvalid(field.Name, err.argument, err.reason, path, field.Position))
		return nil
	}
	node.Query = query

	set := group.selectionSet()
	resultType := schema.GraphQLName(contentType.Identifier) + "ContentResult"
	if len(set) == 0 {
		c.report.AddExternalError(operationreport.ErrMissingSelectionSet(field.Name, resultType, path, field.Position))
		return nil
	}

	for _, child := range c.collectFields(set) {
		childField := child.fields[0]
		childPath := appendPath(path, child.key)
		switch childField.Name {
		case fieldResult:
			resultSet := child.selectionSet()
			itemType := schema.ContentTypeName(c.domain.Identifier, schema.ReferenceTarget{Domain: c.domain.Identifier, ContentType: contentType.Identifier}, 1)
			if len(resultSet) == 0 {
				c.report.AddExternalError(operationreport.ErrMissingSelectionSet(childField.Name, "["+itemType+"]", childPath, childField.Position))
				continue
			}
			result := &Node{
				Name:        childField.Name,
				Alias:       child.key,
				Kind:        KindResult,
				ContentType: contentType,
				Level:       1,
				Position:    childField.Position,
			}
			result.Children = c.itemFields(resultSet, c.domain.Identifier, contentType, 1, childPath)
			node.Children = append(node.Children, result)
		case fieldTotal, fieldPage:
			if !c.leaf(child, "Int", childPath) {
				continue
			}
			kind := KindTotal
			if childField.Name == fieldPage {
				kind = KindPage
			}
			node.Children = append(node.Children, &Node{
				Name:     childField.Name,
				Alias:    child.key,
				Kind:     kind,
				Position: childField.Position,
			})
		default:
			c.report.AddExternalError(operationreport.ErrFieldUndefinedOnType(childField.Name, resultType, childPath, childField.Position))
		}
	}
	return node
}

func (c *buildContext) getField(group fieldGroup, contentType *schema.ContentType, path ast.Path) *Node {
	field := group.fields[0]
	args, ok := c.arguments(field, path, getArguments)
	if !ok {
		return nil
	}
	id, ok := idArgument(args["id"])
	if !ok {
		c.report.AddExternalError(operationreport.ErrArgumentInvalid(field.Name, "id", "a non-null ID is required", path, field.Position))
		return nil
	}

	set := group.selectionSet()
	itemType := schema.ContentTypeName(c.domain.Identifier, schema.ReferenceTarget{Domain: c.domain.Identifier, ContentType: contentType.Identifier}, 1)
	if len(set) == 0 {
		c.report.AddExternalError(operationreport.ErrMissingSelectionSet(field.Name, itemType, path, field.Position))
		return nil
	}
	return &Node{
		Name:        field.Name,
		Alias:       group.key,
		Kind:        KindGet,
		ContentType: contentType,
		Level:       1,
		Arguments:   args,
		ID:          id,
		Children:    c.itemFields(set, c.domain.Identifier, contentType, 1, path),
		Position:    field.Position,
	}
}

// itemFields binds a selection set to the fields of contentType for items on level.
// Beyond the maximum nesting level the set is also allowed to select message.
func (c *buildContext) itemFields(set ast.SelectionSet, domain string, contentType *schema.ContentType, level int, path ast.Path) []*Node {
	typeName := schema.ContentTypeName(c.domain.Identifier, schema.ReferenceTarget{Domain: domain, ContentType: contentType.Identifier}, level)
	if level > c.maxNestingLevel {
		typeName = schema.MaximumNestingLevelTypeName
	}

	var nodes []*Node
	for _, group := range c.collectFields(set) {
		field := group.fields[0]
		fieldPath := appendPath(path, group.key)
		if len(field.Arguments) > 0 {
			c.report.AddExternalError(operationreport.ErrArgumentUndefined(field.Name, field.Arguments[0].Name, fieldPath, field.Arguments[0].Position))
			continue
		}

		if _, ok := builtinFields[field.Name]; ok {
			if c.leaf(group, "String", fieldPath) {
				nodes = append(nodes, &Node{Name: field.Name, Alias: group.key, Kind: KindScalar, Level: level, Position: field.Position})
			}
			continue
		}

		def, ok := contentType.Field(field.Name)
		if !ok {
			if field.Name == fieldMessage && level > c.maxNestingLevel {
				if c.leaf(group, "String", fieldPath) {
					nodes = append(nodes, &Node{Name: field.Name, Alias: group.key, Kind: KindMessage, Level: level, Position: field.Position})
				}
				continue
			}
			c.report.AddExternalError(operationreport.ErrFieldUndefinedOnType(field.Name, typeName, fieldPath, field.Position))
			continue
		}

		target, isReference := def.ReferenceTarget()
		if !isReference {
			if c.leaf(group, def.Type.GraphQLType(), fieldPath) {
				nodes = append(nodes, &Node{Name: field.Name, Alias: group.key, Kind: KindScalar, Field: def, Level: level, Position: field.Position})
			}
			continue
		}

		targetType, err := c.org.ContentType(target.Domain, target.ContentType)
		if err != nil {
			c.report.AddInternalError(fmt.Errorf("reference field %s.%s: %w", contentType.Identifier, def.Identifier, err))
			c.report.AddExternalError(operationreport.ErrFieldUndefinedOnType(field.Name, typeName, fieldPath, field.Position))
			continue
		}
		childSet := group.selectionSet()
		if len(childSet) == 0 {
			childType := schema.MaximumNestingLevelTypeName
			if level+1 <= c.maxNestingLevel {
				childType = schema.ContentTypeName(c.domain.Identifier, target, level+1)
			}
			c.report.AddExternalError(operationreport.ErrMissingSelectionSet(field.Name, childType, fieldPath, field.Position))
			continue
		}
		nodes = append(nodes, &Node{
			Name:        field.Name,
			Alias:       group.key,
			Kind:        KindReference,
			Field:       def,
			ContentType: targetType,
			Level:       level + 1,
			Children:    c.itemFields(childSet, target.Domain, targetType, level+1, fieldPath),
			Position:    field.Position,
		})
	}
	return nodes
}

// leaf reports a selection set on a scalar field.
func (c *buildContext) leaf(group fieldGroup, typeName string, path ast.Path) bool {
	if len(group.selectionSet()) == 0 {
		return true
	}
	field := group.fields[0]
	c.report.AddExternalError(operationreport.ErrUnexpectedSelectionSet(field.Name, typeName, path, field.Position))
	return false
}

func appendPath(path ast.Path, key string) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, ast.PathName(key))
}
