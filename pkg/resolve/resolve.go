//go:generate mockgen -destination=resolve_mock_test.go -package=resolve github.com/unitecms/contentgraph/pkg/content Reader

// Package resolve evaluates selection trees against a content store.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/middleware/nesting_limiter"
	"github.com/unitecms/contentgraph/pkg/operationreport"
	"github.com/unitecms/contentgraph/pkg/selection"
)

const (
	fieldID      = "id"
	fieldType    = "type"
	fieldCreated = "created"
	fieldUpdated = "updated"

	errLoadContent = "Could not load content."
)

// Context carries the request through a single resolution.
type Context struct {
	context.Context
	Request identity.Context
}

func NewContext(ctx context.Context, request identity.Context) *Context {
	return &Context{Context: ctx, Request: request}
}

// Result is the resolved tree plus everything that went wrong on the way.
// Failed fields are null in Data and have an entry in Report.
type Result struct {
	Data   *Object
	Report operationreport.Report
	// Sentinels counts the objects replaced by a Sentinel.
	Sentinels int
	// Loads counts the items read from the store.
	Loads int
}

// Resolver is stateless and safe for concurrent use.
type Resolver struct {
	store   content.Reader
	limiter *nesting_limiter.Limiter
}

func New(store content.Reader, limiter *nesting_limiter.Limiter) *Resolver {
	return &Resolver{
		store:   store,
		limiter: limiter,
	}
}

// Resolve evaluates tree. Root fields and list items keep their order. Store errors never
// abort the resolution, they turn the affected field into null.
func (r *Resolver) Resolve(ctx *Context, tree *selection.Tree) *Result {
	result := &Result{Data: &Object{}}
	for _, root := range tree.Roots {
		path := ast.Path{ast.PathName(root.ResponseKey())}
		switch root.Kind {
		case selection.KindFind:
			result.Data.add(root.ResponseKey(), r.find(ctx, root, path, result))
		case selection.KindGet:
			result.Data.add(root.ResponseKey(), r.get(ctx, root, path, result))
		default:
			result.Report.AddInternalError(fmt.Errorf("unexpected root field %s of kind %s", root.Name, root.Kind))
			result.Data.add(root.ResponseKey(), &Null{})
		}
	}
	return result
}

func (r *Resolver) find(ctx *Context, node *selection.Node, path ast.Path, result *Result) Value {
	page, err := r.store.Find(ctx, ctx.Request.Organization.Identifier, ctx.Request.Domain.Identifier, node.ContentType.Identifier, node.Query)
	if err != nil {
		r.loadError(err, path, result)
		return &Null{}
	}
	result.Loads += len(page.Items)

	out := &Object{}
	for _, child := range node.Children {
		switch child.Kind {
		case selection.KindResult:
			items := &Array{Items: make([]Value, 0, len(page.Items))}
			resultPath := appendPath(path, ast.PathName(child.ResponseKey()))
			for i, item := range page.Items {
				items.Items = append(items.Items, r.item(ctx, item, child.Children, appendPath(resultPath, ast.PathIndex(i)), result))
			}
			out.add(child.ResponseKey(), items)
		case selection.KindTotal:
			out.add(child.ResponseKey(), intScalar(page.Total))
		case selection.KindPage:
			out.add(child.ResponseKey(), intScalar(page.Page))
		default:
			out.add(child.ResponseKey(), &Null{})
		}
	}
	return out
}

func (r *Resolver) get(ctx *Context, node *selection.Node, path ast.Path, result *Result) Value {
	ref := content.Reference{
		Organization: ctx.Request.Organization.Identifier,
		Domain:       ctx.Request.Domain.Identifier,
		ContentType:  node.ContentType.Identifier,
		Content:      node.ID,
	}
	item, err := r.store.Get(ctx, ref)
	if err != nil {
		r.loadError(err, path, result)
		return &Null{}
	}
	result.Loads++
	return r.item(ctx, item, node.Children, path, result)
}

// item evaluates the selections of a single content item.
func (r *Resolver) item(ctx *Context, item *content.Item, nodes []*selection.Node, path ast.Path, result *Result) Value {
	out := &Object{Fields: make([]Field, 0, len(nodes))}
	for _, node := range nodes {
		key := node.ResponseKey()
		switch node.Kind {
		case selection.KindScalar:
			out.add(key, scalar(item, node))
		case selection.KindReference:
			out.add(key, r.reference(ctx, item, node, appendPath(path, ast.PathName(key)), result))
		default:
			out.add(key, &Null{})
		}
	}
	return out
}

// reference follows a reference field into the next level. Beyond the maximum nesting level
// the target is neither loaded nor evaluated.
func (r *Resolver) reference(ctx *Context, item *content.Item, node *selection.Node, path ast.Path, result *Result) Value {
	if r.limiter.Exceeds(node.Level) {
		result.Sentinels++
		return &Sentinel{Message: r.limiter.Message()}
	}

	ref, ok := item.Reference(node.Field.Identifier)
	if !ok {
		return &Null{}
	}
	ref.Organization = ctx.Request.Organization.Identifier
	target, ok := node.Field.ReferenceTarget()
	if !ok {
		result.Report.AddInternalError(fmt.Errorf("reference field %s has no target", node.Field.Identifier))
		result.Report.AddExternalError(operationreport.ErrContentNotFound(errLoadContent, path))
		return &Null{}
	}
	if ref.Domain == "" {
		ref.Domain = target.Domain
	}
	if ref.Domain != target.Domain || ref.ContentType != target.ContentType {
		result.Report.AddExternalError(operationreport.ErrReferenceMismatch(node.Field.Identifier, ref.ContentType, ref.Domain, target.ContentType, target.Domain, path))
		return &Null{}
	}

	referenced, err := r.store.Get(ctx, ref)
	if err != nil {
		r.loadError(err, path, result)
		return &Null{}
	}
	result.Loads++
	return r.item(ctx, referenced, node.Children, path, result)
}

func (r *Resolver) loadError(err error, path ast.Path, result *Result) {
	if errors.Is(err, content.ErrNotFound) {
		result.Report.AddExternalError(operationreport.ErrContentNotFound(err.Error(), path))
		return
	}
	result.Report.AddInternalError(err)
	result.Report.AddExternalError(operationreport.ErrContentNotFound(errLoadContent, path))
}

func scalar(item *content.Item, node *selection.Node) Value {
	if node.Field == nil {
		switch node.Name {
		case fieldID:
			return stringScalar(item.ID)
		case fieldType:
			return stringScalar(item.ContentType)
		case fieldCreated:
			return stringScalar(item.Created.UTC().Format(content.TimeFormat))
		case fieldUpdated:
			return stringScalar(item.Updated.UTC().Format(content.TimeFormat))
		}
		return &Null{}
	}
	value := item.Value(node.Field.Identifier)
	if !value.Exists() || value.Raw == "null" {
		return &Null{}
	}
	if value.IsObject() || value.IsArray() {
		// a scalar field can't expose structured data
		return &Null{}
	}
	return &Scalar{Raw: []byte(value.Raw)}
}

func appendPath(path ast.Path, element ast.PathElement) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, element)
}
