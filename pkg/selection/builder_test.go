package selection

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/operationreport"
	"github.com/unitecms/contentgraph/pkg/testing/cmstesting"
)

// dump renders a tree as one line per node: key kind level.
func dump(nodes []*Node, indent string, out *strings.Builder) {
	for _, node := range nodes {
		out.WriteString(indent)
		out.WriteString(node.ResponseKey())
		out.WriteString(" ")
		out.WriteString(node.Kind.String())
		out.WriteString(" ")
		out.WriteString(string(rune('0' + node.Level)))
		out.WriteString("\n")
		dump(node.Children, indent+"  ", out)
	}
}

func dumpTree(tree *Tree) string {
	out := &strings.Builder{}
	dump(tree.Roots, "", out)
	return out.String()
}

func newBuilder(t *testing.T, maxNestingLevel int) *Builder {
	t.Helper()
	b, err := NewBuilder(maxNestingLevel, 16)
	require.NoError(t, err)
	return b
}

func buildErrors(t *testing.T, err error) []operationreport.ExternalError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParse), "expected a parse error, got %v", err)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	return parseErr.Report.ExternalErrors
}

func TestNewBuilder(t *testing.T) {
	_, err := NewBuilder(0, 10)
	assert.Error(t, err)

	b, err := NewBuilder(3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, b.MaxNestingLevel())
}

func TestBuilder_Build(t *testing.T) {
	reqCtx := cmstesting.RequestContext(t)

	t.Run("reference fields increase the level", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `{
			findNews {
				total
				result {
					id
					title
					category { name news { title } }
				}
			}
		}`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, `findNews find 1
  total total 0
  result result 1
    id scalar 1
    title scalar 1
    category reference 2
      name scalar 2
      news reference 3
        title scalar 3
`, dumpTree(tree))

		category := tree.Roots[0].Children[1].Children[2]
		assert.Equal(t, "news_category", category.ContentType.Identifier)
		assert.Equal(t, "category", category.Field.Identifier)
		assert.True(t, category.IsReference())
	})

	t.Run("message is selectable beyond the maximum nesting level", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `{
			findNews { result { category { news { category { news { category { message } } } } } } }
		}`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, `findNews find 1
  result result 1
    category reference 2
      news reference 3
        category reference 4
          news reference 5
            category reference 6
              message message 6
`, dumpTree(tree))
	})

	t.Run("content fields stay selectable beyond the maximum nesting level", func(t *testing.T) {
		tree, err := newBuilder(t, 1).Build(reqCtx, `{
			getNews(id: "news-1") { category { name message } }
		}`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, `getNews get 1
  category reference 2
    name scalar 2
    message message 2
`, dumpTree(tree))
	})

	t.Run("message is unknown within the maximum nesting level", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findNews { result { category { message } } } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Cannot query field "message" on type "NewsCategoryContentLevel2".`, errs[0].Message)
		assert.Equal(t, ast.Path{ast.PathName("findNews"), ast.PathName("result"), ast.PathName("category"), ast.PathName("message")}, errs[0].Path)
		assert.Equal(t, []operationreport.Location{{Line: 1, Column: 34}}, errs[0].Locations)
	})

	t.Run("unknown fields are reported on the maximum nesting level type", func(t *testing.T) {
		_, err := newBuilder(t, 1).Build(reqCtx, `{ findNews { result { category { colour } } } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Cannot query field "colour" on type "MaximumNestingLevel".`, errs[0].Message)
	})

	t.Run("unknown root field", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findEvents { total } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Cannot query field "findEvents" on type "Query".`, errs[0].Message)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findNews { result { id }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.NotEmpty(t, errs[0].Locations)
	})

	t.Run("mutations are rejected", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `mutation { createNews { id } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "mutation operations are not supported", errs[0].Message)
	})

	t.Run("operation selection", func(t *testing.T) {
		query := `query A { findNews { total } } query B { getNews(id: "news-1") { id } }`
		tree, err := newBuilder(t, 5).Build(reqCtx, query, "B", nil)
		require.NoError(t, err)
		assert.Equal(t, "B", tree.OperationName)
		assert.Equal(t, KindGet, tree.Roots[0].Kind)

		_, err = newBuilder(t, 5).Build(reqCtx, query, "C", nil)
		errs := buildErrors(t, err)
		assert.Equal(t, `operation "C" not found in document`, errs[0].Message)
	})

	t.Run("fragments and aliases", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `
			query {
				latest: findNews(limit: 1) { result { ...newsFields } }
				findNews { result { ... on NewsContent { id } id title } }
			}
			fragment newsFields on NewsContent {
				headline: title
				category { name }
				category { news { id } }
			}`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, `latest find 1
  result result 1
    headline scalar 1
    category reference 2
      name scalar 2
      news reference 3
        id scalar 3
findNews find 1
  result result 1
    id scalar 1
    title scalar 1
`, dumpTree(tree))
		assert.Equal(t, "findNews", tree.Roots[0].Name)
		assert.Equal(t, "title", tree.Roots[0].Children[0].Children[0].Name)
	})

	t.Run("fragment cycles are rejected", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `
			{ findNews { result { ...a } } }
			fragment a on NewsContent { id ...b }
			fragment b on NewsContent { title ...a }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Cannot spread fragment "a" within itself.`, errs[0].Message)
	})

	t.Run("skip and include", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `
			query ($withTitle: Boolean = false) {
				getNews(id: "news-1") {
					id @skip(if: true)
					title @include(if: $withTitle)
					rating @include(if: true)
				}
			}`, "", map[string]interface{}{"withTitle": true})
		require.NoError(t, err)
		assert.Equal(t, `getNews get 1
  title scalar 1
  rating scalar 1
`, dumpTree(tree))
	})

	t.Run("missing required variable", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `query ($id: ID!) { getNews(id: $id) { id } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Variable "$id" of required type "ID!" was not provided.`, errs[0].Message)
	})

	t.Run("reference fields need a selection", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ getNews(id: "news-1") { category } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Field "category" of type "NewsCategoryContentLevel2" must have a selection of subfields.`, errs[0].Message)
	})

	t.Run("scalar fields must not have a selection", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ getNews(id: "news-1") { title { id } } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Field "title" must not have a selection since type "String" has no subfields.`, errs[0].Message)
	})

	t.Run("get requires an id", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ getNews { id } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Invalid argument "id" on field "getNews": a non-null ID is required.`, errs[0].Message)
	})

	t.Run("unknown arguments", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findNews(first: 3) { total } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Unknown argument "first" on field "findNews".`, errs[0].Message)
	})

	t.Run("find arguments", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `
			query ($filter: FilterInput, $limit: Int) {
				findNews(limit: $limit, page: 2, sort: [{field: "rating", order: "desc"}, {field: "title"}], filter: $filter) { total }
			}`, "", map[string]interface{}{
			"limit": float64(10),
			"filter": map[string]interface{}{
				"OR": []interface{}{
					map[string]interface{}{"field": "rating", "operator": ">", "value": float64(3)},
					map[string]interface{}{"field": "published", "operator": "=", "value": "true"},
				},
			},
		})
		require.NoError(t, err)

		want := content.Query{
			Limit: 10,
			Page:  2,
			Sort: []content.Sort{
				{Field: "rating", Order: content.SortDesc},
				{Field: "title", Order: content.SortAsc},
			},
			Filter: &content.Filter{
				OR: []content.Filter{
					{Field: "rating", Operator: ">", Value: "3"},
					{Field: "published", Operator: "=", Value: "true"},
				},
			},
		}
		if diff := cmp.Diff(want, tree.Roots[0].Query); diff != "" {
			t.Errorf("query mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("page beyond the Int range", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findNews(page: 4611686018427387904) { total result { id } } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Invalid argument "page" on field "findNews": expected an Int.`, errs[0].Message)

		_, err = newBuilder(t, 5).Build(reqCtx, `query ($page: Int) { findNews(page: $page) { total } }`, "",
			map[string]interface{}{"page": json.Number("9223372036854775807")})
		errs = buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, `Invalid argument "page" on field "findNews": expected an Int.`, errs[0].Message)
	})

	t.Run("largest page", func(t *testing.T) {
		tree, err := newBuilder(t, 5).Build(reqCtx, `{ findNews(page: 2147483647) { total } }`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt32, tree.Roots[0].Query.Page)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := newBuilder(t, 5).Build(reqCtx, `{ findNews(filter: {field: "title", operator: "~"}) { total } }`, "", nil)
		errs := buildErrors(t, err)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `Invalid argument "filter" on field "findNews"`)
	})
}

func TestBuilder_DocumentCache(t *testing.T) {
	reqCtx := cmstesting.RequestContext(t)
	b := newBuilder(t, 5)
	query := `{ findNews { result { id } } }`

	first, err := b.Build(reqCtx, query, "", nil)
	require.NoError(t, err)
	second, err := b.Build(reqCtx, query, "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, b.documents.Len())
	assert.Equal(t, dumpTree(first), dumpTree(second))
	assert.NotSame(t, first, second)
}
