package content_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"

	"github.com/unitecms/contentgraph/pkg/content"
)

func items(data ...string) []*content.Item {
	out := make([]*content.Item, 0, len(data))
	for i := range data {
		out = append(out, &content.Item{ID: string(rune('a' + i)), ContentType: "news", Data: json.RawMessage(data[i])})
	}
	return out
}

func ids(page content.Page) []string {
	out := []string{}
	for _, item := range page.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestQuery_Apply(t *testing.T) {
	all := items(
		`{"title":"Spring opening","rating":4}`,
		`{"title":"Summer menu","rating":10}`,
		`{"title":"Autumn","rating":null}`,
		`{"title":"Winter gala","rating":2}`,
	)

	run := func(query content.Query, expectIDs []string) func(t *testing.T) {
		return func(t *testing.T) {
			if diff := deep.Equal(ids(query.Apply(all)), expectIDs); diff != nil {
				t.Error(diff)
			}
		}
	}

	filter := func(field, operator, value string) *content.Filter {
		return &content.Filter{Field: field, Operator: operator, Value: value}
	}

	t.Run("store order", run(content.Query{}, []string{"a", "b", "c", "d"}))
	t.Run("numbers compare by value", run(content.Query{Filter: filter("rating", ">", "3")}, []string{"a", "b"}))
	t.Run("equal", run(content.Query{Filter: filter("rating", "=", "4")}, []string{"a"}))
	t.Run("not equal", run(content.Query{Filter: filter("rating", "<>", "4")}, []string{"b", "c", "d"}))
	t.Run("like", run(content.Query{Filter: filter("title", "like", "s%")}, []string{"a", "b"}))
	t.Run("is null", run(content.Query{Filter: filter("rating", "IS NULL", "")}, []string{"c"}))
	t.Run("is not null", run(content.Query{Filter: filter("rating", "IS NOT NULL", "")}, []string{"a", "b", "d"}))
	t.Run("and", run(content.Query{Filter: &content.Filter{AND: []content.Filter{
		*filter("rating", ">=", "2"),
		*filter("rating", "<=", "4"),
	}}}, []string{"a", "d"}))
	t.Run("or", run(content.Query{Filter: &content.Filter{OR: []content.Filter{
		*filter("id", "=", "a"),
		*filter("title", "LIKE", "%gala"),
	}}}, []string{"a", "d"}))
	t.Run("sort ascending", run(content.Query{Sort: []content.Sort{{Field: "title"}}}, []string{"c", "a", "b", "d"}))
	t.Run("sort descending", run(content.Query{Sort: []content.Sort{{Field: "rating", Order: content.SortDesc}}}, []string{"b", "a", "d", "c"}))
	t.Run("limit", run(content.Query{Limit: 3}, []string{"a", "b", "c"}))
	t.Run("second page", run(content.Query{Limit: 3, Page: 2}, []string{"d"}))
	t.Run("page out of range", run(content.Query{Limit: 3, Page: 3}, []string{}))
	t.Run("last possible page", run(content.Query{Page: math.MaxInt64}, []string{}))
	t.Run("page offset overflows", run(content.Query{Limit: 2, Page: math.MaxInt64/2 + 2}, []string{}))

	t.Run("total counts every match", func(t *testing.T) {
		page := content.Query{Limit: 1, Filter: filter("rating", ">", "1")}.Apply(all)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Items, 1)
	})

	t.Run("limit is capped", func(t *testing.T) {
		many := make([]*content.Item, content.MaxLimit+5)
		for i := range many {
			many[i] = &content.Item{Data: json.RawMessage(`{}`)}
		}
		page := content.Query{Limit: 1000}.Apply(many)
		assert.Len(t, page.Items, content.MaxLimit)
		assert.Len(t, content.Query{}.Apply(many).Items, content.DefaultLimit)
	})
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, (&content.Filter{Field: "title", Operator: "like"}).Validate())
	assert.Error(t, (&content.Filter{Operator: "="}).Validate())
	assert.Error(t, (&content.Filter{Field: "title", Operator: "~"}).Validate())
	assert.Error(t, (&content.Filter{AND: []content.Filter{{Field: "title", Operator: "="}, {Field: "title"}}}).Validate())
}
