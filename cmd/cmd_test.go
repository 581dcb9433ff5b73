package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	marketingDocument = "../pkg/testing/cmstesting/testdata/marketing.json"
	fixturesDocument  = "../pkg/testing/cmstesting/testdata/fixtures.json"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestQueryCmd(t *testing.T) {
	out := run(t, "query",
		"--organization", "luxury-hotel",
		"--domains", marketingDocument,
		"--fixtures", fixturesDocument,
		"--query", `{ findNews { result { category { news { category { news { category { message } } } } } } } }`,
	)

	assert.Equal(t,
		"Maximum nesting level of 5 reached.",
		gjson.Get(out, "data.findNews.result.0.category.news.category.news.category.message").String(),
	)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestSchemaCmd(t *testing.T) {
	out := run(t, "schema", marketingDocument)

	assert.Contains(t, out, "type Query {")
	assert.Contains(t, out, "type MaximumNestingLevel {")
	_, err := gqlparser.LoadSchema(&ast.Source{Name: "marketing.graphql", Input: out})
	assert.NoError(t, err)
}

func TestQueryRequest(t *testing.T) {
	defer func() {
		queryText, queryFile, queryVariables, queryOperation = "", "", "", ""
	}()

	queryText, queryFile = "", ""
	_, err := queryRequest(strings.NewReader(""))
	assert.Error(t, err)

	queryText, queryFile = "{ findNews { total } }", "query.graphql"
	_, err = queryRequest(strings.NewReader(""))
	assert.Error(t, err)

	queryText, queryFile, queryVariables, queryOperation = "", "-", `{"limit":1}`, "News"
	request, err := queryRequest(strings.NewReader("query News { findNews { total } }"))
	require.NoError(t, err)
	assert.Equal(t, "query News { findNews { total } }", request.Query)
	assert.Equal(t, "News", request.OperationName)
	assert.JSONEq(t, `{"limit":1}`, string(request.Variables))
}
