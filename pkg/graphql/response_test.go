package graphql

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/operationreport"
	"github.com/unitecms/contentgraph/pkg/resolve"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteResponse(t *testing.T) {
	result := &resolve.Result{
		Data: &resolve.Object{Fields: []resolve.Field{
			{Name: "zeta", Value: &resolve.Scalar{Raw: []byte(`1.5`)}},
			{Name: "alpha", Value: &resolve.Array{Items: []resolve.Value{
				&resolve.Sentinel{Message: "Maximum nesting level of 2 reached."},
				&resolve.Null{},
				&resolve.Object{},
			}}},
			{Name: "quote", Value: &resolve.Scalar{Raw: []byte(`"say \"hi\""`)}},
		}},
	}
	result.Report.AddExternalError(operationreport.ErrContentNotFound("gone", ast.Path{ast.PathName("alpha"), ast.PathIndex(1)}))

	out := &bytes.Buffer{}
	require.NoError(t, WriteResponse(out, result))
	assert.Equal(t,
		`{"data":{"zeta":1.5,"alpha":[{"message":"Maximum nesting level of 2 reached."},null,{}],"quote":"say \"hi\""},"errors":[{"message":"gone","path":["alpha",1]}]}`,
		out.String(),
	)
}

func TestWriteErrors(t *testing.T) {
	out := &bytes.Buffer{}
	errs := RequestErrors{operationreport.ErrSyntax("Unexpected EOF", []operationreport.Location{{Line: 1, Column: 3}})}
	require.NoError(t, errs.WriteResponse(out))
	assert.Equal(t, `{"errors":[{"message":"Unexpected EOF","locations":[{"line":1,"column":3}]}]}`, out.String())
	assert.Equal(t, "Unexpected EOF", errs.Error())

	assert.Error(t, WriteErrors(failingWriter{}, errs))
}
