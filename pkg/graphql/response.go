package graphql

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/unitecms/contentgraph/pkg/operationreport"
	"github.com/unitecms/contentgraph/pkg/resolve"
)

var (
	lBrace       = []byte("{")
	rBrace       = []byte("}")
	lBrack       = []byte("[")
	rBrack       = []byte("]")
	comma        = []byte(",")
	colon        = []byte(":")
	null         = []byte("null")
	literalData  = []byte(`"data"`)
	literalError = []byte(`"errors"`)
	literalMsg   = []byte(`"message"`)
)

// WriteResponse writes the response envelope of a resolved query. The errors key is only
// present when fields failed to resolve.
func WriteResponse(w io.Writer, result *resolve.Result) error {
	buf := bufio.NewWriter(w)
	rw := &responseWriter{w: buf}

	rw.write(lBrace)
	rw.write(literalData)
	rw.write(colon)
	rw.value(result.Data)
	if len(result.Report.ExternalErrors) > 0 {
		rw.write(comma)
		rw.errors(result.Report.ExternalErrors)
	}
	rw.write(rBrace)

	if rw.err != nil {
		return rw.err
	}
	return buf.Flush()
}

// WriteErrors writes an envelope without data, used when a query can't be executed.
func WriteErrors(w io.Writer, errs []operationreport.ExternalError) error {
	buf := bufio.NewWriter(w)
	rw := &responseWriter{w: buf}

	rw.write(lBrace)
	rw.errors(errs)
	rw.write(rBrace)

	if rw.err != nil {
		return rw.err
	}
	return buf.Flush()
}

// responseWriter keeps the first write error and turns every later write into a no-op.
type responseWriter struct {
	w   io.Writer
	err error
}

func (r *responseWriter) write(p []byte) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.Write(p)
}

func (r *responseWriter) string(s string) {
	encoded, err := json.Marshal(s)
	if err != nil {
		r.err = err
		return
	}
	r.write(encoded)
}

func (r *responseWriter) value(value resolve.Value) {
	switch v := value.(type) {
	case *resolve.Object:
		if v == nil {
			r.write(null)
			return
		}
		r.write(lBrace)
		for i := range v.Fields {
			if i != 0 {
				r.write(comma)
			}
			r.string(v.Fields[i].Name)
			r.write(colon)
			r.value(v.Fields[i].Value)
		}
		r.write(rBrace)
	case *resolve.Array:
		r.write(lBrack)
		for i := range v.Items {
			if i != 0 {
				r.write(comma)
			}
			r.value(v.Items[i])
		}
		r.write(rBrack)
	case *resolve.Scalar:
		r.write(v.Raw)
	case *resolve.Sentinel:
		r.write(lBrace)
		r.write(literalMsg)
		r.write(colon)
		r.string(v.Message)
		r.write(rBrace)
	default:
		r.write(null)
	}
}

func (r *responseWriter) errors(errs []operationreport.ExternalError) {
	r.write(literalError)
	r.write(colon)
	r.write(lBrack)
	for i := range errs {
		if i != 0 {
			r.write(comma)
		}
		encoded, err := json.Marshal(errs[i])
		if err != nil {
			r.err = err
			return
		}
		r.write(encoded)
	}
	r.write(rBrack)
}
