package graphql

import (
	"errors"
	"fmt"
	"io"

	"github.com/unitecms/contentgraph/pkg/operationreport"
)

var ErrAccessDenied = errors.New("access denied")

type Errors interface {
	error
	WriteResponse(writer io.Writer) error
}

// RequestErrors are errors that prevent a query from being executed. They are answered
// with an envelope that has no data.
type RequestErrors []operationreport.ExternalError

func RequestErrorsFromReport(report operationreport.Report) RequestErrors {
	return RequestErrors(report.ExternalErrors)
}

func (r RequestErrors) Error() string {
	if len(r) == 1 {
		return r[0].Message
	}
	return fmt.Sprintf("request contains %d error(s)", len(r))
}

func (r RequestErrors) WriteResponse(writer io.Writer) error {
	return WriteErrors(writer, r)
}
