package graphql

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmptyRequest     = errors.New("the provided request is empty")
	ErrInvalidVariables = errors.New("variables must be a JSON object")
)

type Request struct {
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	Query         string          `json:"query"`
}

func UnmarshalRequest(reader io.Reader, request *Request) error {
	requestBytes, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(requestBytes)) == 0 {
		return ErrEmptyRequest
	}

	return json.Unmarshal(requestBytes, request)
}

// VariablesMap decodes the variables. Numbers are kept as json.Number.
func (r *Request) VariablesMap() (map[string]interface{}, error) {
	raw := bytes.TrimSpace(r.Variables)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var variables map[string]interface{}
	if err := decoder.Decode(&variables); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVariables, err)
	}
	return variables, nil
}
