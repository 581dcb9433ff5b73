package selection

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/operationreport"
)

var (
	findArguments = map[string]struct{}{"limit": {}, "page": {}, "sort": {}, "filter": {}}
	getArguments  = map[string]struct{}{"id": {}}
)

type argumentError struct {
	argument string
	reason   string
}

// arguments evaluates the arguments of field against the operation variables.
func (c *buildContext) arguments(field *ast.Field, path ast.Path, allowed map[string]struct{}) (map[string]interface{}, bool) {
	args := make(map[string]interface{}, len(field.Arguments))
	ok := true
	for _, arg := range field.Arguments {
		if _, known := allowed[arg.Name]; !known {
			c.report.AddExternalError(operationreport.ErrArgumentUndefined(field.Name, arg.Name, path, arg.Position))
			ok = false
			continue
		}
		value, err := arg.Value.Value(c.variables)
		if err != nil {
			c.report.AddExternalError(operationreport.ErrArgumentInvalid(field.Name, arg.Name, err.Error(), path, arg.Position))
			ok = false
			continue
		}
		args[arg.Name] = value
	}
	return args, ok
}

func parseQuery(args map[string]interface{}) (content.Query, *argumentError) {
	var query content.Query
	var ok bool

	if query.Limit, ok = intArgument(args["limit"]); !ok {
		return query, &argumentError{argument: "limit", reason: "expected an Int"}
	}
	if query.Limit < 0 {
		return query, &argumentError{argument: "limit", reason: "must not be negative"}
	}
	if query.Page, ok = intArgument(args["page"]); !ok {
		return query, &argumentError{argument: "page", reason: "expected an Int"}
	}
	if query.Page < 0 {
		return query, &argumentError{argument: "page", reason: "must not be negative"}
	}

	if raw, present := args["sort"]; present && raw != nil {
		sorts, err := parseSort(raw)
		if err != nil {
			return query, &argumentError{argument: "sort", reason: err.Error()}
		}
		query.Sort = sorts
	}

	if raw, present := args["filter"]; present && raw != nil {
		filter, err := parseFilter(raw)
		if err != nil {
			return query, &argumentError{argument: "filter", reason: err.Error()}
		}
		if err := filter.Validate(); err != nil {
			return query, &argumentError{argument: "filter", reason: err.Error()}
		}
		query.Filter = &filter
	}
	return query, nil
}

func parseSort(raw interface{}) ([]content.Sort, error) {
	list, ok := raw.([]interface{})
	if !ok {
		// input coercion allows a single value where a list is expected
		list = []interface{}{raw}
	}
	sorts := make([]content.Sort, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected SortInput objects")
		}
		field, _ := obj["field"].(string)
		if field == "" {
			return nil, fmt.Errorf("sort field is required")
		}
		order := content.SortAsc
		if o, ok := obj["order"].(string); ok && o != "" {
			order = strings.ToUpper(o)
		}
		if order != content.SortAsc && order != content.SortDesc {
			return nil, fmt.Errorf("sort order must be ASC or DESC")
		}
		sorts = append(sorts, content.Sort{Field: field, Order: order})
	}
	return sorts, nil
}

func parseFilter(raw interface{}) (content.Filter, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return content.Filter{}, fmt.Errorf("expected a FilterInput object")
	}
	var filter content.Filter
	for key, value := range obj {
		switch key {
		case "AND", "OR":
			list, ok := value.([]interface{})
			if !ok {
				list = []interface{}{value}
			}
			children := make([]content.Filter, 0, len(list))
			for _, item := range list {
				child, err := parseFilter(item)
				if err != nil {
					return content.Filter{}, err
				}
				children = append(children, child)
			}
			if key == "AND" {
				filter.AND = children
			} else {
				filter.OR = children
			}
		case "field":
			filter.Field, _ = value.(string)
		case "operator":
			filter.Operator, _ = value.(string)
		case "value":
			filter.Value = stringArgument(value)
		default:
			return content.Filter{}, fmt.Errorf("unknown filter key %q", key)
		}
	}
	return filter, nil
}

// intArgument accepts the integer representations of literals and decoded JSON variables.
// Values outside the 32 bit range of the GraphQL Int type are rejected.
func intArgument(value interface{}) (int, bool) {
	var i int64
	switch v := value.(type) {
	case nil:
		return 0, true
	case int:
		i = int64(v)
	case int64:
		i = v
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		i = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		i = n
	default:
		return 0, false
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int(i), true
}

func idArgument(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

func stringArgument(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(value)
}
