package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

var operators = map[string]struct{}{
	"=":           {},
	"<>":          {},
	"<":           {},
	"<=":          {},
	">":           {},
	">=":          {},
	"LIKE":        {},
	"IS NULL":     {},
	"IS NOT NULL": {},
}

// Query narrows down, orders and pages a Find.
type Query struct {
	Filter *Filter
	Sort   []Sort
	Limit  int
	// Page starts at 1.
	Page int
}

type Sort struct {
	Field string
	Order string
}

// Filter is either a group (AND/OR) or a single comparison of Field against Value.
type Filter struct {
	AND      []Filter
	OR       []Filter
	Field    string
	Operator string
	Value    string
}

func (f *Filter) Validate() error {
	if len(f.AND) > 0 || len(f.OR) > 0 {
		for i := range f.AND {
			if err := f.AND[i].Validate(); err != nil {
				return err
			}
		}
		for i := range f.OR {
			if err := f.OR[i].Validate(); err != nil {
				return err
			}
		}
		return nil
	}
	if f.Field == "" {
		return fmt.Errorf("filter: field is required")
	}
	if _, ok := operators[strings.ToUpper(f.Operator)]; !ok {
		return fmt.Errorf("filter: unsupported operator %q", f.Operator)
	}
	return nil
}

// Match reports whether item satisfies the filter.
func (f *Filter) Match(item *Item) bool {
	if len(f.AND) > 0 {
		for i := range f.AND {
			if !f.AND[i].Match(item) {
				return false
			}
		}
		return true
	}
	if len(f.OR) > 0 {
		for i := range f.OR {
			if f.OR[i].Match(item) {
				return true
			}
		}
		return false
	}

	value := fieldValue(item, f.Field)
	operand := operandFor(value, f.Value)

	switch strings.ToUpper(f.Operator) {
	case "IS NULL":
		return !value.Exists() || value.Type == gjson.Null
	case "IS NOT NULL":
		return value.Exists() && value.Type != gjson.Null
	case "=":
		return value.Exists() && !value.Less(operand, true) && !operand.Less(value, true)
	case "<>":
		return !value.Exists() || value.Less(operand, true) || operand.Less(value, true)
	case "<":
		return value.Exists() && value.Less(operand, true)
	case "<=":
		return value.Exists() && !operand.Less(value, true)
	case ">":
		return value.Exists() && operand.Less(value, true)
	case ">=":
		return value.Exists() && !value.Less(operand, true)
	case "LIKE":
		return value.Exists() && likePattern(f.Value).MatchString(value.String())
	}
	return false
}

// operandFor reads literal as the JSON type of value when possible so numbers and
// booleans compare by value instead of lexically.
func operandFor(value gjson.Result, literal string) gjson.Result {
	switch value.Type {
	case gjson.Number, gjson.True, gjson.False:
		parsed := gjson.Parse(literal)
		if parsed.Type == gjson.Number || parsed.Type == gjson.True || parsed.Type == gjson.False {
			return parsed
		}
	}
	return gjson.Result{Type: gjson.String, Str: literal}
}

func likePattern(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "%")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.MustCompile("(?is)^" + strings.Join(parts, ".*") + "$")
}

// fieldValue resolves the built-in item fields before looking into the data payload.
func fieldValue(item *Item, field string) gjson.Result {
	switch field {
	case "id":
		return gjson.Result{Type: gjson.String, Str: item.ID}
	case "type":
		return gjson.Result{Type: gjson.String, Str: item.ContentType}
	case "created":
		return gjson.Result{Type: gjson.String, Str: item.Created.UTC().Format(TimeFormat)}
	case "updated":
		return gjson.Result{Type: gjson.String, Str: item.Updated.UTC().Format(TimeFormat)}
	}
	return item.Value(field)
}

// Apply filters, sorts and pages items. It does not modify items.
func (q Query) Apply(items []*Item) Page {
	matched := make([]*Item, 0, len(items))
	for _, item := range items {
		if q.Filter == nil || q.Filter.Match(item) {
			matched = append(matched, item)
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range q.Sort {
				a, b := fieldValue(matched[i], s.Field), fieldValue(matched[j], s.Field)
				if strings.EqualFold(s.Order, SortDesc) {
					a, b = b, a
				}
				if a.Less(b, true) {
					return true
				}
				if b.Less(a, true) {
					return false
				}
			}
			return false
		})
	}

	limit, page := q.Limit, q.Page
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}

	out := Page{Total: len(matched), Page: page}
	if page-1 >= (len(matched)+limit-1)/limit {
		return out
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out.Items = matched[start:end]
	return out
}
