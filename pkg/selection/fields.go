package selection

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/unitecms/contentgraph/pkg/operationreport"
)

// fieldGroup holds all fields of a selection set that share a response key.
type fieldGroup struct {
	key    string
	fields []*ast.Field
}

// selectionSet concatenates the selection sets of all fields in the group.
func (g fieldGroup) selectionSet() ast.SelectionSet {
	if len(g.fields) == 1 {
		return g.fields[0].SelectionSet
	}
	var set ast.SelectionSet
	for _, field := range g.fields {
		set = append(set, field.SelectionSet...)
	}
	return set
}

// collectFields flattens fragments and groups fields by response key in order of first appearance.
func (c *buildContext) collectFields(set ast.SelectionSet) []fieldGroup {
	var groups []fieldGroup
	index := map[string]int{}
	c.collect(set, &groups, index, map[string]struct{}{})
	return groups
}

func (c *buildContext) collect(set ast.SelectionSet, groups *[]fieldGroup, index map[string]int, visiting map[string]struct{}) {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *ast.Field:
			if !c.included(sel.Directives) {
				continue
			}
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			if i, ok := index[key]; ok {
				(*groups)[i].fields = append((*groups)[i].fields, sel)
				continue
			}
			index[key] = len(*groups)
			*groups = append(*groups, fieldGroup{key: key, fields: []*ast.Field{sel}})
		case *ast.InlineFragment:
			if !c.included(sel.Directives) {
				continue
			}
			c.collect(sel.SelectionSet, groups, index, visiting)
		case *ast.FragmentSpread:
			if !c.included(sel.Directives) {
				continue
			}
			fragment := c.doc.Fragments.ForName(sel.Name)
			if fragment == nil {
				c.report.AddExternalError(operationreport.ErrFragmentUndefined(sel.Name, sel.Position))
				continue
			}
			if _, ok := visiting[sel.Name]; ok {
				c.report.AddExternalError(operationreport.ErrFragmentCycle(sel.Name, sel.Position))
				continue
			}
			visiting[sel.Name] = struct{}{}
			c.collect(fragment.SelectionSet, groups, index, visiting)
			delete(visiting, sel.Name)
		}
	}
}

// included evaluates @skip and @include.
func (c *buildContext) included(directives ast.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil && c.directiveCondition(skip) {
		return false
	}
	if include := directives.ForName("include"); include != nil && !c.directiveCondition(include) {
		return false
	}
	return true
}

func (c *buildContext) directiveCondition(directive *ast.Directive) bool {
	arg := directive.Arguments.ForName("if")
	if arg == nil || arg.Value == nil {
		c.report.AddExternalError(operationreport.ErrSyntax(
			"Directive \"@"+directive.Name+"\" argument \"if\" of type \"Boolean!\" is required.",
			operationreport.LocationFromPosition(directive.Position)))
		return false
	}
	value, err := arg.Value.Value(c.variables)
	if err != nil {
		c.report.AddExternalError(operationreport.ErrSyntax(err.Error(), operationreport.LocationFromPosition(arg.Position)))
		return false
	}
	b, ok := value.(bool)
	if !ok {
		c.report.AddExternalError(operationreport.ErrSyntax(
			"Directive \"@"+directive.Name+"\" argument \"if\" must be a Boolean.",
			operationreport.LocationFromPosition(arg.Position)))
		return false
	}
	return b
}
