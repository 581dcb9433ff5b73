package operationreport

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// LocationFromPosition converts a parser position, nil positions yield no location.
func LocationFromPosition(pos *ast.Position) []Location {
	if pos == nil {
		return nil
	}
	return []Location{{Line: pos.Line, Column: pos.Column}}
}

// ExternalError is an error that is exposed to the client in the errors array of a response.
type ExternalError struct {
	Message   string     `json:"message"`
	Path      ast.Path   `json:"path,omitempty"`
	Locations []Location `json:"locations,omitempty"`
}

func (e ExternalError) Error() string {
	return e.Message
}

func ErrSyntax(message string, locations []Location) ExternalError {
	return ExternalError{
		Message:   message,
		Locations: locations,
	}
}

func ErrOperationNotFound(name string) ExternalError {
	if name == "" {
		return ExternalError{Message: "no query operation found in document"}
	}
	return ExternalError{Message: fmt.Sprintf("operation %q not found in document", name)}
}

func ErrOperationNotSupported(operation string, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("%s operations are not supported", operation),
		Locations: LocationFromPosition(pos),
	}
}

func ErrFieldUndefinedOnType(fieldName, typeName string, path ast.Path, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Cannot query field %q on type %q.", fieldName, typeName),
		Path:      path,
		Locations: LocationFromPosition(pos),
	}
}

func ErrFragmentUndefined(name string, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Unknown fragment %q.", name),
		Locations: LocationFromPosition(pos),
	}
}

func ErrFragmentCycle(name string, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Cannot spread fragment %q within itself.", name),
		Locations: LocationFromPosition(pos),
	}
}

func ErrMissingSelectionSet(fieldName, typeName string, path ast.Path, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Field %q of type %q must have a selection of subfields.", fieldName, typeName),
		Path:      path,
		Locations: LocationFromPosition(pos),
	}
}

func ErrUnexpectedSelectionSet(fieldName, typeName string, path ast.Path, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Field %q must not have a selection since type %q has no subfields.", fieldName, typeName),
		Path:      path,
		Locations: LocationFromPosition(pos),
	}
}

func ErrArgumentInvalid(fieldName, argName, reason string, path ast.Path, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Invalid argument %q on field %q: %s.", argName, fieldName, reason),
		Path:      path,
		Locations: LocationFromPosition(pos),
	}
}

func ErrArgumentUndefined(fieldName, argName string, path ast.Path, pos *ast.Position) ExternalError {
	return ExternalError{
		Message:   fmt.Sprintf("Unknown argument %q on field %q.", argName, fieldName),
		Path:      path,
		Locations: LocationFromPosition(pos),
	}
}

func ErrContentNotFound(message string, path ast.Path) ExternalError {
	return ExternalError{
		Message: message,
		Path:    path,
	}
}

func ErrReferenceMismatch(fieldName, contentType, domain, expectContentType, expectDomain string, path ast.Path) ExternalError {
	return ExternalError{
		Message: fmt.Sprintf("Reference %q points to content type %q in domain %q instead of %q in domain %q.",
			fieldName, contentType, domain, expectContentType, expectDomain),
		Path: path,
	}
}
