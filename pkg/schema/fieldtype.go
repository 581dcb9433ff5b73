package schema

import "fmt"

// FieldType is the closed set of field types a content type can declare.
type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeText
	FieldTypeTextarea
	FieldTypeEmail
	FieldTypeLink
	FieldTypeNumber
	FieldTypeInteger
	FieldTypeCheckbox
	FieldTypeDate
	FieldTypeChoice
	FieldTypeReference
)

var fieldTypeNames = map[FieldType]string{
	FieldTypeText:      "text",
	FieldTypeTextarea:  "textarea",
	FieldTypeEmail:     "email",
	FieldTypeLink:      "link",
	FieldTypeNumber:    "number",
	FieldTypeInteger:   "integer",
	FieldTypeCheckbox:  "checkbox",
	FieldTypeDate:      "date",
	FieldTypeChoice:    "choice",
	FieldTypeReference: "reference",
}

func ParseFieldType(name string) (FieldType, error) {
	for fieldType, fieldTypeName := range fieldTypeNames {
		if fieldTypeName == name {
			return fieldType, nil
		}
	}
	return FieldTypeUnknown, fmt.Errorf("unknown field type %q", name)
}

func (f FieldType) String() string {
	if name, ok := fieldTypeNames[f]; ok {
		return name
	}
	return "unknown"
}

// GraphQLType is the named GraphQL output type of a scalar field type.
func (f FieldType) GraphQLType() string {
	switch f {
	case FieldTypeNumber:
		return "Float"
	case FieldTypeInteger:
		return "Int"
	case FieldTypeCheckbox:
		return "Boolean"
	default:
		return "String"
	}
}
