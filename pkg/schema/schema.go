// Package schema holds the in-memory content schema of organizations, domains, content types and fields.
//
// The model is read-only while queries resolve. It is built once by a provisioning
// collaborator (see pkg/domaindef) and then shared between concurrent requests.
package schema

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOrganization = errors.New("unknown organization")
	ErrUnknownDomain       = errors.New("unknown domain")
	ErrUnknownContentType  = errors.New("unknown content type")
	ErrUnknownField        = errors.New("unknown field")
)

// UnknownFieldError is returned when a (domain, content type, field) triple can't be resolved.
// It matches ErrUnknownField, and ErrUnknownDomain or ErrUnknownContentType when the lookup
// failed earlier than the field itself.
type UnknownFieldError struct {
	Domain      string
	ContentType string
	Field       string
	cause       error
}

func (e *UnknownFieldError) Error() string {
	switch e.cause {
	case ErrUnknownDomain:
		return fmt.Sprintf("unknown domain %q", e.Domain)
	case ErrUnknownContentType:
		return fmt.Sprintf("unknown content type %q in domain %q", e.ContentType, e.Domain)
	}
	return fmt.Sprintf("unknown field %q on content type %q in domain %q", e.Field, e.ContentType, e.Domain)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField || target == e.cause
}

type Organization struct {
	Identifier string
	Title      string
	Domains    []*Domain
}

func (o *Organization) Domain(identifier string) (*Domain, error) {
	for i := range o.Domains {
		if o.Domains[i].Identifier == identifier {
			return o.Domains[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in organization %q", ErrUnknownDomain, identifier, o.Identifier)
}

// ContentType returns the content type of a domain within the organization.
func (o *Organization) ContentType(domain, contentType string) (*ContentType, error) {
	d, err := o.Domain(domain)
	if err != nil {
		return nil, err
	}
	return d.ContentType(contentType)
}

// Field resolves the definition of field on contentType in domain.
func (o *Organization) Field(domain, contentType, field string) (*FieldDefinition, error) {
	d, err := o.Domain(domain)
	if err != nil {
		return nil, &UnknownFieldError{Domain: domain, ContentType: contentType, Field: field, cause: ErrUnknownDomain}
	}
	ct, err := d.ContentType(contentType)
	if err != nil {
		return nil, &UnknownFieldError{Domain: domain, ContentType: contentType, Field: field, cause: ErrUnknownContentType}
	}
	def, ok := ct.Field(field)
	if !ok {
		return nil, &UnknownFieldError{Domain: domain, ContentType: contentType, Field: field}
	}
	return def, nil
}

type Domain struct {
	Identifier   string
	Title        string
	Organization string
	ContentTypes []*ContentType
	SettingTypes []*SettingType
	MemberTypes  []*MemberType
}

func (d *Domain) ContentType(identifier string) (*ContentType, error) {
	for i := range d.ContentTypes {
		if d.ContentTypes[i].Identifier == identifier {
			return d.ContentTypes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in domain %q", ErrUnknownContentType, identifier, d.Identifier)
}

func (d *Domain) MemberType(identifier string) (*MemberType, bool) {
	for i := range d.MemberTypes {
		if d.MemberTypes[i].Identifier == identifier {
			return d.MemberTypes[i], true
		}
	}
	return nil, false
}

type ContentType struct {
	Identifier string
	Title      string
	Fields     []*FieldDefinition
	Views      []*View
	Locales    []string
}

func (c *ContentType) Field(identifier string) (*FieldDefinition, bool) {
	for i := range c.Fields {
		if c.Fields[i].Identifier == identifier {
			return c.Fields[i], true
		}
	}
	return nil, false
}

type SettingType struct {
	Identifier string
	Title      string
	Fields     []*FieldDefinition
	Locales    []string
}

type View struct {
	Identifier string
	Title      string
	Type       string
	Settings   map[string]interface{}
}

// MemberType is a role definition of a domain, e.g. "editor" or "viewer".
type MemberType struct {
	Identifier string
	Title      string
}

// ReferenceTarget names the content type a reference field points to.
type ReferenceTarget struct {
	Domain      string
	ContentType string
}

type FieldDefinition struct {
	Identifier string
	Title      string
	Type       FieldType
	Settings   map[string]interface{}
	// Target is set for reference fields only.
	Target *ReferenceTarget
}

func (f *FieldDefinition) IsReference() bool {
	return f.Type == FieldTypeReference
}

func (f *FieldDefinition) ReferenceTarget() (ReferenceTarget, bool) {
	if !f.IsReference() || f.Target == nil {
		return ReferenceTarget{}, false
	}
	return *f.Target, true
}
