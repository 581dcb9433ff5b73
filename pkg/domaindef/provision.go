package domaindef

import (
	"github.com/pkg/errors"

	"github.com/unitecms/contentgraph/pkg/schema"
)

// Provision parses every domain document, binds the domains to a new organization and
// registers it. All reference targets must resolve within the organization.
func Provision(registry *schema.Registry, identifier, title string, documents ...[]byte) (*schema.Organization, error) {
	org := &schema.Organization{
		Identifier: identifier,
		Title:      title,
	}
	for i := range documents {
		domain, err := Parse(documents[i])
		if err != nil {
			return nil, errors.Wrapf(err, "domain document %d", i)
		}
		if _, err := org.Domain(domain.Identifier); err == nil {
			return nil, errors.Wrapf(ErrDuplicate, "domain %q", domain.Identifier)
		}
		domain.Organization = org.Identifier
		org.Domains = append(org.Domains, domain)
	}
	if err := checkReferences(org); err != nil {
		return nil, err
	}
	registry.Add(org)
	return org, nil
}

func checkReferences(org *schema.Organization) error {
	for _, domain := range org.Domains {
		for _, contentType := range domain.ContentTypes {
			if err := checkFields(org, domain.Identifier+"."+contentType.Identifier, contentType.Fields); err != nil {
				return err
			}
		}
		for _, settingType := range domain.SettingTypes {
			if err := checkFields(org, domain.Identifier+"."+settingType.Identifier, settingType.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFields(org *schema.Organization, owner string, fields []*schema.FieldDefinition) error {
	for _, field := range fields {
		target, ok := field.ReferenceTarget()
		if !ok {
			continue
		}
		if _, err := org.ContentType(target.Domain, target.ContentType); err != nil {
			return errors.Wrapf(ErrInvalidReference, "%s.%s: %v", owner, field.Identifier, err)
		}
	}
	return nil
}
