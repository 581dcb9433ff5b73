// Package domaindef parses declarative domain documents into the schema model.
package domaindef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/unitecms/contentgraph/pkg/schema"
)

//go:embed domain.schema.json
var domainSchemaJSON string

var domainSchema = jsonschema.MustCompileString("domain.schema.json", domainSchemaJSON)

var (
	ErrInvalidReference = errors.New("invalid reference field")
	ErrReservedField    = errors.New("reserved field identifier")
	ErrDuplicate        = errors.New("duplicate identifier")
)

// reservedFields are served for every content item and can't be declared.
var reservedFields = map[string]struct{}{
	"id":      {},
	"type":    {},
	"created": {},
	"updated": {},
}

var defaultMemberTypes = []document{
	{Title: "Editor", Identifier: "editor"},
	{Title: "Viewer", Identifier: "viewer"},
}

type document struct {
	Title        string     `json:"title"`
	Identifier   string     `json:"identifier"`
	ContentTypes []typeDoc  `json:"content_types"`
	SettingTypes []typeDoc  `json:"setting_types"`
	MemberTypes  []document `json:"domain_member_types"`
}

type typeDoc struct {
	Title      string     `json:"title"`
	Identifier string     `json:"identifier"`
	Fields     []fieldDoc `json:"fields"`
	Views      []viewDoc  `json:"views"`
	Locales    []string   `json:"locales"`
}

type fieldDoc struct {
	Title      string                 `json:"title"`
	Identifier string                 `json:"identifier"`
	Type       string                 `json:"type"`
	Settings   map[string]interface{} `json:"settings"`
}

type viewDoc struct {
	Title      string                 `json:"title"`
	Identifier string                 `json:"identifier"`
	Type       string                 `json:"type"`
	Settings   map[string]interface{} `json:"settings"`
}

// Validate checks data against the domain document JSON schema.
// Violations are returned as *jsonschema.ValidationError.
func Validate(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return errors.Wrap(err, "decode domain document")
	}
	if err := domainSchema.Validate(raw); err != nil {
		return errors.Wrap(err, "domain document")
	}
	return nil
}

// Parse turns a domain document into a domain. Reference targets are recorded but not
// checked, since they may point to domains that are provisioned later; Provision checks them.
func Parse(data []byte) (*schema.Domain, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode domain document")
	}

	domain := &schema.Domain{
		Identifier: doc.Identifier,
		Title:      doc.Title,
	}

	seen := map[string]struct{}{}
	for _, ct := range doc.ContentTypes {
		if _, ok := seen[ct.Identifier]; ok {
			return nil, errors.Wrapf(ErrDuplicate, "content type %q", ct.Identifier)
		}
		seen[ct.Identifier] = struct{}{}

		fields, err := parseFields(domain.Identifier, ct.Identifier, ct.Fields)
		if err != nil {
			return nil, err
		}
		contentType := &schema.ContentType{
			Identifier: ct.Identifier,
			Title:      ct.Title,
			Fields:     fields,
			Locales:    ct.Locales,
		}
		for _, view := range ct.Views {
			contentType.Views = append(contentType.Views, &schema.View{
				Identifier: view.Identifier,
				Title:      view.Title,
				Type:       view.Type,
				Settings:   view.Settings,
			})
		}
		domain.ContentTypes = append(domain.ContentTypes, contentType)
	}

	seen = map[string]struct{}{}
	for _, st := range doc.SettingTypes {
		if _, ok := seen[st.Identifier]; ok {
			return nil, errors.Wrapf(ErrDuplicate, "setting type %q", st.Identifier)
		}
		seen[st.Identifier] = struct{}{}

		fields, err := parseFields(domain.Identifier, st.Identifier, st.Fields)
		if err != nil {
			return nil, err
		}
		domain.SettingTypes = append(domain.SettingTypes, &schema.SettingType{
			Identifier: st.Identifier,
			Title:      st.Title,
			Fields:     fields,
			Locales:    st.Locales,
		})
	}

	memberTypes := doc.MemberTypes
	if len(memberTypes) == 0 {
		memberTypes = defaultMemberTypes
	}
	for _, mt := range memberTypes {
		domain.MemberTypes = append(domain.MemberTypes, &schema.MemberType{
			Identifier: mt.Identifier,
			Title:      mt.Title,
		})
	}

	return domain, nil
}

func parseFields(domain, owner string, docs []fieldDoc) ([]*schema.FieldDefinition, error) {
	fields := make([]*schema.FieldDefinition, 0, len(docs))
	seen := map[string]struct{}{}
	for _, f := range docs {
		if _, ok := reservedFields[f.Identifier]; ok {
			return nil, errors.Wrapf(ErrReservedField, "%s.%s", owner, f.Identifier)
		}
		if _, ok := seen[f.Identifier]; ok {
			return nil, errors.Wrapf(ErrDuplicate, "field %s.%s", owner, f.Identifier)
		}
		seen[f.Identifier] = struct{}{}

		fieldType, err := schema.ParseFieldType(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", owner, f.Identifier)
		}
		field := &schema.FieldDefinition{
			Identifier: f.Identifier,
			Title:      f.Title,
			Type:       fieldType,
			Settings:   f.Settings,
		}
		if field.IsReference() {
			target, err := referenceTarget(domain, f.Settings)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s.%s", owner, f.Identifier)
			}
			field.Target = &target
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func referenceTarget(domain string, settings map[string]interface{}) (schema.ReferenceTarget, error) {
	targetDomain, _ := settings["domain"].(string)
	targetContentType, _ := settings["content_type"].(string)
	if targetContentType == "" {
		return schema.ReferenceTarget{}, fmt.Errorf("%w: settings.content_type is required", ErrInvalidReference)
	}
	if targetDomain == "" {
		targetDomain = domain
	}
	return schema.ReferenceTarget{Domain: targetDomain, ContentType: targetContentType}, nil
}
