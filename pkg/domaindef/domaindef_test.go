package domaindef_test

import (
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitecms/contentgraph/pkg/domaindef"
	"github.com/unitecms/contentgraph/pkg/schema"
	"github.com/unitecms/contentgraph/pkg/testing/cmstesting"
)

func TestParse(t *testing.T) {
	domain, err := domaindef.Parse(cmstesting.MarketingDomain)
	require.NoError(t, err)

	assert.Equal(t, "marketing", domain.Identifier)
	assert.Equal(t, "Marketing", domain.Title)
	require.Len(t, domain.ContentTypes, 2)
	require.Len(t, domain.SettingTypes, 1)

	category, ok := domain.ContentTypes[1].Field("news")
	require.True(t, ok)
	target, ok := category.ReferenceTarget()
	require.True(t, ok)
	assert.Equal(t, schema.ReferenceTarget{Domain: "marketing", ContentType: "news"}, target)

	_, ok = domain.MemberType("editor")
	assert.True(t, ok)
	_, ok = domain.MemberType("viewer")
	assert.True(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	run := func(document string, expectErr error) func(t *testing.T) {
		return func(t *testing.T) {
			_, err := domaindef.Parse([]byte(document))
			require.Error(t, err)
			if expectErr != nil {
				assert.True(t, errors.Is(err, expectErr), err.Error())
			}
		}
	}

	t.Run("malformed json", run(`{"title":`, nil))
	t.Run("reserved field", run(`{"title":"M","identifier":"m","content_types":[
		{"title":"News","identifier":"news","fields":[{"title":"Id","identifier":"id","type":"text"}]}]}`, domaindef.ErrReservedField))
	t.Run("duplicate field", run(`{"title":"M","identifier":"m","content_types":[
		{"title":"News","identifier":"news","fields":[
			{"title":"A","identifier":"title","type":"text"},
			{"title":"B","identifier":"title","type":"textarea"}]}]}`, domaindef.ErrDuplicate))
	t.Run("duplicate content type", run(`{"title":"M","identifier":"m","content_types":[
		{"title":"News","identifier":"news"},{"title":"News","identifier":"news"}]}`, domaindef.ErrDuplicate))
	t.Run("reference without content type", run(`{"title":"M","identifier":"m","content_types":[
		{"title":"News","identifier":"news","fields":[{"title":"C","identifier":"category","type":"reference"}]}]}`, domaindef.ErrInvalidReference))
	t.Run("unknown field type", run(`{"title":"M","identifier":"m","content_types":[
		{"title":"News","identifier":"news","fields":[{"title":"G","identifier":"geo","type":"geo"}]}]}`, nil))

	t.Run("schema violation", func(t *testing.T) {
		err := domaindef.Validate([]byte(`{"title":"M","identifier":"Not Valid"}`))
		require.Error(t, err)
		var validationErr *jsonschema.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestProvision(t *testing.T) {
	t.Run("registers the organization", func(t *testing.T) {
		registry := schema.NewRegistry()
		org, err := domaindef.Provision(registry, "luxury-hotel", "Luxury Hotel", cmstesting.MarketingDomain)
		require.NoError(t, err)

		found, err := registry.Organization("luxury-hotel")
		require.NoError(t, err)
		assert.Same(t, org, found)

		domain, err := org.Domain("marketing")
		require.NoError(t, err)
		assert.Equal(t, "luxury-hotel", domain.Organization)
	})

	t.Run("cross domain reference", func(t *testing.T) {
		sales := []byte(`{"title":"Sales","identifier":"sales","content_types":[
			{"title":"Offer","identifier":"offer","fields":[
				{"title":"News","identifier":"news","type":"reference","settings":{"domain":"marketing","content_type":"news"}}]}]}`)
		org, err := domaindef.Provision(schema.NewRegistry(), "luxury-hotel", "Luxury Hotel", cmstesting.MarketingDomain, sales)
		require.NoError(t, err)

		field, err := org.Field("sales", "offer", "news")
		require.NoError(t, err)
		assert.Equal(t, &schema.ReferenceTarget{Domain: "marketing", ContentType: "news"}, field.Target)
	})

	t.Run("unresolvable reference", func(t *testing.T) {
		sales := []byte(`{"title":"Sales","identifier":"sales","content_types":[
			{"title":"Offer","identifier":"offer","fields":[
				{"title":"Event","identifier":"event","type":"reference","settings":{"domain":"events","content_type":"event"}}]}]}`)
		registry := schema.NewRegistry()
		_, err := domaindef.Provision(registry, "luxury-hotel", "Luxury Hotel", sales)
		assert.True(t, errors.Is(err, domaindef.ErrInvalidReference))

		_, err = registry.Organization("luxury-hotel")
		assert.True(t, errors.Is(err, schema.ErrUnknownOrganization))
	})

	t.Run("duplicate domain", func(t *testing.T) {
		_, err := domaindef.Provision(schema.NewRegistry(), "luxury-hotel", "Luxury Hotel", cmstesting.MarketingDomain, cmstesting.MarketingDomain)
		assert.True(t, errors.Is(err, domaindef.ErrDuplicate))
	})
}
