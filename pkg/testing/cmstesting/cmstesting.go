// Package cmstesting provides the marketing domain and its cyclic news fixtures for tests.
//
// news-1 references category-1 which references news-1 again, so every reference chain
// over these items is unbounded.
package cmstesting

import (
	"bytes"
	"context"
	_ "embed"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/domaindef"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/schema"
)

const (
	Organization = "luxury-hotel"
	Domain       = "marketing"
	EditorToken  = "editor-token"
	// OutsiderToken belongs to the organization but is not a member of the marketing domain.
	OutsiderToken = "outsider-token"
	// ForeignToken belongs to ForeignOrganization and is a member of its marketing domain.
	ForeignToken = "foreign-token"
	// ForeignOrganization provisions the same marketing domain but holds no fixtures.
	ForeignOrganization = "other-hotel"

	NewsID     = "news-1"
	NewsID2    = "news-2"
	CategoryID = "category-1"
)

//go:embed testdata/marketing.json
var MarketingDomain []byte

//go:embed testdata/fixtures.json
var Fixtures []byte

// Now is the timestamp every fixture is created at.
var Now = time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)

// Registry provisions the organization with the marketing domain.
func Registry(t testing.TB) (*schema.Registry, *schema.Organization, *schema.Domain) {
	t.Helper()

	registry := schema.NewRegistry()
	org, err := domaindef.Provision(registry, Organization, "Luxury Hotel", MarketingDomain)
	require.NoError(t, err)
	domain, err := org.Domain(Domain)
	require.NoError(t, err)
	return registry, org, domain
}

// Seed writes the fixtures into w for Organization.
func Seed(t testing.TB, w content.Writer) {
	t.Helper()
	SeedOrganization(t, w, Organization)
}

func SeedOrganization(t testing.TB, w content.Writer, organization string) {
	t.Helper()

	n, err := content.LoadFixtures(context.Background(), w, organization, bytes.NewReader(Fixtures))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

// ProvisionForeign adds ForeignOrganization with the marketing domain to registry.
func ProvisionForeign(t testing.TB, registry *schema.Registry) *schema.Organization {
	t.Helper()

	org, err := domaindef.Provision(registry, ForeignOrganization, "Other Hotel", MarketingDomain)
	require.NoError(t, err)
	return org
}

// Store returns a memory store holding the fixtures.
func Store(t testing.TB) *content.MemoryStore {
	t.Helper()

	store := content.NewMemoryStore()
	store.SetClock(func() time.Time { return Now })
	Seed(t, store)
	return store
}

func Keyring() *identity.Keyring {
	editor := &identity.APIKey{KeyName: "editor", KeyOrganization: Organization, Token: EditorToken}
	editor.AddDomain(Domain, "editor")
	outsider := &identity.APIKey{KeyName: "outsider", KeyOrganization: Organization, Token: OutsiderToken}
	foreign := &identity.APIKey{KeyName: "foreign", KeyOrganization: ForeignOrganization, Token: ForeignToken}
	foreign.AddDomain(Domain, "editor")
	return identity.NewKeyring(editor, outsider, foreign)
}

// RequestContext returns an authorized context for the editor key.
func RequestContext(t testing.TB) identity.Context {
	t.Helper()

	_, org, domain := Registry(t)
	key, err := Keyring().Authenticate(EditorToken)
	require.NoError(t, err)
	return identity.Context{Organization: org, Domain: domain, Actor: key}
}
