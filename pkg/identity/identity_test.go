package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/testing/cmstesting"
)

func TestKeyring_Authenticate(t *testing.T) {
	keyring := cmstesting.Keyring()

	key, err := keyring.Authenticate(cmstesting.EditorToken)
	require.NoError(t, err)
	assert.Equal(t, "editor", key.Name())
	assert.Equal(t, cmstesting.Organization, key.Organization())
	assert.True(t, key.IsMemberOf(cmstesting.Domain))
	assert.False(t, key.IsMemberOf("sales"))

	_, err = keyring.Authenticate("")
	assert.Equal(t, identity.ErrUnknownToken, err)
	_, err = keyring.Authenticate("guessed")
	assert.Equal(t, identity.ErrUnknownToken, err)
}

func TestContext_Authorized(t *testing.T) {
	_, org, domain := cmstesting.Registry(t)
	keyring := cmstesting.Keyring()

	authorized := func(token string) bool {
		key, err := keyring.Authenticate(token)
		require.NoError(t, err)
		return identity.Context{Organization: org, Domain: domain, Actor: key}.Authorized()
	}

	assert.True(t, authorized(cmstesting.EditorToken))
	assert.False(t, authorized(cmstesting.OutsiderToken))
	assert.False(t, authorized(cmstesting.ForeignToken))
	assert.False(t, identity.Context{Organization: org, Domain: domain}.Authorized())
	assert.False(t, identity.Context{}.Authorized())
}
