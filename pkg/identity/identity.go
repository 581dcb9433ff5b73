// Package identity models the actors that submit queries and the per-request context they run in.
//
// Authentication itself happens elsewhere. The engine only receives an established Context.
package identity

import (
	"errors"
	"sync"

	"github.com/unitecms/contentgraph/pkg/schema"
)

var ErrUnknownToken = errors.New("unknown api token")

type Actor interface {
	Name() string
	Organization() string
	IsMemberOf(domain string) bool
}

// DomainMember relates an actor to a domain with one of the domain's member types.
type DomainMember struct {
	Domain     string `json:"domain" mapstructure:"domain"`
	MemberType string `json:"member_type" mapstructure:"member_type"`
}

type APIKey struct {
	KeyName         string         `json:"name" mapstructure:"name"`
	KeyOrganization string         `json:"organization" mapstructure:"organization"`
	Token           string         `json:"token" mapstructure:"token"`
	Domains         []DomainMember `json:"domains" mapstructure:"domains"`
}

func (k *APIKey) Name() string {
	return k.KeyName
}

func (k *APIKey) Organization() string {
	return k.KeyOrganization
}

func (k *APIKey) IsMemberOf(domain string) bool {
	for i := range k.Domains {
		if k.Domains[i].Domain == domain {
			return true
		}
	}
	return false
}

// AddDomain makes the key a member of domain with memberType.
func (k *APIKey) AddDomain(domain, memberType string) *APIKey {
	k.Domains = append(k.Domains, DomainMember{Domain: domain, MemberType: memberType})
	return k
}

// Context is the explicit per-request context passed from parsing to assembling.
type Context struct {
	Organization *schema.Organization
	Domain       *schema.Domain
	Actor        Actor
}

// Authorized reports whether the actor belongs to the organization and is a member of the domain.
func (c Context) Authorized() bool {
	if c.Actor == nil || c.Organization == nil || c.Domain == nil {
		return false
	}
	return c.Actor.Organization() == c.Organization.Identifier && c.Actor.IsMemberOf(c.Domain.Identifier)
}

// Keyring resolves API tokens to keys. It is safe for concurrent use.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]*APIKey
}

func NewKeyring(keys ...*APIKey) *Keyring {
	k := &Keyring{keys: make(map[string]*APIKey, len(keys))}
	for _, key := range keys {
		k.Add(key)
	}
	return k
}

func (k *Keyring) Add(key *APIKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key.Token] = key
}

func (k *Keyring) Authenticate(token string) (*APIKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[token]
	if !ok || token == "" {
		return nil, ErrUnknownToken
	}
	return key, nil
}
