package schema

import (
	"fmt"
	"sync"
)

// Registry is the set of provisioned organizations. It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	organizations map[string]*Organization
}

func NewRegistry() *Registry {
	return &Registry{
		organizations: make(map[string]*Organization),
	}
}

// Add registers org, replacing any organization with the same identifier.
func (r *Registry) Add(org *Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizations[org.Identifier] = org
}

func (r *Registry) Organization(identifier string) (*Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.organizations[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrganization, identifier)
	}
	return org, nil
}

func (r *Registry) Domain(organization, domain string) (*Organization, *Domain, error) {
	org, err := r.Organization(organization)
	if err != nil {
		return nil, nil, err
	}
	d, err := org.Domain(domain)
	if err != nil {
		return nil, nil, err
	}
	return org, d, nil
}
