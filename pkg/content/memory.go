package content

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is used to expose created/updated timestamps.
const TimeFormat = time.RFC3339

type typeKey struct {
	organization string
	domain       string
	contentType  string
}

// MemoryStore keeps items in memory. Stored items are never mutated: writes replace them,
// so a reader always sees a complete version of every item it loads.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Reference]*Item
	order map[typeKey][]string
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[Reference]*Item),
		order: make(map[typeKey][]string),
		now:   time.Now,
	}
}

// SetClock replaces the time source for created and updated timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Get(ctx context.Context, ref Reference) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	item, ok := m.items[ref]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Ref: ref}
	}
	return item, nil
}

func (m *MemoryStore) Find(ctx context.Context, organization, domain, contentType string, query Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	m.mu.RLock()
	ids := m.order[typeKey{organization: organization, domain: domain, contentType: contentType}]
	items := make([]*Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, m.items[Reference{Organization: organization, Domain: domain, ContentType: contentType, Content: id}])
	}
	m.mu.RUnlock()
	return query.Apply(items), nil
}

func (m *MemoryStore) Put(ctx context.Context, item *Item) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !item.Scoped() {
		return nil, ErrMissingScope
	}
	stored := item.clone()
	if len(stored.Data) == 0 {
		stored.Data = []byte(`{}`)
	}
	if !ValidData(stored.Data) {
		return nil, ErrInvalidData
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(stored)
	return stored, nil
}

// store must be called with the write lock held.
func (m *MemoryStore) store(item *Item) {
	now := m.now()
	ref := item.Ref()
	if existing, ok := m.items[ref]; ok {
		item.Created = existing.Created
	} else {
		key := typeKey{organization: item.Organization, domain: item.Domain, contentType: item.ContentType}
		m.order[key] = append(m.order[key], item.ID)
		if item.Created.IsZero() {
			item.Created = now
		}
	}
	item.Updated = now
	m.items[ref] = item
}

func (m *MemoryStore) Patch(ctx context.Context, ref Reference, patch []byte) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[ref]
	if !ok {
		return nil, &NotFoundError{Ref: ref}
	}
	data, err := MergePatch(existing.Data, patch)
	if err != nil {
		return nil, err
	}
	updated := existing.clone()
	updated.Data = data
	m.store(updated)
	return updated, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ref Reference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[ref]; !ok {
		return &NotFoundError{Ref: ref}
	}
	delete(m.items, ref)
	key := typeKey{organization: ref.Organization, domain: ref.Domain, contentType: ref.ContentType}
	ids := m.order[key]
	for i := range ids {
		if ids[i] == ref.Content {
			m.order[key] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
