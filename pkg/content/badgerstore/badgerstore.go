// Package badgerstore is a content.Store persisted in badger.
//
// Every read runs in its own badger read transaction, so an item is always read from a
// single committed version.
package badgerstore

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/unitecms/contentgraph/pkg/content"
)

const keyPrefix = "content/"

type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens a badger database in dir. An empty dir keeps the database in memory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return New(db), nil
}

func New(db *badger.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SetClock replaces the time source for created and updated timestamps. Call it before use.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Close() error {
	return s.db.Close()
}

// typePrefix is content/<organization>/<domain>/<content type>/.
func typePrefix(organization, domain, contentType string) []byte {
	return []byte(keyPrefix + organization + "/" + domain + "/" + contentType + "/")
}

func itemKey(ref content.Reference) []byte {
	return append(typePrefix(ref.Organization, ref.Domain, ref.ContentType), ref.Content...)
}

func (s *Store) Get(ctx context.Context, ref content.Reference) (*content.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item *content.Item
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		item, err = get(txn, ref)
		return err
	})
	return item, err
}

func get(txn *badger.Txn, ref content.Reference) (*content.Item, error) {
	entry, err := txn.Get(itemKey(ref))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &content.NotFoundError{Ref: ref}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", ref)
	}
	var item content.Item
	err = entry.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", ref)
	}
	return &item, nil
}

// Find returns items ordered by creation time, then id, unless query sorts them.
func (s *Store) Find(ctx context.Context, organization, domain, contentType string, query content.Query) (content.Page, error) {
	if err := ctx.Err(); err != nil {
		return content.Page{}, err
	}
	var items []*content.Item
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := typePrefix(organization, domain, contentType)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item content.Item
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			items = append(items, &item)
		}
		return nil
	})
	if err != nil {
		return content.Page{}, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Created.Equal(items[j].Created) {
			return items[i].Created.Before(items[j].Created)
		}
		return items[i].ID < items[j].ID
	})
	return query.Apply(items), nil
}

func (s *Store) Put(ctx context.Context, item *content.Item) (*content.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !item.Scoped() {
		return nil, content.ErrMissingScope
	}
	stored := *item
	if len(stored.Data) == 0 {
		stored.Data = json.RawMessage(`{}`)
	}
	if !content.ValidData(stored.Data) {
		return nil, content.ErrInvalidData
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.write(txn, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Store) write(txn *badger.Txn, item *content.Item) error {
	now := s.now()
	existing, err := get(txn, item.Ref())
	switch {
	case err == nil:
		item.Created = existing.Created
	case errors.Is(err, content.ErrNotFound):
		if item.Created.IsZero() {
			item.Created = now
		}
	default:
		return err
	}
	item.Updated = now
	data, err := json.Marshal(item)
	if err != nil {
		return errors.Wrapf(err, "encode %s", item.Ref())
	}
	return txn.Set(itemKey(item.Ref()), data)
}

func (s *Store) Patch(ctx context.Context, ref content.Reference, patch []byte) (*content.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var updated *content.Item
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := get(txn, ref)
		if err != nil {
			return err
		}
		data, err := content.MergePatch(existing.Data, patch)
		if err != nil {
			return err
		}
		existing.Data = data
		updated = existing
		return s.write(txn, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, ref content.Reference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := get(txn, ref); err != nil {
			return err
		}
		return txn.Delete(itemKey(ref))
	})
}
