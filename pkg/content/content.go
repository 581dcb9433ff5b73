// Package content stores content items and the reference pointers embedded in their data.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	ErrNotFound     = errors.New("content not found")
	ErrInvalidData  = errors.New("content data must be a JSON object")
	ErrMissingScope = errors.New("content needs an organization, a domain and a content type")
)

// Reference points to a content item. Reference field values are stored in this shape,
// without the organization: a pointer never leaves the organization of the item holding it.
type Reference struct {
	Organization string `json:"organization,omitempty"`
	Domain       string `json:"domain"`
	ContentType  string `json:"content_type"`
	Content      string `json:"content"`
}

func (r Reference) String() string {
	return r.Organization + "/" + r.Domain + "/" + r.ContentType + "/" + r.Content
}

// NotFoundError reports a reference without a stored item. It matches ErrNotFound.
type NotFoundError struct {
	Ref Reference
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content %q of type %q in domain %q not found", e.Ref.Content, e.Ref.ContentType, e.Ref.Domain)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Item is a content item. Items handed out by a Reader must be treated as read-only.
type Item struct {
	ID           string          `json:"id"`
	Organization string          `json:"organization"`
	Domain       string          `json:"domain"`
	ContentType  string          `json:"content_type"`
	Created      time.Time       `json:"created"`
	Updated      time.Time       `json:"updated"`
	Data         json.RawMessage `json:"data"`
}

func (i *Item) Ref() Reference {
	return Reference{Organization: i.Organization, Domain: i.Domain, ContentType: i.ContentType, Content: i.ID}
}

// Scoped reports whether the item names its organization, domain and content type.
func (i *Item) Scoped() bool {
	return i.Organization != "" && i.Domain != "" && i.ContentType != ""
}

// Value reads a field of the data payload.
func (i *Item) Value(field string) gjson.Result {
	return gjson.GetBytes(i.Data, gjson.Escape(field))
}

// Reference decodes the reference pointer stored in field. The pointer lives in the
// organization of the item.
func (i *Item) Reference(field string) (Reference, bool) {
	value := i.Value(field)
	if !value.IsObject() {
		return Reference{}, false
	}
	ref := Reference{
		Organization: i.Organization,
		Domain:       value.Get("domain").String(),
		ContentType:  value.Get("content_type").String(),
		Content:      value.Get("content").String(),
	}
	if ref.ContentType == "" || ref.Content == "" {
		return Reference{}, false
	}
	return ref, true
}

// SetValue returns a copy of item with field set to value.
func (i *Item) SetValue(field string, value interface{}) (*Item, error) {
	data := i.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	updated, err := sjson.SetBytes(data, gjson.Escape(field), value)
	if err != nil {
		return nil, err
	}
	out := *i
	out.Data = updated
	return &out, nil
}

func (i *Item) clone() *Item {
	out := *i
	out.Data = append(json.RawMessage(nil), i.Data...)
	return &out
}

// ValidData reports whether data is a JSON object.
func ValidData(data json.RawMessage) bool {
	return gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject()
}

// Page is one page of a Find result.
type Page struct {
	Items []*Item
	Total int
	Page  int
}

type Reader interface {
	// Get returns the item ref points to or an error matching ErrNotFound.
	Get(ctx context.Context, ref Reference) (*Item, error)
	// Find lists the items of a content type, in store order unless query sorts them.
	Find(ctx context.Context, organization, domain, contentType string, query Query) (Page, error)
}

type Writer interface {
	// Put creates or replaces item. Empty ids are generated, items without an organization,
	// domain or content type fail with ErrMissingScope.
	Put(ctx context.Context, item *Item) (*Item, error)
	// Patch applies an RFC 7386 merge patch to the data of an item.
	Patch(ctx context.Context, ref Reference, patch []byte) (*Item, error)
	Delete(ctx context.Context, ref Reference) error
}

type Store interface {
	Reader
	Writer
}

// SetValue writes a single field of a stored item.
func SetValue(ctx context.Context, store Store, ref Reference, field string, value interface{}) (*Item, error) {
	item, err := store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := item.SetValue(field, value)
	if err != nil {
		return nil, err
	}
	return store.Put(ctx, updated)
}
