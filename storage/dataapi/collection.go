package dataapi

import (
	"context"
	"net/url"

	"github.com/sendgrid/rest"

	"github.com/examhub/portal/core"
)

// Collection is one REST resource of the data API, eg. `/courses`.
type Collection[T any] struct {
	client   *Client
	path     string
	singular string
	plural   string
}

var _ core.Collection[struct{}] = (*Collection[struct{}])(nil)

// NewCollection returns the collection served under `/<plural>`.
func NewCollection[T any](client *Client, singular, plural string) *Collection[T] {
	return &Collection[T]{
		client:   client,
		path:     "/" + plural,
		singular: singular,
		plural:   plural,
	}
}

func (c *Collection[T]) itemPath(id core.ID) string {
	return c.path + "/" + url.PathEscape(id.String())
}

func (c *Collection[T]) fail(op string, code int, err error) error {
	return &Error{Op: op, StatusCode: code, Err: err}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if code, err := c.client.do(ctx, rest.Get, c.path, nil, &items); err != nil {
		return nil, c.fail("error fetching "+c.plural, code, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) Get(ctx context.Context, id core.ID) (T, error) {
	var item T
	if code, err := c.client.do(ctx, rest.Get, c.itemPath(id), nil, &item); err != nil {
		var zero T
		return zero, c.fail("error fetching "+c.singular, code, err)
	}
	return item, nil
}

// Create returns the record as stored; it falls back to record when the response has no body.
func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	item := record
	if code, err := c.client.do(ctx, rest.Post, c.path, record, &item); err != nil {
		var zero T
		return zero, c.fail("error adding "+c.singular, code, err)
	}
	return item, nil
}

func (c *Collection[T]) Update(ctx context.Context, id core.ID, record T) (T, error) {
	item := record
	if code, err := c.client.do(ctx, rest.Put, c.itemPath(id), record, &item); err != nil {
		var zero T
		return zero, c.fail("error updating "+c.singular, code, err)
	}
	return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id core.ID) error {
	if code, err := c.client.do(ctx, rest.Delete, c.itemPath(id), nil, nil); err != nil {
		return c.fail("error deleting "+c.singular, code, err)
	}
	return nil
}
