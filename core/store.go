package core

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ID identifies a record of the data API.
// Stores hand out either JSON numbers or strings; both decode, and it always encodes as a string.
type ID string

// NewID returns a random identifier for a record about to be created.
func NewID() ID {
	return ID(uuid.New().String())
}

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decoding id")
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "decoding id")
	}
	*id = ID(n.String())
	return nil
}

// Collection is a remote REST collection of records of type T.
// The whole collection is returned by List: the store offers no server-side filtering, sorting or paging.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id ID) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id ID, record T) (T, error)
	Delete(ctx context.Context, id ID) error
}
