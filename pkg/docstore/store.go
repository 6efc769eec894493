// Package docstore is the untyped document store behind the repositories.
//
// Documents are structs (or maps) with bson tags and a string "_id". The
// store generates an ObjectID hex id on Create when the document has none.
// Listing is always ordered by "created_at", newest first.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("docstore: document not found")
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// Query is an optional single-field equality filter plus a result cap.
// Limit 0 means no cap.
type Query struct {
	Field string
	Value interface{}
	Limit int
}

type IndexKey struct {
	Field string
	Desc  bool
}

type IndexSpec struct {
	Name   string
	Keys   []IndexKey
	Unique bool
}

// TxFunc runs inside RunInTransaction. Store calls made with the ctx it
// receives take part in the transaction.
type TxFunc func(ctx context.Context) error

type Store interface {
	Create(ctx context.Context, coll string, doc interface{}) (string, error)
	Get(ctx context.Context, coll, id string, dest interface{}) error
	List(ctx context.Context, coll string, q Query, dest interface{}) error
	GetMany(ctx context.Context, coll string, ids []string, dest interface{}) error
	Update(ctx context.Context, coll, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, coll, id string) error
	DeleteWhere(ctx context.Context, coll, field string, value interface{}) (int64, error)
	AddToSet(ctx context.Context, coll, id, field string, value interface{}) error
	RemoveFromSet(ctx context.Context, coll, id, field string, value interface{}) error
	RunInTransaction(ctx context.Context, fn TxFunc) error
	EnsureIndex(ctx context.Context, coll string, idx IndexSpec) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
