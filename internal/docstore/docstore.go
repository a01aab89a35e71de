// Package docstore provides a small schemaless document store keyed by
// collection and id. Stores, timetables, presence snapshots and attendance
// records are all persisted through it.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// Document is a raw stored document.
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
}

// Decode unmarshals the document body into dest.
func (d Document) Decode(dest interface{}) error {
	return json.Unmarshal(d.Data, dest)
}

// Store is the persistence contract consumed by the repositories.
//
// Set with merge=true performs a shallow merge of the new top-level fields
// into the existing document, creating it when absent. Update fails with
// ErrNotFound when the document does not exist.
type Store interface {
	Get(ctx context.Context, collection, id string, dest interface{}) error
	Set(ctx context.Context, collection, id string, value interface{}, merge bool) error
	Update(ctx context.Context, collection, id string, partial map[string]interface{}) error
	QueryByField(ctx context.Context, collection, field, value string) ([]Document, error)
}
