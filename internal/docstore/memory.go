package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, value interface{}, merge bool) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]json.RawMessage)
	}
	existing, ok := s.docs[collection][id]
	if !merge || !ok {
		s.docs[collection][id] = payload
		return nil
	}
	merged, err := mergeTopLevel(existing, payload)
	if err != nil {
		return fmt.Errorf("merge document %s/%s: %w", collection, id, err)
	}
	s.docs[collection][id] = merged
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	payload, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode partial %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	merged, err := mergeTopLevel(existing, payload)
	if err != nil {
		return fmt.Errorf("merge document %s/%s: %w", collection, id, err)
	}
	s.docs[collection][id] = merged
	return nil
}

func (s *MemoryStore) QueryByField(ctx context.Context, collection, field, value string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	for id, raw := range s.docs[collection] {
		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		if fmt.Sprintf("%v", body[field]) == value {
			data := make(json.RawMessage, len(raw))
			copy(data, raw)
			docs = append(docs, Document{Collection: collection, ID: id, Data: data})
		}
	}
	return docs, nil
}

func mergeTopLevel(existing, incoming json.RawMessage) (json.RawMessage, error) {
	var base, overlay map[string]json.RawMessage
	if err := json.Unmarshal(existing, &base); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return nil, err
	}
	if base == nil {
		base = map[string]json.RawMessage{}
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
