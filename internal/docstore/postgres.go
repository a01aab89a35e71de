package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps documents in a single JSONB-backed table:
//
//	CREATE TABLE documents (
//	    collection TEXT NOT NULL,
//	    id         TEXT NOT NULL,
//	    data       JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, id)
//	);
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore constructs the store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get loads a document body into dest.
func (s *PostgresStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	var raw []byte
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if err := s.db.GetContext(ctx, &raw, query, collection, id); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Set writes a document, either replacing it wholesale or shallow-merging the
// new top-level fields into the existing body. Creates the document when
// absent in both modes.
func (s *PostgresStore) Set(ctx context.Context, collection, id string, value interface{}, merge bool) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	assign := "EXCLUDED.data"
	if merge {
		assign = "documents.data || EXCLUDED.data"
	}
	query := fmt.Sprintf(`INSERT INTO documents (collection, id, data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (collection, id)
DO UPDATE SET data = %s, updated_at = now()`, assign)
	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges partial fields into an existing document and fails with
// ErrNotFound when it does not exist.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	payload, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode partial %s/%s: %w", collection, id, err)
	}
	query := `UPDATE documents SET data = data || $3, updated_at = now()
WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, payload)
	if err != nil {
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryByField returns every document whose top-level field equals value.
func (s *PostgresStore) QueryByField(ctx context.Context, collection, field, value string) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1 AND data->>$2 = $3`
	rows := []struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, collection, field, value); err != nil {
		return nil, fmt.Errorf("query documents %s by %s: %w", collection, field, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{Collection: collection, ID: row.ID, Data: json.RawMessage(row.Data)})
	}
	return docs, nil
}
