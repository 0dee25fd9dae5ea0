package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
)

// ErrSchemaMismatch is returned when a collection is used with a schema
// other than the one it was created with.
var ErrSchemaMismatch = errors.New("store: collection schema mismatch")

// ErrUnknownCollection is returned when writing to a collection that was
// never created.
var ErrUnknownCollection = errors.New("store: unknown collection")

// Document is one stored record.
type Document struct {
	ID   int64
	Data any
}

// CreateCollection registers a collection for records described by typ.
// Creating an existing collection with the same schema is a no-op.
func (s *Store) CreateCollection(ctx context.Context, name string, typ *schema.Type) error {
	if typ == nil {
		return fmt.Errorf("create collection %q: nil schema", name)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, schema_id)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, typ.ID())
	if err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}

	var existing string
	if err := s.db.QueryRowContext(ctx,
		`SELECT schema_id FROM collections WHERE name = ?`, name,
	).Scan(&existing); err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}
	if existing != typ.ID() {
		return fmt.Errorf("%w: %q was created with %s", ErrSchemaMismatch, name, existing)
	}
	return nil
}

// Insert appends records to a collection in one transaction and returns
// their ids in order.
func (s *Store) Insert(ctx context.Context, collection string, docs ...any) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert into %q: %w", collection, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE name = ?`, collection,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("insert into %q: %w", collection, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (collection, doc) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("insert into %q: %w", collection, err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(docs))
	for i, doc := range docs {
		text, err := marshalDoc(doc)
		if err != nil {
			return nil, fmt.Errorf("insert into %q: record %d: %w", collection, i, err)
		}
		res, err := stmt.ExecContext(ctx, collection, text)
		if err != nil {
			return nil, fmt.Errorf("insert into %q: record %d: %w", collection, i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert into %q: record %d: %w", collection, i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert into %q: %w", collection, err)
	}

	s.logger.Debug("inserted documents",
		"collection", collection,
		"count", len(ids))
	return ids, nil
}

// Load creates a collection and inserts records into it.
func (s *Store) Load(ctx context.Context, collection string, typ *schema.Type, docs []any) error {
	if err := s.CreateCollection(ctx, collection, typ); err != nil {
		return err
	}
	_, err := s.Insert(ctx, collection, docs...)
	return err
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", collection, err)
	}
	return n, nil
}

// Find runs a compiled query and returns the matching documents in query
// order.
func (s *Store) Find(ctx context.Context, q *querysql.Query) ([]Document, error) {
	query, args, err := q.Compile()
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	s.logger.Debug("running query",
		"collection", q.Collection(),
		"sql", query,
		"params", len(args))

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var (
			id   int64
			text string
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		data, err := unmarshalDoc(text)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", id, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Records returns the Data of each document.
func Records(docs []Document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d.Data
	}
	return out
}
