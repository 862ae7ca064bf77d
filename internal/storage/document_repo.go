package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for ingest ledger operations.
type DocumentStore interface {
	// Insert records an ingest outcome. Generates the record ID when empty.
	Insert(ctx context.Context, record *DocumentRecord) error
	// List returns ledger rows, newest first.
	List(ctx context.Context) ([]*DocumentRecord, error)
}

// DocumentRepo provides methods for ingest ledger operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert records an ingest outcome.
func (r *DocumentRepo) Insert(ctx context.Context, record *DocumentRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, filename, pages, chunks, status, error) VALUES (?, ?, ?, ?, ?, ?)",
		record.ID, record.Filename, record.Pages, record.Chunks, record.Status, record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document record: %w", err)
	}
	return nil
}

// List returns ledger rows, newest first.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename, pages, chunks, status, error, created_at FROM documents ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*DocumentRecord
	for rows.Next() {
		var record DocumentRecord
		var errMsg sql.NullString
		var createdAtStr string
		if err := rows.Scan(&record.ID, &record.Filename, &record.Pages, &record.Chunks, &record.Status, &errMsg, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document record: %w", err)
		}
		record.Error = errMsg.String
		record.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// parseTimestamp handles both DATETIME formats SQLite may emit.
func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02 15:04:05", raw)
	if err == nil {
		return ts, nil
	}
	ts, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return ts, nil
}
