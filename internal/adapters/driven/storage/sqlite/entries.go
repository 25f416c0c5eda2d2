package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// jsonNull is stored for chunks with a nil metadata map, so that nil and
// empty maps load back as they were saved.
const jsonNull = "null"

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// EntryIDAt returns the entry ID stored at insertion ordinal seq, or domain.ErrNotFound.
func (s *Store) EntryIDAt(ctx context.Context, seq int) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM entries WHERE seq = ?", seq).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading entry %d: %w", seq, err)
	}
	return id, nil
}

// AppendEntries stores entries with insertion ordinals starting at from.
// All rows are written in one transaction.
func (s *Store) AppendEntries(ctx context.Context, from int, entries []domain.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertEntries(ctx, tx, from, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceEntries rewrites the stored entries to exactly the given list.
func (s *Store) ReplaceEntries(ctx context.Context, entries []domain.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	if err := insertEntries(ctx, tx, 0, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, from int, entries []domain.IndexEntry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (seq, id, chunk_id, document_id, source, content,
			position, page, char_offset, length, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		metadataJSON := jsonNull
		if e.Chunk.Metadata != nil {
			b, err := json.Marshal(e.Chunk.Metadata)
			if err != nil {
				return fmt.Errorf("marshalling chunk metadata: %w", err)
			}
			metadataJSON = string(b)
		}

		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, from+i, e.ID, c.ID, c.DocumentID, c.Source, c.Content,
			c.Position, c.Page, c.Offset, c.Length, float32SliceToBytes(e.Embedding), metadataJSON); err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// LoadEntries returns all entries in insertion order.
func (s *Store) LoadEntries(ctx context.Context) ([]domain.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chunk_id, document_id, source, content, position, page,
			char_offset, length, embedding, metadata
		FROM entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// scanEntry scans an entry from *sql.Rows.
func scanEntry(rows *sql.Rows) (*domain.IndexEntry, error) {
	var e domain.IndexEntry
	var embeddingBlob []byte
	var metadataJSON string
	c := &e.Chunk

	if err := rows.Scan(&e.ID, &c.ID, &c.DocumentID, &c.Source, &c.Content, &c.Position,
		&c.Page, &c.Offset, &c.Length, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	e.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" && metadataJSON != jsonNull {
		md, err := decodeMetadata(metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
		c.Metadata = md
	}

	return &e, nil
}

// decodeMetadata reads a metadata object, decoding whole numbers as int.
func decodeMetadata(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	md := map[string]any{}
	if err := dec.Decode(&md); err != nil {
		return nil, err
	}
	for k, v := range md {
		md[k] = restoreNumbers(v)
	}
	return md, nil
}

func restoreNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, item := range v {
			v[k] = restoreNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = restoreNumbers(item)
		}
		return v
	default:
		return v
	}
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
