package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/models"
)

const selectColumns = `id, source, destination, document, reference, embedded, size, checksum, created_at`

// RecordInsertion stores in and fills its ID (and CreatedAt when zero).
func (db *DB) RecordInsertion(in *models.Insertion) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	res, err := db.conn.Exec(`
		INSERT INTO insertions (source, destination, document, reference, embedded, size, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.Source, in.Destination, in.Document, in.Reference, in.Embedded, in.Size, in.Checksum, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: record insertion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("index: last insert id: %w", err)
	}
	in.ID = id
	return nil
}

// ListInsertions returns the newest insertions first, optionally restricted
// to one document, plus the total count matching the filter.
func (db *DB) ListInsertions(limit, offset int, document string) ([]models.Insertion, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where, args := "", []any{}
	if document != "" {
		where, args = "WHERE document = ?", append(args, document)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM insertions `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count insertions: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+selectColumns+` FROM insertions `+where+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list insertions: %w", err)
	}
	defer rows.Close()

	var out []models.Insertion
	for rows.Next() {
		in, err := scanInsertion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *in)
	}
	return out, total, rows.Err()
}

// GetInsertion returns one record or apperr.ErrNotFound.
func (db *DB) GetInsertion(id int64) (*models.Insertion, error) {
	row := db.conn.QueryRow(`SELECT `+selectColumns+` FROM insertions WHERE id = ?`, id)
	in, err := scanInsertion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return in, err
}

// DeleteInsertion removes one record. Missing ids are not an error.
func (db *DB) DeleteInsertion(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM insertions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete insertion: %w", err)
	}
	return nil
}

// Destinations returns id → destination for every record.
func (db *DB) Destinations() (map[int64]string, error) {
	rows, err := db.conn.Query(`SELECT id, destination FROM insertions`)
	if err != nil {
		return nil, fmt.Errorf("index: destinations: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var dest string
		if err := rows.Scan(&id, &dest); err != nil {
			return nil, err
		}
		out[id] = dest
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInsertion(s scanner) (*models.Insertion, error) {
	var in models.Insertion
	err := s.Scan(&in.ID, &in.Source, &in.Destination, &in.Document, &in.Reference,
		&in.Embedded, &in.Size, &in.Checksum, &in.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}
