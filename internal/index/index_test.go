package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "localref-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func record(t *testing.T, db *DB, dest, doc string) *models.Insertion {
	t.Helper()
	in := &models.Insertion{
		Source:      "/home/u/" + dest,
		Destination: dest,
		Document:    doc,
		Reference:   "[[" + dest + "]]",
		Size:        3,
		Checksum:    "abc",
	}
	if err := db.RecordInsertion(in); err != nil {
		t.Fatalf("RecordInsertion: %v", err)
	}
	return in
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM insertions`).Scan(&count); err != nil {
		t.Fatalf("insertions table missing: %v", err)
	}
}

func TestRecordAndGet(t *testing.T) {
	db := testDB(t)
	in := &models.Insertion{
		Source:      "/home/u/photo.JPG",
		Destination: "attachments/photo.JPG",
		Document:    "notes/day.md",
		Reference:   "![[photo.JPG]]",
		Embedded:    true,
		Size:        1024,
		Checksum:    "deadbeef",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := db.RecordInsertion(in); err != nil {
		t.Fatalf("RecordInsertion: %v", err)
	}
	if in.ID == 0 {
		t.Fatal("ID not assigned")
	}

	got, err := db.GetInsertion(in.ID)
	if err != nil {
		t.Fatalf("GetInsertion: %v", err)
	}
	if got.Reference != "![[photo.JPG]]" || !got.Embedded || got.Size != 1024 {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
}

func TestGetInsertion_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetInsertion(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListInsertions_NewestFirstAndFilter(t *testing.T) {
	db := testDB(t)
	record(t, db, "a.png", "one.md")
	record(t, db, "b.png", "two.md")
	record(t, db, "c.png", "one.md")

	items, total, err := db.ListInsertions(10, 0, "")
	if err != nil {
		t.Fatalf("ListInsertions: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(items))
	}
	if items[0].Destination != "c.png" {
		t.Errorf("first = %q, want newest", items[0].Destination)
	}

	items, total, _ = db.ListInsertions(1, 0, "one.md")
	if total != 2 || len(items) != 1 || items[0].Destination != "c.png" {
		t.Errorf("filtered: total = %d, items = %+v", total, items)
	}
	items, _, _ = db.ListInsertions(1, 1, "one.md")
	if len(items) != 1 || items[0].Destination != "a.png" {
		t.Errorf("offset page = %+v", items)
	}
}

func TestDeleteInsertion(t *testing.T) {
	db := testDB(t)
	in := record(t, db, "a.png", "n.md")
	if err := db.DeleteInsertion(in.ID); err != nil {
		t.Fatalf("DeleteInsertion: %v", err)
	}
	if _, err := db.GetInsertion(in.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("record still present: %v", err)
	}
}

type existSet map[string]bool

func (s existSet) Exists(p string) bool { return s[p] }

func TestPrune(t *testing.T) {
	db := testDB(t)
	keep := record(t, db, "keep.png", "n.md")
	record(t, db, "gone.png", "n.md")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	n, err := Prune(db, existSet{"keep.png": true}, logger)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	items, total, _ := db.ListInsertions(10, 0, "")
	if total != 1 || items[0].ID != keep.ID {
		t.Errorf("remaining = %+v", items)
	}
}
