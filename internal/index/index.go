package index

import "github.com/starford/localref/internal/models"

// History is the insertion log. Consumers depend on this interface rather
// than *DB so tests can stub it.
type History interface {
	RecordInsertion(in *models.Insertion) error
	ListInsertions(limit, offset int, document string) ([]models.Insertion, int, error)
	GetInsertion(id int64) (*models.Insertion, error)
	DeleteInsertion(id int64) error
	Close() error
}

// Verify *DB satisfies History at compile time.
var _ History = (*DB)(nil)
