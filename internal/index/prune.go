package index

import (
	"log/slog"
)

// Existence is the slice of storage.Provider Prune needs.
type Existence interface {
	Exists(path string) bool
}

// Prune drops history rows whose destination file is gone from the vault
// and returns how many were removed.
func Prune(db *DB, store Existence, logger *slog.Logger) (int, error) {
	dests, err := db.Destinations()
	if err != nil {
		return 0, err
	}

	removed := 0
	for id, dest := range dests {
		if store.Exists(dest) {
			continue
		}
		if err := db.DeleteInsertion(id); err != nil {
			logger.Warn("prune: delete failed", slog.Int64("id", id), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("prune: removed stale", slog.Int64("id", id), slog.String("destination", dest))
		removed++
	}
	return removed, nil
}
