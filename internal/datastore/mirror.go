package datastore

import (
	"log/slog"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

// MirroredStore wraps a primary Store and replays every appended batch
// to best-effort mirrors. The primary append must succeed; mirror
// failures are logged and ignored so a flaky remote can't fail a run.
type MirroredStore struct {
	Store
	mirrors []Appender
}

// NewMirroredStore wraps primary so appends also reach the mirrors.
func NewMirroredStore(primary Store, mirrors ...Appender) *MirroredStore {
	return &MirroredStore{Store: primary, mirrors: mirrors}
}

// AppendDeals appends to the primary store, then to each mirror.
func (m *MirroredStore) AppendDeals(books []book.Book) error {
	if err := m.Store.AppendDeals(books); err != nil {
		return err
	}
	for _, mirror := range m.mirrors {
		if err := mirror.AppendDeals(books); err != nil {
			slog.Warn("Mirror append failed", "error", err)
		}
	}
	return nil
}
