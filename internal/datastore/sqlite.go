package datastore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

const dealSchema = `CREATE TABLE IF NOT EXISTS retailer_deal (
	retailer TEXT NOT NULL,
	title TEXT NOT NULL,
	authors TEXT NOT NULL,
	format TEXT NOT NULL,
	list_price REAL NOT NULL,
	current_price REAL NOT NULL,
	timepoint TEXT NOT NULL,
	deleted INTEGER NOT NULL DEFAULT 0,
	deal_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_retailer_deal_id_timepoint
	ON retailer_deal (deal_id, timepoint);
CREATE INDEX IF NOT EXISTS idx_retailer_deal_timepoint
	ON retailer_deal (timepoint);`

// SQLiteStore implements the Store interface on a local SQLite file.
// The table is append-only: reconciliation inserts new rows and
// tombstones, and never updates or deletes existing ones.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens a connection to the SQLite database
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

// InitSchema creates the deal history table and indexes if needed.
func (s *SQLiteStore) InitSchema() error {
	if _, err := s.db.Exec(dealSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// AppendDeals inserts a batch of deal rows inside one transaction.
func (s *SQLiteStore) AppendDeals(books []book.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback is a no-op after a successful commit.
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(`INSERT INTO retailer_deal
		(retailer, title, authors, format, list_price, current_price, timepoint, deleted, deal_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range books {
		_, err := stmt.Exec(
			b.Retailer,
			b.Title,
			b.Authors,
			string(b.Format),
			b.ListPrice,
			b.CurrentPrice,
			formatTimepoint(b.Timepoint),
			boolToInt(b.Deleted),
			b.DealID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert deal row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ActiveDeals returns the most recent non-deleted row per deal ID.
func (s *SQLiteStore) ActiveDeals() ([]book.Book, error) {
	rows, err := s.db.Query(`SELECT retailer, title, authors, format, list_price, current_price, timepoint, deleted, deal_id
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY deal_id ORDER BY timepoint DESC) AS rn
			FROM retailer_deal
		)
		WHERE rn = 1 AND deleted = 0
		ORDER BY title, authors, retailer`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active deals: %w", err)
	}
	return scanDeals(rows)
}

// DealsFoundAt returns every row written by the run at timepoint,
// tombstones included. Callers that only care about finds filter on
// the Deleted flag.
func (s *SQLiteStore) DealsFoundAt(timepoint time.Time) ([]book.Book, error) {
	rows, err := s.db.Query(`SELECT retailer, title, authors, format, list_price, current_price, timepoint, deleted, deal_id
		FROM retailer_deal
		WHERE timepoint = ?
		ORDER BY title, authors, retailer`,
		formatTimepoint(timepoint))
	if err != nil {
		return nil, fmt.Errorf("failed to query deals at timepoint: %w", err)
	}
	return scanDeals(rows)
}

// LatestRunTime returns the most recent run timestamp, or nil when the
// store is empty.
func (s *SQLiteStore) LatestRunTime() (*time.Time, error) {
	var latest sql.NullString
	err := s.db.QueryRow(`SELECT MAX(timepoint) FROM retailer_deal`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run time: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, latest.String)
	if err != nil {
		return nil, fmt.Errorf("invalid timepoint %q in store: %w", latest.String, err)
	}
	return &t, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanDeals(rows *sql.Rows) ([]book.Book, error) {
	defer func() { _ = rows.Close() }()

	var deals []book.Book
	for rows.Next() {
		var (
			b         book.Book
			format    string
			timepoint string
			deleted   int
		)
		err := rows.Scan(
			&b.Retailer, &b.Title, &b.Authors, &format,
			&b.ListPrice, &b.CurrentPrice, &timepoint, &deleted, &b.DealID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal row: %w", err)
		}

		b.Format = book.Format(format)
		b.Deleted = deleted != 0
		b.Exists = true
		b.Timepoint, err = time.Parse(time.RFC3339, timepoint)
		if err != nil {
			return nil, fmt.Errorf("invalid timepoint %q in store: %w", timepoint, err)
		}
		deals = append(deals, b)
	}
	return deals, rows.Err()
}

// formatTimepoint stores timestamps as RFC3339 UTC strings so that
// lexicographic ordering matches chronological ordering.
func formatTimepoint(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
