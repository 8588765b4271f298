package rulestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

// Tax year 0 holds the single global active index row.
const globalActiveYear = 0

const schema = `
CREATE TABLE IF NOT EXISTS ruleset_documents (
	id           TEXT PRIMARY KEY,
	jurisdiction TEXT NOT NULL,
	tax_year     INTEGER NOT NULL,
	body         BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS ruleset_index (
	tax_year           INTEGER PRIMARY KEY,
	federal_id         TEXT NOT NULL,
	state_id           TEXT NOT NULL,
	local_sales_tax_id TEXT
);
`

// SQLiteStore serves ruleset documents from a SQLite database.
// Documents are immutable once written; a rule change is a new id.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (and if needed initializes) a SQLite-backed store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Store("create store directory", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Store("open ruleset database", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, errors.Store("ping ruleset database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Store("initialize ruleset schema", err)
	}

	logging.Debug("ruleset store opened", zap.String("path", dbPath))
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Document returns the raw bytes for a ruleset id
func (s *SQLiteStore) Document(id string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRow(`SELECT body FROM ruleset_documents WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.RulesetNotFound(id)
	}
	if err != nil {
		return nil, errors.Store("read ruleset document "+id, err)
	}
	return body, nil
}

// Index builds the raw version-resolution index from the index table
func (s *SQLiteStore) Index() ([]byte, error) {
	rows, err := s.db.Query(`SELECT tax_year, federal_id, state_id, COALESCE(local_sales_tax_id, '')
		FROM ruleset_index ORDER BY tax_year`)
	if err != nil {
		return nil, errors.Store("read ruleset index", err)
	}
	defer func() { _ = rows.Close() }()

	index := struct {
		Years  map[string]indexEntry `json:"years,omitempty"`
		Active *indexEntry           `json:"active,omitempty"`
	}{Years: make(map[string]indexEntry)}

	for rows.Next() {
		var year int
		var entry indexEntry
		if err := rows.Scan(&year, &entry.FederalID, &entry.StateID, &entry.LocalSalesTaxID); err != nil {
			return nil, errors.Store("scan ruleset index row", err)
		}
		if year == globalActiveYear {
			active := entry
			index.Active = &active
			continue
		}
		index.Years[fmt.Sprintf("%d", year)] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("iterate ruleset index", err)
	}

	return marshalIndex(index.Years, index.Active)
}

// List returns all stored ruleset ids, sorted
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM ruleset_documents ORDER BY id`)
	if err != nil {
		return nil, errors.Store("list ruleset documents", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Store("scan ruleset id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("iterate ruleset ids", err)
	}
	return ids, nil
}

// Put stores a document. Overwriting an existing id is rejected: rule
// changes must produce a new ruleset identifier.
func (s *SQLiteStore) Put(id, jurisdiction string, taxYear int, body []byte) error {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO ruleset_documents (id, jurisdiction, tax_year, body) VALUES (?, ?, ?, ?)`,
		id, jurisdiction, taxYear, body)
	if err != nil {
		return errors.Store("store ruleset document "+id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf(errors.TypeStore, "ruleset %s already exists; rule changes require a new id", id)
	}

	logging.Info("ruleset document stored",
		zap.String("ruleset_id", id),
		zap.String("jurisdiction", jurisdiction),
		zap.Int("tax_year", taxYear))
	return nil
}

// SetActive sets the active versions for a tax year; taxYear 0 sets the
// global fallback.
func (s *SQLiteStore) SetActive(taxYear int, federalID, stateID, localSalesTaxID string) error {
	_, err := s.db.Exec(
		`INSERT INTO ruleset_index (tax_year, federal_id, state_id, local_sales_tax_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(tax_year) DO UPDATE SET
			federal_id = excluded.federal_id,
			state_id = excluded.state_id,
			local_sales_tax_id = excluded.local_sales_tax_id`,
		taxYear, federalID, stateID, nullable(localSalesTaxID))
	if err != nil {
		return errors.Store("set active ruleset versions", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
