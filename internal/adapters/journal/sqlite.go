package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at_ms INTEGER NOT NULL,
	operation TEXT NOT NULL,
	network TEXT NOT NULL,
	chain_id INTEGER NOT NULL,
	sender TEXT NOT NULL,
	label TEXT NOT NULL,
	tx_hash TEXT NOT NULL,
	status TEXT NOT NULL,
	block_number INTEGER DEFAULT 0,
	gas_used INTEGER DEFAULT 0,
	to_address TEXT,
	contract_address TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_network ON transactions(network, created_at_ms DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_hash ON transactions(tx_hash);
`

// SQLiteJournal keeps every submitted transaction in a local SQLite file.
// The database is opened on first use.
type SQLiteJournal struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteJournal creates a journal stored at the configured path
func NewSQLiteJournal(cfg *config.RuntimeConfig, log *slog.Logger) *SQLiteJournal {
	path := cfg.JournalPath
	if path == "" {
		path = filepath.Join(cfg.DataDir, "journal.db")
	}
	return &SQLiteJournal{path: path, log: log.With("component", "Journal")}
}

func (j *SQLiteJournal) open() (*sql.DB, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db != nil {
		return j.db, nil
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_sync=NORMAL&_busy_timeout=5000", j.path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	j.db = db
	return db, nil
}

// Record appends one transaction
func (j *SQLiteJournal) Record(ctx context.Context, entry *models.JournalEntry) error {
	db, err := j.open()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO transactions (
			created_at_ms, operation, network, chain_id, sender, label, tx_hash,
			status, block_number, gas_used, to_address, contract_address
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CreatedAt.UnixMilli(), entry.Operation, entry.Network, entry.ChainID, entry.Sender,
		entry.Label, entry.Hash, string(entry.Status), entry.BlockNumber, entry.GasUsed,
		entry.To, entry.ContractAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", entry.Hash, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	j.log.Debug("journaled transaction", "id", entry.ID, "hash", entry.Hash)
	return nil
}

// List returns entries newest first
func (j *SQLiteJournal) List(ctx context.Context, filter usecase.JournalFilter) ([]*models.JournalEntry, error) {
	db, err := j.open()
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Network != "" {
		where = append(where, "network = ?")
		args = append(args, filter.Network)
	}
	if filter.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, filter.Operation)
	}

	query := `SELECT id, created_at_ms, operation, network, chain_id, sender, label, tx_hash,
		status, block_number, gas_used, COALESCE(to_address, ''), COALESCE(contract_address, '')
		FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at_ms DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []*models.JournalEntry{}
	for rows.Next() {
		var (
			e         models.JournalEntry
			createdAt int64
			status    string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Operation, &e.Network, &e.ChainID, &e.Sender, &e.Label,
			&e.Hash, &status, &e.BlockNumber, &e.GasUsed, &e.To, &e.ContractAddress); err != nil {
			return nil, fmt.Errorf("failed to read journal row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		e.Status = models.TransactionStatus(status)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close releases the database handle
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

var _ usecase.TxJournal = (*SQLiteJournal)(nil)
