package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

func newJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	cfg := &config.RuntimeConfig{JournalPath: filepath.Join(t.TempDir(), "nested", "journal.db")}
	j := NewSQLiteJournal(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func entry(op, network, hash string, at time.Time) *models.JournalEntry {
	return &models.JournalEntry{
		Operation: op,
		Network:   network,
		ChainID:   31337,
		Sender:    "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		CreatedAt: at,
		TxRecord: models.TxRecord{
			Label:       op + " tx",
			Hash:        hash,
			Status:      models.TransactionStatusExecuted,
			BlockNumber: 12,
			GasUsed:     21000,
		},
	}
}

func TestSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	j := newJournal(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := entry("swap", "localhost", "0x01", base)
	first.To = "0x1000000000000000000000000000000000000001"
	require.NoError(t, j.Record(ctx, first))
	assert.NotZero(t, first.ID)

	require.NoError(t, j.Record(ctx, entry("fees collect", "localhost", "0x02", base.Add(time.Minute))))
	require.NoError(t, j.Record(ctx, entry("swap", "sepolia", "0x03", base.Add(2*time.Minute))))
	require.NoError(t, j.Record(ctx, entry("swap", "localhost", "0x04", base.Add(3*time.Minute))))

	tests := []struct {
		name   string
		filter usecase.JournalFilter
		hashes []string
	}{
		{name: "everything newest first", filter: usecase.JournalFilter{}, hashes: []string{"0x04", "0x03", "0x02", "0x01"}},
		{name: "by network", filter: usecase.JournalFilter{Network: "localhost"}, hashes: []string{"0x04", "0x02", "0x01"}},
		{name: "by operation", filter: usecase.JournalFilter{Network: "localhost", Operation: "swap"}, hashes: []string{"0x04", "0x01"}},
		{name: "limit", filter: usecase.JournalFilter{Limit: 2}, hashes: []string{"0x04", "0x03"}},
		{name: "no match", filter: usecase.JournalFilter{Network: "mainnet"}, hashes: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := j.List(ctx, tt.filter)
			require.NoError(t, err)
			hashes := make([]string, len(entries))
			for i, e := range entries {
				hashes[i] = e.Hash
			}
			assert.Equal(t, tt.hashes, hashes)
		})
	}

	t.Run("fields round trip", func(t *testing.T) {
		entries, err := j.List(ctx, usecase.JournalFilter{Operation: "swap", Network: "localhost"})
		require.NoError(t, err)
		got := entries[len(entries)-1]
		assert.Equal(t, first.ID, got.ID)
		assert.True(t, base.Equal(got.CreatedAt))
		assert.Equal(t, first.TxRecord, got.TxRecord)
		assert.Equal(t, uint64(31337), got.ChainID)
	})
}
