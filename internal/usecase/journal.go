package usecase

import (
	"context"

	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// ListJournalParams filters the journal listing
type ListJournalParams struct {
	Operation string
	// AllNetworks lists entries of every network instead of the selected one
	AllNetworks bool
	Limit       int
}

// ListJournalResult contains journal entries, newest first
type ListJournalResult struct {
	Entries []*models.JournalEntry `json:"entries"`
}

// ListJournal lists transactions recorded by earlier runs
type ListJournal struct {
	journal TxJournal
	network string
}

// NewListJournal creates a new ListJournal use case
func NewListJournal(journal TxJournal, network CurrentNetwork) *ListJournal {
	return &ListJournal{journal: journal, network: string(network)}
}

// Run executes the listing
func (uc *ListJournal) Run(ctx context.Context, params ListJournalParams) (*ListJournalResult, error) {
	filter := JournalFilter{Operation: params.Operation, Limit: params.Limit}
	if !params.AllNetworks {
		filter.Network = uc.network
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	entries, err := uc.journal.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListJournalResult{Entries: entries}, nil
}
