package models

import "time"

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusExecuted TransactionStatus = "EXECUTED"
	TransactionStatusFailed   TransactionStatus = "FAILED"
	TransactionStatusReverted TransactionStatus = "REVERTED"
	// TransactionStatusPending is a broadcast transaction whose receipt was never seen
	TransactionStatusPending TransactionStatus = "PENDING"
)

// TxRecord is a transaction submitted during one command run
type TxRecord struct {
	Label       string            `json:"label"`
	Hash        string            `json:"hash"`
	Status      TransactionStatus `json:"status"`
	BlockNumber uint64            `json:"blockNumber,omitempty"`
	GasUsed     uint64            `json:"gasUsed,omitempty"`
	To          string            `json:"to,omitempty"`
	// ContractAddress is set for contract creations
	ContractAddress string `json:"contractAddress,omitempty"`
}

// JournalEntry is a transaction persisted in the local journal
type JournalEntry struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Network   string    `json:"network"`
	ChainID   uint64    `json:"chainId"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
	TxRecord
}
