package abi

import (
	"fmt"
	"log/slog"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// EventDecoder decodes receipt logs against a contract ABI
type EventDecoder struct {
	log *slog.Logger
}

// NewEventDecoder creates a new event decoder
func NewEventDecoder(log *slog.Logger) *EventDecoder {
	return &EventDecoder{log: log.With("component", "EventDecoder")}
}

// Decode returns the decoded event, or nil when the ABI declares no event with the log's signature
func (e *EventDecoder) Decode(log *types.Log, contractABI *ethabi.ABI) (*models.DecodedEvent, error) {
	// Anonymous events have no signature topic and are never matched
	if log == nil || contractABI == nil || len(log.Topics) == 0 {
		return nil, nil
	}

	event, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, nil
	}

	fields := make(map[string]any, len(event.Inputs))

	// Indexed parameters come from the topics after the signature
	var indexed ethabi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if len(log.Topics)-1 < len(indexed) {
			return nil, fmt.Errorf("%s: expected %d indexed topics, got %d", event.Name, len(indexed), len(log.Topics)-1)
		}
		if err := ethabi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("failed to parse %s topics: %w", event.Name, err)
		}
	}

	// Then the rest from the data section
	if len(log.Data) > 0 {
		if err := event.Inputs.UnpackIntoMap(fields, log.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
		}
	}

	e.log.Debug("decoded event", "event", event.Name, "address", log.Address, "tx", log.TxHash)

	return &models.DecodedEvent{
		Name:        event.RawName,
		Address:     log.Address,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
		Fields:      fields,
	}, nil
}

var _ usecase.EventDecoder = (*EventDecoder)(nil)
