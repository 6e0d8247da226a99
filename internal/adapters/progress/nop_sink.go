package progress

import (
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewNopSink creates a progress sink that drops every event
func NewNopSink() usecase.ProgressSink {
	return usecase.NopProgress{}
}

// NewProgressSink picks the spinner for terminals and a silent sink for
// non-interactive and JSON output
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON {
		return NewNopSink()
	}
	return NewSpinnerProgressReporter()
}
