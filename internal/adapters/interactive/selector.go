package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// ErrNonInteractive is returned when a choice is needed but prompts are disabled
var ErrNonInteractive = errors.New("interactive selection not available in non-interactive mode, pass --token-id")

// SelectorAdapter asks the user to pick positions on the terminal
type SelectorAdapter struct {
	config *config.RuntimeConfig
	// multiSelect runs the checkbox list, replaced in tests
	multiSelect func(labels []string, title string) ([]int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg, multiSelect: runMultiSelect}
}

// SelectPosition selects one position from a list
func (s *SelectorAdapter) SelectPosition(ctx context.Context, positions []*usecase.PositionView, prompt string) (*usecase.PositionView, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions provided for selection")
	}
	if len(positions) == 1 {
		return positions[0], nil
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	options := positionLabels(positions)
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	return positions[index], nil
}

// SelectPositions lets the user tick several positions
func (s *SelectorAdapter) SelectPositions(ctx context.Context, positions []*usecase.PositionView, prompt string) ([]*usecase.PositionView, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions provided for selection")
	}
	if len(positions) == 1 {
		return positions, nil
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	indices, err := s.multiSelect(positionLabels(positions), prompt)
	if err != nil {
		return nil, err
	}
	selected := make([]*usecase.PositionView, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(positions) {
			selected = append(selected, positions[i])
		}
	}
	return selected, nil
}

func positionLabels(positions []*usecase.PositionView) []string {
	labels := make([]string, len(positions))
	for i, p := range positions {
		labels[i] = p.Label()
	}
	return labels
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var _ usecase.PositionSelector = (*SelectorAdapter)(nil)
