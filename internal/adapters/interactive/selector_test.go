package interactive

import (
	"context"
	"math/big"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

func views(ids ...int64) []*usecase.PositionView {
	out := make([]*usecase.PositionView, len(ids))
	for i, id := range ids {
		out[i] = &usecase.PositionView{
			Position: &models.Position{TokenID: big.NewInt(id), Liquidity: big.NewInt(1)},
			Token0:   models.Token{Symbol: "TKA", Decimals: 18},
			Token1:   models.Token{Symbol: "TKB", Decimals: 18},
		}
	}
	return out
}

func TestSelectorAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("single candidate needs no prompt", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
		candidates := views(7)

		one, err := s.SelectPosition(ctx, candidates, "pick")
		require.NoError(t, err)
		assert.Same(t, candidates[0], one)

		many, err := s.SelectPositions(ctx, candidates, "pick")
		require.NoError(t, err)
		assert.Equal(t, candidates, many)
	})

	t.Run("non-interactive refuses to prompt", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})

		_, err := s.SelectPosition(ctx, views(1, 2), "pick")
		assert.ErrorIs(t, err, ErrNonInteractive)

		_, err = s.SelectPositions(ctx, views(1, 2), "pick")
		assert.ErrorIs(t, err, ErrNonInteractive)
	})

	t.Run("empty list", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{})
		_, err := s.SelectPositions(ctx, nil, "pick")
		assert.Error(t, err)
	})

	t.Run("multi select maps indices", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{})
		s.multiSelect = func(labels []string, title string) ([]int, error) {
			assert.Len(t, labels, 3)
			assert.Equal(t, "collect fees", title)
			return []int{0, 2}, nil
		}
		candidates := views(1, 2, 3)

		got, err := s.SelectPositions(ctx, candidates, "collect fees")
		require.NoError(t, err)
		assert.Equal(t, []*usecase.PositionView{candidates[0], candidates[2]}, got)
	})
}

func TestMultiSelectModel(t *testing.T) {
	press := func(m tea.Model, keys ...string) tea.Model {
		for _, k := range keys {
			var msg tea.KeyMsg
			switch k {
			case "down":
				msg = tea.KeyMsg{Type: tea.KeyDown}
			case "enter":
				msg = tea.KeyMsg{Type: tea.KeyEnter}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}
			m, _ = m.Update(msg)
		}
		return m
	}

	t.Run("enter without selection keeps prompting", func(t *testing.T) {
		m := press(newMultiSelectModel([]string{"a", "b"}, "t"), "enter").(multiSelectModel)
		assert.False(t, m.done)
	})

	t.Run("toggle and confirm", func(t *testing.T) {
		m := press(newMultiSelectModel([]string{"a", "b", "c"}, "t"), "down", " ", "down", " ", "enter").(multiSelectModel)
		assert.True(t, m.done)
		assert.Equal(t, []int{1, 2}, m.indices())
	})

	t.Run("select all", func(t *testing.T) {
		m := press(newMultiSelectModel([]string{"a", "b"}, "t"), "a").(multiSelectModel)
		assert.Equal(t, []int{0, 1}, m.indices())
	})

	t.Run("quit cancels", func(t *testing.T) {
		m := press(newMultiSelectModel([]string{"a"}, "t"), "q").(multiSelectModel)
		assert.True(t, m.cancelled)
	})
}
