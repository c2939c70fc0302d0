package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "chefgpt-server/internal/domain/conversation"
)

func TestConversationRowRecomputesStats(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	conv := domain.NewConversation("c-1", domain.Anonymous, start)
	conv.AppendTurn(domain.SpeakerCaller, "hello", start.Add(time.Minute))
	conv.AppendTurn(domain.SpeakerAssistant, "hi", start.Add(3*time.Minute))

	row := NewConversation(conv)
	assert.Nil(t, row.OwnerID)
	assert.Equal(t, 2, row.TurnCount)

	// Denormalised columns are ignored on the way back.
	row.TurnCount = 99
	row.DurationMS = 0

	back := row.EtoD()
	assert.Equal(t, domain.Anonymous, back.Owner)
	assert.Equal(t, 2, back.Stats.Count)
	require.NotNil(t, back.Stats.LastTurnAt)
	assert.Equal(t, start.Add(3*time.Minute), *back.Stats.LastTurnAt)
	assert.Equal(t, domain.SpeakerAssistant, back.Turns[1].Speaker)
}

func TestTurnsColumnValue(t *testing.T) {
	row := NewConversation(domain.NewConversation("c-2", "u-1", time.Now()))
	value, err := row.Turns.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value.([]byte)))

	cols := row.UpdateColumns()
	assert.Equal(t, row.Version+1, cols["version"])
}
