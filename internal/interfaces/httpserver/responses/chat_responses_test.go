package responses_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/interfaces/httpserver/responses"
)

func TestMetadataDurationIsFractionalMinutes(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := start.Add(2*time.Minute + 30*time.Second)

	meta := responses.NewMetadataResponse(domain.Stats{Count: 2, StartedAt: start, LastTurnAt: &last, Duration: last.Sub(start)})
	assert.Equal(t, 2.5, meta.DurationMinutes)
	assert.Equal(t, 2, meta.MessageCount)

	meta = responses.NewMetadataResponse(domain.Stats{Count: 2, StartedAt: start, Duration: 20 * time.Second})
	assert.Equal(t, 0.33, meta.DurationMinutes)

	meta = responses.NewMetadataResponse(domain.Stats{StartedAt: start})
	assert.Zero(t, meta.DurationMinutes)
	assert.Nil(t, meta.EndTime)
}
