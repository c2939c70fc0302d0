package conversationrepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	domain "chefgpt-server/internal/domain/conversation"
)

func TestChatDocRoundTrip(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	conv := domain.NewConversation("c1", "alice", start)
	conv.DeriveTitle("كبسة", 50)
	conv.AppendTurn(domain.SpeakerCaller, "كبسة", start.Add(time.Second))
	conv.AppendTurn(domain.SpeakerAssistant, "المقادير", start.Add(2*time.Minute))
	conv.FinalizeTitle()
	conv.Version = 4

	raw, err := bson.Marshal(newChatDoc(conv))
	require.NoError(t, err)

	var doc chatDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.NotNil(t, doc.UserID)
	assert.Equal(t, "alice", *doc.UserID)
	assert.Equal(t, 2, doc.Metadata.MessageCount)

	got := doc.toDomain()
	assert.Equal(t, conv.Owner, got.Owner)
	assert.Equal(t, conv.Title, got.Title)
	assert.Equal(t, domain.TitleFinal, got.TitleState)
	assert.Equal(t, int64(4), got.Version)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, domain.SpeakerAssistant, got.Turns[1].Speaker)
	assert.True(t, start.Add(2*time.Minute).Equal(got.Turns[1].CreatedAt))
	assert.Equal(t, conv.Stats.Duration, got.Stats.Duration)
}

func TestChatDocGuestAndLegacyTitleState(t *testing.T) {
	doc := chatDoc{ID: "g", Title: domain.DefaultTitle, CreatedAt: time.Now().UTC()}
	conv := doc.toDomain()
	assert.True(t, conv.IsGuest())
	assert.Equal(t, domain.TitleDefault, conv.TitleState)
	assert.Equal(t, 0, conv.Stats.Count)

	doc = chatDoc{ID: "legacy", Title: "Old chat", Messages: []messageDoc{{Role: "user", Content: "Old chat", Timestamp: time.Now().UTC()}}}
	conv = doc.toDomain()
	assert.Equal(t, domain.TitleFinal, conv.TitleState)
	assert.Equal(t, 1, conv.Stats.Count)

	assert.Nil(t, newChatDoc(domain.NewConversation("x", domain.Anonymous, time.Now())).UserID)
}
