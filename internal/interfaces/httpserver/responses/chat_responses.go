package responses

import (
	"math"
	"time"

	domain "chefgpt-server/internal/domain/conversation"
)

// MessageResponse is one turn as the web client renders it.
type MessageResponse struct {
	Role      string    `json:"role" example:"user"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MetadataResponse carries the derived conversation stats.
type MetadataResponse struct {
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	MessageCount    int        `json:"messageCount"`
	DurationMinutes float64    `json:"duration" example:"2.5"`
}

// ChatResponse is a full conversation.
type ChatResponse struct {
	ChatID   string            `json:"chatId"`
	Title    string            `json:"title"`
	UserID   *string           `json:"userId"`
	Messages []MessageResponse `json:"messages"`
	Metadata MetadataResponse  `json:"metadata"`
}

// ChatSummaryResponse is a list entry, without turn bodies.
type ChatSummaryResponse struct {
	ChatID   string           `json:"chatId"`
	Title    string           `json:"title"`
	Metadata MetadataResponse `json:"metadata"`
}

// ChatListResponse wraps the caller's conversations.
type ChatListResponse struct {
	Chats []ChatSummaryResponse `json:"chats"`
}

// SendMessageResponse is the outcome of one exchange.
type SendMessageResponse struct {
	ChatID   string            `json:"chatId"`
	Message  string            `json:"message"`
	Messages []MessageResponse `json:"messages"`
}

// SyncResponse reports the reconciled conversation id.
type SyncResponse struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

// StatusResponse is a plain acknowledgement.
type StatusResponse struct {
	Message string `json:"message"`
}

func NewChatResponse(conv *domain.Conversation) ChatResponse {
	var owner *string
	if !conv.IsGuest() {
		id := string(conv.Owner)
		owner = &id
	}
	return ChatResponse{
		ChatID:   conv.ID,
		Title:    conv.Title,
		UserID:   owner,
		Messages: NewMessageResponses(conv.Turns),
		Metadata: NewMetadataResponse(conv.Stats),
	}
}

func NewChatListResponse(summaries []domain.Summary) ChatListResponse {
	chats := make([]ChatSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		chats = append(chats, ChatSummaryResponse{ChatID: s.ID, Title: s.Title, Metadata: NewMetadataResponse(s.Stats)})
	}
	return ChatListResponse{Chats: chats}
}

func NewSendMessageResponse(exchange *domain.Exchange) SendMessageResponse {
	resp := SendMessageResponse{ChatID: exchange.ConversationID, Message: exchange.Reply, Messages: []MessageResponse{}}
	if exchange.Conversation != nil {
		resp.Messages = NewMessageResponses(exchange.Conversation.Turns)
	}
	return resp
}

func NewMessageResponses(turns []domain.Turn) []MessageResponse {
	messages := make([]MessageResponse, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, MessageResponse{Role: string(turn.Speaker), Content: turn.Text, Timestamp: turn.CreatedAt})
	}
	return messages
}

func NewMetadataResponse(stats domain.Stats) MetadataResponse {
	return MetadataResponse{
		StartTime:       stats.StartedAt,
		EndTime:         stats.LastTurnAt,
		MessageCount:    stats.Count,
		DurationMinutes: math.Round(stats.Duration.Minutes()*100) / 100,
	}
}
