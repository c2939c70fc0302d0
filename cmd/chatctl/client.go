package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	defaultTimeout = 90 * time.Second
	chatIDHeader   = "X-Chat-Id"
)

type clientOptions struct {
	server  string
	token   string
	timeout time.Duration
}

// apiError is a non-2xx response decoded from the service's error envelope.
type apiError struct {
	Status    int
	Type      string
	Message   string
	RequestID string
	ChatID    string
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
	if e.ChatID != "" {
		msg += fmt.Sprintf(" [chat %s]", e.ChatID)
	}
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request %s)", e.RequestID)
	}
	return msg
}

type apiClient struct {
	http *resty.Client
}

func newAPIClient(opts *clientOptions) *apiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.server, "/")).
		SetTimeout(opts.timeout).
		SetHeader("Accept", "application/json")
	if opts.token != "" {
		client.SetAuthToken(opts.token)
	}
	return &apiClient{http: client}
}

func (c *apiClient) Close() {
	_ = c.http.Close()
}

type errorEnvelope struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var envelope errorEnvelope
	req := c.http.R().SetContext(ctx).SetError(&envelope)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &apiError{
		Status:  resp.StatusCode(),
		Type:    "http_error",
		Message: http.StatusText(resp.StatusCode()),
		ChatID:  resp.Header().Get(chatIDHeader),
	}
	if envelope.Error != nil {
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
		apiErr.RequestID = envelope.Error.RequestID
	}
	return apiErr
}

type message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type metadata struct {
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	MessageCount int        `json:"messageCount"`
	Duration     float64    `json:"duration"`
}

type chat struct {
	ChatID   string    `json:"chatId"`
	Title    string    `json:"title"`
	UserID   *string   `json:"userId"`
	Messages []message `json:"messages"`
	Metadata metadata  `json:"metadata"`
}

type chatList struct {
	Chats []chat `json:"chats"`
}

type sendResult struct {
	ChatID   string    `json:"chatId"`
	Message  string    `json:"message"`
	Messages []message `json:"messages"`
}

type statusResult struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}
