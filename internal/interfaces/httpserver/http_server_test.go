package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefgpt-server/internal/config"
	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/infrastructure/auth"
	"chefgpt-server/internal/infrastructure/lock"
	"chefgpt-server/internal/infrastructure/repository/conversationrepo"
	"chefgpt-server/internal/interfaces/httpserver"
	"chefgpt-server/internal/interfaces/httpserver/handlers"
	"chefgpt-server/internal/interfaces/httpserver/responses"
	"chefgpt-server/internal/utils/platformerrors"
	"chefgpt-server/pkg/testhelpers"
)

// tokenResolver treats the bearer value itself as the owner id.
type tokenResolver struct{}

func (tokenResolver) Resolve(_ context.Context, credential string) domain.OwnerID {
	return domain.OwnerID(strings.TrimPrefix(credential, "Bearer "))
}

type stubGateway struct {
	reply string
	err   error
}

func (g *stubGateway) Generate(context.Context, []domain.Turn, string) (string, error) {
	return g.reply, g.err
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("store down") }

func newServer(t *testing.T, gateway *stubGateway) (*httpserver.HttpServer, *conversationrepo.InMemoryStore) {
	t.Helper()
	cfg := &config.Config{
		ServiceName:     "chat-api",
		Environment:     "test",
		CORSOrigin:      "*",
		ShutdownTimeout: time.Second,
	}
	store := conversationrepo.NewInMemoryStore()
	service := domain.NewService(store, gateway, lock.NewLocalLocker(), domain.Config{SystemInstruction: "chef"}, zerolog.Nop())
	return httpserver.New(cfg, zerolog.Nop(), service, tokenResolver{}, store), store
}

func do(t *testing.T, srv *httpserver.HttpServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateChat(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "hi"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/create", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[responses.ChatResponse](t, rec)
	assert.NotEmpty(t, created.ChatID)
	assert.Equal(t, domain.DefaultTitle, created.Title)
	require.NotNil(t, created.UserID)
	assert.Equal(t, "alice", *created.UserID)
	assert.Empty(t, created.Messages)

	rec = do(t, srv, http.MethodPost, "/v1/chat/create", "alice", map[string]string{"chatId": created.ChatID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ChatID, decode[responses.ChatResponse](t, rec).ChatID)

	rec = do(t, srv, http.MethodPost, "/v1/chat/create", "", map[string]string{"chatId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumeForeignChatForbidden(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "secret recipe"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "alice", map[string]string{"message": "my private question"})
	require.Equal(t, http.StatusOK, rec.Code)
	chatID := decode[responses.SendMessageResponse](t, rec).ChatID

	for _, caller := range []string{"mallory", ""} {
		rec = do(t, srv, http.MethodGet, "/v1/chat/"+chatID, caller, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(t, srv, http.MethodPost, "/v1/chat/create", caller, map[string]string{"chatId": chatID})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret recipe")
		assert.NotContains(t, rec.Body.String(), "my private question")
	}
}

func TestCreateGuestChat(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "hi"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/create", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[responses.ChatResponse](t, rec).UserID)
}

func TestSendMessage(t *testing.T) {
	srv, store := newServer(t, &stubGateway{reply: "Try shakshuka."})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "alice", map[string]string{"message": "  eggs and tomatoes  "})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[responses.SendMessageResponse](t, rec)
	assert.Equal(t, "Try shakshuka.", out.Message)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "eggs and tomatoes", out.Messages[0].Content)
	assert.Equal(t, "model", out.Messages[1].Role)
	assert.Equal(t, out.ChatID, rec.Header().Get(handlers.ChatIDHeader))

	stored, err := store.FindByID(context.Background(), out.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "eggs and tomatoes", stored.Title)
	assert.Equal(t, domain.OwnerID("alice"), stored.Owner)
}

func TestSendMessageRejectsBlank(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "x"})

	for _, body := range []map[string]string{{}, {"message": "   "}} {
		rec := do(t, srv, http.MethodPost, "/v1/chat/message", "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errResp := decode[platformerrors.HTTPErrorResponse](t, rec)
		assert.Equal(t, "invalid_input", errResp.Error.Type)
	}
}

func TestSendMessageUpstreamFailureKeepsChatID(t *testing.T) {
	srv, store := newServer(t, &stubGateway{err: errors.New("quota exceeded")})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "", map[string]string{"chatId": "guest-1", "message": "hello"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "guest-1", rec.Header().Get(handlers.ChatIDHeader))
	errResp := decode[platformerrors.HTTPErrorResponse](t, rec)
	assert.Equal(t, "upstream_unavailable", errResp.Error.Type)
	assert.NotContains(t, errResp.Error.Message, "quota")

	stored, err := store.FindByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.Count)
}

func TestSendMessageForeignChatForbidden(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "ok"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "alice", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	chatID := decode[responses.SendMessageResponse](t, rec).ChatID

	rec = do(t, srv, http.MethodPost, "/v1/chat/message", "bob", map[string]string{"chatId": chatID, "message": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListChats(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "ok"})

	rec := do(t, srv, http.MethodGet, "/v1/chat/chats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, msg := range []string{"first", "second"} {
		rec = do(t, srv, http.MethodPost, "/v1/chat/message", "alice", map[string]string{"message": msg})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	do(t, srv, http.MethodPost, "/v1/chat/message", "bob", map[string]string{"message": "other"})

	rec = do(t, srv, http.MethodGet, "/v1/chat/chats", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[responses.ChatListResponse](t, rec)
	require.Len(t, list.Chats, 2)
	for _, chat := range list.Chats {
		assert.Equal(t, 2, chat.Metadata.MessageCount)
	}

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.NotContains(t, raw["chats"][0], "messages")
}

func TestGetAndDeleteChat(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{reply: "ok"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "alice", map[string]string{"message": "soup"})
	require.Equal(t, http.StatusOK, rec.Code)
	chatID := decode[responses.SendMessageResponse](t, rec).ChatID

	rec = do(t, srv, http.MethodGet, "/v1/chat/"+chatID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[responses.ChatResponse](t, rec)
	assert.Equal(t, "soup", got.Title)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, 2, got.Metadata.MessageCount)

	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodGet, "/v1/chat/"+chatID, "bob", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodDelete, "/v1/chat/"+chatID, "", nil).Code)

	rec = do(t, srv, http.MethodDelete, "/v1/chat/"+chatID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chat deleted successfully", decode[responses.StatusResponse](t, rec).Message)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/v1/chat/"+chatID, "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/v1/chat/"+chatID, "alice", nil).Code)
}

func TestSyncChat(t *testing.T) {
	srv, store := newServer(t, &stubGateway{reply: "ok"})

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "", map[string]string{"message": "guest question"})
	require.Equal(t, http.StatusOK, rec.Code)
	guestID := decode[responses.SendMessageResponse](t, rec).ChatID

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodPost, "/v1/chat/sync", "", map[string]string{"temporaryChatId": guestID}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/v1/chat/sync", "alice", map[string]string{}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/v1/chat/sync", "alice", map[string]string{"temporaryChatId": "missing"}).Code)

	for i := 0; i < 2; i++ {
		rec = do(t, srv, http.MethodPost, "/v1/chat/sync", "alice", map[string]string{"temporaryChatId": guestID})
		require.Equal(t, http.StatusOK, rec.Code)
		synced := decode[responses.SyncResponse](t, rec)
		assert.Equal(t, guestID, synced.ChatID)
		assert.Equal(t, "Chat synced successfully", synced.Message)
	}

	stored, err := store.FindByID(context.Background(), guestID)
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerID("alice"), stored.Owner)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/v1/chat/sync", "bob", map[string]string{"temporaryChatId": guestID}).Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newServer(t, &stubGateway{})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/readyz", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/", "", nil).Code)

	cfg := &config.Config{ServiceName: "chat-api", Environment: "test"}
	service := domain.NewService(conversationrepo.NewInMemoryStore(), &stubGateway{}, lock.NewLocalLocker(), domain.Config{}, zerolog.Nop())
	down := httpserver.New(cfg, zerolog.Nop(), service, tokenResolver{}, failingPinger{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/readyz", "", nil).Code)
}

func TestGuestToUserFlowWithSignedTokens(t *testing.T) {
	const secret = "kitchen-secret"
	resolver, err := auth.NewResolver(context.Background(), auth.Config{Secret: secret}, zerolog.Nop())
	require.NoError(t, err)
	defer resolver.Close()

	cfg := &config.Config{ServiceName: "chat-api", Environment: "test", ShutdownTimeout: time.Second}
	service := domain.NewService(conversationrepo.NewInMemoryStore(), &stubGateway{reply: "Add cumin."}, lock.NewLocalLocker(), domain.Config{}, zerolog.Nop())
	srv := httpserver.New(cfg, zerolog.Nop(), service, resolver, nil)

	rec := do(t, srv, http.MethodPost, "/v1/chat/message", "not-a-jwt", map[string]string{"message": "lentil soup"})
	require.Equal(t, http.StatusOK, rec.Code)
	guestID := decode[responses.SendMessageResponse](t, rec).ChatID

	token := testhelpers.UserToken(t, secret, "64f1c0ffee", time.Hour)
	rec = do(t, srv, http.MethodPost, "/v1/chat/sync", token, map[string]string{"temporaryChatId": guestID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/chat/chats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[responses.ChatListResponse](t, rec)
	require.Len(t, list.Chats, 1)
	assert.Equal(t, guestID, list.Chats[0].ChatID)

	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodGet, "/v1/chat/"+guestID, "", nil).Code)
}
