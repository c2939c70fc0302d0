package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/interfaces/httpserver/middlewares"
	"chefgpt-server/internal/interfaces/httpserver/requests"
	"chefgpt-server/internal/interfaces/httpserver/responses"
	"chefgpt-server/internal/utils/platformerrors"
)

// ChatIDHeader names the conversation that holds an unanswered caller turn
// when the assistant could not reply.
const ChatIDHeader = "X-Chat-Id"

// ChatHandler exposes the conversation endpoints.
type ChatHandler struct {
	service domain.Service
	log     zerolog.Logger
}

func NewChatHandler(service domain.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("component", "chat-handler").Logger(),
	}
}

// Create godoc
// @Summary      Create or resume a chat
// @Description  Returns the chat named by chatId, or starts a new one owned by the caller (or a guest chat).
// @Description  Another owner's chat is refused with 403.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateChatRequest  false  "Optional chat to resume"
// @Success      200      {object}  responses.ChatResponse
// @Failure      403      {object}  platformerrors.HTTPErrorResponse
// @Failure      404      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/create [post]
func (h *ChatHandler) Create(c *gin.Context) {
	var req requests.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}

	conv, err := h.service.CreateOrResume(c.Request.Context(), middlewares.OwnerFromContext(c), req.ChatID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewChatResponse(conv))
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Appends the caller's message, asks the assistant, and returns its reply with the full transcript.
// @Description  When the assistant is unavailable the response is 503 and the X-Chat-Id header names the chat holding the stored message.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      requests.SendMessageRequest  true  "Message"
// @Success      200      {object}  responses.SendMessageResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      403      {object}  platformerrors.HTTPErrorResponse
// @Failure      503      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/message [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "message is required")
		return
	}

	exchange, err := h.service.AppendAndRespond(c.Request.Context(), middlewares.OwnerFromContext(c), req.ChatID, req.Message)
	if exchange != nil && exchange.ConversationID != "" {
		c.Header(ChatIDHeader, exchange.ConversationID)
	}
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewSendMessageResponse(exchange))
}

// List godoc
// @Summary      List my chats
// @Description  Returns the caller's most recent chats, newest first, without message bodies.
// @Tags         chat
// @Produce      json
// @Success      200  {object}  responses.ChatListResponse
// @Failure      401  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	summaries, err := h.service.ListByOwner(c.Request.Context(), middlewares.OwnerFromContext(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewChatListResponse(summaries))
}

// Get godoc
// @Summary      Get a chat
// @Tags         chat
// @Produce      json
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {object}  responses.ChatResponse
// @Failure      403     {object}  platformerrors.HTTPErrorResponse
// @Failure      404     {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/{chatId} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	conv, err := h.service.FetchByID(c.Request.Context(), middlewares.OwnerFromContext(c), c.Param("chatId"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewChatResponse(conv))
}

// Delete godoc
// @Summary      Delete a chat
// @Tags         chat
// @Produce      json
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {object}  responses.StatusResponse
// @Failure      403     {object}  platformerrors.HTTPErrorResponse
// @Failure      404     {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/{chatId} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteByID(c.Request.Context(), middlewares.OwnerFromContext(c), c.Param("chatId")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.StatusResponse{Message: "Chat deleted successfully"})
}

// Sync godoc
// @Summary      Claim a guest chat
// @Description  Moves a guest chat to the authenticated caller. Repeating the call for the same caller succeeds.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      requests.SyncChatRequest  true  "Guest chat id"
// @Success      200      {object}  responses.SyncResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      401      {object}  platformerrors.HTTPErrorResponse
// @Failure      404      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/chat/sync [post]
func (h *ChatHandler) Sync(c *gin.Context) {
	owner := middlewares.OwnerFromContext(c)
	if owner.IsAnonymous() {
		platformerrors.WriteError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeUnauthorized, "authentication required", nil, "3c8e1f52-7a04-4d69-b2e7-9f5c0a1d8e36"), h.log)
		return
	}

	var req requests.SyncChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "temporaryChatId is required")
		return
	}

	chatID, err := h.service.Reconcile(c.Request.Context(), owner, req.TemporaryChatID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.SyncResponse{Message: "Chat synced successfully", ChatID: chatID})
}
