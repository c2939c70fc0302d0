package v1

import (
	"github.com/gin-gonic/gin"

	"chefgpt-server/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	chat := router.Group("/v1/chat")
	chat.POST("/create", r.handlers.Chat.Create)
	chat.POST("/message", r.handlers.Chat.SendMessage)
	chat.POST("/sync", r.handlers.Chat.Sync)
	chat.GET("/chats", r.handlers.Chat.List)
	chat.GET("/:chatId", r.handlers.Chat.Get)
	chat.DELETE("/:chatId", r.handlers.Chat.Delete)
}
