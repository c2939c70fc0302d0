package requests

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// CreateChatRequest starts a conversation or resumes ChatID when given.
type CreateChatRequest struct {
	ChatID string `json:"chatId"`
}

// SendMessageRequest appends Message to ChatID, creating it when absent.
type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message" binding:"required,notblank"`
}

// SyncChatRequest moves a guest conversation to the caller.
type SyncChatRequest struct {
	TemporaryChatID string `json:"temporaryChatId" binding:"required,notblank"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by these requests.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}
