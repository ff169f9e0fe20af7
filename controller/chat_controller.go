package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nindyaadesyana/chatbot/models"
	"github.com/nindyaadesyana/chatbot/services"
)

// ChatController handles the chat endpoint. It depends on the ChatService
// for the actual pipeline work.
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates the controller; the service dependency is
// injected from main.
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// Chat is the gin handler for POST /api/chat. Validation failures return
// 400; everything past validation produces a 200 with a natural-language
// answer, because backend failures are degraded inside the service layer.
func (c *ChatController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Prompt tidak valid"})
		return
	}

	result, err := c.chatService.ProcessMessage(ctx.Request.Context(), req.Prompt)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Gagal memproses pertanyaan"})
		return
	}

	ctx.JSON(http.StatusOK, models.ChatResponse{
		Response: result.Display,
		Speech:   result.Speech,
	})
}
