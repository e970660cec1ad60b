package handler

import (
	"github.com/gin-gonic/gin"

	"cine-rag-api/internal/application/chat"
	"cine-rag-api/internal/interfaces/http/dto"
	"cine-rag-api/pkg/logger"
)

// ChatHandler 影片问答处理器
type ChatHandler struct {
	engine *chat.Engine
}

// NewChatHandler 创建问答处理器
func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatMovies 影片问答
// @Summary 影片问答
// @Description 基于目录检索回答影片问题，生成失败时降级为固定话术
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "问题"
// @Success 200 {object} dto.Response[dto.ChatResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/chat/movies [post]
func (h *ChatHandler) ChatMovies(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	answer, err := h.engine.Answer(ctx, req.Question, req.TopK)
	if err != nil {
		logger.Error(ctx, "chat request failed", err)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToChatResponse(answer))
}
