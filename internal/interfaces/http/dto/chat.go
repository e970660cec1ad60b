package dto

import (
	"cine-rag-api/internal/application/chat"
)

// ChatRequest 影片问答请求
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
}

// ChatResponse 影片问答响应
type ChatResponse struct {
	Answer string     `json:"answer"`
	Hits   []chat.Hit `json:"hits"`
}

// ToChatResponse 问答结果转响应
func ToChatResponse(answer *chat.Answer) *ChatResponse {
	return &ChatResponse{
		Answer: answer.Text,
		Hits:   answer.Hits,
	}
}
