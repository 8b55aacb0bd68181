package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleListCharacters(c *gin.Context) {
	characters, err := h.chatService.ListCharacters(c.Request.Context(), h.optionalSessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"characters": characters})
}

type createCharacterPayload struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Avatar      string `json:"avatar"`
}

func (h *httpHandler) handleCreateCharacter(c *gin.Context) {
	var payload createCharacterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	character, err := h.chatService.CreateCharacter(c.Request.Context(), h.sessionUserID(c), payload.Name, payload.Personality, payload.Avatar)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOKMessage(c, gin.H{"character": character}, "创建成功")
}

func (h *httpHandler) handleListChatMessages(c *gin.Context) {
	messages, err := h.chatService.ListMessages(c.Request.Context(), c.Param("characterId"), h.sessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"messages": messages})
}

type chatMessagePayload struct {
	Message string `json:"message"`
}

func (h *httpHandler) handleSendChatMessage(c *gin.Context) {
	var payload chatMessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	userMessage, aiMessage, err := h.chatService.SendMessage(c.Request.Context(), c.Param("characterId"), h.sessionUserID(c), payload.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"userMessage": userMessage, "aiMessage": aiMessage})
}
