package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/chatbot"
)

// Chat answers one assistant message.
func (h *Handler) Chat(c *gin.Context) {
	var req chatbot.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.chatSvc.Respond(c.Request.Context(), req))
}

// TrendingQuestions returns the most frequently asked questions.
func (h *Handler) TrendingQuestions(c *gin.Context) {
	items, err := h.chatSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err, "chat_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": items})
}
