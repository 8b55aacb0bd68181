package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memelab/memehub/internal/memes"
)

func (h *httpHandler) handleAdminStats(c *gin.Context) {
	stats, err := h.memeService.CollectStats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats collection failed", zap.Error(err))
		respondServiceError(c, err)
		return
	}
	totalUsers, err := h.userService.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("user count failed", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"totalMemes":    stats.TotalMemes,
		"pendingMemes":  stats.PendingMemes,
		"approvedMemes": stats.ApprovedMemes,
		"rejectedMemes": stats.RejectedMemes,
		"totalUsers":    totalUsers,
		"totalVotes":    stats.TotalVotes,
		"totalComments": stats.TotalComments,
	})
}

func (h *httpHandler) handleAdminListMemes(c *gin.Context) {
	list, pagination, err := h.memeService.AdminList(
		c.Request.Context(),
		c.DefaultQuery("status", "all"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 10),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list, "pagination": pagination})
}

type setStatusPayload struct {
	Status string `json:"status"`
}

func (h *httpHandler) handleAdminSetStatus(c *gin.Context) {
	var payload setStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	status, ok := memes.ParseStatus(payload.Status)
	if !ok || status == memes.StatusPending {
		respondError(c, http.StatusBadRequest, "无效的状态")
		return
	}

	meme, err := h.memeService.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "已通过审核"
	if status == memes.StatusRejected {
		message = "已拒绝"
	}
	respondOKMessage(c, gin.H{"meme": meme}, message)
}

func (h *httpHandler) handleAdminDeleteMeme(c *gin.Context) {
	if err := h.memeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "删除成功"})
}
