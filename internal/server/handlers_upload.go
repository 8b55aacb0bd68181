package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *httpHandler) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "请选择图片")
		return
	}

	imageURL, err := h.uploadService.SaveImage(fileHeader)
	if err != nil {
		status, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("image upload failed", zap.Error(err))
			respondError(c, status, "上传失败")
			return
		}
		respondError(c, status, message)
		return
	}
	respondOKMessage(c, gin.H{"imageUrl": imageURL}, "上传成功")
}
