package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memelab/memehub/internal/chat"
	"github.com/memelab/memehub/internal/memes"
	"github.com/memelab/memehub/internal/upload"
	"github.com/memelab/memehub/internal/users"
)

// envelope is the JSON shape shared by every API response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondOKMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Error: message})
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: message})
}

// serviceErrorStatus maps domain sentinel errors onto the HTTP taxonomy:
// NotFound 404, Conflict 409, ValidationError 400, everything else 500.
func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, memes.ErrMemeNotFound):
		return http.StatusNotFound, "梗不存在"
	case errors.Is(err, memes.ErrCommentNotFound):
		return http.StatusNotFound, "评论不存在"
	case errors.Is(err, chat.ErrCharacterNotFound):
		return http.StatusNotFound, "角色不存在"
	case errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound, "用户不存在"
	case errors.Is(err, memes.ErrAlreadyVoted):
		return http.StatusConflict, "已经投过票了"
	case errors.Is(err, memes.ErrNotYetVoted):
		return http.StatusConflict, "还没有投过票"
	case errors.Is(err, memes.ErrAlreadyFavorited):
		return http.StatusConflict, "已经收藏过了"
	case errors.Is(err, memes.ErrNotFavorited):
		return http.StatusConflict, "还没有收藏"
	case errors.Is(err, memes.ErrReplyTooDeep):
		return http.StatusBadRequest, "不支持多层回复"
	case errors.Is(err, memes.ErrParentMemeMismatch):
		return http.StatusBadRequest, "父评论不属于该梗"
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, "消息不能为空"
	case errors.Is(err, chat.ErrInvalidCharacter):
		return http.StatusBadRequest, "名称和性格描述不能为空"
	case errors.Is(err, upload.ErrMissingFile):
		return http.StatusBadRequest, "请选择图片"
	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusBadRequest, "图片大小不能超过 5MB"
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusBadRequest, "仅支持 JPEG、PNG、GIF、WebP 格式"
	case memes.IsValidation(err):
		return http.StatusBadRequest, validationMessage(err)
	default:
		return http.StatusInternalServerError, "服务器错误"
	}
}

func validationMessage(err error) string {
	var validationErr *memes.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return "参数错误"
}

func respondServiceError(c *gin.Context, err error) {
	status, message := serviceErrorStatus(err)
	respondError(c, status, message)
}
