package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memelab/memehub/internal/memes"
)

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (h *httpHandler) handleListMemes(c *gin.Context) {
	sort := memes.SortHot
	if c.Query("sort") == string(memes.SortNew) {
		sort = memes.SortNew
	}

	list, pagination, err := h.memeService.List(c.Request.Context(), memes.ListRequest{
		Sort:  sort,
		Tag:   c.Query("tag"),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	})
	if err != nil {
		h.logger.Error("meme listing failed", zap.Error(err))
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list, "pagination": pagination})
}

func (h *httpHandler) handleGetMeme(c *gin.Context) {
	meme, related, err := h.memeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"meme": meme, "relatedMemes": related})
}

type submitMemePayload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
	ImageURL string `json:"imageUrl"`
}

func (h *httpHandler) handleSubmitMeme(c *gin.Context) {
	var payload submitMemePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	meme, err := h.memeService.Submit(c.Request.Context(), h.sessionUserID(c), memes.SubmitRequest{
		Title:    payload.Title,
		Content:  payload.Content,
		Tags:     payload.Tags,
		ImageURL: payload.ImageURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOKMessage(c, gin.H{"meme": meme}, "投稿成功！")
}

type votePayload struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

func (h *httpHandler) handleVote(c *gin.Context) {
	var payload votePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	action, ok := memes.ParseVoteAction(payload.Action)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的操作")
		return
	}

	// Identity comes from the session alone. A userId in the body is only
	// accepted when it agrees with the authenticated user.
	userID := h.sessionUserID(c)
	if payload.UserID != "" && payload.UserID != userID {
		respondError(c, http.StatusBadRequest, "用户身份不匹配")
		return
	}

	voted, err := h.memeService.ToggleVote(c.Request.Context(), c.Param("id"), userID, action)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "投票成功"
	if !voted {
		message = "取消投票成功"
	}
	respondOKMessage(c, gin.H{"voted": voted}, message)
}

func (h *httpHandler) handleVoteStatus(c *gin.Context) {
	userID := h.sessionUserID(c)
	if queried := strings.TrimSpace(c.Query("userId")); queried != "" && queried != userID {
		respondError(c, http.StatusBadRequest, "用户身份不匹配")
		return
	}

	voted, err := h.memeService.HasVoted(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"voted": voted})
}

type favoritePayload struct {
	Action string `json:"action"`
}

func (h *httpHandler) handleFavorite(c *gin.Context) {
	var payload favoritePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	var add bool
	switch payload.Action {
	case "add":
		add = true
	case "remove":
		add = false
	default:
		respondError(c, http.StatusBadRequest, "无效的操作")
		return
	}

	favorited, err := h.memeService.ToggleFavorite(c.Request.Context(), c.Param("id"), h.sessionUserID(c), add)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "收藏成功"
	if !favorited {
		message = "已取消收藏"
	}
	respondOKMessage(c, gin.H{"favorited": favorited}, message)
}

func (h *httpHandler) handleFavoriteStatus(c *gin.Context) {
	favorited, err := h.memeService.HasFavorited(c.Request.Context(), c.Param("id"), h.sessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"favorited": favorited})
}

func (h *httpHandler) handleListComments(c *gin.Context) {
	comments, err := h.memeService.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"comments": comments})
}

type commentPayload struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

func (h *httpHandler) handleCreateComment(c *gin.Context) {
	var payload commentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求")
		return
	}

	comment, err := h.memeService.CreateComment(c.Request.Context(), c.Param("id"), h.sessionUserID(c), payload.Content, payload.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOKMessage(c, gin.H{"comment": comment}, "评论成功")
}

func (h *httpHandler) handleRankings(c *gin.Context) {
	rankingType, ok := memes.ParseRankingType(c.DefaultQuery("type", string(memes.RankingToday)))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的榜单类型")
		return
	}

	list, err := h.memeService.Rankings(c.Request.Context(), rankingType, queryInt(c, "limit", 10))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list})
}

func (h *httpHandler) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	list, err := h.memeService.Search(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list, "query": query, "total": len(list)})
}

func (h *httpHandler) handleUserMemes(c *gin.Context) {
	list, err := h.memeService.ListByAuthor(c.Request.Context(), h.sessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list})
}

func (h *httpHandler) handleUserFavorites(c *gin.Context) {
	list, pagination, err := h.memeService.ListFavorites(c.Request.Context(), h.sessionUserID(c), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"memes": list, "pagination": pagination})
}

func (h *httpHandler) handleUserVotes(c *gin.Context) {
	votes, err := h.memeService.ListVotes(c.Request.Context(), h.sessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"votes": votes})
}
