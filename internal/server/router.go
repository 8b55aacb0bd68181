package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memelab/memehub/internal/auth"
	"github.com/memelab/memehub/internal/chat"
	"github.com/memelab/memehub/internal/memes"
	"github.com/memelab/memehub/internal/upload"
	"github.com/memelab/memehub/internal/users"
)

const userIDContextKey = "memehub_user_id"

// Legacy cookies kept for the browser frontend. The session cookie is the
// only one the server trusts.
const (
	legacyUserIDCookie      = "user_id"
	legacyAccessTokenCookie = "access_token"
)

var (
	errMissingSessionManager = errors.New("session manager dependency required")
	errMissingOAuthClient    = errors.New("oauth client dependency required")
	errMissingUserService    = errors.New("user service dependency required")
	errMissingMemeService    = errors.New("meme service dependency required")
	errMissingChatService    = errors.New("chat service dependency required")
	errMissingUploadService  = errors.New("upload service dependency required")
)

// OAuthClient abstracts the external OAuth collaborator.
type OAuthClient interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (auth.ProviderTokens, error)
	FetchProfile(ctx context.Context, accessToken string) (auth.ProviderProfile, error)
}

// Dependencies bundles the services the router is built from.
type Dependencies struct {
	Sessions        *auth.SessionManager
	OAuth           OAuthClient
	UserService     *users.Service
	MemeService     *memes.Service
	ChatService     *chat.Service
	UploadService   *upload.Service
	Logger          *zap.Logger
	FrontendBaseURL string
}

// NewHTTPHandler wires every API route onto a gin engine.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessionManager
	}
	if deps.OAuth == nil {
		return nil, errMissingOAuthClient
	}
	if deps.UserService == nil {
		return nil, errMissingUserService
	}
	if deps.MemeService == nil {
		return nil, errMissingMemeService
	}
	if deps.ChatService == nil {
		return nil, errMissingChatService
	}
	if deps.UploadService == nil {
		return nil, errMissingUploadService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := &httpHandler{
		sessions:        deps.Sessions,
		oauth:           deps.OAuth,
		userService:     deps.UserService,
		memeService:     deps.MemeService,
		chatService:     deps.ChatService,
		uploadService:   deps.UploadService,
		logger:          logger,
		frontendBaseURL: deps.FrontendBaseURL,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")

	api.GET("/memes", handler.handleListMemes)
	api.GET("/memes/:id", handler.handleGetMeme)
	api.GET("/rankings", handler.handleRankings)
	api.GET("/search", handler.handleSearch)

	api.GET("/auth/login", handler.handleLogin)
	api.GET("/auth/callback", handler.handleCallback)
	api.POST("/auth/logout", handler.handleLogout)

	authed := api.Group("/")
	authed.Use(handler.requireSession)
	authed.GET("/auth/me", handler.handleMe)
	authed.POST("/memes/submit", handler.handleSubmitMeme)
	authed.POST("/memes/:id/vote", handler.handleVote)
	authed.GET("/memes/:id/vote", handler.handleVoteStatus)
	authed.POST("/memes/:id/favorite", handler.handleFavorite)
	authed.GET("/memes/:id/favorite", handler.handleFavoriteStatus)
	authed.POST("/memes/:id/comments", handler.handleCreateComment)
	authed.GET("/user/memes", handler.handleUserMemes)
	authed.GET("/user/favorites", handler.handleUserFavorites)
	authed.GET("/user/votes", handler.handleUserVotes)
	authed.POST("/upload", handler.handleUpload)
	authed.POST("/chat/characters", handler.handleCreateCharacter)
	authed.GET("/chat/:characterId/messages", handler.handleListChatMessages)
	authed.POST("/chat/:characterId/messages", handler.handleSendChatMessage)

	// Comment listing and the character roster are readable without a
	// session; the roster simply narrows to presets.
	api.GET("/memes/:id/comments", handler.handleListComments)
	api.GET("/chat/characters", handler.handleListCharacters)

	admin := api.Group("/admin")
	admin.Use(handler.requireSession, handler.requireAdmin)
	admin.GET("/stats", handler.handleAdminStats)
	admin.GET("/memes", handler.handleAdminListMemes)
	admin.PATCH("/memes/:id", handler.handleAdminSetStatus)
	admin.DELETE("/memes/:id", handler.handleAdminDeleteMeme)

	return router, nil
}

type httpHandler struct {
	sessions        *auth.SessionManager
	oauth           OAuthClient
	userService     *users.Service
	memeService     *memes.Service
	chatService     *chat.Service
	uploadService   *upload.Service
	logger          *zap.Logger
	frontendBaseURL string
}

// requireSession authenticates the request from the session cookie and
// stashes the user id in the gin context.
func (h *httpHandler) requireSession(c *gin.Context) {
	userID, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		if !errors.Is(err, auth.ErrMissingSessionCookie) {
			h.logger.Warn("session validation failed", zap.Error(err))
		}
		abortError(c, http.StatusUnauthorized, "请先登录")
		return
	}
	c.Set(userIDContextKey, userID)
	c.Next()
}

// requireAdmin gates moderation routes on the single admin predicate.
func (h *httpHandler) requireAdmin(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	isAdmin, err := h.userService.IsAdmin(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("admin check failed", zap.String("user_id", userID), zap.Error(err))
		abortError(c, http.StatusInternalServerError, "服务器错误")
		return
	}
	if !isAdmin {
		abortError(c, http.StatusForbidden, "无权访问")
		return
	}
	c.Next()
}

// sessionUserID returns the authenticated user for handlers that run behind
// requireSession.
func (h *httpHandler) sessionUserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}

// optionalSessionUserID resolves the session identity when present without
// failing the request.
func (h *httpHandler) optionalSessionUserID(c *gin.Context) string {
	userID, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		return ""
	}
	return userID
}
