package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memelab/memehub/internal/users"
)

func (h *httpHandler) handleLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL())
}

func (h *httpHandler) handleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/?error=oauth_failed")
		return
	}

	tokens, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/?error=oauth_failed")
		return
	}

	profile, err := h.oauth.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		h.logger.Warn("oauth profile fetch failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/?error=oauth_failed")
		return
	}

	user, err := h.userService.UpsertFromProvider(ctx, users.Profile{
		ID:       profile.ID,
		Username: profile.DisplayName(),
		Avatar:   profile.AvatarURL(),
	}, users.Tokens{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		h.logger.Error("user upsert failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/?error=oauth_failed")
		return
	}

	sessionToken, _, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/?error=oauth_failed")
		return
	}

	maxAge := int(h.sessions.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), sessionToken, maxAge, "/", "", false, true)
	// Kept for the browser frontend; never trusted by the server.
	c.SetCookie(legacyUserIDCookie, user.ID, maxAge, "/", "", false, true)
	c.SetCookie(legacyAccessTokenCookie, tokens.AccessToken, maxAge, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, h.frontendBaseURL+"/")
}

func (h *httpHandler) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", false, true)
	c.SetCookie(legacyUserIDCookie, "", -1, "/", "", false, true)
	c.SetCookie(legacyAccessTokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "登出成功"})
}

func (h *httpHandler) handleMe(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), h.sessionUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"user": gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"avatar":    user.Avatar,
		"isAdmin":   user.IsAdmin,
		"createdAt": user.CreatedAt,
	}})
}
