package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/auth"
)

// stateCookie guards the OAuth callback against forged redirects.
const stateCookie = "recall_oauth_state"

// Login handles GET /auth/login: start the Google consent flow.
func (h *Handlers) Login(c *gin.Context) {
	if h.google == nil || !h.google.Configured() {
		log.Error("OAuth client is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in is not configured"})
		return
	}
	if h.sessions == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auth is not configured"})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// Callback handles GET /auth/callback: verify state, exchange the code,
// resolve the email and set the signed session cookie.
func (h *Handlers) Callback(c *gin.Context) {
	if h.google == nil || h.sessions == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auth is not configured"})
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	info, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.WithError(err).Error("OAuth exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "sign-in failed"})
		return
	}

	token, err := h.sessions.Issue(info.Email, info.Name)
	if err != nil {
		log.WithError(err).Error("session issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout handles POST /auth/logout: drop the session cookie.
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
