package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recallweb/recall/internal/auth"
)

func newSessionRouter(t *testing.T, sessions *auth.Sessions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", SessionAuth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, Identity(c))
	})
	return router
}

func TestSessionAuthAcceptsValidCookie(t *testing.T) {
	sessions, _ := auth.NewSessions("secret", time.Hour)
	router := newSessionRouter(t, sessions)

	token, err := sessions.Issue("a@b.com", "")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "a@b.com" {
		t.Errorf("identity = %q", rec.Body.String())
	}
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	sessions, _ := auth.NewSessions("secret", time.Hour)
	router := newSessionRouter(t, sessions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAuthRejectsForgedCookie(t *testing.T) {
	sessions, _ := auth.NewSessions("secret", time.Hour)
	other, _ := auth.NewSessions("other", time.Hour)
	router := newSessionRouter(t, sessions)

	forged, _ := other.Issue("a@b.com", "")
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: forged})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAuthUnconfigured(t *testing.T) {
	router := newSessionRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
