package in

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kreosurvey/internal/modules/admin/dto"
	adminin "kreosurvey/internal/modules/admin/port/in"
)

const (
	SessionCookie = "kreo_admin"
	emailKey      = "admin_email"
	loginPath     = "/login"
)

type HTTPHandler struct {
	usecase adminin.Usecase
	secure  bool
	logger  *slog.Logger
}

// NewHTTPHandler builds the login endpoints. secure marks the session
// cookie HTTPS-only.
func NewHTTPHandler(usecase adminin.Usecase, secure bool, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{usecase: usecase, secure: secure, logger: logger}
}

// Register mounts login on group and returns the middleware guarding the
// rest of the admin routes. logout and me are mounted behind it.
func (h *HTTPHandler) Register(group *gin.RouterGroup) gin.HandlerFunc {
	guard := h.RequireAdmin()
	group.POST("/login", h.login)
	group.POST("/logout", guard, h.logout)
	group.GET("/me", guard, h.me)
	return guard
}

// RequireAdmin accepts the session cookie or a bearer token.
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.usecase.Authorize(c.Request.Context(), sessionToken(c))
		if err != nil {
			message := "Please sign in to view responses."
			if errors.Is(err, adminin.ErrNotAllowed) {
				message = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "redirect": loginPath})
			return
		}
		c.Set(emailKey, session.Email)
		c.Next()
	}
}

func (h *HTTPHandler) login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	session, err := h.usecase.Login(c.Request.Context(), input)
	if err != nil {
		status := loginStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("admin login failed", "error", err)
		}
		c.JSON(status, gin.H{"error": loginMessage(err)})
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, session.Token, maxAge, "/", "", h.secure, true)
	c.JSON(http.StatusOK, session)
}

func (h *HTTPHandler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secure, true)
	h.logger.Info("admin signed out", "email", c.GetString(emailKey))
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

func (h *HTTPHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"email": c.GetString(emailKey)})
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, adminin.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, adminin.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, adminin.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, adminin.ErrNoAccount), errors.Is(err, adminin.ErrBadCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func loginMessage(err error) string {
	if loginStatus(err) == http.StatusInternalServerError {
		return "Sign in failed. Please try again."
	}
	return err.Error()
}
