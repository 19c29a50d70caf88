package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"session-auth/internal/domain"
	"session-auth/internal/service"
)

const (
	// SessionCookieName names the cookie carrying the opaque session id.
	SessionCookieName = "auth_session"

	sessionKeyUserID = "userId"
	sessionKeyEmail  = "email"
	sessionKeyMobile = "mobile"
)

// SessionTTL bounds how long a session survives after its last write.
const SessionTTL = 30 * time.Minute

// SessionMaxAgeSeconds returns the cookie MaxAge matching SessionTTL.
func SessionMaxAgeSeconds() int {
	return int(SessionTTL.Seconds())
}

// Handler wires HTTP routes to the auth service.
type Handler struct {
	auth   service.AuthService
	logger *logrus.Logger
}

func NewHandler(auth service.AuthService, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.register)
			authRoutes.POST("/login", h.login)
			authRoutes.GET("/user", h.currentUser)
			authRoutes.POST("/logout", h.logout)
		}
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields required"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Mobile, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := h.saveSession(c, user); err != nil {
		h.logger.Errorf("save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.UserID,
		"email":   user.Email,
		"mobile":  user.Mobile,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := h.saveSession(c, user); err != nil {
		h.logger.Errorf("save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"userId":  user.UserID,
		"email":   user.Email,
		"mobile":  user.Mobile,
	})
}

func (h *Handler) currentUser(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get(sessionKeyUserID).(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	user, err := h.auth.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The record was deleted out-of-band; drop the stale session
			// so the client returns to anonymous instead of replaying it.
			if err := h.destroySession(c); err != nil {
				h.logger.Errorf("destroy stale session: %v", err)
			}
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": user.UserID,
		"email":  user.Email,
		"mobile": user.Mobile,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.destroySession(c); err != nil {
		h.logger.Errorf("destroy session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) saveSession(c *gin.Context, user *domain.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.UserID)
	session.Set(sessionKeyEmail, user.Email)
	session.Set(sessionKeyMobile, user.Mobile)
	return session.Save()
}

// destroySession clears the session values and expires the cookie. Destroying
// a session that never existed saves an empty one, which is still a success.
func (h *Handler) destroySession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// renderError maps service errors onto the API's status codes. Conflicts map
// to 400 rather than 409, matching the original contract, and infrastructure
// failures are logged but never echoed to the client.
func (h *Handler) renderError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists with this email or mobile"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	default:
		h.logger.Errorf("auth request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
