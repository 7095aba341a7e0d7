package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/api/middleware"
	"github.com/jstittsworth/fpl-advisor/internal/providers"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

// EntrySource verifies an FPL entry exists before a session is issued.
type EntrySource interface {
	GetEntry(ctx context.Context, entryID int) (*providers.Entry, error)
}

// AuthHandler issues session tokens bound to an FPL manager entry. There are
// no passwords; an entry ID is public information and the token only scopes
// which squad the advisor endpoints operate on.
type AuthHandler struct {
	fpl       EntrySource
	jwtSecret string
	logger    *logrus.Logger
}

func NewAuthHandler(fpl EntrySource, jwtSecret string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{fpl: fpl, jwtSecret: jwtSecret, logger: logger}
}

type sessionRequest struct {
	EntryID int    `json:"entry_id" binding:"required"`
	Email   string `json:"email"`
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Entry     *providers.Entry `json:"entry"`
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")
	{
		auth.POST("/session", h.CreateSession)
		auth.GET("/me", middleware.AuthRequired(h.jwtSecret), h.GetCurrentEntry)
		auth.POST("/refresh", middleware.AuthRequired(h.jwtSecret), h.RefreshToken)
	}
}

// CreateSession verifies the entry against the FPL API and returns a signed
// token for it.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	entry, err := h.fpl.GetEntry(c.Request.Context(), req.EntryID)
	if err != nil {
		h.logger.Warnf("Session refused: entry %d lookup failed: %v", req.EntryID, err)
		utils.SendBadGateway(c, "Could not verify entry with FPL")
		return
	}

	token, expiresAt, err := h.generateToken(req.EntryID, req.Email)
	if err != nil {
		utils.SendInternalError(c, "Failed to issue session token")
		return
	}

	utils.SendSuccess(c, sessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Entry:     entry,
	})
}

// GetCurrentEntry returns the entry bound to the presented token.
func (h *AuthHandler) GetCurrentEntry(c *gin.Context) {
	entryID, ok := middleware.EntryFromContext(c)
	if !ok {
		utils.SendUnauthorized(c, "No entry in session")
		return
	}

	entry, err := h.fpl.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		utils.SendBadGateway(c, "Could not fetch entry from FPL")
		return
	}

	utils.SendSuccess(c, entry)
}

// RefreshToken reissues a token for the current session's entry.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	entryID, ok := middleware.EntryFromContext(c)
	if !ok {
		utils.SendUnauthorized(c, "No entry in session")
		return
	}

	email := c.GetString("email")
	token, expiresAt, err := h.generateToken(entryID, email)
	if err != nil {
		utils.SendInternalError(c, "Failed to issue session token")
		return
	}

	utils.SendSuccess(c, sessionResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *AuthHandler) generateToken(entryID int, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(24 * time.Hour)

	claims := &middleware.Claims{
		EntryID: entryID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "fpl-advisor",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
