package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse mirrors the one in internal/api/dto_models.go to avoid an
// import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Context keys set by the auth middleware.
const (
	ContextAdminID    = "adminID"
	ContextAdminEmail = "adminEmail"
)

// AuthMiddleware verifies Firebase ID tokens and enforces the admin custom
// claim on every dashboard route.
type AuthMiddleware struct {
	firebaseAuthClient *auth.Client
	logger             *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance. A nil auth client
// is a setup error the server cannot run with.
func NewAuthMiddleware(fbAuthClient *auth.Client, logger *zap.Logger) *AuthMiddleware {
	if fbAuthClient == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{firebaseAuthClient: fbAuthClient, logger: logger}
}

// RequireAdmin verifies the bearer token and rejects callers whose token does
// not carry the admin custom claim. The verified UID and email are set in the
// Gin context for handlers and the audit trail.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("failed to verify ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		if isAdmin, _ := token.Claims["admin"].(bool); !isAdmin {
			m.logger.Warn("non-admin token rejected", zap.String("uid", token.UID))
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Administrator access required"})
			return
		}

		c.Set(ContextAdminID, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(ContextAdminEmail, email)
		}

		c.Next()
	}
}
