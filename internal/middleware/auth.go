package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type AuthMiddleware struct {
	jwtSecret       string
	expirationHours int
}

type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret string, expirationHours int) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret, expirationHours: expirationHours}
}

// Authenticate validates the session token from the Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(m.jwtSecret), nil
		})

		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*SessionClaims)
		if !ok || !token.Valid {
			return response.Unauthorized(c, "Invalid token claims")
		}

		// Store session info in context
		c.Locals("sessionId", claims.SessionID)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// GetSessionID extracts the session ID from context
func GetSessionID(c *fiber.Ctx) string {
	if sessionID, ok := c.Locals("sessionId").(string); ok {
		return sessionID
	}
	return ""
}

// GenerateToken creates a signed session token
func (m *AuthMiddleware) GenerateToken(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tiktok-videogenerator",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(m.expirationHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.jwtSecret))
}
