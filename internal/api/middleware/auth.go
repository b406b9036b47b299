package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/portfolio-project/portfolio-server/internal/models"
)

// TokenLifetime is the fixed session token lifetime. There is no server-side
// revocation list; a token stays valid until expiry unless the account is
// deactivated (checked per request below).
const TokenLifetime = 24 * time.Hour

// adminContextKey is where Auth stores the verified admin in the gin context.
const adminContextKey = "admin"

var (
	// ErrTokenExpired marks a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid marks a malformed or mis-signed token.
	ErrTokenInvalid = errors.New("token invalid")
)

// AdminClaims represents JWT claims for admin sessions
type AdminClaims struct {
	AdminID uuid.UUID `json:"admin_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed session token for an admin
func GenerateToken(secret string, adminID uuid.UUID) (string, error) {
	claims := AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a session token and returns its claims. Expired and
// malformed tokens are distinguished so callers can surface different
// messages.
func ParseToken(secret, tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// AdminGetter loads an admin account by ID. Satisfied by
// queries.AdminQueries.
type AdminGetter interface {
	GetByID(id uuid.UUID) (*models.Admin, error)
}

// Auth validates bearer tokens and attaches the admin to the request
// context. The account is reloaded and its active flag re-checked on every
// request, so deactivation cuts off unexpired tokens immediately.
func Auth(secret string, admins AdminGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			}
			c.Abort()
			return
		}

		admin, err := admins.GetByID(claims.AdminID)
		if err != nil || !admin.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or inactive admin account"})
			c.Abort()
			return
		}

		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// RequireRole rejects requests whose attached admin is not in the allowed
// role set. Must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := AdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if admin.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		c.Abort()
	}
}

// AdminFromContext returns the admin attached by Auth.
func AdminFromContext(c *gin.Context) (*models.Admin, bool) {
	value, exists := c.Get(adminContextKey)
	if !exists {
		return nil, false
	}
	admin, ok := value.(*models.Admin)
	return admin, ok
}
