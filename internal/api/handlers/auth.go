package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-project/portfolio-server/internal/api/middleware"
	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
)

// AuthHandler handles password login and session introspection
type AuthHandler struct {
	jwtSecret string
	admins    AdminStore
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtSecret string, admins AdminStore) *AuthHandler {
	return &AuthHandler{
		jwtSecret: jwtSecret,
		admins:    admins,
	}
}

// LoginRequest represents a login request. Username also accepts the
// account email.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Admin   *models.Admin `json:"admin"`
}

// Login handles password login. Unknown accounts, inactive accounts and
// wrong passwords all produce the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	admin, err := h.admins.GetByUsernameOrEmail(req.Username)
	if err != nil {
		if errors.Is(err, queries.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	if !admin.IsActive || !queries.VerifyPassword(admin, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.admins.UpdateLastLogin(admin.ID); err != nil {
		log.Printf("failed to update last login for %s: %v", admin.Username, err)
	}

	token, err := middleware.GenerateToken(h.jwtSecret, admin.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "login successful",
		Token:   token,
		Admin:   admin,
	})
}

// Profile returns the authenticated admin
func (h *AuthHandler) Profile(c *gin.Context) {
	admin, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

// Logout acknowledges logout. Tokens are stateless, so the client discards
// its copy; nothing is revoked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// Status reports whether an optional bearer token identifies an active
// admin. Unlike the auth middleware it never responds 401; the front end
// polls this to decide what to render.
func (h *AuthHandler) Status(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := middleware.ParseToken(h.jwtSecret, tokenString)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	admin, err := h.admins.GetByID(claims.AdminID)
	if err != nil || !admin.IsActive {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}
