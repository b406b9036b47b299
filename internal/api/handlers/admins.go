package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
)

// AdminHandler handles super_admin account management
type AdminHandler struct {
	admins AdminStore
}

// NewAdminHandler creates a new admin management handler
func NewAdminHandler(admins AdminStore) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// CreateAdminRequest represents an admin creation request
type CreateAdminRequest struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"`
}

// Create adds a new password-based admin account
func (h *AdminHandler) Create(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	admin, err := h.admins.Create(queries.CreateAdminParams{
		Username: req.Username,
		Email:    &req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "admin created successfully",
		"admin":   admin,
	})
}

// List returns all admin accounts, newest first
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.admins.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

// SetStatusRequest toggles an account's active flag
type SetStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetStatus activates or deactivates an account. Deactivation immediately
// locks out the account's unexpired tokens.
func (h *AdminHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	admin, err := h.admins.SetActive(id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "admin status updated",
		"admin":   admin,
	})
}
