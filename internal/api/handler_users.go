package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"laundry-station-backend/internal/auth"
	"laundry-station-backend/internal/model"
)

// userResponse hides the password hash from API output.
type userResponse struct {
	ID       uint          `json:"id"`
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Role     model.Role    `json:"role"`
	Disabled bool          `json:"disabled"`
	Region   *model.Region `json:"region,omitempty"`
	Created  time.Time     `json:"created_at"`
}

func userResponseFrom(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Disabled: u.Disabled,
		Region:   u.Region,
		Created:  u.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if user.Disabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}
	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userResponseFrom(user)})
}

type createUserRequest struct {
	Email    string        `json:"email" binding:"required,email"`
	Name     string        `json:"name"`
	Role     model.Role    `json:"role" binding:"required"`
	Region   *model.Region `json:"region"`
	Password string        `json:"password" binding:"required,min=8"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role.Rank() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	user := model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		Region:       req.Region,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponseFrom(&user))
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponseFrom(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /users/:user_id.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponseFrom(user))
}

type updateUserRequest struct {
	Name     *string       `json:"name"`
	Role     *model.Role   `json:"role"`
	Disabled *bool         `json:"disabled"`
	Region   *model.Region `json:"region"`
	Password *string       `json:"password"`
}

// UpdateUser handles PATCH /users/:user_id.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	user, err := h.store.GetUser(ctx, uint(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if req.Role.Rank() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
		user.Role = *req.Role
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}
	if req.Region != nil {
		user.Region = req.Region
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		user.PasswordHash = hash
	}
	if err := h.store.SaveUser(ctx, user); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponseFrom(user))
}

// DeleteUser handles DELETE /users/:user_id.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), uint(id)); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
