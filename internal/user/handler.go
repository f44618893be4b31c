package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/activitylog"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/response"
)

type Handler struct {
	db     *gorm.DB
	logger *activitylog.Logger
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:     db,
		logger: activitylog.NewLogger(db),
	}
}

func (h *Handler) List(c *gin.Context) {
	var users []database.User
	query := h.db.Preload("Branch").Order("name ASC")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		response.Internal(c, "Failed to fetch users", nil)
		return
	}

	response.OK(c, users, "")
}

func (h *Handler) Get(c *gin.Context) {
	var user database.User
	if err := h.db.Preload("Branch").First(&user, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.OK(c, user, "")
}

type createUserRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	Role     string    `json:"role" binding:"required,oneof=admin manager seller"`
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	var branch database.Branch
	if err := h.db.First(&branch, "id = ? AND is_active = ?", req.BranchID, true).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Internal(c, "Failed to create user", nil)
		return
	}

	user := database.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		BranchID:     req.BranchID,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "Email already registered")
			return
		}
		response.Internal(c, "Failed to create user", nil)
		return
	}

	h.logger.LogCreate(c, "user", user.ID, user)
	response.Created(c, user, "User created")
}

type updateUserRequest struct {
	Name     string     `json:"name" binding:"required"`
	Role     string     `json:"role" binding:"required,oneof=admin manager seller"`
	BranchID *uuid.UUID `json:"branch_id"`
	Password string     `json:"password" binding:"omitempty,min=8"`
}

func (h *Handler) Update(c *gin.Context) {
	var user database.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	old := user
	user.Name = req.Name
	user.Role = req.Role
	if req.BranchID != nil {
		var branch database.Branch
		if err := h.db.First(&branch, "id = ? AND is_active = ?", *req.BranchID, true).Error; err != nil {
			response.NotFound(c, "Branch not found")
			return
		}
		user.BranchID = *req.BranchID
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			response.Internal(c, "Failed to update user", nil)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.db.Save(&user).Error; err != nil {
		response.Internal(c, "Failed to update user", nil)
		return
	}

	h.logger.LogUpdate(c, "user", user.ID, old, user)
	response.OK(c, user, "User updated")
}

// Toggle deactivates or reactivates an account. Deactivated users keep
// their sales history but can no longer log in.
func (h *Handler) Toggle(c *gin.Context) {
	var user database.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	if c.GetString("user_id") == user.ID.String() {
		response.BadRequest(c, "Cannot deactivate your own account", nil)
		return
	}

	user.IsActive = !user.IsActive
	if err := h.db.Save(&user).Error; err != nil {
		response.Internal(c, "Failed to update user", nil)
		return
	}

	h.logger.LogToggle(c, "user", user.ID, user.IsActive, user.Email)
	response.OK(c, user, "User status updated")
}
