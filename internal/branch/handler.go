package branch

import (
	"time"

	"github.com/gin-gonic/gin"
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
	var branches []database.Branch
	query := h.db.Order("name ASC")
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&branches).Error; err != nil {
		response.Internal(c, "Failed to fetch branches", nil)
		return
	}

	response.OK(c, branches, "")
}

func (h *Handler) Get(c *gin.Context) {
	var branch database.Branch
	if err := h.db.First(&branch, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	response.OK(c, branch, "")
}

type branchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *Handler) Create(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	branch := database.Branch{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := h.db.Create(&branch).Error; err != nil {
		response.Internal(c, "Failed to create branch", nil)
		return
	}

	h.logger.LogCreate(c, "branch", branch.ID, branch)
	response.Created(c, branch, "Branch created")
}

func (h *Handler) Update(c *gin.Context) {
	var branch database.Branch
	if err := h.db.First(&branch, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	old := branch
	branch.Name = req.Name
	branch.Address = req.Address
	branch.Phone = req.Phone
	if err := h.db.Save(&branch).Error; err != nil {
		response.Internal(c, "Failed to update branch", nil)
		return
	}

	h.logger.LogUpdate(c, "branch", branch.ID, old, branch)
	response.OK(c, branch, "Branch updated")
}

func (h *Handler) Toggle(c *gin.Context) {
	var branch database.Branch
	if err := h.db.First(&branch, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	branch.IsActive = !branch.IsActive
	if err := h.db.Save(&branch).Error; err != nil {
		response.Internal(c, "Failed to update branch", nil)
		return
	}

	h.logger.LogToggle(c, "branch", branch.ID, branch.IsActive, branch.Name)
	response.OK(c, branch, "Branch status updated")
}

// Stats summarizes completed sales for one branch over the last 30 days.
func (h *Handler) Stats(c *gin.Context) {
	var branch database.Branch
	if err := h.db.First(&branch, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -30)

	var totals struct {
		Total float64
		Count int
	}
	if err := h.db.Model(&database.Sale{}).
		Where("branch_id = ? AND status = ? AND sold_at >= ?", branch.ID, database.SaleCompleted, since).
		Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
		Scan(&totals).Error; err != nil {
		response.Internal(c, "Failed to fetch branch stats", nil)
		return
	}

	var sellers int64
	if err := h.db.Model(&database.User{}).
		Where("branch_id = ? AND is_active = ?", branch.ID, true).
		Count(&sellers).Error; err != nil {
		response.Internal(c, "Failed to fetch branch stats", nil)
		return
	}

	avgTicket := 0.0
	if totals.Count > 0 {
		avgTicket = totals.Total / float64(totals.Count)
	}

	response.OK(c, gin.H{
		"branch":         branch,
		"since":          since.Format("2006-01-02"),
		"total_sales":    totals.Total,
		"order_count":    totals.Count,
		"average_ticket": avgTicket,
		"active_sellers": sellers,
	}, "")
}
