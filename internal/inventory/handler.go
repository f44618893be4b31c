package inventory

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type MaterialRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Unit     string  `json:"unit" binding:"required"`
	MinStock float64 `json:"min_stock"`
	AvgCost  float64 `json:"avg_cost"`
}

type MovementRequest struct {
	RawMaterialID uuid.UUID `json:"raw_material_id" binding:"required"`
	Kind          string    `json:"kind" binding:"required,oneof=inbound outbound waste"`
	Quantity      float64   `json:"quantity" binding:"required,gt=0"`
	UnitCost      float64   `json:"unit_cost"`
	Reason        string    `json:"reason"`
}

// ListMaterials returns all raw materials.
func (h *Handler) ListMaterials(c *gin.Context) {
	var materials []database.RawMaterial
	if err := h.db.Order("name ASC").Find(&materials).Error; err != nil {
		response.Internal(c, "Failed to fetch raw materials", nil)
		return
	}

	response.OK(c, materials, "")
}

// GetMaterial returns a single raw material.
func (h *Handler) GetMaterial(c *gin.Context) {
	var material database.RawMaterial
	if err := h.db.Where("id = ?", c.Param("id")).First(&material).Error; err != nil {
		response.NotFound(c, "Raw material not found")
		return
	}

	response.OK(c, material, "")
}

// CreateMaterial registers a raw material. Stock starts at zero; levels
// only change through ledger movements.
func (h *Handler) CreateMaterial(c *gin.Context) {
	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid raw material data", err.Error())
		return
	}

	material := database.RawMaterial{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		MinStock:      req.MinStock,
		AvgCost:       req.AvgCost,
		CriticalPoint: IsCritical(0, req.MinStock),
	}
	if err := h.db.Create(&material).Error; err != nil {
		response.Internal(c, "Failed to create raw material", nil)
		return
	}

	h.logger.LogCreate(c, "raw_material", material.ID, map[string]interface{}{
		"name": material.Name,
		"unit": material.Unit,
	})

	response.Created(c, material, "Raw material created")
}

// UpdateMaterial edits descriptive fields and the minimum threshold. The
// critical flag is re-evaluated against the new minimum.
func (h *Handler) UpdateMaterial(c *gin.Context) {
	var material database.RawMaterial
	if err := h.db.Where("id = ?", c.Param("id")).First(&material).Error; err != nil {
		response.NotFound(c, "Raw material not found")
		return
	}

	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid raw material data", err.Error())
		return
	}

	material.Name = req.Name
	material.Category = req.Category
	material.Unit = req.Unit
	material.MinStock = req.MinStock
	material.CriticalPoint = IsCritical(material.CurrentStock, req.MinStock)

	if err := h.db.Save(&material).Error; err != nil {
		response.Internal(c, "Failed to update raw material", nil)
		return
	}

	response.OK(c, material, "Raw material updated")
}

// RecordMovementHandler appends a movement to the ledger and adjusts stock.
func (h *Handler) RecordMovementHandler(c *gin.Context) {
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid movement data", err.Error())
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	var movement *database.InventoryMovement
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = RecordMovement(tx, req.RawMaterialID, req.Kind, req.Quantity, req.UnitCost, req.Reason, userID)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error(), nil)
		return
	}

	h.logger.LogActivity(c, "stock_adjust", "raw_material", &req.RawMaterialID, map[string]interface{}{
		"kind":     req.Kind,
		"quantity": req.Quantity,
	})

	h.db.Preload("RawMaterial").First(movement, movement.ID)
	response.Created(c, movement, "Movement recorded")
}

// ListMovements returns the ledger, newest first, with optional material
// and kind filters.
func (h *Handler) ListMovements(c *gin.Context) {
	query := h.db.Preload("RawMaterial").Order("created_at DESC")
	if materialID := c.Query("raw_material_id"); materialID != "" {
		query = query.Where("raw_material_id = ?", materialID)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var movements []database.InventoryMovement
	if err := query.Limit(200).Find(&movements).Error; err != nil {
		response.Internal(c, "Failed to fetch movements", nil)
		return
	}

	response.OK(c, movements, "")
}

// Alerts returns materials at or below their minimum, split between
// critical (including negative) and plain low stock.
func (h *Handler) Alerts(c *gin.Context) {
	var critical []database.RawMaterial
	h.db.Where("critical_point = ?", true).Order("current_stock ASC").Find(&critical)

	var outOfStock []database.RawMaterial
	h.db.Where("current_stock <= 0").Order("current_stock ASC").Find(&outOfStock)

	response.OK(c, gin.H{
		"critical":     critical,
		"out_of_stock": outOfStock,
	}, "")
}
