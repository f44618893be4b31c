package combo

import (
	"errors"
	"fmt"
	"time"

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

type ComboLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Config    string    `json:"config"`
}

type ComboRequest struct {
	Name        string             `json:"name" binding:"required"`
	Code        string             `json:"code" binding:"required"`
	Kind        string             `json:"kind" binding:"required,oneof=regular seasonal promotional"`
	Price       float64            `json:"price" binding:"required,gt=0"`
	Description string             `json:"description"`
	Editable    bool               `json:"editable"`
	ValidFrom   *time.Time         `json:"valid_from"`
	ValidUntil  *time.Time         `json:"valid_until"`
	Lines       []ComboLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// List returns combos that are currently offered: active and, when a
// validity window is set, inside it. all=true lists everything for the
// back office.
func (h *Handler) List(c *gin.Context) {
	kind := c.Query("kind")
	all := c.Query("all") == "true"

	query := h.db.Preload("Lines").Preload("Lines.Product").Order("kind ASC, name ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if !all {
		now := time.Now().UTC()
		query = query.Where("is_active = ?", true).
			Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_until IS NULL OR valid_until >= ?)", now, now)
	}

	var combos []database.Combo
	if err := query.Find(&combos).Error; err != nil {
		response.Internal(c, "Failed to fetch combos", nil)
		return
	}

	response.OK(c, combos, "")
}

// Get returns a single combo with its lines.
func (h *Handler) Get(c *gin.Context) {
	var combo database.Combo
	if err := h.db.Preload("Lines").Preload("Lines.Product").
		Where("id = ?", c.Param("id")).First(&combo).Error; err != nil {
		response.NotFound(c, "Combo not found")
		return
	}

	response.OK(c, combo, "")
}

// GetSeasonal returns the seasonal combo currently in its validity window.
// Seasonal combos change with the calendar (Fiambre in November, Quema del
// Diablo in December, Cuaresma for Lent) by editing data, not code.
func (h *Handler) GetSeasonal(c *gin.Context) {
	now := time.Now().UTC()

	var combo database.Combo
	err := h.db.Preload("Lines").Preload("Lines.Product").
		Where("kind = ? AND is_active = ?", database.ComboSeasonal, true).
		Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_until IS NULL OR valid_until >= ?)", now, now).
		First(&combo).Error
	if err != nil {
		response.NotFound(c, "No seasonal combo is active right now")
		return
	}

	response.OK(c, combo, "Current seasonal combo")
}

// Create builds a combo and its lines atomically. The code must be unique
// and every referenced product must exist and be active.
func (h *Handler) Create(c *gin.Context) {
	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid combo data", err.Error())
		return
	}

	combo := database.Combo{
		Name:        req.Name,
		Code:        req.Code,
		Kind:        req.Kind,
		Price:       req.Price,
		Description: req.Description,
		Editable:    req.Editable,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		IsActive:    true,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for i, line := range req.Lines {
			var product database.Product
			if err := tx.Where("id = ? AND is_active = ?", line.ProductID, true).First(&product).Error; err != nil {
				return fmt.Errorf("line %d: product %s not found", i, line.ProductID)
			}
			combo.Lines = append(combo.Lines, database.ComboLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Config:    line.Config,
			})
		}
		return tx.Create(&combo).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "A combo with that code already exists")
			return
		}
		response.BadRequest(c, err.Error(), nil)
		return
	}

	h.logger.LogCreate(c, "combo", combo.ID, map[string]interface{}{
		"name": combo.Name,
		"code": combo.Code,
		"kind": combo.Kind,
	})

	h.db.Preload("Lines").Preload("Lines.Product").First(&combo, combo.ID)
	response.Created(c, combo, "Combo created")
}

// Update edits a combo in place, replacing its lines. Only editable combos
// and seasonal ones may change; this is what lets the seasonal offer rotate
// without a redeploy.
func (h *Handler) Update(c *gin.Context) {
	var combo database.Combo
	if err := h.db.Preload("Lines").Where("id = ?", c.Param("id")).First(&combo).Error; err != nil {
		response.NotFound(c, "Combo not found")
		return
	}

	if !combo.Editable && combo.Kind != database.ComboSeasonal {
		response.BadRequest(c, "This combo is not editable", nil)
		return
	}

	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid combo data", err.Error())
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		combo.Name = req.Name
		combo.Code = req.Code
		combo.Kind = req.Kind
		combo.Price = req.Price
		combo.Description = req.Description
		combo.Editable = req.Editable
		combo.ValidFrom = req.ValidFrom
		combo.ValidUntil = req.ValidUntil

		if err := tx.Where("combo_id = ?", combo.ID).Delete(&database.ComboLine{}).Error; err != nil {
			return err
		}
		combo.Lines = nil
		for i, line := range req.Lines {
			var product database.Product
			if err := tx.Where("id = ? AND is_active = ?", line.ProductID, true).First(&product).Error; err != nil {
				return fmt.Errorf("line %d: product %s not found", i, line.ProductID)
			}
			combo.Lines = append(combo.Lines, database.ComboLine{
				ComboID:   combo.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Config:    line.Config,
			})
		}
		return tx.Save(&combo).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "A combo with that code already exists")
			return
		}
		response.BadRequest(c, err.Error(), nil)
		return
	}

	h.logger.LogUpdate(c, "combo", combo.ID, nil, map[string]interface{}{
		"name": combo.Name,
		"code": combo.Code,
	})

	h.db.Preload("Lines").Preload("Lines.Product").First(&combo, combo.ID)
	response.OK(c, combo, "Combo updated")
}

// Deactivate soft-deletes a combo. Historical sale lines keep referencing it.
func (h *Handler) Deactivate(c *gin.Context) {
	var combo database.Combo
	if err := h.db.Where("id = ?", c.Param("id")).First(&combo).Error; err != nil {
		response.NotFound(c, "Combo not found")
		return
	}

	combo.IsActive = false
	if err := h.db.Save(&combo).Error; err != nil {
		response.Internal(c, "Failed to deactivate combo", nil)
		return
	}

	h.logger.LogToggle(c, "combo", combo.ID, false, combo.Name)

	response.OK(c, combo, "Combo deactivated")
}
