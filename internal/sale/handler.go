package sale

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/internal/inventory"
	"github.com/Solorzano97/LaCazuelaChapina/internal/recipe"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/activitylog"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/response"
)

type Handler struct {
	db     *gorm.DB
	cfg    config.Config
	logger *activitylog.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config) *Handler {
	return &Handler{
		db:     db,
		cfg:    cfg,
		logger: activitylog.NewLogger(db),
	}
}

type SaleLineRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	ComboID   *uuid.UUID `json:"combo_id"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	Config    string     `json:"config"`
}

type CreateSaleRequest struct {
	BranchID uuid.UUID         `json:"branch_id" binding:"required"`
	Discount float64           `json:"discount" binding:"gte=0"`
	Status   string            `json:"status" binding:"omitempty,oneof=pending completed"`
	IsSynced *bool             `json:"is_synced"`
	Lines    []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

// lineError carries a per-line failure with the HTTP status it maps to.
type lineError struct {
	status  int
	message string
}

func (e *lineError) Error() string { return e.message }

// Create validates and persists a sale with its lines in one transaction.
// Unit prices are locked in from the catalog at this moment; later price
// changes never touch recorded sales. When inventory tracking is on, the
// recipe-resolved raw material consumption is written to the ledger inside
// the same transaction, so a failure anywhere leaves no trace.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid sale data", err.Error())
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	var branch database.Branch
	if err := h.db.Where("id = ? AND is_active = ?", req.BranchID, true).First(&branch).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	isSynced := true
	if req.IsSynced != nil {
		isSynced = *req.IsSynced
	}
	status := database.SaleCompleted
	if req.Status != "" {
		status = req.Status
	}

	var created database.Sale
	err = h.db.Transaction(func(tx *gorm.DB) error {
		lines, lineSubtotals, err := h.buildLines(tx, req.Lines)
		if err != nil {
			return err
		}

		subtotal, total := Totals(lineSubtotals, req.Discount)

		created = database.Sale{
			OrderNumber: generateOrderNumber(),
			BranchID:    req.BranchID,
			UserID:      userID,
			Subtotal:    subtotal,
			Discount:    req.Discount,
			Total:       total,
			Status:      status,
			IsSynced:    isSynced,
			SoldAt:      time.Now().UTC(),
			Lines:       lines,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// Raw materials are consumed when the sale completes, not while
		// a pending order sits in the queue.
		if h.cfg.TrackInventory && status == database.SaleCompleted {
			if err := h.consumeInventory(tx, created, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var le *lineError
		if errors.As(err, &le) {
			response.Error(c, le.status, le.message, nil)
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "Order number already exists")
			return
		}
		response.Internal(c, "Failed to create sale", h.diag(err))
		return
	}

	h.logger.LogActivity(c, "sale", "sale", &created.ID, map[string]interface{}{
		"order_number": created.OrderNumber,
		"total":        created.Total,
	})
	log.Info().Str("order", created.OrderNumber).Float64("total", created.Total).Msg("sale recorded")

	h.db.Preload("Lines").Preload("Lines.Product").Preload("Lines.Combo").First(&created, created.ID)
	response.Created(c, created, "Sale recorded")
}

// buildLines resolves each line request against the catalog, locking in
// the current price. Exactly one of product_id/combo_id must be set.
func (h *Handler) buildLines(tx *gorm.DB, reqs []SaleLineRequest) ([]database.SaleLine, []float64, error) {
	lines := make([]database.SaleLine, 0, len(reqs))
	subtotals := make([]float64, 0, len(reqs))

	for i, lr := range reqs {
		if (lr.ProductID == nil) == (lr.ComboID == nil) {
			return nil, nil, &lineError{
				status:  http.StatusBadRequest,
				message: fmt.Sprintf("line %d: exactly one of product_id or combo_id is required", i),
			}
		}

		var unitPrice float64
		if lr.ProductID != nil {
			var product database.Product
			if err := tx.Where("id = ? AND is_active = ?", *lr.ProductID, true).First(&product).Error; err != nil {
				return nil, nil, &lineError{
					status:  http.StatusNotFound,
					message: fmt.Sprintf("line %d: product %s not found", i, *lr.ProductID),
				}
			}
			unitPrice = product.BasePrice
		} else {
			var combo database.Combo
			if err := tx.Where("id = ?", *lr.ComboID).First(&combo).Error; err != nil {
				return nil, nil, &lineError{
					status:  http.StatusNotFound,
					message: fmt.Sprintf("line %d: combo %s not found", i, *lr.ComboID),
				}
			}
			if !combo.CurrentlyOffered(time.Now().UTC()) {
				return nil, nil, &lineError{
					status:  http.StatusBadRequest,
					message: fmt.Sprintf("line %d: combo %s is not currently offered", i, combo.Code),
				}
			}
			unitPrice = combo.Price
		}

		lineSubtotal := LineTotal(lr.Quantity, unitPrice)
		lines = append(lines, database.SaleLine{
			ProductID: lr.ProductID,
			ComboID:   lr.ComboID,
			Quantity:  lr.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  lineSubtotal,
			Config:    lr.Config,
		})
		subtotals = append(subtotals, lineSubtotal)
	}

	return lines, subtotals, nil
}

// consumeInventory records one outbound ledger movement per raw material
// consumed by the sale's lines. Materials without recipes consume nothing.
func (h *Handler) consumeInventory(tx *gorm.DB, s database.Sale, userID uuid.UUID) error {
	total := recipe.Consumption{}

	for _, line := range s.Lines {
		var (
			consumption recipe.Consumption
			err         error
		)
		if line.ProductID != nil {
			consumption, err = recipe.ResolveProduct(tx, *line.ProductID, line.Quantity)
		} else {
			consumption, err = recipe.ResolveCombo(tx, *line.ComboID, line.Quantity)
		}
		if err != nil {
			return err
		}
		for materialID, qty := range consumption {
			total[materialID] += qty
		}
	}

	reason := "sale " + s.OrderNumber
	for materialID, qty := range total {
		var material database.RawMaterial
		if err := tx.Where("id = ?", materialID).First(&material).Error; err != nil {
			return err
		}
		if _, err := inventory.RecordMovement(tx, materialID, database.MovementOutbound, qty, material.AvgCost, reason, userID); err != nil {
			return err
		}
	}
	return nil
}

// List returns sales, newest first, with optional branch and status filters.
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("Lines").Preload("Lines.Product").Preload("Lines.Combo").
		Order("sold_at DESC")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var sales []database.Sale
	if err := query.Limit(100).Find(&sales).Error; err != nil {
		response.Internal(c, "Failed to fetch sales", nil)
		return
	}

	response.OK(c, sales, "")
}

// Get returns a single sale with its lines.
func (h *Handler) Get(c *gin.Context) {
	var s database.Sale
	if err := h.db.Preload("Lines").Preload("Lines.Product").Preload("Lines.Combo").
		Where("id = ?", c.Param("id")).First(&s).Error; err != nil {
		response.NotFound(c, "Sale not found")
		return
	}

	response.OK(c, s, "")
}

// UpdateStatus moves a pending sale to completed or cancelled. Other
// transitions are rejected; the status enum is one-directional in practice.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid status", err.Error())
		return
	}

	var s database.Sale
	if err := h.db.Where("id = ?", c.Param("id")).First(&s).Error; err != nil {
		response.NotFound(c, "Sale not found")
		return
	}

	if err := ValidTransition(s.Status, req.Status); err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		s.Status = req.Status
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		// Completing a pending order is when its materials leave the shelf.
		if h.cfg.TrackInventory && req.Status == database.SaleCompleted {
			if err := tx.Preload("Lines").First(&s, s.ID).Error; err != nil {
				return err
			}
			return h.consumeInventory(tx, s, s.UserID)
		}
		return nil
	})
	if err != nil {
		response.Internal(c, "Failed to update sale", h.diag(err))
		return
	}

	response.OK(c, s, "Sale status updated")
}

// generateOrderNumber stamps the day plus a random uuid fragment. The
// fragment keeps busy days from colliding on the unique index; the index
// and the 409 path remain the backstop.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), uuid.NewString()[:8])
}

func (h *Handler) diag(err error) interface{} {
	if h.cfg.IsProduction() {
		return nil
	}
	return err.Error()
}
