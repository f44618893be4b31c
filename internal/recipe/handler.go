package recipe

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/response"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type RecipeRequest struct {
	RawMaterialID uuid.UUID `json:"raw_material_id" binding:"required"`
	Quantity      float64   `json:"quantity" binding:"required,gt=0"`
	Unit          string    `json:"unit"`
}

// ListByProduct returns the recipe rows of a product.
func (h *Handler) ListByProduct(c *gin.Context) {
	productID := c.Param("product_id")

	var recipes []database.Recipe
	if err := h.db.Preload("RawMaterial").
		Where("product_id = ?", productID).
		Find(&recipes).Error; err != nil {
		response.Internal(c, "Failed to fetch recipes", nil)
		return
	}

	response.OK(c, recipes, "")
}

// Upsert links a raw material to a product, updating the quantity when the
// pair already exists.
func (h *Handler) Upsert(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product id", nil)
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid recipe data", err.Error())
		return
	}

	var product database.Product
	if err := h.db.Where("id = ?", productID).First(&product).Error; err != nil {
		response.NotFound(c, "Product not found")
		return
	}
	var material database.RawMaterial
	if err := h.db.Where("id = ?", req.RawMaterialID).First(&material).Error; err != nil {
		response.NotFound(c, "Raw material not found")
		return
	}

	var existing database.Recipe
	if h.db.Where("product_id = ? AND raw_material_id = ?", productID, req.RawMaterialID).
		First(&existing).Error == nil {
		existing.Quantity = req.Quantity
		existing.Unit = req.Unit
		h.db.Save(&existing)
		response.OK(c, existing, "Recipe updated")
		return
	}

	row := database.Recipe{
		ProductID:     productID,
		RawMaterialID: req.RawMaterialID,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
	}
	if err := h.db.Create(&row).Error; err != nil {
		response.Internal(c, "Failed to create recipe", nil)
		return
	}

	response.Created(c, row, "Recipe created")
}

// Delete removes one recipe row.
func (h *Handler) Delete(c *gin.Context) {
	result := h.db.Where("id = ?", c.Param("id")).Delete(&database.Recipe{})
	if result.RowsAffected == 0 {
		response.NotFound(c, "Recipe not found")
		return
	}

	response.OK(c, nil, "Recipe deleted")
}

// Consumption previews the raw materials consumed by selling the given
// quantity of a product, without touching stock.
func (h *Handler) Consumption(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product id", nil)
		return
	}

	qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || qty < 1 {
		response.BadRequest(c, "quantity must be a positive integer", nil)
		return
	}

	consumption, err := ResolveProduct(h.db, productID, qty)
	if err != nil {
		response.Internal(c, "Failed to resolve consumption", nil)
		return
	}

	type entry struct {
		RawMaterialID uuid.UUID `json:"raw_material_id"`
		Name          string    `json:"name"`
		Unit          string    `json:"unit"`
		Quantity      float64   `json:"quantity"`
	}
	var entries []entry
	for materialID, quantity := range consumption {
		var material database.RawMaterial
		if err := h.db.Where("id = ?", materialID).First(&material).Error; err != nil {
			continue
		}
		entries = append(entries, entry{
			RawMaterialID: materialID,
			Name:          material.Name,
			Unit:          material.Unit,
			Quantity:      quantity,
		})
	}

	response.OK(c, entries, "")
}
