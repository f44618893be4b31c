package catalog

import (
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

type ProductRequest struct {
	Name      string  `json:"name" binding:"required"`
	Category  string  `json:"category" binding:"required,oneof=tamal beverage"`
	BasePrice float64 `json:"base_price" binding:"required,gt=0"`
}

// ListProducts returns the product catalog, optionally filtered by category.
// Inactive products are included only when all=true, so the POS frontend
// sees just what it can sell.
func (h *Handler) ListProducts(c *gin.Context) {
	category := c.Query("category")
	all := c.Query("all") == "true"

	query := h.db.Order("category ASC, name ASC")
	if !all {
		query = query.Where("is_active = ?", true)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []database.Product
	if err := query.Find(&products).Error; err != nil {
		response.Internal(c, "Failed to fetch products", nil)
		return
	}

	response.OK(c, products, "")
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(c *gin.Context) {
	var product database.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		response.NotFound(c, "Product not found")
		return
	}

	response.OK(c, product, "")
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid product data", err.Error())
		return
	}

	product := database.Product{
		Name:      req.Name,
		Category:  req.Category,
		BasePrice: req.BasePrice,
		IsActive:  true,
	}
	if err := h.db.Create(&product).Error; err != nil {
		response.Internal(c, "Failed to create product", nil)
		return
	}

	h.logger.LogCreate(c, "product", product.ID, map[string]interface{}{
		"name":       product.Name,
		"category":   product.Category,
		"base_price": product.BasePrice,
	})

	response.Created(c, product, "Product created")
}

// UpdateProduct modifies name, category and base price. The new price only
// affects sales made after the change; recorded lines keep their locked-in
// unit price.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var product database.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		response.NotFound(c, "Product not found")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid product data", err.Error())
		return
	}

	old := product
	product.Name = req.Name
	product.Category = req.Category
	product.BasePrice = req.BasePrice

	if err := h.db.Save(&product).Error; err != nil {
		response.Internal(c, "Failed to update product", nil)
		return
	}

	h.logger.LogUpdate(c, "product", product.ID, old, product)

	response.OK(c, product, "Product updated")
}

// ToggleProduct flips the active flag. Products are never hard-deleted
// because historical sale lines reference them.
func (h *Handler) ToggleProduct(c *gin.Context) {
	var product database.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		response.NotFound(c, "Product not found")
		return
	}

	product.IsActive = !product.IsActive
	if err := h.db.Save(&product).Error; err != nil {
		response.Internal(c, "Failed to update product", nil)
		return
	}

	h.logger.LogToggle(c, "product", product.ID, product.IsActive, product.Name)

	response.OK(c, product, "")
}

type AttributeRequest struct {
	Kind string `json:"kind" binding:"required,oneof=masa relleno envoltura picante tipo_bebida endulzante topping"`
	Name string `json:"name" binding:"required"`
}

// ListAttributes returns the attribute catalogs, optionally one kind.
func (h *Handler) ListAttributes(c *gin.Context) {
	kind := c.Query("kind")

	query := h.db.Where("is_active = ?", true).Order("kind ASC, name ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var attributes []database.Attribute
	if err := query.Find(&attributes).Error; err != nil {
		response.Internal(c, "Failed to fetch attributes", nil)
		return
	}

	response.OK(c, attributes, "")
}

// CreateAttribute adds an option to one of the kinded catalogs.
func (h *Handler) CreateAttribute(c *gin.Context) {
	var req AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid attribute data", err.Error())
		return
	}

	attribute := database.Attribute{
		Kind:     req.Kind,
		Name:     req.Name,
		IsActive: true,
	}
	if err := h.db.Create(&attribute).Error; err != nil {
		response.Internal(c, "Failed to create attribute", nil)
		return
	}

	response.Created(c, attribute, "Attribute created")
}

// UpdateAttribute renames an option or moves it to another kind.
func (h *Handler) UpdateAttribute(c *gin.Context) {
	var attribute database.Attribute
	if err := h.db.Where("id = ?", c.Param("id")).First(&attribute).Error; err != nil {
		response.NotFound(c, "Attribute not found")
		return
	}

	var req AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid attribute data", err.Error())
		return
	}

	attribute.Kind = req.Kind
	attribute.Name = req.Name
	if err := h.db.Save(&attribute).Error; err != nil {
		response.Internal(c, "Failed to update attribute", nil)
		return
	}

	response.OK(c, attribute, "Attribute updated")
}

// ToggleAttribute flips the active flag of an attribute option.
func (h *Handler) ToggleAttribute(c *gin.Context) {
	var attribute database.Attribute
	if err := h.db.Where("id = ?", c.Param("id")).First(&attribute).Error; err != nil {
		response.NotFound(c, "Attribute not found")
		return
	}

	attribute.IsActive = !attribute.IsActive
	if err := h.db.Save(&attribute).Error; err != nil {
		response.Internal(c, "Failed to update attribute", nil)
		return
	}

	response.OK(c, attribute, "")
}
