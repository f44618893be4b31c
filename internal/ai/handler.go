package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/response"
)

type Handler struct {
	db        *gorm.DB
	assistant Assistant
}

func NewHandler(db *gorm.DB, assistant Assistant) *Handler {
	return &Handler{db: db, assistant: assistant}
}

type askRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		response.Internal(c, "Assistant unavailable", nil)
		return
	}

	response.OK(c, gin.H{"answer": answer}, "")
}

type suggestComboRequest struct {
	Preferences string `json:"preferences" binding:"required"`
}

func (h *Handler) SuggestCombo(c *gin.Context) {
	var req suggestComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	answer, err := h.assistant.SuggestCombo(c.Request.Context(), req.Preferences)
	if err != nil {
		response.Internal(c, "Assistant unavailable", nil)
		return
	}

	response.OK(c, gin.H{"suggestion": answer}, "")
}

// AnalyzeSales summarizes the last 30 days of completed sales and asks
// the assistant for trends and recommendations.
func (h *Handler) AnalyzeSales(c *gin.Context) {
	since := time.Now().UTC().AddDate(0, 0, -30)

	var rows []struct {
		Name     string
		Quantity int
		Total    float64
	}
	if err := h.db.Model(&database.SaleLine{}).
		Select("products.name as name, SUM(sale_lines.quantity) as quantity, SUM(sale_lines.subtotal) as total").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN products ON products.id = sale_lines.product_id").
		Where("sales.status = ? AND sales.sold_at >= ?", database.SaleCompleted, since).
		Group("products.name").
		Order("quantity DESC").
		Limit(20).
		Scan(&rows).Error; err != nil {
		response.Internal(c, "Failed to gather sales data", nil)
		return
	}

	if len(rows) == 0 {
		response.OK(c, gin.H{"analysis": "No hay ventas registradas en los últimos 30 días."}, "")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ventas de los últimos 30 días (desde %s):\n", since.Format("2006-01-02"))
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %d unidades, Q%.2f\n", r.Name, r.Quantity, r.Total)
	}

	answer, err := h.assistant.AnalyzeSales(c.Request.Context(), b.String())
	if err != nil {
		response.Internal(c, "Assistant unavailable", nil)
		return
	}

	response.OK(c, gin.H{"analysis": answer}, "")
}

// RecommendProducts builds the requesting operator's purchase history from
// their completed sales and asks the assistant for suggestions to offer the
// next customer at the counter.
func (h *Handler) RecommendProducts(c *gin.Context) {
	userID := c.GetString("user_id")

	var rows []struct {
		Name     string
		Quantity int
	}
	if err := h.db.Model(&database.SaleLine{}).
		Select("products.name as name, SUM(sale_lines.quantity) as quantity").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN products ON products.id = sale_lines.product_id").
		Where("sales.status = ? AND sales.user_id = ?", database.SaleCompleted, userID).
		Group("products.name").
		Order("quantity DESC").
		Limit(20).
		Scan(&rows).Error; err != nil {
		response.Internal(c, "Failed to gather purchase history", nil)
		return
	}

	if len(rows) == 0 {
		response.OK(c, gin.H{"recommendations": "No hay historial de compras todavía."}, "")
		return
	}

	var b strings.Builder
	b.WriteString("Productos vendidos por este operador:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %d unidades\n", r.Name, r.Quantity)
	}

	answer, err := h.assistant.RecommendProducts(c.Request.Context(), b.String())
	if err != nil {
		response.Internal(c, "Assistant unavailable", nil)
		return
	}

	response.OK(c, gin.H{"recommendations": answer}, "")
}

// OptimizeInventory feeds the current stock levels, flagged critical
// items first, to the assistant.
func (h *Handler) OptimizeInventory(c *gin.Context) {
	var materials []database.RawMaterial
	if err := h.db.Order("critical_point DESC, name ASC").Limit(50).Find(&materials).Error; err != nil {
		response.Internal(c, "Failed to gather inventory data", nil)
		return
	}

	if len(materials) == 0 {
		response.OK(c, gin.H{"recommendation": "No hay materias primas registradas."}, "")
		return
	}

	var b strings.Builder
	b.WriteString("Estado actual del inventario:\n")
	for _, m := range materials {
		flag := ""
		if m.CriticalPoint {
			flag = " [PUNTO CRÍTICO]"
		}
		fmt.Fprintf(&b, "- %s: %.2f %s en stock (mínimo %.2f, costo promedio Q%.2f)%s\n",
			m.Name, m.CurrentStock, m.Unit, m.MinStock, m.AvgCost, flag)
	}

	answer, err := h.assistant.OptimizeInventory(c.Request.Context(), b.String())
	if err != nil {
		response.Internal(c, "Assistant unavailable", nil)
		return
	}

	response.OK(c, gin.H{"recommendation": answer}, "")
}
