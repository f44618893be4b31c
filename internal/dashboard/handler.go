package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
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

type DayKPIs struct {
	Total         float64 `json:"total"`
	OrderCount    int     `json:"order_count"`
	AverageTicket float64 `json:"average_ticket"`
}

type MonthKPIs struct {
	Total  float64 `json:"total"`
	Growth float64 `json:"growth_vs_previous_month"`
}

type KPIs struct {
	Date  string    `json:"date"`
	Day   DayKPIs   `json:"day"`
	Month MonthKPIs `json:"month"`
}

type BestSeller struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
	Orders      int     `json:"orders"`
}

// completedSales narrows to completed sales with an optional branch filter.
func (h *Handler) completedSales(c *gin.Context) *gorm.DB {
	query := h.db.Model(&database.Sale{}).Where("status = ?", database.SaleCompleted)
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	return query
}

// queryDate reads the date param, defaulting to today (UTC).
func queryDate(c *gin.Context) time.Time {
	if raw := c.Query("date"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			return parsed.UTC()
		}
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// queryRange reads from/to params with a fallback window of the last N days.
func queryRange(c *gin.Context, fallbackDays int) (time.Time, time.Time) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -fallbackDays)
	if raw := c.Query("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed.UTC()
		}
	}
	if raw := c.Query("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed.UTC().Add(24*time.Hour - time.Second)
		}
	}
	return from, to
}

// GetKPIs returns the day and month sales figures used by the back-office
// landing page.
func (h *Handler) GetKPIs(c *gin.Context) {
	date := queryDate(c)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var day struct {
		Total float64
		Count int
	}
	h.completedSales(c).
		Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
		Where("sold_at >= ? AND sold_at < ?", dayStart, dayEnd).
		Scan(&day)

	var monthTotal float64
	h.completedSales(c).
		Select("COALESCE(SUM(total), 0)").
		Where("sold_at >= ? AND sold_at < ?", monthStart, dayEnd).
		Scan(&monthTotal)

	var prevMonthTotal float64
	h.completedSales(c).
		Select("COALESCE(SUM(total), 0)").
		Where("sold_at >= ? AND sold_at < ?", prevMonthStart, monthStart).
		Scan(&prevMonthTotal)

	response.OK(c, KPIs{
		Date: dayStart.Format("2006-01-02"),
		Day: DayKPIs{
			Total:         day.Total,
			OrderCount:    day.Count,
			AverageTicket: AverageTicket(day.Total, day.Count),
		},
		Month: MonthKPIs{
			Total:  monthTotal,
			Growth: Growth(monthTotal, prevMonthTotal),
		},
	}, "")
}

// GetTopTamales returns the best-selling tamal products in the window,
// descending by quantity. Fewer products than top yields fewer rows.
func (h *Handler) GetTopTamales(c *gin.Context) {
	from, to := queryRange(c, 30)
	top, err := strconv.Atoi(c.DefaultQuery("top", "10"))
	if err != nil || top < 1 {
		top = 10
	}

	sellers, err := h.bestSellers(c, database.CategoryTamal, from, to, top)
	if err != nil {
		response.Internal(c, "Failed to fetch best sellers", nil)
		return
	}

	response.OK(c, gin.H{
		"items": sellers,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
	}, "")
}

func (h *Handler) bestSellers(c *gin.Context, category string, from, to time.Time, top int) ([]BestSeller, error) {
	query := h.db.Model(&database.SaleLine{}).
		Select("sale_lines.product_id, products.name as product_name, SUM(sale_lines.quantity) as quantity, SUM(sale_lines.subtotal) as revenue, COUNT(*) as orders").
		Joins("JOIN sales ON sale_lines.sale_id = sales.id").
		Joins("JOIN products ON sale_lines.product_id = products.id").
		Where("sales.status = ?", database.SaleCompleted).
		Where("sales.sold_at >= ? AND sales.sold_at <= ?", from, to).
		Where("products.category = ?", category)
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("sales.branch_id = ?", branchID)
	}

	var sellers []BestSeller
	err := query.Group("sale_lines.product_id, products.name").
		Order("quantity DESC").
		Limit(top).
		Scan(&sellers).Error
	return sellers, err
}

type bandEntry struct {
	Band      string       `json:"band"`
	Beverages []BestSeller `json:"beverages"`
	Total     int          `json:"total"`
}

// GetBeveragesByTimeband buckets the day's beverage sales into Dawn,
// Morning, Afternoon and Night for preference analysis.
func (h *Handler) GetBeveragesByTimeband(c *gin.Context) {
	date := queryDate(c)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	type row struct {
		ProductID   string
		ProductName string
		Quantity    int
		SoldAt      time.Time
	}
	query := h.db.Model(&database.SaleLine{}).
		Select("sale_lines.product_id, products.name as product_name, sale_lines.quantity, sales.sold_at").
		Joins("JOIN sales ON sale_lines.sale_id = sales.id").
		Joins("JOIN products ON sale_lines.product_id = products.id").
		Where("sales.status = ?", database.SaleCompleted).
		Where("sales.sold_at >= ? AND sales.sold_at < ?", dayStart, dayEnd).
		Where("products.category = ?", database.CategoryBeverage)
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("sales.branch_id = ?", branchID)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		response.Internal(c, "Failed to fetch beverage sales", nil)
		return
	}

	type acc struct {
		byProduct map[string]*BestSeller
		total     int
	}
	bands := map[string]*acc{}
	for _, r := range rows {
		band := TimeBand(r.SoldAt.UTC().Hour())
		if bands[band] == nil {
			bands[band] = &acc{byProduct: map[string]*BestSeller{}}
		}
		b := bands[band]
		if b.byProduct[r.ProductID] == nil {
			b.byProduct[r.ProductID] = &BestSeller{ProductID: r.ProductID, ProductName: r.ProductName}
		}
		b.byProduct[r.ProductID].Quantity += r.Quantity
		b.total += r.Quantity
	}

	var result []bandEntry
	for band, b := range bands {
		var beverages []BestSeller
		for _, s := range b.byProduct {
			beverages = append(beverages, *s)
		}
		sort.Slice(beverages, func(i, j int) bool { return beverages[i].Quantity > beverages[j].Quantity })
		if len(beverages) > 5 {
			beverages = beverages[:5]
		}
		result = append(result, bandEntry{Band: band, Beverages: beverages, Total: b.total})
	}
	sort.Slice(result, func(i, j int) bool {
		return timeBandOrder(result[i].Band) < timeBandOrder(result[j].Band)
	})

	response.OK(c, gin.H{"bands": result, "date": dayStart.Format("2006-01-02")}, "")
}

type lineProfit struct {
	Category        string  `json:"category"`
	Revenue         float64 `json:"revenue"`
	Quantity        int     `json:"quantity"`
	EstimatedProfit float64 `json:"estimated_profit"`
	MarginPercent   float64 `json:"margin_percent"`
}

// GetProfitByLine aggregates revenue by product category with an estimated
// margin. Real per-product costing would need recipe costs rolled up; the
// flat margin mirrors how the business reads this number today.
func (h *Handler) GetProfitByLine(c *gin.Context) {
	from, to := queryRange(c, 30)
	const estimatedMargin = 0.45

	query := h.db.Model(&database.SaleLine{}).
		Select("products.category, SUM(sale_lines.subtotal) as revenue, SUM(sale_lines.quantity) as quantity").
		Joins("JOIN sales ON sale_lines.sale_id = sales.id").
		Joins("JOIN products ON sale_lines.product_id = products.id").
		Where("sales.status = ?", database.SaleCompleted).
		Where("sales.sold_at >= ? AND sales.sold_at <= ?", from, to)
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("sales.branch_id = ?", branchID)
	}

	var lines []lineProfit
	if err := query.Group("products.category").Order("revenue DESC").Scan(&lines).Error; err != nil {
		response.Internal(c, "Failed to fetch profit by line", nil)
		return
	}
	for i := range lines {
		lines[i].EstimatedProfit = lines[i].Revenue * estimatedMargin
		lines[i].MarginPercent = estimatedMargin * 100
	}

	response.OK(c, gin.H{
		"lines": lines,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
	}, "")
}

type wasteEntry struct {
	RawMaterial string  `json:"raw_material"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	TotalCost   float64 `json:"total_cost"`
	Incidents   int     `json:"incidents"`
}

// GetWaste summarizes waste movements per raw material, most costly first.
func (h *Handler) GetWaste(c *gin.Context) {
	from, to := queryRange(c, 30)

	var entries []wasteEntry
	err := h.db.Model(&database.InventoryMovement{}).
		Select("raw_materials.name as raw_material, raw_materials.category, SUM(inventory_movements.quantity) as quantity, SUM(inventory_movements.total_cost) as total_cost, COUNT(*) as incidents").
		Joins("JOIN raw_materials ON inventory_movements.raw_material_id = raw_materials.id").
		Where("inventory_movements.kind = ?", database.MovementWaste).
		Where("inventory_movements.created_at >= ? AND inventory_movements.created_at <= ?", from, to).
		Group("raw_materials.name, raw_materials.category").
		Order("total_cost DESC").
		Scan(&entries).Error
	if err != nil {
		response.Internal(c, "Failed to fetch waste data", nil)
		return
	}

	var totalCost float64
	for _, e := range entries {
		totalCost += e.TotalCost
	}

	response.OK(c, gin.H{
		"items":      entries,
		"total_cost": totalCost,
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
	}, "")
}

// GetFull bundles the landing-page widgets into one payload.
func (h *Handler) GetFull(c *gin.Context) {
	date := queryDate(c)
	from := date.AddDate(0, 0, -30)

	var kpiDay struct {
		Total float64
		Count int
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	h.completedSales(c).
		Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
		Where("sold_at >= ? AND sold_at < ?", dayStart, dayStart.Add(24*time.Hour)).
		Scan(&kpiDay)

	tamales, _ := h.bestSellers(c, database.CategoryTamal, from, date.Add(24*time.Hour), 5)

	var critical []database.RawMaterial
	h.db.Where("critical_point = ?", true).Order("current_stock ASC").Limit(10).Find(&critical)

	response.OK(c, gin.H{
		"date": dayStart.Format("2006-01-02"),
		"day": DayKPIs{
			Total:         kpiDay.Total,
			OrderCount:    kpiDay.Count,
			AverageTicket: AverageTicket(kpiDay.Total, kpiDay.Count),
		},
		"top_tamales":        tamales,
		"critical_materials": critical,
	}, "")
}
