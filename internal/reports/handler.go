package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
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

type DailySales struct {
	Date       string  `json:"date"`
	Total      float64 `json:"total"`
	OrderCount int     `json:"order_count"`
}

// reportDate normalizes a DATE() aggregate to YYYY-MM-DD. Postgres hands
// the column back as time.Time, sqlite as plain text, so scanning into a
// bare string would leak the driver's formatting into the report.
type reportDate string

func (d *reportDate) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = reportDate(v.UTC().Format("2006-01-02"))
	case string:
		*d = truncateDate(v)
	case []byte:
		*d = truncateDate(string(v))
	default:
		return fmt.Errorf("unsupported date value %T", value)
	}
	return nil
}

func truncateDate(s string) reportDate {
	if len(s) > len("2006-01-02") {
		return reportDate(s[:len("2006-01-02")])
	}
	return reportDate(s)
}

type SalesReport struct {
	From          string       `json:"from"`
	To            string       `json:"to"`
	Total         float64      `json:"total"`
	OrderCount    int          `json:"order_count"`
	AverageTicket float64      `json:"average_ticket"`
	Daily         []DailySales `json:"daily"`
}

func (h *Handler) buildSalesReport(c *gin.Context) (SalesReport, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now
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

	report := SalesReport{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}

	query := h.db.Model(&database.Sale{}).
		Where("status = ?", database.SaleCompleted).
		Where("sold_at >= ? AND sold_at <= ?", from, to)
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var totals struct {
		Total float64
		Count int
	}
	if err := query.Session(&gorm.Session{}).
		Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
		Scan(&totals).Error; err != nil {
		return report, err
	}
	report.Total = totals.Total
	report.OrderCount = totals.Count
	if totals.Count > 0 {
		report.AverageTicket = totals.Total / float64(totals.Count)
	}

	rows, err := query.Session(&gorm.Session{}).
		Select("DATE(sold_at) as date, COALESCE(SUM(total), 0) as total, COUNT(*) as order_count").
		Group("DATE(sold_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return report, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			date  reportDate
			daily DailySales
		)
		if err := rows.Scan(&date, &daily.Total, &daily.OrderCount); err != nil {
			return report, err
		}
		daily.Date = string(date)
		report.Daily = append(report.Daily, daily)
	}

	return report, nil
}

// GetSalesReport returns totals and a daily breakdown for the range,
// defaulting to the current month.
func (h *Handler) GetSalesReport(c *gin.Context) {
	report, err := h.buildSalesReport(c)
	if err != nil {
		response.Internal(c, "Failed to build sales report", nil)
		return
	}

	response.OK(c, report, "")
}

// ExportSalesReport streams the same report as an .xlsx workbook for the
// back office.
func (h *Handler) ExportSalesReport(c *gin.Context) {
	report, err := h.buildSalesReport(c)
	if err != nil {
		response.Internal(c, "Failed to build sales report", nil)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sales"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Sales report")
	f.SetCellValue(sheet, "A2", "From")
	f.SetCellValue(sheet, "B2", report.From)
	f.SetCellValue(sheet, "A3", "To")
	f.SetCellValue(sheet, "B3", report.To)
	f.SetCellValue(sheet, "A4", "Total (Q)")
	f.SetCellValue(sheet, "B4", report.Total)
	f.SetCellValue(sheet, "A5", "Orders")
	f.SetCellValue(sheet, "B5", report.OrderCount)
	f.SetCellValue(sheet, "A6", "Average ticket (Q)")
	f.SetCellValue(sheet, "B6", report.AverageTicket)

	f.SetCellValue(sheet, "A8", "Date")
	f.SetCellValue(sheet, "B8", "Total (Q)")
	f.SetCellValue(sheet, "C8", "Orders")
	for i, daily := range report.Daily {
		row := 9 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), daily.Date)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), daily.Total)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), daily.OrderCount)
	}

	filename := fmt.Sprintf("sales-%s-%s.xlsx", report.From, report.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
