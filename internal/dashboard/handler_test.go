package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

type dashFixture struct {
	db     *gorm.DB
	router *gin.Engine
	branch database.Branch
	user   database.User
}

func newDashFixture(t *testing.T) *dashFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	branch := database.Branch{Name: "Central", IsActive: true}
	require.NoError(t, db.Create(&branch).Error)
	user := database.User{Name: "Cajero", Email: "cajero@cazuela.gt", Role: database.RoleSeller, BranchID: branch.ID}
	require.NoError(t, db.Create(&user).Error)

	h := NewHandler(db)
	r := gin.New()
	r.GET("/dashboard/kpis", h.GetKPIs)
	r.GET("/dashboard/top-tamales", h.GetTopTamales)
	r.GET("/dashboard/beverages-by-timeband", h.GetBeveragesByTimeband)

	return &dashFixture{db: db, router: r, branch: branch, user: user}
}

func (f *dashFixture) seedProduct(t *testing.T, name, category string) database.Product {
	t.Helper()
	p := database.Product{Name: name, Category: category, BasePrice: 20, IsActive: true}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *dashFixture) seedSale(t *testing.T, soldAt time.Time, status string, lines []database.SaleLine) database.Sale {
	t.Helper()
	var subtotal float64
	for i := range lines {
		lines[i].Subtotal = float64(lines[i].Quantity) * lines[i].UnitPrice
		subtotal += lines[i].Subtotal
	}
	s := database.Sale{
		OrderNumber: fmt.Sprintf("ORD-T-%d", time.Now().UnixNano()),
		BranchID:    f.branch.ID,
		UserID:      f.user.ID,
		Subtotal:    subtotal,
		Total:       subtotal,
		Status:      status,
		SoldAt:      soldAt,
		Lines:       lines,
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func (f *dashFixture) get(t *testing.T, path string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body.Data
}

func TestGetKPIs(t *testing.T) {
	f := newDashFixture(t)
	tamal := f.seedProduct(t, "Tamal", database.CategoryTamal)

	day := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	f.seedSale(t, day, database.SaleCompleted, []database.SaleLine{
		{ProductID: &tamal.ID, Quantity: 2, UnitPrice: 20},
	})
	f.seedSale(t, day.Add(2*time.Hour), database.SaleCompleted, []database.SaleLine{
		{ProductID: &tamal.ID, Quantity: 1, UnitPrice: 20},
	})
	// Cancelled sales never count.
	f.seedSale(t, day, database.SaleCancelled, []database.SaleLine{
		{ProductID: &tamal.ID, Quantity: 5, UnitPrice: 20},
	})
	// Previous month baseline.
	f.seedSale(t, day.AddDate(0, -1, 0), database.SaleCompleted, []database.SaleLine{
		{ProductID: &tamal.ID, Quantity: 2, UnitPrice: 20},
	})

	code, data := f.get(t, "/dashboard/kpis?date=2026-08-15")
	require.Equal(t, http.StatusOK, code)

	var dayKPIs DayKPIs
	require.NoError(t, json.Unmarshal(data["day"], &dayKPIs))
	assert.Equal(t, 60.0, dayKPIs.Total)
	assert.Equal(t, 2, dayKPIs.OrderCount)
	assert.InDelta(t, 30.0, dayKPIs.AverageTicket, 1e-9)

	var month MonthKPIs
	require.NoError(t, json.Unmarshal(data["month"], &month))
	assert.Equal(t, 60.0, month.Total)
	// 40 last month to 60 this month.
	assert.InDelta(t, 50.0, month.Growth, 1e-9)
}

func TestGetTopTamalesFewerProductsThanTop(t *testing.T) {
	f := newDashFixture(t)
	rojo := f.seedProduct(t, "Tamal rojo", database.CategoryTamal)
	negro := f.seedProduct(t, "Tamal negro", database.CategoryTamal)
	chipilin := f.seedProduct(t, "Tamal de chipilín", database.CategoryTamal)
	atol := f.seedProduct(t, "Atol", database.CategoryBeverage)

	now := time.Now().UTC()
	f.seedSale(t, now, database.SaleCompleted, []database.SaleLine{
		{ProductID: &rojo.ID, Quantity: 10, UnitPrice: 20},
		{ProductID: &negro.ID, Quantity: 4, UnitPrice: 20},
		{ProductID: &atol.ID, Quantity: 9, UnitPrice: 15},
	})
	f.seedSale(t, now, database.SaleCompleted, []database.SaleLine{
		{ProductID: &chipilin.ID, Quantity: 7, UnitPrice: 18},
	})

	code, data := f.get(t, "/dashboard/top-tamales?top=5")
	require.Equal(t, http.StatusOK, code)

	var items []BestSeller
	require.NoError(t, json.Unmarshal(data["items"], &items))
	// Three tamal products exist, so three rows, beverages excluded.
	require.Len(t, items, 3)
	assert.Equal(t, "Tamal rojo", items[0].ProductName)
	assert.Equal(t, 10, items[0].Quantity)
	assert.Equal(t, "Tamal de chipilín", items[1].ProductName)
	assert.Equal(t, "Tamal negro", items[2].ProductName)
}

func TestBeveragesByTimeband(t *testing.T) {
	f := newDashFixture(t)
	atol := f.seedProduct(t, "Atol de elote", database.CategoryBeverage)
	cacao := f.seedProduct(t, "Cacao batido", database.CategoryBeverage)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	f.seedSale(t, day.Add(5*time.Hour), database.SaleCompleted, []database.SaleLine{
		{ProductID: &atol.ID, Quantity: 3, UnitPrice: 15},
	})
	f.seedSale(t, day.Add(8*time.Hour), database.SaleCompleted, []database.SaleLine{
		{ProductID: &atol.ID, Quantity: 2, UnitPrice: 15},
		{ProductID: &cacao.ID, Quantity: 1, UnitPrice: 18},
	})
	f.seedSale(t, day.Add(20*time.Hour), database.SaleCompleted, []database.SaleLine{
		{ProductID: &cacao.ID, Quantity: 4, UnitPrice: 18},
	})

	code, data := f.get(t, "/dashboard/beverages-by-timeband?date=2026-08-15")
	require.Equal(t, http.StatusOK, code)

	var bands []bandEntry
	require.NoError(t, json.Unmarshal(data["bands"], &bands))
	require.Len(t, bands, 3)

	// Chronological band order: Dawn, Morning, Night.
	assert.Equal(t, "Dawn", bands[0].Band)
	assert.Equal(t, 3, bands[0].Total)
	assert.Equal(t, "Morning", bands[1].Band)
	assert.Equal(t, 3, bands[1].Total)
	assert.Equal(t, "Night", bands[2].Band)
	assert.Equal(t, 4, bands[2].Total)

	// Within a band the top beverage leads.
	assert.Equal(t, "Atol de elote", bands[1].Beverages[0].ProductName)
}
