package ai

import (
	"bytes"
	"context"
	"encoding/json"
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

	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

func TestNewSelectsMockWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{}
	_, ok := New(cfg).(*Mock)
	assert.True(t, ok)

	cfg.OpenRouter.APIKey = "sk-test"
	_, ok = New(cfg).(*OpenRouter)
	assert.True(t, ok)

	// An explicit mock flag wins even with a key configured.
	cfg.OpenRouter.UseMock = true
	_, ok = New(cfg).(*Mock)
	assert.True(t, ok)
}

func TestMockAnswersEveryOperation(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	for name, call := range map[string]func() (string, error){
		"ask":       func() (string, error) { return m.Ask(ctx, "¿Cuáles son los tamales más vendidos?", "") },
		"combo":     func() (string, error) { return m.SuggestCombo(ctx, "picante y atol") },
		"sales":     func() (string, error) { return m.AnalyzeSales(ctx, "datos") },
		"products":  func() (string, error) { return m.RecommendProducts(ctx, "historial") },
		"inventory": func() (string, error) { return m.OptimizeInventory(ctx, "stock") },
	} {
		answer, err := call()
		require.NoError(t, err, name)
		assert.NotEmpty(t, answer, name)
	}
}

func TestOpenRouterGatewayErrorReturnedInBand(t *testing.T) {
	// A failing gateway must produce a descriptive reply, never an error
	// that would bubble up as a 500.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	o := NewOpenRouter(&config.Config{OpenRouter: config.OpenRouterConfig{
		APIKey: "bad", BaseURL: srv.URL, Model: "test", MaxTokens: 100, Temperature: 0.5,
	}})

	answer, err := o.Ask(context.Background(), "hola", "")
	require.NoError(t, err)
	assert.Contains(t, answer, "401")
}

func TestOpenRouterParsesChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Los de recado rojo."}},
			},
		})
	}))
	defer srv.Close()

	o := NewOpenRouter(&config.Config{OpenRouter: config.OpenRouterConfig{
		APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model", MaxTokens: 100, Temperature: 0.5,
	}})

	answer, err := o.Ask(context.Background(), "¿Cuál es el más vendido?", "")
	require.NoError(t, err)
	assert.Equal(t, "Los de recado rojo.", answer)
}

func TestAskEndpointWithMock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := NewHandler(db, NewMock())
	r := gin.New()
	r.POST("/ai/ask", h.Ask)
	r.GET("/ai/optimize-inventory", h.OptimizeInventory)

	raw, _ := json.Marshal(gin.H{"prompt": "¿Qué tamal me recomiendas?"})
	req := httptest.NewRequest(http.MethodPost, "/ai/ask", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "answer")

	// Missing prompt is a validation error.
	req = httptest.NewRequest(http.MethodPost, "/ai/ask", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No materials yet: a friendly in-band message, not an error.
	req = httptest.NewRequest(http.MethodGet, "/ai/optimize-inventory", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recommendation")
}

func TestRecommendProductsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	branch := database.Branch{Name: "Zona 1", IsActive: true}
	require.NoError(t, db.Create(&branch).Error)
	seller := database.User{Name: "Vendedor", Email: "seller@cazuela.gt", Role: database.RoleSeller, BranchID: branch.ID, IsActive: true}
	require.NoError(t, db.Create(&seller).Error)
	tamal := database.Product{Name: "Tamal de chipilín", Category: database.CategoryTamal, BasePrice: 18, IsActive: true}
	require.NoError(t, db.Create(&tamal).Error)

	sale := database.Sale{
		OrderNumber: "ORD-REC-1", BranchID: branch.ID, UserID: seller.ID,
		Subtotal: 36, Total: 36, Status: database.SaleCompleted,
		SoldAt: time.Now().UTC(),
		Lines: []database.SaleLine{
			{ProductID: &tamal.ID, Quantity: 2, UnitPrice: 18, Subtotal: 36},
		},
	}
	require.NoError(t, db.Create(&sale).Error)

	h := NewHandler(db, NewMock())
	newRouter := func(userID string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
		r.GET("/ai/recommend-products", h.RecommendProducts)
		return r
	}

	req := httptest.NewRequest(http.MethodGet, "/ai/recommend-products", nil)
	w := httptest.NewRecorder()
	newRouter(seller.ID.String()).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "recommendations")

	// An operator with no completed sales gets the friendly in-band reply.
	other := database.User{Name: "Nuevo", Email: "nuevo@cazuela.gt", Role: database.RoleSeller, BranchID: branch.ID, IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	req = httptest.NewRequest(http.MethodGet, "/ai/recommend-products", nil)
	w = httptest.NewRecorder()
	newRouter(other.ID.String()).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "historial")
}
