package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/middleware"
)

func newAuthFixture(t *testing.T) (*gin.Engine, database.Branch) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	branch := database.Branch{Name: "Antigua", IsActive: true}
	require.NoError(t, db.Create(&branch).Error)

	cfg := config.Config{
		Env:              "test",
		JWTSecret:        "test-secret",
		JWTIssuer:        "la-cazuela-chapina",
		JWTExpiryMinutes: 60,
	}
	h := NewHandler(db, cfg)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", middleware.AuthRequired(cfg.JWTSecret), h.Me)

	return r, branch
}

func postJSON(t *testing.T, r *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type authEnvelope struct {
	Success bool         `json:"success"`
	Data    AuthResponse `json:"data"`
}

func TestRegisterAndLogin(t *testing.T) {
	r, branch := newAuthFixture(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"name": "Ana", "email": "ana@cazuela.gt", "password": "secreto1", "branch_id": branch.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Data.Token)
	assert.Equal(t, database.RoleSeller, env.Data.User.Role)
	assert.Equal(t, branch.ID, env.Data.User.BranchID)

	w = postJSON(t, r, "/auth/login", gin.H{"email": "ana@cazuela.gt", "password": "secreto1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Data.Token)

	// The issued token authorizes protected endpoints.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@cazuela.gt")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, branch := newAuthFixture(t)

	body := gin.H{"name": "Ana", "email": "ana@cazuela.gt", "password": "secreto1", "branch_id": branch.ID}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/auth/register", body).Code)
	assert.Equal(t, http.StatusConflict, postJSON(t, r, "/auth/register", body).Code)
}

func TestRegisterUnknownBranch(t *testing.T) {
	r, _ := newAuthFixture(t)
	w := postJSON(t, r, "/auth/register", gin.H{
		"name": "Ana", "email": "ana@cazuela.gt", "password": "secreto1",
		"branch_id": "4dbde0ec-7d19-4e5b-9a21-4b6ab0a7c111",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindOrProvisionUser(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	branch := database.Branch{Name: "Primera", IsActive: true}
	require.NoError(t, db.Create(&branch).Error)

	h := NewHandler(db, config.Config{Env: "test"})
	info := &googleUserInfo{ID: "google-123", Email: "nuevo@cazuela.gt", Name: "Nuevo"}

	// First federated login provisions a seller on the first active branch.
	user, isNew, err := h.findOrProvisionUser(info)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, database.RoleSeller, user.Role)
	assert.Equal(t, branch.ID, user.BranchID)
	assert.NotEmpty(t, user.PasswordHash)

	// Second login finds the same account.
	again, isNew, err := h.findOrProvisionUser(info)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, user.ID, again.ID)

	// A known email gets its Google account linked instead of duplicated.
	local := database.User{Name: "Luis", Email: "luis@cazuela.gt", PasswordHash: "x", Role: database.RoleManager, BranchID: branch.ID, IsActive: true}
	require.NoError(t, db.Create(&local).Error)
	linked, isNew, err := h.findOrProvisionUser(&googleUserInfo{ID: "google-456", Email: "luis@cazuela.gt", Name: "Luis"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, local.ID, linked.ID)
	assert.Equal(t, "google-456", linked.GoogleID)
}

func TestLoginWrongPassword(t *testing.T) {
	r, branch := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/auth/register", gin.H{
		"name": "Ana", "email": "ana@cazuela.gt", "password": "secreto1", "branch_id": branch.ID,
	}).Code)

	w := postJSON(t, r, "/auth/login", gin.H{"email": "ana@cazuela.gt", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// The message never says whether the email or the password was wrong.
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = postJSON(t, r, "/auth/login", gin.H{"email": "nadie@cazuela.gt", "password": "secreto1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}
