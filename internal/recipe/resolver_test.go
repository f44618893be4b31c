package recipe

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) database.Product {
	t.Helper()
	p := database.Product{Name: name, Category: database.CategoryTamal, BasePrice: 20, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedMaterial(t *testing.T, db *gorm.DB, name string) database.RawMaterial {
	t.Helper()
	m := database.RawMaterial{Name: name, Unit: "lb"}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func TestResolveProductScalesByQuantity(t *testing.T) {
	db := newTestDB(t)
	tamal := seedProduct(t, db, "Tamal colorado")
	masa := seedMaterial(t, db, "Masa de maíz")
	hoja := seedMaterial(t, db, "Hoja de plátano")

	require.NoError(t, db.Create(&database.Recipe{ProductID: tamal.ID, RawMaterialID: masa.ID, Quantity: 0.5}).Error)
	require.NoError(t, db.Create(&database.Recipe{ProductID: tamal.ID, RawMaterialID: hoja.ID, Quantity: 1}).Error)

	consumption, err := ResolveProduct(db, tamal.ID, 4)
	require.NoError(t, err)

	assert.Len(t, consumption, 2)
	assert.InDelta(t, 2.0, consumption[masa.ID], 1e-9)
	assert.InDelta(t, 4.0, consumption[hoja.ID], 1e-9)
}

func TestResolveProductWithoutRecipes(t *testing.T) {
	db := newTestDB(t)
	tamal := seedProduct(t, db, "Tamal sin receta")

	consumption, err := ResolveProduct(db, tamal.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, consumption)
}

func TestResolveComboSumsConstituents(t *testing.T) {
	db := newTestDB(t)
	tamal := seedProduct(t, db, "Tamal")
	atol := seedProduct(t, db, "Atol de elote")
	masa := seedMaterial(t, db, "Masa")
	elote := seedMaterial(t, db, "Elote")

	require.NoError(t, db.Create(&database.Recipe{ProductID: tamal.ID, RawMaterialID: masa.ID, Quantity: 0.5}).Error)
	require.NoError(t, db.Create(&database.Recipe{ProductID: atol.ID, RawMaterialID: elote.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&database.Recipe{ProductID: atol.ID, RawMaterialID: masa.ID, Quantity: 0.1}).Error)

	combo := database.Combo{
		Name: "Desayuno chapín", Code: "DESAYUNO", Kind: database.ComboRegular, Price: 60, IsActive: true,
		Lines: []database.ComboLine{
			{ProductID: tamal.ID, Quantity: 2},
			{ProductID: atol.ID, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&combo).Error)

	// Two combos: masa 2×(2×0.5) + 2×(1×0.1) = 2.2, elote 2×(1×2) = 4.
	consumption, err := ResolveCombo(db, combo.ID, 2)
	require.NoError(t, err)

	assert.InDelta(t, 2.2, consumption[masa.ID], 1e-9)
	assert.InDelta(t, 4.0, consumption[elote.ID], 1e-9)
}
