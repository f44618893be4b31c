package inventory

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createMaterial(t *testing.T, db *gorm.DB, stock, minStock, avgCost float64) database.RawMaterial {
	t.Helper()
	m := database.RawMaterial{
		Name: "Hoja de plátano", Unit: "unidad",
		CurrentStock: stock, MinStock: minStock, AvgCost: avgCost,
		CriticalPoint: IsCritical(stock, minStock),
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) database.RawMaterial {
	t.Helper()
	var m database.RawMaterial
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m
}

func TestMovementSign(t *testing.T) {
	assert.Equal(t, 1.0, MovementSign(database.MovementInbound))
	assert.Equal(t, -1.0, MovementSign(database.MovementOutbound))
	assert.Equal(t, -1.0, MovementSign(database.MovementWaste))
	assert.Equal(t, 0.0, MovementSign("teleport"))
}

func TestIsCritical(t *testing.T) {
	assert.False(t, IsCritical(10, 5))
	assert.True(t, IsCritical(5, 5))
	assert.True(t, IsCritical(-2, 0))
}

func TestRecordMovementAdjustsStock(t *testing.T) {
	db := newTestDB(t)
	m := createMaterial(t, db, 10, 2, 3)
	userID := uuid.New()

	_, err := RecordMovement(db, m.ID, database.MovementInbound, 5, 0, "compra", userID)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, reload(t, db, m.ID).CurrentStock, 1e-9)

	_, err = RecordMovement(db, m.ID, database.MovementOutbound, 4, 0, "venta", userID)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, reload(t, db, m.ID).CurrentStock, 1e-9)

	_, err = RecordMovement(db, m.ID, database.MovementWaste, 1, 3, "merma", userID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, reload(t, db, m.ID).CurrentStock, 1e-9)
}

func TestStockEqualsSignedMovementSum(t *testing.T) {
	db := newTestDB(t)
	m := createMaterial(t, db, 0, 0, 0)
	userID := uuid.New()

	kinds := []struct {
		kind string
		qty  float64
	}{
		{database.MovementInbound, 20},
		{database.MovementOutbound, 7},
		{database.MovementWaste, 2},
		{database.MovementInbound, 4},
		{database.MovementOutbound, 3},
	}
	var expected float64
	for _, k := range kinds {
		_, err := RecordMovement(db, m.ID, k.kind, k.qty, 0, "", userID)
		require.NoError(t, err)
		expected += MovementSign(k.kind) * k.qty
	}

	assert.InDelta(t, expected, reload(t, db, m.ID).CurrentStock, 1e-9)

	var count int64
	db.Model(&database.InventoryMovement{}).Where("raw_material_id = ?", m.ID).Count(&count)
	assert.Equal(t, int64(len(kinds)), count)
}

func TestRecordMovementRecomputesCriticalFlag(t *testing.T) {
	db := newTestDB(t)
	m := createMaterial(t, db, 10, 5, 0)
	userID := uuid.New()

	_, err := RecordMovement(db, m.ID, database.MovementOutbound, 6, 0, "", userID)
	require.NoError(t, err)
	assert.True(t, reload(t, db, m.ID).CriticalPoint)

	_, err = RecordMovement(db, m.ID, database.MovementInbound, 10, 0, "", userID)
	require.NoError(t, err)
	assert.False(t, reload(t, db, m.ID).CriticalPoint)
}

func TestRecordMovementAllowsNegativeStock(t *testing.T) {
	// The ledger records what happened on the floor; an oversold material
	// goes negative and raises the critical flag instead of blocking.
	db := newTestDB(t)
	m := createMaterial(t, db, 2, 1, 0)
	userID := uuid.New()

	_, err := RecordMovement(db, m.ID, database.MovementOutbound, 5, 0, "venta", userID)
	require.NoError(t, err)

	after := reload(t, db, m.ID)
	assert.InDelta(t, -3.0, after.CurrentStock, 1e-9)
	assert.True(t, after.CriticalPoint)
}

func TestRecordMovementRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	m := createMaterial(t, db, 10, 0, 0)
	userID := uuid.New()

	_, err := RecordMovement(db, m.ID, database.MovementInbound, 0, 0, "", userID)
	assert.Error(t, err)

	_, err = RecordMovement(db, m.ID, database.MovementInbound, -3, 0, "", userID)
	assert.Error(t, err)

	_, err = RecordMovement(db, m.ID, "teleport", 1, 0, "", userID)
	assert.Error(t, err)

	_, err = RecordMovement(db, uuid.New(), database.MovementInbound, 1, 0, "", userID)
	assert.ErrorIs(t, err, ErrMaterialNotFound)

	// Failed movements leave no ledger entries.
	var count int64
	db.Model(&database.InventoryMovement{}).Count(&count)
	assert.Zero(t, count)
}

func TestInboundBlendsWeightedAverageCost(t *testing.T) {
	db := newTestDB(t)
	m := createMaterial(t, db, 0, 0, 0)
	userID := uuid.New()

	_, err := RecordMovement(db, m.ID, database.MovementInbound, 10, 2, "lote 1", userID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, reload(t, db, m.ID).AvgCost, 1e-9)

	// 10 @ Q2 plus 10 @ Q4 averages to Q3.
	_, err = RecordMovement(db, m.ID, database.MovementInbound, 10, 4, "lote 2", userID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, reload(t, db, m.ID).AvgCost, 1e-9)

	// Outbound movements never change the average cost.
	_, err = RecordMovement(db, m.ID, database.MovementOutbound, 5, 0, "venta", userID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, reload(t, db, m.ID).AvgCost, 1e-9)
}
