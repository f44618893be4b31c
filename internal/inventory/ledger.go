package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

// ErrMaterialNotFound is returned when a movement references a raw material
// that does not exist. Handlers map it to 404 instead of 400.
var ErrMaterialNotFound = errors.New("raw material not found")

// MovementSign returns the stock delta direction for a movement kind:
// +1 for inbound, -1 for outbound and waste, 0 for anything unknown.
func MovementSign(kind string) float64 {
	switch kind {
	case database.MovementInbound:
		return 1
	case database.MovementOutbound, database.MovementWaste:
		return -1
	default:
		return 0
	}
}

// IsCritical reports whether a stock level sits at or below its minimum.
func IsCritical(currentStock, minStock float64) bool {
	return currentStock <= minStock
}

// RecordMovement appends a ledger entry and adjusts the material's stock by
// the signed quantity. Stock is allowed to go negative: the ledger mirrors
// what physically happened on the floor, and a negative level surfaces as a
// critical-point alert rather than a rejected sale. The critical flag and,
// on inbound, the weighted average cost are recomputed before returning.
//
// Call inside a transaction; the stock adjustment uses an atomic UPDATE so
// concurrent movements against the same material cannot lose updates.
func RecordMovement(tx *gorm.DB, materialID uuid.UUID, kind string, quantity, unitCost float64, reason string, userID uuid.UUID) (*database.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("movement quantity must be positive, got %v", quantity)
	}
	sign := MovementSign(kind)
	if sign == 0 {
		return nil, fmt.Errorf("unknown movement kind %q", kind)
	}

	var material database.RawMaterial
	if err := tx.Where("id = ?", materialID).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, materialID)
		}
		return nil, err
	}

	movement := database.InventoryMovement{
		RawMaterialID: materialID,
		Kind:          kind,
		Quantity:      quantity,
		UnitCost:      unitCost,
		TotalCost:     quantity * unitCost,
		Reason:        reason,
		UserID:        userID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&database.RawMaterial{}).
		Where("id = ?", materialID).
		Update("current_stock", gorm.Expr("current_stock + ?", sign*quantity)).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("id = ?", materialID).First(&material).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"critical_point": IsCritical(material.CurrentStock, material.MinStock),
	}
	if kind == database.MovementInbound && unitCost > 0 {
		updates["avg_cost"] = weightedAvgCost(material, quantity, unitCost)
	}
	if err := tx.Model(&material).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &movement, nil
}

// weightedAvgCost blends the incoming lot into the running average. The
// previous stock figure excludes the lot just received; non-positive prior
// stock means the lot sets the cost outright.
func weightedAvgCost(material database.RawMaterial, quantity, unitCost float64) float64 {
	prevStock := material.CurrentStock - quantity
	if prevStock <= 0 || material.AvgCost <= 0 {
		return unitCost
	}
	return (prevStock*material.AvgCost + quantity*unitCost) / (prevStock + quantity)
}
