package recipe

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

// Consumption maps raw material id to the quantity a sale consumes.
type Consumption map[uuid.UUID]float64

// merge adds other into c, scaled by factor.
func (c Consumption) merge(other Consumption, factor float64) {
	for materialID, qty := range other {
		c[materialID] += qty * factor
	}
}

// ResolveProduct returns the raw materials consumed by selling quantitySold
// units of a product: recipe.Quantity × quantitySold per recipe row.
// A product without recipes resolves to an empty map.
func ResolveProduct(db *gorm.DB, productID uuid.UUID, quantitySold int) (Consumption, error) {
	var recipes []database.Recipe
	if err := db.Where("product_id = ?", productID).Find(&recipes).Error; err != nil {
		return nil, err
	}

	consumption := Consumption{}
	for _, r := range recipes {
		consumption[r.RawMaterialID] += r.Quantity * float64(quantitySold)
	}
	return consumption, nil
}

// ResolveCombo sums the consumption of every constituent product line,
// scaled by the line quantity and the number of combos sold.
func ResolveCombo(db *gorm.DB, comboID uuid.UUID, quantitySold int) (Consumption, error) {
	var lines []database.ComboLine
	if err := db.Where("combo_id = ?", comboID).Find(&lines).Error; err != nil {
		return nil, err
	}

	consumption := Consumption{}
	for _, line := range lines {
		perCombo, err := ResolveProduct(db, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		consumption.merge(perCombo, float64(quantitySold))
	}
	return consumption, nil
}
