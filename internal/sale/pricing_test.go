package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 40.0, LineTotal(2, 20))
	assert.Equal(t, 15.0, LineTotal(1, 15))
	assert.Equal(t, 0.0, LineTotal(0, 99))
}

func TestTotals(t *testing.T) {
	subtotal, total := Totals([]float64{40, 15}, 5)
	assert.Equal(t, 55.0, subtotal)
	assert.Equal(t, 50.0, total)
}

func TestTotalsNoDiscount(t *testing.T) {
	subtotal, total := Totals([]float64{20}, 0)
	assert.Equal(t, 20.0, subtotal)
	assert.Equal(t, 20.0, total)
}

func TestTotalsDiscountClampsAtZero(t *testing.T) {
	// A discount larger than the subtotal is a full comp, not a refund.
	subtotal, total := Totals([]float64{20}, 50)
	assert.Equal(t, 20.0, subtotal)
	assert.Equal(t, 0.0, total)
}

func TestValidTransition(t *testing.T) {
	assert.NoError(t, ValidTransition("pending", "completed"))
	assert.NoError(t, ValidTransition("pending", "cancelled"))

	assert.Error(t, ValidTransition("completed", "cancelled"))
	assert.Error(t, ValidTransition("cancelled", "completed"))
	assert.Error(t, ValidTransition("completed", "pending"))
	assert.Error(t, ValidTransition("pending", "pending"))
}
