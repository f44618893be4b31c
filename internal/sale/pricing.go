package sale

import "fmt"

// LineTotal returns quantity × unitPrice for one sale line.
func LineTotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

// Totals computes the sale header amounts from its line subtotals. The
// total is floored at zero: a discount larger than the subtotal is allowed
// (a full comp) and simply clamps, it never produces a negative sale.
func Totals(lineSubtotals []float64, discount float64) (subtotal, total float64) {
	for _, s := range lineSubtotals {
		subtotal += s
	}
	total = subtotal - discount
	if total < 0 {
		total = 0
	}
	return subtotal, total
}

// ValidTransition reports whether a sale status change is allowed. Sales
// move one way: pending to completed or cancelled. Completed and cancelled
// are terminal even though the column itself would accept anything.
func ValidTransition(from, to string) error {
	if from != "pending" {
		return fmt.Errorf("sale is already %s", from)
	}
	if to != "completed" && to != "cancelled" {
		return fmt.Errorf("cannot move a pending sale to %q", to)
	}
	return nil
}
