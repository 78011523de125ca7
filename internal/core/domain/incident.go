package domain

import "time"

// Incident records a sale that was persisted while its stock deduction failed.
// It is kept for manual reconciliation; nothing reverses the sale.
type Incident struct {
	ID         string           `json:"id"`
	SaleID     string           `json:"saleId"`
	ProductID  string           `json:"productId"`
	Deductions []StockDeduction `json:"deductions"`
	Cause      string           `json:"cause"`
	CreatedAt  time.Time        `json:"createdAt"`
}
