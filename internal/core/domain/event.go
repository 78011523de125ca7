package domain

import "time"

type SaleEventType string

const (
	SaleEventCreated         SaleEventType = "sale.created"
	SaleEventStockDeducted   SaleEventType = "stock.deducted"
	SaleEventDeductionFailed SaleEventType = "stock.deduction_failed"
)

// SaleEvent describes one step of a sale-creation cycle.
type SaleEvent struct {
	Type       SaleEventType    `json:"type"`
	Sale       Sale             `json:"sale"`
	Deductions []StockDeduction `json:"deductions,omitempty"`
	Articles   []Article        `json:"articles,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
