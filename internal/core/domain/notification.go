package domain

import "time"

type NotificationKind string

const (
	NotificationSaleNotRegistered   NotificationKind = "sale_not_registered"
	NotificationWarehouseNotUpdated NotificationKind = "warehouse_not_updated"
)

const (
	MessageSaleNotRegistered   = "Something went wrong. Your sale was not registered properly"
	MessageWarehouseNotUpdated = "Something went wrong. Articles in the warehouse wasn't updated correctly"
)

// Notification is a user-visible alert raised by the engine.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
