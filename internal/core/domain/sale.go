package domain

type Sale struct {
	ID         string `json:"id,omitempty"`
	ProductID  string `json:"productId"`
	AmountSold int    `json:"amountSold"`
}

func (s Sale) GetID() string { return s.ID }

// SaleRequest is the payload submitted to register a new sale.
type SaleRequest struct {
	ProductID  string `json:"productId"`
	AmountSold int    `json:"amountSold"`
}

type SaleFields struct {
	ProductID  string `json:"productId,omitempty"`
	AmountSold int    `json:"amountSold,omitempty"`
}
