package domain

type Article struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AmountInStock int    `json:"amountInStock"`
}

func (a Article) GetID() string { return a.ID }

// ArticleFields is the payload for creating or updating an article.
type ArticleFields struct {
	Name          string `json:"name,omitempty"`
	AmountInStock *int   `json:"amountInStock,omitempty"`
}

// StockDeduction is one entry of a bulk stock decrement.
type StockDeduction struct {
	ID               string `json:"id"`
	AmountToSubtract int    `json:"amountToSubtract"`
}
