package domain

import (
	"fmt"
	"math"
)

// ArticleRequirement is the quantity of one article consumed per unit of product.
// On the wire the article reference is named "id".
type ArticleRequirement struct {
	ArticleID      string `json:"id"`
	AmountRequired int    `json:"amountRequired"`
}

type Product struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Articles []ArticleRequirement `json:"articles"`
}

func (p Product) GetID() string { return p.ID }

type ProductFields struct {
	Name     string               `json:"name,omitempty"`
	Articles []ArticleRequirement `json:"articles,omitempty"`
}

// RequiredAmount is perUnit*quantity. ok is false when the product does not
// fit in an int.
func RequiredAmount(perUnit, quantity int) (amount int, ok bool) {
	if perUnit == 0 || quantity == 0 {
		return 0, true
	}
	if (perUnit == -1 && quantity == math.MinInt) || (quantity == -1 && perUnit == math.MinInt) {
		return 0, false
	}
	amount = perUnit * quantity
	if amount/quantity != perUnit {
		return 0, false
	}
	return amount, true
}

// DeductionsFor returns the stock that selling amountSold units of p consumes,
// one entry per requirement. An amount that overflows is ErrInvalidQuantity.
func DeductionsFor(p Product, amountSold int) ([]StockDeduction, error) {
	deductions := make([]StockDeduction, 0, len(p.Articles))
	for _, req := range p.Articles {
		amount, ok := RequiredAmount(req.AmountRequired, amountSold)
		if !ok {
			return nil, fmt.Errorf("%w: %d of product %s overflows article %s", ErrInvalidQuantity, amountSold, p.ID, req.ArticleID)
		}
		deductions = append(deductions, StockDeduction{
			ID:               req.ArticleID,
			AmountToSubtract: amount,
		})
	}
	return deductions, nil
}
