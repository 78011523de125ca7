// Package availability decides whether stock suffices for a candidate sale.
// Everything here is pure; callers pass the current article mirror on every call.
package availability

import (
	"fmt"

	"github.com/rl1809/warehouse/internal/core/domain"
)

// ProductAvailability is the per-article breakdown of an availability check.
type ProductAvailability struct {
	ProductID string                `json:"productId"`
	Quantity  int                   `json:"quantity"`
	Available bool                  `json:"available"`
	Articles  []ArticleAvailability `json:"articles"`
}

type ArticleAvailability struct {
	ArticleID      string `json:"id"`
	ArticleName    string `json:"name"`
	AmountRequired int    `json:"amountRequired"`
	AmountInStock  int    `json:"amountInStock"`
	Available      bool   `json:"available"`
}

// IndexArticles maps article id to article. Later duplicates win.
func IndexArticles(articles []domain.Article) map[string]domain.Article {
	byID := make(map[string]domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	return byID
}

// IsArticleAvailable reports whether stock covers quantity units of req. A
// required amount too large for an int is never available.
func IsArticleAvailable(article domain.Article, req domain.ArticleRequirement, quantity int) bool {
	need, ok := domain.RequiredAmount(req.AmountRequired, quantity)
	return ok && need <= article.AmountInStock
}

// IsProductAvailable reports whether every requirement can be met at quantity.
// A requirement referencing an article missing from articlesByID is an error.
func IsProductAvailable(reqs []domain.ArticleRequirement, articlesByID map[string]domain.Article, quantity int) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	available := true
	for _, req := range reqs {
		article, ok := articlesByID[req.ArticleID]
		if !ok {
			return false, fmt.Errorf("%w: %s", domain.ErrArticleNotFound, req.ArticleID)
		}
		if !IsArticleAvailable(article, req, quantity) {
			available = false
		}
	}
	return available, nil
}

// CheckProduct is IsProductAvailable with the per-article result kept.
func CheckProduct(p domain.Product, articlesByID map[string]domain.Article, quantity int) (ProductAvailability, error) {
	result := ProductAvailability{
		ProductID: p.ID,
		Quantity:  quantity,
		Articles:  make([]ArticleAvailability, 0, len(p.Articles)),
	}

	available, err := IsProductAvailable(p.Articles, articlesByID, quantity)
	if err != nil {
		return result, fmt.Errorf("product %s: %w", p.ID, err)
	}
	result.Available = available

	for _, req := range p.Articles {
		article := articlesByID[req.ArticleID]
		result.Articles = append(result.Articles, ArticleAvailability{
			ArticleID:      req.ArticleID,
			ArticleName:    article.Name,
			AmountRequired: req.AmountRequired,
			AmountInStock:  article.AmountInStock,
			Available:      IsArticleAvailable(article, req, quantity),
		})
	}
	return result, nil
}
