package port

import (
	"context"

	"github.com/rl1809/warehouse/internal/core/domain"
)

// InventoryClient reaches the remote inventory service that owns the
// authoritative state of articles, products and sales.
type InventoryClient interface {
	ListArticles(ctx context.Context) ([]domain.Article, error)
	CreateArticle(ctx context.Context, fields domain.ArticleFields) (domain.Article, error)
	UpdateArticle(ctx context.Context, id string, fields domain.ArticleFields) (domain.Article, error)

	// BulkUpdateArticles subtracts stock and returns only the articles that changed
	BulkUpdateArticles(ctx context.Context, patches []domain.StockDeduction) ([]domain.Article, error)
	DeleteArticle(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, fields domain.ProductFields) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error)
	UpdateSale(ctx context.Context, id string, fields domain.SaleFields) (domain.Sale, error)
	DeleteSale(ctx context.Context, id string) error
}
