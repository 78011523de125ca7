// Package servicetest provides an in-memory remote inventory for tests.
package servicetest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/rl1809/warehouse/internal/adapter/remote"
	"github.com/rl1809/warehouse/internal/core/domain"
)

// Inventory is a fake port.InventoryClient backed by in-memory collections.
// Failure fields make the matching call fail with a 500 remote error; gates
// block the matching call until they are closed or receive.
type Inventory struct {
	mu sync.Mutex

	articles []domain.Article
	products []domain.Product
	sales    []domain.Sale
	nextID   int

	FailListArticles bool
	FailListProducts bool
	FailListSales    bool
	FailCreateSale   bool
	FailBulkUpdate   bool

	CreateSaleGate chan struct{}
	BulkUpdateGate chan struct{}

	CreateSaleCalls int
	BulkUpdateCalls [][]domain.StockDeduction
}

func NewInventory(articles []domain.Article, products []domain.Product, sales []domain.Sale) *Inventory {
	return &Inventory{
		articles: slices.Clone(articles),
		products: slices.Clone(products),
		sales:    slices.Clone(sales),
	}
}

func serverError() error {
	return &remote.Error{Status: http.StatusInternalServerError, StatusText: "Internal Server Error", Message: "injected failure"}
}

func notFound(kind, id string) error {
	return &remote.Error{Status: http.StatusNotFound, StatusText: "Not Found", Message: kind + " " + id + " not found"}
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Inventory) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

// StockOf returns the server-side stock of an article.
func (f *Inventory) StockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.ID == id {
			return a.AmountInStock
		}
	}
	return -1
}

func (f *Inventory) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CreateSaleCalls
}

func (f *Inventory) BulkCalls() [][]domain.StockDeduction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.BulkUpdateCalls)
}

func (f *Inventory) ListArticles(ctx context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailListArticles {
		return nil, serverError()
	}
	return slices.Clone(f.articles), nil
}

func (f *Inventory) CreateArticle(ctx context.Context, fields domain.ArticleFields) (domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := domain.Article{ID: f.newID("a"), Name: fields.Name}
	if fields.AmountInStock != nil {
		a.AmountInStock = *fields.AmountInStock
	}
	f.articles = append(f.articles, a)
	return a, nil
}

func (f *Inventory) UpdateArticle(ctx context.Context, id string, fields domain.ArticleFields) (domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.articles {
		if f.articles[i].ID != id {
			continue
		}
		if fields.Name != "" {
			f.articles[i].Name = fields.Name
		}
		if fields.AmountInStock != nil {
			f.articles[i].AmountInStock = *fields.AmountInStock
		}
		return f.articles[i], nil
	}
	return domain.Article{}, notFound("article", id)
}

func (f *Inventory) BulkUpdateArticles(ctx context.Context, patches []domain.StockDeduction) ([]domain.Article, error) {
	f.mu.Lock()
	f.BulkUpdateCalls = append(f.BulkUpdateCalls, slices.Clone(patches))
	gate := f.BulkUpdateGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailBulkUpdate {
		return nil, serverError()
	}

	var changed []domain.Article
	for _, p := range patches {
		for i := range f.articles {
			if f.articles[i].ID == p.ID {
				f.articles[i].AmountInStock -= p.AmountToSubtract
				changed = append(changed, f.articles[i])
			}
		}
	}
	return changed, nil
}

func (f *Inventory) DeleteArticle(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles = slices.DeleteFunc(f.articles, func(a domain.Article) bool { return a.ID == id })
	return nil
}

func (f *Inventory) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailListProducts {
		return nil, serverError()
	}
	return slices.Clone(f.products), nil
}

func (f *Inventory) CreateProduct(ctx context.Context, fields domain.ProductFields) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Product{ID: f.newID("p"), Name: fields.Name, Articles: fields.Articles}
	f.products = append(f.products, p)
	return p, nil
}

func (f *Inventory) UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID != id {
			continue
		}
		if fields.Name != "" {
			f.products[i].Name = fields.Name
		}
		if fields.Articles != nil {
			f.products[i].Articles = fields.Articles
		}
		return f.products[i], nil
	}
	return domain.Product{}, notFound("product", id)
}

func (f *Inventory) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = slices.DeleteFunc(f.products, func(p domain.Product) bool { return p.ID == id })
	return nil
}

func (f *Inventory) ListSales(ctx context.Context) ([]domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailListSales {
		return nil, serverError()
	}
	return slices.Clone(f.sales), nil
}

func (f *Inventory) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	f.mu.Lock()
	f.CreateSaleCalls++
	gate := f.CreateSaleGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return domain.Sale{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateSale {
		return domain.Sale{}, serverError()
	}
	s := domain.Sale{ID: f.newID("s"), ProductID: req.ProductID, AmountSold: req.AmountSold}
	f.sales = append(f.sales, s)
	return s, nil
}

func (f *Inventory) UpdateSale(ctx context.Context, id string, fields domain.SaleFields) (domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sales {
		if f.sales[i].ID != id {
			continue
		}
		if fields.ProductID != "" {
			f.sales[i].ProductID = fields.ProductID
		}
		if fields.AmountSold != 0 {
			f.sales[i].AmountSold = fields.AmountSold
		}
		return f.sales[i], nil
	}
	return domain.Sale{}, notFound("sale", id)
}

func (f *Inventory) DeleteSale(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := len(f.sales)
	f.sales = slices.DeleteFunc(f.sales, func(s domain.Sale) bool { return s.ID == id })
	if len(f.sales) == before {
		return notFound("sale", id)
	}
	return nil
}
