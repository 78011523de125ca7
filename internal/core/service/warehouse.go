package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
)

// State is the read surface the presentation layer renders from.
type State struct {
	Articles               []domain.Article `json:"articles"`
	Products               []domain.Product `json:"products"`
	Sales                  []domain.Sale    `json:"sales"`
	IsArticlesDataFetching bool             `json:"isArticlesDataFetching"`
	IsProductsDataFetching bool             `json:"isProductsDataFetching"`
	IsSalesDataFetching    bool             `json:"isSalesDataFetching"`
	IsSaleInProgress       bool             `json:"isSaleInProgress"`
}

// Warehouse bundles the three collection owners.
type Warehouse struct {
	Articles *ArticleService
	Products *ProductService
	Sales    *SaleCoordinator
	logger   *zap.Logger
}

func NewWarehouse(articles *ArticleService, products *ProductService, sales *SaleCoordinator, logger *zap.Logger) *Warehouse {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warehouse{
		Articles: articles,
		Products: products,
		Sales:    sales,
		logger:   logger,
	}
}

// Load fetches the three collections concurrently. A failed collection keeps
// its previous contents; the others still load.
func (w *Warehouse) Load(ctx context.Context) error {
	loaders := []func(context.Context) error{
		w.Articles.LoadArticles,
		w.Products.LoadProducts,
		w.Sales.LoadSales,
	}

	errs := make([]error, len(loaders))
	var wg sync.WaitGroup
	for i, load := range loaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = load(ctx)
		}()
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		w.logger.Warn("warehouse loaded with errors", zap.Error(err))
	}
	return err
}

func (w *Warehouse) State(ctx context.Context) State {
	return State{
		Articles:               w.Articles.Articles(),
		Products:               w.Products.Products(),
		Sales:                  w.Sales.Sales(),
		IsArticlesDataFetching: w.Articles.IsArticlesDataFetching(),
		IsProductsDataFetching: w.Products.IsProductsDataFetching(),
		IsSalesDataFetching:    w.Sales.IsSalesDataFetching(),
		IsSaleInProgress:       w.Sales.IsSaleInProgress(ctx),
	}
}

// Ready is true once every collection has loaded and none is reloading.
func (w *Warehouse) Ready() bool {
	if !w.Articles.loaded() || !w.Products.loaded() || !w.Sales.loaded() {
		return false
	}
	return !w.Articles.IsArticlesDataFetching() &&
		!w.Products.IsProductsDataFetching() &&
		!w.Sales.IsSalesDataFetching()
}
