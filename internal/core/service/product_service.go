package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/availability"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/mirror"
	"github.com/rl1809/warehouse/internal/port"
)

type ProductService struct {
	client   port.InventoryClient
	products *mirror.Mirror[domain.Product]
	articles *ArticleService
	logger   *zap.Logger
}

func NewProductService(client port.InventoryClient, articles *ArticleService, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		client:   client,
		products: mirror.New[domain.Product](),
		articles: articles,
		logger:   logger,
	}
}

func (s *ProductService) LoadProducts(ctx context.Context) error {
	if err := s.products.Load(ctx, s.client.ListProducts); err != nil {
		s.logger.Error("error fetching products", zap.Error(err))
		return fmt.Errorf("fetch products: %w", err)
	}
	s.logger.Info("products loaded", zap.Int("count", s.products.Len()))
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, fields domain.ProductFields) (domain.Product, error) {
	product, err := s.client.CreateProduct(ctx, fields)
	if err != nil {
		s.logger.Error("error creating product", zap.Error(err))
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.products.ApplyCreated(product)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (domain.Product, error) {
	product, err := s.client.UpdateProduct(ctx, id, fields)
	if err != nil {
		s.logger.Error("error updating product", zap.String("product_id", id), zap.Error(err))
		return domain.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	if !s.products.ApplyUpdated(id, product) {
		s.logger.Warn("updated product is not mirrored", zap.String("product_id", id))
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("error deleting product", zap.String("product_id", id), zap.Error(err))
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.products.ApplyDeleted(id)
	return nil
}

func (s *ProductService) Products() []domain.Product {
	return s.products.Items()
}

func (s *ProductService) Product(id string) (domain.Product, error) {
	p, ok := s.products.Get(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (s *ProductService) IsProductsDataFetching() bool {
	return s.products.IsLoading()
}

// Availability checks the product against the article mirror as it is now.
func (s *ProductService) Availability(productID string, quantity int) (availability.ProductAvailability, error) {
	p, err := s.Product(productID)
	if err != nil {
		return availability.ProductAvailability{}, err
	}
	return availability.CheckProduct(p, s.articles.ArticlesByID(), quantity)
}

func (s *ProductService) loaded() bool {
	return s.products.Loaded()
}
