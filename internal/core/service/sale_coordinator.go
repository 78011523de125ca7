package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/mirror"
	"github.com/rl1809/warehouse/internal/port"
)

var (
	ErrSaleInProgress      = errors.New("sale in progress")
	ErrSaleNotRegistered   = errors.New("sale not registered")
	ErrWarehouseNotUpdated = errors.New("warehouse not updated")
)

type SaleCoordinatorDeps struct {
	Client    port.InventoryClient
	Articles  *ArticleService
	Products  *ProductService
	Guard     port.SaleGuard
	Notifier  port.Notifier
	Incidents port.IncidentRepository
	Events    port.EventPublisher
	Tracer    trace.Tracer
	Logger    *zap.Logger
}

// SaleCoordinator owns the sales mirror and drives the sale-then-deduct cycle.
//
// The guard spans only the sale creation call. A new sale may start while
// the deduction of the previous one is still outstanding.
type SaleCoordinator struct {
	client    port.InventoryClient
	sales     *mirror.Mirror[domain.Sale]
	articles  *ArticleService
	products  *ProductService
	guard     port.SaleGuard
	notifier  port.Notifier
	incidents port.IncidentRepository
	events    port.EventPublisher
	tracer    trace.Tracer
	logger    *zap.Logger
}

func NewSaleCoordinator(deps SaleCoordinatorDeps) *SaleCoordinator {
	c := &SaleCoordinator{
		client:    deps.Client,
		sales:     mirror.New[domain.Sale](),
		articles:  deps.Articles,
		products:  deps.Products,
		guard:     deps.Guard,
		notifier:  deps.Notifier,
		incidents: deps.Incidents,
		events:    deps.Events,
		tracer:    deps.Tracer,
		logger:    deps.Logger,
	}
	if c.guard == nil {
		c.guard = NewLocalSaleGuard()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("github.com/rl1809/warehouse/internal/core/service")
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// CreateSale registers a sale and then deducts the stock it consumes.
//
// On ErrWarehouseNotUpdated the returned sale is valid and mirrored: the sale
// exists remotely but stock was not deducted. It is not rolled back.
// Once the sale is registered the deduction runs to completion even if ctx
// is cancelled.
func (c *SaleCoordinator) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	ctx, span := c.tracer.Start(ctx, "sale.create", trace.WithAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.Int("sale.amount_sold", req.AmountSold),
	))
	defer span.End()

	if err := c.validate(req); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Sale{}, err
	}

	sale, err := c.registerSale(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Sale{}, err
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID))

	ctx = context.WithoutCancel(ctx)
	deductions, changed, err := c.deduct(ctx, sale)

	c.publish(ctx, domain.SaleEvent{Type: domain.SaleEventCreated, Sale: sale})
	if err != nil {
		c.publish(ctx, domain.SaleEvent{Type: domain.SaleEventDeductionFailed, Sale: sale, Deductions: deductions})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return sale, err
	}
	c.publish(ctx, domain.SaleEvent{
		Type:       domain.SaleEventStockDeducted,
		Sale:       sale,
		Deductions: deductions,
		Articles:   changed,
	})

	span.SetStatus(codes.Ok, "sale registered")
	return sale, nil
}

// validate rejects amounts that can never be deducted, before anything is
// written remotely.
func (c *SaleCoordinator) validate(req domain.SaleRequest) error {
	if req.AmountSold <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, req.AmountSold)
	}
	product, err := c.products.Product(req.ProductID)
	if err != nil {
		// Unknown products are handled after registration.
		return nil
	}
	_, err = domain.DeductionsFor(product, req.AmountSold)
	return err
}

// registerSale holds the guard for the duration of the remote create call.
func (c *SaleCoordinator) registerSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	ok, err := c.guard.TryAcquire(ctx)
	if err != nil {
		alert(ctx, c.notifier, domain.NotificationSaleNotRegistered, domain.MessageSaleNotRegistered)
		c.logger.Error("error acquiring sale guard", zap.Error(err))
		return domain.Sale{}, fmt.Errorf("%w: acquire guard: %w", ErrSaleNotRegistered, err)
	}
	if !ok {
		return domain.Sale{}, ErrSaleInProgress
	}

	sale, err := c.client.CreateSale(ctx, req)
	if err != nil {
		c.releaseGuard(ctx)
		alert(ctx, c.notifier, domain.NotificationSaleNotRegistered, domain.MessageSaleNotRegistered)
		c.logger.Error("error creating sale",
			zap.String("product_id", req.ProductID),
			zap.Int("amount_sold", req.AmountSold),
			zap.Error(err),
		)
		return domain.Sale{}, fmt.Errorf("%w: %w", ErrSaleNotRegistered, err)
	}

	c.sales.ApplyCreated(sale)
	c.releaseGuard(ctx)

	c.logger.Info("sale registered",
		zap.String("sale_id", sale.ID),
		zap.String("product_id", sale.ProductID),
		zap.Int("amount_sold", sale.AmountSold),
	)
	return sale, nil
}

func (c *SaleCoordinator) releaseGuard(ctx context.Context) {
	if err := c.guard.Release(ctx); err != nil {
		c.logger.Error("error releasing sale guard", zap.Error(err))
	}
}

func (c *SaleCoordinator) deduct(ctx context.Context, sale domain.Sale) ([]domain.StockDeduction, []domain.Article, error) {
	ctx, span := c.tracer.Start(ctx, "sale.deduct", trace.WithAttributes(
		attribute.String("sale.id", sale.ID),
	))
	defer span.End()

	product, err := c.products.Product(sale.ProductID)
	if err == nil {
		var deductions []domain.StockDeduction
		deductions, err = domain.DeductionsFor(product, sale.AmountSold)
		if err == nil {
			return c.submit(ctx, span, sale, deductions)
		}
	}

	alert(ctx, c.notifier, domain.NotificationWarehouseNotUpdated, domain.MessageWarehouseNotUpdated)
	c.logger.Error("stock not deducted for sold product",
		zap.String("sale_id", sale.ID),
		zap.String("product_id", sale.ProductID),
		zap.Error(err),
	)
	c.recordIncident(ctx, sale, nil, err)
	span.SetStatus(codes.Error, err.Error())
	return nil, nil, fmt.Errorf("%w: %w", ErrWarehouseNotUpdated, err)
}

func (c *SaleCoordinator) submit(ctx context.Context, span trace.Span, sale domain.Sale, deductions []domain.StockDeduction) ([]domain.StockDeduction, []domain.Article, error) {
	changed, err := c.articles.DeductStock(ctx, deductions)
	if err != nil {
		c.recordIncident(ctx, sale, deductions, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return deductions, nil, fmt.Errorf("%w: %w", ErrWarehouseNotUpdated, err)
	}
	span.SetAttributes(attribute.Int("articles.changed", len(changed)))
	return deductions, changed, nil
}

func (c *SaleCoordinator) recordIncident(ctx context.Context, sale domain.Sale, deductions []domain.StockDeduction, cause error) {
	if c.incidents == nil {
		return
	}
	incident := domain.Incident{
		ID:         uuid.New().String(),
		SaleID:     sale.ID,
		ProductID:  sale.ProductID,
		Deductions: deductions,
		Cause:      cause.Error(),
		CreatedAt:  time.Now(),
	}
	if err := c.incidents.RecordIncident(ctx, incident); err != nil {
		c.logger.Error("CRITICAL failed to record incident",
			zap.String("sale_id", sale.ID),
			zap.Error(err),
		)
	}
}

func (c *SaleCoordinator) publish(ctx context.Context, event domain.SaleEvent) {
	if c.events == nil {
		return
	}
	event.OccurredAt = time.Now()
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish sale event",
			zap.String("type", string(event.Type)),
			zap.String("sale_id", event.Sale.ID),
			zap.Error(err),
		)
	}
}

func (c *SaleCoordinator) LoadSales(ctx context.Context) error {
	if err := c.sales.Load(ctx, c.client.ListSales); err != nil {
		c.logger.Error("error fetching sales", zap.Error(err))
		return fmt.Errorf("fetch sales: %w", err)
	}
	c.logger.Info("sales loaded", zap.Int("count", c.sales.Len()))
	return nil
}

// UpdateSale changes the sale record only; stock is not recomputed.
func (c *SaleCoordinator) UpdateSale(ctx context.Context, id string, fields domain.SaleFields) (domain.Sale, error) {
	sale, err := c.client.UpdateSale(ctx, id, fields)
	if err != nil {
		c.logger.Error("error updating sale", zap.String("sale_id", id), zap.Error(err))
		return domain.Sale{}, fmt.Errorf("update sale %s: %w", id, err)
	}
	c.sales.ApplyUpdated(id, sale)
	return sale, nil
}

func (c *SaleCoordinator) DeleteSale(ctx context.Context, id string) error {
	if err := c.client.DeleteSale(ctx, id); err != nil {
		c.logger.Error("error deleting sale", zap.String("sale_id", id), zap.Error(err))
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	c.sales.ApplyDeleted(id)
	return nil
}

func (c *SaleCoordinator) Sales() []domain.Sale {
	return c.sales.Items()
}

func (c *SaleCoordinator) IsSalesDataFetching() bool {
	return c.sales.IsLoading()
}

// IsSaleInProgress reports the guard. If the guard cannot be read it reports
// true so callers keep the sale action disabled.
func (c *SaleCoordinator) IsSaleInProgress(ctx context.Context) bool {
	held, err := c.guard.Held(ctx)
	if err != nil {
		c.logger.Error("error reading sale guard", zap.Error(err))
		return true
	}
	return held
}

func (c *SaleCoordinator) loaded() bool {
	return c.sales.Loaded()
}
