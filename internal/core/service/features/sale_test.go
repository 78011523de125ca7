package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/rl1809/warehouse/internal/adapter/notify"
	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/core/service/servicetest"
)

type saleTestContext struct {
	articles  []domain.Article
	products  []domain.Product
	inv       *servicetest.Inventory
	notes     *notify.Recorder
	incidents *storage.MemoryIncidentRepository
	warehouse *service.Warehouse
	sale      domain.Sale
	err       error
}

func (c *saleTestContext) reset() {
	*c = saleTestContext{}
}

func (c *saleTestContext) anArticleWithInStock(id string, stock int) error {
	c.articles = append(c.articles, domain.Article{ID: id, Name: id, AmountInStock: stock})
	return nil
}

func (c *saleTestContext) aProductRequiringOfArticle(id string, amount int, articleID string) error {
	c.products = append(c.products, domain.Product{
		ID:       id,
		Name:     id,
		Articles: []domain.ArticleRequirement{{ArticleID: articleID, AmountRequired: amount}},
	})
	return nil
}

func (c *saleTestContext) theWarehouseIsLoaded() error {
	c.inv = servicetest.NewInventory(c.articles, c.products, nil)
	c.notes = notify.NewRecorder(0, nil)
	c.incidents = storage.NewMemoryIncidentRepository()

	articles := service.NewArticleService(c.inv, c.notes, nil)
	products := service.NewProductService(c.inv, articles, nil)
	sales := service.NewSaleCoordinator(service.SaleCoordinatorDeps{
		Client:    c.inv,
		Articles:  articles,
		Products:  products,
		Notifier:  c.notes,
		Incidents: c.incidents,
	})
	c.warehouse = service.NewWarehouse(articles, products, sales, nil)
	return c.warehouse.Load(context.Background())
}

func (c *saleTestContext) theInventoryServiceRejectsNewSales() error {
	c.inv.FailCreateSale = true
	return nil
}

func (c *saleTestContext) theInventoryServiceRejectsStockDeductions() error {
	c.inv.FailBulkUpdate = true
	return nil
}

func (c *saleTestContext) checkAvailability(id string, quantity int, want bool) error {
	got, err := c.warehouse.Products.Availability(id, quantity)
	if err != nil {
		return err
	}
	if got.Available != want {
		return fmt.Errorf("availability of %s at %d: expected %v, got %v", id, quantity, want, got.Available)
	}
	return nil
}

func (c *saleTestContext) productIsAvailableForQuantity(id string, quantity int) error {
	return c.checkAvailability(id, quantity, true)
}

func (c *saleTestContext) productIsNotAvailableForQuantity(id string, quantity int) error {
	return c.checkAvailability(id, quantity, false)
}

func (c *saleTestContext) iSellOfProduct(amount int, id string) error {
	c.sale, c.err = c.warehouse.Sales.CreateSale(context.Background(), domain.SaleRequest{ProductID: id, AmountSold: amount})
	return nil
}

func (c *saleTestContext) theSaleSucceedsWithID(id string) error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.sale.ID != id {
		return fmt.Errorf("expected sale %q, got %q", id, c.sale.ID)
	}
	return nil
}

func (c *saleTestContext) theSaleFails() error {
	if !errors.Is(c.err, service.ErrSaleNotRegistered) {
		return fmt.Errorf("expected ErrSaleNotRegistered, got %v", c.err)
	}
	return nil
}

func (c *saleTestContext) theSaleIsKeptButTheWarehouseWasNotUpdated() error {
	if !errors.Is(c.err, service.ErrWarehouseNotUpdated) {
		return fmt.Errorf("expected ErrWarehouseNotUpdated, got %v", c.err)
	}
	if c.sale.ID == "" {
		return errors.New("expected the created sale to be returned")
	}
	return nil
}

func (c *saleTestContext) aDeductionOfFromArticleWasRequested(amount int, id string) error {
	calls := c.inv.BulkCalls()
	if len(calls) != 1 {
		return fmt.Errorf("expected 1 deduction request, got %d", len(calls))
	}
	want := domain.StockDeduction{ID: id, AmountToSubtract: amount}
	if len(calls[0]) != 1 || calls[0][0] != want {
		return fmt.Errorf("expected %+v, got %+v", want, calls[0])
	}
	return nil
}

func (c *saleTestContext) noDeductionWasRequested() error {
	if n := len(c.inv.BulkCalls()); n != 0 {
		return fmt.Errorf("expected no deduction, got %d", n)
	}
	return nil
}

func (c *saleTestContext) articleHasInStock(id string, stock int) error {
	a, err := c.warehouse.Articles.Article(id)
	if err != nil {
		return err
	}
	if a.AmountInStock != stock {
		return fmt.Errorf("expected %s stock %d, got %d", id, stock, a.AmountInStock)
	}
	return nil
}

func (c *saleTestContext) theSalesListContainsSale(id string) error {
	for _, s := range c.warehouse.Sales.Sales() {
		if s.ID == id {
			return nil
		}
	}
	return fmt.Errorf("sale %q not mirrored", id)
}

func (c *saleTestContext) theSalesListIsEmpty() error {
	if n := len(c.warehouse.Sales.Sales()); n != 0 {
		return fmt.Errorf("expected no sales, got %d", n)
	}
	return nil
}

func (c *saleTestContext) noSaleIsInProgress() error {
	if c.warehouse.Sales.IsSaleInProgress(context.Background()) {
		return errors.New("expected guard to be released")
	}
	return nil
}

func (c *saleTestContext) theUserWasNotified(kind string) error {
	kinds := c.notes.Kinds()
	if len(kinds) != 1 || string(kinds[0]) != kind {
		return fmt.Errorf("expected one %q notification, got %v", kind, kinds)
	}
	return nil
}

func (c *saleTestContext) anIncidentWasRecordedForSale(id string) error {
	incidents, err := c.incidents.ListIncidents(context.Background(), 0)
	if err != nil {
		return err
	}
	if len(incidents) != 1 || incidents[0].SaleID != id {
		return fmt.Errorf("expected one incident for %q, got %+v", id, incidents)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &saleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an article "([^"]*)" with (\d+) in stock$`, tc.anArticleWithInStock)
	ctx.Step(`^a product "([^"]*)" requiring (\d+) of article "([^"]*)"$`, tc.aProductRequiringOfArticle)
	ctx.Step(`^the warehouse is loaded$`, tc.theWarehouseIsLoaded)
	ctx.Step(`^the inventory service rejects new sales$`, tc.theInventoryServiceRejectsNewSales)
	ctx.Step(`^the inventory service rejects stock deductions$`, tc.theInventoryServiceRejectsStockDeductions)

	// When steps
	ctx.Step(`^I sell (\d+) of product "([^"]*)"$`, tc.iSellOfProduct)

	// Then steps
	ctx.Step(`^product "([^"]*)" is available for quantity (\d+)$`, tc.productIsAvailableForQuantity)
	ctx.Step(`^product "([^"]*)" is not available for quantity (\d+)$`, tc.productIsNotAvailableForQuantity)
	ctx.Step(`^the sale succeeds with id "([^"]*)"$`, tc.theSaleSucceedsWithID)
	ctx.Step(`^the sale fails$`, tc.theSaleFails)
	ctx.Step(`^the sale is kept but the warehouse was not updated$`, tc.theSaleIsKeptButTheWarehouseWasNotUpdated)
	ctx.Step(`^a deduction of (\d+) from article "([^"]*)" was requested$`, tc.aDeductionOfFromArticleWasRequested)
	ctx.Step(`^no deduction was requested$`, tc.noDeductionWasRequested)
	ctx.Step(`^article "([^"]*)" has (\d+) in stock$`, tc.articleHasInStock)
	ctx.Step(`^the sales list contains sale "([^"]*)"$`, tc.theSalesListContainsSale)
	ctx.Step(`^the sales list is empty$`, tc.theSalesListIsEmpty)
	ctx.Step(`^no sale is in progress$`, tc.noSaleIsInProgress)
	ctx.Step(`^the user was notified "([^"]*)"$`, tc.theUserWasNotified)
	ctx.Step(`^an incident was recorded for sale "([^"]*)"$`, tc.anIncidentWasRecordedForSale)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"sale.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
