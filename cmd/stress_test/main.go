package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse/internal/adapter/notify"
	"github.com/rl1809/warehouse/internal/adapter/remote"
	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/observability"
	"github.com/rl1809/warehouse/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	productID := flag.String("product", "", "product to sell")
	totalRequests := flag.Int("requests", 50, "concurrent sale attempts")
	flag.Parse()

	if *productID == "" {
		log.Fatal("missing -product")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(config.LogConfig{Level: "warn", Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	client := remote.NewClient(cfg.API.URL, remote.WithTimeout(cfg.API.Timeout))

	var guard port.SaleGuard = service.NewLocalSaleGuard()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()

		// Clear a guard left behind by a crashed run
		rdb.Del(ctx, cfg.Redis.GuardKey)
		guard = storage.NewRedisSaleGuard(rdb, cfg.Redis.GuardKey, uuid.New().String(), cfg.Redis.GuardTTL)
	}

	notes := notify.NewRecorder(*totalRequests, logger)
	incidents := storage.NewMemoryIncidentRepository()
	articles := service.NewArticleService(client, notes, logger)
	products := service.NewProductService(client, articles, logger)
	sales := service.NewSaleCoordinator(service.SaleCoordinatorDeps{
		Client:    client,
		Articles:  articles,
		Products:  products,
		Guard:     guard,
		Notifier:  notes,
		Incidents: incidents,
		Logger:    logger,
	})
	warehouse := service.NewWarehouse(articles, products, sales, logger)

	if err := warehouse.Load(ctx); err != nil {
		log.Fatalf("failed to load warehouse: %v", err)
	}
	product, err := products.Product(*productID)
	if err != nil {
		log.Fatalf("failed to find product: %v", err)
	}
	before := articles.ArticlesByID()

	// Counters
	var successCount atomic.Int32
	var busyCount atomic.Int32
	var notUpdatedCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := sales.CreateSale(ctx, domain.SaleRequest{ProductID: product.ID, AmountSold: 1})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrSaleInProgress):
				busyCount.Add(1)
			case errors.Is(err, service.ErrWarehouseNotUpdated):
				notUpdatedCount.Add(1)
			default:
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	busy := busyCount.Load()
	notUpdated := notUpdatedCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Product:            %s\n", product.ID)
	fmt.Printf("Total Requests:     %d\n", *totalRequests)
	fmt.Printf("Successful:         %d\n", success)
	fmt.Printf("Sale In Progress:   %d\n", busy)
	fmt.Printf("Stock Not Updated:  %d\n", notUpdated)
	fmt.Printf("Failed:             %d\n", fail)
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Println("==========================================")

	if int(success+busy+notUpdated+fail) == *totalRequests {
		fmt.Println("PASS: Every request accounted for")
	} else {
		fmt.Println("FAIL: Lost requests")
	}

	// Verify remote stock against what the successful sales consumed
	if err := articles.LoadArticles(ctx); err != nil {
		log.Fatalf("failed to reload articles: %v", err)
	}
	after := articles.ArticlesByID()
	ok := true
	for _, req := range product.Articles {
		want := before[req.ArticleID].AmountInStock - int(success)*req.AmountRequired
		got := after[req.ArticleID].AmountInStock
		fmt.Printf("Article %s stock: %d (expected %d)\n", req.ArticleID, got, want)
		if got != want {
			ok = false
		}
	}
	if ok {
		fmt.Println("PASS: Stock matches successful sales")
	} else {
		fmt.Println("FAIL: Stock drifted from successful sales")
	}
}
