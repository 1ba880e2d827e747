package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appOrder "github.com/gurungd265/webshop/app/internal/application/order"
	appPayment "github.com/gurungd265/webshop/app/internal/application/payment"
	domcatalog "github.com/gurungd265/webshop/app/internal/domain/catalog"
	domledger "github.com/gurungd265/webshop/app/internal/domain/ledger"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	domuser "github.com/gurungd265/webshop/app/internal/domain/user"
	"github.com/gurungd265/webshop/app/internal/infrastructure/cache"
	httptransport "github.com/gurungd265/webshop/app/internal/infrastructure/http"
	"github.com/gurungd265/webshop/app/internal/infrastructure/id"
	"github.com/gurungd265/webshop/app/internal/infrastructure/memory"
	"github.com/gurungd265/webshop/app/internal/infrastructure/prometrics"
	"github.com/gurungd265/webshop/app/internal/pkg/logging"
)

func main() {
	logger := logging.MustNewLogger("webshop", getenvDefault("APP_ENV", "dev"))
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	metrics := prometrics.New("webshop")

	orderRepo := memory.NewOrderRepository()
	paymentRepo := memory.NewPaymentRepository()

	catalog := memory.NewCatalog()
	productCache := cache.NewProductCache(catalog)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		productCache.SetRedisClient(redis.NewClient(&redis.Options{Addr: addr}))
		logger.Info("product_cache_enabled", zap.String("redis_addr", addr))
	}

	carts := memory.NewCartProvider()
	users := memory.NewUserProvider()

	cardLedger := memory.NewBalanceLedger()
	paypayLedger := memory.NewBalanceLedger()
	pointLedger := memory.NewBalanceLedger()
	ledgers := map[dompay.Method]domledger.Ledger{
		dompay.MethodCreditCard: cardLedger,
		dompay.MethodPaypay:     paypayLedger,
		dompay.MethodPoint:      pointLedger,
	}

	ids := id.NewUUIDGenerator()
	numbers := id.NewOrderNumberGenerator()

	paymentService := appPayment.NewService(paymentRepo, orderRepo, ledgers, ids, metrics)
	orderService := appOrder.NewService(orderRepo, paymentService, carts, productCache, users, ids, numbers, metrics)

	seedDemoData(catalog, users, cardLedger, paypayLedger, pointLedger)

	handler := httptransport.NewHandler(orderService, paymentService)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	srv := &http.Server{
		Addr:              getenvDefault("HTTP_ADDR", ":8080"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_signal_received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_failed", zap.Error(err))
	}
	logger.Info("http_server_stopped")
}

// seedDemoData loads a small fixture set so the service is usable out of the
// box with the in-memory stores.
func seedDemoData(catalog *memory.Catalog, users *memory.UserProvider, card, paypay, point *memory.BalanceLedger) {
	catalog.Put(&domcatalog.Product{
		ID:            "prod-keyboard",
		Name:          "Mechanical Keyboard",
		Price:         decimal.NewFromInt(12000),
		StockQuantity: 25,
		MainImageURL:  "https://img.example.com/keyboard.png",
	})
	catalog.Put(&domcatalog.Product{
		ID:            "prod-mouse",
		Name:          "Wireless Mouse",
		Price:         decimal.NewFromInt(4500),
		StockQuantity: 40,
		MainImageURL:  "https://img.example.com/mouse.png",
	})

	demo := "demo@example.com"
	users.PutUser(&domuser.User{ID: "user-demo", Email: demo})
	users.PutAddress(&domuser.Address{
		ID:         "addr-demo-home",
		UserEmail:  demo,
		Type:       "HOME",
		Street:     "1-2-3 Shibuya",
		City:       "Tokyo",
		State:      "Tokyo",
		PostalCode: "150-0002",
		Country:    "JP",
		IsDefault:  true,
	})

	card.Deposit(demo, decimal.NewFromInt(100000))
	paypay.Deposit(demo, decimal.NewFromInt(50000))
	point.Deposit(demo, decimal.NewFromInt(3000))
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
