package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/cards"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/swap"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/infrastructure/notify"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/infrastructure/postgres"
	httpRouter "github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/interfaces/http"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/config"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	// Pool-bound repos for reads outside transactions; the tx runner binds
	// its own set to each transaction.
	cardRepo := postgres.NewCardRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stationRepo := postgres.NewStationRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	swapRepo := postgres.NewSwapRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := notify.NewLogNotifier(log)
	activity := notify.NewLogActivity(log)

	generateUC := cards.NewGenerateUseCase(txRunner, productRepo, activity)
	stockInUC := stock.NewStockInUseCase(txRunner, productRepo, activity)
	stockOutUC := stock.NewStockOutUseCase(txRunner, productRepo, stationRepo, cfg.Stock, notifier, activity)
	lowStock := stock.NewLowStockMonitor(txRunner, cfg.Stock, notifier)
	receiptUC := stock.NewReceiptValidationUseCase(txRunner, lowStock, notifier, activity)
	issueUC := stock.NewIssueResolutionUseCase(txRunner, activity)
	stockQueries := stock.NewQueryService(movementRepo, cardRepo, productRepo)
	swapUC := swap.NewUseCase(txRunner, notifier, activity)
	swapQueries := swap.NewQueryService(swapRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		GenerateUC:   generateUC,
		StockInUC:    stockInUC,
		StockOutUC:   stockOutUC,
		ReceiptUC:    receiptUC,
		IssueUC:      issueUC,
		StockQueries: stockQueries,
		SwapUC:       swapUC,
		SwapQueries:  swapQueries,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
