package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/cards"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/swap"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	GenerateUC   *cards.GenerateUseCase
	StockInUC    *stock.StockInUseCase
	StockOutUC   *stock.StockOutUseCase
	ReceiptUC    *stock.ReceiptValidationUseCase
	IssueUC      *stock.IssueResolutionUseCase
	StockQueries *stock.QueryService
	SwapUC       *swap.UseCase
	SwapQueries  *swap.QueryService
	JWTSecret    string
}

// Router registers the API routes. Everything is behind the Bearer token;
// write endpoints are additionally gated by role.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	office := RequireRole(RoleOffice, RoleAdmin)
	station := RequireRole(RoleStation, RoleAdmin)

	// Card generation and range queries
	cardsGroup := api.Group("/cards")
	cardHandler := NewCardHandler(deps.GenerateUC, deps.StockQueries)
	cardsGroup.Post("/generate", office, cardHandler.Generate)
	cardsGroup.Get("/next-suffix", cardHandler.NextSuffix)
	cardsGroup.Get("/available-range", cardHandler.AvailableRange)

	// Stock movements
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockInUC, deps.StockOutUC, deps.ReceiptUC, deps.IssueUC, deps.StockQueries)
	stockGroup.Post("/in", office, stockHandler.StockIn)
	stockGroup.Post("/out", office, stockHandler.StockOut)
	stockGroup.Delete("/out/:id", office, stockHandler.CancelOut)
	stockGroup.Post("/out/:id/validate", station, stockHandler.ValidateReceipt)
	stockGroup.Post("/out/:id/resolve", office, stockHandler.ResolveIssue)
	stockGroup.Get("/movements", stockHandler.ListMovements)
	stockGroup.Get("/movements/:id", stockHandler.GetMovement)

	// Swaps
	swapsGroup := api.Group("/swaps")
	swapHandler := NewSwapHandler(deps.SwapUC, deps.SwapQueries)
	swapsGroup.Post("/", station, swapHandler.Create)
	swapsGroup.Get("/", swapHandler.List)
	swapsGroup.Get("/:id", swapHandler.Get)
	swapsGroup.Post("/:id/approve", office, swapHandler.Approve)
	swapsGroup.Post("/:id/reject", office, swapHandler.Reject)
	swapsGroup.Post("/:id/execute", station, swapHandler.Execute)
	swapsGroup.Post("/:id/cancel", swapHandler.Cancel)

	// Swap audit trail of a purchase
	api.Get("/purchases/:id/swap-history", swapHandler.HistoryByPurchase)
}
