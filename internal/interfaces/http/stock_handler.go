package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/dto"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/validator"
)

// StockHandler handles office-to-station stock movements.
type StockHandler struct {
	stockIn  *stock.StockInUseCase
	stockOut *stock.StockOutUseCase
	receipt  *stock.ReceiptValidationUseCase
	issue    *stock.IssueResolutionUseCase
	queries  *stock.QueryService
}

// NewStockHandler builds the handler.
func NewStockHandler(
	stockIn *stock.StockInUseCase,
	stockOut *stock.StockOutUseCase,
	receipt *stock.ReceiptValidationUseCase,
	issue *stock.IssueResolutionUseCase,
	queries *stock.QueryService,
) *StockHandler {
	return &StockHandler{stockIn: stockIn, stockOut: stockOut, receipt: receipt, issue: issue, queries: queries}
}

// StockIn godoc
// @Summary      Receive a generated serial range into office stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "product_id plus start/end suffix"
// @Success      201   {object}  dto.StockInResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/in [post]
func (h *StockHandler) StockIn(c *fiber.Ctx) error {
	var req dto.StockInRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	res, err := h.stockIn.Execute(c.Context(), stock.StockInInput{
		ProductID:   req.ProductID,
		StartSuffix: req.StartSuffix,
		EndSuffix:   req.EndSuffix,
		MovementAt:  time.Now(),
		Notes:       req.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockInResponse{
		MovementID:  res.MovementID,
		Quantity:    res.Quantity,
		FirstSerial: res.FirstSerial,
		LastSerial:  res.LastSerial,
	})
}

// StockOut godoc
// @Summary      Ship a serial range from the office to a station
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "product_id, station_id, start/end suffix"
// @Success      201   {object}  dto.StockOutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out [post]
func (h *StockHandler) StockOut(c *fiber.Ctx) error {
	var req dto.StockOutRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	res, err := h.stockOut.Execute(c.Context(), stock.StockOutInput{
		ProductID:   req.ProductID,
		StationID:   req.StationID,
		StartSuffix: req.StartSuffix,
		EndSuffix:   req.EndSuffix,
		MovementAt:  time.Now(),
		Notes:       req.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockOutResponse{
		MovementID:     res.MovementID,
		BatchID:        res.BatchID,
		RequestedCount: res.RequestedCount,
		SentCount:      res.SentCount,
		SkippedCount:   res.SkippedCount,
	})
}

// CancelOut godoc
// @Summary      Cancel a pending distribution and return the cards to office
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Movement UUID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/out/{id} [delete]
func (h *StockHandler) CancelOut(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.stockOut.Cancel(c.Context(), id, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "distribution cancelled"})
}

// ValidateReceipt godoc
// @Summary      Reconcile a pending distribution at the receiving station
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "Movement UUID"
// @Param        body  body  dto.ValidateReceiptRequest  true  "received/lost/damaged serial lists"
// @Success      200   {object}  dto.ValidateReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out/{id}/validate [post]
func (h *StockHandler) ValidateReceipt(c *fiber.Ctx) error {
	var req dto.ValidateReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	res, err := h.receipt.Execute(c.Context(), stock.ValidateReceiptInput{
		MovementID:         c.Params("id"),
		Received:           req.Received,
		Lost:               req.Lost,
		Damaged:            req.Damaged,
		ValidatorStationID: GetStationID(c),
		Actor:              GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ValidateReceiptResponse{
		ReceivedCount: res.ReceivedCount,
		LostCount:     res.LostCount,
		DamagedCount:  res.DamagedCount,
	})
}

// ResolveIssue godoc
// @Summary      Approve or reject the lost/damaged claims of a movement
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Movement UUID"
// @Param        body  body  dto.ResolveIssueRequest  true  "decision: APPROVE or REJECT"
// @Success      200   {object}  dto.ResolveIssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out/{id}/resolve [post]
func (h *StockHandler) ResolveIssue(c *fiber.Ctx) error {
	var req dto.ResolveIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	res, err := h.issue.Execute(c.Context(), stock.ResolveIssueInput{
		MovementID: c.Params("id"),
		Decision:   req.Decision,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ResolveIssueResponse{ResolvedCount: res.ResolvedCount})
}

// ListMovements godoc
// @Summary      Movement history with filters and pagination
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "IN or OUT"
// @Param        status      query  string  false  "PENDING or APPROVED"
// @Param        product_id  query  string  false  "Product UUID"
// @Param        station_id  query  string  false  "Station UUID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var req dto.MovementHistoryRequest
	if err := c.QueryParser(&req); err != nil {
		return writeBadRequest(c, "invalid query parameters")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	req.DefaultPage()

	// Station users only see their own station's movements.
	stationID := req.StationID
	if GetRole(c) == RoleStation {
		stationID = GetStationID(c)
	}

	items, total, err := h.queries.MovementHistory(c.Context(), repository.MovementFilter{
		Type:      req.Type,
		Status:    req.Status,
		ProductID: req.ProductID,
		StationID: stationID,
		From:      req.From,
		To:        req.To,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMovementResponse(m, false))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: req.Limit, Offset: req.Offset, Total: total},
	})
}

// GetMovement godoc
// @Summary      One movement with its full serial lists
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Movement UUID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.queries.MovementDetail(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(m, true))
}

// toMovementResponse maps the entity; serial lists are heavy, so listings
// omit them and only the detail endpoint carries them.
func toMovementResponse(m *entity.StockMovement, withSerials bool) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:          m.ID,
		Type:        m.Type,
		Status:      m.Status,
		ProductID:   m.ProductID,
		StationID:   m.StationID,
		Quantity:    m.Quantity,
		BatchID:     m.BatchID,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
		ValidatedBy: m.ValidatedBy,
		ValidatedAt: m.ValidatedAt,
	}
	if withSerials {
		out.SentSerials = m.SentSerials
		out.ReceivedSerials = m.ReceivedSerials
		out.LostSerials = m.LostSerials
		out.DamagedSerials = m.DamagedSerials
	}
	return out
}
