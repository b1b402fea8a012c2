package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/dto"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/swap"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/validator"
)

// SwapHandler handles misdelivery correction requests.
type SwapHandler struct {
	uc      *swap.UseCase
	queries *swap.QueryService
}

// NewSwapHandler builds the handler.
func NewSwapHandler(uc *swap.UseCase, queries *swap.QueryService) *SwapHandler {
	return &SwapHandler{uc: uc, queries: queries}
}

// Create godoc
// @Summary      Report a misdelivered card and request a swap
// @Tags         swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSwapRequest  true  "purchase_id, optional target_station_id, reason"
// @Success      201   {object}  dto.SwapResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/swaps [post]
func (h *SwapHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	created, err := h.uc.Create(c.Context(), swap.CreateInput{
		PurchaseID:      req.PurchaseID,
		TargetStationID: req.TargetStationID,
		Reason:          req.Reason,
		Actor:           GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSwapResponse(created))
}

// Approve godoc
// @Summary      Approve a pending swap request
// @Tags         swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Swap request UUID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/swaps/{id}/approve [post]
func (h *SwapHandler) Approve(c *fiber.Ctx) error {
	if err := h.uc.Approve(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "swap request approved"})
}

// Reject godoc
// @Summary      Reject a pending swap request with a reason
// @Tags         swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Swap request UUID"
// @Param        body  body  dto.RejectSwapRequest  true  "reason (min 5 chars)"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/swaps/{id}/reject [post]
func (h *SwapHandler) Reject(c *fiber.Ctx) error {
	var req dto.RejectSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := h.uc.Reject(c.Context(), c.Params("id"), req.Reason, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "swap request rejected"})
}

// Execute godoc
// @Summary      Execute an approved swap with a replacement card
// @Tags         swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Swap request UUID"
// @Param        body  body  dto.ExecuteSwapRequest  true  "replacement_card_id"
// @Success      200   {object}  dto.SwapHistoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/swaps/{id}/execute [post]
func (h *SwapHandler) Execute(c *fiber.Ctx) error {
	var req dto.ExecuteSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	history, err := h.uc.Execute(c.Context(), swap.ExecuteInput{
		SwapRequestID:     c.Params("id"),
		ReplacementCardID: req.ReplacementCardID,
		Actor:             GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSwapHistoryResponse(history))
}

// Cancel godoc
// @Summary      Cancel one's own pending swap request
// @Tags         swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Swap request UUID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/swaps/{id}/cancel [post]
func (h *SwapHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "swap request cancelled"})
}

// List godoc
// @Summary      Swap requests with filters and pagination
// @Tags         swaps
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "Swap status"
// @Param        station_id  query  string  false  "Source or target station UUID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/swaps [get]
func (h *SwapHandler) List(c *fiber.Ctx) error {
	var req dto.SwapListRequest
	if err := c.QueryParser(&req); err != nil {
		return writeBadRequest(c, "invalid query parameters")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	req.DefaultPage()

	stationID := req.StationID
	if GetRole(c) == RoleStation {
		stationID = GetStationID(c)
	}

	items, total, err := h.queries.List(c.Context(), repository.SwapFilter{
		Status:    req.Status,
		StationID: stationID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SwapResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toSwapResponse(s))
	}
	return c.JSON(fiber.Map{
		"swaps": out,
		"page":  dto.PageResponse{Limit: req.Limit, Offset: req.Offset, Total: total},
	})
}

// Get godoc
// @Summary      One swap request
// @Tags         swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Swap request UUID"
// @Success      200  {object}  dto.SwapResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/swaps/{id} [get]
func (h *SwapHandler) Get(c *fiber.Ctx) error {
	s, err := h.queries.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSwapResponse(s))
}

// HistoryByPurchase godoc
// @Summary      Swap audit trail of a purchase
// @Tags         swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Purchase UUID"
// @Success      200  {array}  dto.SwapHistoryResponse
// @Router       /api/purchases/{id}/swap-history [get]
func (h *SwapHandler) HistoryByPurchase(c *fiber.Ctx) error {
	items, err := h.queries.HistoryByPurchase(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SwapHistoryResponse, 0, len(items))
	for _, hst := range items {
		out = append(out, toSwapHistoryResponse(hst))
	}
	return c.JSON(out)
}

func toSwapResponse(s *entity.SwapRequest) dto.SwapResponse {
	return dto.SwapResponse{
		ID:                s.ID,
		Status:            string(s.Status),
		PurchaseID:        s.PurchaseID,
		OriginalCardID:    s.OriginalCardID,
		ReplacementCardID: s.ReplacementCardID,
		SourceStationID:   s.SourceStationID,
		TargetStationID:   s.TargetStationID,
		ExpectedProductID: s.ExpectedProductID,
		Reason:            s.Reason,
		RejectReason:      s.RejectReason,
		RequestedBy:       s.RequestedBy,
		RequestedAt:       s.RequestedAt,
		ApprovedAt:        s.ApprovedAt,
		RejectedAt:        s.RejectedAt,
		ExecutedAt:        s.ExecutedAt,
		CancelledAt:       s.CancelledAt,
	}
}

func toSwapHistoryResponse(h *entity.SwapHistory) dto.SwapHistoryResponse {
	return dto.SwapHistoryResponse{
		ID:                h.ID,
		SwapRequestID:     h.SwapRequestID,
		PurchaseID:        h.PurchaseID,
		OriginalSerial:    h.OriginalSerial,
		ReplacementSerial: h.ReplacementSerial,
		SourceStationID:   h.SourceStationID,
		TargetStationID:   h.TargetStationID,
		ExecutedBy:        h.ExecutedBy,
		ExecutedAt:        h.ExecutedAt,
	}
}
