package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/cards"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/dto"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/validator"
)

// CardHandler handles card generation and range queries.
type CardHandler struct {
	generate *cards.GenerateUseCase
	queries  *stock.QueryService
}

// NewCardHandler builds the handler.
func NewCardHandler(generate *cards.GenerateUseCase, queries *stock.QueryService) *CardHandler {
	return &CardHandler{generate: generate, queries: queries}
}

// Generate godoc
// @Summary      Generate a batch of card serials
// @Tags         cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateCardsRequest  true  "product_id plus start/end suffix (bare digits or full serials)"
// @Success      201   {object}  dto.GenerateCardsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cards/generate [post]
func (h *CardHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateCardsRequest
	if err := c.BodyParser(&req); err != nil {
		return writeBadRequest(c, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return writeBadRequest(c, err.Error())
	}
	res, err := h.generate.Execute(c.Context(), cards.GenerateInput{
		ProductID:   req.ProductID,
		StartSuffix: req.StartSuffix,
		EndSuffix:   req.EndSuffix,
		At:          time.Now(),
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.GenerateCardsResponse{
		FirstSerial: res.FirstSerial,
		LastSerial:  res.LastSerial,
		Count:       res.Count,
	})
}

// NextSuffix godoc
// @Summary      Suggest the next generation suffix for a product
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Product UUID"
// @Success      200  {object}  dto.NextSuffixResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cards/next-suffix [get]
func (h *CardHandler) NextSuffix(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return writeBadRequest(c, "product_id is required")
	}
	next, err := h.queries.NextSuffix(c.Context(), productID, time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NextSuffixResponse{ProductID: productID, NextSuffix: next})
}

// AvailableRange godoc
// @Summary      First/last serial and count for a product in a status
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Product UUID"
// @Param        status      query  string  false  "Card status, defaults to IN_OFFICE"
// @Success      200  {object}  dto.AvailableRangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cards/available-range [get]
func (h *CardHandler) AvailableRange(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return writeBadRequest(c, "product_id is required")
	}
	status := entity.CardStatus(c.Query("status", string(entity.CardStatusInOffice)))
	if !status.Valid() {
		return writeError(c, domain.Validationf(domain.CodeInvalidCardState, "unknown card status %q", status))
	}
	first, last, count, err := h.queries.AvailableRange(c.Context(), productID, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailableRangeResponse{
		ProductID:   productID,
		Status:      string(status),
		FirstSerial: first,
		LastSerial:  last,
		Count:       count,
	})
}
