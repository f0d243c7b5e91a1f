package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// LedgerHandler maneja las peticiones HTTP de movimientos, saldos y kardex (protegido).
type LedgerHandler struct {
	submit *ledger.SubmitUseCase
	query  *ledger.QueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(submit *ledger.SubmitUseCase, query *ledger.QueryUseCase) *LedgerHandler {
	return &LedgerHandler{submit: submit, query: query}
}

func movementInput(userID string, in dto.SubmitMovementRequest) ledger.MovementInput {
	return ledger.MovementInput{
		ProductID:       in.ProductID,
		Direction:       in.Direction,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		ReferenceType:   in.ReferenceType,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		CreatedBy:       userID,
	}
}

// SubmitMovement godoc
// @Summary      Registrar un movimiento de kardex
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "product_id, direction (IN|OUT), quantity, unit_cost opcional, referencia opcional"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) SubmitMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.submit.SubmitMovement(c.Context(), movementInput(userID, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(entry))
}

// SubmitBatch godoc
// @Summary      Registrar un lote de movimientos como unidad atómica
// @Description  Todo el lote se aplica o se rechaza completo. Por producto se
//
//	valida la salida agregada contra el saldo previo al lote.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitBatchRequest  true  "movements"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/batch [post]
func (h *LedgerHandler) SubmitBatch(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inputs := make([]ledger.MovementInput, 0, len(in.Movements))
	for _, m := range in.Movements {
		inputs = append(inputs, movementInput(userID, m))
	}
	entries, err := h.submit.SubmitBatch(c.Context(), inputs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":   len(entries),
		"entries": dto.NewLedgerEntryResponses(entries),
	})
}

// GetBalance godoc
// @Summary      Saldo actual de un producto
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        productID  path  string  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/balances/{productID} [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	bal, err := h.query.GetBalance(c.Context(), c.Params("productID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBalanceResponse(bal))
}

// ListEntries godoc
// @Summary      Kardex de un producto (más recientes primero)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        productID  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "Máximo de filas (default 20)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ledger/products/{productID}/entries [get]
func (h *LedgerHandler) ListEntries(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	entries, err := h.query.ListEntries(c.Context(), c.Params("productID"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":   len(entries),
		"entries": dto.NewLedgerEntryResponses(entries),
	})
}
