package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/dto"
)

// AlertHandler maneja las peticiones HTTP de alertas de stock bajo (protegido).
type AlertHandler struct {
	detector *alerting.DetectorUseCase
	admin    *alerting.AlertAdminUseCase
}

// NewAlertHandler construye el handler.
func NewAlertHandler(detector *alerting.DetectorUseCase, admin *alerting.AlertAdminUseCase) *AlertHandler {
	return &AlertHandler{detector: detector, admin: admin}
}

// Detect godoc
// @Summary      Ejecutar un pase de detección de stock bajo
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int     false  "Umbral global que reemplaza el punto de reorden de cada producto"
// @Param        severity   query  string  false  "Filtrar por severidad: WARNING o CRITICAL"
// @Success      200  {object}  dto.DetectResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts/detect [post]
func (h *AlertHandler) Detect(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	input := alerting.DetectInput{
		SeverityFilter: c.Query("severity"),
		DetectedBy:     userID,
	}
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_THRESHOLD", Message: "threshold debe ser un entero no negativo"})
		}
		input.ThresholdOverride = &n
	}

	result, err := h.detector.DetectLowStock(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewDetectResponse(result))
}

// List godoc
// @Summary      Listar alertas (más recientes primero)
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        acknowledged  query  bool  false  "Filtrar por estado de acuse"
// @Param        limit         query  int   false  "Máximo de filas (default 20)"
// @Param        offset        query  int   false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var acknowledged *bool
	if raw := c.Query("acknowledged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "acknowledged debe ser booleano"})
		}
		acknowledged = &v
	}

	alerts, err := h.admin.ListAlerts(c.Context(), acknowledged, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": dto.NewAlertResponses(alerts),
	})
}

// Acknowledge godoc
// @Summary      Acusar recibo de una alerta
// @Description  Transición en un solo sentido; el actor sale del token.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.admin.AcknowledgeAlert(c.Context(), c.Params("id"), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "alerta acusada"})
}
