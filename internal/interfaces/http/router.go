package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Submit     *ledger.SubmitUseCase
	Query      *ledger.QueryUseCase
	Detector   *alerting.DetectorUseCase
	AlertAdmin *alerting.AlertAdminUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas protegidas con Bearer Token;
// las mutaciones de kardex y alertas exigen además rol de operación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	ledgerHandler := NewLedgerHandler(deps.Submit, deps.Query)
	alertHandler := NewAlertHandler(deps.Detector, deps.AlertAdmin)

	// Movimientos de kardex (roles de operación)
	operador := RequireRole("admin", "bodeguero")
	api.Post("/ledger/movements", operador, ledgerHandler.SubmitMovement)
	api.Post("/ledger/movements/batch", operador, ledgerHandler.SubmitBatch)

	// Lecturas de kardex y saldos (cualquier usuario autenticado)
	api.Get("/ledger/products/:productID/entries", ledgerHandler.ListEntries)
	api.Get("/balances/:productID", ledgerHandler.GetBalance)

	// Alertas de stock bajo
	api.Get("/alerts", alertHandler.List)
	api.Post("/alerts/detect", operador, alertHandler.Detect)
	api.Post("/alerts/:id/acknowledge", operador, alertHandler.Acknowledge)
}
