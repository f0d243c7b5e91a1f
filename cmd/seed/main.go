// seed crea el esquema si no existe y carga saldos y movimientos de ejemplo
// para desarrollo local.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL o DB_HOST, DB_PORT, etc.).
package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}
	log.Info().Msg("esquema verificado")

	balanceRepo := postgres.NewBalanceRepository(pool)
	balances := []*entity.Balance{
		{ProductID: "prod-cafe-500", SKU: "CAF-500", Name: "Café molido 500g", ReorderLevel: 20, ReorderQuantity: 40, Active: true},
		{ProductID: "prod-panela-1k", SKU: "PAN-1K", Name: "Panela 1kg", ReorderLevel: 15, ReorderQuantity: 30, Active: true},
		{ProductID: "prod-arroz-5k", SKU: "ARR-5K", Name: "Arroz 5kg", ReorderLevel: 10, ReorderQuantity: 25, Active: true},
		{ProductID: "prod-aceite-1l", SKU: "ACE-1L", Name: "Aceite 1L", ReorderLevel: 12, ReorderQuantity: 24, Active: true},
		{ProductID: "prod-velas-x12", SKU: "VEL-12", Name: "Velas x12 (descontinuado)", ReorderLevel: 5, ReorderQuantity: 10, Active: true, Discontinued: true},
	}
	for _, b := range balances {
		if err := balanceRepo.Upsert(ctx, b); err != nil {
			log.Fatal().Err(err).Str("product", b.ProductID).Msg("sembrar saldo")
		}
	}
	log.Info().Int("balances", len(balances)).Msg("saldos sembrados")

	// Movimientos de ejemplo vía el motor de kardex, para que los saldos
	// queden derivados del libro y no de valores arbitrarios.
	submitUC := ledger.NewSubmitUseCase(postgres.NewTxRunner(pool))
	cost := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	movements := []ledger.MovementInput{
		{ProductID: "prod-cafe-500", Direction: entity.DirectionIN, Quantity: 50, UnitCost: cost("12500"), ReferenceType: "compra", ReferenceNumber: "OC-0001", CreatedBy: "seed"},
		{ProductID: "prod-cafe-500", Direction: entity.DirectionOUT, Quantity: 42, ReferenceType: "venta", ReferenceNumber: "FV-0001", CreatedBy: "seed"},
		{ProductID: "prod-panela-1k", Direction: entity.DirectionIN, Quantity: 30, UnitCost: cost("4200"), ReferenceType: "compra", ReferenceNumber: "OC-0002", CreatedBy: "seed"},
		{ProductID: "prod-panela-1k", Direction: entity.DirectionOUT, Quantity: 24, ReferenceType: "venta", ReferenceNumber: "FV-0002", CreatedBy: "seed"},
		{ProductID: "prod-arroz-5k", Direction: entity.DirectionIN, Quantity: 40, UnitCost: cost("21900"), ReferenceType: "compra", ReferenceNumber: "OC-0003", CreatedBy: "seed"},
		{ProductID: "prod-aceite-1l", Direction: entity.DirectionIN, Quantity: 6, UnitCost: cost("9800"), ReferenceType: "compra", ReferenceNumber: "OC-0004", CreatedBy: "seed"},
	}
	for _, m := range movements {
		entry, err := submitUC.SubmitMovement(ctx, m)
		if err != nil {
			log.Fatal().Err(err).Str("product", m.ProductID).Msg("sembrar movimiento")
		}
		log.Info().
			Int64("tx", entry.TransactionID).
			Str("product", entry.ProductID).
			Str("direction", entry.Direction).
			Int64("after", entry.StockAfter).
			Msg("movimiento sembrado")
	}

	log.Info().Msg("siembra completada")
}
