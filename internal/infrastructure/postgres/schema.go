package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema DDL de las tres colecciones durables. El índice único parcial de
// low_stock_alerts hace cumplir el invariante de una alerta sin acusar por
// producto y día calendario; el CHECK de product_balances respalda el
// invariante de saldo no negativo en el propio almacén.
const schema = `
CREATE TABLE IF NOT EXISTS product_balances (
	product_id       TEXT PRIMARY KEY,
	sku              TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL DEFAULT '',
	current_stock    BIGINT NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
	reorder_level    BIGINT NOT NULL DEFAULT 0 CHECK (reorder_level >= 0),
	reorder_quantity BIGINT NOT NULL DEFAULT 1 CHECK (reorder_quantity > 0),
	active           BOOLEAN NOT NULL DEFAULT true,
	discontinued     BOOLEAN NOT NULL DEFAULT false,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id               UUID PRIMARY KEY,
	transaction_id   BIGSERIAL UNIQUE,
	product_id       TEXT NOT NULL REFERENCES product_balances (product_id),
	direction        TEXT NOT NULL CHECK (direction IN ('IN', 'OUT')),
	quantity         BIGINT NOT NULL CHECK (quantity > 0),
	unit_cost        NUMERIC(14, 4),
	reference_type   TEXT,
	reference_number TEXT,
	notes            TEXT,
	stock_before     BIGINT NOT NULL CHECK (stock_before >= 0),
	stock_after      BIGINT NOT NULL CHECK (stock_after >= 0),
	ts               TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by       TEXT
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_product ON ledger_entries (product_id, transaction_id DESC);

CREATE TABLE IF NOT EXISTS low_stock_alerts (
	id                UUID PRIMARY KEY,
	product_id        TEXT NOT NULL REFERENCES product_balances (product_id),
	sku               TEXT NOT NULL DEFAULT '',
	name              TEXT NOT NULL DEFAULT '',
	current_stock     BIGINT NOT NULL,
	reorder_level     BIGINT NOT NULL,
	deficit           BIGINT NOT NULL,
	suggested_reorder BIGINT NOT NULL,
	severity          TEXT NOT NULL CHECK (severity IN ('WARNING', 'CRITICAL')),
	message           TEXT NOT NULL,
	acknowledged      BOOLEAN NOT NULL DEFAULT false,
	acknowledged_at   TIMESTAMPTZ,
	acknowledged_by   TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_alerts_open_per_day
	ON low_stock_alerts (product_id, ((created_at AT TIME ZONE 'UTC')::date))
	WHERE NOT acknowledged;

CREATE INDEX IF NOT EXISTS idx_alerts_created ON low_stock_alerts (created_at DESC);
`

// EnsureSchema crea las tablas e índices si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}
