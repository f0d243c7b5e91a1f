package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `product_id, sku, name, current_stock, reorder_level, reorder_quantity, active, discontinued, updated_at`

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	err := row.Scan(
		&b.ProductID, &b.SKU, &b.Name, &b.CurrentStock, &b.ReorderLevel,
		&b.ReorderQuantity, &b.Active, &b.Discontinued, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get obtiene el saldo actual del producto.
func (r *BalanceRepo) Get(ctx context.Context, productID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM product_balances WHERE product_id = $1`
	b, err := scanBalance(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get balance", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila hasta el fin de la
// transacción (SELECT FOR UPDATE): exclusión por producto, no global.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM product_balances WHERE product_id = $1 FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get balance for update", err)
	}
	return b, nil
}

// ApplyDelta actualiza el saldo de forma condicional en una sola sentencia:
// el WHERE impide que el saldo quede negativo sin ventana de carrera.
func (r *BalanceRepo) ApplyDelta(ctx context.Context, productID string, delta int64) (int64, error) {
	query := `
		UPDATE product_balances
		SET current_stock = current_stock + $2, updated_at = now()
		WHERE product_id = $1 AND current_stock + $2 >= 0
		RETURNING current_stock`
	var newStock int64
	err := r.q.QueryRow(ctx, query, productID, delta).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, storeErr("apply delta", err)
	}
	// Sin fila afectada: distinguir producto inexistente de saldo insuficiente.
	var exists bool
	check := `SELECT EXISTS (SELECT 1 FROM product_balances WHERE product_id = $1)`
	if err := r.q.QueryRow(ctx, check, productID).Scan(&exists); err != nil {
		return 0, storeErr("apply delta: verificar producto", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrWouldGoNegative
}

// ListLowStock devuelve los candidatos del detector: activos, no descontinuados
// y con stock bajo el umbral efectivo; stock <= 0 primero, luego mayor déficit.
func (r *BalanceRepo) ListLowStock(ctx context.Context, threshold *int64) ([]*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM product_balances
		WHERE active AND NOT discontinued
		  AND current_stock < COALESCE($1, reorder_level)
		ORDER BY (current_stock <= 0) DESC,
		         (COALESCE($1, reorder_level) - current_stock) DESC,
		         product_id`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, storeErr("list low stock", err)
	}
	defer rows.Close()

	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Upsert inserta o reemplaza el saldo (superficie para colaboradores externos).
func (r *BalanceRepo) Upsert(ctx context.Context, balance *entity.Balance) error {
	query := `
		INSERT INTO product_balances (product_id, sku, name, current_stock, reorder_level, reorder_quantity, active, discontinued, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (product_id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name,
			current_stock = EXCLUDED.current_stock,
			reorder_level = EXCLUDED.reorder_level,
			reorder_quantity = EXCLUDED.reorder_quantity,
			active = EXCLUDED.active, discontinued = EXCLUDED.discontinued,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		balance.ProductID, balance.SKU, balance.Name, balance.CurrentStock,
		balance.ReorderLevel, balance.ReorderQuantity, balance.Active, balance.Discontinued,
	)
	if err != nil {
		return storeErr("upsert balance", err)
	}
	return nil
}
