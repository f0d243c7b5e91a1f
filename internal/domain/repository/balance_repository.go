package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// BalanceRepository define el puerto de persistencia del saldo de stock (DIP).
// La exclusión es por producto: dos escrituras concurrentes sobre el mismo
// producto se serializan; productos distintos no se bloquean entre sí.
type BalanceRepository interface {
	// Get devuelve el saldo del producto o domain.ErrNotFound.
	Get(ctx context.Context, productID string) (*entity.Balance, error)
	// GetForUpdate devuelve el saldo bloqueando la fila (SELECT FOR UPDATE o
	// candado por producto) hasta el fin de la transacción en curso.
	GetForUpdate(ctx context.Context, productID string) (*entity.Balance, error)
	// ApplyDelta actualiza el saldo de forma condicional e indivisible:
	// falla con domain.ErrWouldGoNegative si current_stock + delta < 0.
	// Devuelve el nuevo saldo y actualiza UpdatedAt.
	ApplyDelta(ctx context.Context, productID string, delta int64) (int64, error)
	// ListLowStock devuelve los productos activos y no descontinuados con
	// stock por debajo del umbral efectivo (threshold si no es nil, si no su
	// propio reorder_level), ordenados: stock <= 0 primero, luego mayor déficit.
	ListLowStock(ctx context.Context, threshold *int64) ([]*entity.Balance, error)
	// Upsert inserta o reemplaza el saldo. Superficie para colaboradores
	// externos (alta de productos, siembra de datos).
	Upsert(ctx context.Context, balance *entity.Balance) error
}
