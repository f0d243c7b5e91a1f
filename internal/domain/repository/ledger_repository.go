package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// LedgerRepository define el puerto del libro de kardex (append-only).
type LedgerRepository interface {
	// Append persiste una entrada y le asigna TransactionID (monótono, único
	// entre commits exitosos; los intentos fallidos pueden dejar huecos).
	// Si entry.ID está vacío se genera.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// GetByTransactionID devuelve la entrada o domain.ErrNotFound.
	GetByTransactionID(ctx context.Context, transactionID int64) (*entity.LedgerEntry, error)
	// ListByProduct lista las entradas de un producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error)
}
