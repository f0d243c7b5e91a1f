package ledger

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando
// repositorios atados a esa transacción. Garantiza atomicidad todo-o-nada para
// el motor de kardex: si fn devuelve error no queda ningún efecto observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balanceRepo repository.BalanceRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}
