package ledger

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// QueryUseCase lecturas del saldo y del kardex (fuera de transacción).
type QueryUseCase struct {
	balanceRepo repository.BalanceRepository
	ledgerRepo  repository.LedgerRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(balanceRepo repository.BalanceRepository, ledgerRepo repository.LedgerRepository) *QueryUseCase {
	return &QueryUseCase{balanceRepo: balanceRepo, ledgerRepo: ledgerRepo}
}

// GetBalance devuelve el saldo actual del producto o domain.ErrNotFound.
func (uc *QueryUseCase) GetBalance(ctx context.Context, productID string) (*entity.Balance, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.balanceRepo.Get(ctx, productID)
}

// ListEntries lista las entradas de kardex de un producto, más recientes primero.
func (uc *QueryUseCase) ListEntries(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.ledgerRepo.ListByProduct(ctx, productID, limit, offset)
}
