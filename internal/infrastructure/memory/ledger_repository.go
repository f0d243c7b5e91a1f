package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación en memoria del kardex (fuera de transacción).
type LedgerRepo struct {
	s *Store
}

// NewLedgerRepository construye el adaptador de kardex.
func NewLedgerRepository(s *Store) *LedgerRepo {
	return &LedgerRepo{s: s}
}

// Append anexa la entrada asignando un TransactionID monótono.
func (r *LedgerRepo) Append(_ context.Context, entry *entity.LedgerEntry) error {
	r.s.ledgerMu.Lock()
	defer r.s.ledgerMu.Unlock()

	r.s.lastTxID++
	entry.TransactionID = r.s.lastTxID
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	cp := *entry
	r.s.ledger = append(r.s.ledger, &cp)
	return nil
}

// GetByTransactionID devuelve la entrada o domain.ErrNotFound.
func (r *LedgerRepo) GetByTransactionID(_ context.Context, transactionID int64) (*entity.LedgerEntry, error) {
	r.s.ledgerMu.Lock()
	defer r.s.ledgerMu.Unlock()

	for _, e := range r.s.ledger {
		if e.TransactionID == transactionID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListByProduct lista las entradas de un producto, más recientes primero.
func (r *LedgerRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	r.s.ledgerMu.Lock()
	defer r.s.ledgerMu.Unlock()

	var out []*entity.LedgerEntry
	skipped := 0
	for i := len(r.s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.ledger[i]
		if e.ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// LedgerLen devuelve el número de entradas confirmadas (apoyo para pruebas de atomicidad).
func (s *Store) LedgerLen() int {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	return len(s.ledger)
}
