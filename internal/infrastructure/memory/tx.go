package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

// Run ejecuta fn como una transacción en memoria: las escrituras se acumulan
// en buffers privados y se publican solo si fn termina sin error y el contexto
// sigue vivo. Los candados por producto se toman en GetForUpdate/ApplyDelta y
// se retienen hasta después del commit o del descarte, igual que un
// SELECT FOR UPDATE dentro de una transacción SQL.
func (s *Store) Run(ctx context.Context, fn func(
	balanceRepo repository.BalanceRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	tx := &storeTx{
		s:       s,
		locked:  make(map[string]*sync.Mutex),
		pending: make(map[string]*entity.Balance),
	}
	defer tx.release()

	if err := fn(&txBalanceRepo{tx: tx}, &txLedgerRepo{tx: tx}); err != nil {
		return err
	}
	// Cancelación antes del punto de commit: ningún efecto observable.
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// storeTx transacción en curso: candados retenidos y escrituras pendientes.
type storeTx struct {
	s       *Store
	order   []string // productos bloqueados, en orden de adquisición
	locked  map[string]*sync.Mutex
	pending map[string]*entity.Balance
	entries []*entity.LedgerEntry
}

// lock toma el candado del producto si esta transacción aún no lo retiene.
func (tx *storeTx) lock(productID string) {
	if _, held := tx.locked[productID]; held {
		return
	}
	m := tx.s.lockFor(productID)
	m.Lock()
	tx.locked[productID] = m
	tx.order = append(tx.order, productID)
}

// current devuelve la vista de la transacción: pendiente si existe, si no el
// saldo publicado. Siempre una copia.
func (tx *storeTx) current(productID string) *entity.Balance {
	if b, ok := tx.pending[productID]; ok {
		cp := *b
		return &cp
	}
	return tx.s.getBalance(productID)
}

// commit asigna IDs de transacción monótonos a las entradas y publica los
// saldos pendientes. Los candados por producto siguen retenidos hasta release.
func (tx *storeTx) commit() {
	if len(tx.entries) > 0 {
		tx.s.ledgerMu.Lock()
		for _, e := range tx.entries {
			tx.s.lastTxID++
			e.TransactionID = tx.s.lastTxID
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			cp := *e
			tx.s.ledger = append(tx.s.ledger, &cp)
		}
		tx.s.ledgerMu.Unlock()
	}
	if len(tx.pending) > 0 {
		tx.s.mu.Lock()
		for id, b := range tx.pending {
			tx.s.balances[id] = b
		}
		tx.s.mu.Unlock()
	}
}

// release suelta los candados en orden inverso de adquisición.
func (tx *storeTx) release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		tx.locked[tx.order[i]].Unlock()
	}
	tx.order = nil
}

var _ repository.BalanceRepository = (*txBalanceRepo)(nil)

// txBalanceRepo vista transaccional de los saldos.
type txBalanceRepo struct {
	tx *storeTx
}

func (r *txBalanceRepo) Get(_ context.Context, productID string) (*entity.Balance, error) {
	b := r.tx.current(productID)
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// GetForUpdate toma (y retiene) el candado del producto antes de leer.
func (r *txBalanceRepo) GetForUpdate(_ context.Context, productID string) (*entity.Balance, error) {
	r.tx.lock(productID)
	b := r.tx.current(productID)
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ApplyDelta opera sobre la vista de la transacción; el resultado queda
// pendiente hasta el commit.
func (r *txBalanceRepo) ApplyDelta(_ context.Context, productID string, delta int64) (int64, error) {
	r.tx.lock(productID)
	cur := r.tx.current(productID)
	if cur == nil {
		return 0, domain.ErrNotFound
	}
	if cur.CurrentStock+delta < 0 {
		return 0, domain.ErrWouldGoNegative
	}
	nb := *cur
	nb.CurrentStock += delta
	nb.UpdatedAt = time.Now()
	r.tx.pending[productID] = &nb
	return nb.CurrentStock, nil
}

func (r *txBalanceRepo) ListLowStock(ctx context.Context, threshold *int64) ([]*entity.Balance, error) {
	return NewBalanceRepository(r.tx.s).ListLowStock(ctx, threshold)
}

func (r *txBalanceRepo) Upsert(_ context.Context, balance *entity.Balance) error {
	r.tx.lock(balance.ProductID)
	cp := *balance
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	r.tx.pending[balance.ProductID] = &cp
	return nil
}

var _ repository.LedgerRepository = (*txLedgerRepo)(nil)

// txLedgerRepo vista transaccional del kardex: Append acumula en el buffer y
// el TransactionID se asigna en el commit.
type txLedgerRepo struct {
	tx *storeTx
}

func (r *txLedgerRepo) Append(_ context.Context, entry *entity.LedgerEntry) error {
	r.tx.entries = append(r.tx.entries, entry)
	return nil
}

func (r *txLedgerRepo) GetByTransactionID(ctx context.Context, transactionID int64) (*entity.LedgerEntry, error) {
	return NewLedgerRepository(r.tx.s).GetByTransactionID(ctx, transactionID)
}

func (r *txLedgerRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	return NewLedgerRepository(r.tx.s).ListByProduct(ctx, productID, limit, offset)
}
