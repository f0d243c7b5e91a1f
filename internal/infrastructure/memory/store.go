// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria. Respeta los mismos contratos que el adaptador PostgreSQL: exclusión
// por producto (nunca un candado global), transacciones todo-o-nada e IDs de
// transacción monótonos. Útil para pruebas y para desplegar sin base de datos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Store almacén en memoria de saldos, kardex y alertas.
//
// Los *entity.Balance publicados en el mapa son inmutables: toda mutación
// publica un puntero nuevo bajo mu, así una lectura concurrente ve siempre el
// estado previo o el posterior de una aplicación, nunca un valor a medias.
// mu protege solo el acceso a los mapas (secciones críticas breves); la
// serialización de escrituras es por producto vía locks.
type Store struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	balances map[string]*entity.Balance

	ledgerMu sync.Mutex
	ledger   []*entity.LedgerEntry
	lastTxID int64

	alertsMu sync.Mutex
	alerts   []*entity.Alert
	alertIdx map[string]*entity.Alert
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		locks:    make(map[string]*sync.Mutex),
		balances: make(map[string]*entity.Balance),
		alertIdx: make(map[string]*entity.Alert),
	}
}

// lockFor devuelve el candado del producto, creándolo la primera vez.
func (s *Store) lockFor(productID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[productID] = m
	}
	return m
}

// getBalance devuelve una copia del saldo publicado, o nil si no existe.
func (s *Store) getBalance(productID string) *entity.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[productID]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// publishBalance publica un saldo nuevo (reemplazo de puntero bajo mu).
func (s *Store) publishBalance(b *entity.Balance) {
	s.mu.Lock()
	s.balances[b.ProductID] = b
	s.mu.Unlock()
}

// snapshotBalances devuelve copias de todos los saldos publicados.
func (s *Store) snapshotBalances() []*entity.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Balance, 0, len(s.balances))
	for _, b := range s.balances {
		cp := *b
		out = append(out, &cp)
	}
	return out
}

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación en memoria de BalanceRepository (fuera de transacción).
type BalanceRepo struct {
	s *Store
}

// NewBalanceRepository construye el adaptador de saldos.
func NewBalanceRepository(s *Store) *BalanceRepo {
	return &BalanceRepo{s: s}
}

// Get devuelve el saldo del producto o domain.ErrNotFound.
func (r *BalanceRepo) Get(_ context.Context, productID string) (*entity.Balance, error) {
	b := r.s.getBalance(productID)
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// GetForUpdate fuera de transacción no hay candado que retener: equivale a Get.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Balance, error) {
	return r.Get(ctx, productID)
}

// ApplyDelta aplica el delta bajo el candado del producto: lectura, validación
// y publicación son indivisibles respecto a otras escrituras del mismo producto.
func (r *BalanceRepo) ApplyDelta(_ context.Context, productID string, delta int64) (int64, error) {
	lock := r.s.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	cur := r.s.getBalance(productID)
	if cur == nil {
		return 0, domain.ErrNotFound
	}
	if cur.CurrentStock+delta < 0 {
		return 0, domain.ErrWouldGoNegative
	}
	nb := *cur
	nb.CurrentStock += delta
	nb.UpdatedAt = time.Now()
	r.s.publishBalance(&nb)
	return nb.CurrentStock, nil
}

// ListLowStock devuelve los candidatos del detector: activos, no descontinuados
// y con stock por debajo del umbral efectivo; stock <= 0 primero, luego mayor déficit.
func (r *BalanceRepo) ListLowStock(_ context.Context, threshold *int64) ([]*entity.Balance, error) {
	all := r.s.snapshotBalances()
	out := make([]*entity.Balance, 0)
	for _, b := range all {
		if !b.Active || b.Discontinued {
			continue
		}
		if b.CurrentStock < b.EffectiveThreshold(threshold) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aZero, bZero := a.CurrentStock <= 0, b.CurrentStock <= 0
		if aZero != bZero {
			return aZero
		}
		defA := a.EffectiveThreshold(threshold) - a.CurrentStock
		defB := b.EffectiveThreshold(threshold) - b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		return a.ProductID < b.ProductID
	})
	return out, nil
}

// Upsert inserta o reemplaza el saldo bajo el candado del producto.
func (r *BalanceRepo) Upsert(_ context.Context, balance *entity.Balance) error {
	lock := r.s.lockFor(balance.ProductID)
	lock.Lock()
	defer lock.Unlock()

	cp := *balance
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	r.s.publishBalance(&cp)
	return nil
}
