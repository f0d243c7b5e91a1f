package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only; el transaction_id es un BIGSERIAL: monótono y único
// entre commits, con huecos permitidos por intentos revertidos.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador de kardex. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append persiste la entrada y recoge el transaction_id asignado por la secuencia.
func (r *LedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ledger_entries (id, product_id, direction, quantity, unit_cost, reference_type, reference_number, notes, stock_before, stock_after, ts, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING transaction_id`
	err := r.q.QueryRow(ctx, query,
		entry.ID, entry.ProductID, entry.Direction, entry.Quantity, entry.UnitCost,
		nullIfEmpty(entry.ReferenceType), nullIfEmpty(entry.ReferenceNumber), nullIfEmpty(entry.Notes),
		entry.StockBefore, entry.StockAfter, entry.Timestamp, nullIfEmpty(entry.CreatedBy),
	).Scan(&entry.TransactionID)
	if err != nil {
		return storeErr("append ledger entry", err)
	}
	return nil
}

const ledgerColumns = `id, transaction_id, product_id, direction, quantity, unit_cost, reference_type, reference_number, notes, stock_before, stock_after, ts, created_by`

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var refType, refNumber, notes, createdBy *string
	err := row.Scan(
		&e.ID, &e.TransactionID, &e.ProductID, &e.Direction, &e.Quantity, &e.UnitCost,
		&refType, &refNumber, &notes, &e.StockBefore, &e.StockAfter, &e.Timestamp, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	e.ReferenceType = deref(refType)
	e.ReferenceNumber = deref(refNumber)
	e.Notes = deref(notes)
	e.CreatedBy = deref(createdBy)
	return &e, nil
}

// GetByTransactionID obtiene una entrada por su ID de transacción.
func (r *LedgerRepo) GetByTransactionID(ctx context.Context, transactionID int64) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE transaction_id = $1`
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get ledger entry", err)
	}
	return e, nil
}

// ListByProduct lista las entradas de un producto, más recientes primero.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries WHERE product_id = $1
		ORDER BY transaction_id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, storeErr("list ledger entries", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
