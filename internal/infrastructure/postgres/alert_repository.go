package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación de las alertas sobre PostgreSQL (usable con pool o tx).
// El invariante "a lo sumo una alerta sin acusar por producto y día" lo hace
// cumplir un índice único parcial sobre (product_id, created_at::date).
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de alertas. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Create inserta la alerta; domain.ErrDuplicate si el índice único parcial rechaza.
func (r *AlertRepo) Create(ctx context.Context, alert *entity.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	query := `
		INSERT INTO low_stock_alerts (id, product_id, sku, name, current_stock, reorder_level, deficit, suggested_reorder, severity, message, acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, $11)`
	_, err := r.q.Exec(ctx, query,
		alert.ID, alert.ProductID, alert.SKU, alert.Name, alert.CurrentStock,
		alert.ReorderLevel, alert.Deficit, alert.SuggestedReorder,
		alert.Severity, alert.Message, alert.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storeErr("create alert", err)
	}
	return nil
}

const alertColumns = `id, product_id, sku, name, current_stock, reorder_level, deficit, suggested_reorder, severity, message, acknowledged, acknowledged_at, acknowledged_by, created_at`

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	var ackBy *string
	err := row.Scan(
		&a.ID, &a.ProductID, &a.SKU, &a.Name, &a.CurrentStock, &a.ReorderLevel,
		&a.Deficit, &a.SuggestedReorder, &a.Severity, &a.Message,
		&a.Acknowledged, &a.AcknowledgedAt, &ackBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.AcknowledgedBy = deref(ackBy)
	return &a, nil
}

// GetByID obtiene una alerta por ID.
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts WHERE id = $1`
	a, err := scanAlert(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get alert", err)
	}
	return a, nil
}

// ExistsUnacknowledgedOn indica si hay alerta sin acusar del producto el día UTC de day.
func (r *AlertRepo) ExistsUnacknowledgedOn(ctx context.Context, productID string, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM low_stock_alerts
			WHERE product_id = $1 AND NOT acknowledged
			  AND (created_at AT TIME ZONE 'UTC')::date = $2::date
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, productID, day.UTC()).Scan(&exists); err != nil {
		return false, storeErr("exists unacknowledged alert", err)
	}
	return exists, nil
}

// Acknowledge marca la alerta como acusada; transición en un solo sentido.
func (r *AlertRepo) Acknowledge(ctx context.Context, id, actor string, at time.Time) error {
	query := `
		UPDATE low_stock_alerts
		SET acknowledged = true, acknowledged_by = $2, acknowledged_at = $3
		WHERE id = $1 AND NOT acknowledged`
	tag, err := r.q.Exec(ctx, query, id, actor, at)
	if err != nil {
		return storeErr("acknowledge alert", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Sin fila afectada: distinguir inexistente de ya acusada.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrConflict
}

// List lista alertas, más recientes primero. acknowledged nil = todas.
func (r *AlertRepo) List(ctx context.Context, acknowledged *bool, limit, offset int) ([]*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts`
	args := []any{}
	if acknowledged != nil {
		query += ` WHERE acknowledged = $1`
		args = append(args, *acknowledged)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list alerts", err)
	}
	defer rows.Close()

	var list []*entity.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
