package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AlertRepository define el puerto de las alertas de stock bajo.
type AlertRepository interface {
	// Create inserta la alerta. Falla con domain.ErrDuplicate si ya existe una
	// alerta sin acusar para el mismo producto en el mismo día calendario (UTC);
	// el almacén hace cumplir el invariante, no solo el detector.
	Create(ctx context.Context, alert *entity.Alert) error
	// GetByID devuelve la alerta o domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	// ExistsUnacknowledgedOn indica si hay una alerta sin acusar del producto
	// creada el día calendario (UTC) de day.
	ExistsUnacknowledgedOn(ctx context.Context, productID string, day time.Time) (bool, error)
	// Acknowledge marca la alerta como acusada (transición de un solo sentido).
	// domain.ErrNotFound si no existe; domain.ErrConflict si ya estaba acusada.
	Acknowledge(ctx context.Context, id, actor string, at time.Time) error
	// List lista alertas, más recientes primero. acknowledged nil = todas.
	List(ctx context.Context, acknowledged *bool, limit, offset int) ([]*entity.Alert, error)
}
