package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación en memoria de las alertas de stock bajo.
// El invariante "a lo sumo una alerta sin acusar por producto y día" se hace
// cumplir aquí, igual que el índice único parcial del adaptador PostgreSQL.
type AlertRepo struct {
	s *Store
}

// NewAlertRepository construye el adaptador de alertas.
func NewAlertRepository(s *Store) *AlertRepo {
	return &AlertRepo{s: s}
}

// sameUTCDay indica si a y b caen en el mismo día calendario UTC.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Create inserta la alerta; domain.ErrDuplicate si ya hay una sin acusar del
// mismo producto en el mismo día UTC.
func (r *AlertRepo) Create(_ context.Context, alert *entity.Alert) error {
	r.s.alertsMu.Lock()
	defer r.s.alertsMu.Unlock()

	for _, a := range r.s.alerts {
		if a.ProductID == alert.ProductID && !a.Acknowledged && sameUTCDay(a.CreatedAt, alert.CreatedAt) {
			return domain.ErrDuplicate
		}
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	cp := *alert
	r.s.alerts = append(r.s.alerts, &cp)
	r.s.alertIdx[cp.ID] = &cp
	return nil
}

// GetByID devuelve la alerta o domain.ErrNotFound.
func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.Alert, error) {
	r.s.alertsMu.Lock()
	defer r.s.alertsMu.Unlock()

	a, ok := r.s.alertIdx[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ExistsUnacknowledgedOn indica si hay alerta sin acusar del producto el día UTC de day.
func (r *AlertRepo) ExistsUnacknowledgedOn(_ context.Context, productID string, day time.Time) (bool, error) {
	r.s.alertsMu.Lock()
	defer r.s.alertsMu.Unlock()

	for _, a := range r.s.alerts {
		if a.ProductID == productID && !a.Acknowledged && sameUTCDay(a.CreatedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

// Acknowledge transición de un solo sentido: sin acusar -> acusada.
func (r *AlertRepo) Acknowledge(_ context.Context, id, actor string, at time.Time) error {
	r.s.alertsMu.Lock()
	defer r.s.alertsMu.Unlock()

	a, ok := r.s.alertIdx[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Acknowledged {
		return domain.ErrConflict
	}
	a.Acknowledged = true
	a.AcknowledgedBy = actor
	a.AcknowledgedAt = &at
	return nil
}

// List lista alertas, más recientes primero. acknowledged nil = todas.
func (r *AlertRepo) List(_ context.Context, acknowledged *bool, limit, offset int) ([]*entity.Alert, error) {
	r.s.alertsMu.Lock()
	defer r.s.alertsMu.Unlock()

	var out []*entity.Alert
	skipped := 0
	for i := len(r.s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		a := r.s.alerts[i]
		if acknowledged != nil && a.Acknowledged != *acknowledged {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
