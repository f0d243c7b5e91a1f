package alerting

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// AlertAdminUseCase acuse y consulta de alertas. El acuse lo dispara siempre
// un actor externo; el detector solo crea alertas sin acusar.
type AlertAdminUseCase struct {
	alertRepo repository.AlertRepository
	nowFn     func() time.Time
}

// NewAlertAdminUseCase construye el caso de uso.
func NewAlertAdminUseCase(alertRepo repository.AlertRepository) *AlertAdminUseCase {
	return &AlertAdminUseCase{alertRepo: alertRepo, nowFn: time.Now}
}

// AcknowledgeAlert marca la alerta como acusada por actor. Transición en un
// solo sentido: domain.ErrConflict si ya estaba acusada.
func (uc *AlertAdminUseCase) AcknowledgeAlert(ctx context.Context, alertID, actor string) error {
	if alertID == "" || actor == "" {
		return domain.ErrInvalidInput
	}
	return uc.alertRepo.Acknowledge(ctx, alertID, actor, uc.nowFn().UTC())
}

// ListAlerts lista alertas, más recientes primero. acknowledged nil = todas.
func (uc *AlertAdminUseCase) ListAlerts(ctx context.Context, acknowledged *bool, limit, offset int) ([]*entity.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.alertRepo.List(ctx, acknowledged, limit, offset)
}
