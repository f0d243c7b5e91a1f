package alerting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// DetectInput parámetros de un pase de detección de stock bajo.
type DetectInput struct {
	// ThresholdOverride reemplaza el punto de reorden de cada producto si no es nil.
	ThresholdOverride *int64
	// SeverityFilter "" (todas), WARNING o CRITICAL.
	SeverityFilter string
	// DetectedBy identidad del actor o proceso que dispara el pase.
	DetectedBy string
}

// DetectResult resumen de un pase de detección.
type DetectResult struct {
	Created      []*entity.Alert // ordenadas CRITICAL primero, luego mayor déficit
	TotalCreated int
	Critical     int
	Warning      int
	Skipped      int // candidatos omitidos por alerta sin acusar del mismo día
}

// DetectorUseCase recorre los saldos contra sus umbrales y emite alertas de
// stock bajo. Aparte de insertar alertas, es una función pura del estado del
// almacén más sus parámetros: no guarda cursores ni estado entre pases.
type DetectorUseCase struct {
	balanceRepo repository.BalanceRepository
	alertRepo   repository.AlertRepository
	nowFn       func() time.Time
}

// NewDetectorUseCase construye el detector.
func NewDetectorUseCase(balanceRepo repository.BalanceRepository, alertRepo repository.AlertRepository) *DetectorUseCase {
	return &DetectorUseCase{balanceRepo: balanceRepo, alertRepo: alertRepo, nowFn: time.Now}
}

// DetectLowStock ejecuta un pase de detección.
//
// Candidatos: productos activos y no descontinuados con stock por debajo del
// umbral efectivo. Severidad CRITICAL cuando stock <= 0 o stock <= umbral/2
// (división entera); si no, WARNING. Un candidato con alerta sin acusar creada
// el mismo día calendario (UTC) se omite sin crear duplicado ni contar.
// La cantidad sugerida de reposición es la configurada del producto, doblada
// cuando el stock es cero o negativo.
func (uc *DetectorUseCase) DetectLowStock(ctx context.Context, input DetectInput) (*DetectResult, error) {
	if input.SeverityFilter != "" && !entity.ValidSeverity(input.SeverityFilter) {
		return nil, domain.ErrInvalidInput
	}
	if input.ThresholdOverride != nil && *input.ThresholdOverride < 0 {
		return nil, domain.ErrInvalidInput
	}

	candidates, err := uc.balanceRepo.ListLowStock(ctx, input.ThresholdOverride)
	if err != nil {
		return nil, err
	}

	// Orden de proceso: stock en cero o negativo primero, luego mayor déficit.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aZero, bZero := a.CurrentStock <= 0, b.CurrentStock <= 0
		if aZero != bZero {
			return aZero
		}
		defA := a.EffectiveThreshold(input.ThresholdOverride) - a.CurrentStock
		defB := b.EffectiveThreshold(input.ThresholdOverride) - b.CurrentStock
		return defA > defB
	})

	now := uc.nowFn().UTC()
	result := &DetectResult{Created: []*entity.Alert{}}

	for _, bal := range candidates {
		threshold := bal.EffectiveThreshold(input.ThresholdOverride)
		if bal.CurrentStock >= threshold {
			continue
		}
		deficit := threshold - bal.CurrentStock

		severity := entity.SeverityWARNING
		if bal.CurrentStock <= 0 || bal.CurrentStock <= threshold/2 {
			severity = entity.SeverityCRITICAL
		}
		if input.SeverityFilter != "" && severity != input.SeverityFilter {
			continue
		}

		exists, err := uc.alertRepo.ExistsUnacknowledgedOn(ctx, bal.ProductID, now)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		suggested := bal.ReorderQuantity
		if bal.CurrentStock <= 0 {
			suggested *= 2
		}

		alert := &entity.Alert{
			ID:               uuid.New().String(),
			ProductID:        bal.ProductID,
			SKU:              bal.SKU,
			Name:             bal.Name,
			CurrentStock:     bal.CurrentStock,
			ReorderLevel:     threshold,
			Deficit:          deficit,
			SuggestedReorder: suggested,
			Severity:         severity,
			Message: fmt.Sprintf(
				"Stock bajo para %s (%s): %d unidades, umbral %d, déficit %d; reposición sugerida: %d",
				bal.Name, bal.SKU, bal.CurrentStock, threshold, deficit, suggested,
			),
			CreatedAt: now,
		}
		if err := uc.alertRepo.Create(ctx, alert); err != nil {
			// Otro pase concurrente ganó la inserción del día: omitir sin contar.
			if errors.Is(err, domain.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		result.Created = append(result.Created, alert)
		if severity == entity.SeverityCRITICAL {
			result.Critical++
		} else {
			result.Warning++
		}
	}

	// Orden de salida: CRITICAL primero, luego mayor déficit.
	sort.SliceStable(result.Created, func(i, j int) bool {
		a, b := result.Created[i], result.Created[j]
		if a.Severity != b.Severity {
			return a.Severity == entity.SeverityCRITICAL
		}
		return a.Deficit > b.Deficit
	})
	result.TotalCreated = len(result.Created)
	return result, nil
}
