package dto

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AlertResponse alerta de stock bajo en respuestas.
type AlertResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	SKU              string     `json:"sku"`
	Name             string     `json:"name"`
	CurrentStock     int64      `json:"current_stock"`
	ReorderLevel     int64      `json:"reorder_level"`
	Deficit          int64      `json:"deficit"`
	SuggestedReorder int64      `json:"suggested_reorder"`
	Severity         string     `json:"severity"`
	Message          string     `json:"message"`
	Acknowledged     bool       `json:"acknowledged"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy   string     `json:"acknowledged_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewAlertResponse mapea la entidad al DTO de respuesta.
func NewAlertResponse(a *entity.Alert) AlertResponse {
	return AlertResponse{
		ID:               a.ID,
		ProductID:        a.ProductID,
		SKU:              a.SKU,
		Name:             a.Name,
		CurrentStock:     a.CurrentStock,
		ReorderLevel:     a.ReorderLevel,
		Deficit:          a.Deficit,
		SuggestedReorder: a.SuggestedReorder,
		Severity:         a.Severity,
		Message:          a.Message,
		Acknowledged:     a.Acknowledged,
		AcknowledgedAt:   a.AcknowledgedAt,
		AcknowledgedBy:   a.AcknowledgedBy,
		CreatedAt:        a.CreatedAt,
	}
}

// NewAlertResponses mapea un slice de entidades.
func NewAlertResponses(alerts []*entity.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, NewAlertResponse(a))
	}
	return out
}

// DetectResponse resultado de un pase de detección.
type DetectResponse struct {
	TotalCreated int             `json:"total_created"`
	Critical     int             `json:"critical"`
	Warning      int             `json:"warning"`
	Skipped      int             `json:"skipped"`
	Created      []AlertResponse `json:"created"`
}

// NewDetectResponse mapea el resultado del detector al DTO de respuesta.
func NewDetectResponse(r *alerting.DetectResult) DetectResponse {
	return DetectResponse{
		TotalCreated: r.TotalCreated,
		Critical:     r.Critical,
		Warning:      r.Warning,
		Skipped:      r.Skipped,
		Created:      NewAlertResponses(r.Created),
	}
}
