package entity

import "time"

// Severidades de alerta de stock bajo.
const (
	SeverityWARNING  = "WARNING"
	SeverityCRITICAL = "CRITICAL"
)

// ValidSeverity indica si s es una severidad conocida.
func ValidSeverity(s string) bool {
	return s == SeverityWARNING || s == SeverityCRITICAL
}

// Alert es una alerta de stock bajo creada por el detector. Los campos de
// producto son una foto del momento de la detección. Append-only: la única
// mutación posterior permitida es el acuse de recibo, en un solo sentido
// (sin acusar -> acusada).
// Invariante: a lo sumo una alerta sin acusar por producto y día calendario.
type Alert struct {
	ID               string
	ProductID        string
	SKU              string
	Name             string
	CurrentStock     int64
	ReorderLevel     int64 // umbral efectivo usado en la detección
	Deficit          int64 // umbral - stock actual
	SuggestedReorder int64
	Severity         string
	Message          string
	Acknowledged     bool
	AcknowledgedAt   *time.Time
	AcknowledgedBy   string
	CreatedAt        time.Time
}
