package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento de kardex.
const (
	DirectionIN  = "IN"  // entrada
	DirectionOUT = "OUT" // salida
)

// ValidDirection indica si s es una dirección de movimiento conocida.
func ValidDirection(s string) bool {
	return s == DirectionIN || s == DirectionOUT
}

// LedgerEntry es el registro inmutable de un movimiento aplicado, con la foto
// del saldo antes y después. Una vez escrito nunca se recalcula ni se borra.
// Invariante: StockAfter = StockBefore + Quantity (IN) o StockBefore - Quantity (OUT),
// y StockAfter >= 0 siempre.
type LedgerEntry struct {
	ID              string // uuid de la fila
	TransactionID   int64  // monótono y único entre commits exitosos
	ProductID       string
	Direction       string
	Quantity        int64            // siempre > 0; la dirección indica el signo
	UnitCost        *decimal.Decimal // opcional
	ReferenceType   string           // procedencia libre: factura, orden, ajuste...
	ReferenceNumber string
	Notes           string
	StockBefore     int64
	StockAfter      int64
	Timestamp       time.Time
	CreatedBy       string // identidad del actor, siempre explícita
}

// Delta devuelve el cambio de saldo que produce la entrada (+Quantity o -Quantity).
func (e *LedgerEntry) Delta() int64 {
	if e.Direction == DirectionOUT {
		return -e.Quantity
	}
	return e.Quantity
}
