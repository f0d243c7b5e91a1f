package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// SubmitMovementRequest body para POST /api/ledger/movements.
type SubmitMovementRequest struct {
	ProductID       string           `json:"product_id"`
	Direction       string           `json:"direction"` // IN | OUT
	Quantity        int64            `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// SubmitBatchRequest body para POST /api/ledger/movements/batch.
type SubmitBatchRequest struct {
	Movements []SubmitMovementRequest `json:"movements"`
}

// LedgerEntryResponse entrada de kardex en respuestas.
type LedgerEntryResponse struct {
	TransactionID   int64            `json:"transaction_id"`
	ProductID       string           `json:"product_id"`
	Direction       string           `json:"direction"`
	Quantity        int64            `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	StockBefore     int64            `json:"stock_before"`
	StockAfter      int64            `json:"stock_after"`
	Timestamp       time.Time        `json:"timestamp"`
	CreatedBy       string           `json:"created_by,omitempty"`
}

// NewLedgerEntryResponse mapea la entidad al DTO de respuesta.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		TransactionID:   e.TransactionID,
		ProductID:       e.ProductID,
		Direction:       e.Direction,
		Quantity:        e.Quantity,
		UnitCost:        e.UnitCost,
		ReferenceType:   e.ReferenceType,
		ReferenceNumber: e.ReferenceNumber,
		Notes:           e.Notes,
		StockBefore:     e.StockBefore,
		StockAfter:      e.StockAfter,
		Timestamp:       e.Timestamp,
		CreatedBy:       e.CreatedBy,
	}
}

// NewLedgerEntryResponses mapea un slice de entidades.
func NewLedgerEntryResponses(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewLedgerEntryResponse(e))
	}
	return out
}

// BalanceResponse saldo actual de un producto.
type BalanceResponse struct {
	ProductID       string    `json:"product_id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	CurrentStock    int64     `json:"current_stock"`
	ReorderLevel    int64     `json:"reorder_level"`
	ReorderQuantity int64     `json:"reorder_quantity"`
	Active          bool      `json:"active"`
	Discontinued    bool      `json:"discontinued"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBalanceResponse mapea la entidad al DTO de respuesta.
func NewBalanceResponse(b *entity.Balance) BalanceResponse {
	return BalanceResponse{
		ProductID:       b.ProductID,
		SKU:             b.SKU,
		Name:            b.Name,
		CurrentStock:    b.CurrentStock,
		ReorderLevel:    b.ReorderLevel,
		ReorderQuantity: b.ReorderQuantity,
		Active:          b.Active,
		Discontinued:    b.Discontinued,
		UpdatedAt:       b.UpdatedAt,
	}
}
