package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// MovementInput entrada para registrar un movimiento de kardex.
// CreatedBy es la identidad del actor y viaja siempre de forma explícita.
type MovementInput struct {
	ProductID       string
	Direction       string // entity.DirectionIN | entity.DirectionOUT
	Quantity        int64
	UnitCost        *decimal.Decimal
	ReferenceType   string
	ReferenceNumber string
	Notes           string
	CreatedBy       string
}

// SubmitUseCase aplica movimientos contra los saldos de forma transaccional.
// Toda la validación de salida (OUT) y la mutación del saldo ocurren dentro de
// la misma frontera de atomicidad por producto: nunca verificar-y-luego-actuar
// sin exclusividad.
type SubmitUseCase struct {
	txRunner TxRunner
	nowFn    func() time.Time
}

// NewSubmitUseCase construye el caso de uso.
func NewSubmitUseCase(txRunner TxRunner) *SubmitUseCase {
	return &SubmitUseCase{txRunner: txRunner, nowFn: time.Now}
}

// SubmitMovement valida y aplica un único movimiento. Devuelve la entrada de
// kardex con TransactionID asignado y las fotos antes/después del saldo.
func (uc *SubmitUseCase) SubmitMovement(ctx context.Context, input MovementInput) (*entity.LedgerEntry, error) {
	entries, err := uc.SubmitBatch(ctx, []MovementInput{input})
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

// SubmitBatch aplica un lote de movimientos como una sola unidad atómica.
//
// Por producto se agregan las entradas y salidas, se valida la salida agregada
// contra el saldo previo al lote y se aplica un único delta neto, pero se
// registra una entrada de kardex por movimiento con su foto antes/después.
// Orden dentro del lote para un mismo producto: primero las entradas, luego
// las salidas, cada grupo en orden de envío; así toda foto intermedia es
// no negativa siempre que el agregado valide.
//
// Los productos se bloquean en orden lexicográfico para evitar interbloqueos
// entre lotes concurrentes. Si algo falla no se persiste ni una entrada ni un
// cambio de saldo (rollback completo).
func (uc *SubmitUseCase) SubmitBatch(ctx context.Context, inputs []MovementInput) ([]*entity.LedgerEntry, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Validación previa a cualquier mutación: errores recuperables por el caller.
	for _, in := range inputs {
		if in.ProductID == "" {
			return nil, domain.ErrUnknownProduct
		}
		if !entity.ValidDirection(in.Direction) {
			return nil, domain.ErrInvalidDirection
		}
		if in.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	// Agrupar por producto conservando el orden de envío dentro de cada grupo.
	byProduct := make(map[string][]MovementInput)
	productIDs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, seen := byProduct[in.ProductID]; !seen {
			productIDs = append(productIDs, in.ProductID)
		}
		byProduct[in.ProductID] = append(byProduct[in.ProductID], in)
	}
	// Orden global de bloqueo.
	sort.Strings(productIDs)

	now := uc.nowFn()
	var result []*entity.LedgerEntry

	err := uc.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		for _, productID := range productIDs {
			entries, err := uc.applyProduct(ctx, balanceRepo, ledgerRepo, productID, byProduct[productID], now)
			if err != nil {
				return err
			}
			result = append(result, entries...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyProduct bloquea el saldo del producto, valida el agregado del lote y
// aplica el delta neto registrando una entrada de kardex por movimiento.
func (uc *SubmitUseCase) applyProduct(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	ledgerRepo repository.LedgerRepository,
	productID string,
	movements []MovementInput,
	now time.Time,
) ([]*entity.LedgerEntry, error) {
	bal, err := balanceRepo.GetForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownProduct
		}
		return nil, err
	}

	var sumIn, sumOut int64
	for _, m := range movements {
		if m.Direction == entity.DirectionIN {
			sumIn += m.Quantity
		} else {
			sumOut += m.Quantity
		}
	}
	// Validar la salida agregada contra el saldo previo al lote.
	if bal.CurrentStock+sumIn-sumOut < 0 {
		return nil, domain.ErrInsufficientStock
	}

	// Fotos por movimiento: entradas primero, salidas después, cada grupo en
	// orden de envío (regla de orden documentada del lote).
	ordered := make([]MovementInput, 0, len(movements))
	for _, m := range movements {
		if m.Direction == entity.DirectionIN {
			ordered = append(ordered, m)
		}
	}
	for _, m := range movements {
		if m.Direction == entity.DirectionOUT {
			ordered = append(ordered, m)
		}
	}

	running := bal.CurrentStock
	entries := make([]*entity.LedgerEntry, 0, len(ordered))
	for _, m := range ordered {
		before := running
		if m.Direction == entity.DirectionIN {
			running += m.Quantity
		} else {
			running -= m.Quantity
		}
		entries = append(entries, &entity.LedgerEntry{
			ProductID:       productID,
			Direction:       m.Direction,
			Quantity:        m.Quantity,
			UnitCost:        m.UnitCost,
			ReferenceType:   m.ReferenceType,
			ReferenceNumber: m.ReferenceNumber,
			Notes:           m.Notes,
			StockBefore:     before,
			StockAfter:      running,
			Timestamp:       now,
			CreatedBy:       m.CreatedBy,
		})
	}

	// Un único delta agregado por producto.
	newStock, err := balanceRepo.ApplyDelta(ctx, productID, sumIn-sumOut)
	if err != nil {
		if errors.Is(err, domain.ErrWouldGoNegative) {
			return nil, domain.ErrInsufficientStock
		}
		return nil, err
	}
	if newStock != running {
		// Imposible mientras el candado por producto esté tomado; si ocurre,
		// abortar antes que persistir fotos incoherentes.
		return nil, fmt.Errorf("saldo incoherente para %s: fotos terminan en %d pero el almacén reporta %d", productID, running, newStock)
	}

	for _, e := range entries {
		if err := ledgerRepo.Append(ctx, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
