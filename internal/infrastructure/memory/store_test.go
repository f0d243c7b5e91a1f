package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func seedBalance(t *testing.T, s *memory.Store, b *entity.Balance) {
	t.Helper()
	require.NoError(t, memory.NewBalanceRepository(s).Upsert(context.Background(), b))
}

func saldo(id string, stock int64) *entity.Balance {
	return &entity.Balance{
		ProductID:       id,
		SKU:             "SKU-" + id,
		Name:            "Producto " + id,
		CurrentStock:    stock,
		ReorderLevel:    10,
		ReorderQuantity: 20,
		Active:          true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// BalanceRepo
// ──────────────────────────────────────────────────────────────────────────────

func TestBalanceRepo_GetNoExiste(t *testing.T) {
	repo := memory.NewBalanceRepository(memory.NewStore())

	_, err := repo.Get(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBalanceRepo_ApplyDelta(t *testing.T) {
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 10))
	repo := memory.NewBalanceRepository(store)
	ctx := context.Background()

	nuevo, err := repo.ApplyDelta(ctx, "prod-a", -4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), nuevo)

	// Un delta que dejaría el saldo negativo se rechaza sin tocar nada.
	_, err = repo.ApplyDelta(ctx, "prod-a", -7)
	assert.ErrorIs(t, err, domain.ErrWouldGoNegative)

	bal, err := repo.Get(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(6), bal.CurrentStock)

	_, err = repo.ApplyDelta(ctx, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBalanceRepo_Upsert_Reemplaza(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewBalanceRepository(store)
	ctx := context.Background()

	seedBalance(t, store, saldo("prod-a", 10))

	actualizado := saldo("prod-a", 10)
	actualizado.ReorderLevel = 25
	require.NoError(t, repo.Upsert(ctx, actualizado))

	bal, err := repo.Get(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(25), bal.ReorderLevel)
	assert.False(t, bal.UpdatedAt.IsZero())
}

func TestBalanceRepo_ListLowStock_FiltroYOrden(t *testing.T) {
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-sano", 50))   // por encima del umbral
	seedBalance(t, store, saldo("prod-bajo", 7))    // déficit 3
	seedBalance(t, store, saldo("prod-peor", 2))    // déficit 8
	seedBalance(t, store, saldo("prod-agotado", 0)) // stock cero: primero
	inactivo := saldo("prod-inactivo", 1)
	inactivo.Active = false
	seedBalance(t, store, inactivo)

	out, err := memory.NewBalanceRepository(store).ListLowStock(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "prod-agotado", out[0].ProductID)
	assert.Equal(t, "prod-peor", out[1].ProductID)
	assert.Equal(t, "prod-bajo", out[2].ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// LedgerRepo
// ──────────────────────────────────────────────────────────────────────────────

func entrada(productID string, qty int64) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ProductID:   productID,
		Direction:   entity.DirectionIN,
		Quantity:    qty,
		StockBefore: 0,
		StockAfter:  qty,
		Timestamp:   time.Now(),
	}
}

func TestLedgerRepo_AppendAsignaIDsMonotonos(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewLedgerRepository(store)
	ctx := context.Background()

	var anterior int64
	for i := 0; i < 5; i++ {
		e := entrada("prod-a", 1)
		require.NoError(t, repo.Append(ctx, e))
		assert.Greater(t, e.TransactionID, anterior)
		assert.NotEmpty(t, e.ID)
		anterior = e.TransactionID
	}
	assert.Equal(t, 5, store.LedgerLen())
}

func TestLedgerRepo_GetByTransactionID(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewLedgerRepository(store)
	ctx := context.Background()

	e := entrada("prod-a", 3)
	require.NoError(t, repo.Append(ctx, e))

	encontrada, err := repo.GetByTransactionID(ctx, e.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, e.ProductID, encontrada.ProductID)
	assert.Equal(t, e.Quantity, encontrada.Quantity)

	_, err = repo.GetByTransactionID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerRepo_ListByProduct_MasRecientesPrimero(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewLedgerRepository(store)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, repo.Append(ctx, entrada("prod-a", i)))
	}
	require.NoError(t, repo.Append(ctx, entrada("prod-b", 99)))

	out, err := repo.ListByProduct(ctx, "prod-a", 2, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(4), out[0].Quantity, "la más reciente primero")
	assert.Equal(t, int64(3), out[1].Quantity)

	// Paginación: la siguiente página continúa donde quedó la anterior.
	pagina2, err := repo.ListByProduct(ctx, "prod-a", 2, 2)
	require.NoError(t, err)
	require.Len(t, pagina2, 2)
	assert.Equal(t, int64(2), pagina2[0].Quantity)
	assert.Equal(t, int64(1), pagina2[1].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// AlertRepo
// ──────────────────────────────────────────────────────────────────────────────

func alerta(productID string, createdAt time.Time) *entity.Alert {
	return &entity.Alert{
		ProductID:        productID,
		SKU:              "SKU-" + productID,
		Name:             "Producto " + productID,
		CurrentStock:     2,
		ReorderLevel:     10,
		Deficit:          8,
		SuggestedReorder: 20,
		Severity:         entity.SeverityCRITICAL,
		Message:          "stock bajo",
		CreatedAt:        createdAt,
	}
}

func TestAlertRepo_Create_DuplicadoMismoDiaUTC(t *testing.T) {
	repo := memory.NewAlertRepository(memory.NewStore())
	ctx := context.Background()
	dia := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, alerta("prod-a", dia)))

	// Mismo producto, mismo día UTC, sin acusar: duplicado.
	err := repo.Create(ctx, alerta("prod-a", dia.Add(6*time.Hour)))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Otro producto u otro día: válido.
	assert.NoError(t, repo.Create(ctx, alerta("prod-b", dia)))
	assert.NoError(t, repo.Create(ctx, alerta("prod-a", dia.Add(24*time.Hour))))
}

func TestAlertRepo_Acknowledge(t *testing.T) {
	repo := memory.NewAlertRepository(memory.NewStore())
	ctx := context.Background()

	a := alerta("prod-a", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, repo.Acknowledge(ctx, a.ID, "bodeguero-1", time.Now().UTC()))

	acusada, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, acusada.Acknowledged)
	assert.Equal(t, "bodeguero-1", acusada.AcknowledgedBy)

	err = repo.Acknowledge(ctx, a.ID, "bodeguero-2", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repo.Acknowledge(ctx, "no-existe", "bodeguero-1", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAlertRepo_ExistsUnacknowledgedOn(t *testing.T) {
	repo := memory.NewAlertRepository(memory.NewStore())
	ctx := context.Background()
	dia := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	a := alerta("prod-a", dia)
	require.NoError(t, repo.Create(ctx, a))

	existe, err := repo.ExistsUnacknowledgedOn(ctx, "prod-a", dia.Add(10*time.Hour))
	require.NoError(t, err)
	assert.True(t, existe)

	existe, err = repo.ExistsUnacknowledgedOn(ctx, "prod-a", dia.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, existe, "otro día UTC no cuenta")

	require.NoError(t, repo.Acknowledge(ctx, a.ID, "bodeguero-1", dia))
	existe, err = repo.ExistsUnacknowledgedOn(ctx, "prod-a", dia)
	require.NoError(t, err)
	assert.False(t, existe, "una alerta acusada deja de bloquear el día")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones en memoria
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_Run_ErrorDescartaEscrituras(t *testing.T) {
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 10))
	ctx := context.Background()

	err := store.Run(ctx, func(balanceRepo repository.BalanceRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := balanceRepo.ApplyDelta(ctx, "prod-a", -5); err != nil {
			return err
		}
		if err := ledgerRepo.Append(ctx, entrada("prod-a", 5)); err != nil {
			return err
		}
		return domain.ErrConflict // abortar tras acumular escrituras
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	bal, err := memory.NewBalanceRepository(store).Get(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.CurrentStock, "el rollback no deja rastro en el saldo")
	assert.Zero(t, store.LedgerLen())
}

func TestStore_Run_CancelacionAntesDelCommit_SinEfecto(t *testing.T) {
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 10))

	ctx, cancel := context.WithCancel(context.Background())
	err := store.Run(ctx, func(balanceRepo repository.BalanceRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := balanceRepo.ApplyDelta(ctx, "prod-a", -5); err != nil {
			return err
		}
		cancel() // se cancela con la transacción en vuelo, antes del commit
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	bal, err := memory.NewBalanceRepository(store).Get(context.Background(), "prod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.CurrentStock)
	assert.Zero(t, store.LedgerLen())
}

func TestStore_Run_CommitPublicaTodoJunto(t *testing.T) {
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 0))
	ctx := context.Background()

	e := entrada("prod-a", 8)
	err := store.Run(ctx, func(balanceRepo repository.BalanceRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := balanceRepo.ApplyDelta(ctx, "prod-a", 8); err != nil {
			return err
		}
		return ledgerRepo.Append(ctx, e)
	})
	require.NoError(t, err)

	assert.Positive(t, e.TransactionID, "el commit asigna el TransactionID sobre la entrada del caller")
	bal, err := memory.NewBalanceRepository(store).Get(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(8), bal.CurrentStock)
	assert.Equal(t, 1, store.LedgerLen())
}

func TestStore_ProductosIndependientes_SinCandadoGlobal(t *testing.T) {
	// Una transacción que retiene el candado de prod-a no debe bloquear las
	// escrituras sobre prod-b.
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 10))
	seedBalance(t, store, saldo("prod-b", 10))
	ctx := context.Background()

	err := store.Run(ctx, func(balanceRepo repository.BalanceRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := balanceRepo.GetForUpdate(ctx, "prod-a"); err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() {
			_, err := memory.NewBalanceRepository(store).ApplyDelta(ctx, "prod-b", -3)
			done <- err
		}()
		select {
		case err := <-done:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("la escritura sobre prod-b quedó bloqueada por el candado de prod-a")
			return nil
		}
	})
	require.NoError(t, err)

	bal, err := memory.NewBalanceRepository(store).Get(ctx, "prod-b")
	require.NoError(t, err)
	assert.Equal(t, int64(7), bal.CurrentStock)
}

func TestStore_LecturasConcurrentesSinDesgarro(t *testing.T) {
	// Mientras un escritor alterna el saldo entre dos valores, todo lector debe
	// ver uno de los dos estados publicados, nunca un intermedio.
	store := memory.NewStore()
	seedBalance(t, store, saldo("prod-a", 100))
	repo := memory.NewBalanceRepository(store)
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			delta := int64(-100)
			if i%2 == 1 {
				delta = 100
			}
			if _, err := repo.ApplyDelta(ctx, "prod-a", delta); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		bal, err := repo.Get(ctx, "prod-a")
		require.NoError(t, err)
		assert.Contains(t, []int64{0, 100}, bal.CurrentStock)
	}
	close(stop)
	wg.Wait()
}
