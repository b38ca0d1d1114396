package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RollbackRestauraEstado(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p-1", SKU: "CLV-1", Name: "Clavo", Stock: decimal.NewFromInt(10)}))

	boom := errors.New("falla a mitad")
	err := s.Run(ctx, func(repos repository.Store) error {
		if _, err := repos.Products().DecrementStock(ctx, "p-1", decimal.NewFromInt(4)); err != nil {
			return err
		}
		if err := repos.Kardex().Append(ctx, &entity.KardexEntry{ID: "k-1", ProductID: "p-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
	entries, err := s.Kardex().ListByProductAsc(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_EscrituraFueraDeRunSobreviveAlRollback(t *testing.T) {
	ctx := context.Background()
	s := New()

	inTx := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.Run(ctx, func(repos repository.Store) error {
			close(inTx)
			<-release
			return errors.New("falla")
		})
	}()
	<-inTx

	created := make(chan error, 1)
	go func() {
		created <- s.Products().Create(ctx, &entity.Product{ID: "p-9", Name: "Lija"})
	}()
	select {
	case <-created:
		t.Fatal("la escritura no esperó a la transacción en curso")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-created)

	p, err := s.Products().GetByID(ctx, "p-9")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestProducts_DecrementStockNoPermiteNegativo(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p-1", Name: "Clavo", Stock: decimal.NewFromInt(3)}))

	_, err := s.Products().DecrementStock(ctx, "p-1", decimal.NewFromInt(4))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = s.Products().DecrementStock(ctx, "nope", decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	left, err := s.Products().DecrementStock(ctx, "p-1", decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, left.IsZero())
}

func TestProducts_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p-1", SKU: "X"}))
	err := s.Products().Create(ctx, &entity.Product{ID: "p-2", SKU: "X"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestCashSessions_UnaSolaAbierta(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CashSessions().Create(ctx, &entity.CashSession{ID: "c-1", Status: entity.CashSessionOpen}))
	err := s.CashSessions().Create(ctx, &entity.CashSession{ID: "c-2", Status: entity.CashSessionOpen})
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
}

func TestCashSessions_GetOpenForShare(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CashSessions().Create(ctx, &entity.CashSession{ID: "c-1", Status: entity.CashSessionOpen}))

	require.NoError(t, s.Run(ctx, func(repos repository.Store) error {
		open, err := repos.CashSessions().GetOpenForShare(ctx)
		require.NoError(t, err)
		require.NotNil(t, open)
		assert.Equal(t, "c-1", open.ID)

		open.Status = entity.CashSessionClosed
		return repos.CashSessions().Close(ctx, open)
	}))

	open, err := s.CashSessions().GetOpenForShare(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestPage(t *testing.T) {
	from, to := page(10, 3, 2)
	assert.Equal(t, [2]int{2, 5}, [2]int{from, to})
	from, to = page(10, 0, 0)
	assert.Equal(t, [2]int{0, 10}, [2]int{from, to})
	from, to = page(4, 10, 8)
	assert.Equal(t, [2]int{4, 4}, [2]int{from, to})
}
