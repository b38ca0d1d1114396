package cache

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart(id string) *cart.Cart {
	c := cart.New(id)
	l := cart.Line{
		ProductID:    "p-1",
		Name:         "Tornillo 1/4",
		Quantity:     decimal.NewFromInt(3),
		UnitPrice:    decimal.RequireFromString("0.25"),
		UnitsPerItem: decimal.NewFromInt(1),
	}
	l.Recalc()
	c.Add(l)
	return c
}

func TestMemoryCartStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCartStore(time.Hour)

	got, err := s.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, sampleCart("caja-1")))
	got, err = s.Get(ctx, "caja-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].Subtotal.Equal(decimal.RequireFromString("0.75")))

	// La copia devuelta no altera lo guardado.
	got.Lines = nil
	again, err := s.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Len(t, again.Lines, 1)

	require.NoError(t, s.Delete(ctx, "caja-1"))
	got, err = s.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCartStore_Expira(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryCartStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, sampleCart("caja-2")))
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Minute)
	got, err := s.Get(ctx, "caja-2")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryCartStore_TakeEntregaUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCartStore(time.Hour)
	require.NoError(t, s.Save(ctx, sampleCart("caja-3")))

	const workers = 8
	var (
		wg    sync.WaitGroup
		taken atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Take(ctx, "caja-3")
			assert.NoError(t, err)
			if c != nil {
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), taken.Load())
	assert.Equal(t, 0, s.Len())
}

// Requiere un Redis real: FERRETERIA_TEST_REDIS_ADDR=localhost:6379
func TestRedisCartStore(t *testing.T) {
	addr := os.Getenv("FERRETERIA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FERRETERIA_TEST_REDIS_ADDR no definido")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	s := NewRedisCartStoreWithClient(client, "ferreteria:test:cart:", time.Minute)
	t.Cleanup(func() {
		_ = s.Delete(ctx, "caja-r")
		_ = s.Close()
	})

	require.NoError(t, s.Save(ctx, sampleCart("caja-r")))
	got, err := s.Get(ctx, "caja-r")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tornillo 1/4", got.Lines[0].Name)

	taken, err := s.Take(ctx, "caja-r")
	require.NoError(t, err)
	require.NotNil(t, taken)
	again, err := s.Take(ctx, "caja-r")
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, s.Save(ctx, sampleCart("caja-r")))
	require.NoError(t, s.Delete(ctx, "caja-r"))
	got, err = s.Get(ctx, "caja-r")
	require.NoError(t, err)
	assert.Nil(t, got)
}
