// Package cache almacenes de carritos en curso: en memoria (un solo proceso) o Redis (varias instancias).
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCartStore guarda los carritos serializados en un mapa con expiración.
// Se serializan igual que en Redis para que el llamador nunca comparta punteros con el almacén.
type MemoryCartStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCartStore crea el almacén. ttl <= 0 desactiva la expiración.
func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retorna (nil, nil) si el carrito no existe o expiró.
func (s *MemoryCartStore) Get(_ context.Context, cartID string) (*cart.Cart, error) {
	s.mu.Lock()
	e, ok := s.entries[cartID]
	if ok && s.expired(e) {
		delete(s.entries, cartID)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var c cart.Cart
	if err := json.Unmarshal(e.payload, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save guarda el carrito y renueva su expiración.
func (s *MemoryCartStore) Save(_ context.Context, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	e := memoryEntry{payload: payload}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[c.ID] = e
	s.mu.Unlock()
	return nil
}

// Delete elimina el carrito; no falla si no existe.
func (s *MemoryCartStore) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	delete(s.entries, cartID)
	s.mu.Unlock()
	return nil
}

// Take retira el carrito bajo el mismo candado, así solo un llamador lo obtiene.
func (s *MemoryCartStore) Take(_ context.Context, cartID string) (*cart.Cart, error) {
	s.mu.Lock()
	e, ok := s.entries[cartID]
	delete(s.entries, cartID)
	if ok && s.expired(e) {
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var c cart.Cart
	if err := json.Unmarshal(e.payload, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Len cantidad de carritos vigentes.
func (s *MemoryCartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *MemoryCartStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
