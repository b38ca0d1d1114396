package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ferreteria:cart:"

// RedisConfig conexión a Redis para los carritos.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCartStore guarda cada carrito como JSON bajo una clave con TTL.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore conecta y verifica Redis con un PING.
func NewRedisCartStore(ctx context.Context, cfg RedisConfig) (*RedisCartStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return NewRedisCartStoreWithClient(client, "", cfg.TTL), nil
}

// NewRedisCartStoreWithClient usa un cliente existente. keyPrefix vacío usa el prefijo por defecto.
func NewRedisCartStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCartStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get retorna (nil, nil) si la clave no existe.
func (s *RedisCartStore) Get(ctx context.Context, cartID string) (*cart.Cart, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+cartID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get carrito %s: %w", cartID, err)
	}
	var c cart.Cart
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("redis: carrito %s corrupto: %w", cartID, err)
	}
	return &c, nil
}

// Save guarda el carrito y renueva el TTL.
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+c.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: guardar carrito %s: %w", c.ID, err)
	}
	return nil
}

// Delete elimina el carrito.
func (s *RedisCartStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, s.keyPrefix+cartID).Err()
}

// Take lee y borra la clave con GETDEL (Redis >= 6.2).
func (s *RedisCartStore) Take(ctx context.Context, cartID string) (*cart.Cart, error) {
	val, err := s.client.GetDel(ctx, s.keyPrefix+cartID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: retirar carrito %s: %w", cartID, err)
	}
	var c cart.Cart
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("redis: carrito %s corrupto: %w", cartID, err)
	}
	return &c, nil
}

// Ping verifica la conexión (health check).
func (s *RedisCartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}
