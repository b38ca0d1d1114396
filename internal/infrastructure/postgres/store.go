package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store repositorios sobre un Querier (pool fuera de transacción, tx dentro de TxRunner.Run).
type Store struct {
	q Querier
}

// NewStore construye el store sobre el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{q: pool}
}

func newStore(q Querier) *Store { return &Store{q: q} }

func (s *Store) Products() repository.ProductRepository { return NewProductRepository(s.q) }
func (s *Store) PriceRules() repository.PriceRuleRepository { return NewPriceRuleRepository(s.q) }
func (s *Store) Kardex() repository.KardexRepository { return NewKardexRepository(s.q) }
func (s *Store) Sales() repository.SaleRepository { return NewSaleRepository(s.q) }
func (s *Store) CashSessions() repository.CashSessionRepository { return NewCashSessionRepository(s.q) }
func (s *Store) Returns() repository.ReturnRepository { return NewReturnRepository(s.q) }
func (s *Store) Customers() repository.CustomerRepository { return NewCustomerRepository(s.q) }
func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.q) }
