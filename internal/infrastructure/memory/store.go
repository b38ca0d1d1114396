// Package memory implementación en memoria de los repositorios y del TxRunner.
// Se usa en tests y como modo demo cuando no hay PostgreSQL configurado.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Store = txStore{}
	_ ports.TxRunner   = (*Store)(nil)
)

type state struct {
	products      map[string]entity.Product
	priceRules    map[string][]entity.PriceRule
	kardex        []entity.KardexEntry
	sales         map[string]entity.Sale
	saleOrder     []string
	saleDetails   map[string][]entity.SaleDetail
	salePayments  map[string][]entity.SalePayment
	sessions      map[string]entity.CashSession
	sessionOrder  []string
	cashMovements []entity.CashMovement
	returns       []entity.Return
	returnDetails []entity.ReturnDetail
	customers     map[string]entity.Customer
	customerOrder []string
	payments      []entity.CustomerPayment
	users         map[string]entity.User
}

func newState() *state {
	return &state{
		products:     map[string]entity.Product{},
		priceRules:   map[string][]entity.PriceRule{},
		sales:        map[string]entity.Sale{},
		saleDetails:  map[string][]entity.SaleDetail{},
		salePayments: map[string][]entity.SalePayment{},
		sessions:     map[string]entity.CashSession{},
		customers:    map[string]entity.Customer{},
		users:        map[string]entity.User{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.products {
		c.products[k] = v.Clone()
	}
	for k, v := range st.priceRules {
		c.priceRules[k] = append([]entity.PriceRule(nil), v...)
	}
	c.kardex = append([]entity.KardexEntry(nil), st.kardex...)
	for k, v := range st.sales {
		c.sales[k] = v
	}
	c.saleOrder = append([]string(nil), st.saleOrder...)
	for k, v := range st.saleDetails {
		c.saleDetails[k] = append([]entity.SaleDetail(nil), v...)
	}
	for k, v := range st.salePayments {
		c.salePayments[k] = append([]entity.SalePayment(nil), v...)
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	c.sessionOrder = append([]string(nil), st.sessionOrder...)
	c.cashMovements = append([]entity.CashMovement(nil), st.cashMovements...)
	c.returns = append([]entity.Return(nil), st.returns...)
	c.returnDetails = append([]entity.ReturnDetail(nil), st.returnDetails...)
	for k, v := range st.customers {
		c.customers[k] = v
	}
	c.customerOrder = append([]string(nil), st.customerOrder...)
	c.payments = append([]entity.CustomerPayment(nil), st.payments...)
	for k, v := range st.users {
		c.users[k] = v
	}
	return c
}

// Store guarda todo en mapas protegidos por un RWMutex.
// Run serializa las transacciones y restaura una copia del estado si fn falla. Las escrituras
// hechas fuera de Run esperan a que termine la transacción en curso, así un rollback nunca las pisa.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run implementa ports.TxRunner. fn recibe una vista del store ligada a la transacción;
// usar el Store original para escribir dentro de fn bloquea.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(txStore{s: s}); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Products() repository.ProductRepository { return &productRepo{handle{s: s}} }
func (s *Store) PriceRules() repository.PriceRuleRepository { return &priceRuleRepo{handle{s: s}} }
func (s *Store) Kardex() repository.KardexRepository { return &kardexRepo{handle{s: s}} }
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{handle{s: s}} }
func (s *Store) CashSessions() repository.CashSessionRepository { return &cashSessionRepo{handle{s: s}} }
func (s *Store) Returns() repository.ReturnRepository { return &returnRepo{handle{s: s}} }
func (s *Store) Customers() repository.CustomerRepository { return &customerRepo{handle{s: s}} }
func (s *Store) Users() repository.UserRepository { return &userRepo{handle{s: s}} }

// txStore repositorios que Run entrega a fn; ya tienen txMu.
type txStore struct{ s *Store }

func (t txStore) h() handle { return handle{s: t.s, tx: true} }

func (t txStore) Products() repository.ProductRepository { return &productRepo{t.h()} }
func (t txStore) PriceRules() repository.PriceRuleRepository { return &priceRuleRepo{t.h()} }
func (t txStore) Kardex() repository.KardexRepository { return &kardexRepo{t.h()} }
func (t txStore) Sales() repository.SaleRepository { return &saleRepo{t.h()} }
func (t txStore) CashSessions() repository.CashSessionRepository { return &cashSessionRepo{t.h()} }
func (t txStore) Returns() repository.ReturnRepository { return &returnRepo{t.h()} }
func (t txStore) Customers() repository.CustomerRepository { return &customerRepo{t.h()} }
func (t txStore) Users() repository.UserRepository { return &userRepo{t.h()} }

// handle acceso de un repositorio al store.
type handle struct {
	s  *Store
	tx bool
}

// write toma el candado de escritura y retorna cómo soltarlo.
// Fuera de una transacción también toma txMu.
func (h handle) write() func() {
	if !h.tx {
		h.s.txMu.Lock()
	}
	h.s.mu.Lock()
	return func() {
		h.s.mu.Unlock()
		if !h.tx {
			h.s.txMu.Unlock()
		}
	}
}

// page aplica limit/offset sobre n elementos; limit <= 0 devuelve todo desde offset.
func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
