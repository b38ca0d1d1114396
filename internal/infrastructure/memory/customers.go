package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type customerRepo struct{ handle }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	defer r.write()()
	if c.TaxID != "" {
		for _, other := range r.s.st.customers {
			if strings.EqualFold(other.TaxID, c.TaxID) {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.st.customers[c.ID] = *c
	r.s.st.customerOrder = append(r.s.st.customerOrder, c.ID)
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.st.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *customerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *customerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Customer, 0, len(r.s.st.customerOrder))
	for _, id := range r.s.st.customerOrder {
		c := r.s.st.customers[id]
		list = append(list, &c)
	}
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}

func (r *customerRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	defer r.write()()
	c, ok := r.s.st.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Balance = balance
	c.UpdatedAt = time.Now()
	r.s.st.customers[id] = c
	return nil
}

func (r *customerRepo) CreatePayment(_ context.Context, p *entity.CustomerPayment) error {
	defer r.write()()
	r.s.st.payments = append(r.s.st.payments, *p)
	return nil
}

func (r *customerRepo) ListPayments(_ context.Context, customerID string) ([]*entity.CustomerPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.CustomerPayment
	for i := len(r.s.st.payments) - 1; i >= 0; i-- {
		p := r.s.st.payments[i]
		if p.CustomerID == customerID {
			list = append(list, &p)
		}
	}
	return list, nil
}

type userRepo struct{ handle }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.write()()
	for _, other := range r.s.st.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}
