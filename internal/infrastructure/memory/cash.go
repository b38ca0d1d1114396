package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type cashSessionRepo struct{ handle }

func (r *cashSessionRepo) Create(_ context.Context, cs *entity.CashSession) error {
	defer r.write()()
	for _, other := range r.s.st.sessions {
		if other.IsOpen() {
			return domain.ErrSessionAlreadyOpen
		}
	}
	r.s.st.sessions[cs.ID] = *cs
	r.s.st.sessionOrder = append(r.s.st.sessionOrder, cs.ID)
	return nil
}

func (r *cashSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cs, ok := r.s.st.sessions[id]
	if !ok {
		return nil, nil
	}
	return &cs, nil
}

func (r *cashSessionRepo) GetOpen(_ context.Context) (*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, cs := range r.s.st.sessions {
		if cs.IsOpen() {
			return &cs, nil
		}
	}
	return nil, nil
}

func (r *cashSessionRepo) GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error) {
	return r.GetOpen(ctx)
}

func (r *cashSessionRepo) GetOpenForShare(ctx context.Context) (*entity.CashSession, error) {
	return r.GetOpen(ctx)
}

func (r *cashSessionRepo) Close(_ context.Context, cs *entity.CashSession) error {
	defer r.write()()
	if _, ok := r.s.st.sessions[cs.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.sessions[cs.ID] = *cs
	return nil
}

func (r *cashSessionRepo) List(_ context.Context, limit, offset int) ([]*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.CashSession
	for i := len(r.s.st.sessionOrder) - 1; i >= 0; i-- {
		cs := r.s.st.sessions[r.s.st.sessionOrder[i]]
		list = append(list, &cs)
	}
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}

func (r *cashSessionRepo) CreateMovement(_ context.Context, m *entity.CashMovement) error {
	defer r.write()()
	r.s.st.cashMovements = append(r.s.st.cashMovements, *m)
	return nil
}

func (r *cashSessionRepo) ListMovements(_ context.Context, sessionID string) ([]*entity.CashMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.CashMovement
	for i := range r.s.st.cashMovements {
		m := r.s.st.cashMovements[i]
		if m.SessionID == sessionID {
			list = append(list, &m)
		}
	}
	return list, nil
}

func (r *cashSessionRepo) MovementTotals(_ context.Context, sessionID string) ([]entity.MovementTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct{ typ, currency string }
	sums := map[key]decimal.Decimal{}
	for _, m := range r.s.st.cashMovements {
		if m.SessionID == sessionID {
			k := key{m.Type, m.Currency}
			sums[k] = sums[k].Add(m.Amount)
		}
	}
	totals := make([]entity.MovementTotal, 0, len(sums))
	for k, v := range sums {
		totals = append(totals, entity.MovementTotal{Type: k.typ, Currency: k.currency, Amount: v})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Type != totals[j].Type {
			return totals[i].Type < totals[j].Type
		}
		return totals[i].Currency < totals[j].Currency
	})
	return totals, nil
}
