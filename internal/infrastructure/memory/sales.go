package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type saleRepo struct{ handle }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.write()()
	if _, ok := r.s.st.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.sales[sale.ID] = *sale
	r.s.st.saleOrder = append(r.s.st.saleOrder, sale.ID)
	return nil
}

func (r *saleRepo) CreateDetail(_ context.Context, d *entity.SaleDetail) error {
	defer r.write()()
	r.s.st.saleDetails[d.SaleID] = append(r.s.st.saleDetails[d.SaleID], *d)
	return nil
}

func (r *saleRepo) CreatePayment(_ context.Context, p *entity.SalePayment) error {
	defer r.write()()
	r.s.st.salePayments[p.SaleID] = append(r.s.st.salePayments[p.SaleID], *p)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.st.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetDetails(_ context.Context, saleID string) ([]*entity.SaleDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	details := r.s.st.saleDetails[saleID]
	list := make([]*entity.SaleDetail, 0, len(details))
	for i := range details {
		d := details[i]
		list = append(list, &d)
	}
	return list, nil
}

func (r *saleRepo) GetPayments(_ context.Context, saleID string) ([]*entity.SalePayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	payments := r.s.st.salePayments[saleID]
	list := make([]*entity.SalePayment, 0, len(payments))
	for i := range payments {
		p := payments[i]
		list = append(list, &p)
	}
	return list, nil
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Sale
	for i := len(r.s.st.saleOrder) - 1; i >= 0; i-- {
		sale := r.s.st.sales[r.s.st.saleOrder[i]]
		if f.CashSessionID != "" && sale.CashSessionID != f.CashSessionID {
			continue
		}
		if f.CustomerID != "" && sale.CustomerID != f.CustomerID {
			continue
		}
		list = append(list, &sale)
	}
	from, to := page(len(list), f.Limit, f.Offset)
	return list[from:to], nil
}

func (r *saleRepo) PaymentTotalsBySession(_ context.Context, sessionID string) ([]entity.PaymentTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct{ method, currency string }
	sums := map[key]decimal.Decimal{}
	for _, id := range r.s.st.saleOrder {
		if r.s.st.sales[id].CashSessionID != sessionID {
			continue
		}
		for _, p := range r.s.st.salePayments[id] {
			k := key{p.Method, p.Currency}
			sums[k] = sums[k].Add(p.Amount)
		}
	}
	totals := make([]entity.PaymentTotal, 0, len(sums))
	for k, v := range sums {
		totals = append(totals, entity.PaymentTotal{Method: k.method, Currency: k.currency, Amount: v})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Method != totals[j].Method {
			return totals[i].Method < totals[j].Method
		}
		return totals[i].Currency < totals[j].Currency
	})
	return totals, nil
}

func (r *saleRepo) ListUnpaidCredit(_ context.Context, customerID string) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Sale
	for _, id := range r.s.st.saleOrder {
		sale := r.s.st.sales[id]
		if sale.CustomerID == customerID && sale.IsCredit && !sale.Paid {
			list = append(list, &sale)
		}
	}
	return list, nil
}

func (r *saleRepo) MarkPaid(_ context.Context, saleID string) error {
	defer r.write()()
	sale, ok := r.s.st.sales[saleID]
	if !ok {
		return domain.ErrNotFound
	}
	sale.Paid = true
	r.s.st.sales[saleID] = sale
	return nil
}

type returnRepo struct{ handle }

func (r *returnRepo) Create(_ context.Context, ret *entity.Return) error {
	defer r.write()()
	r.s.st.returns = append(r.s.st.returns, *ret)
	return nil
}

func (r *returnRepo) CreateDetail(_ context.Context, d *entity.ReturnDetail) error {
	defer r.write()()
	r.s.st.returnDetails = append(r.s.st.returnDetails, *d)
	return nil
}

func (r *returnRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Return, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Return
	for i := range r.s.st.returns {
		ret := r.s.st.returns[i]
		if ret.SaleID == saleID {
			list = append(list, &ret)
		}
	}
	return list, nil
}

func (r *returnRepo) GetDetails(_ context.Context, returnID string) ([]*entity.ReturnDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.ReturnDetail
	for i := range r.s.st.returnDetails {
		d := r.s.st.returnDetails[i]
		if d.ReturnID == returnID {
			list = append(list, &d)
		}
	}
	return list, nil
}

func (r *returnRepo) ReturnedQtyBySaleDetail(_ context.Context, saleID string) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := map[string]bool{}
	for _, ret := range r.s.st.returns {
		if ret.SaleID == saleID {
			ids[ret.ID] = true
		}
	}
	out := map[string]decimal.Decimal{}
	for _, d := range r.s.st.returnDetails {
		if ids[d.ReturnID] {
			out[d.SaleDetailID] = out[d.SaleDetailID].Add(d.Quantity)
		}
	}
	return out, nil
}
