package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type productRepo struct{ handle }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.write()()
	if p.SKU != "" {
		for _, other := range r.s.st.products {
			if other.SKU == p.SKU {
				return domain.ErrDuplicateSKU
			}
		}
	}
	r.s.st.products[p.ID] = p.Clone()
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.st.products {
		if sku != "" && p.SKU == sku {
			c := p.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.write()()
	cur, ok := r.s.st.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.SKU != "" {
		for id, other := range r.s.st.products {
			if id != p.ID && other.SKU == p.SKU {
				return domain.ErrDuplicateSKU
			}
		}
	}
	next := p.Clone()
	next.Stock, next.Cost, next.CreatedAt = cur.Stock, cur.Cost, cur.CreatedAt
	r.s.st.products[p.ID] = next
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	defer r.write()()
	p, ok := r.s.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	r.s.st.products[id] = p
	return nil
}

func (r *productRepo) DecrementStock(_ context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	defer r.write()()
	p, ok := r.s.st.products[id]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	if p.Stock.LessThan(qty) {
		return decimal.Zero, fmt.Errorf("%w: %s necesita %s, hay %s", domain.ErrInsufficientStock, p.Name, qty, p.Stock)
	}
	p.Stock = p.Stock.Sub(qty)
	p.UpdatedAt = time.Now()
	r.s.st.products[id] = p
	return p.Stock, nil
}

func (r *productRepo) IncrementStock(_ context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	defer r.write()()
	p, ok := r.s.st.products[id]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	p.Stock = p.Stock.Add(qty)
	p.UpdatedAt = time.Now()
	r.s.st.products[id] = p
	return p.Stock, nil
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var list []*entity.Product
	for _, p := range r.s.st.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		c := p.Clone()
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	from, to := page(len(list), f.Limit, f.Offset)
	return list[from:to], nil
}

func (r *productRepo) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.s.st.products {
		if p.IsLowStock() {
			c := p.Clone()
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Stock.LessThan(list[j].Stock) })
	_, to := page(len(list), limit, 0)
	return list[:to], nil
}

type priceRuleRepo struct{ handle }

func (r *priceRuleRepo) ListByProduct(_ context.Context, productID string) ([]*entity.PriceRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rules := r.s.st.priceRules[productID]
	list := make([]*entity.PriceRule, 0, len(rules))
	for i := range rules {
		rule := rules[i]
		list = append(list, &rule)
	}
	return list, nil
}

func (r *priceRuleRepo) ReplaceForProduct(_ context.Context, productID string, rules []*entity.PriceRule) error {
	defer r.write()()
	if _, ok := r.s.st.products[productID]; !ok {
		return domain.ErrNotFound
	}
	next := make([]entity.PriceRule, 0, len(rules))
	for _, rule := range rules {
		next = append(next, *rule)
	}
	r.s.st.priceRules[productID] = next
	return nil
}

type kardexRepo struct{ handle }

func (r *kardexRepo) Append(_ context.Context, e *entity.KardexEntry) error {
	defer r.write()()
	r.s.st.kardex = append(r.s.st.kardex, *e)
	return nil
}

func (r *kardexRepo) List(_ context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.KardexEntry
	for i := len(r.s.st.kardex) - 1; i >= 0; i-- {
		e := r.s.st.kardex[i]
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		list = append(list, &e)
	}
	from, to := page(len(list), f.Limit, f.Offset)
	return list[from:to], nil
}

func (r *kardexRepo) ListByProductAsc(_ context.Context, productID string) ([]*entity.KardexEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.KardexEntry
	for i := range r.s.st.kardex {
		e := r.s.st.kardex[i]
		if e.ProductID == productID {
			list = append(list, &e)
		}
	}
	return list, nil
}
