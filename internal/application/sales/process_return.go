package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/money"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProcessReturnUseCase revierte total o parcialmente una venta: repone stock vía kardex,
// registra la devolución y el reintegro. En una venta a crédito pendiente lo devuelto rebaja primero la
// deuda que dejó esa venta; lo que exceda (el abono inicial) se reintegra desde la caja como gasto.
type ProcessReturnUseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	ledger   *inventory.Ledger
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewProcessReturnUseCase construye el caso de uso.
func NewProcessReturnUseCase(txRunner ports.TxRunner, store repository.Store, ledger *inventory.Ledger, metrics ports.Metrics, log *logger.Logger) *ProcessReturnUseCase {
	return &ProcessReturnUseCase{
		txRunner: txRunner,
		store:    store,
		ledger:   ledger,
		metrics:  metrics,
		log:      log.Named("returns"),
		now:      time.Now,
	}
}

// allocation cantidad devuelta asignada a una línea concreta de la venta.
type allocation struct {
	detail *entity.SaleDetail
	qty    decimal.Decimal
}

// ProcessReturn devuelve las cantidades pedidas (unidades base) de la venta saleID.
// Lo devuelto se acumula por línea: nunca se puede devolver más de lo vendido sumando devoluciones previas.
// Si el producto aparece en varias líneas (caja y unidad) la cantidad se reparte en orden.
func (uc *ProcessReturnUseCase) ProcessReturn(ctx context.Context, saleID, userID string, in dto.ProcessReturnRequest) (*dto.ReturnResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: sin productos a devolver", domain.ErrInvalidInput)
	}
	requested := make(map[string]decimal.Decimal, len(in.Items))
	order := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, it.Quantity)
		}
		if _, ok := requested[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		requested[it.ProductID] = requested[it.ProductID].Add(it.Quantity)
	}
	if in.RefundCurrency != "" && !entity.IsSupportedCurrency(in.RefundCurrency) {
		return nil, fmt.Errorf("%w: moneda %q", domain.ErrInvalidInput, in.RefundCurrency)
	}

	var (
		ret         *entity.Return
		retDetails  []*entity.ReturnDetail
		noSession   bool
		creditTaken bool
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Store) error {
		sale, err := repos.Sales().GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		details, err := repos.Sales().GetDetails(ctx, saleID)
		if err != nil {
			return err
		}
		returned, err := repos.Returns().ReturnedQtyBySaleDetail(ctx, saleID)
		if err != nil {
			return err
		}

		allocs, err := allocate(details, returned, requested, order)
		if err != nil {
			return err
		}

		ret = &entity.Return{
			ID:             uuid.New().String(),
			SaleID:         sale.ID,
			RefundCurrency: in.RefundCurrency,
			ExchangeRate:   in.ExchangeRate,
			Reason:         in.Reason,
			CreatedBy:      userID,
			CreatedAt:      uc.now(),
		}
		if ret.RefundCurrency == "" {
			ret.RefundCurrency = sale.Currency
		}
		if !ret.ExchangeRate.IsPositive() {
			ret.ExchangeRate = sale.ExchangeRate
		}

		total := decimal.Zero
		retDetails = make([]*entity.ReturnDetail, 0, len(allocs))
		for _, a := range allocs {
			// Proporcional al subtotal de la línea: exacto cuando se devuelve la línea completa.
			subtotal := money.Round2(a.detail.Subtotal.Mul(a.qty).Div(a.detail.Quantity))
			total = total.Add(subtotal)
			retDetails = append(retDetails, &entity.ReturnDetail{
				ID:           uuid.New().String(),
				ReturnID:     ret.ID,
				SaleDetailID: a.detail.ID,
				ProductID:    a.detail.ProductID,
				Quantity:     a.qty,
				UnitPrice:    a.detail.UnitPrice,
				Subtotal:     subtotal,
			})
		}
		ret.TotalRefunded = total

		cashPart := total
		if sale.IsCredit && !sale.Paid {
			debtPart, err := uc.reduceDebt(ctx, repos, sale, total)
			if err != nil {
				return err
			}
			creditTaken = debtPart.IsPositive()
			cashPart = money.Round2(total.Sub(debtPart))
			if cashPart.LessThanOrEqual(money.Tolerance) {
				cashPart = decimal.Zero
			}
		}
		refund, err := money.Convert(cashPart, sale.Currency, ret.RefundCurrency, ret.ExchangeRate)
		if err != nil {
			return err
		}
		ret.RefundAmount = money.Round2(refund)

		if ret.RefundAmount.IsPositive() {
			session, err := repos.CashSessions().GetOpenForShare(ctx)
			if err != nil {
				return err
			}
			if session == nil {
				noSession = true
			} else {
				ret.CashSessionID = session.ID
			}
		}

		if err := repos.Returns().Create(ctx, ret); err != nil {
			return err
		}
		for _, rd := range retDetails {
			if err := repos.Returns().CreateDetail(ctx, rd); err != nil {
				return err
			}
			_, err := uc.ledger.Restore(ctx, repos, inventory.Movement{
				ProductID:   rd.ProductID,
				Type:        entity.MovementReturn,
				Quantity:    rd.Quantity,
				Description: "Devolución de venta #" + sale.ID,
				ReferenceID: ret.ID,
				UserID:      userID,
			})
			if err != nil {
				return err
			}
		}
		if ret.CashSessionID != "" && ret.RefundAmount.IsPositive() {
			return repos.CashSessions().CreateMovement(ctx, &entity.CashMovement{
				ID:          uuid.New().String(),
				SessionID:   ret.CashSessionID,
				Type:        entity.CashMovementExpense,
				Amount:      ret.RefundAmount,
				Currency:    ret.RefundCurrency,
				Description: "Reintegro por devolución de venta #" + sale.ID,
				ReferenceID: ret.ID,
				CreatedBy:   userID,
				CreatedAt:   ret.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if noSession {
		uc.log.Warn().Str("sale_id", saleID).Str("return_id", ret.ID).Msg("devolución sin caja abierta: el reintegro no quedó en ninguna sesión")
	}
	uc.metrics.ReturnProcessed(ret.RefundCurrency, ret.RefundAmount)
	uc.log.Info().
		Str("sale_id", saleID).
		Str("return_id", ret.ID).
		Str("refund", ret.RefundAmount.String()).
		Str("currency", ret.RefundCurrency).
		Msg("devolución registrada")

	return toReturnResponse(ret, retDetails, creditTaken), nil
}

// VoidSale anula la venta devolviendo todo lo que aún no se ha devuelto.
func (uc *ProcessReturnUseCase) VoidSale(ctx context.Context, saleID, userID string, in dto.VoidSaleRequest) (*dto.ReturnResponse, error) {
	sale, err := uc.store.Sales().GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	details, err := uc.store.Sales().GetDetails(ctx, saleID)
	if err != nil {
		return nil, err
	}
	returned, err := uc.store.Returns().ReturnedQtyBySaleDetail(ctx, saleID)
	if err != nil {
		return nil, err
	}
	var items []dto.ReturnItemRequest
	for _, d := range details {
		if left := d.Quantity.Sub(returned[d.ID]); left.IsPositive() {
			items = append(items, dto.ReturnItemRequest{ProductID: d.ProductID, Quantity: left})
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: la venta ya fue devuelta por completo", domain.ErrInvalidReturnQuantity)
	}
	reason := "Anulación de venta"
	if in.Reason != "" {
		reason += ": " + in.Reason
	}
	return uc.ProcessReturn(ctx, saleID, userID, dto.ProcessReturnRequest{
		Items:          items,
		Reason:         reason,
		RefundCurrency: in.RefundCurrency,
		ExchangeRate:   in.ExchangeRate,
	})
}

// ListReturns devoluciones registradas de una venta.
func (uc *ProcessReturnUseCase) ListReturns(ctx context.Context, saleID string) ([]dto.ReturnResponse, error) {
	rets, err := uc.store.Returns().ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(rets))
	for _, r := range rets {
		details, err := uc.store.Returns().GetDetails(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toReturnResponse(r, details, false))
	}
	return out, nil
}

// reduceDebt rebaja la deuda del cliente por lo devuelto de una venta a crédito pendiente y retorna
// la parte de amount (moneda de la venta) que absorbió la deuda.
//
// Las devoluciones consumen primero lo que la venta dejó a deber (total menos abono inicial),
// contando las devoluciones anteriores de la misma venta. La rebaja nunca supera el saldo del
// cliente. Si la deuda de la venta queda en cero se marca pagada.
func (uc *ProcessReturnUseCase) reduceDebt(ctx context.Context, repos repository.Store, sale *entity.Sale, amount decimal.Decimal) (decimal.Decimal, error) {
	customer, err := repos.Customers().GetForUpdate(ctx, sale.CustomerID)
	if err != nil {
		return decimal.Zero, err
	}
	if customer == nil {
		return decimal.Zero, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, sale.CustomerID)
	}

	payments, err := repos.Sales().GetPayments(ctx, sale.ID)
	if err != nil {
		return decimal.Zero, err
	}
	upfront := decimal.Zero
	for _, p := range payments {
		v, err := money.Convert(p.Amount, p.Currency, sale.Currency, sale.ExchangeRate)
		if err != nil {
			return decimal.Zero, err
		}
		upfront = upfront.Add(v)
	}
	owed := decimal.Max(sale.TotalAmount.Sub(upfront), decimal.Zero)

	prior, err := repos.Returns().ListBySale(ctx, sale.ID)
	if err != nil {
		return decimal.Zero, err
	}
	returned := decimal.Zero
	for _, r := range prior {
		returned = returned.Add(r.TotalRefunded)
	}
	covered := decimal.Min(returned.Add(amount), owed)
	debtPart := covered.Sub(decimal.Min(returned, owed))
	if !debtPart.IsPositive() {
		return decimal.Zero, nil
	}

	usd, err := money.Convert(debtPart, sale.Currency, entity.CurrencyUSD, sale.ExchangeRate)
	if err != nil {
		return decimal.Zero, err
	}
	usd = money.Round2(usd)
	if usd.GreaterThan(customer.Balance) {
		usd = decimal.Max(customer.Balance, decimal.Zero)
		if debtPart, err = money.Convert(usd, entity.CurrencyUSD, sale.Currency, sale.ExchangeRate); err != nil {
			return decimal.Zero, err
		}
	}
	balance := money.Round2(customer.Balance.Sub(usd))
	if err := repos.Customers().UpdateBalance(ctx, customer.ID, balance); err != nil {
		return decimal.Zero, err
	}
	if owed.Sub(covered).LessThanOrEqual(money.Tolerance) {
		if err := repos.Sales().MarkPaid(ctx, sale.ID); err != nil {
			return decimal.Zero, err
		}
	}
	return money.Round2(debtPart), nil
}

func allocate(details []*entity.SaleDetail, returned, requested map[string]decimal.Decimal, order []string) ([]allocation, error) {
	var allocs []allocation
	for _, productID := range order {
		want := requested[productID]
		found := false
		available := decimal.Zero
		for _, d := range details {
			if d.ProductID == productID {
				found = true
				available = available.Add(d.Quantity.Sub(returned[d.ID]))
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotInSale, productID)
		}
		if want.GreaterThan(available) {
			return nil, fmt.Errorf("%w: %s pide %s, quedan %s", domain.ErrInvalidReturnQuantity, productID, want, available)
		}
		for _, d := range details {
			if d.ProductID != productID || !want.IsPositive() {
				continue
			}
			left := d.Quantity.Sub(returned[d.ID])
			if !left.IsPositive() {
				continue
			}
			take := decimal.Min(left, want)
			allocs = append(allocs, allocation{detail: d, qty: take})
			want = want.Sub(take)
		}
	}
	return allocs, nil
}

func toReturnResponse(r *entity.Return, details []*entity.ReturnDetail, creditApplied bool) *dto.ReturnResponse {
	out := &dto.ReturnResponse{
		ID:             r.ID,
		SaleID:         r.SaleID,
		CashSessionID:  r.CashSessionID,
		TotalRefunded:  r.TotalRefunded,
		RefundAmount:   r.RefundAmount,
		RefundCurrency: r.RefundCurrency,
		CreditApplied:  creditApplied,
		Reason:         r.Reason,
		Details:        make([]dto.ReturnDetailResponse, 0, len(details)),
		CreatedAt:      r.CreatedAt,
	}
	for _, d := range details {
		out.Details = append(out.Details, dto.ReturnDetailResponse{
			SaleDetailID: d.SaleDetailID,
			ProductID:    d.ProductID,
			Quantity:     d.Quantity,
			UnitPrice:    d.UnitPrice,
			Subtotal:     d.Subtotal,
		})
	}
	return out
}
