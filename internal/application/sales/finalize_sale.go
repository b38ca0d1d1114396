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
	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/money"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// FinalizeSaleUseCase convierte el carrito en una venta confirmada.
// El carrito se retira del almacén antes de la transacción, así dos confirmaciones del mismo
// carrito no generan dos ventas. Si una línea no tiene stock o los pagos no cuadran, no se
// escribe nada y el carrito se devuelve intacto.
type FinalizeSaleUseCase struct {
	txRunner ports.TxRunner
	carts    CartStore
	ledger   *inventory.Ledger
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewFinalizeSaleUseCase construye el caso de uso.
func NewFinalizeSaleUseCase(txRunner ports.TxRunner, carts CartStore, ledger *inventory.Ledger, metrics ports.Metrics, log *logger.Logger) *FinalizeSaleUseCase {
	return &FinalizeSaleUseCase{
		txRunner: txRunner,
		carts:    carts,
		ledger:   ledger,
		metrics:  metrics,
		log:      log.Named("sales"),
		now:      time.Now,
	}
}

// FinalizeSale confirma la venta del carrito cartID.
//
// Los precios del carrito están en USD; si la venta es en VES cada línea se convierte con
// ExchangeRate (Bs por USD). Una venta de contado exige sesión de caja abierta; si trae pagos
// deben sumar el total (±0.01) y si no trae se registra un único pago en efectivo por el total. Una venta a crédito exige cliente; los pagos, si hay, son abono
// inicial y el resto aumenta la deuda del cliente.
func (uc *FinalizeSaleUseCase) FinalizeSale(ctx context.Context, cartID, userID string, in dto.CheckoutRequest) (*dto.SaleResponse, error) {
	resp, err := uc.finalize(ctx, cartID, userID, in)
	if err != nil {
		uc.metrics.SaleFailed(domain.Code(err))
		uc.log.Warn().Err(err).Str("cart_id", cartID).Str("code", domain.Code(err)).Msg("venta rechazada")
		return nil, err
	}
	uc.metrics.SaleCompleted(resp.Currency, resp.IsCredit, resp.Total)
	uc.log.Info().
		Str("sale_id", resp.ID).
		Str("cart_id", cartID).
		Str("total", resp.Total.String()).
		Str("currency", resp.Currency).
		Bool("credit", resp.IsCredit).
		Msg("venta confirmada")
	return resp, nil
}

func (uc *FinalizeSaleUseCase) finalize(ctx context.Context, cartID, userID string, in dto.CheckoutRequest) (*dto.SaleResponse, error) {
	c, err := uc.carts.Take(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	resp, err := uc.checkout(ctx, c, userID, in)
	if err != nil {
		if rerr := uc.carts.Save(ctx, c); rerr != nil {
			uc.log.Warn().Err(rerr).Str("cart_id", cartID).Msg("no se pudo restaurar el carrito")
		}
		return nil, err
	}
	return resp, nil
}

func (uc *FinalizeSaleUseCase) checkout(ctx context.Context, c *cart.Cart, userID string, in dto.CheckoutRequest) (*dto.SaleResponse, error) {
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	if !entity.IsSupportedCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: moneda %q", domain.ErrInvalidInput, in.Currency)
	}
	for _, p := range in.Payments {
		if p.Method == "" || !p.Amount.IsPositive() || !entity.IsSupportedCurrency(p.Currency) {
			return nil, fmt.Errorf("%w: pago inválido (%s %s %s)", domain.ErrInvalidInput, p.Method, p.Amount, p.Currency)
		}
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:           uuid.New().String(),
		CustomerID:   in.CustomerID,
		UserID:       userID,
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		IsCredit:     in.IsCredit,
		CreatedAt:    now,
	}

	// Líneas convertidas a la moneda de la venta; el total es la suma de los subtotales redondeados.
	details := make([]*entity.SaleDetail, 0, len(c.Lines))
	gross, total := decimal.Zero, decimal.Zero
	for _, l := range c.Lines {
		lineGross, err := money.Convert(l.Gross, entity.CurrencyUSD, sale.Currency, sale.ExchangeRate)
		if err != nil {
			return nil, err
		}
		lineNet, err := money.Convert(l.Subtotal, entity.CurrencyUSD, sale.Currency, sale.ExchangeRate)
		if err != nil {
			return nil, err
		}
		lineGross, lineNet = money.Round2(lineGross), money.Round2(lineNet)
		gross, total = gross.Add(lineGross), total.Add(lineNet)
		details = append(details, &entity.SaleDetail{
			ID:              uuid.New().String(),
			SaleID:          sale.ID,
			ProductID:       l.ProductID,
			Quantity:        l.BaseUnits,
			DisplayQuantity: l.Quantity,
			IsBox:           l.IsBox,
			UnitPrice:       lineNet.DivRound(l.BaseUnits, 6),
			Subtotal:        lineNet,
		})
	}
	sale.Subtotal = gross
	sale.Discount = gross.Sub(total)
	sale.TotalAmount = total

	payments := make([]*entity.SalePayment, 0, len(in.Payments)+1)
	paid := decimal.Zero
	for _, p := range in.Payments {
		v, err := money.Convert(p.Amount, p.Currency, sale.Currency, sale.ExchangeRate)
		if err != nil {
			return nil, err
		}
		paid = paid.Add(v)
		payments = append(payments, &entity.SalePayment{
			ID:       uuid.New().String(),
			SaleID:   sale.ID,
			Method:   p.Method,
			Amount:   money.Round2(p.Amount),
			Currency: p.Currency,
		})
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Store) error {
		session, err := repos.CashSessions().GetOpenForShare(ctx)
		if err != nil {
			return err
		}
		if session != nil {
			sale.CashSessionID = session.ID
		}

		if !sale.IsCredit {
			if session == nil {
				return domain.ErrNoOpenSession
			}
			if len(payments) == 0 {
				payments = append(payments, &entity.SalePayment{
					ID:       uuid.New().String(),
					SaleID:   sale.ID,
					Method:   entity.PaymentCash,
					Amount:   total,
					Currency: sale.Currency,
				})
			} else if !money.WithinTolerance(paid, total) {
				return fmt.Errorf("%w: pagado %s, total %s %s", domain.ErrPaymentMismatch, paid, total, sale.Currency)
			}
			sale.Paid = true
		} else {
			if err := uc.chargeCustomer(ctx, repos, sale, paid); err != nil {
				return err
			}
		}

		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}
		for _, d := range details {
			_, err := uc.ledger.Deduct(ctx, repos, inventory.Movement{
				ProductID:   d.ProductID,
				Type:        entity.MovementSale,
				Quantity:    d.Quantity,
				Description: "Venta #" + sale.ID,
				ReferenceID: sale.ID,
				UserID:      userID,
			})
			if err != nil {
				return err
			}
			if err := repos.Sales().CreateDetail(ctx, d); err != nil {
				return err
			}
		}
		for _, p := range payments {
			if err := repos.Sales().CreatePayment(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paymentsOut := make([]dto.SalePaymentResponse, 0, len(payments))
	for _, p := range payments {
		paymentsOut = append(paymentsOut, dto.SalePaymentResponse{Method: p.Method, Amount: p.Amount, Currency: p.Currency})
	}
	names := make(map[string]string, len(c.Lines))
	for _, l := range c.Lines {
		names[l.ProductID] = l.Name
	}
	return toSaleResponse(sale, details, paymentsOut, names, nil), nil
}

// chargeCustomer valida el cliente de una venta a crédito y suma a su deuda lo no pagado (en USD).
func (uc *FinalizeSaleUseCase) chargeCustomer(ctx context.Context, repos repository.Store, sale *entity.Sale, paid decimal.Decimal) error {
	if sale.CustomerID == "" {
		return domain.ErrMissingCustomer
	}
	customer, err := repos.Customers().GetForUpdate(ctx, sale.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, sale.CustomerID)
	}
	if paid.Sub(sale.TotalAmount).GreaterThan(money.Tolerance) {
		return fmt.Errorf("%w: el abono %s supera el total %s", domain.ErrPaymentMismatch, paid, sale.TotalAmount)
	}
	owed := decimal.Max(sale.TotalAmount.Sub(paid), decimal.Zero)
	if owed.LessThanOrEqual(money.Tolerance) {
		sale.Paid = true
		return nil
	}
	owedUSD, err := money.Convert(owed, sale.Currency, entity.CurrencyUSD, sale.ExchangeRate)
	if err != nil {
		return err
	}
	balance := money.Round2(customer.Balance.Add(owedUSD))
	if customer.CreditLimit.IsPositive() && balance.GreaterThan(customer.CreditLimit) {
		return fmt.Errorf("%w: deuda %s, límite %s", domain.ErrCreditLimitExceeded, balance, customer.CreditLimit)
	}
	return repos.Customers().UpdateBalance(ctx, customer.ID, balance)
}

func toSaleResponse(
	sale *entity.Sale,
	details []*entity.SaleDetail,
	payments []dto.SalePaymentResponse,
	names map[string]string,
	returned map[string]decimal.Decimal,
) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            sale.ID,
		CashSessionID: sale.CashSessionID,
		CustomerID:    sale.CustomerID,
		UserID:        sale.UserID,
		Currency:      sale.Currency,
		ExchangeRate:  sale.ExchangeRate,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.TotalAmount,
		IsCredit:      sale.IsCredit,
		Paid:          sale.Paid,
		Details:       make([]dto.SaleDetailResponse, 0, len(details)),
		Payments:      payments,
		CreatedAt:     sale.CreatedAt,
	}
	if out.Payments == nil {
		out.Payments = []dto.SalePaymentResponse{}
	}
	for _, d := range details {
		out.Details = append(out.Details, dto.SaleDetailResponse{
			ID:              d.ID,
			ProductID:       d.ProductID,
			ProductName:     names[d.ProductID],
			Quantity:        d.Quantity,
			DisplayQuantity: d.DisplayQuantity,
			IsBox:           d.IsBox,
			UnitPrice:       d.UnitPrice,
			Subtotal:        d.Subtotal,
			ReturnedQty:     returned[d.ID],
		})
	}
	return out
}
