// Package credit clientes con cuenta corriente: alta, consulta y abonos a la deuda.
package credit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/money"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CashMethods indica qué métodos de pago entran a la gaveta (lo implementa cash.Manager).
type CashMethods interface {
	IsCashMethod(method string) bool
}

// UseCase casos de uso de clientes y crédito. La deuda (Balance) se lleva en USD.
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	cash     CashMethods
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, cash CashMethods, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		store:    store,
		cash:     cash,
		log:      log.Named("credit"),
		now:      time.Now,
	}
}

// Create da de alta un cliente. ErrDuplicate si la cédula/RIF ya existe.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: el límite de crédito no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	c := &entity.Customer{
		ID:          uuid.New().String(),
		Name:        name,
		TaxID:       strings.ToUpper(strings.TrimSpace(in.TaxID)),
		Phone:       in.Phone,
		Email:       in.Email,
		CreditLimit: money.Round2(in.CreditLimit),
		Balance:     decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.store.Customers().Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Get cliente con su deuda actual.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.store.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return toCustomerResponse(c), nil
}

// List clientes en orden de alta.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Customers().List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCustomerResponse(c))
	}
	return out, nil
}

// ListPayments abonos del cliente, el más reciente primero.
func (uc *UseCase) ListPayments(ctx context.Context, customerID string) ([]dto.CustomerPaymentResponse, error) {
	list, err := uc.store.Customers().ListPayments(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerPaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// RegisterPayment abona a la deuda del cliente. El monto se convierte a USD y no puede superar la deuda.
// Las ventas a crédito pendientes se saldan de la más antigua a la más reciente.
// Si el método es efectivo y hay caja abierta, el abono entra a la gaveta como depósito.
func (uc *UseCase) RegisterPayment(ctx context.Context, customerID, userID string, in dto.RegisterPaymentRequest) (*dto.CustomerPaymentResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el abono debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.Method == "" {
		return nil, fmt.Errorf("%w: método de pago requerido", domain.ErrInvalidInput)
	}
	applied, err := money.Convert(in.Amount, in.Currency, entity.CurrencyUSD, in.ExchangeRate)
	if err != nil {
		return nil, err
	}
	applied = money.Round2(applied)

	var (
		payment *entity.CustomerPayment
		balance decimal.Decimal
		settled []string
	)
	err = uc.txRunner.Run(ctx, func(repos repository.Store) error {
		c, err := repos.Customers().GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
		}
		if applied.Sub(c.Balance).GreaterThan(money.Tolerance) {
			return fmt.Errorf("%w: el abono %s USD supera la deuda %s USD", domain.ErrInvalidInput, applied, c.Balance)
		}
		balance = decimal.Max(money.Round2(c.Balance.Sub(applied)), decimal.Zero)
		if err := repos.Customers().UpdateBalance(ctx, c.ID, balance); err != nil {
			return err
		}

		payment = &entity.CustomerPayment{
			ID:            uuid.New().String(),
			CustomerID:    c.ID,
			Amount:        money.Round2(in.Amount),
			Currency:      in.Currency,
			ExchangeRate:  in.ExchangeRate,
			AppliedAmount: applied,
			Method:        in.Method,
			CreatedBy:     userID,
			CreatedAt:     uc.now(),
		}
		if uc.cash != nil && uc.cash.IsCashMethod(in.Method) {
			session, err := repos.CashSessions().GetOpenForShare(ctx)
			if err != nil {
				return err
			}
			if session != nil {
				payment.CashSessionID = session.ID
				err := repos.CashSessions().CreateMovement(ctx, &entity.CashMovement{
					ID:          uuid.New().String(),
					SessionID:   session.ID,
					Type:        entity.CashMovementDeposit,
					Amount:      payment.Amount,
					Currency:    payment.Currency,
					Description: "Abono de cliente " + c.Name,
					ReferenceID: payment.ID,
					CreatedBy:   userID,
					CreatedAt:   payment.CreatedAt,
				})
				if err != nil {
					return err
				}
			}
		}
		if err := repos.Customers().CreatePayment(ctx, payment); err != nil {
			return err
		}

		settled, err = settleSales(ctx, repos, c.ID, balance)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("customer_id", customerID).
		Str("applied_usd", applied.String()).
		Str("balance_usd", balance.String()).
		Int("sales_settled", len(settled)).
		Msg("abono registrado")

	resp := toPaymentResponse(payment)
	resp.BalanceAfter = balance
	resp.SalesSettled = settled
	return &resp, nil
}

// settleSales marca pagadas las ventas que la deuda restante ya no cubre.
// La deuda que queda se atribuye a las ventas más recientes; las más antiguas se saldan primero.
func settleSales(ctx context.Context, repos repository.Store, customerID string, balance decimal.Decimal) ([]string, error) {
	sales, err := repos.Sales().ListUnpaidCredit(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var settled []string
	pending := decimal.Zero
	for i := len(sales) - 1; i >= 0; i-- {
		s := sales[i]
		if pending.GreaterThanOrEqual(balance.Sub(money.Tolerance)) {
			if err := repos.Sales().MarkPaid(ctx, s.ID); err != nil {
				return nil, err
			}
			settled = append(settled, s.ID)
			continue
		}
		owed, err := owedUSD(ctx, repos, s)
		if err != nil {
			return nil, err
		}
		pending = pending.Add(owed)
	}
	return settled, nil
}

// owedUSD lo que la venta dejó a deber (total menos abono inicial), en USD.
func owedUSD(ctx context.Context, repos repository.Store, s *entity.Sale) (decimal.Decimal, error) {
	payments, err := repos.Sales().GetPayments(ctx, s.ID)
	if err != nil {
		return decimal.Zero, err
	}
	paid := decimal.Zero
	for _, p := range payments {
		v, err := money.Convert(p.Amount, p.Currency, s.Currency, s.ExchangeRate)
		if err != nil {
			return decimal.Zero, err
		}
		paid = paid.Add(v)
	}
	owed, err := money.Convert(decimal.Max(s.TotalAmount.Sub(paid), decimal.Zero), s.Currency, entity.CurrencyUSD, s.ExchangeRate)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round2(owed), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		TaxID:       c.TaxID,
		Email:       c.Email,
		Phone:       c.Phone,
		CreditLimit: c.CreditLimit,
		Balance:     c.Balance,
		CreatedAt:   c.CreatedAt,
	}
}

func toPaymentResponse(p *entity.CustomerPayment) dto.CustomerPaymentResponse {
	return dto.CustomerPaymentResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		ExchangeRate:  p.ExchangeRate,
		AppliedAmount: p.AppliedAmount,
		Method:        p.Method,
		CashSessionID: p.CashSessionID,
		CreatedAt:     p.CreatedAt,
	}
}
