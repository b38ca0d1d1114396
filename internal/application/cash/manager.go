// Package cash sesión de caja: apertura, movimientos manuales, arqueo y cierre en USD y bolívares.
package cash

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

// Manager casos de uso de la gaveta. Solo puede haber una sesión abierta.
// El efectivo esperado sale de los pagos de las ventas de la sesión (métodos configurados como efectivo)
// más los movimientos manuales; las ventas no generan CashMovement.
type Manager struct {
	txRunner    ports.TxRunner
	store       repository.Store
	cashMethods map[string]bool
	metrics     ports.Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewManager construye el manager. cashMethods son los métodos de pago que entran a la gaveta (ej. CASH).
func NewManager(txRunner ports.TxRunner, store repository.Store, cashMethods []string, metrics ports.Metrics, log *logger.Logger) *Manager {
	methods := make(map[string]bool, len(cashMethods))
	for _, m := range cashMethods {
		methods[strings.ToUpper(strings.TrimSpace(m))] = true
	}
	if len(methods) == 0 {
		methods[entity.PaymentCash] = true
	}
	return &Manager{
		txRunner:    txRunner,
		store:       store,
		cashMethods: methods,
		metrics:     metrics,
		log:         log.Named("cash"),
		now:         time.Now,
	}
}

// IsCashMethod indica si el método de pago cuenta como efectivo en la gaveta.
func (m *Manager) IsCashMethod(method string) bool {
	return m.cashMethods[strings.ToUpper(method)]
}

// Open abre la sesión con el fondo inicial. ErrSessionAlreadyOpen si ya hay una abierta.
func (m *Manager) Open(ctx context.Context, userID string, in dto.OpenCashSessionRequest) (*dto.CashSessionResponse, error) {
	if in.InitialCashUSD.IsNegative() || in.InitialCashBs.IsNegative() {
		return nil, fmt.Errorf("%w: el fondo inicial no puede ser negativo", domain.ErrInvalidInput)
	}
	session := &entity.CashSession{
		ID:             uuid.New().String(),
		OpenedBy:       userID,
		StartTime:      m.now(),
		InitialCashUSD: money.Round2(in.InitialCashUSD),
		InitialCashBs:  money.Round2(in.InitialCashBs),
		Status:         entity.CashSessionOpen,
	}
	err := m.txRunner.Run(ctx, func(repos repository.Store) error {
		open, err := repos.CashSessions().GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrSessionAlreadyOpen
		}
		return repos.CashSessions().Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	m.log.Info().
		Str("session_id", session.ID).
		Str("user_id", userID).
		Str("initial_usd", session.InitialCashUSD.String()).
		Str("initial_bs", session.InitialCashBs.String()).
		Msg("caja abierta")
	return toSessionResponse(session), nil
}

// Current devuelve la sesión abierta o ErrNoOpenSession.
func (m *Manager) Current(ctx context.Context) (*dto.CashSessionResponse, error) {
	session, err := m.store.CashSessions().GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoOpenSession
	}
	return toSessionResponse(session), nil
}

// Get devuelve una sesión (abierta o cerrada) por ID.
func (m *Manager) Get(ctx context.Context, id string) (*dto.CashSessionResponse, error) {
	session, err := m.store.CashSessions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return toSessionResponse(session), nil
}

// List historial de sesiones, más reciente primero.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]dto.CashSessionResponse, error) {
	sessions, err := m.store.CashSessions().List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, *toSessionResponse(s))
	}
	return out, nil
}

// RecordMovement registra un depósito, gasto o retiro en la sesión abierta.
func (m *Manager) RecordMovement(ctx context.Context, userID string, in dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	switch in.Type {
	case entity.CashMovementDeposit, entity.CashMovementExpense, entity.CashMovementWithdrawal:
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if !entity.IsSupportedCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: moneda %q", domain.ErrInvalidInput, in.Currency)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor a cero", domain.ErrInvalidInput)
	}

	var mov *entity.CashMovement
	err := m.txRunner.Run(ctx, func(repos repository.Store) error {
		session, err := repos.CashSessions().GetOpenForShare(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNoOpenSession
		}
		mov = &entity.CashMovement{
			ID:          uuid.New().String(),
			SessionID:   session.ID,
			Type:        in.Type,
			Amount:      money.Round2(in.Amount),
			Currency:    in.Currency,
			Description: in.Description,
			CreatedBy:   userID,
			CreatedAt:   m.now(),
		}
		return repos.CashSessions().CreateMovement(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	m.log.Info().
		Str("session_id", mov.SessionID).
		Str("type", mov.Type).
		Str("amount", mov.Amount.String()).
		Str("currency", mov.Currency).
		Msg("movimiento de caja registrado")
	return toMovementResponse(mov), nil
}

// ListMovements movimientos manuales de una sesión.
func (m *Manager) ListMovements(ctx context.Context, sessionID string) ([]dto.CashMovementResponse, error) {
	movs, err := m.store.CashSessions().ListMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashMovementResponse, 0, len(movs))
	for _, mov := range movs {
		out = append(out, *toMovementResponse(mov))
	}
	return out, nil
}

// Balance arqueo de la sesión abierta sin cerrarla.
func (m *Manager) Balance(ctx context.Context) (*dto.CashBalanceResponse, error) {
	session, err := m.store.CashSessions().GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoOpenSession
	}
	return m.balanceOf(ctx, m.store, session)
}

// Close cierra la sesión: calcula lo esperado, guarda lo contado y la diferencia (contado - esperado).
// La sesión se toma FOR UPDATE: ventas, devoluciones y movimientos la leen FOR SHARE, así que el
// cierre espera a los que ya la tomaron y los que llegan después ya no la ven abierta.
func (m *Manager) Close(ctx context.Context, userID string, in dto.CloseCashSessionRequest) (*dto.ClosingReportResponse, error) {
	if in.ReportedUSD.IsNegative() || in.ReportedBs.IsNegative() {
		return nil, fmt.Errorf("%w: el monto contado no puede ser negativo", domain.ErrInvalidInput)
	}
	var (
		session *entity.CashSession
		balance *dto.CashBalanceResponse
	)
	err := m.txRunner.Run(ctx, func(repos repository.Store) error {
		var err error
		session, err = repos.CashSessions().GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNoOpenSession
		}
		balance, err = m.balanceOf(ctx, repos, session)
		if err != nil {
			return err
		}
		end := m.now()
		session.EndTime = &end
		session.ClosedBy = userID
		session.Status = entity.CashSessionClosed
		session.FinalReportedUSD = money.Round2(in.ReportedUSD)
		session.FinalReportedBs = money.Round2(in.ReportedBs)
		session.FinalExpectedUSD = balance.Expected.USD
		session.FinalExpectedBs = balance.Expected.Bs
		session.DifferenceUSD = session.FinalReportedUSD.Sub(session.FinalExpectedUSD)
		session.DifferenceBs = session.FinalReportedBs.Sub(session.FinalExpectedBs)
		session.Notes = in.Notes
		return repos.CashSessions().Close(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	m.metrics.CashSessionClosed(session.DifferenceUSD, session.DifferenceBs)
	ev := m.log.Info()
	if !session.DifferenceUSD.IsZero() || !session.DifferenceBs.IsZero() {
		ev = m.log.Warn()
	}
	ev.Str("session_id", session.ID).
		Str("difference_usd", session.DifferenceUSD.String()).
		Str("difference_bs", session.DifferenceBs.String()).
		Msg("caja cerrada")

	return &dto.ClosingReportResponse{
		Session:    *toSessionResponse(session),
		Balance:    *balance,
		Reported:   dto.CurrencyAmounts{USD: session.FinalReportedUSD, Bs: session.FinalReportedBs},
		Difference: dto.CurrencyAmounts{USD: session.DifferenceUSD, Bs: session.DifferenceBs},
	}, nil
}

func (m *Manager) balanceOf(ctx context.Context, repos repository.Store, session *entity.CashSession) (*dto.CashBalanceResponse, error) {
	payments, err := repos.Sales().PaymentTotalsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	movements, err := repos.CashSessions().MovementTotals(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	b := &dto.CashBalanceResponse{
		SessionID:     session.ID,
		InitialCash:   dto.CurrencyAmounts{USD: session.InitialCashUSD, Bs: session.InitialCashBs},
		SalesByMethod: make([]dto.PaymentTotalResponse, 0, len(payments)),
	}
	for _, p := range payments {
		isCash := m.IsCashMethod(p.Method)
		b.SalesByMethod = append(b.SalesByMethod, dto.PaymentTotalResponse{
			Method:   p.Method,
			Currency: p.Currency,
			Amount:   p.Amount,
			IsCash:   isCash,
		})
		if isCash {
			add(&b.CashSales, p.Currency, p.Amount)
		}
	}
	for _, mv := range movements {
		switch mv.Type {
		case entity.CashMovementDeposit:
			add(&b.Deposits, mv.Currency, mv.Amount)
		case entity.CashMovementExpense:
			add(&b.Expenses, mv.Currency, mv.Amount)
		case entity.CashMovementWithdrawal:
			add(&b.Withdrawals, mv.Currency, mv.Amount)
		}
	}
	b.Expected = dto.CurrencyAmounts{
		USD: money.Round2(b.InitialCash.USD.Add(b.CashSales.USD).Add(b.Deposits.USD).Sub(b.Expenses.USD).Sub(b.Withdrawals.USD)),
		Bs:  money.Round2(b.InitialCash.Bs.Add(b.CashSales.Bs).Add(b.Deposits.Bs).Sub(b.Expenses.Bs).Sub(b.Withdrawals.Bs)),
	}
	return b, nil
}

func add(a *dto.CurrencyAmounts, currency string, amount decimal.Decimal) {
	if currency == entity.CurrencyVES {
		a.Bs = a.Bs.Add(amount)
		return
	}
	a.USD = a.USD.Add(amount)
}

func toSessionResponse(s *entity.CashSession) *dto.CashSessionResponse {
	return &dto.CashSessionResponse{
		ID:          s.ID,
		OpenedBy:    s.OpenedBy,
		ClosedBy:    s.ClosedBy,
		Status:      s.Status,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		InitialCash: dto.CurrencyAmounts{USD: s.InitialCashUSD, Bs: s.InitialCashBs},
		Reported:    dto.CurrencyAmounts{USD: s.FinalReportedUSD, Bs: s.FinalReportedBs},
		Expected:    dto.CurrencyAmounts{USD: s.FinalExpectedUSD, Bs: s.FinalExpectedBs},
		Difference:  dto.CurrencyAmounts{USD: s.DifferenceUSD, Bs: s.DifferenceBs},
		Notes:       s.Notes,
	}
}

func toMovementResponse(mv *entity.CashMovement) *dto.CashMovementResponse {
	return &dto.CashMovementResponse{
		ID:          mv.ID,
		SessionID:   mv.SessionID,
		Type:        mv.Type,
		Amount:      mv.Amount,
		Currency:    mv.Currency,
		Description: mv.Description,
		ReferenceID: mv.ReferenceID,
		CreatedAt:   mv.CreatedAt,
	}
}
