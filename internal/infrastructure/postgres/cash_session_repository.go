package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

const cashSessionColumns = `id, opened_by, COALESCE(closed_by, ''), start_time, end_time,
	initial_cash_usd, initial_cash_bs, status, final_reported_usd, final_reported_bs,
	final_expected_usd, final_expected_bs, difference_usd, difference_bs, notes`

// CashSessionRepo sesiones de caja y sus movimientos sobre PostgreSQL.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

// Create abre una sesión. El índice único cash_sessions_one_open impide una segunda sesión OPEN.
func (r *CashSessionRepo) Create(ctx context.Context, cs *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (id, opened_by, start_time, initial_cash_usd, initial_cash_bs, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		cs.ID, cs.OpenedBy, cs.StartTime, cs.InitialCashUSD, cs.InitialCashBs, cs.Status, cs.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) != "cash_sessions_pkey" {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

// GetOpen sesión abierta, nil si no hay ninguna.
func (r *CashSessionRepo) GetOpen(ctx context.Context) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE status = 'OPEN'`)
}

// GetOpenForUpdate sesión abierta con la fila bloqueada hasta el fin de la transacción.
func (r *CashSessionRepo) GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE status = 'OPEN' FOR UPDATE`)
}

// GetOpenForShare sesión abierta con bloqueo compartido. Si un cierre la tomó antes,
// espera a que termine y, como la fila ya no cumple status = 'OPEN', devuelve nil.
func (r *CashSessionRepo) GetOpenForShare(ctx context.Context) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE status = 'OPEN' FOR SHARE`)
}

// Close persiste el resultado del arqueo.
func (r *CashSessionRepo) Close(ctx context.Context, cs *entity.CashSession) error {
	query := `
		UPDATE cash_sessions SET closed_by = $2, end_time = $3, status = $4,
			final_reported_usd = $5, final_reported_bs = $6, final_expected_usd = $7, final_expected_bs = $8,
			difference_usd = $9, difference_bs = $10, notes = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		cs.ID, nullable(cs.ClosedBy), cs.EndTime, cs.Status,
		cs.FinalReportedUSD, cs.FinalReportedBs, cs.FinalExpectedUSD, cs.FinalExpectedBs,
		cs.DifferenceUSD, cs.DifferenceBs, cs.Notes,
	)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List sesiones de la más reciente a la más antigua.
func (r *CashSessionRepo) List(ctx context.Context, limit, offset int) ([]*entity.CashSession, error) {
	rows, err := r.q.Query(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions
		ORDER BY start_time DESC, id LIMIT $1 OFFSET $2`, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashSession
	for rows.Next() {
		cs, err := scanCashSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		list = append(list, cs)
	}
	return list, rows.Err()
}

// CreateMovement registra un movimiento manual de caja.
func (r *CashSessionRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, session_id, type, amount, currency, description, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.SessionID, m.Type, m.Amount, m.Currency, m.Description,
		nullable(m.ReferenceID), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListMovements movimientos de la sesión en orden de registro.
func (r *CashSessionRepo) ListMovements(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, session_id, type, amount, currency, description, COALESCE(reference_id, ''),
			COALESCE(created_by, ''), created_at
		FROM cash_movements WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(
			&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Currency, &m.Description,
			&m.ReferenceID, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// MovementTotals suma los movimientos de la sesión por tipo y moneda.
func (r *CashSessionRepo) MovementTotals(ctx context.Context, sessionID string) ([]entity.MovementTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT type, currency, SUM(amount) FROM cash_movements
		WHERE session_id = $1
		GROUP BY type, currency
		ORDER BY type, currency`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("movement totals: %w", err)
	}
	defer rows.Close()
	var totals []entity.MovementTotal
	for rows.Next() {
		var t entity.MovementTotal
		if err := rows.Scan(&t.Type, &t.Currency, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan movement total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *CashSessionRepo) getOne(ctx context.Context, query string, args ...any) (*entity.CashSession, error) {
	cs, err := scanCashSession(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return cs, nil
}

func scanCashSession(row pgx.Row) (*entity.CashSession, error) {
	var cs entity.CashSession
	err := row.Scan(
		&cs.ID, &cs.OpenedBy, &cs.ClosedBy, &cs.StartTime, &cs.EndTime,
		&cs.InitialCashUSD, &cs.InitialCashBs, &cs.Status, &cs.FinalReportedUSD, &cs.FinalReportedBs,
		&cs.FinalExpectedUSD, &cs.FinalExpectedBs, &cs.DifferenceUSD, &cs.DifferenceBs, &cs.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}
