package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// CashSessionRepository persistencia de sesiones y movimientos de caja.
type CashSessionRepository interface {
	// Create inserta la sesión; retorna domain.ErrSessionAlreadyOpen si ya hay una abierta.
	Create(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetOpen(ctx context.Context) (*entity.CashSession, error)
	// GetOpenForUpdate bloquea la sesión abierta (cierre y arqueo concurrentes).
	GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error)
	// GetOpenForShare bloquea la sesión abierta en modo compartido: quien registra ventas,
	// devoluciones o movimientos la usa para que el cierre espere a que termine.
	GetOpenForShare(ctx context.Context) (*entity.CashSession, error)
	// Close persiste los totales del arqueo, EndTime y Status.
	Close(ctx context.Context, session *entity.CashSession) error
	List(ctx context.Context, limit, offset int) ([]*entity.CashSession, error)

	CreateMovement(ctx context.Context, mov *entity.CashMovement) error
	ListMovements(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
	MovementTotals(ctx context.Context, sessionID string) ([]entity.MovementTotal, error)
}
