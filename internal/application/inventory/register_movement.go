package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// RegisterMovementUseCase registra compras y ajustes manuales de inventario, cada uno en su transacción.
type RegisterMovementUseCase struct {
	txRunner ports.TxRunner
	ledger   *Ledger
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner ports.TxRunner, ledger *Ledger, metrics ports.Metrics, log *logger.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, ledger: ledger, metrics: metrics, log: log.Named("inventory")}
}

// RegisterMovement valida el tipo y aplica el movimiento:
// PURCHASE y ADJUSTMENT_IN suman (PURCHASE exige unit_cost >= 0), ADJUSTMENT_OUT resta sin dejar stock negativo.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.KardexEntryResponse, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, in.Quantity)
	}
	switch in.Type {
	case entity.MovementPurchase:
		if in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: la compra requiere unit_cost", domain.ErrInvalidInput)
		}
	case entity.MovementAdjustmentIn, entity.MovementAdjustmentOut:
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}

	m := Movement{
		ProductID:   in.ProductID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Description: in.Description,
		ReferenceID: in.ReferenceID,
		UserID:      userID,
	}
	if m.Description == "" {
		m.Description = defaultDescription(in.Type)
	}

	var entry *entity.KardexEntry
	err := uc.txRunner.Run(ctx, func(repos repository.Store) error {
		var err error
		if entity.IsOutbound(m.Type) {
			entry, err = uc.ledger.Deduct(ctx, repos, m)
		} else {
			entry, err = uc.ledger.Restore(ctx, repos, m)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockMovement(in.Type)
	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("type", in.Type).
		Str("quantity", in.Quantity.String()).
		Str("balance", entry.BalanceAfter.String()).
		Msg("movimiento de inventario registrado")
	resp := toKardexEntryResponse(entry)
	return &resp, nil
}

func defaultDescription(movementType string) string {
	switch movementType {
	case entity.MovementPurchase:
		return "Compra de mercancía"
	case entity.MovementAdjustmentIn:
		return "Ajuste de inventario (entrada)"
	case entity.MovementAdjustmentOut:
		return "Ajuste de inventario (salida)"
	}
	return movementType
}
