// Package settlement records payments between two users and marks the
// shares they clear.
package settlement

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
)

// Store is the subset of the ledger store the processor uses.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	RecordSettlement(ctx context.Context, settlement *models.Settlement) (*models.SettlementResult, error)
	ListSettlements(ctx context.Context, groupID *int64, userID int64) ([]*models.Settlement, error)
}

// Processor records settlements.
type Processor struct {
	store   Store
	guard   *access.Guard
	metrics *metrics.Metrics
}

// NewProcessor creates a processor. m may be nil.
func NewProcessor(store Store, guard *access.Guard, m *metrics.Metrics) *Processor {
	return &Processor{store: store, guard: guard, metrics: m}
}

// SettleInput is a payment from FromUserID to ToUserID.
type SettleInput struct {
	GroupID    *int64
	FromUserID int64
	ToUserID   int64
	Amount     *decimal.Decimal
}

// Settle records the payment and marks every unsettled share FromUserID
// holds on expenses ToUserID paid (in the same group, or direct when
// GroupID is nil) as settled. The amount is kept for the record only;
// all matching shares flip regardless of it. For a group settlement both
// users must be members; that check runs in the same transaction as the
// write.
func (p *Processor) Settle(ctx context.Context, in SettleInput) (*models.SettlementResult, error) {
	if in.Amount == nil || !money.Round(*in.Amount).IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if !money.InRange(*in.Amount) {
		return nil, apperr.Validationf("amount must not exceed %s", money.Format(money.MaxAmount))
	}
	if in.ToUserID == 0 {
		return nil, apperr.Validation("recipient is required")
	}
	if in.FromUserID == in.ToUserID {
		return nil, apperr.Validation("cannot settle with yourself")
	}
	if _, err := p.store.GetUserByID(ctx, in.ToUserID); err != nil {
		return nil, apperr.Storage("get recipient", err)
	}

	result, err := p.store.RecordSettlement(ctx, &models.Settlement{
		GroupID:    in.GroupID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Amount:     money.Round(*in.Amount),
	})
	if err != nil {
		return nil, apperr.Storage("record settlement", err)
	}

	p.metrics.SettlementRecorded(in.GroupID == nil, len(result.SettledShareIDs))
	slog.Info("Settlement recorded",
		"settlement_id", result.Settlement.ID,
		groupAttr(in.GroupID),
		"from_user_id", in.FromUserID,
		"to_user_id", in.ToUserID,
		"amount", money.Format(result.Settlement.Amount),
		"settled_shares", len(result.SettledShareIDs),
		"settled_total", money.Format(result.SettledTotal),
	)
	return result, nil
}

// List returns the settlements of a group (caller must be a member), or the
// caller's direct settlements when groupID is nil.
func (p *Processor) List(ctx context.Context, groupID *int64, callerID int64) ([]*models.Settlement, error) {
	if groupID != nil {
		if err := p.guard.RequireGroupMember(ctx, *groupID, callerID); err != nil {
			return nil, err
		}
	}
	settlements, err := p.store.ListSettlements(ctx, groupID, callerID)
	if err != nil {
		return nil, apperr.Storage("list settlements", err)
	}
	return settlements, nil
}

func groupAttr(groupID *int64) slog.Attr {
	if groupID == nil {
		return slog.String("scope", "direct")
	}
	return slog.Int64("group_id", *groupID)
}
