package discount

import (
	"context"
	"time"

	"shopkart/internal/model"
	"shopkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// evaluator implements Evaluator on top of the discount repository.
type evaluator struct {
	repo   repository.DiscountRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewEvaluator creates a new discount evaluator.
func NewEvaluator(repo repository.DiscountRepository, logger zerolog.Logger) Evaluator {
	return &evaluator{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "discount-evaluator").Logger(),
	}
}

// NewEvaluatorWithClock creates an evaluator with an injected clock so the
// validity-window boundaries can be tested deterministically.
func NewEvaluatorWithClock(repo repository.DiscountRepository, now func() time.Time, logger zerolog.Logger) Evaluator {
	return &evaluator{
		repo:   repo,
		now:    now,
		logger: logger.With().Str("component", "discount-evaluator").Logger(),
	}
}

// Evaluate validates a discount code and computes the quote for the items.
func (e *evaluator) Evaluate(ctx context.Context, code string, shopID, userID uuid.UUID, items []model.LineItem) (*model.DiscountQuote, error) {
	found, err := e.repo.FindByCode(ctx, code, shopID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		e.logger.Debug().Str("code", code).Msg("discount code unknown")
		return nil, model.ErrDiscountNotFound
	}

	totalOrder := orderTotal(items)

	if err := e.checkEligibility(ctx, found, userID, totalOrder); err != nil {
		e.logger.Debug().
			Str("code", code).
			Str("total_order", totalOrder.String()).
			Err(err).
			Msg("discount not applicable")
		return nil, err
	}

	amount := computeAmount(found, totalOrder)

	e.logger.Debug().
		Str("code", code).
		Str("total_order", totalOrder.String()).
		Str("discount", amount.String()).
		Msg("discount evaluated")

	return &model.DiscountQuote{
		TotalOrder: totalOrder,
		Discount:   amount,
		TotalPrice: totalOrder.Sub(amount),
	}, nil
}

// checkEligibility runs the applicability validations in their fixed order.
// Each failure maps to its own domain error.
func (e *evaluator) checkEligibility(ctx context.Context, d *model.Discount, userID uuid.UUID, totalOrder decimal.Decimal) error {
	if !d.IsActive {
		return model.ErrDiscountInactive
	}

	// Window bounds are inclusive: now == start and now == end both pass.
	now := e.now()
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return model.ErrDiscountOutOfWindow
	}

	if d.MaxUses <= 0 {
		return model.ErrDiscountExhausted
	}

	if d.MinOrderValue.IsPositive() && totalOrder.LessThan(d.MinOrderValue) {
		return model.ErrDiscountBelowMin
	}

	if d.MaxUsesPerUser > 0 {
		used, err := e.repo.UserUsageCount(ctx, d.ID, userID)
		if err != nil {
			return err
		}
		if used >= d.MaxUsesPerUser {
			return model.ErrDiscountUserLimit
		}
	}

	return nil
}

// computeAmount calculates the discount for an eligible rule. Percentage
// discounts take value as percentage points of the order total; the optional
// max value caps the raw amount. The result is clamped to the order total so
// the final price can never go negative.
func computeAmount(d *model.Discount, totalOrder decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	if d.Type == model.DiscountFixedAmount {
		amount = d.Value
	} else {
		amount = totalOrder.Mul(d.Value).Div(oneHundred)
	}

	if d.MaxValue != nil && amount.GreaterThan(*d.MaxValue) {
		amount = *d.MaxValue
	}

	if amount.GreaterThan(totalOrder) {
		amount = totalOrder
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return amount
}

// orderTotal sums price times quantity across the line items.
func orderTotal(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
