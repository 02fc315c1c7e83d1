package discount

import (
	"context"

	"shopkart/internal/model"

	"github.com/google/uuid"
)

// Evaluator decides whether a discount code applies to a priced set of line
// items and computes the discount amount. Evaluation has no side effects:
// redemption is committed separately by the checkout flow.
type Evaluator interface {
	// Evaluate validates the discount identified by (code, shop) against the
	// user and line items and returns the resulting quote. Failure modes, in
	// order: code unknown, rule inactive, outside the validity window, global
	// uses exhausted, order below minimum, per-user cap reached.
	Evaluate(ctx context.Context, code string, shopID, userID uuid.UUID, items []model.LineItem) (*model.DiscountQuote, error)
}
