package service

import (
	"context"
	"fmt"
	"time"

	"shopkart/internal/discount"
	"shopkart/internal/idempotency"
	"shopkart/internal/lock"
	"shopkart/internal/model"
	"shopkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService. It is the only component that
// composes the evaluator, the lock manager, and the repositories; every
// failure after the first lock acquisition runs the compensation path so no
// partial order is ever observable.
type checkoutService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	invRepo     repository.InventoryRepository
	discRepo    repository.DiscountRepository
	evaluator   discount.Evaluator
	locks       lock.Manager
	idem        *idempotency.Store
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service. The idempotency store is
// optional; without it every PlaceOrder call is treated as new.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	invRepo repository.InventoryRepository,
	discRepo repository.DiscountRepository,
	evaluator discount.Evaluator,
	locks lock.Manager,
	idem *idempotency.Store,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		invRepo:     invRepo,
		discRepo:    discRepo,
		evaluator:   evaluator,
		locks:       locks,
		idem:        idem,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Review prices a multi-shop checkout without committing anything. Each group
// is re-priced from the catalogue; a group that carries discount codes has
// its first code evaluated and the amount applied.
func (s *checkoutService) Review(ctx context.Context, req *model.CheckoutReviewRequest) (*model.CheckoutReview, error) {
	if err := s.validateCheckoutRequest(req.CartID, req.Groups); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindActiveByID(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		s.logger.Warn().Str("cart_id", req.CartID.String()).Msg("cart not found for checkout")
		return nil, model.ErrCartNotFound
	}

	totals := model.CheckoutTotals{
		TotalPrice:    decimal.Zero,
		FeeShip:       decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalCheckout: decimal.Zero,
	}

	pricedGroups := make([]model.PricedGroup, 0, len(req.Groups))

	for _, group := range req.Groups {
		checked, err := s.productRepo.CheckProductsAvailable(ctx, group.Items)
		if err != nil {
			return nil, err
		}
		if len(checked) == 0 {
			s.logger.Warn().
				Str("shop_id", group.ShopID.String()).
				Msg("no sellable products in checkout group")
			return nil, model.ErrNoSellableProducts
		}

		rawPrice := decimal.Zero
		for _, item := range checked {
			rawPrice = rawPrice.Add(item.Subtotal())
		}

		priced := model.PricedGroup{
			ShopID:             group.ShopID,
			DiscountCodes:      group.DiscountCodes,
			RawPrice:           rawPrice,
			DiscountAmount:     decimal.Zero,
			PriceAfterDiscount: rawPrice,
			Items:              checked,
		}

		// Only the first code of a group is consulted for the amount.
		if len(group.DiscountCodes) > 0 {
			quote, err := s.evaluator.Evaluate(ctx, group.DiscountCodes[0], group.ShopID, req.UserID, checked)
			if err != nil {
				return nil, err
			}
			if quote.Discount.IsPositive() {
				priced.DiscountAmount = quote.Discount
				priced.PriceAfterDiscount = rawPrice.Sub(quote.Discount)
			}
		}

		totals.TotalPrice = totals.TotalPrice.Add(rawPrice)
		totals.TotalDiscount = totals.TotalDiscount.Add(priced.DiscountAmount)
		totals.TotalCheckout = totals.TotalCheckout.Add(priced.PriceAfterDiscount)

		pricedGroups = append(pricedGroups, priced)
	}

	return &model.CheckoutReview{
		Groups: pricedGroups,
		Totals: totals,
	}, nil
}

// PlaceOrder turns a reviewed checkout into a committed order, or into a
// fully rolled-back no-op.
func (s *checkoutService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, idempotencyKey string) (*model.Order, error) {
	if s.idem != nil && idempotencyKey != "" {
		replay, err := s.idem.Get(idempotencyKey)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			s.logger.Info().
				Str("idempotency_key", idempotencyKey).
				Str("order_id", replay.ID.String()).
				Msg("order placement replayed")
			return replay, nil
		}
	}

	review, err := s.Review(ctx, &model.CheckoutReviewRequest{
		CartID: req.CartID,
		UserID: req.UserID,
		Groups: req.Groups,
	})
	if err != nil {
		return nil, err
	}

	// Flatten in group-then-item order so every request acquires locks in
	// the same deterministic sequence.
	var flattened []model.LineItem
	for _, group := range review.Groups {
		flattened = append(flattened, group.Items...)
	}

	tokens := make([]*lock.Token, 0, len(flattened))
	for _, item := range flattened {
		token, err := s.locks.Acquire(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.rollback(ctx, tokens)
			return nil, err
		}
		if token == nil {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Int("acquired", len(tokens)).
				Msg("lock acquisition failed, aborting checkout")
			s.rollback(ctx, tokens)
			return nil, model.ErrCheckoutConflict
		}
		tokens = append(tokens, token)
	}

	order, err := s.commitOrder(ctx, req, review)
	if err != nil {
		s.rollback(ctx, tokens)
		return nil, err
	}

	// The reservations now belong to the order; only the locks are let go.
	s.releaseLocks(ctx, tokens)

	if s.idem != nil && idempotencyKey != "" {
		stored, err := s.idem.Put(idempotencyKey, order)
		if err != nil {
			s.logger.Error().Err(err).
				Str("idempotency_key", idempotencyKey).
				Msg("failed to record idempotency key")
		} else {
			order = stored
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", req.UserID.String()).
		Int("group_count", len(order.Groups)).
		Str("total_checkout", order.TotalCheckout.String()).
		Msg("order placed")

	return order, nil
}

// commitOrder persists the order and redeems the applied discounts in one
// transaction, so a failed insert also rolls the redemptions back.
func (s *checkoutService) commitOrder(ctx context.Context, req *model.PlaceOrderRequest, review *model.CheckoutReview) (*model.Order, error) {
	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        req.UserID,
		CartID:        req.CartID,
		TotalPrice:    review.Totals.TotalPrice,
		TotalDiscount: review.Totals.TotalDiscount,
		FeeShip:       review.Totals.FeeShip,
		TotalCheckout: review.Totals.TotalCheckout,
		Shipping:      req.Shipping,
		Payment:       req.Payment,
		Status:        model.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, priced := range review.Groups {
		group := model.OrderGroup{
			ID:                 uuid.New(),
			OrderID:            order.ID,
			ShopID:             priced.ShopID,
			RawPrice:           priced.RawPrice,
			DiscountAmount:     priced.DiscountAmount,
			PriceAfterDiscount: priced.PriceAfterDiscount,
		}
		if len(priced.DiscountCodes) > 0 {
			code := priced.DiscountCodes[0]
			group.DiscountCode = &code
		}
		for _, item := range priced.Items {
			group.Items = append(group.Items, model.OrderItem{
				ID:        uuid.New(),
				GroupID:   group.ID,
				ProductID: item.ProductID,
				Price:     item.Price,
				Quantity:  item.Quantity,
			})
		}
		order.Groups = append(order.Groups, group)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
			}
		}
	}()

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	for _, group := range order.Groups {
		if group.DiscountCode == nil || !group.DiscountAmount.IsPositive() {
			continue
		}
		if err := s.discRepo.Redeem(ctx, tx, *group.DiscountCode, group.ShopID, req.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	committed = true

	return order, nil
}

// rollback compensates a partially completed placement: every acquired lock
// carries a stock reservation that must be returned before the lock is
// released.
func (s *checkoutService) rollback(ctx context.Context, tokens []*lock.Token) {
	for _, token := range tokens {
		if err := s.invRepo.ReleaseReservation(ctx, token.ProductID, token.Quantity); err != nil {
			s.logger.Error().Err(err).
				Str("product_id", token.ProductID.String()).
				Msg("failed to release reservation during rollback")
		}
	}
	s.releaseLocks(ctx, tokens)
}

// releaseLocks releases all tokens; release is commutative, so order does
// not matter.
func (s *checkoutService) releaseLocks(ctx context.Context, tokens []*lock.Token) {
	for _, token := range tokens {
		if err := s.locks.Release(ctx, token); err != nil {
			s.logger.Error().Err(err).
				Str("key", token.Key).
				Msg("failed to release lock")
		}
	}
}

// GetOrderByID retrieves a placed order with its groups and items.
func (s *checkoutService) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// validateCheckoutRequest validates the shared shape of review and placement
// requests.
func (s *checkoutService) validateCheckoutRequest(cartID uuid.UUID, groups []model.OrderGroupRequest) error {
	if cartID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "cart ID is required")
	}
	if len(groups) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "checkout must contain at least one order group")
	}
	for gi, group := range groups {
		if len(group.Items) == 0 {
			return model.NewDomainError(model.ErrCodeMissingField,
				fmt.Sprintf("group %d: at least one line item is required", gi))
		}
		for ii, item := range group.Items {
			if item.ProductID == uuid.Nil {
				return model.NewDomainError(model.ErrCodeMissingField,
					fmt.Sprintf("group %d item %d: product ID is required", gi, ii))
			}
			if item.Quantity <= 0 {
				s.logger.Warn().
					Int("group_index", gi).
					Int("item_index", ii).
					Int("quantity", item.Quantity).
					Msg("invalid quantity in checkout request")
				return model.ErrInvalidQuantity
			}
		}
	}
	return nil
}
