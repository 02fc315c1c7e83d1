package service

import (
	"context"
	"fmt"
	"time"

	"shopkart/internal/discount"
	"shopkart/internal/model"
	"shopkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// discountService implements DiscountService.
type discountService struct {
	repo        repository.DiscountRepository
	productRepo repository.ProductRepository
	evaluator   discount.Evaluator
	logger      zerolog.Logger
}

// NewDiscountService creates a new discount service.
func NewDiscountService(
	repo repository.DiscountRepository,
	productRepo repository.ProductRepository,
	evaluator discount.Evaluator,
	logger zerolog.Logger,
) DiscountService {
	return &discountService{
		repo:        repo,
		productRepo: productRepo,
		evaluator:   evaluator,
		logger:      logger.With().Str("service", "discount").Logger(),
	}
}

// CreateDiscountCode creates a new discount code for a shop.
func (s *discountService) CreateDiscountCode(ctx context.Context, req *model.CreateDiscountRequest) (*model.Discount, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	// An inactive leftover with the same code may be replaced; an active one
	// may not.
	existing, err := s.repo.FindByCode(ctx, req.Code, req.ShopID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		s.logger.Warn().Str("code", req.Code).Msg("active discount code already exists")
		return nil, model.ErrDiscountCodeExists
	}

	now := time.Now()
	d := &model.Discount{
		ID:             uuid.New(),
		ShopID:         req.ShopID,
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		Type:           req.Type,
		Value:          req.Value,
		MaxValue:       req.MaxValue,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		MinOrderValue:  req.MinOrderValue,
		AppliesTo:      req.AppliesTo,
		ProductIDs:     req.ProductIDs,
		IsActive:       req.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("code", d.Code).
		Str("shop_id", d.ShopID.String()).
		Str("type", string(d.Type)).
		Msg("discount code created")

	return d, nil
}

// ListByShop retrieves all active discount codes for a shop.
func (s *discountService) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Discount, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	discounts, err := s.repo.ListByShop(ctx, shopID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", shopID.String()).Msg("failed to list discounts")
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}

	return discounts, nil
}

// ListApplicableProducts retrieves the products a discount code covers. A
// shop-wide discount lists the shop's published catalogue; a scoped discount
// lists only the published products it names.
func (s *discountService) ListApplicableProducts(ctx context.Context, code string, shopID uuid.UUID, limit, offset int) ([]model.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	d, err := s.repo.FindByCode(ctx, code, shopID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, model.ErrDiscountNotFound
	}

	if d.AppliesTo == model.AppliesToSpecificProducts {
		products, err := s.productRepo.GetByIDs(ctx, d.ProductIDs)
		if err != nil {
			s.logger.Error().Err(err).Str("code", code).Msg("failed to list discount products")
			return nil, fmt.Errorf("failed to list discount products: %w", err)
		}
		return products, nil
	}

	products, err := s.productRepo.GetByShop(ctx, shopID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to list discount products")
		return nil, fmt.Errorf("failed to list discount products: %w", err)
	}
	return products, nil
}

// GetDiscountAmount evaluates a discount code against priced line items.
func (s *discountService) GetDiscountAmount(ctx context.Context, req *model.DiscountAmountRequest) (*model.DiscountQuote, error) {
	if req.Code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "discount code is required")
	}
	if len(req.Items) == 0 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "at least one line item is required")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	}

	return s.evaluator.Evaluate(ctx, req.Code, req.ShopID, req.UserID, req.Items)
}

// CancelDiscountCode reverses a user's redemption of a discount code.
func (s *discountService) CancelDiscountCode(ctx context.Context, req *model.CancelDiscountRequest) error {
	found, err := s.repo.FindByCode(ctx, req.Code, req.ShopID)
	if err != nil {
		return err
	}
	if found == nil || !found.IsActive {
		return model.ErrDiscountInactive
	}

	if err := s.repo.CancelRedemption(ctx, req.Code, req.ShopID, req.UserID); err != nil {
		return err
	}

	s.logger.Info().
		Str("code", req.Code).
		Str("user_id", req.UserID.String()).
		Msg("discount redemption cancelled")

	return nil
}

// DeleteDiscountCode removes a discount code entirely.
func (s *discountService) DeleteDiscountCode(ctx context.Context, code string, shopID uuid.UUID) error {
	if err := s.repo.DeleteByCode(ctx, code, shopID); err != nil {
		return err
	}

	s.logger.Info().
		Str("code", code).
		Str("shop_id", shopID.String()).
		Msg("discount code deleted")

	return nil
}

// validateCreateRequest validates a discount creation payload.
func (s *discountService) validateCreateRequest(req *model.CreateDiscountRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeBadRequest, "discount request is nil")
	}
	if req.Code == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "discount code is required")
	}
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "discount name is required")
	}
	if req.Type != model.DiscountFixedAmount && req.Type != model.DiscountPercentage {
		return model.NewDomainError(model.ErrCodeBadRequest, "discount type must be fixed_amount or percentage")
	}
	if !req.Value.IsPositive() {
		return model.NewDomainError(model.ErrCodeBadRequest, "discount value must be positive")
	}
	if !req.StartDate.Before(req.EndDate) {
		return model.ErrInvalidDateRange
	}
	if req.AppliesTo == model.AppliesToSpecificProducts && len(req.ProductIDs) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "product IDs are required for specific_products scope")
	}
	return nil
}
