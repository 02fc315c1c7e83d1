package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeCartNotFound        = "CART_NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeDiscountNotFound    = "DISCOUNT_NOT_FOUND"
	ErrCodeDiscountInactive    = "DISCOUNT_INACTIVE"
	ErrCodeDiscountOutOfWindow = "DISCOUNT_OUT_OF_WINDOW"
	ErrCodeDiscountExhausted   = "DISCOUNT_EXHAUSTED"
	ErrCodeDiscountBelowMin    = "DISCOUNT_BELOW_MIN_ORDER"
	ErrCodeDiscountUserLimit   = "DISCOUNT_USER_LIMIT"
	ErrCodeDiscountCodeExists  = "DISCOUNT_CODE_EXISTS"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeNoSellableProducts  = "NO_SELLABLE_PRODUCTS"
	ErrCodeCheckoutConflict    = "CHECKOUT_CONFLICT"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCartNotFound        = NewDomainError(ErrCodeCartNotFound, "Cart not found or inactive")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrDiscountNotFound    = NewDomainError(ErrCodeDiscountNotFound, "Discount code not found")
	ErrDiscountInactive    = NewDomainError(ErrCodeDiscountInactive, "Discount code not found or inactive")
	ErrDiscountOutOfWindow = NewDomainError(ErrCodeDiscountOutOfWindow, "Discount code is not valid in this time range")
	ErrDiscountExhausted   = NewDomainError(ErrCodeDiscountExhausted, "Discount code has reached its maximum uses")
	ErrDiscountBelowMin    = NewDomainError(ErrCodeDiscountBelowMin, "Order total is below the minimum required for this discount")
	ErrDiscountUserLimit   = NewDomainError(ErrCodeDiscountUserLimit, "You have reached the maximum uses for this discount code")
	ErrDiscountCodeExists  = NewDomainError(ErrCodeDiscountCodeExists, "Discount code already exists")
	ErrInvalidDateRange    = NewDomainError(ErrCodeInvalidDateRange, "Start date must be before end date")
	ErrNoSellableProducts  = NewDomainError(ErrCodeNoSellableProducts, "No products available for checkout")
	ErrCheckoutConflict    = NewDomainError(ErrCodeCheckoutConflict, "Some products are out of stock or contended, please try again")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)
