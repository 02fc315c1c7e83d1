package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"shopkart/internal/model"
	"shopkart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DiscountHandler handles discount-related HTTP requests.
type DiscountHandler struct {
	service service.DiscountService
	logger  zerolog.Logger
}

// NewDiscountHandler creates a new discount handler.
func NewDiscountHandler(service service.DiscountService, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		logger:  logger.With().Str("handler", "discount").Logger(),
	}
}

// Collection handles /api/discounts: POST creates a code, GET lists a shop's
// codes.
func (h *DiscountHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *DiscountHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	created, err := h.service.CreateDiscountCode(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *DiscountHandler) list(w http.ResponseWriter, r *http.Request) {
	shopID, err := uuid.Parse(r.URL.Query().Get("shopId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid shopId parameter is required", h.logger)
		return
	}

	limit, offset, ok := parsePagination(w, r, h.logger)
	if !ok {
		return
	}

	discounts, err := h.service.ListByShop(r.Context(), shopID, limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, discounts)
}

// Amount handles POST /api/discounts/amount requests: it prices a code
// against a set of line items without redeeming it.
func (h *DiscountHandler) Amount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.DiscountAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	quote, err := h.service.GetDiscountAmount(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Cancel handles POST /api/discounts/cancel requests.
func (h *DiscountHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CancelDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "discount code is required", h.logger)
		return
	}

	if err := h.service.CancelDiscountCode(r.Context(), &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Products handles GET /api/discounts/{code}/products?shopId= requests: it
// lists the products a discount code covers.
func (h *DiscountHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/api/discounts/")
	code = strings.TrimSuffix(code, "/products")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "discount code is required", h.logger)
		return
	}

	shopID, err := uuid.Parse(r.URL.Query().Get("shopId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid shopId parameter is required", h.logger)
		return
	}

	limit, offset, ok := parsePagination(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.service.ListApplicableProducts(r.Context(), code, shopID, limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Delete handles DELETE /api/discounts/{code}?shopId= requests.
func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/api/discounts/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "discount code is required", h.logger)
		return
	}

	shopID, err := uuid.Parse(r.URL.Query().Get("shopId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid shopId parameter is required", h.logger)
		return
	}

	if err := h.service.DeleteDiscountCode(r.Context(), code, shopID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
