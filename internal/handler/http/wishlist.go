package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/internal/session"
	"github.com/helloivanco/fanrc/pkg/httputil"
	"github.com/helloivanco/fanrc/pkg/middleware"
	"github.com/helloivanco/fanrc/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists    *service.WishlistService
	catalog      *service.CatalogService
	sessions     *session.Codec
	summary      service.SummaryOptions
	messengerURL string
	logger       *slog.Logger
}

// WishlistHandlerConfig configures the order summary and share link.
type WishlistHandlerConfig struct {
	Summary      service.SummaryOptions
	MessengerURL string
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(
	wishlists *service.WishlistService,
	catalog *service.CatalogService,
	sessions *session.Codec,
	cfg WishlistHandlerConfig,
	logger *slog.Logger,
) *WishlistHandler {
	return &WishlistHandler{
		wishlists:    wishlists,
		catalog:      catalog,
		sessions:     sessions,
		summary:      cfg.Summary,
		messengerURL: cfg.MessengerURL,
		logger:       logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the wishlist.
// Quantity defaults to 1.
type AddItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id" validate:"omitempty,gt=0"`
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

// UpdateQuantityRequest is the JSON request body for setting an item's quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=999"`
}

// --- Response DTOs ---

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type containsResponse struct {
	Contains bool `json:"contains"`
}

type shareResponse struct {
	Message      string `json:"message"`
	MessengerURL string `json:"messenger_url"`
}

// --- Handlers ---

// CreateSession handles POST /api/v1/wishlist/session
//
// A caller that already presents a valid session gets it back; anyone else
// is issued a fresh one. The signed token is set as a cookie and returned for
// clients that send it in the X-Wishlist-Session header instead.
func (h *WishlistHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	id, err := h.sessions.Resolve(r)
	if err != nil || id == "" {
		id = session.NewID()
		status = http.StatusCreated
	}

	h.sessions.SetCookie(w, id)
	token := h.sessions.Encode(id)
	w.Header().Set(middleware.SessionHeader, token)
	httputil.WriteJSON(w, status, httputil.Response{Data: sessionResponse{SessionID: id, Token: token}})
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	entries := h.wishlists.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.view(entries)})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.catalog.CheckVariant(req.ProductID, req.VariantID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	entries, err := h.wishlists.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID, req.VariantID, quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.view(entries)})
}

// UpdateItemQuantity handles PUT /api/v1/wishlist/items/{productId}?variant_id=
func (h *WishlistHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, variantID, ok := itemKey(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entries, err := h.wishlists.SetQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), productID, variantID, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.view(entries)})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}?variant_id=
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, variantID, ok := itemKey(w, r)
	if !ok {
		return
	}

	entries, err := h.wishlists.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), productID, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.view(entries)})
}

// ContainsItem handles GET /api/v1/wishlist/items/{productId}/contains?variant_id=
func (h *WishlistHandler) ContainsItem(w http.ResponseWriter, r *http.Request) {
	productID, variantID, ok := itemKey(w, r)
	if !ok {
		return
	}

	found := h.wishlists.Contains(r.Context(), middleware.SessionIDFromContext(r.Context()), productID, variantID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: containsResponse{Contains: found}})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wishlists.Clear(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.view(entries)})
}

// Summary handles GET /api/v1/wishlist/summary and returns the order message
// as plain text.
func (h *WishlistHandler) Summary(w http.ResponseWriter, r *http.Request) {
	text, err := h.summaryText(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteText(w, http.StatusOK, text)
}

// Share handles GET /api/v1/wishlist/share
func (h *WishlistHandler) Share(w http.ResponseWriter, r *http.Request) {
	text, err := h.summaryText(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: shareResponse{
		Message:      text,
		MessengerURL: service.MessengerLink(h.messengerURL, text),
	}})
}

func (h *WishlistHandler) summaryText(r *http.Request) (string, error) {
	snap, err := h.catalog.Snapshot()
	if err != nil {
		return "", err
	}
	entries := h.wishlists.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	return service.FormatSummary(entries, snap, h.summary), nil
}

// view resolves entries against the live catalog. Before the first catalog
// load every entry is dangling.
func (h *WishlistHandler) view(entries domain.Wishlist) service.WishlistView {
	snap, err := h.catalog.Snapshot()
	if err != nil {
		return service.ResolveWishlist(entries, service.ProductIndex(nil))
	}
	return service.ResolveWishlist(entries, snap)
}

// itemKey parses the {productId} path parameter and the optional variant_id
// query parameter. It writes a 400 response and returns false on bad input.
func itemKey(w http.ResponseWriter, r *http.Request) (int64, *int64, bool) {
	productID, ok := httputil.ParseID(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return 0, nil, false
	}
	variantID, ok := httputil.ParseOptionalID(w, "variant_id", r.URL.Query().Get("variant_id"))
	if !ok {
		return 0, nil, false
	}
	return productID, variantID, true
}
