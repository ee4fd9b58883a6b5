package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/pkg/httputil"
	"github.com/helloivanco/fanrc/pkg/pagination"
)

// ProductHandler serves catalog reads.
type ProductHandler struct {
	catalog  *service.CatalogService
	pageSize int
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(catalog *service.CatalogService, pageSize int, logger *slog.Logger) *ProductHandler {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &ProductHandler{catalog: catalog, pageSize: pageSize, logger: logger}
}

// --- Response DTOs ---

// productSummary is a product card in the browse list.
type productSummary struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Handle        string            `json:"handle"`
	URL           string            `json:"url"`
	Vendor        string            `json:"vendor"`
	ProductType   string            `json:"product_type"`
	Tags          []string          `json:"tags"`
	FeaturedImage string            `json:"featured_image"`
	PriceRange    domain.PriceRange `json:"price_range"`
	Available     bool              `json:"available"`
	VariantID     int64             `json:"default_variant_id"`
}

// productDetail is the full product plus derived pricing.
type productDetail struct {
	domain.Product
	PriceRange domain.PriceRange `json:"price_range"`
	Available  bool              `json:"available"`
}

// browseResponse is one step of the infinite list. Reveal and Fingerprint
// must be echoed back on the next request.
type browseResponse struct {
	Products    []productSummary `json:"products"`
	Shown       int              `json:"shown"`
	Filtered    int              `json:"filtered"`
	Total       int              `json:"total"`
	HasMore     bool             `json:"has_more"`
	Reset       bool             `json:"reset"`
	Reveal      int              `json:"reveal"`
	Fingerprint string           `json:"fingerprint"`
	PageSize    int              `json:"page_size"`
}

func toSummary(p domain.Product) productSummary {
	s := productSummary{
		ID:            p.ID,
		Title:         p.Title,
		Handle:        p.Handle,
		URL:           p.URL,
		Vendor:        p.Vendor,
		ProductType:   p.ProductType,
		Tags:          p.Tags,
		FeaturedImage: p.FeaturedImage,
		PriceRange:    p.PriceRange(),
		Available:     p.Available(),
	}
	if v, ok := p.DefaultVariant(); ok {
		s.VariantID = v.ID
	}
	return s
}

func toDetail(p domain.Product) productDetail {
	return productDetail{Product: p, PriceRange: p.PriceRange(), Available: p.Available()}
}

// --- Handlers ---

// Browse handles GET /api/v1/products
//
// Query parameters: q (search term), type (repeatable category), reveal and
// fingerprint (state from the previous response), more (reveal one more page).
func (h *ProductHandler) Browse(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := domain.QueryState{
		Term:       params.Get("q"),
		Categories: params["type"],
	}
	more, _ := strconv.ParseBool(params.Get("more"))
	reveal := pagination.FromRequest(r, h.pageSize)

	res, err := h.catalog.Browse(r.Context(), q, reveal, more)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items := make([]productSummary, 0, len(res.Products))
	for _, p := range res.Products {
		items = append(items, toSummary(p))
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: browseResponse{
		Products:    items,
		Shown:       res.Shown,
		Filtered:    res.Filtered,
		Total:       res.Total,
		HasMore:     res.HasMore,
		Reset:       res.Reset,
		Reveal:      res.Reveal.RevealCount,
		Fingerprint: res.Reveal.Fingerprint,
		PageSize:    res.Reveal.PageSize,
	}})
}

// GetByHandle handles GET /api/v1/products/{handle}
func (h *ProductHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ProductByHandle(chi.URLParam(r, "handle"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toDetail(p)})
}

// GetByID handles GET /api/v1/products/id/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	p, err := h.catalog.ProductByID(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toDetail(p)})
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.Categories()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: groups})
}
