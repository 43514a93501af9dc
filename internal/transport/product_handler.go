package transport

import (
	"net/http"
	"strconv"
	"strings"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the payload for creating or replacing a product
type ProductRequest struct {
	Name            string          `json:"name" validate:"required,notblank,max=200"`
	Description     string          `json:"description" validate:"required,notblank"`
	MainDescription string          `json:"mainDescription"`
	Image           string          `json:"image"`
	Images          []string        `json:"images" validate:"omitempty,dive,required"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category" validate:"required,uuid"`
	StockCount      int             `json:"stockCount" validate:"gte=0,lte=250"`
	Rating          float64         `json:"rating" validate:"gte=0"`
	NumReviews      int             `json:"numReviews" validate:"gte=0"`
	IsFeatured      bool            `json:"isFeatured"`
}

func (req ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		MainDescription: req.MainDescription,
		Image:           req.Image,
		Images:          req.Images,
		Brand:           req.Brand,
		Price:           req.Price,
		CategoryID:      uuid.MustParse(req.Category),
		StockCount:      req.StockCount,
		Rating:          req.Rating,
		NumReviews:      req.NumReviews,
		IsFeatured:      req.IsFeatured,
	}
}

// ProductHandler handles HTTP requests for the catalog's products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes mounts the product routes. Reads are public; writes are
// admin only.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/get/count", h.CountProducts)
		r.Get("/get/featured", h.ListFeatured)
		r.Get("/get/featured/{count}", h.ListFeatured)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// ListProducts returns products, optionally filtered by categories and a
// search term.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawCategories := query.Get("categories")
	if rawCategories == "" {
		rawCategories = query.Get("catagories")
	}

	categoryIDs, err := parseIDList(rawCategories)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id in filter")
		return
	}

	filter := domain.ProductFilter{
		CategoryIDs: categoryIDs,
		Search:      strings.TrimSpace(query.Get("search")),
	}

	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithError(w, h.logger, "Failed to list products", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, "Failed to get product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CountProducts(w http.ResponseWriter, r *http.Request) {
	count, err := h.productService.CountProducts(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to count products", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, countResponse{Count: count})
}

// ListFeatured returns featured products. A missing or zero count means no
// cap.
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := chi.URLParam(r, "count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		limit = n
	}

	products, err := h.productService.ListFeatured(r.Context(), limit)
	if err != nil {
		respondWithError(w, h.logger, "Failed to list featured products", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.input())
	if err != nil {
		respondWithError(w, h.logger, "Failed to create product", err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		respondWithError(w, h.logger, "Failed to update product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		respondWithError(w, h.logger, "Failed to delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "the product is deleted"})
}

// parseIDList splits a comma separated list of ids, ignoring blanks.
func parseIDList(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
