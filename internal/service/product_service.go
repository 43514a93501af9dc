package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput holds the writable fields of a product.
type ProductInput struct {
	Name            string
	Description     string
	MainDescription string
	Image           string
	Images          []string
	Brand           string
	Price           decimal.Decimal
	CategoryID      uuid.UUID
	StockCount      int
	Rating          float64
	NumReviews      int
	IsFeatured      bool
}

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	// ListFeatured caps the result at limit when limit is positive.
	ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProduct persists a product after checking its category exists.
// Nothing is written when validation fails.
func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	category, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		DateCreated: time.Now().UTC(),
	}
	applyProductInput(product, input)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Category = category
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	category, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	applyProductInput(product, input)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	product.Category = category
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit < 0 {
		limit = 0
	}

	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

func (s *productService) CountProducts(ctx context.Context) (int, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// validate checks field ranges and resolves the referenced category.
func (s *productService) validate(ctx context.Context, input ProductInput) (*domain.Category, error) {
	if input.Price.IsNegative() || input.Price.GreaterThan(domain.MaxPrice) ||
		!input.Price.Equal(input.Price.Truncate(domain.PriceScale)) {
		return nil, ErrInvalidPrice
	}

	if input.StockCount < domain.MinStockCount || input.StockCount > domain.MaxStockCount {
		return nil, ErrInvalidStock
	}

	category, err := s.categoryRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}

	return category, nil
}

func applyProductInput(product *domain.Product, input ProductInput) {
	product.Name = input.Name
	product.Description = input.Description
	product.MainDescription = input.MainDescription
	product.Image = input.Image
	product.Images = input.Images
	if product.Images == nil {
		product.Images = []string{}
	}
	product.Brand = input.Brand
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.StockCount = input.StockCount
	product.Rating = input.Rating
	product.NumReviews = input.NumReviews
	product.IsFeatured = input.IsFeatured
}
