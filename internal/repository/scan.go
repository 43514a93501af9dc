package repository

import (
	"database/sql"
	"errors"
	"strings"

	"shop-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const categoryColumns = `c.id, c.name, c.icon, c.color, c.created_at`

const productColumns = `p.id, p.name, p.description, p.main_description, p.image, p.images, p.brand,
	p.price, p.category_id, p.stock_count, p.rating, p.num_reviews, p.is_featured, p.date_created`

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	err := row.Scan(&category.ID, &category.Name, &category.Icon, &category.Color, &category.CreatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// nullCategory scans the LEFT JOINed side of a category reference.
type nullCategory struct {
	ID        uuid.NullUUID
	Name      sql.NullString
	Icon      sql.NullString
	Color     sql.NullString
	CreatedAt sql.NullTime
}

func (c *nullCategory) dest() []interface{} {
	return []interface{}{&c.ID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt}
}

func (c *nullCategory) category() *domain.Category {
	if !c.ID.Valid {
		return nil
	}
	return &domain.Category{
		ID:        c.ID.UUID,
		Name:      c.Name.String,
		Icon:      c.Icon.String,
		Color:     c.Color.String,
		CreatedAt: c.CreatedAt.Time,
	}
}

// nullProduct scans the LEFT JOINed side of a product reference.
type nullProduct struct {
	ID              uuid.NullUUID
	Name            sql.NullString
	Description     sql.NullString
	MainDescription sql.NullString
	Image           sql.NullString
	Images          pq.StringArray
	Brand           sql.NullString
	Price           decimal.NullDecimal
	CategoryID      uuid.NullUUID
	StockCount      sql.NullInt64
	Rating          sql.NullFloat64
	NumReviews      sql.NullInt64
	IsFeatured      sql.NullBool
	DateCreated     sql.NullTime
}

func (p *nullProduct) dest() []interface{} {
	return []interface{}{
		&p.ID, &p.Name, &p.Description, &p.MainDescription, &p.Image, &p.Images, &p.Brand,
		&p.Price, &p.CategoryID, &p.StockCount, &p.Rating, &p.NumReviews, &p.IsFeatured, &p.DateCreated,
	}
}

func (p *nullProduct) product() *domain.Product {
	if !p.ID.Valid {
		return nil
	}
	return &domain.Product{
		ID:              p.ID.UUID,
		Name:            p.Name.String,
		Description:     p.Description.String,
		MainDescription: p.MainDescription.String,
		Image:           p.Image.String,
		Images:          normalizeImages(p.Images),
		Brand:           p.Brand.String,
		Price:           p.Price.Decimal,
		CategoryID:      p.CategoryID.UUID,
		StockCount:      int(p.StockCount.Int64),
		Rating:          p.Rating.Float64,
		NumReviews:      int(p.NumReviews.Int64),
		IsFeatured:      p.IsFeatured.Bool,
		DateCreated:     p.DateCreated.Time,
	}
}

// scanProduct reads productColumns followed by categoryColumns.
func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var category nullCategory

	dest := []interface{}{
		&product.ID,
		&product.Name,
		&product.Description,
		&product.MainDescription,
		&product.Image,
		pq.Array(&product.Images),
		&product.Brand,
		&product.Price,
		&product.CategoryID,
		&product.StockCount,
		&product.Rating,
		&product.NumReviews,
		&product.IsFeatured,
		&product.DateCreated,
	}
	if err := row.Scan(append(dest, category.dest()...)...); err != nil {
		return nil, err
	}

	product.Images = normalizeImages(product.Images)
	product.Category = category.category()
	return product, nil
}

func normalizeImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

// uuidArray encodes ids as a text array for `= ANY($n::uuid[])` predicates.
func uuidArray(ids []uuid.UUID) interface{} {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return pq.Array(values)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in the
// value. Backslash is the default LIKE escape character in Postgres.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// isUniqueViolation reports whether err is a unique constraint violation
// raised by either the pgx or the lib/pq driver.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
	}

	return false
}
