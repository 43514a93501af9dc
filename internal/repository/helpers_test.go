package repository

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

var productColumnNames = []string{
	"id", "name", "description", "main_description", "image", "images", "brand",
	"price", "category_id", "stock_count", "rating", "num_reviews", "is_featured", "date_created",
}

var categoryColumnNames = []string{"c_id", "c_name", "c_icon", "c_color", "c_created_at"}

func productValues(id, categoryID uuid.UUID, name, price string, featured bool) []driver.Value {
	return []driver.Value{
		id.String(), name, "desc", "long desc", "main.png", "{a.png,b.png}", "Acme",
		price, categoryID.String(), int64(10), 4.5, int64(3), featured, time.Now(),
	}
}

func categoryValues(id uuid.UUID, name string) []driver.Value {
	return []driver.Value{id.String(), name, "icon", "#fff", time.Now()}
}

func itemValues(orderID, productID uuid.UUID, quantity int64) []driver.Value {
	return []driver.Value{uuid.New().String(), orderID.String(), productID.String(), quantity}
}

func nullValues(n int) []driver.Value {
	return make([]driver.Value, n)
}

func concat(parts ...[]driver.Value) []driver.Value {
	var out []driver.Value
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func concatNames(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
