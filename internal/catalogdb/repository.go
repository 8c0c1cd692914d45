package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Repository reads the catalog from sqlite.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT category_key, name
		FROM categories
		ORDER BY position, category_key
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		var name sql.NullString
		if err := rows.Scan(&c.Key, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Name = name.String
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// ProductsByCategory returns every product grouped by category key, each
// group in display order.
func (r *Repository) ProductsByCategory(ctx context.Context) (map[string][]domain.Product, error) {
	query := `
		SELECT id, category_key, name, price, weight, availability_days, image_url, detail_url
		FROM products
		ORDER BY category_key, position, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := map[string][]domain.Product{}
	for rows.Next() {
		var p domain.Product
		var price string
		var weight, availability, imageURL, detailURL sql.NullString
		err := rows.Scan(
			&p.ID,
			&p.CategoryKey,
			&p.Name,
			&price,
			&weight,
			&availability,
			&imageURL,
			&detailURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price %q for product %s: %w", price, p.ID, err)
		}
		p.Weight = weight.String
		p.AvailabilityDays = availability.String
		p.ImageURL = imageURL.String
		p.DetailURL = detailURL.String
		products[p.CategoryKey] = append(products[p.CategoryKey], p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
