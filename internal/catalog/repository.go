// Package catalog stores the products offered in the shop.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, max_quantity_per_order, created_at
		FROM products
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, p := range products {
		if err := r.loadDetails(ctx, p); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, max_quantity_per_order, created_at
		FROM products
		WHERE id = ?
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	p := &domain.Product{}
	var maxQty sql.NullInt64
	if err := s.Scan(&p.ID, &p.Title, &maxQty, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if maxQty.Valid {
		v := int(maxQty.Int64)
		p.MaxQuantityPerOrder = &v
	}
	return p, nil
}

// loadDetails fills variants and pickup dates. Rows are drained before the
// next query so a single connection is enough.
func (r *Repository) loadDetails(ctx context.Context, p *domain.Product) error {
	variants, err := r.db.QueryContext(ctx, `
		SELECT variant_id, description, price
		FROM product_variants
		WHERE product_id = ?
		ORDER BY position, variant_id
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query variants of %s: %w", p.ID, err)
	}
	for variants.Next() {
		var v domain.Variant
		if err := variants.Scan(&v.ID, &v.Description, &v.Price); err != nil {
			variants.Close()
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	if err := variants.Err(); err != nil {
		variants.Close()
		return fmt.Errorf("row iteration error: %w", err)
	}
	variants.Close()

	dates, err := r.db.QueryContext(ctx, `
		SELECT pickup_date
		FROM product_pickup_dates
		WHERE product_id = ?
		ORDER BY pickup_date
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query pickup dates of %s: %w", p.ID, err)
	}
	defer dates.Close()
	for dates.Next() {
		var d string
		if err := dates.Scan(&d); err != nil {
			return fmt.Errorf("failed to scan pickup date: %w", err)
		}
		p.PickupDates = append(p.PickupDates, d)
	}
	if err := dates.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}
