package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/catalog"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SnapshotBuilder turns a cart into the order content that gets stored and
// mailed. Everything the customer sees is copied from the catalog here.
type SnapshotBuilder struct {
	catalog  Catalog
	pickup   PickupDates
	validate *validator.Validate
}

func NewSnapshotBuilder(catalog Catalog, pickup PickupDates) *SnapshotBuilder {
	return &SnapshotBuilder{
		catalog:  catalog,
		pickup:   pickup,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type resolvedLine struct {
	item    domain.CartItem
	product *domain.Product
	variant domain.Variant
}

func (b *SnapshotBuilder) Build(ctx context.Context, c domain.Cart, customer domain.Customer, pickupDate string) (domain.OrderSnapshot, error) {
	if c.IsEmpty() {
		return domain.OrderSnapshot{}, ErrEmptyCart
	}

	lines, err := b.resolve(ctx, c)
	if err != nil {
		return domain.OrderSnapshot{}, err
	}

	products := make([]domain.Product, 0, len(lines))
	for _, l := range lines {
		products = append(products, *l.product)
	}
	available, err := b.pickup.AvailableDates(ctx, products)
	if err != nil {
		return domain.OrderSnapshot{}, newError(KindServiceUnavailable, "Kunde inte hämta upphämtningsdatum.", err)
	}
	if !slices.Contains(available, pickupDate) {
		return domain.OrderSnapshot{}, newError(KindBusinessRule, fmt.Sprintf("%s är inte ett giltigt upphämtningsdatum", pickupDate), nil)
	}

	snapshot := domain.OrderSnapshot{
		Customer:   customer,
		PickupDate: pickupDate,
		Items:      make([]domain.OrderLine, 0, len(lines)),
		Totals:     cart.Total(c),
	}
	for _, l := range lines {
		lineTotal := decimal.NewFromFloat(l.item.Price).Mul(decimal.NewFromInt(int64(l.item.Qty)))
		snapshot.Items = append(snapshot.Items, domain.OrderLine{
			ProductTitle:       l.product.Title,
			VariantID:          l.variant.ID,
			VariantDescription: l.variant.Description,
			UnitPrice:          l.item.Price,
			Quantity:           l.item.Qty,
			LineTotal:          lineTotal.InexactFloat64(),
		})
	}

	if err := b.validate.Struct(snapshot); err != nil {
		return domain.OrderSnapshot{}, newError(KindValidation, "Ogiltig beställning.", err)
	}
	return snapshot, nil
}

func (b *SnapshotBuilder) resolve(ctx context.Context, c domain.Cart) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(c.Items))
	for _, item := range c.Items {
		product, err := b.catalog.GetProduct(ctx, item.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("Hittade ingen produkt med ID %s", item.ProductID), err)
		}
		if err != nil {
			return nil, newError(KindServiceUnavailable, "Kunde inte hämta produkterna.", err)
		}

		variant, ok := product.VariantByPrice(item.Price)
		if !ok {
			return nil, newError(KindNotFound, fmt.Sprintf("Hittade ingen variant med pris %s", formatAmount(item.Price)), nil)
		}
		lines = append(lines, resolvedLine{item: item, product: product, variant: variant})
	}
	return lines, nil
}

// PickupDates lists the dates the cart in c can be collected on. Products
// missing from the catalog are skipped so a stale cart still gets dates.
func (b *SnapshotBuilder) PickupDates(ctx context.Context, c domain.Cart) ([]string, error) {
	products := make([]domain.Product, 0, len(c.Items))
	for _, id := range c.ProductIDs() {
		product, err := b.catalog.GetProduct(ctx, id)
		if errors.Is(err, catalog.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, newError(KindServiceUnavailable, "Kunde inte hämta produkterna.", err)
		}
		products = append(products, *product)
	}

	available, err := b.pickup.AvailableDates(ctx, products)
	if err != nil {
		return nil, newError(KindServiceUnavailable, "Kunde inte hämta upphämtningsdatum.", err)
	}
	return available, nil
}
