package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/catalog"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CartService applies catalog rules to cart changes. Carts are values owned
// by the caller; nothing is stored here.
type CartService struct {
	catalog  Catalog
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCartService(catalog Catalog, logger *zap.Logger) *CartService {
	return &CartService{
		catalog:  catalog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// CartView is a cart together with its derived totals.
type CartView struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.CartTotal  `json:"totals"`
}

func View(c domain.Cart) CartView {
	if c.Items == nil {
		c = cart.Empty
	}
	return CartView{Items: c.Items, Totals: cart.Total(c)}
}

// AddItem adds item to c after checking it against the catalog. It returns the
// product title for the "added to cart" message.
func (s *CartService) AddItem(ctx context.Context, c domain.Cart, item domain.CartItem) (domain.Cart, string, error) {
	if err := s.validate.Struct(item); err != nil {
		return c, "", newError(KindValidation, "Ogiltig produkt.", err)
	}

	product, err := s.product(ctx, item.ProductID)
	if err != nil {
		return c, "", err
	}
	if product.IsFullyBooked() {
		return c, "", newError(KindBusinessRule, "Produkten är fullbokad.", nil)
	}
	if _, ok := product.VariantByPrice(item.Price); !ok {
		return c, "", newError(KindBusinessRule, "Ogiltigt prisalternativ.", nil)
	}
	if limit := product.MaxQuantityPerOrder; limit != nil && item.Qty > *limit {
		return c, "", newError(KindBusinessRule, fmt.Sprintf("Du kan max beställa %d st av denna produkt.", *limit), nil)
	}

	return cart.Add(c, item, product.MaxQuantityPerOrder), product.Title, nil
}

// UpdateItem sets the quantity of an existing line, capped by the product's
// per-order limit. A quantity of zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, c domain.Cart, item domain.CartItem) (domain.Cart, error) {
	if item.ProductID == "" || item.Qty < 0 {
		return c, newError(KindValidation, "Ogiltig produkt.", nil)
	}

	product, err := s.product(ctx, item.ProductID)
	if err != nil {
		return c, err
	}

	next, err := cart.Update(c, item, product.MaxQuantityPerOrder)
	if err != nil {
		return c, mismatch(item.ProductID, item.Price, err)
	}
	return next, nil
}

// RemoveItem drops a line without consulting the catalog, so lines for
// products that have since been removed can still be taken out.
func (s *CartService) RemoveItem(_ context.Context, c domain.Cart, productID string, price float64) (domain.Cart, error) {
	next, err := cart.Remove(c, productID, price)
	if err != nil {
		return c, mismatch(productID, price, err)
	}
	return next, nil
}

func (s *CartService) product(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, newError(KindNotFound, "Produkten finns inte.", err)
	}
	if err != nil {
		s.logger.Error("catalog lookup failed", zap.String("product_id", id), zap.Error(err))
		return nil, newError(KindServiceUnavailable, "Kunde inte hämta produkten.", err)
	}
	return product, nil
}

func mismatch(productID string, price float64, err error) error {
	return newError(KindProductMismatch, "PRODUCT_ID_MISMATCH",
		fmt.Errorf("%s at %s: %w", productID, formatAmount(price), err))
}

// formatAmount prints a price the way it was entered: 65, 99.9.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
