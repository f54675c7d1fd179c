package cart

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	CookieName   = "cart"
	CookieMaxAge = 7 * 24 * time.Hour

	// maxCookieValue is the largest encoded cart browsers reliably keep.
	maxCookieValue = 4096
)

var (
	ErrDuplicateLine = errors.New("duplicate cart line")
	ErrCartTooLarge  = errors.New("cart too large for cookie")
)

// CookieStore keeps the cart in a signed, http-only cookie. The cookie is the
// only copy of the cart.
type CookieStore struct {
	codec    *securecookie.SecureCookie
	validate *validator.Validate
	secure   bool
	logger   *zap.Logger
}

func NewCookieStore(hashKey []byte, secure bool, logger *zap.Logger) *CookieStore {
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(CookieMaxAge.Seconds()))
	codec.MaxLength(0) // length is checked in Save and Load

	return &CookieStore{
		codec:    codec,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		secure:   secure,
		logger:   logger,
	}
}

// Load reads the cart from the request. A missing cookie yields Empty; a cookie
// that fails signature or shape checks is deleted and also yields Empty.
func (s *CookieStore) Load(w http.ResponseWriter, r *http.Request) domain.Cart {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Empty
	}
	if len(cookie.Value) > maxCookieValue {
		s.logger.Info("discarding oversized cart cookie", zap.Int("bytes", len(cookie.Value)))
		s.Clear(w)
		return Empty
	}

	var c domain.Cart
	if err := s.codec.Decode(CookieName, cookie.Value, &c); err != nil {
		s.logger.Info("discarding unreadable cart cookie", zap.Error(err))
		s.Clear(w)
		return Empty
	}
	if err := s.Validate(c); err != nil {
		s.logger.Info("discarding invalid cart cookie", zap.Error(err))
		s.Clear(w)
		return Empty
	}
	if c.Items == nil {
		return Empty
	}
	return c
}

// Save writes c as the client's cart. A cart whose encoding exceeds what a
// cookie can hold yields ErrCartTooLarge and nothing is written.
func (s *CookieStore) Save(w http.ResponseWriter, c domain.Cart) error {
	if c.Items == nil {
		c = Empty
	}
	encoded, err := s.codec.Encode(CookieName, c)
	if err != nil {
		return fmt.Errorf("encode cart cookie: %w", err)
	}
	if len(encoded) > maxCookieValue {
		return fmt.Errorf("%d lines, %d bytes: %w", len(c.Items), len(encoded), ErrCartTooLarge)
	}
	http.SetCookie(w, s.cookie(encoded, int(CookieMaxAge.Seconds())))
	return nil
}

// Clear removes the cart cookie.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

// Validate checks the field rules and that no (productId, price) pair repeats.
func (s *CookieStore) Validate(c domain.Cart) error {
	if err := s.validate.Struct(c); err != nil {
		return err
	}
	type key struct {
		productID string
		price     float64
	}
	seen := make(map[key]struct{}, len(c.Items))
	for _, item := range c.Items {
		k := key{item.ProductID, item.Price}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%s at %v: %w", item.ProductID, item.Price, ErrDuplicateLine)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
