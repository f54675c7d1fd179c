// Package confirmation issues the capability tokens that let a customer open
// their order confirmation without signing in.
package confirmation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

var ErrMissingSecret = errors.New("order confirmation secret is not configured")

// CreateToken returns the hex encoded HMAC-SHA256 of orderID under secret.
func CreateToken(orderID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyToken reports whether token was issued for orderID under secret.
func VerifyToken(orderID, token, secret string) bool {
	expected := CreateToken(orderID, secret)
	if len(token) != len(expected) {
		return false
	}
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(expected)
	return hmac.Equal(got, want)
}

// Issuer binds the server secret and the shop path used for thank-you links.
type Issuer struct {
	secret   string
	shopPath string
}

func NewIssuer(secret, shopPath string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Issuer{secret: secret, shopPath: strings.TrimSuffix(shopPath, "/")}, nil
}

func (i *Issuer) Token(orderID string) string {
	return CreateToken(orderID, i.secret)
}

func (i *Issuer) Verify(orderID, token string) bool {
	if orderID == "" || token == "" {
		return false
	}
	return VerifyToken(orderID, token, i.secret)
}

// ThankYouURL builds the path of the page that shows the confirmed order.
func (i *Issuer) ThankYouURL(orderID, token string) string {
	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("token", token)
	return i.shopPath + "/tack?" + q.Encode()
}

// ShopURL is where unverified confirmation requests are sent.
func (i *Issuer) ShopURL() string {
	if i.shopPath == "" {
		return "/"
	}
	return i.shopPath
}
