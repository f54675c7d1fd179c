package orders

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^\d{6}-\d{4}$`)

// NewOrderNumber formats YYMMDD-NNNN for the calendar day of now, NNNN being
// random in [1000, 9999].
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%d", now.Format("060102"), 1000+rand.IntN(9000))
}

// ValidOrderNumber reports whether s has the shape NewOrderNumber produces.
func ValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}
