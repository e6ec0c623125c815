package booking

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const numberTimeLayout = "20060102150405"

// NewBookingNumber returns BK<yyyyMMddHHmmss><8 hex>. The suffix comes from a
// random UUID; the unique index on booking_number is the final guard.
func NewBookingNumber(now time.Time) string {
	return newNumber("BK", now)
}

func NewTicketNumber(now time.Time) string {
	return newNumber("TK", now)
}

func newNumber(prefix string, now time.Time) string {
	id := uuid.New()
	return prefix + now.Format(numberTimeLayout) + strings.ToUpper(hex.EncodeToString(id[:4]))
}
