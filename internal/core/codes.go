package core

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// Receipt and purchase-order codes shown to humans: a date component
// plus a random 4-digit suffix, e.g. TRX-20240410-0042. Uniqueness is
// enforced by the database ID, not by the code.

func NewTransactionCode(now time.Time) string {
	return newCode("TRX", now)
}

func NewPurchaseCode(now time.Time) string {
	return newCode("PO", now)
}

func newCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.UTC().Format("20060102"), randomSuffix())
}

func randomSuffix() uint16 {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint16(time.Now().UnixNano() % 10000)
	}
	return binary.BigEndian.Uint16(b[:]) % 10000
}
