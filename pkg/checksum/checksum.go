// Package checksum implements the X-VERIFY signing scheme used by the
// PhonePe payment gateway: a salted SHA-256 over the request payload, hex
// encoded, with the salt index appended after "###".
package checksum

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Compute builds the X-VERIFY value for an outbound request:
// sha256(payload + endpoint + saltKey) + "###" + saltIndex.
func Compute(payload, endpoint, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(payload + endpoint + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + saltIndex
}

// Verify checks the X-VERIFY value on an inbound callback:
// sha256(payload + saltKey) + "###" + saltIndex. Callbacks carry no endpoint
// path, so the formula deliberately differs from Compute. The comparison is
// constant time.
func Verify(received, payload, saltKey, saltIndex string) bool {
	sum := sha256.Sum256([]byte(payload + saltKey))
	expected := hex.EncodeToString(sum[:]) + "###" + saltIndex
	return hmac.Equal([]byte(received), []byte(expected))
}

// TransactionID generates a merchant transaction id. Uniqueness is
// overwhelmingly likely from the timestamp + uuid fragment; the unique index
// on payments.merchant_transaction_id is the backstop.
func TransactionID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), uuid.New().String()[:8])
}
