package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrGateway = errors.New("payment gateway error")

type Transaction struct {
	Ref      string
	Amount   int64
	Currency string
}

// Callback is what the client relays back after the customer completes payment.
type Callback struct {
	OrderRef   string
	PaymentRef string
	Signature  string
}

type Gateway interface {
	CreateTransaction(ctx context.Context, amountMinor int64, currency, receipt string) (*Transaction, error)
	VerifyCallback(cb Callback) bool
	KeyID() string
}

// Sign computes the hex HMAC-SHA256 of "orderRef|paymentRef".
func Sign(secret []byte, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret []byte, cb Callback) bool {
	if len(secret) == 0 || cb.OrderRef == "" || cb.PaymentRef == "" || cb.Signature == "" {
		return false
	}
	want := Sign(secret, cb.OrderRef, cb.PaymentRef)
	return hmac.Equal([]byte(want), []byte(cb.Signature))
}
