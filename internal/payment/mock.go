package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const MockKeyID = "mock_key"

// Mock stands in for the gateway when no credentials are configured. It never leaves the
// process; callbacks are still signature checked.
type Mock struct {
	Secret []byte
	Now    func() time.Time
}

func NewMock(secret []byte) *Mock {
	return &Mock{Secret: secret, Now: time.Now}
}

func (m *Mock) KeyID() string { return MockKeyID }

func (m *Mock) CreateTransaction(ctx context.Context, amountMinor int64, currency, _ string) (*Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	ref := fmt.Sprintf("mock_order_%d_%06d", now().UnixMilli(), rand.IntN(1_000_000))
	return &Transaction{Ref: ref, Amount: amountMinor, Currency: currency}, nil
}

func (m *Mock) VerifyCallback(cb Callback) bool {
	return VerifySignature(m.Secret, cb)
}
