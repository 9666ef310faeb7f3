package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultRazorpayURL = "https://api.razorpay.com/v1"

type Razorpay struct {
	client *resty.Client
	keyID  string
	secret []byte
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewRazorpay(baseURL, keyID, keySecret string, timeout time.Duration) *Razorpay {
	if baseURL == "" {
		baseURL = DefaultRazorpayURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Razorpay{client: c, keyID: keyID, secret: []byte(keySecret)}
}

func (r *Razorpay) KeyID() string { return r.keyID }

func (r *Razorpay) CreateTransaction(ctx context.Context, amountMinor int64, currency, receipt string) (*Transaction, error) {
	var out razorpayOrder
	var apiErr razorpayError

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(razorpayOrderRequest{Amount: amountMinor, Currency: currency, Receipt: receipt}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode(), apiErr.Error.Description)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrGateway)
	}

	return &Transaction{Ref: out.ID, Amount: out.Amount, Currency: out.Currency}, nil
}

// VerifyCallback checks the checkout signature, which the gateway computes with the key
// secret.
func (r *Razorpay) VerifyCallback(cb Callback) bool {
	return VerifySignature(r.secret, cb)
}
