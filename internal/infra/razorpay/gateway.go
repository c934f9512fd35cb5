package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"harvesthub/internal/infra"

	rzp "github.com/razorpay/razorpay-go"
)

// orderCreator is the part of the razorpay-go client used to open orders.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Gateway struct {
	keyID     string
	keySecret string
	orders    orderCreator
	payouts   *payoutClient
}

type Options struct {
	KeyID          string
	KeySecret      string
	PayoutAccount  string
	APIURL         string
	RequestTimeout time.Duration
}

func NewGateway(opts Options) *Gateway {
	client := rzp.NewClient(opts.KeyID, opts.KeySecret)
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	return &Gateway{
		keyID:     opts.KeyID,
		keySecret: opts.KeySecret,
		orders:    client.Order,
		payouts: &payoutClient{
			baseURL:    opts.APIURL,
			keyID:      opts.KeyID,
			keySecret:  opts.KeySecret,
			account:    opts.PayoutAccount,
			httpClient: &http.Client{Timeout: opts.RequestTimeout},
		},
	}
}

func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateIntent opens a gateway order for the amount and returns its id.
func (g *Gateway) CreateIntent(ctx context.Context, req infra.IntentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	body, err := g.orders.Create(map[string]interface{}{
		"amount":   req.AmountSubunits,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay: create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return "", fmt.Errorf("razorpay: create order: empty order id")
	}
	return id, nil
}

func (g *Gateway) CreatePayout(ctx context.Context, req infra.PayoutRequest) (string, error) {
	return g.payouts.create(ctx, req)
}

func (g *Gateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(g.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

// Sign returns the hex HMAC-SHA256 of "<orderId>|<paymentId>" under secret,
// the scheme the checkout callback is signed with.
func Sign(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

var _ infra.PaymentGateway = (*Gateway)(nil)
