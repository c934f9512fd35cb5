package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"harvesthub/internal/infra"
)

type payoutClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	account    string
	httpClient *http.Client
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

func (c *payoutClient) create(ctx context.Context, req infra.PayoutRequest) (string, error) {
	if c.account == "" {
		return "", fmt.Errorf("razorpay: payout account is not configured")
	}

	payload := map[string]any{
		"account_number": c.account,
		"amount":         req.AmountSubunits,
		"currency":       req.Currency,
		"mode":           "IMPS",
		"purpose":        "payout",
		"fund_account": map[string]any{
			"account_type": "bank_account",
			"bank_account": map[string]string{
				"name":           req.AccountHolder,
				"ifsc":           req.IFSC,
				"account_number": req.AccountNumber,
			},
			"contact": map[string]string{
				"name": req.AccountHolder,
				"type": "vendor",
			},
		},
		"queue_if_low_balance": true,
		"reference_id":         req.Reference,
		"narration":            req.Narration,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payouts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("X-Payout-Idempotency", req.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("razorpay: payout request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out payoutResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("razorpay: payout returned status %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("razorpay: payout rejected (%d): %s", resp.StatusCode, out.Error.Description)
		}
		return "", fmt.Errorf("razorpay: payout returned status %d", resp.StatusCode)
	}
	return out.ID, nil
}
