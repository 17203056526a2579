package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com"

// StripeClient creates checkout sessions via Stripe's form-encoded REST API.
type StripeClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewStripeClientFromEnv() (*StripeClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("STRIPE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("STRIPE_API_KEY not set")
	}
	return &StripeClient{APIKey: apiKey}, nil
}

type CheckoutSessionParams struct {
	ConfigID           string
	UserID             int64
	ProductName        string
	ProductDescription string
	AmountCents        int64
	Currency           string
	SuccessURL         string
	CancelURL          string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a monthly subscription checkout. The config id
// is stamped into both the session metadata and the subscription metadata so
// that every later processor event can be correlated back to the
// configuration.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (CheckoutSession, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return CheckoutSession{}, fmt.Errorf("stripe api key not set")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(p.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountCents, 10))
	form.Set("line_items[0][price_data][recurring][interval]", "month")
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	if p.ProductDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", p.ProductDescription)
	}
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("metadata[config_id]", p.ConfigID)
	form.Set("metadata[user_id]", strconv.FormatInt(p.UserID, 10))
	form.Set("subscription_data[metadata][config_id]", p.ConfigID)
	form.Set("subscription_data[metadata][user_id]", strconv.FormatInt(p.UserID, 10))

	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = stripeBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return CheckoutSession{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return CheckoutSession{}, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, err
	}
	if session.URL == "" {
		return CheckoutSession{}, fmt.Errorf("stripe returned a session without url")
	}
	return session, nil
}
