package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSessionFormFields(t *testing.T) {
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.test/pay/cs_test_1"}`))
	}))
	defer server.Close()

	client := &StripeClient{APIKey: "sk_test_123", BaseURL: server.URL}
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		ConfigID:           "cfg-42",
		UserID:             7,
		ProductName:        "Bot Peluquería",
		ProductDescription: "Asistente con reservas",
		AmountCents:        2900,
		Currency:           "EUR",
		SuccessURL:         "https://app.example/success",
		CancelURL:          "https://app.example/cancel",
	})

	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://checkout.stripe.test/pay/cs_test_1", session.URL)

	require.Equal(t, "subscription", form.Get("mode"))
	require.Equal(t, "eur", form.Get("line_items[0][price_data][currency]"))
	require.Equal(t, "2900", form.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "month", form.Get("line_items[0][price_data][recurring][interval]"))
	require.Equal(t, "Bot Peluquería", form.Get("line_items[0][price_data][product_data][name]"))
	require.Equal(t, "https://app.example/success", form.Get("success_url"))

	// Correlation id travels on both the session and the subscription itself,
	// so renewal and cancellation events can find the configuration.
	require.Equal(t, "cfg-42", form.Get("metadata[config_id]"))
	require.Equal(t, "cfg-42", form.Get("subscription_data[metadata][config_id]"))
	require.Equal(t, "7", form.Get("metadata[user_id]"))
}

func TestCreateCheckoutSessionStripeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := &StripeClient{APIKey: "sk_test_123", BaseURL: server.URL}
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Currency: "eur"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "402")
}

func TestCreateCheckoutSessionMissingURLIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cs_test_2"}`))
	}))
	defer server.Close()

	client := &StripeClient{APIKey: "sk_test_123", BaseURL: server.URL}
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Currency: "eur"})

	require.Error(t, err)
}
