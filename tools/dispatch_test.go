package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatchPayloadShape(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"status":"ok","booking_id":"bk_9"}`))
	}))
	defer server.Close()

	client := NewAutomationClient(5 * time.Second)
	result := client.Dispatch(context.Background(), server.URL, "schedule_appointment", map[string]any{"date": "2026-09-01"})

	require.Equal(t, "mibotpro", got["source"])
	require.Equal(t, "schedule_appointment", got["action"])
	require.Equal(t, map[string]any{"date": "2026-09-01"}, got["data"])
	ts, ok := got["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)

	require.Equal(t, map[string]any{"status": "ok", "booking_id": "bk_9"}, result)
}

func TestDispatchNilPayloadSendsEmptyObject(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	NewAutomationClient(0).Dispatch(context.Background(), server.URL, "ping", nil)

	require.Equal(t, map[string]any{}, got["data"])
}

func TestDispatchNonSuccessBecomesResultValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("scenario offline"))
	}))
	defer server.Close()

	result := NewAutomationClient(0).Dispatch(context.Background(), server.URL, "schedule_appointment", map[string]any{})

	require.Equal(t, "error", result["status"])
	require.Equal(t, http.StatusInternalServerError, result["code"])
	require.Equal(t, "scenario offline", result["message"])
}

func TestDispatchNetworkErrorBecomesResultValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	result := NewAutomationClient(0).Dispatch(context.Background(), server.URL, "schedule_appointment", map[string]any{})

	require.Equal(t, "error", result["status"])
	require.Contains(t, result, "details")
}

func TestDispatchNonJSONResponseWrappedAsRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Accepted"))
	}))
	defer server.Close()

	result := NewAutomationClient(0).Dispatch(context.Background(), server.URL, "notify", map[string]any{})

	require.Equal(t, map[string]any{"raw": "Accepted"}, result)
}

func TestDispatchSingleAttempt(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	NewAutomationClient(0).Dispatch(context.Background(), server.URL, "schedule_appointment", map[string]any{})

	require.EqualValues(t, 1, atomic.LoadInt64(&calls))
}
