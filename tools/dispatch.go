package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// DispatchSource identifies this platform in outbound automation payloads.
const DispatchSource = "mibotpro"

const defaultDispatchTimeout = 15 * time.Second

// AutomationClient posts tool invocations to the business-configured
// automation endpoint (Make/n8n webhook). It implements runner.Dispatcher.
//
// Every failure mode becomes a result value: a broken business-side endpoint
// must degrade the answer, not break the conversation. There is exactly one
// attempt per model turn; a retry could double-trigger a real-world side
// effect like an appointment booking.
type AutomationClient struct {
	HTTPClient *http.Client
}

func NewAutomationClient(timeout time.Duration) *AutomationClient {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &AutomationClient{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type dispatchBody struct {
	Source    string         `json:"source"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// Dispatch performs the single outbound call for one tool invocation.
func (a *AutomationClient) Dispatch(ctx context.Context, endpoint string, actionType string, payload map[string]any) map[string]any {
	if payload == nil {
		payload = map[string]any{}
	}

	body := dispatchBody{
		Source:    DispatchSource,
		Action:    actionType,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(body)
	if err != nil {
		return map[string]any{"status": "error", "message": "failed to encode action payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return map[string]any{"status": "error", "message": "invalid automation endpoint: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	client := a.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultDispatchTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return map[string]any{
			"status":  "error",
			"message": "Error de red. Verifica que tu webhook de automatización esté activo.",
			"details": err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	text := strings.TrimSpace(string(respBody))

	if resp.StatusCode >= 300 {
		return map[string]any{
			"status":  "error",
			"code":    resp.StatusCode,
			"message": text,
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed == nil {
		return map[string]any{"raw": text}
	}
	return parsed
}
