package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mibotpro/runner"
)

func newGeminiServer(t *testing.T, response string, capture *geminiRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, ":generateContent"))
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, capture))
		}
		w.Write([]byte(response))
	}))
}

func testGeminiClient(baseURL string) *GeminiClient {
	return &GeminiClient{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: baseURL}
}

func TestGenerateParsesTextParts(t *testing.T) {
	var captured geminiRequest
	server := newGeminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hola, "},{"text":"¿en qué puedo ayudarte?"}]}}]}`, &captured)
	defer server.Close()

	result, err := testGeminiClient(server.URL).Generate(context.Background(), runner.GenerateRequest{
		SystemInstruction: "ROL: asistente",
		History:           []runner.Message{{Role: "user", Text: "buenas"}, {Role: "model", Text: "¡Buenas!"}},
		Prompt:            "hola",
	})

	require.NoError(t, err)
	require.Nil(t, result.ToolCall)
	require.Equal(t, "Hola, \n¿en qué puedo ayudarte?", result.Text)

	require.NotNil(t, captured.SystemInstruction)
	require.Equal(t, "ROL: asistente", captured.SystemInstruction.Parts[0].Text)
	require.Empty(t, captured.Tools, "tool must not be declared unless requested")
	require.Len(t, captured.Contents, 3)
	require.Equal(t, "user", captured.Contents[0].Role)
	require.Equal(t, "model", captured.Contents[1].Role)
	require.Equal(t, "hola", captured.Contents[2].Parts[0].Text)
}

func TestGenerateParsesFunctionCall(t *testing.T) {
	var captured geminiRequest
	server := newGeminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"trigger_action_webhook","args":{"actionType":"schedule_appointment","payload":{"date":"2026-09-01","time":"15:00"}}}}]}}]}`, &captured)
	defer server.Close()

	result, err := testGeminiClient(server.URL).Generate(context.Background(), runner.GenerateRequest{
		Prompt:            "resérvame una cita",
		DeclareActionTool: true,
	})

	require.NoError(t, err)
	require.NotNil(t, result.ToolCall)
	require.Equal(t, "schedule_appointment", result.ToolCall.ActionType)
	require.Equal(t, map[string]any{"date": "2026-09-01", "time": "15:00"}, result.ToolCall.Payload)

	require.Len(t, captured.Tools, 1)
	decls := captured.Tools[0].FunctionDeclarations
	require.Len(t, decls, 1)
	require.Equal(t, runner.ActionToolName, decls[0].Name)
}

func TestGenerateToolRoundTripReplaysCallAndResult(t *testing.T) {
	var captured geminiRequest
	server := newGeminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Cita confirmada."}]}}]}`, &captured)
	defer server.Close()

	_, err := testGeminiClient(server.URL).Generate(context.Background(), runner.GenerateRequest{
		Prompt:            "resérvame una cita",
		DeclareActionTool: true,
		ToolCall:          &runner.ToolCall{ActionType: "schedule_appointment", Payload: map[string]any{"date": "2026-09-01"}},
		ToolResult:        map[string]any{"status": "ok"},
	})

	require.NoError(t, err)
	require.Len(t, captured.Contents, 3)

	call := captured.Contents[1]
	require.Equal(t, "model", call.Role)
	require.NotNil(t, call.Parts[0].FunctionCall)
	require.Equal(t, runner.ActionToolName, call.Parts[0].FunctionCall.Name)
	require.Equal(t, "schedule_appointment", call.Parts[0].FunctionCall.Args["actionType"])

	fr := captured.Contents[2]
	require.Equal(t, "user", fr.Role)
	require.NotNil(t, fr.Parts[0].FunctionResponse)
	require.Equal(t, map[string]any{"result": map[string]any{"status": "ok"}}, fr.Parts[0].FunctionResponse.Response)
}

func TestGenerateErrorStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	_, err := testGeminiClient(server.URL).Generate(context.Background(), runner.GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestGenerateEmptyCandidatesIsError(t *testing.T) {
	server := newGeminiServer(t, `{"candidates":[]}`, nil)
	defer server.Close()

	_, err := testGeminiClient(server.URL).Generate(context.Background(), runner.GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := &GeminiClient{}
	_, err := client.Generate(context.Background(), runner.GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
}
