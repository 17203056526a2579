package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"mibotpro/runner"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST API. It implements
// runner.ModelClient.
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewGeminiClientFromEnv builds a client from GEMINI_API_KEY / GEMINI_MODEL.
func NewGeminiClientFromEnv() (*GeminiClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	return &GeminiClient{
		APIKey: apiKey,
		Model:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),
	}, nil
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"function_declarations"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	GenerationConfig  map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// actionToolDeclaration is the one generic tool offered to the model: an
// action-type string plus a free-form payload object. Deliberately generic,
// so the model decides the action taxonomy per business.
func actionToolDeclaration() geminiFunctionDeclaration {
	return geminiFunctionDeclaration{
		Name:        runner.ActionToolName,
		Description: "Ejecuta una acción en el sistema de automatización externo del negocio (reservar cita, registrar pedido, enviar mensaje...).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"actionType": map[string]any{
					"type":        "string",
					"description": "Tipo de acción (ej: schedule_appointment, check_order, send_message).",
				},
				"payload": map[string]any{
					"type":        "object",
					"description": "Datos necesarios para la acción.",
				},
			},
			"required": []string{"actionType", "payload"},
		},
	}
}

// Generate sends one generateContent request built from the turn state.
func (g *GeminiClient) Generate(ctx context.Context, req runner.GenerateRequest) (runner.GenerateResult, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return runner.GenerateResult{}, fmt.Errorf("gemini api key not set")
	}
	model := g.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	body := geminiRequest{
		Contents:         buildContents(req),
		GenerationConfig: map[string]any{"temperature": 0.7},
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	if req.DeclareActionTool {
		body.Tools = []geminiTool{{
			FunctionDeclarations: []geminiFunctionDeclaration{actionToolDeclaration()},
		}}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return runner.GenerateResult{}, err
	}

	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, model, g.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return runner.GenerateResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return runner.GenerateResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return runner.GenerateResult{}, fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return runner.GenerateResult{}, err
	}
	if len(parsed.Candidates) == 0 {
		return runner.GenerateResult{}, fmt.Errorf("empty response from model (no candidates)")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			return runner.GenerateResult{ToolCall: toolCallFromArgs(part.FunctionCall.Args)}, nil
		}
		if strings.TrimSpace(part.Text) != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(part.Text)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return runner.GenerateResult{}, fmt.Errorf("empty response from model (no text parts)")
	}
	return runner.GenerateResult{Text: out}, nil
}

func buildContents(req runner.GenerateRequest) []geminiContent {
	contents := make([]geminiContent, 0, len(req.History)+3)
	for _, m := range req.History {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Text}},
		})
	}

	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: req.Prompt}},
	})

	// Tool round-trip: replay the model's invocation and attach the endpoint's
	// answer as a synthetic function response.
	if req.ToolCall != nil {
		contents = append(contents, geminiContent{
			Role: "model",
			Parts: []geminiPart{{FunctionCall: &geminiFunctionCall{
				Name: runner.ActionToolName,
				Args: map[string]any{
					"actionType": req.ToolCall.ActionType,
					"payload":    req.ToolCall.Payload,
				},
			}}},
		})
		contents = append(contents, geminiContent{
			Role: "user",
			Parts: []geminiPart{{FunctionResponse: &geminiFunctionResponse{
				Name:     runner.ActionToolName,
				Response: map[string]any{"result": req.ToolResult},
			}}},
		})
	}

	return contents
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func toolCallFromArgs(args map[string]any) *runner.ToolCall {
	call := &runner.ToolCall{Payload: map[string]any{}}
	if v, ok := args["actionType"].(string); ok {
		call.ActionType = v
	}
	if v, ok := args["payload"].(map[string]any); ok {
		call.Payload = v
	}
	return call
}
