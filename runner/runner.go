package runner

import (
	"context"
	"log"

	"mibotpro/models"
)

// ActionToolName is the single generic tool declared to the model. The model
// decides the action taxonomy per business; the platform just relays.
const ActionToolName = "trigger_action_webhook"

const apologyReply = "Lo siento, ha ocurrido un error al contactar con la IA. Por favor, inténtalo de nuevo en unos minutos."

// Message is one prior (role, text) pair of the conversation, caller-supplied
// and replayed verbatim. Roles are "user" and "model".
type Message struct {
	Role string `json:"role" form:"role"`
	Text string `json:"text" form:"text"`
}

// ToolCall is the model's structured request to trigger an external action.
type ToolCall struct {
	ActionType string         `json:"action_type"`
	Payload    map[string]any `json:"payload"`
}

// DispatchRecord is returned alongside the reply so the UI can show what the
// bot actually did against the business's automation endpoint.
type DispatchRecord struct {
	ActionType string         `json:"action_type"`
	Payload    map[string]any `json:"payload"`
	Result     map[string]any `json:"result"`
}

// GenerateRequest is one call to the hosted model. On the second round of a
// tool turn, ToolCall and ToolResult carry the invocation the model asked for
// and what the automation endpoint answered.
type GenerateRequest struct {
	SystemInstruction string
	History           []Message
	Prompt            string
	DeclareActionTool bool
	ToolCall          *ToolCall
	ToolResult        map[string]any
}

// GenerateResult is either plain text or a tool invocation request.
type GenerateResult struct {
	Text     string
	ToolCall *ToolCall
}

type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// Dispatcher performs the outbound automation call. Failures come back as a
// result value, never as an error: the orchestrator always has something to
// show the model and the end user.
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint string, actionType string, payload map[string]any) map[string]any
}

// Orchestrator drives exactly one user turn against the model, with at most
// one tool round-trip. Turn state lives in the call frame and is discarded
// after the reply.
type Orchestrator struct {
	model      ModelClient
	dispatcher Dispatcher
}

func New(model ModelClient, dispatcher Dispatcher) *Orchestrator {
	return &Orchestrator{model: model, dispatcher: dispatcher}
}

type TurnInput struct {
	Prompt  string
	History []Message
}

type TurnOutput struct {
	Reply    string
	Dispatch *DispatchRecord
}

// RunTurn always produces a reply. Model failures and malformed tool requests
// degrade to an apology; they never propagate. The caller is responsible for
// the execution gate: RunTurn assumes the configuration is allowed to run.
func (o *Orchestrator) RunTurn(ctx context.Context, config models.Configuration, in TurnInput) TurnOutput {
	req := GenerateRequest{
		SystemInstruction: BuildSystemInstruction(config),
		History:           in.History,
		Prompt:            in.Prompt,
		DeclareActionTool: config.AutomationEndpoint != "",
	}

	out, err := o.model.Generate(ctx, req)
	if err != nil {
		log.Printf("runner: configuration %s: model call failed: %v", config.ID, err)
		return TurnOutput{Reply: apologyReply}
	}

	if out.ToolCall == nil {
		return TurnOutput{Reply: out.Text}
	}

	// The model should only request the tool when it was declared, but a
	// hallucinated request must not crash the turn.
	if config.AutomationEndpoint == "" {
		log.Printf("runner: configuration %s: model requested %s without a configured endpoint", config.ID, ActionToolName)
		return TurnOutput{Reply: apologyReply}
	}

	call := *out.ToolCall
	if call.Payload == nil {
		call.Payload = map[string]any{}
	}

	result := o.dispatcher.Dispatch(ctx, config.AutomationEndpoint, call.ActionType, call.Payload)
	record := &DispatchRecord{
		ActionType: call.ActionType,
		Payload:    call.Payload,
		Result:     result,
	}

	// Second round: fold the tool result back in and ask for the final
	// natural-language reply.
	req.ToolCall = &call
	req.ToolResult = result

	final, err := o.model.Generate(ctx, req)
	if err != nil {
		log.Printf("runner: configuration %s: model call after dispatch failed: %v", config.ID, err)
		return TurnOutput{Reply: apologyReply, Dispatch: record}
	}

	return TurnOutput{Reply: final.Text, Dispatch: record}
}
