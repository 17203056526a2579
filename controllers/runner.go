package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"mibotpro/lifecycle"
	"mibotpro/runner"
	"mibotpro/tools"

	"github.com/gin-gonic/gin"
)

// newModelClient is a hook so tests can stub the hosted model.
var newModelClient = func() (runner.ModelClient, error) {
	apiKey := getenv("GEMINI_API_KEY", conf.AI.ApiKey)
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	return &tools.GeminiClient{
		APIKey: apiKey,
		Model:  getenv("GEMINI_MODEL", conf.AI.Model),
	}, nil
}

// newDispatcher is a hook so tests can stub the automation endpoint client.
var newDispatcher = func() runner.Dispatcher {
	return tools.NewAutomationClient(time.Duration(conf.Dispatch.TimeoutSeconds) * time.Second)
}

type RunBotRequest struct {
	Prompt  string           `json:"prompt" form:"prompt"`
	History []runner.Message `json:"history"`
}

type RunBotResponse struct {
	Reply    string                 `json:"reply"`
	Dispatch *runner.DispatchRecord `json:"dispatch,omitempty"`
}

// POST /api/configurations/:id/run
//
// The execution entry point for one conversation turn. The gate runs before
// anything else: a denied configuration never reaches prompt building, the
// model or the dispatcher.
func RunBot(c *gin.Context) {
	config, ok := loadOwnedConfiguration(c)
	if !ok {
		return
	}

	if denied := lifecycle.CanExecute(*config); denied != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":  denied.Message,
			"reason": denied.Reason,
		})
		return
	}

	var req RunBotRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		RespondError(c, "prompt is required", http.StatusBadRequest)
		return
	}

	model, err := newModelClient()
	if err != nil {
		RespondError(c, "AI model not configured", http.StatusInternalServerError)
		return
	}

	orchestrator := runner.New(model, newDispatcher())
	out := orchestrator.RunTurn(c.Request.Context(), *config, runner.TurnInput{
		Prompt:  req.Prompt,
		History: req.History,
	})

	RespondSuccess(c, RunBotResponse{Reply: out.Reply, Dispatch: out.Dispatch})
}
