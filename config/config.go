package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" or "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	// FrontendURL is where Stripe sends the user back after checkout.
	FrontendURL string `json:"frontend_url"`

	Security struct {
		JwtSecret           string `json:"jwt_secret"`
		RefreshCodeLen      int    `json:"refresh_code_len"`
		RefreshCodeMaxValid int    `json:"refresh_code_max_valid_days"`
	} `json:"security"`

	Stripe struct {
		// Secrets may also come from env (STRIPE_API_KEY,
		// STRIPE_WEBHOOK_SECRET); env wins when both are set.
		ApiKey        string `json:"api_key"`
		WebhookSecret string `json:"webhook_secret"`
	} `json:"stripe"`

	AI struct {
		ApiKey string `json:"api_key"` // or GEMINI_API_KEY
		Model  string `json:"model"`
	} `json:"ai"`

	Dispatch struct {
		TimeoutSeconds int `json:"timeout_seconds"`
	} `json:"dispatch"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (to avoid annoying nil/zero values)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:5173"
	}
	if c.Security.RefreshCodeLen <= 0 {
		c.Security.RefreshCodeLen = 32
	}
	if c.Security.RefreshCodeMaxValid <= 0 {
		c.Security.RefreshCodeMaxValid = 30
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Dispatch.TimeoutSeconds <= 0 {
		c.Dispatch.TimeoutSeconds = 15
	}

	return c
}
