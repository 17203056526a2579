package main

import (
	"log"
	"os"
	"strings"

	"mibotpro/config"
	"mibotpro/controllers"
	dbpkg "mibotpro/db"
	"mibotpro/router"
	"mibotpro/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// =====================
// Expected ENV
// =====================
//
// Server
// - CONFIG_PATH                (default: config.json)
//
// Stripe
// - STRIPE_API_KEY             (secret key; checkout session creation)
// - STRIPE_WEBHOOK_SECRET      (signing secret for the webhook endpoint)
//
// Gemini
// - GEMINI_API_KEY
// - GEMINI_MODEL               (default: gemini-2.5-flash)
//
// Misc
// - JWT_SECRET                 (overrides config.json)
// - AUTOMIGRATE=1              (run gorm automigrate on boot)
// - STALE_CHECKOUT_HOURS       (checkout reaper window, default 24)
//
// =====================

func main() {
	// .env is optional; real deployments set env directly.
	_ = godotenv.Load()

	conf := config.Get(getenv("CONFIG_PATH", "config.json"))

	dbpkg.SetConfigurations(conf)
	controllers.SetConfigurations(conf)

	database, err := dbpkg.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	router.Initialize(r, conf)

	workers.StartCheckoutReaper(database)

	log.Printf("MiBotPro API listening on :%s", conf.ApiPort)
	log.Fatal(r.Run(":" + conf.ApiPort))
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
