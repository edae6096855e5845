package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DBDSN          string
	LogFile        string
	CourierBaseURL string
	CourierAPIKey  string
}

func Load() Config {
	// .env is optional; env vars win.
	_ = godotenv.Load()

	cfg := Config{
		Addr:           getenv("ADDR", ":8080"),
		DBDSN:          getenv("DB_DSN", "swiftkart.db"),
		LogFile:        getenv("LOG_FILE", ""),
		CourierBaseURL: getenv("COURIER_BASE_URL", ""),
		CourierAPIKey:  getenv("COURIER_API_KEY", ""),
	}
	log.Printf("[config] ADDR=%s DB_DSN=%s COURIER=%v", cfg.Addr, cfg.DBDSN, cfg.CourierBaseURL != "")
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
