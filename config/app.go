package config

import (
	"os"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// Shared secret the payment gateway signs callbacks with (HMAC-SHA256 over raw body).
	PaymentWebhookSecret string
	// Bearer credential guarding the HTTP cron trigger endpoints.
	CronSecret string
	// Unpaid orders older than this are auto-cancelled by the sweeper.
	OrderRetention time.Duration
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:              os.Getenv("APP_NAME"),
			Port:                 os.Getenv("PORT"),
			Env:                  os.Getenv("APP_ENV"),
			Debug:                os.Getenv("DEBUG") == "true",
			PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
			CronSecret:           os.Getenv("CRON_SECRET"),
			OrderRetention:       orderRetention(),
		}
	})
}

func orderRetention() time.Duration {
	if v := os.Getenv("ORDER_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 7 * 24 * time.Hour
}
