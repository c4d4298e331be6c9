package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, parsed from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	UseMemoryStore bool `env:"USE_MEMORY_STORE" envDefault:"false"`

	// ExposeOTPInResponse echoes the raw OTP code back in the /otp/send
	// response. Development-only escape hatch; forced off in production.
	ExposeOTPInResponse bool `env:"EXPOSE_OTP_IN_RESPONSE" envDefault:"false"`

	JWTSecret       string `env:"JWT_SECRET" envDefault:"seatlink-dev-secret"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"72"`

	AdminToken string `env:"ADMIN_TOKEN"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_PHONE_NUMBER"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("No .env file found - using environment variables")
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Production builds must never echo OTP codes, whatever the env says.
	if cfg.IsProduction() {
		cfg.ExposeOTPInResponse = false
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
