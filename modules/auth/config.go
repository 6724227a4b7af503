package auth

import "time"

// Config holds the auth module configuration.
type Config struct {
	AppName         string        `env:"APP_NAME" envDefault:"Memberboard"`
	BaseURL         string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	TokenSecret     string        `env:"TOKEN_SECRET,required"`
	ConfirmationTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" envDefault:"24h"`
	ResetTTL        time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}
