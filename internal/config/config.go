package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	FunpayToken   string `env:"FUNPAY_AUTH_TOKEN,required"`
	FunpayBaseURL string `env:"FUNPAY_BASE_URL" envDefault:"https://funpay.com/api"`

	SteamAPIUser    string `env:"STEAM_API_USER,required"`
	SteamAPIPass    string `env:"STEAM_API_PASS,required"`
	SteamAPIBaseURL string `env:"STEAM_API_BASE_URL,required"`

	MinBalance     float64 `env:"MIN_BALANCE" envDefault:"5"`
	AutoRefund     bool    `env:"AUTO_REFUND" envDefault:"true"`
	AutoDeactivate bool    `env:"AUTO_DEACTIVATE" envDefault:"true"`

	CategoryID string `env:"CATEGORY_ID" envDefault:"1086"`
	ServiceID  int    `env:"SERVICE_ID" envDefault:"1"`

	// Optional operator chat for refund-failure alerts.
	AdminChatID string `env:"ADMIN_CHAT_ID"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	HTTPRequestTimeout   time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"20s"`
	TokenRefreshInterval time.Duration `env:"TOKEN_REFRESH_INTERVAL" envDefault:"50m"`
	PollDelay            time.Duration `env:"POLL_DELAY" envDefault:"3s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
