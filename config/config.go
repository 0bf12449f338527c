// Package config loads environment variables (and bound CLI flags) into a typed Config.
// It is read once at startup and passed down explicitly; nothing else reads the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/onnwee/livecheck/live"
)

// Environment keys.
const (
	KeyWebhookURL     = "DISCORD_WEBHOOK_URL"
	KeyBotToken       = "DISCORD_BOT_TOKEN"
	KeyChannelID      = "PINGCORD_CHANNEL_ID"
	KeyMaxPages       = "SCAN_MAX_PAGES"
	KeyPageSize       = "SCAN_PAGE_SIZE"
	KeyStreamerName   = "STREAMER_NAME"
	KeyDryRun         = "DRY_RUN"
	KeyPushgatewayURL = "METRICS_PUSHGATEWAY_URL"
	KeyOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// DefaultStreamerName is used in the "days since" report.
const DefaultStreamerName = "小毛"

// ErrMissingEnv is returned when a required variable is empty.
var ErrMissingEnv = errors.New("missing required env")

type Config struct {
	// Discord
	WebhookURL string
	BotToken   string
	ChannelID  string

	// Scan budget
	MaxPages int
	PageSize int

	// Report
	StreamerName string
	DryRun       bool

	// Telemetry
	PushgatewayURL string
	OTLPEndpoint   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxPages, live.DefaultMaxPages)
	v.SetDefault(KeyPageSize, live.DefaultPageSize)
	v.SetDefault(KeyStreamerName, DefaultStreamerName)
	v.SetDefault(KeyDryRun, false)
}

// Load reads configuration from v (environment plus any bound flags) and validates it.
// A nil v reads the process environment.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()
	SetDefaults(v)

	cfg := &Config{
		WebhookURL:     strings.TrimSpace(v.GetString(KeyWebhookURL)),
		BotToken:       strings.TrimSpace(v.GetString(KeyBotToken)),
		ChannelID:      strings.TrimSpace(v.GetString(KeyChannelID)),
		MaxPages:       v.GetInt(KeyMaxPages),
		PageSize:       v.GetInt(KeyPageSize),
		StreamerName:   v.GetString(KeyStreamerName),
		DryRun:         v.GetBool(KeyDryRun),
		PushgatewayURL: v.GetString(KeyPushgatewayURL),
		OTLPEndpoint:   v.GetString(KeyOTLPEndpoint),
	}

	if cfg.MaxPages <= 0 {
		cfg.MaxPages = live.DefaultMaxPages
	}
	switch {
	case cfg.PageSize <= 0:
		cfg.PageSize = live.DefaultPageSize
	case cfg.PageSize > live.MaxPageSize:
		cfg.PageSize = live.MaxPageSize
	}
	if cfg.StreamerName == "" {
		cfg.StreamerName = DefaultStreamerName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the three required values are present.
func (c *Config) Validate() error {
	var missing []string
	if c.WebhookURL == "" {
		missing = append(missing, KeyWebhookURL)
	}
	if c.BotToken == "" {
		missing = append(missing, KeyBotToken)
	}
	if c.ChannelID == "" {
		missing = append(missing, KeyChannelID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: need %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}
