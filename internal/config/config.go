package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

type Configuration struct {
	Deployment  DeploymentConfig  `mapstructure:"deployment"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Landing     LandingConfig     `mapstructure:"landing"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level"`
}

// MarketplaceConfig covers both the outbound fulfillment API client and
// the inbound webhook token verification.
type MarketplaceConfig struct {
	APIBaseURL   string `mapstructure:"api_base_url"`
	APIVersion   string `mapstructure:"api_version"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// Resource is the marketplace API audience the client-credential
	// token is scoped to.
	Resource string `mapstructure:"resource"`

	// Inbound webhook token verification. Keys are discovered at
	// WebhookJWKSURL and cached with refresh-on-miss.
	WebhookIssuer   string `mapstructure:"webhook_issuer"`
	WebhookAudience string `mapstructure:"webhook_audience"`
	WebhookJWKSURL  string `mapstructure:"webhook_jwks_url"`
}

// LandingConfig drives the OAuth identity-linking handshake on the
// purchase landing flow.
type LandingConfig struct {
	AuthURL      string        `mapstructure:"auth_url"`
	TokenURL     string        `mapstructure:"token_url"`
	IssuerURL    string        `mapstructure:"issuer_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURL  string        `mapstructure:"redirect_url"`
	Scopes       []string      `mapstructure:"scopes"`
	FrontendURL  string        `mapstructure:"frontend_url"`
	StateTTL     time.Duration `mapstructure:"state_ttl"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewConfig loads configuration from config files and environment
// variables. Missing credentials or endpoints are fatal here, not at
// request time.
func NewConfig() (*Configuration, error) {
	// Load .env if present; environment still wins over file values.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SURVEYLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("marketplace.api_version", "2018-08-31")
	v.SetDefault("landing.scopes", []string{"openid", "profile", "email"})
	v.SetDefault("landing.state_ttl", 10*time.Minute)
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c *Configuration) Validate() error {
	missing := make([]string, 0)
	required := map[string]string{
		"marketplace.api_base_url":     c.Marketplace.APIBaseURL,
		"marketplace.token_url":        c.Marketplace.TokenURL,
		"marketplace.client_id":        c.Marketplace.ClientID,
		"marketplace.client_secret":    c.Marketplace.ClientSecret,
		"marketplace.resource":         c.Marketplace.Resource,
		"marketplace.webhook_issuer":   c.Marketplace.WebhookIssuer,
		"marketplace.webhook_audience": c.Marketplace.WebhookAudience,
		"marketplace.webhook_jwks_url": c.Marketplace.WebhookJWKSURL,
		"landing.auth_url":             c.Landing.AuthURL,
		"landing.token_url":            c.Landing.TokenURL,
		"landing.issuer_url":           c.Landing.IssuerURL,
		"landing.client_id":            c.Landing.ClientID,
		"landing.client_secret":        c.Landing.ClientSecret,
		"landing.redirect_url":         c.Landing.RedirectURL,
		"landing.frontend_url":         c.Landing.FrontendURL,
		"database.dsn":                 c.Database.DSN,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return ierr.NewError("missing required configuration").
			WithHint("Set the missing configuration keys before starting the server").
			WithReportableDetails(map[string]interface{}{
				"missing": missing,
			}).
			Mark(ierr.ErrSystem)
	}

	if c.Landing.StateTTL <= 0 || c.Landing.StateTTL > 30*time.Minute {
		return ierr.NewError("landing.state_ttl must be positive and bounded").
			WithHint("Use a short TTL such as 10m to close the replay window").
			Mark(ierr.ErrSystem)
	}

	return nil
}

// GetDefaultConfig returns a minimal configuration for scripts and the
// package-level logger before real configuration is loaded.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "api"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
	}
}
