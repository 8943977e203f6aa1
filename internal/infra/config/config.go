package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	JWT      JWTSettings      `mapstructure:"jwt"`
	Brevo    BrevoSettings    `mapstructure:"brevo"`
	Google   GoogleSettings   `mapstructure:"google"`
	Reset    ResetSettings    `mapstructure:"reset"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	FrontendURL    string   `mapstructure:"frontend_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// BrevoSettings configures the transactional email provider.
type BrevoSettings struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
	BaseURL   string `mapstructure:"base_url"`
}

// GoogleSettings configures the Google OAuth client. Leaving the client id
// empty disables the Google login routes.
type GoogleSettings struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// ResetSettings configures the password recovery code lifecycle.
type ResetSettings struct {
	CodeTTL         time.Duration `mapstructure:"code_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("RAICES")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.frontend_url",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"jwt.secret",
		"jwt.token_ttl",
		"brevo.api_key",
		"brevo.from_email",
		"brevo.from_name",
		"brevo.base_url",
		"google.client_id",
		"google.client_secret",
		"google.redirect_url",
		"reset.code_ttl",
		"reset.cleanup_interval",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot safely start with.
// Secrets never get silent fallbacks.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("config: jwt secret is required (RAICES_JWT_SECRET)")
	}

	if c.IsProduction() {
		if strings.TrimSpace(c.Brevo.APIKey) == "" {
			return fmt.Errorf("config: brevo api key is required in production (RAICES_BREVO_API_KEY)")
		}
		if strings.TrimSpace(c.Brevo.FromEmail) == "" {
			return fmt.Errorf("config: brevo sender address is required in production (RAICES_BREVO_FROM_EMAIL)")
		}
	}

	if c.Google.ClientID != "" {
		if c.Google.ClientSecret == "" || c.Google.RedirectURL == "" {
			return fmt.Errorf("config: google oauth requires client secret and redirect url")
		}
	}

	return nil
}

// IsProduction reports whether the service runs with the production profile.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "raicesmx-auth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 3000)
	v.SetDefault("app.frontend_url", "http://localhost:5173")
	v.SetDefault("app.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "raices")
	v.SetDefault("postgres.password", "raices_password")
	v.SetDefault("postgres.database", "raicesmx")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("jwt.token_ttl", "168h")

	v.SetDefault("brevo.from_name", "RaícesMX")
	v.SetDefault("brevo.base_url", "https://api.brevo.com/v3/smtp/email")

	v.SetDefault("reset.code_ttl", "15m")
	v.SetDefault("reset.cleanup_interval", "1h")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "RAICES_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
