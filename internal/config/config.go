package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	timex "github.com/ferdiebergado/storyboard/internal/pkg/time"
)

type App struct {
	Env      string `json:"env,omitempty" env:"ENV"`
	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`
	LogFile  string `json:"log_file,omitempty" env:"LOG_FILE"`
}

type Server struct {
	URL             string         `json:"url,omitempty" env:"URL"`
	Port            int            `json:"port,omitempty" env:"PORT"`
	AllowedOrigins  string         `json:"allowed_origins,omitempty" env:"ALLOWED_ORIGINS"`
	ReadTimeout     timex.Duration `json:"read_timeout,omitempty"`
	WriteTimeout    timex.Duration `json:"write_timeout,omitempty"`
	IdleTimeout     timex.Duration `json:"idle_timeout,omitempty"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout,omitempty"`
	MaxBodyBytes    int64          `json:"max_body_bytes,omitempty"`
}

type DB struct {
	Driver          string         `json:"driver,omitempty"`
	MaxOpenConns    int            `json:"max_open_conns,omitempty"`
	MaxIdleConns    int            `json:"max_idle_conns,omitempty"`
	ConnMaxIdleTime timex.Duration `json:"conn_max_idle_time,omitempty"`
	ConnMaxLifetime timex.Duration `json:"conn_max_lifetime,omitempty"`
	PingTimeout     timex.Duration `json:"ping_timeout,omitempty"`
}

type JWT struct {
	JTILength  uint32         `json:"jti_length,omitempty"`
	Issuer     string         `json:"issuer,omitempty"`
	TTL        timex.Duration `json:"ttl,omitempty"`
	RefreshTTL timex.Duration `json:"refresh_ttl,omitempty"`
	ServiceTTL timex.Duration `json:"service_ttl,omitempty"`
}

type Cookie struct {
	Name   string         `json:"name,omitempty"`
	MaxAge timex.Duration `json:"max_age,omitempty"`
}

type CSRF struct {
	CookieName   string         `json:"cookie_name,omitempty"`
	HeaderName   string         `json:"header_name,omitempty"`
	TokenLength  uint32         `json:"token_length,omitempty"`
	CookieMaxAge timex.Duration `json:"cookie_max_age,omitempty"`
}

type Email struct {
	Templates string         `json:"templates,omitempty"`
	Layout    string         `json:"layout,omitempty"`
	Sender    string         `json:"sender,omitempty" env:"EMAIL_SENDER"`
	VerifyTTL timex.Duration `json:"verify_ttl,omitempty"`
}

// SMTP is read from the environment only.
type SMTP struct {
	Host     string `json:"-" env:"SMTP_HOST"`
	Port     int    `json:"-" env:"SMTP_PORT"`
	User     string `json:"-" env:"SMTP_USER"`
	Password string `json:"-" env:"SMTP_PASS"`
}

type Argon2 struct {
	Memory     uint32 `json:"memory,omitempty"`
	Iterations uint32 `json:"iterations,omitempty"`
	Threads    uint8  `json:"threads,omitempty"`
	SaltLength uint32 `json:"salt_length,omitempty"`
	KeyLength  uint32 `json:"key_length,omitempty"`
}

// Functions configures the serverless function gateway that hosts scene
// segmentation, image generation and checkout.
type Functions struct {
	BaseURL         string         `json:"base_url,omitempty" env:"FUNCTIONS_URL"`
	Timeout         timex.Duration `json:"timeout,omitempty"`
	MaxRetries      uint           `json:"max_retries,omitempty"`
	InitialInterval timex.Duration `json:"initial_interval,omitempty"`
	MaxInterval     timex.Duration `json:"max_interval,omitempty"`
	Multiplier      float64        `json:"multiplier,omitempty"`
	Jitter          float64        `json:"jitter,omitempty"`
}

type ImageGen struct {
	CreditCost int    `json:"credit_cost,omitempty"`
	Model      string `json:"model,omitempty" env:"IMAGE_MODEL"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

type Gateway struct {
	AdminURL string         `json:"admin_url,omitempty" env:"ADMIN_GATEWAY_URL"`
	Timeout  timex.Duration `json:"timeout,omitempty"`
}

type Billing struct {
	CatalogFile   string `json:"catalog_file,omitempty" env:"BILLING_CATALOG"`
	SignupCredits int    `json:"signup_credits,omitempty"`
	SuccessURL    string `json:"success_url,omitempty"`
	CancelURL     string `json:"cancel_url,omitempty"`
	WebhookSecret string `json:"-" env:"BILLING_WEBHOOK_SECRET"`
}

type Placement struct {
	HistoryLimit      int `json:"history_limit,omitempty"`
	SentencesPerScene int `json:"sentences_per_scene,omitempty"`
}

type Telemetry struct {
	ServiceName string `json:"service_name,omitempty"`
	Endpoint    string `json:"-" env:"OTEL_EXPORTER_ENDPOINT"`
}

type Config struct {
	App       *App       `json:"app,omitempty"`
	Server    *Server    `json:"server,omitempty"`
	DB        *DB        `json:"db,omitempty"`
	JWT       *JWT       `json:"jwt,omitempty"`
	Cookie    *Cookie    `json:"cookie,omitempty"`
	CSRF      *CSRF      `json:"csrf,omitempty"`
	Email     *Email     `json:"email,omitempty"`
	SMTP      *SMTP      `json:"-"`
	Argon2    *Argon2    `json:"argon2,omitempty"`
	Functions *Functions `json:"functions,omitempty"`
	ImageGen  *ImageGen  `json:"image_gen,omitempty"`
	Gateway   *Gateway   `json:"gateway,omitempty"`
	Billing   *Billing   `json:"billing,omitempty"`
	Placement *Placement `json:"placement,omitempty"`
	Telemetry *Telemetry `json:"telemetry,omitempty"`
}

func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("app", c.App),
		slog.Any("server", c.Server),
		slog.Any("db", c.DB),
		slog.Any("jwt", c.JWT),
		slog.Any("cookie", c.Cookie),
		slog.Any("csrf", c.CSRF),
		slog.Any("email", c.Email),
		slog.Any("argon2", c.Argon2),
		slog.Any("functions", c.Functions),
		slog.Any("image_gen", c.ImageGen),
		slog.Any("gateway", c.Gateway),
		slog.String("billing_catalog", c.Billing.CatalogFile),
		slog.Any("placement", c.Placement),
		slog.String("telemetry_service", c.Telemetry.ServiceName),
	)
}

func minutes(n int) timex.Duration { return timex.Duration{Duration: time.Duration(n) * time.Minute} }
func seconds(n int) timex.Duration { return timex.Duration{Duration: time.Duration(n) * time.Second} }
func millis(n int) timex.Duration  { return timex.Duration{Duration: time.Duration(n) * time.Millisecond} }

// Defaults returns a fully populated configuration. Values from the config
// file and the environment are layered on top of it.
func Defaults() *Config {
	return &Config{
		App: &App{Env: "development", LogLevel: "info"},
		Server: &Server{
			URL:             "http://localhost:8888",
			Port:            8888,
			AllowedOrigins:  "http://localhost:3000",
			ReadTimeout:     seconds(10),
			WriteTimeout:    seconds(120),
			IdleTimeout:     seconds(60),
			ShutdownTimeout: seconds(10),
			MaxBodyBytes:    1 << 20,
		},
		DB: &DB{
			Driver:          "pgx",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxIdleTime: minutes(5),
			ConnMaxLifetime: minutes(30),
			PingTimeout:     seconds(5),
		},
		JWT: &JWT{
			JTILength:  8,
			Issuer:     "storyboard",
			TTL:        minutes(15),
			RefreshTTL: minutes(60 * 24 * 7),
			ServiceTTL: minutes(5),
		},
		Cookie: &Cookie{Name: "refresh_token", MaxAge: minutes(60 * 24 * 7)},
		CSRF: &CSRF{
			CookieName:   "csrf_token",
			HeaderName:   "X-CSRF-Token",
			TokenLength:  32,
			CookieMaxAge: minutes(60 * 24),
		},
		Email: &Email{
			Templates: "web/templates",
			Layout:    "layout.html",
			Sender:    "no-reply@storyboard.local",
			VerifyTTL: minutes(60 * 24),
		},
		SMTP: &SMTP{},
		Argon2: &Argon2{
			Memory:     65536,
			Iterations: 1,
			Threads:    4,
			SaltLength: 16,
			KeyLength:  32,
		},
		Functions: &Functions{
			BaseURL:         "http://localhost:54321/functions/v1",
			Timeout:         seconds(90),
			MaxRetries:      4,
			InitialInterval: millis(500),
			MaxInterval:     seconds(8),
			Multiplier:      2,
			Jitter:          0.3,
		},
		ImageGen:  &ImageGen{CreditCost: 1, Model: "flux", Width: 1344, Height: 768},
		Gateway:   &Gateway{AdminURL: "http://localhost:54321/functions/v1/admin-gateway", Timeout: seconds(30)},
		Billing: &Billing{
			CatalogFile:   "catalog.yaml",
			SignupCredits: 10,
			SuccessURL:    "http://localhost:3000/billing/success",
			CancelURL:     "http://localhost:3000/billing/cancel",
		},
		Placement: &Placement{HistoryLimit: 100, SentencesPerScene: 4},
		Telemetry: &Telemetry{ServiceName: "storyboard"},
	}
}

// Load reads the JSON config file over the defaults and applies environment
// overrides.
func Load(cfgFile string) (*Config, error) {
	slog.Info("Loading config...")
	cfg := Defaults()
	if err := parseCfgFile(cfgFile, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	slog.Info("Config loaded.", "config_file", cfgFile, slog.Any("config", cfg))
	return cfg, nil
}

func parseCfgFile(cfgFile string, cfg *Config) error {
	cfgFile = filepath.Clean(cfgFile)
	configFile, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", cfgFile, err)
	}

	if err := json.Unmarshal(configFile, cfg); err != nil {
		return fmt.Errorf("decode json config %s: %w", cfgFile, err)
	}

	return nil
}
