// Package config loads process configuration from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	liststrings "regdesk/pkg/platform/strings"
)

// Sheet backends.
const (
	BackendGoogle = "google"
	BackendMemory = "memory"
)

// Notification providers.
const (
	ProviderLINE     = "line"
	ProviderTelegram = "telegram"
)

// Config is the fully resolved configuration.
type Config struct {
	Port           int
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration
	StaticDir      string
	CORSOrigins    []string
	TrustedProxies []string

	RequireBirthday bool
	MaskNames       bool

	Sheet     Sheet
	Schema    Schema
	Notify    Notify
	Recaptcha Recaptcha
	RateLimit RateLimit
	Tracing   Tracing
}

// Sheet locates the backing spreadsheet.
type Sheet struct {
	Backend         string
	ID              string
	Name            string
	ReadColumns     string
	Credentials     string
	CredentialsPath string
	SeedFile        string
}

// Schema maps logical registration fields to header texts.
type Schema struct {
	IDNumber       string
	Name           string
	CourseName     string
	CourseDate     string
	Status         string
	Birthday       string
	HandlerContact string
	StatusColumn   string
	ConfirmedLabel string
	CancelledLabel string
}

type Notify struct {
	Provider      string
	LINEToken     string
	LINEEndpoint  string
	TelegramToken string
	Timeout       time.Duration
}

type Recaptcha struct {
	Secret   string
	MinScore float64
	Bypass   bool
	Endpoint string
}

type RateLimit struct {
	Window time.Duration
	Max    int
}

type Tracing struct {
	Enabled  bool
	Exporter string
}

// columnLetters matches the range models.ColumnIndex accepts, A through ZZZ.
var columnLetters = regexp.MustCompile(`^[A-Z]{1,3}$`)

// Defaults registers every key with its default value. Keys use dots; the
// environment variable is the upper-cased key with dots replaced by
// underscores (schema.id_number -> SCHEMA_ID_NUMBER).
func Defaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("static_dir", "public")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("require_birthday", false)
	v.SetDefault("mask_names", false)

	v.SetDefault("sheet_backend", BackendGoogle)
	v.SetDefault("google_sheet_id", "")
	v.SetDefault("sheet_name", "registrations")
	v.SetDefault("sheet_read_columns", "A:Z")
	v.SetDefault("google_credentials", "")
	v.SetDefault("google_credentials_path", "")
	v.SetDefault("sheet_seed_file", "")

	v.SetDefault("schema.id_number", "身分證字號")
	v.SetDefault("schema.name", "姓名")
	v.SetDefault("schema.course_name", "課程名稱")
	v.SetDefault("schema.course_date", "開課日期")
	v.SetDefault("schema.status", "狀態")
	v.SetDefault("schema.birthday", "生日")
	v.SetDefault("schema.handler_contact_id", "承辦人LINE ID")
	v.SetDefault("schema.status_column", "E")
	v.SetDefault("schema.status_labels.confirmed", "已確認")
	v.SetDefault("schema.status_labels.cancelled", "已取消")

	v.SetDefault("notify_provider", ProviderLINE)
	v.SetDefault("line_channel_access_token", "")
	v.SetDefault("line_push_endpoint", "https://api.line.me/v2/bot/message/push")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("notify_timeout", 10*time.Second)

	v.SetDefault("recaptcha_secret_key", "")
	v.SetDefault("recaptcha_min_score", 0.3)
	v.SetDefault("recaptcha_bypass", false)
	v.SetDefault("recaptcha_endpoint", "https://www.google.com/recaptcha/api/siteverify")

	v.SetDefault("rate_limit_window_ms", 15*60*1000)
	v.SetDefault("rate_limit_max", 100)

	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tracing_exporter", "stdout")
}

// Load reads .env (when present), then the environment and configFile
// (optional YAML), and returns the validated configuration.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	v := viper.New()
	cfg, err := FromViper(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper resolves configuration from v without validating it.
func FromViper(v *viper.Viper, configFile string) (*Config, error) {
	Defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	return &Config{
		Port:            v.GetInt("port"),
		Environment:     v.GetString("environment"),
		LogLevel:        v.GetString("log_level"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		StaticDir:       v.GetString("static_dir"),
		CORSOrigins:     liststrings.SplitList(v.GetString("cors_origins")),
		TrustedProxies:  liststrings.SplitList(v.GetString("trusted_proxies")),
		RequireBirthday: v.GetBool("require_birthday"),
		MaskNames:       v.GetBool("mask_names"),
		Sheet: Sheet{
			Backend:         strings.ToLower(v.GetString("sheet_backend")),
			ID:              v.GetString("google_sheet_id"),
			Name:            v.GetString("sheet_name"),
			ReadColumns:     v.GetString("sheet_read_columns"),
			Credentials:     v.GetString("google_credentials"),
			CredentialsPath: v.GetString("google_credentials_path"),
			SeedFile:        v.GetString("sheet_seed_file"),
		},
		Schema: Schema{
			IDNumber:       v.GetString("schema.id_number"),
			Name:           v.GetString("schema.name"),
			CourseName:     v.GetString("schema.course_name"),
			CourseDate:     v.GetString("schema.course_date"),
			Status:         v.GetString("schema.status"),
			Birthday:       v.GetString("schema.birthday"),
			HandlerContact: v.GetString("schema.handler_contact_id"),
			StatusColumn:   strings.ToUpper(strings.TrimSpace(v.GetString("schema.status_column"))),
			ConfirmedLabel: v.GetString("schema.status_labels.confirmed"),
			CancelledLabel: v.GetString("schema.status_labels.cancelled"),
		},
		Notify: Notify{
			Provider:      strings.ToLower(v.GetString("notify_provider")),
			LINEToken:     v.GetString("line_channel_access_token"),
			LINEEndpoint:  v.GetString("line_push_endpoint"),
			TelegramToken: v.GetString("telegram_bot_token"),
			Timeout:       v.GetDuration("notify_timeout"),
		},
		Recaptcha: Recaptcha{
			Secret:   v.GetString("recaptcha_secret_key"),
			MinScore: v.GetFloat64("recaptcha_min_score"),
			Bypass:   v.GetBool("recaptcha_bypass"),
			Endpoint: v.GetString("recaptcha_endpoint"),
		},
		RateLimit: RateLimit{
			Window: time.Duration(v.GetInt64("rate_limit_window_ms")) * time.Millisecond,
			Max:    v.GetInt("rate_limit_max"),
		},
		Tracing: Tracing{
			Enabled:  v.GetBool("tracing_enabled"),
			Exporter: strings.ToLower(v.GetString("tracing_exporter")),
		},
	}, nil
}

// Validate fails fast on configuration that would break every request.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.Sheet.Backend {
	case BackendGoogle:
		if c.Sheet.ID == "" {
			errs = append(errs, errors.New("GOOGLE_SHEET_ID is required"))
		}
		if c.Sheet.Credentials == "" && c.Sheet.CredentialsPath == "" {
			errs = append(errs, errors.New("GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_PATH is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("SHEET_BACKEND must be %q or %q, got %q", BackendGoogle, BackendMemory, c.Sheet.Backend))
	}
	if strings.TrimSpace(c.Sheet.Name) == "" {
		errs = append(errs, errors.New("SHEET_NAME is required"))
	}
	if strings.TrimSpace(c.Schema.IDNumber) == "" {
		errs = append(errs, errors.New("schema.id_number header is required"))
	}
	if c.RequireBirthday && strings.TrimSpace(c.Schema.Birthday) == "" {
		errs = append(errs, errors.New("schema.birthday header is required when REQUIRE_BIRTHDAY is set"))
	}
	if strings.TrimSpace(c.Schema.CourseName) == "" {
		errs = append(errs, errors.New("schema.course_name header is required"))
	}
	if !columnLetters.MatchString(c.Schema.StatusColumn) {
		errs = append(errs, fmt.Errorf("schema.status_column must be a column letter, got %q", c.Schema.StatusColumn))
	}
	if c.Schema.ConfirmedLabel == "" || c.Schema.CancelledLabel == "" || c.Schema.ConfirmedLabel == c.Schema.CancelledLabel {
		errs = append(errs, errors.New("schema status labels must be non-empty and distinct"))
	}
	if c.Recaptcha.MinScore < 0 || c.Recaptcha.MinScore > 1 {
		errs = append(errs, fmt.Errorf("RECAPTCHA_MIN_SCORE must be within [0,1], got %v", c.Recaptcha.MinScore))
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW_MS and RATE_LIMIT_MAX must be positive"))
	}
	switch c.Notify.Provider {
	case ProviderLINE, ProviderTelegram:
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_PROVIDER must be %q or %q, got %q", ProviderLINE, ProviderTelegram, c.Notify.Provider))
	}
	if c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	switch c.Tracing.Exporter {
	case "stdout", "none":
	default:
		errs = append(errs, fmt.Errorf("TRACING_EXPORTER must be stdout or none, got %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}

// VerificationBypassed reports whether human verification is skipped.
func (c *Config) VerificationBypassed() bool {
	return c.Recaptcha.Bypass || c.Recaptcha.Secret == ""
}

// NotificationCredential returns the token for the configured provider.
func (c *Config) NotificationCredential() string {
	if c.Notify.Provider == ProviderTelegram {
		return c.Notify.TelegramToken
	}
	return c.Notify.LINEToken
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
