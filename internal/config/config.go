package config

import (
	"errors"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewViper),
	fx.Provide(Load),
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	NotificationModeQueue   = "queue"
	NotificationModeWebhook = "webhook"
	NotificationModeNone    = "none"
)

type Config struct {
	AppName     string `mapstructure:"name"`
	Environment string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`

	HTTP         HTTPConfig         `mapstructure:"http"`
	DB           DBConfig           `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Smoobu       SmoobuConfig       `mapstructure:"smoobu"`
	Rates        RatesConfig        `mapstructure:"rates"`
	Fees         FeeConfig          `mapstructure:"fees"`
	Booking      BookingConfig      `mapstructure:"booking"`
	Notification NotificationConfig `mapstructure:"notification"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

type HTTPConfig struct {
	Addr               string   `mapstructure:"addr"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type DBConfig struct {
	Type         string `mapstructure:"type"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type SmoobuConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerSecond float64       `mapstructure:"rps"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type RatesConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// FeeConfig holds the platform defaults used when a broker has no override.
type FeeConfig struct {
	DefaultPercent     int `mapstructure:"default_percent"`
	WithholdingPercent int `mapstructure:"withholding_percent"`
}

type BookingConfig struct {
	Currency  string `mapstructure:"currency"`
	MaxNights int    `mapstructure:"max_nights"`
}

type NotificationConfig struct {
	Mode        string `mapstructure:"mode"`
	WebhookURL  string `mapstructure:"webhook_url"`
	Concurrency int    `mapstructure:"concurrency"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// NewViper builds the viper instance with defaults applied. A local .env file
// is loaded first so its values are visible through AutomaticEnv.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "bookingportal")
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_allowed_origins", []string{"*"})

	v.SetDefault("db.type", "postgres")
	v.SetDefault("db.dsn", "host=localhost user=postgres password=postgres dbname=bookingportal port=5432 sslmode=disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")

	v.SetDefault("smoobu.base_url", "https://login.smoobu.com/api")
	v.SetDefault("smoobu.api_key", "")
	v.SetDefault("smoobu.rps", 2.0)
	v.SetDefault("smoobu.burst", 4)
	v.SetDefault("smoobu.timeout", 10*time.Second)

	v.SetDefault("rates.cache_ttl", 5*time.Minute)

	v.SetDefault("fees.default_percent", 10)
	v.SetDefault("fees.withholding_percent", 21)

	v.SetDefault("booking.currency", "EUR")
	v.SetDefault("booking.max_nights", 365)

	v.SetDefault("notification.mode", NotificationModeNone)
	v.SetDefault("notification.webhook_url", "")
	v.SetDefault("notification.concurrency", 5)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.protocol", "http")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads the optional config file and decodes the merged settings.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Booking.Currency = strings.ToUpper(strings.TrimSpace(cfg.Booking.Currency))
	cfg.Notification.Mode = strings.ToLower(strings.TrimSpace(cfg.Notification.Mode))
	return cfg, nil
}

// Watch re-decodes the configuration whenever the backing file changes and
// hands the result to onChange. It is a no-op when no config file was found.
func Watch(v *viper.Viper, onChange func(Config, error)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(decode(v))
	})
	v.WatchConfig()
}
