package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Environment string `env:"APP_ENV" env-default:"development" yaml:"environment"`

	HTTP struct {
		Addr              string        `env:"APP_ADDR" env-default:":8080" yaml:"addr"`
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"30s" yaml:"readTimeout"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s" yaml:"writeTimeout"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" env-default:"1048576" yaml:"maxBodyBytes"`
		RateLimitPerMin   int           `env:"RATE_LIMIT_PER_MINUTE" env-default:"60" yaml:"rateLimitPerMinute"`
	} `yaml:"http"`

	JWTSecret string `env:"JWT_SECRET" yaml:"jwtSecret"`

	Payroll struct {
		// RatesFile is an optional YAML rate table; empty means the shipped defaults.
		RatesFile    string `env:"PAYROLL_RATES_FILE" yaml:"ratesFile"`
		Currency     string `env:"PAYROLL_CURRENCY" env-default:"KES" yaml:"currency"`
		JobQueueSize int    `env:"PAYROLL_JOB_QUEUE_SIZE" env-default:"128" yaml:"jobQueueSize"`
	} `yaml:"payroll"`

	Metrics struct {
		Enabled bool   `env:"METRICS_ENABLED" env-default:"true" yaml:"enabled"`
		Path    string `env:"METRICS_PATH" env-default:"/metrics" yaml:"path"`
	} `yaml:"metrics"`

	Email struct {
		Enabled  bool   `env:"EMAIL_ENABLED" env-default:"false" yaml:"enabled"`
		From     string `env:"EMAIL_FROM" env-default:"payroll@example.com" yaml:"from"`
		SMTPHost string `env:"SMTP_HOST" yaml:"smtpHost"`
		SMTPPort int    `env:"SMTP_PORT" env-default:"587" yaml:"smtpPort"`
		SMTPUser string `env:"SMTP_USER" yaml:"smtpUser"`
		SMTPPass string `env:"SMTP_PASSWORD" yaml:"smtpPassword"`
		UseTLS   bool   `env:"SMTP_USE_TLS" env-default:"true" yaml:"useTLS"`
	} `yaml:"email"`

	ShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"shutdownTimeout"`
}

// Load reads the YAML file at path when given, then applies environment
// overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if strings.TrimSpace(path) == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(path, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.HTTP.MaxBodyBytes < 1024 {
		return errors.New("MAX_BODY_BYTES must be at least 1024")
	}
	if c.HTTP.RateLimitPerMin <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Payroll.JobQueueSize <= 0 {
		return errors.New("PAYROLL_JOB_QUEUE_SIZE must be positive")
	}
	if c.Email.Enabled && c.Email.SMTPHost == "" {
		return errors.New("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
