package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port                int           `env:"PORT"                  envDefault:"8080"`
	Env                 string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	Timezone            string        `env:"TIMEZONE"              envDefault:"Asia/Taipei"`

	// DatabaseURL is a file path for sqlite and a connection string for postgres.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"    envDefault:"identity.db"`

	PepperFile     string `env:"PEPPER_FILE"      envDefault:"pepper"`
	SigningKeyFile string `env:"SIGNING_KEY_FILE" envDefault:"signing.pem"` // empty: ephemeral key
	TokenIssuer    string `env:"TOKEN_ISSUER"     envDefault:"puyuann-identity"`

	SessionTTL        time.Duration `env:"SESSION_TTL"        envDefault:"24h"`
	VerificationGrace time.Duration `env:"VERIFICATION_GRACE" envDefault:"5m"`
	CodeWindow        time.Duration `env:"CODE_WINDOW"        envDefault:"10m"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL"     envDefault:"60s"`
	TicketRetention   time.Duration `env:"TICKET_RETENTION"   envDefault:"24h"` // 0 disables the purge

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	MailRatePerSecond float64 `env:"MAIL_RATE_PER_SECOND" envDefault:"5"`
	MailQueueSize     int     `env:"MAIL_QUEUE_SIZE"      envDefault:"256"`
	MailWorkers       int     `env:"MAIL_WORKERS"         envDefault:"2"`
}

// SMTPConfig is optional. With no host, mail is logged instead of sent.
type SMTPConfig struct {
	Host        string        `env:"HOST"`
	Port        int           `env:"PORT"         envDefault:"587"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	From        string        `env:"FROM"`
	MaxConns    int           `env:"MAX_CONNS"    envDefault:"4"`
	SendTimeout time.Duration `env:"SEND_TIMEOUT" envDefault:"10s"`
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q must be %q or %q", c.DatabaseDriver, DriverSQLite, DriverPostgres))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.TokenIssuer == "" {
		errs = append(errs, errors.New("TOKEN_ISSUER is required"))
	}

	positive := map[string]time.Duration{
		"SESSION_TTL":        c.SessionTTL,
		"VERIFICATION_GRACE": c.VerificationGrace,
		"CODE_WINDOW":        c.CodeWindow,
		"SWEEP_INTERVAL":     c.SweepInterval,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.TicketRetention < 0 {
		errs = append(errs, errors.New("TICKET_RETENTION must not be negative"))
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("SMTP_FROM is required when SMTP_HOST is set"))
	}
	if c.MailRatePerSecond < 0 {
		errs = append(errs, errors.New("MAIL_RATE_PER_SECOND must not be negative"))
	}

	return errors.Join(errs...)
}
