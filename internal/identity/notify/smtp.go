package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"net/smtp"
	"time"

	"github.com/knadh/smtppool"
)

// SMTPConfig configures the pooled SMTP sender.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	MaxConns    int
	SendTimeout time.Duration
}

// SMTPSender sends mail over a pool of persistent SMTP connections.
type SMTPSender struct {
	pool *smtppool.Pool
	from string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("notify: smtp host and from address are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 4
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            cfg.Host,
		Port:            cfg.Port,
		MaxConns:        cfg.MaxConns,
		IdleTimeout:     cfg.SendTimeout,
		PoolWaitTimeout: cfg.SendTimeout,
		TLSConfig:       &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		Auth:            auth,
	})
	if err != nil {
		return nil, err
	}
	return &SMTPSender{pool: pool, from: cfg.From}, nil
}

// Send hands msg to the pool. The pool enforces its own wait timeout, so ctx
// is only checked before sending.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.pool.Send(smtppool.Email{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    []byte(msg.Body),
	})
}

func (s *SMTPSender) Close() {
	s.pool.Close()
}
