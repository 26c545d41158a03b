package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends emails through an SMTP relay.
type SMTPSender struct {
	dial     func() (gomail.SendCloser, error)
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("notify: smtp host and port are required")
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{
		dial:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password).Dial,
		from:     from,
		fromName: cfg.FromName,
		logger:   logger,
	}, nil
}

// Send delivers msg. gomail has no context support, so only the dial runs on
// its own goroutine: if ctx ends first, the connection is closed as soon as it
// opens and nothing is sent. Once the relay connection is up, the transfer runs
// to completion so the returned error always matches what the relay accepted.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	type dialResult struct {
		conn gomail.SendCloser
		err  error
	}
	dialed := make(chan dialResult, 1)
	go func() {
		conn, err := s.dial()
		dialed <- dialResult{conn: conn, err: err}
	}()

	var conn gomail.SendCloser
	select {
	case r := <-dialed:
		if r.err != nil {
			return fmt.Errorf("notify: smtp dial failed: %w", r.err)
		}
		conn = r.conn
	case <-ctx.Done():
		go func() {
			if r := <-dialed; r.err == nil {
				_ = r.conn.Close()
			}
		}()
		return fmt.Errorf("notify: smtp send abandoned: %w", ctx.Err())
	}
	defer func() { _ = conn.Close() }()

	if err := gomail.Send(conn, m); err != nil {
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}

	s.logger.Info("email sent via smtp", zap.String("to", msg.To))
	return nil
}
