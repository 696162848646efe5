package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type Service interface {
	SendApprovalNotice(ctx context.Context, to, name string) error
}

// SMTPConfig carries dialer settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns an SMTP-backed sender, or a no-op one when no host is
// configured so approval flows keep working in development.
func NewService(cfg SMTPConfig) Service {
	if cfg.Host == "" {
		return noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendApprovalNotice(_ context.Context, to, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your account has been approved")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour supply tracking account has been approved. You can now sign in.\n", name))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send approval notice: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) SendApprovalNotice(context.Context, string, string) error { return nil }
