package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Configured reports whether the sender has enough SMTP settings to work.
func (s *Sender) Configured() bool {
	return s.cfg.SMTPConfigured()
}

// SendWelcome sends a welcome email to a freshly registered user.
func (s *Sender) SendWelcome(to, name string) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTPFrom
	e.To = []string{to}
	e.Subject = "Welcome to StreamVault"

	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your account has been created. Log in with your User ID to start browsing.\n\n"+
			"Happy watching,\nThe StreamVault team\n",
		name,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	s.logger.Infof("Welcome email sent to %s", to)
	return nil
}
