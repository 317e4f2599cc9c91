// Package notify sends account notifications by email.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/car-service/internal/config"
)

// Notifier delivers account notifications
type Notifier interface {
	Welcome(to string) error
	ProfileChanged(to string, changed []string) error
}

// New returns an SMTP sender, or a no-op notifier when SMTP is not configured
func New(cfg *config.Config, logger *logrus.Logger) Notifier {
	if !cfg.NotificationsEnabled() {
		return Nop{}
	}
	return NewSender(cfg, logger)
}

// Nop discards notifications
type Nop struct{}

func (Nop) Welcome(string) error                  { return nil }
func (Nop) ProfileChanged(string, []string) error { return nil }

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Welcome greets a newly registered user
func (s *Sender) Welcome(to string) error {
	body := "Hello,\n\n" +
		"Your account has been created. You can now sign in and start listing your cars.\n" +
		"\nBest regards,\nCar Service"
	return s.deliver(to, "Welcome to Car Service", body)
}

// ProfileChanged tells the user which account fields were changed
func (s *Sender) ProfileChanged(to string, changed []string) error {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"The following details of your account were changed on %s: %s.\n"+
			"If you did not make this change, please reset your password immediately.\n",
		time.Now().UTC().Format("2006-01-02 15:04:05 MST"), strings.Join(changed, ", "),
	)
	body += "\nBest regards,\nCar Service"
	return s.deliver(to, "Your account details were changed", body)
}

func (s *Sender) deliver(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
