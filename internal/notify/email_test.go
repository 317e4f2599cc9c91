package notify

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/car-service/internal/config"
)

type capture struct {
	sent []*email.Email
	addr string
	auth smtp.Auth
	err  error
}

func (c *capture) send(e *email.Email, addr string, auth smtp.Auth) error {
	c.sent = append(c.sent, e)
	c.addr = addr
	c.auth = auth
	return c.err
}

func newTestSender(cfg *config.Config) (*Sender, *capture) {
	logger, _ := test.NewNullLogger()
	s := NewSender(cfg, logger)
	c := &capture{}
	s.send = c.send
	return s, c
}

func smtpConfig() *config.Config {
	return &config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "2525",
		SenderEmail: "noreply@example.com",
	}
}

func TestNew_DisabledWithoutSMTP(t *testing.T) {
	logger, _ := test.NewNullLogger()

	assert.IsType(t, Nop{}, New(&config.Config{}, logger))
	assert.IsType(t, &Sender{}, New(smtpConfig(), logger))
}

func TestSender_Welcome(t *testing.T) {
	s, c := newTestSender(smtpConfig())

	require.NoError(t, s.Welcome("a@x.com"))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "smtp.example.com:2525", c.addr)
	assert.Nil(t, c.auth)
	assert.Equal(t, []string{"a@x.com"}, c.sent[0].To)
	assert.Equal(t, "noreply@example.com", c.sent[0].From)
	assert.Contains(t, string(c.sent[0].Text), "account has been created")
}

func TestSender_ProfileChanged(t *testing.T) {
	cfg := smtpConfig()
	cfg.SMTPUsername = "mailer"
	cfg.SMTPPassword = "pw"
	s, c := newTestSender(cfg)

	require.NoError(t, s.ProfileChanged("a@x.com", []string{"email", "password"}))

	require.Len(t, c.sent, 1)
	assert.NotNil(t, c.auth)
	assert.Contains(t, string(c.sent[0].Text), "email, password")
}

func TestSender_Failure(t *testing.T) {
	s, c := newTestSender(smtpConfig())
	c.err = errors.New("connection refused")

	err := s.Welcome("a@x.com")
	assert.ErrorContains(t, err, "connection refused")
}
