package notify

import (
	"time"

	log "github.com/sirupsen/logrus"
	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
}

// Enabled reports whether enough is configured to attempt delivery.
func (c EmailConfig) Enabled() bool {
	return c.SMTPServer != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

func (c EmailConfig) from() string {
	if c.FromEmail != "" {
		return c.FromEmail
	}
	return c.SMTPUser
}

// EmailSender delivers messages via SMTP.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) message(msg *RenderedMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.from())
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}
	return m
}

// Send delivers an email with HTML body and plain text fallback. It is a no-op when
// the configuration is incomplete.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.cfg.Enabled() {
		return nil
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(s.message(msg)); err != nil {
		log.Warnf("Email error: failed to send to %s (Subject: %s): %v", s.cfg.ToEmail, msg.Subject, err)
		return err
	}

	log.Infof("Email sent: %s", msg.Subject)
	return nil
}
