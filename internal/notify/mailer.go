package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"sampletrack/internal/config"
)

// Mailer delivers summary messages over SMTP.
type Mailer struct {
	cfg config.MailConfig
}

// NewMailer creates a mailer from the mail configuration.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send composes and delivers one message. The configured BCC list is
// applied to every outbound mail.
func (m *Mailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipient")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To...)
	if len(msg.CC) > 0 {
		gm.SetHeader("Cc", msg.CC...)
	}
	if len(m.cfg.BCC) > 0 {
		gm.SetHeader("Bcc", m.cfg.BCC...)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)
	if msg.Attachment != "" {
		gm.Attach(msg.Attachment)
	}

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}
	return nil
}
