package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type MailConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type Mail struct {
	cfg  MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMail(cfg MailConfig) (*Mail, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: smtp host and from-address are required", ErrConfig)
	}
	return &Mail{cfg: cfg, send: smtp.SendMail}, nil
}

func (m *Mail) Name() string { return "mail" }

func (m *Mail) Send(ctx context.Context, to Notifiable, msg *Message) error {
	if !to.ByEmail || strings.TrimSpace(to.Email) == "" {
		return nil
	}
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", strings.ReplaceAll(msg.Subject, "\n", " "))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to.Email}, []byte(b.String())); err != nil {
		return fmt.Errorf("mail to %s: %w", to.Email, err)
	}
	return nil
}
