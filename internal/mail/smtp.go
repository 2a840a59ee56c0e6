package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"authhub/internal/config"

	"go.uber.org/zap"
)

type SMTPMailer struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	log      *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, renderer *Renderer, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, renderer: renderer, log: log.Named("smtp")}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	subject, body, err := m.renderer.Render(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Host == "" {
		m.log.Warn("smtp host not configured, dropping mail",
			zap.String("template", msg.Template), zap.String("to", msg.To))
		return nil
	}
	if err := m.deliver(msg.To, subject, body); err != nil {
		return err
	}
	m.log.Info("email sent", zap.String("template", msg.Template), zap.String("to", msg.To))
	return nil
}

func (m *SMTPMailer) deliver(recipient, subject, body string) error {
	client, err := smtp.Dial(m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(recipient); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create mail writer: %w", err)
	}
	if _, err = writer.Write(m.compose(recipient, subject, body)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close mail writer: %w", err)
	}

	if err = client.Quit(); err != nil {
		m.log.Debug("smtp quit failed", zap.Error(err))
	}
	return nil
}

func (m *SMTPMailer) compose(recipient, subject, body string) []byte {
	from := m.cfg.Sender
	if m.cfg.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.SenderName, m.cfg.Sender)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
