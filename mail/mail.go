// Package mail delivers password-reset links over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"

	"github.com/rs/zerolog"
)

var (
	//go:embed templates/password_reset.html
	templates embed.FS

	passwordResetTemplate = template.Must(template.New("password_reset.html").ParseFS(templates, "templates/password_reset.html"))
)

const passwordResetSubject = "Recuperacion de contrasena"

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Secure dials implicit TLS instead of relying on STARTTLS.
	Secure bool
}

// Configured reports whether enough settings are present to send real mail.
func (c Config) Configured() bool {
	return c.Host != "" && c.Port != 0 && c.Username != "" && c.Password != ""
}

func (c Config) from() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

type sendFunc func(from, to string, msg []byte) error

// SMTPNotifier sends reset links by mail. When SMTP is not configured it logs
// the link instead so local setups keep working.
type SMTPNotifier struct {
	cfg Config
	log zerolog.Logger

	once sync.Once
	send sendFunc
}

func NewSMTPNotifier(cfg Config, log zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log.With().Str("component", "mail").Logger()}
}

// transport is resolved on first use and cached. A nil result means delivery is disabled.
func (n *SMTPNotifier) transport() sendFunc {
	n.once.Do(func() {
		if n.send != nil {
			return
		}
		if !n.cfg.Configured() {
			n.log.Warn().Msg("mail settings incomplete; reset links will be logged instead of sent")
			return
		}
		n.send = n.smtpSend
	})
	return n.send
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, to, link string) error {
	send := n.transport()
	if send == nil {
		n.log.Info().Str("to", to).Str("link", link).Msg("mail delivery skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := passwordResetTemplate.Execute(&body, struct{ ResetLink string }{link}); err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}

	from := n.cfg.from()
	msg := buildHTMLMessage(from, to, passwordResetSubject, body.String())
	if err := send(from, to, []byte(msg)); err != nil {
		return fmt.Errorf("send password reset to %s: %w", to, err)
	}
	return nil
}

func (n *SMTPNotifier) smtpSend(from, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if n.cfg.Secure || n.cfg.Port == 465 {
		return n.sendTLS(addr, auth, from, to, msg)
	}
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func (n *SMTPNotifier) sendTLS(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildHTMLMessage(from, to, subject, htmlBody string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s", from, to, subject, htmlBody)
}
