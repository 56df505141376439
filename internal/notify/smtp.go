package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Domenick1991/studiobooking/config"
)

// SMTPChannel is the direct transport: it talks to a mail host itself.
type SMTPChannel struct {
	host     string
	port     int
	user     string
	password string
	sender   string
}

func NewSMTPChannel(cfg *config.NotifyConfig) *SMTPChannel {
	return &SMTPChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		sender:   cfg.SenderAddress,
	}
}

func (c *SMTPChannel) Name() string { return "smtp" }

func (c *SMTPChannel) Configured() bool {
	return c.host != "" && c.sender != ""
}

func (c *SMTPChannel) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if c.user != "" {
		auth = smtp.PlainAuth("", c.user, c.password, c.host)
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	return smtp.SendMail(addr, auth, c.sender, []string{msg.To}, buildMIME(c.sender, msg))
}

// buildMIME renders a multipart/alternative body so clients without HTML
// support still get the plain-text part.
func buildMIME(from string, msg Message) []byte {
	const boundary = "studiobooking-alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n")

	if msg.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTMLBody)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
