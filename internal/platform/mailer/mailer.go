// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers transactional email.

Two senders exist: [SMTPSender] for real delivery and [LogSender], which only
records the message and is selected when no SMTP host is configured.
*/
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a [Message].
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// # SMTP

// SMTPConfig holds server coordinates and credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay. STARTTLS is negotiated when offered.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSMTPSender creates a sender for cfg.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger, now: time.Now}
}

// Send implements [Sender].
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mailer_send_cancelled: %w", err)
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	body := Compose(s.cfg.From, msg, s.now())

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("mailer_send_failed: %w", err)
	}

	s.logger.InfoContext(ctx, "email_sent", slog.String("subject", msg.Subject))
	return nil
}

// Compose renders msg as an RFC 5322 message with a fixed header order.
func Compose(from string, msg Message, date time.Time) []byte {
	var buf bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", date.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}

// # Log

// LogSender records messages instead of delivering them. Bodies are not
// logged because they contain single-use links.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender].
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email_suppressed",
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.HTML)),
	)
	return nil
}

// # Templates

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Reset your password</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hello {{.Nickname}},</p>
  <p>We received a request to reset your Healthlog password. The link below is valid for {{.ValidMinutes}} minutes and can be used once.</p>
  <p><a href="{{.Link}}">Reset password</a></p>
  <p>If you did not ask for this, you can ignore this email.</p>
</body>
</html>
`))

// PasswordReset builds the reset email.
func PasswordReset(to, nickname, link string, valid time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := passwordResetTemplate.Execute(&buf, map[string]any{
		"Nickname":     nickname,
		"Link":         link,
		"ValidMinutes": int(valid.Minutes()),
	})
	if err != nil {
		return Message{}, fmt.Errorf("mailer_render_failed: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Reset your Healthlog password",
		HTML:    buf.String(),
	}, nil
}
