// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package alerts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/models"
)

const ChannelEmail = "email"

// EmailNotifier delivers alerts over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg         config.EmailConfig
	dialTimeout time.Duration
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:         cfg,
		dialTimeout: 30 * time.Second,
	}
}

func (n *EmailNotifier) Name() string { return ChannelEmail }

// Enabled requires a host and at least one recipient. Auth is optional so
// internal relays keep working.
func (n *EmailNotifier) Enabled() bool {
	return n.cfg.Host != "" && len(n.cfg.To) > 0
}

// Send delivers the alert to every configured recipient over one SMTP
// session.
func (n *EmailNotifier) Send(ctx context.Context, rec *models.AlertRecord) error {
	if !n.Enabled() {
		return fmt.Errorf("email channel not configured")
	}

	msg := n.buildMessage(rec)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	dialer := &net.Dialer{Timeout: n.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	tlsConfig := &tls.Config{
		ServerName: n.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("start TLS: %w", err)
	}

	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(n.from()); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, to := range n.cfg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("set recipient %s: %w", to, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// Quit failures after a delivered message are not worth surfacing.
	_ = client.Quit() //nolint:errcheck
	return nil
}

func (n *EmailNotifier) from() string {
	if n.cfg.From != "" {
		return n.cfg.From
	}
	return n.cfg.Username
}

func (n *EmailNotifier) buildMessage(rec *models.AlertRecord) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: AetherWatch <%s>\r\n", n.from()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(n.cfg.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: [AetherWatch] %s - %s\r\n", rec.Level, rec.Source))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")

	msg.WriteString("AetherWatch Alert\r\n\r\n")
	msg.WriteString(fmt.Sprintf("Time: %s\r\n", rec.Timestamp.Format("2006-01-02 15:04:05 UTC")))
	msg.WriteString(fmt.Sprintf("Level: %s\r\n", rec.Level))
	msg.WriteString(fmt.Sprintf("Source: %s\r\n", rec.Source))
	msg.WriteString(fmt.Sprintf("Message: %s\r\n", rec.Message))
	if len(rec.Details) > 0 {
		msg.WriteString("Details:\r\n")
		for k, v := range rec.Details {
			msg.WriteString(fmt.Sprintf("  %s: %v\r\n", k, v))
		}
	}
	return msg.String()
}
