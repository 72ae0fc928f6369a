// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/upstream"
)

const ChannelSMS = "sms"

// smsPayload is the REST gateway message shape.
type smsPayload struct {
	AccountSID string `json:"account_sid"`
	From       string `json:"from"`
	To         string `json:"to"`
	Body       string `json:"body"`
}

// SMSNotifier forwards alerts to a REST SMS gateway. Inert unless gateway
// URL, account SID and auth token are all configured.
type SMSNotifier struct {
	cfg    config.SMSConfig
	client *upstream.Client
}

func NewSMSNotifier(cfg config.SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		cfg:    cfg,
		client: upstream.NewClient("sms-gateway", 15*time.Second, 1, 4),
	}
}

func (n *SMSNotifier) Name() string { return ChannelSMS }

func (n *SMSNotifier) Enabled() bool {
	return n.cfg.GatewayURL != "" && n.cfg.AccountSID != "" && n.cfg.AuthToken != ""
}

// Send posts the alert to the gateway as JSON with basic auth.
func (n *SMSNotifier) Send(ctx context.Context, rec *models.AlertRecord) error {
	if !n.Enabled() {
		return fmt.Errorf("sms channel not configured")
	}

	payload := smsPayload{
		AccountSID: n.cfg.AccountSID,
		From:       n.cfg.From,
		To:         n.cfg.To,
		Body:       fmt.Sprintf("[AetherWatch] %s: %s", rec.Level, rec.Message),
	}

	opts := &upstream.ReqOptions{
		BasicAuth: &upstream.BasicAuth{
			Username: n.cfg.AccountSID,
			Password: n.cfg.AuthToken,
		},
	}
	if err := n.client.PostJSON(ctx, n.cfg.GatewayURL, opts, payload, nil); err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	return nil
}
