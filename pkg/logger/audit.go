// Package logger carries the structured audit trail for credential events.
package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent is one security-relevant login event.
type AuditEvent struct {
	EventType     string
	AccountEmail  string
	IPAddress     string
	Success       bool
	FailureReason string
}

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogLoginAttempt records the outcome of a credential check. Failures log at
// Warn so they stand out when wrong-password logging is enabled.
func (al *AuditLogger) LogLoginAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "login"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountEmail != "" {
		attrs = append(attrs, slog.String("account", SanitizedEmail(event.AccountEmail)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogWrongPassword records a failed password attempt against a known account.
func (al *AuditLogger) LogWrongPassword(accountEmail string, accountID uint32, ipAddress string) {
	al.logger.LogAttrs(context.Background(), slog.LevelDebug, "audit",
		slog.String("audit_type", "login"),
		slog.String("event_type", "wrong_password"),
		slog.String("account", SanitizedEmail(accountEmail)),
		slog.Uint64("account_id", uint64(accountID)),
		slog.String("ip_address", ipAddress),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogAutoBan records a ban imposed by the failed-login threshold.
func (al *AuditLogger) LogAutoBan(banMode, target string, duration time.Duration) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "login"),
		slog.String("event_type", "auto_ban"),
		slog.String("ban_mode", banMode),
		slog.String("target", target),
		slog.Duration("duration", duration),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
