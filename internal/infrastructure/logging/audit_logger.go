package logging

import (
	"context"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

// ZapAuditLogger implements domain.AuditLogger on a dedicated zap logger
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates an audit logger writing under the "audit" name
func NewAuditLogger(logger *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (a *ZapAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Bool("success", event.Success),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Uint("user_id", event.UserID))
	}
	if event.Phone != "" {
		fields = append(fields, zap.String("phone", MaskPhone(event.Phone)))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", MaskEmail(event.Email)))
	}
	if event.IPAddress != "" {
		fields = append(fields, zap.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		a.logger.Info("audit_event", fields...)
	} else {
		a.logger.Warn("audit_event", fields...)
	}
}

// MaskPhone keeps the last four digits of a phone number for log output
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

// MaskEmail keeps the first letter of the local part and the domain
func MaskEmail(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			if i == 0 {
				return "*" + email[i:]
			}
			return email[:1] + "***" + email[i:]
		}
	}
	return "***"
}
