package logward

import (
	"strings"

	"github.com/rs/zerolog"
)

// sensitiveKeySubstrings marks field keys whose values must never reach a log
// file. Matching is by substring on the lowercased key.
var sensitiveKeySubstrings = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "auth",
	"credit_card", "ssn", "social_security",
	"cookie", "bearer",
}

const redactedPlaceholder = "***REDACTED***"

// SanitizeFields returns a copy of fields with values under sensitive keys
// replaced by a redaction placeholder.
func SanitizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	sanitized := make(map[string]any, len(fields))
	for k, v := range fields {
		if isSensitiveKey(k) {
			sanitized[k] = redactedPlaceholder
			continue
		}
		sanitized[k] = v
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeySubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// SanitizeToken masks a token, showing only the first and last 4 characters.
// Short tokens collapse entirely.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail masks the local part of an email address, keeping the domain.
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}

	local := email[:at]
	domain := email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// SecurityLogger logs security events with a consistent shape over the
// security category. Extra fields are sanitized before they are written.
type SecurityLogger struct {
	logger *Logger
}

// NewSecurityLogger creates a security logger over the default security
// category logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: GetSecurityLogger(CategorySecurity)}
}

// NewSecurityLoggerWith creates a security logger over the given logger.
// Useful for tests and for request-scoped children.
func NewSecurityLoggerWith(logger *Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger}
}

// LogAuthenticationAttempt records an authentication attempt. Successful
// attempts log at INFO, failures at WARN with the reason.
func (s *SecurityLogger) LogAuthenticationAttempt(username string, success bool, ipAddress, reason string, extra ...map[string]any) {
	data := map[string]any{
		"event_type": "authentication",
		"username":   username,
		"success":    success,
	}
	if ipAddress != "" {
		data["ip_address"] = ipAddress
	}
	if reason != "" {
		data["reason"] = reason
	}
	mergeSanitized(data, extra)

	if success {
		s.logger.Info("authentication successful", data)
		return
	}
	s.logger.Warn("authentication failed", data)
}

// LogAuthorizationCheck records an authorization decision. Grants log at
// INFO, denials at WARN.
func (s *SecurityLogger) LogAuthorizationCheck(user, resource, action string, allowed bool, extra ...map[string]any) {
	data := map[string]any{
		"event_type": "authorization",
		"user":       user,
		"resource":   resource,
		"action":     action,
		"allowed":    allowed,
	}
	mergeSanitized(data, extra)

	if allowed {
		s.logger.Info("access granted", data)
		return
	}
	s.logger.Warn("access denied", data)
}

// LogSecurityEvent records a generic security event at the given severity.
// Unknown severities fall back to INFO.
func (s *SecurityLogger) LogSecurityEvent(eventType, severity string, extra ...map[string]any) {
	data := map[string]any{
		"event_type": eventType,
	}
	mergeSanitized(data, extra)

	level, err := ParseLevel(severity)
	if err != nil {
		level = zerolog.InfoLevel
	}
	s.logger.log(level, "security event", []map[string]any{data})
}

func mergeSanitized(dst map[string]any, extra []map[string]any) {
	for _, m := range extra {
		for k, v := range SanitizeFields(m) {
			dst[k] = v
		}
	}
}
