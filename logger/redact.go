package logger

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Keys are matched after lowercasing. A key is secret when it equals one of
// these or ends with "_" plus one of them, so "razorpay_signature" and
// "new_password" are caught without listing every variant.
var secretKeys = []string{
	"password",
	"token",
	"secret",
	"signature",
	"authorization",
	"cookie",
	"otp",
	"jwt",
	"api_key",
	"card",
	"session_id",
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// Lines emitted by runtime/debug.Stack and panics.
	tracePattern = regexp.MustCompile(`^\s*(goroutine \d+ \[|\S+\.go:\d+|created by |panic\(|\S+\.\S+\(.*\)$)`)
)

type redactor struct {
	stripTraces bool
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if key == s || strings.HasSuffix(key, "_"+s) {
			return true
		}
	}
	return false
}

func (r redactor) details(in map[string]interface{}) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if isSecretKey(k) {
			out[k] = redacted
			continue
		}
		out[k] = r.value(v)
	}
	return out
}

func (r redactor) value(v interface{}) interface{} {
	switch v := v.(type) {
	case string:
		return r.text(v)
	case error:
		return r.text(v.Error())
	case map[string]interface{}:
		return r.details(v)
	default:
		return v
	}
}

func (r redactor) text(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	if r.stripTraces && strings.Contains(s, "\n") {
		s = stripTraces(s)
	}
	return s
}

// maskEmail keeps two characters of the local part and the whole domain.
func maskEmail(addr string) string {
	local, domain, _ := strings.Cut(addr, "@")
	if len(local) <= 2 {
		return "**@" + domain
	}
	return local[:2] + "***@" + domain
}

func stripTraces(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line == "" || tracePattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
