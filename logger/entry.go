package logger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Entry is one JSON line in the audit log.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     Level                  `json:"level"`
	Service   string                 `json:"service"`
	Event     Event                  `json:"event_type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Hmac      string                 `json:"hmac"`
}

// signer seals the fixed header fields of an entry. Details are left out
// because their JSON types do not survive a decode unchanged.
type signer struct {
	key []byte
}

func (s signer) sum(e Entry) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strings.Join([]string{
		e.Timestamp,
		string(e.Level),
		e.Service,
		string(e.Event),
		e.Message,
	}, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s signer) valid(e Entry) bool {
	return hmac.Equal([]byte(s.sum(e)), []byte(e.Hmac))
}
