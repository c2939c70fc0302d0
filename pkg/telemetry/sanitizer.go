package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// PIILevel controls how much caller data reaches logs and spans.
type PIILevel string

const (
	// PIILevelNone drops caller data entirely.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces identifiers and contact details with salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull logs caller data as-is. Local development only.
	PIILevelFull PIILevel = "full"
)

// ParsePIILevel maps a config value to a level, falling back to hashed.
func ParsePIILevel(raw string) PIILevel {
	switch PIILevel(strings.ToLower(strings.TrimSpace(raw))) {
	case PIILevelNone:
		return PIILevelNone
	case PIILevelFull:
		return PIILevelFull
	default:
		return PIILevelHashed
	}
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\b\d{2,4}[-.\s]?\d{3}[-.\s]?\d{3,4}\b`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Sanitizer scrubs owner ids and message text before they are logged.
type Sanitizer struct {
	level PIILevel
	salt  string
}

// NewSanitizer returns a sanitizer whose hashes are salted with salt.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{level: level, salt: salt}
}

// Level reports the configured level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// SanitizeUserID renders an owner id for logs. The anonymous owner stays empty.
func (s *Sanitizer) SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return userID
	default:
		return s.hash(userID)
	}
}

// SanitizeText renders message text for logs, truncated to maxRunes when positive.
func (s *Sanitizer) SanitizeText(text string, maxRunes int) string {
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
	default:
		text = s.maskContacts(text)
	}
	if maxRunes > 0 {
		if runes := []rune(text); len(runes) > maxRunes {
			text = string(runes[:maxRunes]) + "..."
		}
	}
	return text
}

func (s *Sanitizer) maskContacts(text string) string {
	text = emailPattern.ReplaceAllStringFunc(text, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	text = cardPattern.ReplaceAllString(text, "[CARD]")
	text = ipv4Pattern.ReplaceAllStringFunc(text, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	return phonePattern.ReplaceAllStringFunc(text, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
}

// hash is a short salted SHA-256, stable for a given salt.
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(s.salt + ":" + data))
	return hex.EncodeToString(sum[:])[:12]
}
