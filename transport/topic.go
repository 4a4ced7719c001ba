package transport

import (
	"strings"
)

// maxTopicNameLen is the maximum topic name length, per spec §6.
const maxTopicNameLen = 240

// ValidateTopicName checks name against the restricted charset
// `[A-Za-z0-9_/-]+` and the 240-character limit from spec §6.
func ValidateTopicName(name string) error {
	if name == "" || len(name) > maxTopicNameLen {
		return ErrInvalidTopicName
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '/' || r == '-':
		default:
			return ErrInvalidTopicName
		}
	}
	return nil
}

// sanitizeRegionName maps a validated topic name to the region name used
// under the shared-memory root, replacing '/' (a legal topic-name
// character) so the result is a single path segment.
func sanitizeRegionName(name string) string {
	return strings.ReplaceAll(name, "/", "__")
}

// Endpoint is a resolved reference to a topic, per the endpoint URL
// taxonomy in spec §6.
type Endpoint struct {
	Topic string
}

// ParseEndpoint implements the endpoint URL taxonomy: "local://<topic>"
// or a bare topic name resolve to shared memory; any other scheme is
// reserved for future transports and is rejected with
// ErrUnsupportedScheme.
func ParseEndpoint(raw string) (Endpoint, error) {
	const localScheme = "local://"
	topic := raw
	if idx := strings.Index(raw, "://"); idx >= 0 {
		if !strings.HasPrefix(raw, localScheme) {
			return Endpoint{}, ErrUnsupportedScheme
		}
		topic = raw[len(localScheme):]
	}
	if err := ValidateTopicName(topic); err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Topic: topic}, nil
}
