package payload

import (
	"fmt"
	"strings"
)

/* Encoding represents how the request body is wrapped for transport
 * Auto accepts raw JSON first and falls back to base64
 * Base64 and Identity force one interpretation
 */
type Encoding int

const (
	Auto Encoding = iota + 1
	Base64
	Identity
)

// String returns the string representation of the encoding
func (e Encoding) String() string {
	switch e {
	case Auto:
		return "auto"
	case Base64:
		return "base64"
	case Identity:
		return "identity"
	default:
		return "unknown"
	}
}

// NewEncoding creates an Encoding from a Content-Transfer-Encoding header value
func NewEncoding(s string) Encoding {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base64":
		return Base64
	case "identity", "binary", "7bit", "8bit":
		return Identity
	default:
		return Auto
	}
}

// Validate checks if the encoding is valid
func (e Encoding) Validate() error {
	if e < Auto || e > Identity {
		return fmt.Errorf("invalid encoding: %d", e)
	}
	return nil
}
