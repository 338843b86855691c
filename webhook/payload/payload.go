package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEncoding is returned when the transport encoding cannot be removed
	ErrEncoding = errors.New("invalid transport encoding")

	// ErrSyntax is returned when the decoded bytes are not exactly one JSON document
	ErrSyntax = errors.New("invalid JSON document")
)

// producers differ in the base64 flavour they emit
var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode removes the transport encoding from a request body
func Decode(body []byte, enc Encoding) ([]byte, error) {
	if err := enc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	switch enc {
	case Identity:
		return body, nil
	case Base64:
		return decodeBase64(body)
	}

	trimmed := bytes.TrimSpace(body)
	if json.Valid(trimmed) {
		return trimmed, nil
	}
	decoded, err := decodeBase64(body)
	if err != nil && looksLikeJSON(trimmed) {
		_, syntaxErr := parse(trimmed)
		return nil, syntaxErr
	}
	return decoded, err
}

// '{', '[' and '"' are outside every base64 alphabet
func looksLikeJSON(b []byte) bool {
	return len(b) > 0 && (b[0] == '{' || b[0] == '[' || b[0] == '"')
}

func decodeBase64(body []byte) ([]byte, error) {
	compact := strings.Join(strings.Fields(string(body)), "")
	if compact == "" {
		return nil, fmt.Errorf("%w: empty body", ErrEncoding)
	}

	var lastErr error
	for _, enc := range base64Encodings {
		decoded, err := enc.DecodeString(compact)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %w", ErrEncoding, lastErr)
}

/* Canonicalize parses data as a single JSON document and re-serializes it
 * The canonical form is compact, object keys are sorted, numbers keep their
 * original literal and HTML characters are not escaped
 */
func Canonicalize(data []byte) ([]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding canonical payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EventType returns the top level "type" or "event" string of a JSON object, if any
func EventType(data []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}

	for _, key := range []string{"type", "event"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrSyntax)
	}
	return doc, nil
}
