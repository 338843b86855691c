package webhook

import "errors"

/* Caller faults (4xx, never retried by the system) and system faults (5xx, caller retries)
 * Wrap with fmt.Errorf("...: %w", Err...) and classify with errors.Is
 */
var (
	ErrDecode           = errors.New("invalid transport encoding")
	ErrMalformedPayload = errors.New("malformed JSON payload")
	ErrPublish          = errors.New("publishing to queue")
	ErrNotFound         = errors.New("not found")
)
