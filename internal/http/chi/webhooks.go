package chi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/scalable-webhook/metrics"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/payload"
)

// postMessage handles POST /message
// The response body is the canonical JSON that was enqueued
func postMessage(webhookService webhook.UseCase, maxBodyBytes int64, recorder metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				recorder.IncRejected("too_large")
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		enc := payload.NewEncoding(r.Header.Get("Content-Transfer-Encoding"))
		msg, err := webhookService.Ingest(r.Context(), body, enc)
		if err != nil {
			switch {
			case errors.Is(err, webhook.ErrDecode):
				recorder.IncRejected("decode")
			case errors.Is(err, webhook.ErrMalformedPayload):
				recorder.IncRejected("malformed")
			default:
				recorder.IncPublishFailed()
				logger := httplog.LogEntry(r.Context())
				logger.Error().Err(err).Msg("publishing message")
			}
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		recorder.IncPublished()
		httplog.LogEntrySetField(r.Context(), "message_id", msg.ID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(msg.Body)
	})
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, webhook.ErrDecode), errors.Is(err, webhook.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, webhook.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, webhook.ErrPublish):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
