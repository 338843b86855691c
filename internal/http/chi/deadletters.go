package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/scalable-webhook/webhook"
)

/* HTTP layer DTOs
 * Separate from domain entities to avoid leaking internal structure
 */

type deadLetterResponse struct {
	ID             string          `json:"id"`
	Body           json.RawMessage `json:"body"`
	ReceiveCount   int             `json:"receive_count"`
	ReceivedAt     time.Time       `json:"received_at"`
	SourceQueue    string          `json:"source_queue"`
	DeadLetteredAt time.Time       `json:"dead_lettered_at"`
}

type statsResponse struct {
	Visible      int64 `json:"visible"`
	InFlight     int64 `json:"in_flight"`
	DeadLettered int64 `json:"dead_lettered"`
}

func newDeadLetterResponse(d webhook.DeadLetter) deadLetterResponse {
	body := json.RawMessage(d.Body)
	if !json.Valid(body) {
		body, _ = json.Marshal(string(d.Body))
	}
	return deadLetterResponse{
		ID:             d.ID,
		Body:           body,
		ReceiveCount:   d.ReceiveCount,
		ReceivedAt:     d.ReceivedAt,
		SourceQueue:    d.SourceQueue,
		DeadLetteredAt: d.DeadLetteredAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// getDeadLetters handles GET /v1/dlq
func getDeadLetters(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		letters, err := webhookService.ListDeadLetters(r.Context())
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		responses := make([]deadLetterResponse, 0, len(letters))
		for _, d := range letters {
			responses = append(responses, newDeadLetterResponse(d))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

// getDeadLetter handles GET /v1/dlq/{id}
func getDeadLetter(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		letter, err := webhookService.GetDeadLetter(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, newDeadLetterResponse(letter))
	})
}

// postRedeliver handles POST /v1/dlq/{id}/redeliver
func postRedeliver(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := webhookService.RedeliverDeadLetter(r.Context(), id); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "redelivered"})
	})
}

// deleteDeadLetter handles DELETE /v1/dlq/{id}
func deleteDeadLetter(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := webhookService.DeleteDeadLetter(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// getStats handles GET /v1/stats
func getStats(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := webhookService.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{
			Visible:      stats.Visible,
			InFlight:     stats.InFlight,
			DeadLettered: stats.DeadLettered,
		})
	})
}
