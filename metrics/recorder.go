package metrics

// Recorder counts pipeline outcomes as they happen
type Recorder interface {
	// IncPublished counts a message accepted by the ingress
	IncPublished()
	// IncRejected counts a request refused with a 4xx, reason is "decode" or "malformed"
	IncRejected(reason string)
	// IncPublishFailed counts a request that could not be enqueued
	IncPublishFailed()
	// IncProcessed counts a message persisted and acknowledged, duplicate reports an idempotent no-op write
	IncProcessed(duplicate bool)
	// IncFailed counts a consumer failure, reason is "parse", "connection" or "write"
	IncFailed(reason string)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) IncPublished()      {}
func (NopRecorder) IncRejected(string) {}
func (NopRecorder) IncPublishFailed()  {}
func (NopRecorder) IncProcessed(bool)  {}
func (NopRecorder) IncFailed(string)   {}
