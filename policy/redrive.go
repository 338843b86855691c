package policy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/marcelsud/scalable-webhook/webhook"
)

// RedrivePolicy is the JSON attribute managed queues use to describe redrive,
// e.g. {"deadLetterTargetArn":"arn:aws:sqs:us-east-1:123456789012:webhook-dlq","maxReceiveCount":5}
type RedrivePolicy struct {
	DeadLetterTargetArn string          `json:"deadLetterTargetArn"`
	MaxReceiveCount     json.RawMessage `json:"maxReceiveCount"`
}

// ParseRedrivePolicy applies a JSON redrive policy on top of base.
// maxReceiveCount may be a number or a numeric string.
func ParseRedrivePolicy(raw string, base webhook.Policy) (webhook.Policy, error) {
	var rp RedrivePolicy
	if err := json.Unmarshal([]byte(raw), &rp); err != nil {
		return webhook.Policy{}, fmt.Errorf("parsing redrive policy: %w", err)
	}

	p := base
	if rp.DeadLetterTargetArn != "" {
		p.DeadLetterTarget = TargetName(rp.DeadLetterTargetArn)
	}
	if len(rp.MaxReceiveCount) > 0 {
		n, err := parseCount(rp.MaxReceiveCount)
		if err != nil {
			return webhook.Policy{}, fmt.Errorf("invalid maxReceiveCount %s: %w", rp.MaxReceiveCount, err)
		}
		p.MaxReceiveCount = n
	}
	return p, nil
}

// TargetName returns the queue name of an ARN, or the input when it is already a name
func TargetName(arn string) string {
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

func parseCount(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}
