package policy

import (
	"fmt"
	"os"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"gopkg.in/yaml.v3"
)

/* A policy file overrides the queue policy at startup
 *
 *   visibility_timeout: 5m
 *   redrive_policy:
 *     dead_letter_target: webhook-dlq
 *     max_receive_count: 5
 *
 * Absent keys keep the value they had before the file was applied
 */

// File represents the structure of the policy YAML file
type File struct {
	VisibilityTimeout *string              `yaml:"visibility_timeout"`
	RedrivePolicy     *RedrivePolicyConfig `yaml:"redrive_policy"`
}

// RedrivePolicyConfig is the redrive section of the file
type RedrivePolicyConfig struct {
	DeadLetterTarget *string `yaml:"dead_letter_target"`
	MaxReceiveCount  *int    `yaml:"max_receive_count"`
}

// Load reads filePath and applies it on top of base
func Load(filePath string, base webhook.Policy) (webhook.Policy, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return webhook.Policy{}, fmt.Errorf("reading policy file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return webhook.Policy{}, fmt.Errorf("parsing policy YAML: %w", err)
	}

	p, err := file.Apply(base)
	if err != nil {
		return webhook.Policy{}, err
	}
	if err := p.Validate(); err != nil {
		return webhook.Policy{}, fmt.Errorf("validating policy: %w", err)
	}
	return p, nil
}

// Apply overlays the keys present in the file on p
func (f File) Apply(p webhook.Policy) (webhook.Policy, error) {
	if f.VisibilityTimeout != nil {
		d, err := time.ParseDuration(*f.VisibilityTimeout)
		if err != nil {
			return webhook.Policy{}, fmt.Errorf("invalid visibility_timeout %q: %w", *f.VisibilityTimeout, err)
		}
		p.VisibilityTimeout = d
	}
	if f.RedrivePolicy != nil {
		if f.RedrivePolicy.DeadLetterTarget != nil {
			p.DeadLetterTarget = *f.RedrivePolicy.DeadLetterTarget
		}
		if f.RedrivePolicy.MaxReceiveCount != nil {
			p.MaxReceiveCount = *f.RedrivePolicy.MaxReceiveCount
		}
	}
	return p, nil
}
