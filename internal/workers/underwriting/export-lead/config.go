// internal/workers/underwriting/export-lead/config.go
package exportlead

import (
	"time"

	"underwriting-workers/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	DedupeTTL     time.Duration
	NotifyEnabled bool
	TopicARN      string
	Subject       string
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Config{
		Timeout:       timeout,
		DedupeTTL:     time.Duration(cfg.Leads.DedupeTTLHours) * time.Hour,
		NotifyEnabled: cfg.Notifications.SNS.Enabled,
		TopicARN:      cfg.Notifications.SNS.TopicARN,
		Subject:       cfg.Notifications.SNS.Subject,
	}
}
