// internal/workers/underwriting/validate-field/config.go
package validatefield

import (
	"time"

	"underwriting-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Config{Timeout: timeout}
}
