// pkg/registry/schema.go
package registry

// ActivityRegistry documents the job types this service subscribes to, as
// published to process modellers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Retryable    []string               `json:"retryableErrorCodes,omitempty"`
	Timeout      string                 `json:"timeout"`
	Tags         []string               `json:"tags"`
}
