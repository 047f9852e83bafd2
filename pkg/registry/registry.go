// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity subscribed under taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// TaskTypes lists every documented task type in order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	sort.Strings(out)
	return out
}

// Check reports the task types that are registered as workers but have no
// activity entry, and entries that repeat a task type.
func (r *ActivityRegistry) Check(taskTypes []string) error {
	var problems []string

	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if seen[a.TaskType] {
			problems = append(problems, "duplicate task type "+a.TaskType)
		}
		seen[a.TaskType] = true
	}
	for _, tt := range taskTypes {
		if !seen[tt] {
			problems = append(problems, "undocumented task type "+tt)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("activity registry: %s", strings.Join(problems, "; "))
	}
	return nil
}
