// Package registry loads and checks the activity registry that documents
// every Zeebe job type the workers handle.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"listing-search-workers/internal/common/validation"
)

const DefaultPath = "configs/activity-registry.json"

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry back with activities ordered by task type.
func (r *ActivityRegistry) Save(path string) error {
	sort.SliceStable(r.Activities, func(i, j int) bool {
		return r.Activities[i].TaskType < r.Activities[j].TaskType
	})
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Update sets one field of the activity with the given id and stamps
// LastUpdated with now.
func (r *ActivityRegistry) Update(id, field, value string, now time.Time) error {
	var a *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			a = &r.Activities[i]
			break
		}
	}
	if a == nil {
		return fmt.Errorf("activity %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		a.Timeout = value
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retries value %q", value)
		}
		a.Retries = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	r.LastUpdated = now.Format("2006-01-02")
	return nil
}

// Missing returns the task types absent from the registry, in input order.
func (r *ActivityRegistry) Missing(taskTypes ...string) []string {
	var out []string
	for _, tt := range taskTypes {
		if _, ok := r.Find(tt); !ok {
			out = append(out, tt)
		}
	}
	return out
}

// Validate returns one problem per line item; an empty slice means the
// registry is usable.
func (r *ActivityRegistry) Validate() []string {
	var problems []string
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)

	for i, a := range r.Activities {
		label := a.ID
		if label == "" {
			label = fmt.Sprintf("activities[%d]", i)
		}
		if a.ID == "" {
			problems = append(problems, label+": missing id")
		} else if ids[a.ID] {
			problems = append(problems, label+": duplicate id")
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			problems = append(problems, label+": missing taskType")
		} else if taskTypes[a.TaskType] {
			problems = append(problems, label+": duplicate taskType "+a.TaskType)
		}
		taskTypes[a.TaskType] = true

		switch a.ImplementationStatus {
		case StatusImplemented, StatusPlanned:
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown implementationStatus %q", label, a.ImplementationStatus))
		}

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", label, a.Timeout))
			}
		}
		if a.Retries < 0 {
			problems = append(problems, label+": negative retries")
		}

		if a.InputSchema == nil {
			problems = append(problems, label+": missing inputSchema")
			continue
		}
		raw, err := json.Marshal(a.InputSchema)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: inputSchema: %v", label, err))
			continue
		}
		if _, err := validation.Compile(string(raw)); err != nil {
			problems = append(problems, fmt.Sprintf("%s: inputSchema: %v", label, err))
		}
	}
	return problems
}
