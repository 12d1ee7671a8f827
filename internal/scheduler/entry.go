package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventTrigger fires a scheduled task when a matching event is published
// on the bus.
type EventTrigger struct {
	Type   string            `json:"type"`
	Filter map[string]string `json:"filter,omitempty"`
}

// PeriodicTask is a persistent schedule entry invoking a named, registered
// task function on a cron schedule, a fixed interval, or an event trigger.
type PeriodicTask struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	TaskFunc    string        `json:"task_func"` // key into the scheduler's task function registry
	SkillName   string        `json:"skill_name,omitempty"`
	CronSpec    string        `json:"cron_spec,omitempty"`
	IntervalSec int           `json:"interval_sec,omitempty"`
	OnEvent     *EventTrigger `json:"on_event,omitempty"`
	CooldownSec int           `json:"cooldown_sec"`
	MaxRuns     int           `json:"max_runs,omitempty"`
	RunCount    int           `json:"run_count"`
	Enabled     bool          `json:"enabled"`
	CreatedAt   time.Time     `json:"created_at"`
	LastRunAt   *time.Time    `json:"last_run_at,omitempty"`
}

// GenerateTaskID creates a unique schedule identifier with a "task_" prefix.
func GenerateTaskID() string {
	u := uuid.New().String()
	return "task_" + strings.ReplaceAll(u[:8], "-", "")
}
