package health

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Status is a check severity. Severities order healthy < warning < critical.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

var severity = map[Status]int{
	StatusHealthy:  0,
	StatusWarning:  1,
	StatusCritical: 2,
}

// Worse returns the more severe of two statuses.
func Worse(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Result is the outcome of one named check.
type Result struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Metrics map[string]any `json:"metrics,omitempty"`
	Error   string         `json:"error,omitempty"`
	At      time.Time      `json:"at"`

	// Actions are remediations the check performed; Alerts are conditions
	// an operator must look at. Both roll up into the log entry.
	Actions []string `json:"actions,omitempty"`
	Alerts  []string `json:"alerts,omitempty"`
}

// Entry is one aggregate snapshot in the append-only health log.
type Entry struct {
	ID      uint64          `gorm:"primaryKey" json:"id"`
	Overall Status          `gorm:"index;not null" json:"overall"`
	Results json.RawMessage `gorm:"type:jsonb;not null;default:'[]'::jsonb" json:"results"`
	Actions pq.StringArray  `gorm:"type:text[];not null;default:'{}'" json:"actions"`
	Alerts  pq.StringArray  `gorm:"type:text[];not null;default:'{}'" json:"alerts"`
	At      time.Time       `gorm:"index;not null" json:"at"`
}

func (Entry) TableName() string { return "health_entries" }
