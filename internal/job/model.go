package job

import "time"

// Kind distinguishes the two video formats the studio produces.
type Kind string

const (
	KindLongForm  Kind = "long-form"
	KindShortForm Kind = "short-form"
)

// Status is the lifecycle state of a generation job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusQueued: {
		StatusGenerating: true,
		StatusCompleted:  true,
		StatusFailed:     true,
	},
	StatusGenerating: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
	StatusCompleted: {},
	StatusFailed:    {},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

// PublishRecord ties a job's artifact to its remote copy. Exactly one of
// ScheduledFor (future slot) and PublishedAt (already live) is set.
type PublishRecord struct {
	RemoteID     string     `gorm:"column:publish_remote_id" json:"remote_id"`
	RemoteURL    string     `gorm:"column:publish_remote_url" json:"remote_url"`
	ScheduledFor *time.Time `gorm:"column:publish_scheduled_for" json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time `gorm:"column:publish_published_at" json:"published_at,omitempty"`
}

// Job is one generation request tracked through its lifecycle. Owned by the
// Registry; observers only ever see copies.
type Job struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Kind Kind   `gorm:"type:text;not null" json:"kind"`

	Status   Status `gorm:"index;not null;default:'queued'" json:"status"`
	Progress int    `gorm:"not null;default:0" json:"progress"`
	Message  string `gorm:"type:text;not null;default:''" json:"message"`

	CategoryID   string `gorm:"index;not null" json:"category_id"`
	CategoryName string `gorm:"not null" json:"category_name"`
	Duration     int    `gorm:"not null" json:"duration"`
	TrackID      string `gorm:"not null;default:''" json:"track_id"`
	TrackName    string `gorm:"not null;default:''" json:"track_name"`

	CreatedAt   time.Time  `gorm:"index;not null" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Artifact *string `gorm:"type:text" json:"artifact,omitempty"`
	Error    *string `gorm:"type:text" json:"error,omitempty"`

	Publish *PublishRecord `gorm:"embedded" json:"publish,omitempty"`
}
