package ideas

import "time"

// IdeaStatus tracks whether an idea is still usable.
type IdeaStatus string

const (
	IdeaAvailable IdeaStatus = "available"
	IdeaScheduled IdeaStatus = "scheduled"
	IdeaUsed      IdeaStatus = "used"
)

// Idea is one not-yet-produced content concept in the bank.
type Idea struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	CategoryID string     `gorm:"index;not null" json:"category_id"`
	Title      string     `gorm:"type:text;not null" json:"title"`
	Hook       string     `gorm:"type:text;not null;default:''" json:"hook"`
	Status     IdeaStatus `gorm:"index;not null;default:'available'" json:"status"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	JobID      string     `gorm:"not null;default:''" json:"job_id,omitempty"`
}

// PublisherState is the persisted autopublish toggle plus the round-robin
// cursor used when picking ideas across categories. One row.
type PublisherState struct {
	ID             uint64    `gorm:"primaryKey" json:"-"`
	Enabled        bool      `gorm:"not null;default:false" json:"enabled"`
	CategoryCursor uint64    `gorm:"not null;default:0" json:"category_cursor"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// Stats summarizes the bank inventory.
type Stats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Scheduled int `json:"scheduled"`
	Used      int `json:"used"`
}

// HealthLevel classifies the available-idea inventory.
type HealthLevel string

const (
	HealthGood     HealthLevel = "good"
	HealthLow      HealthLevel = "low"
	HealthCritical HealthLevel = "critical"
)

// Health classifies an available-idea count. Pure.
func Health(available int) HealthLevel {
	switch {
	case available > 20:
		return HealthGood
	case available > 10:
		return HealthLow
	default:
		return HealthCritical
	}
}
