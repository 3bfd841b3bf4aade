package rotation

import "time"

// State is the persistent rotation cursor. One row, advanced on every
// generation and reset only by an explicit administrative call.
type State struct {
	ID             uint64    `gorm:"primaryKey" json:"-"`
	CategoryIndex  uint64    `gorm:"not null;default:0" json:"category_index"`
	DurationIndex  uint64    `gorm:"not null;default:0" json:"duration_index"`
	TrackIndex     uint64    `gorm:"not null;default:0" json:"track_index"`
	TotalGenerated uint64    `gorm:"not null;default:0" json:"total_generated"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
