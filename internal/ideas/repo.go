package ideas

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists ideas and the publisher state row.
type Store interface {
	Stats() (Stats, error)
	Available() ([]Idea, error)
	Get(id string) (Idea, error)
	Insert([]Idea) error
	Save(*Idea) error
	LoadState() (PublisherState, error)
	SaveState(*PublisherState) error
}

const stateRowID = 1

// Repo is the GORM-backed Store.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Stats() (Stats, error) {
	type row struct {
		Status IdeaStatus
		N      int
	}
	var rows []row
	err := r.DB.Model(&Idea{}).Select("status, count(*) as n").Group("status").Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, rw := range rows {
		st.Total += rw.N
		switch rw.Status {
		case IdeaAvailable:
			st.Available = rw.N
		case IdeaScheduled:
			st.Scheduled = rw.N
		case IdeaUsed:
			st.Used = rw.N
		}
	}
	return st, nil
}

func (r *Repo) Available() ([]Idea, error) {
	var out []Idea
	err := r.DB.Where("status = ?", IdeaAvailable).Order("created_at asc").Find(&out).Error
	return out, err
}

func (r *Repo) Get(id string) (Idea, error) {
	var i Idea
	err := r.DB.First(&i, "id = ?", id).Error
	return i, err
}

func (r *Repo) Insert(batch []Idea) error {
	if len(batch) == 0 {
		return nil
	}
	return r.DB.Create(&batch).Error
}

func (r *Repo) Save(i *Idea) error {
	return r.DB.Save(i).Error
}

func (r *Repo) LoadState() (PublisherState, error) {
	var st PublisherState
	err := r.DB.First(&st, stateRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PublisherState{ID: stateRowID}, nil
	}
	if err != nil {
		return PublisherState{}, err
	}
	return st, nil
}

func (r *Repo) SaveState(st *PublisherState) error {
	st.ID = stateRowID
	return r.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(st).Error
}
