package rotation

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateStore persists the rotation cursor.
type StateStore interface {
	Load() (State, error)
	Save(*State) error
}

const stateRowID = 1

// Repo is the GORM-backed StateStore.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Load() (State, error) {
	var st State
	err := r.DB.First(&st, stateRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return State{ID: stateRowID}, nil
	}
	if err != nil {
		return State{}, err
	}
	return st, nil
}

func (r *Repo) Save(st *State) error {
	st.ID = stateRowID
	return r.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(st).Error
}
