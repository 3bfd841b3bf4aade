package job

import (
	"gorm.io/gorm"
)

// Store is the write-through persistence behind the Registry.
type Store interface {
	LoadAll() ([]Job, error)
	Insert(*Job) error
	Update(*Job) error
	Delete(id string) error
	DeleteMany(ids []string) error
}

// Repo is the GORM-backed Store.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) LoadAll() ([]Job, error) {
	var out []Job
	if err := r.DB.Order("created_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Insert(j *Job) error {
	return r.DB.Create(j).Error
}

func (r *Repo) Update(j *Job) error {
	return r.DB.Save(j).Error
}

func (r *Repo) Delete(id string) error {
	return r.DB.Delete(&Job{}, "id = ?", id).Error
}

func (r *Repo) DeleteMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Delete(&Job{}, "id in ?", ids).Error
}
