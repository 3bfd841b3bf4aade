package health

import "gorm.io/gorm"

// LogStore persists the bounded health log.
type LogStore interface {
	Append(*Entry) error
	Recent(n int) ([]Entry, error)
	Trim(keep int) error
}

// Repo is the GORM-backed LogStore.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Append(e *Entry) error {
	return r.DB.Create(e).Error
}

func (r *Repo) Recent(n int) ([]Entry, error) {
	var out []Entry
	err := r.DB.Order("id desc").Limit(n).Find(&out).Error
	return out, err
}

func (r *Repo) Trim(keep int) error {
	return r.DB.Exec(`
delete from health_entries
where id not in (select id from health_entries order by id desc limit ?)
`, keep).Error
}
