package db

import (
	"fmt"

	"meridian/internal/auth"
	"meridian/internal/health"
	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/rotation"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&rotation.State{},
		&job.Job{},
		&ideas.Idea{},
		&ideas.PublisherState{},
		&health.Entry{},
		&auth.Operator{},
	); err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_jobs_status_created on jobs(status, created_at desc);`,
		`create index if not exists idx_ideas_status_category on ideas(status, category_id);`,
		`create index if not exists idx_health_entries_at on health_entries(at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
