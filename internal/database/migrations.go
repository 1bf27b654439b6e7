package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// SeedRoles ensures the built-in role rows exist.
func SeedRoles(db *gorm.DB) error {
	for _, name := range []models.RoleName{models.RoleAdmin, models.RoleManager, models.RoleTeamMember} {
		var role models.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check role %s: %w", name, err)
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
		log.Printf("Seeded role %s", name)
	}
	return nil
}

// AddIndexes adds performance-critical indexes beyond what AutoMigrate creates.
// Only meaningful for the postgres driver; mysql deployments rely on the
// gorm tag indexes.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"task_templates", "idx_task_templates_primary_responsible", "primary_responsible_user_id"},
		{"task_templates", "idx_task_templates_accountable", "accountable_user_id"},
		{"task_templates", "idx_task_templates_is_active", "is_active"},
		{"task_instances", "idx_task_instances_status", "status"},
		{"task_instances", "idx_task_instances_due_date", "due_date"},
		{"status_log_entries", "idx_status_log_change_time", "change_time"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
