package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Postgres-only statements applied after AutoMigrate. The partial unique
// index is the storage-level backstop for the one-active-assignment-per-
// (resource, tier) invariant; the registry already enforces it transactionally.
var migrationStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_assignments_active_resource_tier
		ON assignments (resource_id, assignment_type)
		WHERE status = 'active';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_driver_assignments_active_driver
		ON driver_assignments (driver_id)
		WHERE status = 'active';`,
	`CREATE INDEX IF NOT EXISTS idx_users_role_active ON users (role, active);`,
	`CREATE INDEX IF NOT EXISTS idx_approval_requests_pending
		ON approval_requests (approver_type, approver_ref)
		WHERE status = 'pending';`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
