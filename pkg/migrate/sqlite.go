package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
)

// partialIndexes mirrors the partial unique indexes of the Postgres migrations;
// SQLite supports the same WHERE clause syntax.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_active_room ON reservations (room_id) WHERE status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_housekeeping_tasks_pending_room ON housekeeping_tasks (room_id) WHERE status = 'pending'`,
}

// AutoMigrateSQLite builds the schema on a SQLite connection, used for local
// runs and tests where goose's Postgres migrations do not apply.
func AutoMigrateSQLite(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
