package migration

import (
	"github.com/SridharA16/Ghostprotocol/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for the posts table. Creates the table and
// its secondary indexes if missing, no-ops otherwise.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Post{})
}
