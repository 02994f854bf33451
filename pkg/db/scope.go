package db

import "gorm.io/gorm"

// Live filters out soft-deleted rows. Every read path for tombstoned entities
// goes through this scope so the predicate cannot be forgotten on a new query.
func Live(stmt *gorm.DB) *gorm.DB {
	return stmt.Where("deleted_at IS NULL")
}
