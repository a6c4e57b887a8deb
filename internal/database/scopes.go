package database

import (
	"gorm.io/gorm"

	"gitboard/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ColumnOrder applies the canonical Kanban column ordering: order_index
// ascending, newest first among equal indexes. Every task listing that
// feeds a board view goes through this one scope.
func ColumnOrder() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC, created_at DESC")
	}
}
