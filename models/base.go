package models

import (
	"time"

	"gorm.io/gorm"
)

// Base carries the identity, audit and soft-delete bookkeeping shared by
// every entity. Soft delete is the only deletion mechanism: rows are marked
// IsDeleted and excluded from reads, never physically removed.
type Base struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	IsDeleted bool       `gorm:"default:false;index" json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string    `json:"deletedBy,omitempty"`
	CreatedBy *string    `json:"createdBy,omitempty"`
	UpdatedBy *string    `json:"updatedBy,omitempty"`
}

// SoftDelete marks the row deleted by the given actor. Callers persist the
// change themselves.
func (b *Base) SoftDelete(actor string, now time.Time) {
	b.IsDeleted = true
	b.DeletedAt = &now
	b.DeletedBy = &actor
}

// Touch stamps an update by the given actor.
func (b *Base) Touch(actor string, now time.Time) {
	b.UpdatedAt = now
	b.UpdatedBy = &actor
}

// NotDeleted is the query scope applied to every normal read.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
