// Package entity holds the building blocks shared by catalogs and documents.
package entity

import (
	"context"
	"time"
)

// Validatable is implemented by entities that check their own invariants
// without touching storage.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the bookkeeping fields of every stored record.
type BaseEntity struct {
	// DeletionMark excludes the record from active queries (soft delete)
	DeletionMark bool `db:"deletion_mark" json:"-"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBaseEntity returns a fresh entity at version 1.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the version and the update timestamp.
func (b *BaseEntity) Touch() {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
	b.Touch()
}

// IsDeleted reports whether the record is soft-deleted.
func (b *BaseEntity) IsDeleted() bool {
	return b.DeletionMark
}
