package entity

import (
	"context"
	"time"

	"fifostock/internal/core/apperror"
)

// Document is a dated business transaction header (purchase or sale).
// Its date and code define where its lines sit in the FIFO order.
type Document struct {
	BaseEntity

	Code        string    `db:"code" json:"code"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
}

// NewDocument creates a Document at version 1 dated date.
func NewDocument(code string, date time.Time, description string) Document {
	return Document{
		BaseEntity:  NewBaseEntity(),
		Code:        code,
		Date:        date,
		Description: description,
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if err := ValidateCode(d.Code); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
