package entity

import (
	"context"
	"strings"

	"fifostock/internal/core/apperror"
)

// MaxCodeLength bounds every business code (items and documents).
const MaxCodeLength = 50

// Catalog is reference data addressed by a unique code.
type Catalog struct {
	BaseEntity

	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a Catalog at version 1.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       strings.TrimSpace(code),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if err := ValidateCode(c.Code); err != nil {
		return err
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// ValidateCode checks a business code.
func ValidateCode(code string) error {
	if code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if len(code) > MaxCodeLength {
		return apperror.NewValidation("code is too long").
			WithDetail("field", "code").
			WithDetail("max_length", MaxCodeLength)
	}
	if strings.ContainsAny(code, " /?#") {
		return apperror.NewValidation("code contains forbidden characters").
			WithDetail("field", "code")
	}
	return nil
}
