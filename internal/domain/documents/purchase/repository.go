package purchase

import (
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/inventory"
)

// Repository persists purchase headers and reads their lots.
type Repository = documents.HeaderRepository[*Purchase, *inventory.Lot]
