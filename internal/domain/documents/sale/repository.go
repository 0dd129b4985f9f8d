package sale

import (
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/inventory"
)

// Repository persists sale headers and reads their consumptions.
type Repository = documents.HeaderRepository[*Sale, *inventory.Consumption]
