package purchase

import "fifostock/internal/core/numerator"

// Numbering of generated purchase codes: PUR-2024-00001.
var Numbering = numerator.DefaultConfig("PUR")
