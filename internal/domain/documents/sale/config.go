package sale

import "fifostock/internal/core/numerator"

// Numbering of generated sale codes: SAL-2024-00001.
var Numbering = numerator.DefaultConfig("SAL")
