package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Format(t *testing.T) {
	period := time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "PUR-2024-00007", DefaultConfig("PUR").Format(period, 7))
	assert.Equal(t, "PUR_2024", DefaultConfig("PUR").Key(period))

	plain := Config{Prefix: "SAL", PadWidth: 3}
	assert.Equal(t, "SAL-042", plain.Format(period, 42))
	assert.Equal(t, "SAL", plain.Key(period))
}
