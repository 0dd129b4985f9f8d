package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"fifostock/internal/core/apperror"
)

func TestContentionOrError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"lock timeout", &pgconn.PgError{Code: CodeLockNotAvailable}, apperror.CodeContentionTimeout},
		{"statement timeout while waiting", fmt.Errorf("select: %w", &pgconn.PgError{Code: CodeQueryCanceled}), apperror.CodeContentionTimeout},
		{"unique violation", &pgconn.PgError{Code: CodeUniqueViolation}, apperror.CodeConflict},
		{"plain error", errors.New("connection reset"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ContentionOrError(tt.err, "PUR-1")
			appErr, ok := apperror.AsAppError(err)
			if tt.wantCode == "" {
				assert.False(t, ok)
				assert.Equal(t, tt.err, err)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.True(t, apperror.Retryable(err) == (tt.wantCode == apperror.CodeContentionTimeout))
		})
	}
}
