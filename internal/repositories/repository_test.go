package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Duplicate key from the postgres driver",
			err:      &pgconn.PgError{Code: "23505"},
			expected: true,
		},
		{
			name:     "Wrapped duplicate key",
			err:      fmt.Errorf("create failed: %w", &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "Foreign key violation is not a duplicate",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "Unrelated error",
			err:      errors.New("connection reset"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err))
		})
	}
}
